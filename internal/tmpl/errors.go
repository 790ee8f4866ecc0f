package tmpl

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedTemplate = errors.New("malformed template")
	ErrUndefinedVariable = errors.New("undefined variable")
	ErrNotIterable       = errors.New("value is not iterable")
)

// MalformedTemplateError reports a structural problem found while parsing:
// an unterminated marker, a stray or mismatched close, or an unclosed block.
type MalformedTemplateError struct {
	Template string
	Pos      Pos
	Reason   string
}

func (e *MalformedTemplateError) Error() string {
	return fmt.Sprintf("%s: %s:%d:%d: %s", ErrMalformedTemplate, e.Template, e.Pos.Line, e.Pos.Column, e.Reason)
}

func (e *MalformedTemplateError) Unwrap() error { return ErrMalformedTemplate }

// UndefinedVariableError reports a key with no context entry.
type UndefinedVariableError struct {
	Template string
	Pos      Pos
	Name     string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("%s: %s:%d:%d: %s", ErrUndefinedVariable, e.Template, e.Pos.Line, e.Pos.Column, e.Name)
}

func (e *UndefinedVariableError) Unwrap() error { return ErrUndefinedVariable }

// NotIterableError reports an {{#each}} over a value that is not a sequence.
type NotIterableError struct {
	Template string
	Pos      Pos
	Name     string
	Value    any
}

func (e *NotIterableError) Error() string {
	return fmt.Sprintf("%s: %s:%d:%d: %s is %T", ErrNotIterable, e.Template, e.Pos.Line, e.Pos.Column, e.Name, e.Value)
}

func (e *NotIterableError) Unwrap() error { return ErrNotIterable }
