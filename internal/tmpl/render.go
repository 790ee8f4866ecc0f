package tmpl

import "strings"

const thisName = "this"

// scope resolves names for one level of iteration. The root scope reads the
// render context; each iteration level exposes its element as "this" and,
// for records, its fields, shadowing outer names.
type scope struct {
	parent *scope
	root   Context
	this   any
	fields map[string]any
}

func (s *scope) lookup(name string) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.parent == nil {
			v, ok := cur.root[name]
			return v, ok
		}
		if name == thisName {
			return cur.this, true
		}
		if v, ok := cur.fields[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Render parses text and executes it against ctx.
func Render(text string, ctx Context) (string, error) {
	t, err := Parse("template", text)
	if err != nil {
		return "", err
	}
	return t.Execute(ctx)
}

// Execute renders the template against ctx. On error the returned string is
// empty.
func (t *Template) Execute(ctx Context) (string, error) {
	var b strings.Builder
	if err := t.exec(&b, t.nodes, &scope{root: ctx}); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (t *Template) exec(b *strings.Builder, nodes []Node, s *scope) error {
	for _, n := range nodes {
		switch n := n.(type) {
		case *TextNode:
			b.WriteString(n.Text)
		case *VarNode:
			v, ok := s.lookup(n.Name)
			if !ok {
				return t.undefined(n.Position(), n.Name)
			}
			b.WriteString(stringify(v))
		case *IfNode:
			v, ok := s.lookup(n.Flag)
			if !ok {
				return t.undefined(n.Position(), n.Flag)
			}
			if !Truthy(v) {
				continue
			}
			if err := t.exec(b, n.Body, s); err != nil {
				return err
			}
		case *EachNode:
			v, ok := s.lookup(n.List)
			if !ok {
				return t.undefined(n.Position(), n.List)
			}
			items, ok := elements(v)
			if !ok {
				return &NotIterableError{Template: t.name, Pos: n.Position(), Name: n.List, Value: v}
			}
			for _, item := range items {
				child := &scope{parent: s, this: item, fields: fields(item)}
				if err := t.exec(b, n.Body, child); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (t *Template) undefined(pos Pos, name string) error {
	return &UndefinedVariableError{Template: t.name, Pos: pos, Name: name}
}
