package tmpl

import (
	"fmt"
	"sort"
	"strings"
)

const (
	leftDelim  = "{{"
	rightDelim = "}}"
)

type markerKind int

const (
	markerLiteral markerKind = iota
	markerVar
	markerIfOpen
	markerIfClose
	markerEachOpen
	markerEachClose
)

type marker struct {
	kind markerKind
	name string
}

// Template is a parsed template. It is immutable and safe for concurrent use.
type Template struct {
	name  string
	nodes []Node
}

// Name returns the name used in error messages.
func (t *Template) Name() string { return t.name }

// Nodes returns the top-level nodes of the parse tree.
func (t *Template) Nodes() []Node { return t.nodes }

type frame struct {
	kind markerKind
	name string
	pos  Pos
	body []Node
}

type parser struct {
	name string
	text string

	// position cursor for posAt
	off  int
	line int
	col  int
}

// Parse builds the parse tree for text. Structural errors are reported as
// *MalformedTemplateError before anything is rendered.
func Parse(name, text string) (*Template, error) {
	p := &parser{name: name, text: text, line: 1, col: 1}
	return p.parse()
}

// Must panics if err is non-nil. It is intended for templates built into the
// binary.
func Must(t *Template, err error) *Template {
	if err != nil {
		panic(err)
	}
	return t
}

func (p *parser) parse() (*Template, error) {
	stack := []*frame{{}}
	i := 0
	for i < len(p.text) {
		open := strings.Index(p.text[i:], leftDelim)
		if open < 0 {
			p.appendText(stack, i, p.text[i:])
			break
		}
		start := i + open
		end := strings.Index(p.text[start+len(leftDelim):], rightDelim)
		if end < 0 {
			return nil, p.malformed(start, "unterminated %q", leftDelim)
		}
		closeAt := start + len(leftDelim) + end
		// Earlier "{{" in the span are literal; the marker opens at the last one.
		start += strings.LastIndex(p.text[start:closeAt], leftDelim)
		after := closeAt + len(rightDelim)

		m, err := classify(p.text[start+len(leftDelim) : closeAt])
		if err != nil {
			return nil, p.malformed(start, "%v", err)
		}
		if m.kind == markerLiteral {
			p.appendText(stack, i, p.text[i:after])
			i = after
			continue
		}
		if start > i {
			p.appendText(stack, i, p.text[i:start])
		}

		pos := p.posAt(start)
		top := stack[len(stack)-1]
		switch m.kind {
		case markerVar:
			top.body = append(top.body, &VarNode{nodeBase: nodeBase{pos: pos}, Name: m.name})
		case markerIfOpen, markerEachOpen:
			stack = append(stack, &frame{kind: m.kind, name: m.name, pos: pos})
		case markerIfClose, markerEachClose:
			if len(stack) == 1 {
				return nil, p.malformed(start, "%s without matching open block", describe(m))
			}
			if want := closerFor(top); want.kind != m.kind || want.name != m.name {
				return nil, p.malformed(start, "unexpected %s, expected %s", describe(m), describe(want))
			}
			stack = stack[:len(stack)-1]
			parent := stack[len(stack)-1]
			parent.body = append(parent.body, top.build())
		}
		i = after
	}

	if len(stack) > 1 {
		top := stack[len(stack)-1]
		return nil, &MalformedTemplateError{
			Template: p.name,
			Pos:      top.pos,
			Reason:   fmt.Sprintf("unclosed %s", describe(marker{kind: top.kind, name: top.name})),
		}
	}
	return &Template{name: p.name, nodes: stack[0].body}, nil
}

func (f *frame) build() Node {
	base := nodeBase{pos: f.pos}
	if f.kind == markerIfOpen {
		return &IfNode{nodeBase: base, Flag: f.name, Body: f.body}
	}
	return &EachNode{nodeBase: base, List: f.name, Body: f.body}
}

// appendText adds literal text to the innermost block, merging with a
// preceding text node so literal markers do not fragment the tree.
func (p *parser) appendText(stack []*frame, off int, text string) {
	if text == "" {
		return
	}
	top := stack[len(stack)-1]
	if n := len(top.body); n > 0 {
		if prev, ok := top.body[n-1].(*TextNode); ok {
			prev.Text += text
			return
		}
	}
	top.body = append(top.body, &TextNode{nodeBase: nodeBase{pos: p.posAt(off)}, Text: text})
}

// posAt advances the cursor to off. An offset behind the cursor rescans from
// the start of the text.
func (p *parser) posAt(off int) Pos {
	if off < p.off {
		p.off, p.line, p.col = 0, 1, 1
	}
	for p.off < off {
		if p.text[p.off] == '\n' {
			p.line++
			p.col = 1
		} else {
			p.col++
		}
		p.off++
	}
	return Pos{Line: p.line, Column: p.col}
}

func (p *parser) malformed(off int, format string, args ...any) error {
	return &MalformedTemplateError{
		Template: p.name,
		Pos:      p.posAt(off),
		Reason:   fmt.Sprintf(format, args...),
	}
}

func classify(inner string) (marker, error) {
	body := strings.TrimSpace(inner)
	switch {
	case strings.HasPrefix(body, "#if_"):
		flag := body[len("#if_"):]
		if !isIdent(flag) {
			return marker{}, fmt.Errorf("invalid conditional marker {{%s}}", body)
		}
		return marker{kind: markerIfOpen, name: flag}, nil
	case strings.HasPrefix(body, "/if_"):
		flag := body[len("/if_"):]
		if !isIdent(flag) {
			return marker{}, fmt.Errorf("invalid conditional marker {{%s}}", body)
		}
		return marker{kind: markerIfClose, name: flag}, nil
	case body == "/each":
		return marker{kind: markerEachClose}, nil
	case strings.HasPrefix(body, "#each"):
		fields := strings.Fields(body)
		if len(fields) != 2 || fields[0] != "#each" || !isIdent(fields[1]) {
			return marker{}, fmt.Errorf("invalid iteration marker {{%s}}", body)
		}
		return marker{kind: markerEachOpen, name: fields[1]}, nil
	case strings.HasPrefix(body, "#"), strings.HasPrefix(body, "/"):
		return marker{}, fmt.Errorf("unknown block marker {{%s}}", body)
	case isIdent(body):
		return marker{kind: markerVar, name: body}, nil
	default:
		return marker{kind: markerLiteral}, nil
	}
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func closerFor(f *frame) marker {
	if f.kind == markerIfOpen {
		return marker{kind: markerIfClose, name: f.name}
	}
	return marker{kind: markerEachClose}
}

func describe(m marker) string {
	switch m.kind {
	case markerIfOpen:
		return "{{#if_" + m.name + "}}"
	case markerIfClose:
		return "{{/if_" + m.name + "}}"
	case markerEachOpen:
		return "{{#each " + m.name + "}}"
	case markerEachClose:
		return "{{/each}}"
	case markerVar:
		return "{{" + m.name + "}}"
	default:
		return "literal"
	}
}

// Refs returns the sorted set of context keys the template requires.
//
// Keys inside conditional bodies are included whether or not the flag is
// set. Names inside iteration bodies, nested list names included, may
// resolve to element fields and are therefore not required.
func (t *Template) Refs() []string {
	seen := map[string]bool{}
	collectRefs(t.nodes, seen, false)
	refs := make([]string, 0, len(seen))
	for name := range seen {
		refs = append(refs, name)
	}
	sort.Strings(refs)
	return refs
}

func collectRefs(nodes []Node, seen map[string]bool, inEach bool) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *VarNode:
			if !inEach {
				seen[n.Name] = true
			}
		case *IfNode:
			if !inEach {
				seen[n.Flag] = true
			}
			collectRefs(n.Body, seen, inEach)
		case *EachNode:
			if !inEach {
				seen[n.List] = true
			}
			collectRefs(n.Body, seen, true)
		}
	}
}

// Missing returns the required keys that have no entry in ctx.
func (t *Template) Missing(ctx Context) []string {
	var missing []string
	for _, name := range t.Refs() {
		if _, ok := ctx[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
