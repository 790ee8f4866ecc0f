package tmpl

// Pos is a 1-based location in the template source.
type Pos struct {
	Line   int
	Column int
}

// Node is an element of a parsed template.
type Node interface {
	Position() Pos
	node()
}

type nodeBase struct {
	pos Pos
}

func (n nodeBase) Position() Pos { return n.pos }
func (nodeBase) node()           {}

// TextNode is literal text copied to the output unchanged.
type TextNode struct {
	nodeBase
	Text string
}

// VarNode is a {{NAME}} interpolation.
type VarNode struct {
	nodeBase
	Name string
}

// IfNode is a {{#if_FLAG}} block.
type IfNode struct {
	nodeBase
	Flag string
	Body []Node
}

// EachNode is a {{#each LIST}} block.
type EachNode struct {
	nodeBase
	List string
	Body []Node
}
