package driver

import (
	"encoding/json"
	"fmt"
	"io"
)

// SemanticActionSet supplies the semantic values the driver threads through
// its parse stack. The driver calls the methods in bottom-up order, so a
// value returned by Shift or Reduce becomes part of a later Reduce's handle.
type SemanticActionSet interface {
	// Shift runs when the driver shifts a token onto the parse stack. The
	// returned value becomes the shifted frame's semantic value.
	Shift(tok VToken) any

	// Reduce runs when the driver reduces an RHS of a production to its LHS.
	// `prodNum` is a number of the production, and `handle` holds the popped
	// frames' values in left-to-right order. The returned value becomes the
	// reduced frame's semantic value.
	// When an alternative is empty, `handle` will be an empty slice.
	Reduce(prodNum int, handle []any) any

	// Accept runs once when the driver accepts an input. `result` is the
	// value of the frame the start symbol left on the parse stack.
	Accept(result any)
}

var _ SemanticActionSet = &SyntaxTreeActionSet{}

type NodeType int

const (
	NodeTypeTerminal    NodeType = 1
	NodeTypeNonTerminal NodeType = 2
)

// Node is a concrete syntax tree node SyntaxTreeActionSet builds.
type Node struct {
	Type     NodeType
	KindName string
	Text     string
	Row      int
	Col      int
	Children []*Node
}

func (n *Node) MarshalJSON() ([]byte, error) {
	switch n.Type {
	case NodeTypeTerminal:
		return json.Marshal(struct {
			Type     NodeType `json:"type"`
			KindName string   `json:"kind_name"`
			Text     string   `json:"text"`
			Row      int      `json:"row"`
			Col      int      `json:"col"`
		}{
			Type:     n.Type,
			KindName: n.KindName,
			Text:     n.Text,
			Row:      n.Row,
			Col:      n.Col,
		})
	case NodeTypeNonTerminal:
		return json.Marshal(struct {
			Type     NodeType `json:"type"`
			KindName string   `json:"kind_name"`
			Children []*Node  `json:"children"`
		}{
			Type:     n.Type,
			KindName: n.KindName,
			Children: n.Children,
		})
	default:
		return nil, fmt.Errorf("invalid node type: %v", n.Type)
	}
}

// PrintTree prints a syntax tree whose root is `node`.
func PrintTree(w io.Writer, node *Node) {
	printTree(w, node, "", "")
}

func printTree(w io.Writer, node *Node, ruledLine string, childRuledLinePrefix string) {
	if node == nil {
		return
	}

	if node.Type == NodeTypeTerminal {
		fmt.Fprintf(w, "%v%v %#v\n", ruledLine, node.KindName, node.Text)
	} else {
		fmt.Fprintf(w, "%v%v\n", ruledLine, node.KindName)
	}

	num := len(node.Children)
	for i, child := range node.Children {
		var line string
		if num > 1 && i < num-1 {
			line = "├─ "
		} else {
			line = "└─ "
		}

		var prefix string
		if i >= num-1 {
			prefix = "   "
		} else {
			prefix = "│  "
		}

		printTree(w, child, childRuledLinePrefix+line, childRuledLinePrefix+prefix)
	}
}

// SyntaxTreeActionSet constructs a concrete syntax tree from the driver's
// shift and reduce events. After an accepted parse, Tree returns the root.
type SyntaxTreeActionSet struct {
	gram Grammar
	tree *Node
}

func NewSyntaxTreeActionSet(gram Grammar) *SyntaxTreeActionSet {
	return &SyntaxTreeActionSet{
		gram: gram,
	}
}

func (a *SyntaxTreeActionSet) Shift(tok VToken) any {
	row, col := tok.Position()
	return &Node{
		Type:     NodeTypeTerminal,
		KindName: a.gram.Terminal(tok.TerminalID()),
		Text:     string(tok.Lexeme()),
		Row:      row,
		Col:      col,
	}
}

func (a *SyntaxTreeActionSet) Reduce(prodNum int, handle []any) any {
	children := make([]*Node, len(handle))
	for i, v := range handle {
		children[i] = v.(*Node)
	}

	return &Node{
		Type:     NodeTypeNonTerminal,
		KindName: a.gram.NonTerminal(a.gram.LHS(prodNum)),
		Children: children,
	}
}

func (a *SyntaxTreeActionSet) Accept(result any) {
	a.tree = result.(*Node)
}

// Tree returns the syntax tree of the accepted input. If a syntax error
// occurred, the return value is nil.
func (a *SyntaxTreeActionSet) Tree() *Node {
	return a.tree
}
