package dtcalc

import (
	"strconv"
	"strings"
)

// node is a node in the abstract syntax tree of an expression.
type node struct {
	kind nodeKind

	// name is the source text of a literal or the name of an identifier.
	name string

	left  *node
	right *node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum  // push num
	nodeDur  // push duration literal as seconds
	nodeTime // push timestamp literal
	nodeName // push lookup(name)

	nodeNeg // evaluate left, then negate
	nodeAdd // evaluate left, add right
	nodeSub // evaluate left, sub right
	nodeMul // evaluate left, mul right
	nodeDiv // evaluate left, div by right
	nodeNop // evaluate left
)

var nodeKindNames = [...]string{
	"None", "Num", "Dur", "Time", "Name", "Neg", "Add", "Sub", "Mul", "Div", "Nop",
}

func (k nodeKind) String() string {
	if k >= 0 && int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return "nodeKind(" + strconv.Itoa(int(k)) + ")"
}

// opText returns the source spelling of an operator node kind.
func opText(k nodeKind) string {
	switch k {
	case nodeNeg, nodeSub:
		return "-"
	case nodeNop, nodeAdd:
		return "+"
	case nodeMul:
		return "*"
	case nodeDiv:
		return "/"
	}
	return "?"
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b)
	return b.String()
}

func (n *node) fmt(b *strings.Builder) {
	b.WriteByte('(')
	defer b.WriteByte(')')
	switch n.kind {
	case nodeNone:
		// Invalid nodes use invalid characters.
		b.WriteByte('$')
		if n.left != nil {
			n.left.fmt(b)
		}
		b.WriteByte('#')
		if n.right != nil {
			n.right.fmt(b)
		}
		b.WriteByte('$')
	case nodeNum, nodeDur, nodeTime, nodeName:
		b.WriteString(n.name)
	case nodeNeg, nodeNop:
		b.WriteString(opText(n.kind))
		n.left.fmt(b)
	case nodeAdd, nodeSub, nodeMul, nodeDiv:
		n.left.fmt(b)
		b.WriteString(" " + opText(n.kind) + " ")
		n.right.fmt(b)
	default:
		panic("dtcalc: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}
