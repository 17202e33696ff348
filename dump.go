package regast

import (
	"strconv"
	"strings"
)

// String renders the tree in a regex-like notation. Character classes are
// shown as their code unit ranges, "!" marking an inverted matcher. Groups
// created for unbounded quantifiers are followed by {loop}, groups created by
// unrolling counted quantifiers by {exp}.
func (a *RegexAST) String() string {
	if a.root == NoNode {
		return ""
	}
	var sb strings.Builder
	a.writeAlternatives(&sb, a.RootGroup())
	return sb.String()
}

// NodeString renders the subtree at id like String.
func (a *RegexAST) NodeString(id NodeID) string {
	var sb strings.Builder
	a.writeNode(&sb, id)
	return sb.String()
}

func (a *RegexAST) writeAlternatives(sb *strings.Builder, group NodeID) {
	for i, alt := range a.nodes[group].Alternatives {
		if i > 0 {
			sb.WriteByte('|')
		}
		a.writeNode(sb, alt)
	}
}

func (a *RegexAST) writeNode(sb *strings.Builder, id NodeID) {
	n := &a.nodes[id]
	switch n.Kind {
	case KindRoot:
		a.writeNode(sb, n.Group)
	case KindGroup:
		if n.IsCapture() {
			sb.WriteByte('(')
		} else {
			sb.WriteString("(?:")
		}
		a.writeAlternatives(sb, id)
		sb.WriteByte(')')
		if n.IsLoop() {
			sb.WriteString("{loop}")
		}
		if n.IsExpandedQuantifier() {
			sb.WriteString("{exp}")
		}
	case KindSequence:
		for _, t := range n.Terms {
			a.writeNode(sb, t)
		}
	case KindCharacterClass:
		writeMatcher(sb, n.Matcher)
	case KindLookAheadAssertion:
		if n.IsNegated() {
			sb.WriteString("(?!")
		} else {
			sb.WriteString("(?=")
		}
		a.writeAlternatives(sb, n.Group)
		sb.WriteByte(')')
	case KindLookBehindAssertion:
		sb.WriteString("(?<=")
		a.writeAlternatives(sb, n.Group)
		sb.WriteByte(')')
	case KindPositionAssertion:
		if n.Position == PositionCaret {
			sb.WriteByte('^')
		} else {
			sb.WriteByte('$')
		}
	case KindBackReference:
		sb.WriteByte('\\')
		sb.WriteString(strconv.Itoa(n.GroupNr))
	}
}

// writeMatcher prints single alphanumeric code units bare.
func writeMatcher(sb *strings.Builder, m *Matcher) {
	if !m.Inverted() && len(m.tree) == 2 && m.tree[0] == m.tree[1] && isASCIIWordChar(m.tree[0]) {
		sb.WriteByte(byte(m.tree[0]))
		return
	}
	sb.WriteString(m.String())
}
