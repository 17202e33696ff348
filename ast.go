package regast

import "strconv"

// NodeID addresses a node in the arena of a RegexAST.
type NodeID int32

// NoNode is the NodeID of a missing node.
const NoNode NodeID = -1

type NodeKind uint8

const (
	KindRoot NodeKind = iota
	KindGroup
	KindSequence
	KindCharacterClass
	KindLookAheadAssertion
	KindLookBehindAssertion
	KindPositionAssertion
	KindBackReference
)

var nodeKindNames = [...]string{
	KindRoot:                "Root",
	KindGroup:               "Group",
	KindSequence:            "Sequence",
	KindCharacterClass:      "CharacterClass",
	KindLookAheadAssertion:  "LookAheadAssertion",
	KindLookBehindAssertion: "LookBehindAssertion",
	KindPositionAssertion:   "PositionAssertion",
	KindBackReference:       "BackReference",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return "NodeKind(" + strconv.Itoa(int(k)) + ")"
}

// IsTerm reports whether nodes of this kind appear in a sequence.
func (k NodeKind) IsTerm() bool {
	return k >= KindGroup && k != KindSequence
}

type PositionKind uint8

const (
	PositionCaret PositionKind = iota
	PositionDollar
)

// Unbounded is the MaxLen of a node that can consume any number of code
// units.
const Unbounded = -1

type nodeFlags uint8

const (
	nodeCapture nodeFlags = 1 << iota
	nodeLoop
	nodeExpandedQuantifier
	nodeLookBehindEntry
	nodeNegated
	nodeDead
)

// Node is one node of a RegexAST. Which fields are meaningful depends on
// Kind.
type Node struct {
	Kind   NodeKind
	Parent NodeID
	// Pre-order index among reachable nodes, assigned after parsing.
	ID    int
	flags nodeFlags

	// KindGroup
	Alternatives              []NodeID
	EnclosedCaptureGroupsLow  int
	EnclosedCaptureGroupsHigh int

	// KindSequence
	Terms []NodeID

	// KindRoot, KindLookAheadAssertion, KindLookBehindAssertion: the wrapped
	// group.
	Group NodeID

	// KindCharacterClass
	Matcher *Matcher

	// KindPositionAssertion
	Position PositionKind

	// KindGroup (if capturing) and KindBackReference
	GroupNr int

	// Lengths in code units, see calcMinPaths.
	MinLen     int
	MaxLen     int
	MinPath    int
	MinPathRev int
}

// IsCapture reports whether a group is a capture group.
func (n *Node) IsCapture() bool { return n.flags&nodeCapture != 0 }

// IsLoop reports whether a group is the optional wrapper of an unbounded
// quantifier. The executor iterates it instead of matching it once.
func (n *Node) IsLoop() bool { return n.flags&nodeLoop != 0 }

// IsExpandedQuantifier reports whether a group was synthesized while
// unrolling a counted quantifier.
func (n *Node) IsExpandedQuantifier() bool { return n.flags&nodeExpandedQuantifier != 0 }

// IsLookBehindEntry reports whether a character class may be the first term
// matched by a look-behind assertion that follows it.
func (n *Node) IsLookBehindEntry() bool { return n.flags&nodeLookBehindEntry != 0 }

// IsNegated reports whether a look-ahead assertion is negative.
func (n *Node) IsNegated() bool { return n.flags&nodeNegated != 0 }

// IsDead reports whether the node was removed from the tree.
func (n *Node) IsDead() bool { return n.flags&nodeDead != 0 }

func (n *Node) setFlag(f nodeFlags, v bool) {
	if v {
		n.flags |= f
	} else {
		n.flags &^= f
	}
}

// Properties summarizes the constructs a pattern uses.
type Properties uint8

const (
	propBackReferences Properties = 1 << iota
	propAlternations
	propLoops
	propCaptureGroups
	propLargeCountedRepetitions
	propComplexLookAheadAssertions
	propComplexLookBehindAssertions
)

func (p Properties) HasBackReferences() bool          { return p&propBackReferences != 0 }
func (p Properties) HasAlternations() bool            { return p&propAlternations != 0 }
func (p Properties) HasLoops() bool                   { return p&propLoops != 0 }
func (p Properties) HasCaptureGroups() bool           { return p&propCaptureGroups != 0 }
func (p Properties) HasLargeCountedRepetitions() bool { return p&propLargeCountedRepetitions != 0 }

// HasComplexLookAheadAssertions reports whether some look-ahead assertion
// contains groups or alternations.
func (p Properties) HasComplexLookAheadAssertions() bool {
	return p&propComplexLookAheadAssertions != 0
}

// HasComplexLookBehindAssertions reports whether some look-behind assertion
// contains groups or alternations.
func (p Properties) HasComplexLookBehindAssertions() bool {
	return p&propComplexLookBehindAssertions != 0
}

func (p Properties) String() string {
	names := [...]string{
		"backReferences",
		"alternations",
		"loops",
		"captureGroups",
		"largeCountedRepetitions",
		"complexLookAheadAssertions",
		"complexLookBehindAssertions",
	}
	s := ""
	for i, name := range names {
		if p&(1<<i) != 0 {
			if s != "" {
				s += "|"
			}
			s += name
		}
	}
	return s
}

// RegexAST is a parsed pattern. All nodes live in one arena and refer to each
// other by NodeID. A RegexAST is not modified after Parse returns and may be
// read concurrently.
type RegexAST struct {
	source     RegexSource
	nodes      []Node
	root       NodeID
	properties Properties
	// Next capture group index.
	groupCount    int
	numberOfNodes int
	prefix        Prefix
	prefilter     *Prefilter
}

func newRegexAST(source RegexSource) *RegexAST {
	return &RegexAST{source: source, root: NoNode}
}

func (a *RegexAST) Source() RegexSource { return a.source }

// Root returns the KindRoot node. Its Group is the top-level group.
func (a *RegexAST) Root() NodeID { return a.root }

// RootGroup returns the top-level group.
func (a *RegexAST) RootGroup() NodeID { return a.nodes[a.root].Group }

func (a *RegexAST) Properties() Properties { return a.properties }

// NumberOfCaptureGroups returns the number of capture groups including group
// 0, the whole match.
func (a *RegexAST) NumberOfCaptureGroups() int { return a.groupCount }

// NumberOfNodes returns the number of nodes reachable from the root.
func (a *RegexAST) NumberOfNodes() int { return a.numberOfNodes }

// Node returns the node with the given id. The pointer is only valid until
// the arena grows.
func (a *RegexAST) Node(id NodeID) *Node {
	return &a.nodes[id]
}

func (a *RegexAST) newNode(n Node) NodeID {
	n.Parent = NoNode
	n.ID = -1
	n.Group = NoNode
	a.nodes = append(a.nodes, n)
	return NodeID(len(a.nodes) - 1)
}

func (a *RegexAST) createRoot() NodeID {
	return a.newNode(Node{Kind: KindRoot})
}

func (a *RegexAST) createGroup() NodeID {
	return a.newNode(Node{Kind: KindGroup})
}

func (a *RegexAST) createCaptureGroup(groupNr int) NodeID {
	id := a.newNode(Node{Kind: KindGroup, GroupNr: groupNr})
	a.nodes[id].flags |= nodeCapture
	return id
}

func (a *RegexAST) createSequence() NodeID {
	return a.newNode(Node{Kind: KindSequence})
}

func (a *RegexAST) createCharacterClass(b MatcherBuilder) NodeID {
	return a.newNode(Node{Kind: KindCharacterClass, Matcher: b.Build()})
}

func (a *RegexAST) createLookAheadAssertion(negate bool) NodeID {
	id := a.newNode(Node{Kind: KindLookAheadAssertion})
	a.nodes[id].setFlag(nodeNegated, negate)
	return id
}

func (a *RegexAST) createLookBehindAssertion() NodeID {
	return a.newNode(Node{Kind: KindLookBehindAssertion})
}

func (a *RegexAST) createPositionAssertion(kind PositionKind) NodeID {
	return a.newNode(Node{Kind: KindPositionAssertion, Position: kind})
}

func (a *RegexAST) createBackReference(groupNr int) NodeID {
	return a.newNode(Node{Kind: KindBackReference, GroupNr: groupNr})
}

// setGroup attaches group to a root or lookaround node.
func (a *RegexAST) setGroup(parent, group NodeID) {
	a.nodes[parent].Group = group
	a.nodes[group].Parent = parent
}

func (a *RegexAST) addSequence(group NodeID) NodeID {
	seq := a.createSequence()
	a.appendSequence(group, seq)
	return seq
}

func (a *RegexAST) appendSequence(group, seq NodeID) {
	a.nodes[seq].Parent = group
	a.nodes[group].Alternatives = append(a.nodes[group].Alternatives, seq)
}

func (a *RegexAST) insertFirst(group, seq NodeID) {
	a.nodes[seq].Parent = group
	g := &a.nodes[group]
	g.Alternatives = append([]NodeID{seq}, g.Alternatives...)
}

func (a *RegexAST) addTerm(seq, term NodeID) {
	a.nodes[term].Parent = seq
	a.nodes[seq].Terms = append(a.nodes[seq].Terms, term)
}

func (a *RegexAST) lastTerm(seq NodeID) NodeID {
	terms := a.nodes[seq].Terms
	if len(terms) == 0 {
		return NoNode
	}
	return terms[len(terms)-1]
}

func (a *RegexAST) removeLast(seq NodeID) {
	s := &a.nodes[seq]
	s.Terms = s.Terms[:len(s.Terms)-1]
}

func (a *RegexAST) isInLookAround(id NodeID, kind NodeKind) bool {
	for p := a.nodes[id].Parent; p != NoNode; p = a.nodes[p].Parent {
		if a.nodes[p].Kind == kind {
			return true
		}
	}
	return false
}

func (a *RegexAST) isInLookAheadAssertion(id NodeID) bool {
	return a.isInLookAround(id, KindLookAheadAssertion)
}

func (a *RegexAST) isInLookBehindAssertion(id NodeID) bool {
	return a.isInLookAround(id, KindLookBehindAssertion)
}

// Prefix returns the literal prefixes computed for the pattern.
func (a *RegexAST) Prefix() Prefix { return a.prefix }
