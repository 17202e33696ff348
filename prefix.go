package regast

import (
	"encoding/binary"
	"slices"

	"github.com/coregx/ahocorasick"
)

// Prefix describes how matches of a pattern begin.
type Prefix struct {
	// Every match starts with one of these code unit strings. Empty if no
	// useful prefix is known.
	Literals [][]uint16
	// Every alternative starts with "^" outside multiline mode.
	Anchored bool
}

func (p Prefix) IsEmpty() bool {
	return len(p.Literals) == 0
}

// literalSet holds the strings a node can start with. If complete is set,
// the node matches exactly these strings. A set containing the empty string
// carries no information.
type literalSet struct {
	lits     [][]uint16
	complete bool
}

var unknownLiterals = literalSet{lits: [][]uint16{{}}}

type prefixExtractor struct {
	ast  *RegexAST
	opts Options
}

func (a *RegexAST) createPrefix(opts Options) {
	e := prefixExtractor{ast: a, opts: opts}
	root := a.RootGroup()
	res := e.group(root)
	a.prefix = Prefix{Anchored: a.isAnchored(root)}
	if slices.ContainsFunc(res.lits, func(l []uint16) bool { return len(l) == 0 }) {
		return
	}
	a.prefix.Literals = res.lits
	a.prefilter = newPrefilter(res.lits)
}

func (a *RegexAST) isAnchored(root NodeID) bool {
	for _, alt := range a.nodes[root].Alternatives {
		terms := a.nodes[alt].Terms
		if len(terms) == 0 {
			return false
		}
		first := &a.nodes[terms[0]]
		if first.Kind != KindPositionAssertion || first.Position != PositionCaret {
			return false
		}
	}
	return true
}

func (e *prefixExtractor) group(id NodeID) literalSet {
	n := &e.ast.nodes[id]
	res := literalSet{complete: !n.IsLoop()}
	for _, alt := range n.Alternatives {
		s := e.sequence(alt)
		res.lits = append(res.lits, s.lits...)
		res.complete = res.complete && s.complete
		if len(res.lits) > e.opts.MaxPrefixLiterals {
			return unknownLiterals
		}
	}
	res.lits = dedupLiterals(res.lits)
	return res
}

func (e *prefixExtractor) sequence(id NodeID) literalSet {
	cur := literalSet{lits: [][]uint16{{}}, complete: true}
	for _, t := range e.ast.nodes[id].Terms {
		if !cur.complete {
			break
		}
		cur = e.concat(cur, e.term(t))
	}
	return cur
}

func (e *prefixExtractor) term(id NodeID) literalSet {
	n := &e.ast.nodes[id]
	switch n.Kind {
	case KindCharacterClass:
		set := n.Matcher.CodePointSet()
		if set.Size() > e.opts.MaxPrefixClassSize {
			return unknownLiterals
		}
		res := literalSet{complete: true}
		for _, r := range set.ranges {
			for c := r.Lo; c <= r.Hi; c++ {
				res.lits = append(res.lits, []uint16{uint16(c)})
			}
		}
		return res
	case KindGroup:
		return e.group(id)
	case KindPositionAssertion, KindLookAheadAssertion, KindLookBehindAssertion:
		return literalSet{lits: [][]uint16{{}}, complete: true}
	default:
		return unknownLiterals
	}
}

// concat returns the cross product of x and y. If it grows beyond the
// configured limits it is cut off and marked incomplete.
func (e *prefixExtractor) concat(x, y literalSet) literalSet {
	if len(x.lits)*len(y.lits) > e.opts.MaxPrefixLiterals {
		return literalSet{lits: x.lits}
	}
	res := literalSet{complete: y.complete}
	for _, l := range x.lits {
		for _, r := range y.lits {
			lit := append(slices.Clip(l), r...)
			if len(lit) > e.opts.MaxPrefixLength {
				lit = lit[:e.opts.MaxPrefixLength]
				res.complete = false
			}
			res.lits = append(res.lits, lit)
		}
	}
	res.lits = dedupLiterals(res.lits)
	return res
}

func dedupLiterals(lits [][]uint16) [][]uint16 {
	slices.SortFunc(lits, slices.Compare[[]uint16])
	return slices.CompactFunc(lits, slices.Equal[[]uint16])
}

// Prefilter finds positions in a subject where a match may start, using an
// Aho-Corasick automaton over the literal prefixes. A nil Prefilter accepts
// every position. It is safe for concurrent use.
type Prefilter struct {
	auto *ahocorasick.Automaton
}

// Prefilter returns the prefilter for the pattern's literal prefixes, or nil
// if there are none.
func (a *RegexAST) Prefilter() *Prefilter {
	return a.prefilter
}

// The automaton works on bytes, so literals and subjects are searched in
// their UTF-16LE encoding and matches at odd offsets are discarded.
func newPrefilter(lits [][]uint16) *Prefilter {
	if len(lits) == 0 {
		return nil
	}
	builder := ahocorasick.NewBuilder()
	for _, lit := range lits {
		builder.AddPattern(encodeUTF16LE(lit))
	}
	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	return &Prefilter{auto: auto}
}

func encodeUTF16LE(units []uint16) []byte {
	b := make([]byte, 0, len(units)*2)
	for _, u := range units {
		b = binary.LittleEndian.AppendUint16(b, u)
	}
	return b
}

// Candidate returns the first index at or after from at which a match may
// start, or -1.
func (p *Prefilter) Candidate(subject []uint16, from int) int {
	if from > len(subject) {
		return -1
	}
	if p == nil {
		return from
	}
	haystack := encodeUTF16LE(subject)
	for at := from * 2; at < len(haystack); {
		m := p.auto.Find(haystack, at)
		if m == nil {
			return -1
		}
		if m.Start%2 == 0 {
			return m.Start / 2
		}
		at = m.Start + 1
	}
	return -1
}

// MayMatch reports whether some match of the pattern could occur in subject.
func (p *Prefilter) MayMatch(subject []uint16) bool {
	return p.Candidate(subject, 0) >= 0
}
