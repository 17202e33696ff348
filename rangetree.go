package regast

import (
	"math/bits"
	"strings"
)

// Matcher tests single UTF-16 code units against a set of ranges stored as a
// left-balanced binary search tree.
//
// The tree is a flat array of 2n code units, two slots (lo, hi) per node, with
// the root at index 0. The children of the node at index i are at 2i+2 and
// 2i+4. A Matcher is immutable and safe for concurrent use.
type Matcher struct {
	tree   []uint16
	invert bool
}

// NewMatcher builds a matcher from sorted, disjoint ranges given as
// [lo0, hi0, lo1, hi1, ...]. The result of Test is negated if invert is set.
func NewMatcher(invert bool, ranges []uint16) *Matcher {
	if len(ranges)%2 != 0 {
		internalError("odd number of range bounds")
	}
	tree := make([]uint16, len(ranges))
	buildTree(tree, 0, ranges, 0, len(ranges)/2)
	return &Matcher{tree: tree, invert: invert}
}

// buildTree follows "On Left-balancing Binary Trees" (J. Andreas Baerentzen).
// nRanges counts ranges, not array slots.
func buildTree(tree []uint16, cur int, ranges []uint16, offset, nRanges int) {
	if nRanges == 0 {
		return
	}
	if nRanges == 1 {
		tree[cur] = ranges[offset]
		tree[cur+1] = ranges[offset+1]
		return
	}
	nearestPowerOf2 := 1 << (bits.Len(uint(nRanges)) - 1)
	remainder := nRanges - (nearestPowerOf2 - 1)
	var nLeft, nRight int
	if remainder <= nearestPowerOf2/2 {
		nLeft = (nearestPowerOf2-2)/2 + remainder
		nRight = (nearestPowerOf2 - 2) / 2
	} else {
		nLeft = nearestPowerOf2 - 1
		nRight = remainder - 1
	}
	median := offset + nLeft*2
	tree[cur] = ranges[median]
	tree[cur+1] = ranges[median+1]
	buildTree(tree, leftChild(cur), ranges, offset, nLeft)
	buildTree(tree, rightChild(cur), ranges, median+2, nRight)
}

func leftChild(i int) int  { return i*2 + 2 }
func rightChild(i int) int { return i*2 + 4 }

// Test reports whether c is matched.
func (m *Matcher) Test(c uint16) bool {
	return m.matchTree(c) != m.invert
}

func (m *Matcher) matchTree(c uint16) bool {
	i := 0
	for i < len(m.tree) {
		lo := m.tree[i]
		hi := m.tree[i+1]
		if lo <= c {
			if hi >= c {
				return true
			}
			i = rightChild(i)
		} else {
			i = leftChild(i)
		}
	}
	return false
}

func (m *Matcher) Inverted() bool { return m.invert }

// Tree returns the raw tree array. The slice must not be modified.
func (m *Matcher) Tree() []uint16 { return m.tree }

// Ranges returns the ranges stored in the tree in ascending order, not taking
// the invert flag into account.
func (m *Matcher) Ranges() []uint16 {
	res := make([]uint16, 0, len(m.tree))
	var walk func(i int)
	walk = func(i int) {
		if i >= len(m.tree) {
			return
		}
		walk(leftChild(i))
		res = append(res, m.tree[i], m.tree[i+1])
		walk(rightChild(i))
	}
	walk(0)
	return res
}

// CodePointSet returns the set of code units matched, with the invert flag
// applied.
func (m *Matcher) CodePointSet() *CodePointSet {
	s := &CodePointSet{}
	r := m.Ranges()
	for i := 0; i < len(r); i += 2 {
		s.ranges = append(s.ranges, CodePointRange{Lo: rune(r[i]), Hi: rune(r[i+1])})
	}
	if m.invert {
		s.invertWithin(0xffff)
	}
	return s
}

// MatchesNothing reports whether no code unit can be matched.
func (m *Matcher) MatchesNothing() bool {
	if m.invert {
		return len(m.tree) == 2 && m.tree[0] == 0 && m.tree[1] == 0xffff
	}
	return len(m.tree) == 0
}

func (m *Matcher) String() string {
	var sb strings.Builder
	if m.invert {
		sb.WriteByte('!')
	}
	sb.WriteByte('[')
	r := m.Ranges()
	for i := 0; i < len(r); i += 2 {
		writeCodePoint(&sb, rune(r[i]))
		if r[i+1] != r[i] {
			if r[i+1] != r[i]+1 {
				sb.WriteByte('-')
			}
			writeCodePoint(&sb, rune(r[i+1]))
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

// MatcherBuilder collects code-unit ranges for a character-class leaf.
type MatcherBuilder struct {
	set *CodePointSet
}

// NewMatcherBuilder creates a builder from s, clipped to the BMP.
func NewMatcherBuilder(s *CodePointSet) MatcherBuilder {
	bmp := &CodePointSet{ranges: []CodePointRange{{Lo: 0, Hi: 0xffff}}}
	return MatcherBuilder{set: s.CreateIntersection(bmp)}
}

// MatcherBuilderOf creates a builder matching exactly the given code unit.
func MatcherBuilderOf(c uint16) MatcherBuilder {
	return MatcherBuilder{set: CodePointSetOf(rune(c))}
}

func emptyMatcherBuilder() MatcherBuilder {
	return MatcherBuilder{set: &CodePointSet{}}
}

func trailSurrogateMatcherBuilder() MatcherBuilder {
	return MatcherBuilder{set: trailSurrogates.Clone()}
}

func (b MatcherBuilder) CodePointSet() *CodePointSet { return b.set }

// Build compiles the ranges into a Matcher. If the complement within the BMP
// needs fewer ranges, the complement is stored and the invert flag set.
func (b MatcherBuilder) Build() *Matcher {
	inverse := b.set.Clone()
	inverse.invertWithin(0xffff)
	src := b.set
	invert := false
	if len(inverse.ranges) < len(b.set.ranges) {
		src = inverse
		invert = true
	}
	ranges := make([]uint16, 0, len(src.ranges)*2)
	for _, r := range src.ranges {
		ranges = append(ranges, uint16(r.Lo), uint16(r.Hi))
	}
	return NewMatcher(invert, ranges)
}
