package regast

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
)

func randomRanges(rng *rand.Rand, n int) []uint16 {
	bounds := map[uint16]bool{}
	for len(bounds) < n*2 {
		bounds[uint16(rng.IntN(0x10000))] = true
	}
	sorted := make([]uint16, 0, len(bounds))
	for b := range bounds {
		sorted = append(sorted, b)
	}
	slices.Sort(sorted)
	return sorted
}

func TestMatcherTree(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for n := 0; n <= 40; n++ {
		ranges := randomRanges(rng, n)
		for _, invert := range []bool{false, true} {
			m := NewMatcher(invert, ranges)
			assert.DeepEqual(t, m.Ranges(), ranges)
			probes := []uint16{0, 0xffff}
			for _, b := range ranges {
				probes = append(probes, b, b-1, b+1)
			}
			for range 200 {
				probes = append(probes, uint16(rng.IntN(0x10000)))
			}
			for _, c := range probes {
				want := false
				for i := 0; i < len(ranges); i += 2 {
					if ranges[i] <= c && c <= ranges[i+1] {
						want = true
					}
				}
				assert.Equal(t, m.Test(c), want != invert, "n=%d c=%04x", n, c)
			}
		}
	}
}

func TestMatcherLayout(t *testing.T) {
	m := NewMatcher(false, []uint16{'0', '9', 'A', 'Z', '_', '_', 'a', 'z'})
	assert.DeepEqual(t, m.Tree(), []uint16{'_', '_', 'A', 'Z', 'a', 'z', '0', '9'})

	m = NewMatcher(false, []uint16{1, 1})
	assert.DeepEqual(t, m.Tree(), []uint16{1, 1})

	m = NewMatcher(false, nil)
	assert.Equal(t, len(m.Tree()), 0)
	assert.Assert(t, m.MatchesNothing())
	assert.Assert(t, !m.Test(0))
	assert.Assert(t, NewMatcher(true, []uint16{0, 0xffff}).MatchesNothing())
}

func TestMatcherBuilder(t *testing.T) {
	cases := []struct {
		set    *CodePointSet
		invert bool
		tree   []uint16
		str    string
	}{
		{&CodePointSet{}, false, []uint16{}, "[]"},
		{CodePointSetOf('a'), false, []uint16{'a', 'a'}, "[a]"},
		{NewCodePointSet(cr{0, 'a' - 1}, cr{'a' + 1, 0xffff}), true, []uint16{'a', 'a'}, "![a]"},
		{NewCodePointSet(cr{0, 0x10ffff}), true, []uint16{}, "![]"},
		{NewCodePointSet(cr{'b', 0x10ffff}), false, []uint16{'b', 0xffff}, `[b-\uffff]`},
		{NewCodePointSet(cr{0x10000, 0x10ffff}), false, []uint16{}, "[]"},
	}
	for _, c := range cases {
		m := NewMatcherBuilder(c.set).Build()
		assert.Equal(t, m.Inverted(), c.invert, c.str)
		assert.DeepEqual(t, m.Tree(), c.tree)
		assert.Equal(t, m.String(), c.str)

		expected := c.set.CreateIntersection(NewCodePointSet(cr{0, 0xffff}))
		assert.Assert(t, m.CodePointSet().Equal(expected), "%s: %s", c.str, m.CodePointSet())
	}
}

func TestMatcherBuilderAgreesWithSet(t *testing.T) {
	for _, pattern := range []string{`\w`, `\W`, `\s`, `\S`, `.`, `[^\n]`, `[a-zA-Z]`, `\p{Lu}`, `\p{sc=Greek}`} {
		flags := Flag(0)
		if strings.HasPrefix(pattern, `\p`) {
			flags = FlagUnicode
		}
		set, err := ClassSet(pattern, flags)
		assert.NilError(t, err)
		m := NewMatcherBuilder(set).Build()
		for c := 0; c <= 0xffff; c++ {
			if m.Test(uint16(c)) != set.Contains(rune(c)) {
				t.Fatalf("%s: mismatch at %04x", pattern, c)
			}
		}
	}
}
