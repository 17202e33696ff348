package regast

import (
	"strings"
	"testing"
	"unicode/utf16"

	"gotest.tools/v3/assert"
)

func units(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

func literalStrings(p Prefix) []string {
	var res []string
	for _, lit := range p.Literals {
		res = append(res, string(utf16.Decode(lit)))
	}
	return res
}

func TestPrefix(t *testing.T) {
	cases := []struct {
		pattern  string
		flags    Flag
		literals []string
		anchored bool
	}{
		{"abc|abd", 0, []string{"abc", "abd"}, false},
		{"^abc", 0, []string{"abc"}, true},
		{"^a|^b", 0, []string{"a", "b"}, true},
		{"^a|b", 0, []string{"a", "b"}, false},
		{"^a", FlagMultiline, []string{"a"}, false},
		{"a*b", 0, nil, false},
		{"ab?c", 0, []string{"abc", "ac"}, false},
		{"a.c", 0, []string{"a"}, false},
		{"[ab]x", 0, []string{"ax", "bx"}, false},
		{"ab", FlagIgnoreCase, []string{"AB", "Ab", "aB", "ab"}, false},
		{"abcdefghijklmnopqrst", 0, []string{"abcdefghijklmnop"}, false},
		{"(?=x)ab", 0, []string{"ab"}, false},
		{"a|", 0, nil, false},
		{`(a)\1`, 0, []string{"a"}, false},
		{"", 0, nil, false},
	}
	for _, c := range cases {
		t.Run(c.pattern, func(t *testing.T) {
			ast := MustParse(c.pattern, c.flags)
			p := ast.Prefix()
			assert.DeepEqual(t, literalStrings(p), c.literals)
			assert.Equal(t, p.Anchored, c.anchored)
			assert.Equal(t, p.IsEmpty(), c.literals == nil)
			assert.Equal(t, ast.Prefilter() == nil, c.literals == nil)
		})
	}
}

func TestPrefixLimits(t *testing.T) {
	p := MustParse("[a-h][a-h][a-h]", 0).Prefix()
	assert.Equal(t, len(p.Literals), 64)
	for _, lit := range p.Literals {
		assert.Equal(t, len(lit), 2)
	}

	opts := DefaultOptions()
	opts.MaxPrefixLength = 2
	opts.MaxPrefixClassSize = 1
	source := RegexSource{Pattern: "abc|[xy]z"}
	ast, err := NewParser(source, NewLexer(source), opts).Parse()
	assert.NilError(t, err)
	assert.Assert(t, ast.Prefix().IsEmpty())

	source = RegexSource{Pattern: "abc|xyz"}
	ast, err = NewParser(source, NewLexer(source), opts).Parse()
	assert.NilError(t, err)
	assert.DeepEqual(t, literalStrings(ast.Prefix()), []string{"ab", "xy"})
}

func TestPrefilter(t *testing.T) {
	pf := MustParse("a", 0).Prefilter()
	assert.Assert(t, pf != nil)
	assert.Equal(t, pf.Candidate(units("xxa"), 0), 2)
	assert.Equal(t, pf.Candidate(units("xxa"), 3), -1)
	assert.Equal(t, pf.Candidate(units("xxx"), 0), -1)
	// The encoded literal must not match across code unit boundaries.
	assert.Equal(t, pf.Candidate([]uint16{0x6100, 0x0000}, 0), -1)
	assert.Equal(t, pf.Candidate([]uint16{0x6100, 0x0061}, 0), 1)
	assert.Assert(t, pf.MayMatch(units("banana")))
	assert.Assert(t, !pf.MayMatch(units("xyz")))

	pf = MustParse("abc", 0).Prefilter()
	assert.Equal(t, pf.Candidate(units("abcabc"), 0), 0)
	assert.Equal(t, pf.Candidate(units("abcabc"), 1), 3)
	assert.Equal(t, pf.Candidate(units("abcabc"), 4), -1)
	assert.Equal(t, pf.Candidate(units("abc"), 4), -1)

	pf = MustParse("foo|bar", 0).Prefilter()
	assert.Equal(t, pf.Candidate(units("xxbarfoo"), 0), 2)
	assert.Equal(t, pf.Candidate(units("xxbarfoo"), 3), 5)

	pf = MustParse("été", 0).Prefilter()
	subject := units(strings.Repeat("x", 5) + "été")
	assert.Equal(t, pf.Candidate(subject, 0), 5)
}

func TestNilPrefilter(t *testing.T) {
	var pf *Prefilter
	assert.Equal(t, pf.Candidate(units("abc"), 2), 2)
	assert.Equal(t, pf.Candidate(units("abc"), 3), 3)
	assert.Equal(t, pf.Candidate(units("abc"), 4), -1)
	assert.Assert(t, pf.MayMatch(nil))
	assert.Assert(t, MustParse("a*b", 0).Prefilter() == nil)
}
