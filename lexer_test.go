package regast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gotest.tools/v3/assert"
)

func lexAll(t *testing.T, pattern string, flags Flag) []Token {
	t.Helper()
	l := NewLexer(RegexSource{Pattern: pattern, Flags: flags})
	var tokens []Token
	for l.HasNext() {
		tok, err := l.Next()
		assert.NilError(t, err)
		tokens = append(tokens, tok)
	}
	return tokens
}

func TestLexerTokenKinds(t *testing.T) {
	tokens := lexAll(t, `^a|(b)*(?:c)(?=d)(?!e)(?<=f)\b\B\1$`, 0)
	kinds := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.Kind
	}
	assert.DeepEqual(t, kinds, []TokenKind{
		TokenCaret,
		TokenCharClass,
		TokenAlternation,
		TokenCaptureGroupBegin,
		TokenCharClass,
		TokenGroupEnd,
		TokenQuantifier,
		TokenNonCaptureGroupBegin,
		TokenCharClass,
		TokenGroupEnd,
		TokenLookAheadAssertionBegin,
		TokenCharClass,
		TokenGroupEnd,
		TokenLookAheadAssertionBegin,
		TokenCharClass,
		TokenGroupEnd,
		TokenLookBehindAssertionBegin,
		TokenCharClass,
		TokenGroupEnd,
		TokenWordBoundary,
		TokenNonWordBoundary,
		TokenBackReference,
		TokenDollar,
	})
	assert.Assert(t, !tokens[10].Negate)
	assert.Assert(t, tokens[13].Negate)
	assert.Equal(t, tokens[21].GroupNr, 1)
}

func TestLexerQuantifiers(t *testing.T) {
	cases := []struct {
		pattern  string
		expected Token
	}{
		{"a*", Token{Kind: TokenQuantifier, Pos: 1, Min: 0, Max: Infinite, Greedy: true}},
		{"a+?", Token{Kind: TokenQuantifier, Pos: 1, Min: 1, Max: Infinite}},
		{"a?", Token{Kind: TokenQuantifier, Pos: 1, Min: 0, Max: 1, Greedy: true}},
		{"a{3}", Token{Kind: TokenQuantifier, Pos: 1, Min: 3, Max: 3, Greedy: true}},
		{"a{3,}", Token{Kind: TokenQuantifier, Pos: 1, Min: 3, Max: Infinite, Greedy: true}},
		{"ab{2,5}?", Token{Kind: TokenQuantifier, Pos: 2, Min: 2, Max: 5}},
		{"a{99999999999}", Token{Kind: TokenQuantifier, Pos: 1, Min: 2147483647, Max: 2147483647, Greedy: true}},
	}
	for _, c := range cases {
		tokens := lexAll(t, c.pattern, 0)
		assert.DeepEqual(t, tokens[len(tokens)-1], c.expected, cmp.AllowUnexported(CodePointSet{}))
	}
}

func TestLexerPositions(t *testing.T) {
	tokens := lexAll(t, `ab(?:c)`, 0)
	positions := make([]int, len(tokens))
	for i, tok := range tokens {
		positions[i] = tok.Pos
	}
	assert.DeepEqual(t, positions, []int{0, 1, 2, 5, 6})

	// Positions count code units.
	tokens = lexAll(t, "\U0001F600a", FlagUnicode)
	assert.Equal(t, len(tokens), 2)
	assert.Equal(t, tokens[1].Pos, 2)
}

func TestForwardReferences(t *testing.T) {
	tokens := lexAll(t, `\2(a)(b)`, 0)
	assert.Equal(t, tokens[0].Kind, TokenBackReference)
	assert.Equal(t, tokens[0].GroupNr, 2)

	tokens = lexAll(t, `\k<second>(?<first>a)(?<second>b)`, 0)
	assert.Equal(t, tokens[0].GroupNr, 2)

	// Groups inside classes and escaped parentheses are not counted.
	_, err := Parse(`\2[(](a)\(`, 0)
	assert.ErrorContains(t, err, errNonExistentBackReference)
}

func classSet(t *testing.T, pattern string, flags Flag) *CodePointSet {
	t.Helper()
	set, err := ClassSet(pattern, flags)
	assert.NilError(t, err)
	return set
}

func TestClassSet(t *testing.T) {
	cases := []struct {
		pattern  string
		flags    Flag
		expected []CodePointRange
	}{
		{`a`, 0, []cr{{'a', 'a'}}},
		{`\d`, 0, []cr{{'0', '9'}}},
		{`\D`, 0, []cr{{0, '0' - 1}, {'9' + 1, 0xffff}}},
		{`\D`, FlagUnicode, []cr{{0, '0' - 1}, {'9' + 1, 0x10ffff}}},
		{`\w`, 0, []cr{{'0', '9'}, {'A', 'Z'}, {'_', '_'}, {'a', 'z'}}},
		{`\w`, FlagIgnoreCase, []cr{{'0', '9'}, {'A', 'Z'}, {'_', '_'}, {'a', 'z'}}},
		{`\w`, FlagUnicode | FlagIgnoreCase, []cr{{'0', '9'}, {'A', 'Z'}, {'_', '_'}, {'a', 'z'}, {0x017f, 0x017f}, {0x212a, 0x212a}}},
		{`[a-c]`, FlagIgnoreCase, []cr{{'A', 'C'}, {'a', 'c'}}},
		{`[^a-c]`, FlagIgnoreCase, []cr{{0, 'A' - 1}, {'D', 'a' - 1}, {'d', 0xffff}}},
		{`[a\-z]`, 0, []cr{{'-', '-'}, {'a', 'a'}, {'z', 'z'}}},
		{`[-a]`, 0, []cr{{'-', '-'}, {'a', 'a'}}},
		{`[a-]`, 0, []cr{{'-', '-'}, {'a', 'a'}}},
		{`[\b]`, 0, []cr{{8, 8}}},
		{`[\d\s]`, 0, nil},
		{`[]`, 0, nil},
		{`[^]`, FlagUnicode, []cr{{0, 0x10ffff}}},
		{`.`, FlagDotAll | FlagUnicode, []cr{{0, 0x10ffff}}},
		{`.`, 0, []cr{{0, 9}, {11, 12}, {14, 0x2027}, {0x202a, 0xffff}}},
		{`\x41`, 0, []cr{{'A', 'A'}}},
		{`\u{1F600}`, FlagUnicode, []cr{{0x1f600, 0x1f600}}},
		{`😀`, FlagUnicode, []cr{{0x1f600, 0x1f600}}},
		{`\cJ`, 0, []cr{{'\n', '\n'}}},
		{`\0`, 0, []cr{{0, 0}}},
		{`\/`, FlagUnicode, []cr{{'/', '/'}}},
		{`\p{ASCII}`, FlagUnicode, []cr{{0, 0x7f}}},
		{`\P{Any}`, FlagUnicode, nil},
	}
	for _, c := range cases {
		if c.expected == nil {
			continue
		}
		set := classSet(t, c.pattern, c.flags)
		assert.DeepEqual(t, set.Ranges(), c.expected, cmpopts.EquateEmpty())
	}

	assert.Assert(t, classSet(t, `[]`, 0).MatchesNothing())
	assert.Assert(t, classSet(t, `\P{Any}`, FlagUnicode).MatchesNothing())
	ds := classSet(t, `[\d\s]`, 0)
	assert.Assert(t, ds.Contains('5') && ds.Contains(' ') && ds.Contains(0xfeff) && !ds.Contains('a'))
}

func TestClassSetProperties(t *testing.T) {
	s := classSet(t, `\s`, 0)
	for _, c := range []rune{'\t', '\n', '\v', '\f', '\r', ' ', 0xa0, 0x1680, 0x2000, 0x2028, 0x2029, 0x3000, 0xfeff} {
		assert.Assert(t, s.Contains(c), "%04x", c)
	}
	assert.Assert(t, !s.Contains(0x2800))

	lu := classSet(t, `\p{Lu}`, FlagUnicode)
	assert.Assert(t, lu.Contains('A') && lu.Contains(0x10400) && !lu.Contains('a'))
	assert.Assert(t, classSet(t, `\p{gc=Lu}`, FlagUnicode).Equal(lu))
	assert.Assert(t, classSet(t, `\p{General_Category=Lu}`, FlagUnicode).Equal(lu))

	notLu := classSet(t, `\P{Lu}`, FlagUnicode)
	notLu.Union(lu)
	assert.Assert(t, notLu.MatchesEverything())

	greek := classSet(t, `\p{Script=Greek}`, FlagUnicode)
	assert.Assert(t, greek.Contains(0x3b1) && !greek.Contains('a'))
	assert.Assert(t, classSet(t, `\p{sc=Greek}`, FlagUnicode).Equal(greek))
	assert.Assert(t, classSet(t, `\p{White_Space}`, FlagUnicode).Contains(' '))

	// Case closure of a Unicode property.
	li := classSet(t, `\p{Lu}`, FlagUnicode|FlagIgnoreCase)
	assert.Assert(t, li.Contains('a'))
}

func TestClassSetErrors(t *testing.T) {
	for _, pattern := range []string{"", "ab", "(a)", "a*", "^"} {
		_, err := ClassSet(pattern, 0)
		assert.ErrorContains(t, err, errExpectedCharacterClassInput, pattern)
	}
	_, err := ClassSet("[", 0)
	assert.ErrorContains(t, err, errUnterminatedCharacterClass)
}

func TestLexerGroupNames(t *testing.T) {
	for _, pattern := range []string{
		`(?<$>a)`,
		`(?<_a1>a)`,
		`(?<a>a)\k<a>`,
		`(?<π>a)`,
	} {
		_, err := Parse(pattern, 0)
		assert.NilError(t, err, pattern)
	}
	for _, pattern := range []string{`(?<>a)`, `(?<a`, `(?<a-b>c)`} {
		_, err := Parse(pattern, 0)
		assert.ErrorContains(t, err, errInvalidGroupName, pattern)
	}
}

func TestTokenSlice(t *testing.T) {
	tokens := []Token{{Kind: TokenCaret}, {Kind: TokenDollar}}
	s := NewTokenSlice(tokens...)
	var got []Token
	for s.HasNext() {
		tok, err := s.Next()
		assert.NilError(t, err)
		got = append(got, tok)
	}
	assert.DeepEqual(t, got, tokens, cmp.AllowUnexported(CodePointSet{}))
}
