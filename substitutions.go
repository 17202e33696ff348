package regast

import (
	"strings"
	"sync"
)

// fragment is a group parsed from a fixed pattern. It is copied into every
// AST that uses it and never modified.
type fragment struct {
	ast   *RegexAST
	group NodeID
}

const (
	wordBoundarySrc    = `(?:^|(?<=\W))(?=\w)|(?<=\w)(?:(?=\W)|$)`
	nonWordBoundarySrc = `(?:^|(?<=\W))(?:(?=\W)|$)|(?<=\w)(?=\w)`
)

var (
	substitutionsOnce sync.Once
	substitutions     struct {
		wordBoundary                     fragment
		nonWordBoundary                  fragment
		unicodeIgnoreCaseWordBoundary    fragment
		unicodeIgnoreCaseNonWordBoundary fragment
		multiLineCaret                   fragment
		multiLineDollar                  fragment
		noLeadSurrogateBehind            fragment
		noTrailSurrogateAhead            fragment
	}
)

// loadSubstitutions parses the fragments on first use.
//
// Under Unicode and IgnoreCase, \w additionally matches U+017F and U+212A.
// Parsing the boundary patterns in that mode would turn \W into surrogate
// pair alternations, which look-behind cannot handle, so the extra code
// points are spelled out and the patterns are parsed in default mode.
func loadSubstitutions() {
	substitutionsOnce.Do(func() {
		includeExtraCases := strings.NewReplacer(`\w`, `[\w\u017F\u212A]`, `\W`, `[^\w\u017F\u212A]`)
		s := &substitutions
		s.wordBoundary = parseRootLess(wordBoundarySrc)
		s.nonWordBoundary = parseRootLess(nonWordBoundarySrc)
		s.unicodeIgnoreCaseWordBoundary = parseRootLess(includeExtraCases.Replace(wordBoundarySrc))
		s.unicodeIgnoreCaseNonWordBoundary = parseRootLess(includeExtraCases.Replace(nonWordBoundarySrc))
		s.multiLineCaret = parseRootLess(`(?:^|(?<=[\r\n\u2028\u2029]))`)
		s.multiLineDollar = parseRootLess(`(?:$|(?=[\r\n\u2028\u2029]))`)
		s.noLeadSurrogateBehind = parseRootLess(`(?:^|(?<=[^\uD800-\uDBFF]))`)
		s.noTrailSurrogateAhead = parseRootLess(`(?:$|(?=[^\uDC00-\uDFFF]))`)
	})
}

func parseRootLess(pattern string) fragment {
	source := RegexSource{Pattern: pattern}
	p := NewParser(source, NewLexer(source), DefaultOptions())
	root, err := p.parse(false)
	if err != nil {
		internalError("substitution " + pattern + ": " + err.Error())
	}
	// (?:...) patterns yield their single group.
	if alts := p.ast.nodes[root].Alternatives; len(alts) == 1 {
		if terms := p.ast.nodes[alts[0]].Terms; len(terms) == 1 {
			root = terms[0]
		}
	}
	return fragment{ast: p.ast, group: root}
}
