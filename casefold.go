package regast

import (
	"slices"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Extra characters matched by \w under combined Unicode and IgnoreCase:
// U+017F LATIN SMALL LETTER LONG S and U+212A KELVIN SIGN fold into [sk].
var ecmaExtraWordChars = CodePointSetOf(0x017f, 0x212a)

var (
	canonOnce  sync.Once
	canonTable map[rune]rune
)

// canonicalizeUnit returns the character that c is compared as under
// non-Unicode ignoreCase: its full upper case mapping, unless that is longer
// than one code unit or moves a non-ASCII character into ASCII.
func canonicalizeUnit(c rune) rune {
	canonOnce.Do(func() {
		upper := cases.Upper(language.Und)
		canonTable = map[rune]rune{}
		for _, cr := range unicode.CaseRanges {
			for r := rune(cr.Lo); r <= rune(cr.Hi) && r <= 0xffff; r++ {
				u := []rune(upper.String(string(r)))
				if len(u) != 1 || u[0] > 0xffff || r >= 0x80 && u[0] < 0x80 {
					continue
				}
				if u[0] != r {
					canonTable[r] = u[0]
				}
			}
		}
	})
	if u, ok := canonTable[c]; ok {
		return u
	}
	return c
}

// caseClosure returns s extended by every code point that matches a member of
// s case-insensitively. Unicode mode uses simple case folding. Otherwise two
// code units match if they canonicalize to the same unit.
func caseClosure(s *CodePointSet, unicodeMode bool) *CodePointSet {
	var extra []rune
	for _, r := range s.ranges {
		for _, cr := range unicode.CaseRanges {
			lo := max(r.Lo, rune(cr.Lo))
			hi := min(r.Hi, rune(cr.Hi))
			for c := lo; c <= hi; c++ {
				for f := unicode.SimpleFold(c); f != c; f = unicode.SimpleFold(f) {
					if !unicodeMode && (f > 0xffff || canonicalizeUnit(f) != canonicalizeUnit(c)) {
						continue
					}
					extra = append(extra, f)
				}
			}
		}
	}
	res := s.Clone()
	if len(extra) == 0 {
		return res
	}
	slices.Sort(extra)
	add := &CodePointSet{}
	for i := 0; i < len(extra); {
		lo := extra[i]
		for i+1 < len(extra) && (extra[i] == extra[i+1] || extra[i]+1 == extra[i+1]) {
			i++
		}
		add.ranges = append(add.ranges, CodePointRange{Lo: lo, Hi: extra[i]})
		i++
	}
	res.Union(add)
	return res
}
