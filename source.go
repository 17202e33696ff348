package regast

import (
	"unicode/utf16"
)

func isASCIIWordChar[T uint16 | rune](c T) bool {
	return ((uint32(c) - '0') <= (9 - 0)) || (uint32(lowerASCII(c))-'a' <= 'z'-'a') || c == '_'
}

func lowerASCII[T uint16 | rune](c T) T {
	return c | ('a' - 'A')
}

func isHexDigit(c uint16) bool {
	return ((c - '0') <= (9 - 0)) || (lowerASCII(c)-'a' <= 'f'-'a')
}

func isDigit(c uint16) bool {
	return (c - '0') <= 9
}

func isASCIILetterChar(c uint16) bool {
	return lowerASCII(c)-'a' <= 'z'-'a'
}

func parseHexDigit(c uint16) uint16 {
	return (c & 0b1111) + (c>>6)*9
}

func isHighSurrogate(r rune) bool {
	return (r >> 10) == (0xd800 >> 10)
}

func isLowSurrogate(r rune) bool {
	return (r >> 10) == (0xdc00 >> 10)
}

// highSurrogate and lowSurrogate split an astral code point into its UTF-16
// encoding.
func highSurrogate(r rune) uint16 {
	return uint16((r-0x10000)>>10) + leadSurrogateMin
}

func lowSurrogate(r rune) uint16 {
	return uint16((r-0x10000)&0x3ff) + trailSurrogateMin
}

// patternSource is a cursor over the UTF-16 code units of a pattern.
type patternSource struct {
	units []uint16
	pos   int
}

func newPatternSource(pattern string) patternSource {
	return patternSource{units: utf16.Encode([]rune(pattern))}
}

func (s *patternSource) stringInRange(start, end int) string {
	return string(utf16.Decode(s.units[start:end]))
}

func (s *patternSource) atEnd() bool {
	return s.pos >= len(s.units)
}

// If source is ended, returns 0, true
func (s *patternSource) nextCodeUnit() (uint16, bool) {
	return s.nextNthCodeUnit(0)
}

// If source is ended, returns 0, true
func (s *patternSource) nextNthCodeUnit(n int) (uint16, bool) {
	pos := s.pos + n
	if pos >= len(s.units) {
		return 0, true
	}
	return s.units[pos], false
}

func (s *patternSource) consumeNextCodeUnit(expected uint16) bool {
	if char, ended := s.nextCodeUnit(); ended || char != expected {
		return false
	}
	s.pos++
	return true
}

// move reads the next character. In Unicode mode a surrogate pair is read as
// one code point.
func (s *patternSource) move(isUnicode bool) (rune, bool) {
	if s.pos >= len(s.units) {
		return 0, false
	}
	r := rune(s.units[s.pos])
	s.pos++
	if !isUnicode || !isHighSurrogate(r) || s.pos == len(s.units) {
		return r, true
	}
	lo := rune(s.units[s.pos])
	if isLowSurrogate(lo) {
		r = utf16.DecodeRune(r, lo)
		s.pos++
	}
	return r, true
}
