package regast

import (
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// CodePointRange is an inclusive range of code points.
type CodePointRange struct {
	Lo rune
	Hi rune
}

// CodePointSet is a set of code points stored as non-overlapping,
// non-adjacent ranges sorted in ascending order. The zero value is the
// empty set. Every mutating method keeps the representation canonical.
type CodePointSet struct {
	ranges []CodePointRange
}

// NewCodePointSet builds a set from arbitrary, possibly overlapping ranges.
func NewCodePointSet(ranges ...CodePointRange) *CodePointSet {
	s := &CodePointSet{}
	for _, r := range ranges {
		s.AddRange(r.Lo, r.Hi)
	}
	return s
}

// CodePointSetOf builds a set containing exactly the given code points.
func CodePointSetOf(cps ...rune) *CodePointSet {
	s := &CodePointSet{}
	for _, c := range cps {
		s.AddChar(c)
	}
	return s
}

var (
	bmpWithoutSurrogates = NewCodePointSet(CodePointRange{0, 0xd7ff}, CodePointRange{0xe000, 0xffff})
	leadSurrogates       = NewCodePointSet(CodePointRange{leadSurrogateMin, leadSurrogateMax})
	trailSurrogates      = NewCodePointSet(CodePointRange{trailSurrogateMin, trailSurrogateMax})
	astralSymbols        = NewCodePointSet(CodePointRange{0x10000, unicode.MaxRune})
)

const (
	leadSurrogateMin  = 0xd800
	leadSurrogateMax  = 0xdbff
	trailSurrogateMin = 0xdc00
	trailSurrogateMax = 0xdfff
)

func (s *CodePointSet) Clone() *CodePointSet {
	return &CodePointSet{ranges: slices.Clone(s.ranges)}
}

// Ranges returns the canonical ranges. The slice must not be modified.
func (s *CodePointSet) Ranges() []CodePointRange {
	return s.ranges
}

func (s *CodePointSet) MatchesNothing() bool {
	return len(s.ranges) == 0
}

func (s *CodePointSet) MatchesSomething() bool {
	return len(s.ranges) != 0
}

func (s *CodePointSet) MatchesEverything() bool {
	return len(s.ranges) == 1 && s.ranges[0].Lo == 0 && s.ranges[0].Hi == unicode.MaxRune
}

// MatchesSingleChar reports whether the set contains exactly one code point.
func (s *CodePointSet) MatchesSingleChar() bool {
	return len(s.ranges) == 1 && s.ranges[0].Lo == s.ranges[0].Hi
}

// Size returns the number of code points in the set.
func (s *CodePointSet) Size() int {
	n := 0
	for _, r := range s.ranges {
		n += int(r.Hi-r.Lo) + 1
	}
	return n
}

func (s *CodePointSet) Equal(other *CodePointSet) bool {
	return slices.Equal(s.ranges, other.ranges)
}

// Union adds all code points of other to s.
func (s *CodePointSet) Union(other *CodePointSet) {
	if len(other.ranges) == 0 {
		return
	}
	if len(s.ranges) == 0 {
		s.ranges = slices.Clone(other.ranges)
		return
	}
	ranges := make([]CodePointRange, 0, len(s.ranges)+len(other.ranges))

	i := 0
	j := 0

	for {
		var next CodePointRange
		if i < len(s.ranges) && (j >= len(other.ranges) || s.ranges[i].Lo < other.ranges[j].Lo) {
			next = s.ranges[i]
			i++
		} else if j < len(other.ranges) {
			next = other.ranges[j]
			j++
		} else {
			break
		}
		if len(ranges) == 0 {
			ranges = append(ranges, next)
			continue
		}
		r := &ranges[len(ranges)-1]
		if next.Hi <= r.Hi {
			continue
		}
		if next.Lo <= r.Hi+1 {
			r.Hi = next.Hi
			continue
		}
		ranges = append(ranges, next)
	}
	s.ranges = ranges
}

// AddRange adds [lo, hi] to s. Empty ranges (lo > hi) are ignored.
func (s *CodePointSet) AddRange(lo, hi rune) {
	if lo > hi {
		return
	}
	s.Union(&CodePointSet{ranges: []CodePointRange{{Lo: lo, Hi: hi}}})
}

// AddChar adds a single code point to s.
func (s *CodePointSet) AddChar(r rune) {
	if len(s.ranges) == 0 {
		s.ranges = []CodePointRange{{Lo: r, Hi: r}}
		return
	}
	if r == s.ranges[0].Lo-1 {
		s.ranges[0].Lo--
		return
	}
	if r < s.ranges[0].Lo {
		s.ranges = slices.Insert(s.ranges, 0, CodePointRange{Lo: r, Hi: r})
		return
	}
	for i := 0; i < len(s.ranges); i++ {
		rng := &s.ranges[i]
		if rng.Lo <= r && r <= rng.Hi {
			return
		}
		if i < len(s.ranges)-1 && rng.Hi < r && r < s.ranges[i+1].Lo {
			if rng.Hi+2 == s.ranges[i+1].Lo {
				rng.Hi = s.ranges[i+1].Hi
				s.ranges = slices.Delete(s.ranges, i+1, i+2)
			} else if rng.Hi+1 == r {
				rng.Hi++
			} else if s.ranges[i+1].Lo-1 == r {
				s.ranges[i+1].Lo--
			} else {
				s.ranges = slices.Insert(s.ranges, i+1, CodePointRange{Lo: r, Hi: r})
			}
			return
		}
	}
	last := &s.ranges[len(s.ranges)-1]
	if last.Hi+1 == r {
		last.Hi++
		return
	}
	s.ranges = append(s.ranges, CodePointRange{Lo: r, Hi: r})
}

// Intersect removes from s every code point not contained in other.
func (s *CodePointSet) Intersect(other *CodePointSet) {
	var ranges []CodePointRange

	i := 0
	j := 0
	for i < len(s.ranges) && j < len(other.ranges) {
		a := s.ranges[i]
		b := other.ranges[j]

		lo := max(a.Lo, b.Lo)
		hi := min(a.Hi, b.Hi)

		if lo <= hi {
			ranges = append(ranges, CodePointRange{Lo: lo, Hi: hi})
		}

		if a.Hi < b.Hi {
			i++
		} else {
			j++
		}
	}
	s.ranges = ranges
}

// CreateIntersection returns a new set holding the code points contained in
// both s and other.
func (s *CodePointSet) CreateIntersection(other *CodePointSet) *CodePointSet {
	res := s.Clone()
	res.Intersect(other)
	return res
}

// Subtract removes every code point of other from s.
func (s *CodePointSet) Subtract(other *CodePointSet) {
	if len(s.ranges) == 0 || len(other.ranges) == 0 {
		return
	}
	var ranges []CodePointRange

	j := 0
	for _, sRange := range s.ranges {
		for j < len(other.ranges) && other.ranges[j].Hi < sRange.Lo {
			j++
		}

		for j < len(other.ranges) {
			oRange := other.ranges[j]
			if oRange.Lo > sRange.Hi {
				break
			}
			if oRange.Lo > sRange.Lo {
				ranges = append(ranges, CodePointRange{Lo: sRange.Lo, Hi: oRange.Lo - 1})
			}
			if oRange.Hi < sRange.Hi {
				sRange.Lo = oRange.Hi + 1
				j++
			} else {
				sRange.Lo = sRange.Hi + 1
				break
			}
		}

		if sRange.Lo <= sRange.Hi {
			ranges = append(ranges, sRange)
		}
	}
	s.ranges = ranges
}

// Invert replaces s with its complement in [0, unicode.MaxRune].
func (s *CodePointSet) Invert() {
	s.invertWithin(unicode.MaxRune)
}

func (s *CodePointSet) invertWithin(maxValue rune) {
	var ranges []CodePointRange
	next := rune(0)
	for _, r := range s.ranges {
		if r.Lo > maxValue {
			break
		}
		if r.Lo > next {
			ranges = append(ranges, CodePointRange{Lo: next, Hi: r.Lo - 1})
		}
		next = r.Hi + 1
	}
	if next <= maxValue {
		ranges = append(ranges, CodePointRange{Lo: next, Hi: maxValue})
	}
	s.ranges = ranges
}

func (s *CodePointSet) Contains(r rune) bool {
	lo := 0
	hi := len(s.ranges)
	for lo < hi {
		m := int(uint(lo+hi) >> 1)
		rng := s.ranges[m]
		if rng.Lo <= r && r <= rng.Hi {
			return true
		}
		if r < rng.Lo {
			hi = m
		} else {
			lo = m + 1
		}
	}
	return false
}

func (s *CodePointSet) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for _, r := range s.ranges {
		writeCodePoint(&sb, r.Lo)
		if r.Hi != r.Lo {
			if r.Hi != r.Lo+1 {
				sb.WriteByte('-')
			}
			writeCodePoint(&sb, r.Hi)
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

func writeCodePoint(sb *strings.Builder, r rune) {
	switch {
	case r > 0x20 && r < 0x7f && !strings.ContainsRune(`\]-[^`, r):
		sb.WriteRune(r)
	case r <= 0xffff:
		sb.WriteString(`\u`)
		sb.WriteString(padHex(strconv.FormatInt(int64(r), 16), 4))
	default:
		sb.WriteString(`\u{`)
		sb.WriteString(strconv.FormatInt(int64(r), 16))
		sb.WriteByte('}')
	}
}

func padHex(s string, n int) string {
	for len(s) < n {
		s = "0" + s
	}
	return s
}
