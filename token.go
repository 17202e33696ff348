package regast

import (
	"math"
	"strconv"
)

type TokenKind uint8

const (
	TokenCaret TokenKind = iota
	TokenDollar
	TokenWordBoundary
	TokenNonWordBoundary
	TokenBackReference
	TokenQuantifier
	TokenAlternation
	TokenCaptureGroupBegin
	TokenNonCaptureGroupBegin
	TokenLookAheadAssertionBegin
	TokenLookBehindAssertionBegin
	TokenGroupEnd
	TokenCharClass
)

var tokenKindNames = [...]string{
	TokenCaret:                    "caret",
	TokenDollar:                   "dollar",
	TokenWordBoundary:             "wordBoundary",
	TokenNonWordBoundary:          "nonWordBoundary",
	TokenBackReference:            "backReference",
	TokenQuantifier:               "quantifier",
	TokenAlternation:              "alternation",
	TokenCaptureGroupBegin:        "captureGroupBegin",
	TokenNonCaptureGroupBegin:     "nonCaptureGroupBegin",
	TokenLookAheadAssertionBegin:  "lookAheadAssertionBegin",
	TokenLookBehindAssertionBegin: "lookBehindAssertionBegin",
	TokenGroupEnd:                 "groupEnd",
	TokenCharClass:                "charClass",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "TokenKind(" + strconv.Itoa(int(k)) + ")"
}

// Infinite is the Max of an unbounded quantifier.
const Infinite = math.MaxInt

// Token is a lexical element of a pattern. Which fields are meaningful
// depends on Kind.
type Token struct {
	Kind TokenKind
	// Offset of the token in the pattern, in code units.
	Pos int

	// TokenBackReference
	GroupNr int

	// TokenQuantifier
	Min    int
	Max    int
	Greedy bool

	// TokenLookAheadAssertionBegin
	Negate bool

	// TokenCharClass
	CodePointSet *CodePointSet
}

func (t Token) IsInfiniteLoop() bool {
	return t.Max == Infinite
}

func (t Token) String() string {
	s := t.Kind.String()
	switch t.Kind {
	case TokenBackReference:
		s += "(" + strconv.Itoa(t.GroupNr) + ")"
	case TokenQuantifier:
		s += "{" + strconv.Itoa(t.Min) + ","
		if !t.IsInfiniteLoop() {
			s += strconv.Itoa(t.Max)
		}
		s += "}"
		if !t.Greedy {
			s += "?"
		}
	case TokenLookAheadAssertionBegin:
		if t.Negate {
			s += "(!)"
		}
	case TokenCharClass:
		s += t.CodePointSet.String()
	}
	return s
}

// TokenSource is a stream of tokens. Next is only called after HasNext
// returned true. Errors returned by Next abort parsing.
type TokenSource interface {
	HasNext() bool
	Next() (Token, error)
}

// TokenSlice is a TokenSource over a fixed list of tokens.
type TokenSlice struct {
	tokens []Token
	pos    int
}

func NewTokenSlice(tokens ...Token) *TokenSlice {
	return &TokenSlice{tokens: tokens}
}

func (s *TokenSlice) HasNext() bool { return s.pos < len(s.tokens) }

func (s *TokenSlice) Next() (Token, error) {
	t := s.tokens[s.pos]
	s.pos++
	return t, nil
}
