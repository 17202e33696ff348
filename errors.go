package regast

import "strconv"

const (
	errUnmatchedRightParenthesis   = "unmatched right parenthesis"
	errUnterminatedGroup           = "unterminated group"
	errQuantifierWithoutTarget     = "quantifier without target"
	errQuantifierOnLookAround      = "quantifier on lookaround assertion"
	errQuantifierOnPositionAnchor  = "quantifier on position assertion"
	errQuantifierOutOfOrder        = "quantifier out of order"
	errInvalidFlag                 = "invalid flag"
	errDuplicateFlag               = "duplicate flag"
	errInvalidEscape               = "invalid escape"
	errInvalidUnicodeEscape        = "invalid Unicode escape"
	errInvalidDecimalEscape        = "invalid decimal escape"
	errInvalidControlEscape        = `invalid \c`
	errInvalidHexEscape            = `invalid \x`
	errInvalidQuantifier           = "invalid quantifier"
	errNothingToRepeat             = "nothing to repeat"
	errUnterminatedCharacterClass  = "unterminated character class"
	errRangeOutOfOrder             = "range out of order in character class"
	errClassInRange                = "using character class in range is not allowed"
	errInvalidGroup                = "invalid group"
	errInvalidGroupName            = "invalid group name"
	errDuplicateGroupName          = "duplicated group name"
	errUnknownGroupName            = "unknown group name"
	errNonExistentBackReference    = "backreference to non-existent capturing group"
	errNegativeLookBehind          = "negative look-behind assertions are not supported"
	errInvalidPropertyName         = "invalid property name"
	errInvalidPropertyValue        = "invalid property value"
	errPropertyEscapeNonUnicode    = `\p is not allowed in non-Unicode mode`
	errLoneBracket                 = "lone quantifier brackets"
	errExpectedCharacterClassInput = "expected a single character class"
)

// SyntaxError is returned when a pattern is not a valid regular expression.
// Position is the offset in UTF-16 code units at which the error was
// detected, or -1 if unknown.
type SyntaxError struct {
	Pattern  string
	Flags    Flag
	Msg      string
	Position int
}

func (e SyntaxError) Error() string {
	s := "invalid regular expression: /" + e.Pattern + "/" + e.Flags.String() + ": " + e.Msg
	if e.Position >= 0 {
		s += " at position " + strconv.Itoa(e.Position)
	}
	return s
}

var _ error = (*SyntaxError)(nil)

func newSyntaxError(source RegexSource, msg string, pos int) SyntaxError {
	return SyntaxError{
		Pattern:  source.Pattern,
		Flags:    source.Flags,
		Msg:      msg,
		Position: pos,
	}
}

func newFlagsError(flags string, msg string) SyntaxError {
	return SyntaxError{
		Msg:      msg + " " + strconv.Quote(flags),
		Position: -1,
	}
}

// internalError reports a broken compiler invariant. It is never caused by
// user input.
func internalError(msg string) {
	panic("regast: internal error: " + msg)
}
