// Package regast compiles ECMAScript regular expressions into an abstract
// syntax tree ready for a backtracking or automaton based executor.
//
// Character classes are compiled into range-tree matchers that test a single
// UTF-16 code unit. In Unicode mode, classes containing astral code points or
// lone surrogates are split into alternations over surrogate pairs.
package regast

import "strings"

// Flag is a bitmask of RegExp options.
// The zero value corresponds to /pattern/ with no flags.
// Combine flags with bitwise OR, e.g. FlagIgnoreCase|FlagMultiline.
type Flag uint16

const (
	// Global search ("g" flag). Has no effect on the compiled tree.
	FlagGlobal Flag = 1 << iota

	// Case-insensitive matching ("i" flag).
	FlagIgnoreCase

	// "^" and "$" match line boundaries ("m" flag).
	FlagMultiline

	// "." matches line terminators ("s" flag).
	FlagDotAll

	// Unicode-aware mode ("u" flag).
	FlagUnicode

	// Sticky match from current position ("y" flag).
	// Has no effect on the compiled tree.
	FlagSticky
)

var flagLetters = [...]struct {
	flag   Flag
	letter byte
}{
	{FlagGlobal, 'g'},
	{FlagIgnoreCase, 'i'},
	{FlagMultiline, 'm'},
	{FlagDotAll, 's'},
	{FlagUnicode, 'u'},
	{FlagSticky, 'y'},
}

// ParseFlags parses the flags part of a regular expression literal, e.g. "gu".
func ParseFlags(str string) (Flag, error) {
	var flags Flag
	for i := 0; i < len(str); i++ {
		var m Flag
		for _, fl := range flagLetters {
			if fl.letter == str[i] {
				m = fl.flag
				break
			}
		}
		if m == 0 {
			return 0, newFlagsError(str, errInvalidFlag)
		}
		if flags&m != 0 {
			return 0, newFlagsError(str, errDuplicateFlag)
		}
		flags |= m
	}
	return flags, nil
}

func (f Flag) String() string {
	var sb strings.Builder
	for _, fl := range flagLetters {
		if f&fl.flag != 0 {
			sb.WriteByte(fl.letter)
		}
	}
	return sb.String()
}

func (f Flag) IsUnicode() bool    { return f&FlagUnicode != 0 }
func (f Flag) IsIgnoreCase() bool { return f&FlagIgnoreCase != 0 }
func (f Flag) IsMultiline() bool  { return f&FlagMultiline != 0 }
func (f Flag) IsDotAll() bool     { return f&FlagDotAll != 0 }

// RegexSource is a pattern together with its flags.
type RegexSource struct {
	Pattern string
	Flags   Flag
}

func (s RegexSource) String() string {
	return "/" + s.Pattern + "/" + s.Flags.String()
}
