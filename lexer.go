package regast

import (
	"math"
	"strconv"
	"unicode"
	"unicode/utf16"
)

// Lexer turns ECMAScript pattern text into tokens. It implements TokenSource.
//
// Legacy (Annex B) syntax is not accepted. Named groups are lexed as capture
// groups and named back-references are resolved to group numbers.
type Lexer struct {
	source  RegexSource
	pattern patternSource
	flags   Flag

	captureCount       int
	totalCapturesCount int
	groupNames         map[string]int
	lastWasQuantifier  bool
}

// NewLexer creates a lexer for source.
func NewLexer(source RegexSource) *Lexer {
	return newLexer(source, newPatternSource(source.Pattern))
}

func newLexer(source RegexSource, pattern patternSource) *Lexer {
	return &Lexer{
		source:             source,
		pattern:            pattern,
		flags:              source.Flags,
		totalCapturesCount: -1,
	}
}

func (l *Lexer) isUnicode() bool {
	return l.flags&FlagUnicode != 0
}

func (l *Lexer) isIgnoreCase() bool {
	return l.flags&FlagIgnoreCase != 0
}

func (l *Lexer) maxCodePoint() rune {
	if l.isUnicode() {
		return unicode.MaxRune
	}
	return 0xffff
}

func (l *Lexer) syntaxError(msg string) SyntaxError {
	return newSyntaxError(l.source, msg, l.pattern.pos)
}

func (l *Lexer) HasNext() bool {
	return !l.pattern.atEnd()
}

func (l *Lexer) Next() (Token, error) {
	start := l.pattern.pos
	t, err := l.next()
	if err != nil {
		return Token{}, err
	}
	t.Pos = start
	if t.Kind == TokenQuantifier && l.lastWasQuantifier {
		return Token{}, newSyntaxError(l.source, errNothingToRepeat, start)
	}
	l.lastWasQuantifier = t.Kind == TokenQuantifier
	return t, nil
}

func (l *Lexer) next() (Token, error) {
	c, _ := l.pattern.move(l.isUnicode())
	switch c {
	case '^':
		return Token{Kind: TokenCaret}, nil
	case '$':
		return Token{Kind: TokenDollar}, nil
	case '|':
		return Token{Kind: TokenAlternation}, nil
	case ')':
		return Token{Kind: TokenGroupEnd}, nil
	case '(':
		return l.parseGroupBegin()
	case '*':
		return l.quantifier(0, Infinite), nil
	case '+':
		return l.quantifier(1, Infinite), nil
	case '?':
		return l.quantifier(0, 1), nil
	case '{':
		return l.parseBraceQuantifier()
	case '}':
		return Token{}, l.syntaxError(errLoneBracket)
	case ']':
		return Token{}, l.syntaxError(errLoneBracket)
	case '[':
		set, err := l.parseCharacterClass()
		if err != nil {
			return Token{}, err
		}
		return charClassToken(set), nil
	case '.':
		return charClassToken(l.dotSet()), nil
	case '\\':
		return l.parseEscape()
	default:
		return charClassToken(l.literalSet(c)), nil
	}
}

func charClassToken(set *CodePointSet) Token {
	return Token{Kind: TokenCharClass, CodePointSet: set}
}

func (l *Lexer) quantifier(min, max int) Token {
	greedy := !l.pattern.consumeNextCodeUnit('?')
	return Token{Kind: TokenQuantifier, Min: min, Max: max, Greedy: greedy}
}

func (l *Lexer) parseBraceQuantifier() (Token, error) {
	quantMin, ok := l.parseDecimalDigits()
	if !ok {
		return Token{}, l.syntaxError(errInvalidQuantifier)
	}
	quantMax := quantMin
	if l.pattern.consumeNextCodeUnit(',') {
		n, ok := l.parseDecimalDigits()
		if ok {
			quantMax = n
		} else {
			quantMax = Infinite
		}
	}
	if !l.pattern.consumeNextCodeUnit('}') {
		return Token{}, l.syntaxError(errInvalidQuantifier)
	}
	return l.quantifier(quantMin, quantMax), nil
}

// If number is valid, returns n, true
func (l *Lexer) parseDecimalDigits() (int, bool) {
	char, ended := l.pattern.nextCodeUnit()
	if ended || !isDigit(char) {
		return 0, false
	}
	var n int64 = 0
	for ; !ended && isDigit(char); char, ended = l.pattern.nextCodeUnit() {
		l.pattern.pos++

		n = n*10 + int64(char-'0')
		if n >= math.MaxInt32 || n < 0 {
			n = math.MaxInt32
		}
	}
	return int(n), true
}

func (l *Lexer) parseGroupBegin() (Token, error) {
	if !l.pattern.consumeNextCodeUnit('?') {
		l.captureCount++
		return Token{Kind: TokenCaptureGroupBegin}, nil
	}
	next, ended := l.pattern.nextCodeUnit()
	if ended {
		return Token{}, l.syntaxError(errInvalidGroup)
	}
	switch next {
	case ':':
		l.pattern.pos++
		return Token{Kind: TokenNonCaptureGroupBegin}, nil
	case '=':
		l.pattern.pos++
		return Token{Kind: TokenLookAheadAssertionBegin}, nil
	case '!':
		l.pattern.pos++
		return Token{Kind: TokenLookAheadAssertionBegin, Negate: true}, nil
	case '<':
		nextnext, _ := l.pattern.nextNthCodeUnit(1)
		switch nextnext {
		case '=':
			l.pattern.pos += 2
			return Token{Kind: TokenLookBehindAssertionBegin}, nil
		case '!':
			return Token{}, l.syntaxError(errNegativeLookBehind)
		}
		if _, err := l.getTotalCapturesCount(); err != nil {
			return Token{}, err
		}
		if _, err := l.parseGroupName(); err != nil {
			return Token{}, err
		}
		l.captureCount++
		return Token{Kind: TokenCaptureGroupBegin}, nil
	}
	return Token{}, l.syntaxError(errInvalidGroup)
}

// getTotalCapturesCount scans the whole pattern once for capture groups and
// group names, so that forward back-references can be resolved.
func (l *Lexer) getTotalCapturesCount() (int, error) {
	if l.totalCapturesCount != -1 {
		return l.totalCapturesCount, nil
	}
	l.totalCapturesCount = 0
	l.groupNames = map[string]int{}
	patternCopy := l.pattern
	defer func() { l.pattern = patternCopy }()
	l.pattern.pos = 0
	for !l.pattern.atEnd() {
		switch l.pattern.units[l.pattern.pos] {
		case '(':
			l.pattern.pos++
			if l.pattern.atEnd() {
				continue
			}
			if l.pattern.units[l.pattern.pos] != '?' {
				l.totalCapturesCount++
				continue
			}
			l.pattern.pos++
			next, _ := l.pattern.nextNthCodeUnit(0)
			nextnext, ended := l.pattern.nextNthCodeUnit(1)
			if !ended && next == '<' && nextnext != '=' && nextnext != '!' {
				l.totalCapturesCount++
				name, err := l.parseGroupName()
				if err != nil {
					return 0, err
				}
				if _, ok := l.groupNames[name]; ok {
					return 0, l.syntaxError(errDuplicateGroupName + ": " + name)
				}
				l.groupNames[name] = l.totalCapturesCount
			}
		case '\\':
			l.pattern.pos++
			l.pattern.move(l.isUnicode())
		case '[':
			l.pattern.pos++
		ScanCharacterClass:
			for !l.pattern.atEnd() {
				switch l.pattern.units[l.pattern.pos] {
				case '\\':
					l.pattern.pos++
					l.pattern.move(l.isUnicode())
				case ']':
					l.pattern.pos++
					break ScanCharacterClass
				default:
					l.pattern.pos++
				}
			}
		default:
			l.pattern.pos++
		}
	}
	return l.totalCapturesCount, nil
}

func isIDStart(r rune) bool {
	return r == '$' || r == '_' || unicode.In(r, unicode.L, unicode.Nl, unicode.Other_ID_Start)
}

func isIDContinue(r rune) bool {
	return isIDStart(r) || r == 0x200c || r == 0x200d ||
		unicode.In(r, unicode.Mn, unicode.Mc, unicode.Nd, unicode.Pc, unicode.Other_ID_Continue)
}

func (l *Lexer) parseGroupName() (string, error) {
	if !l.pattern.consumeNextCodeUnit('<') {
		return "", l.syntaxError(errInvalidGroupName)
	}
	name := []rune{}
	for {
		r, moved := l.pattern.move(true)
		if !moved {
			return "", l.syntaxError(errInvalidGroupName)
		}
		if r == '\\' && l.pattern.consumeNextCodeUnit('u') {
			var err error
			r, _, err = l.parseUnicodeEscapeSequence(true)
			if err != nil {
				return "", err
			}
		}
		if r == '>' {
			break
		}
		if len(name) == 0 && !isIDStart(r) || len(name) > 0 && !isIDContinue(r) {
			return "", l.syntaxError(errInvalidGroupName)
		}
		name = append(name, r)
	}
	if len(name) == 0 {
		return "", l.syntaxError(errInvalidGroupName)
	}
	return string(name), nil
}

func (l *Lexer) parseEscape() (Token, error) {
	char, ended := l.pattern.nextCodeUnit()
	if ended {
		return Token{}, l.syntaxError(errInvalidEscape)
	}
	switch {
	case char == 'b':
		l.pattern.pos++
		return Token{Kind: TokenWordBoundary}, nil
	case char == 'B':
		l.pattern.pos++
		return Token{Kind: TokenNonWordBoundary}, nil
	case char == 'k':
		l.pattern.pos++
		if _, err := l.getTotalCapturesCount(); err != nil {
			return Token{}, err
		}
		name, err := l.parseGroupName()
		if err != nil {
			return Token{}, err
		}
		groupNr, ok := l.groupNames[name]
		if !ok {
			return Token{}, l.syntaxError(errUnknownGroupName)
		}
		return Token{Kind: TokenBackReference, GroupNr: groupNr}, nil
	case char != '0' && isDigit(char):
		num, _ := l.parseDecimalDigits()
		total, err := l.getTotalCapturesCount()
		if err != nil {
			return Token{}, err
		}
		if num > total {
			return Token{}, l.syntaxError(errNonExistentBackReference)
		}
		return Token{Kind: TokenBackReference, GroupNr: num}, nil
	}
	set, err := l.parseCharacterClassEscape()
	if err != nil {
		return Token{}, err
	}
	if set != nil {
		if l.isIgnoreCase() {
			set = caseClosure(set, l.isUnicode())
		}
		return charClassToken(set), nil
	}
	r, err := l.parseCharacterEscape()
	if err != nil {
		return Token{}, err
	}
	return charClassToken(l.literalSet(r)), nil
}

func (l *Lexer) literalSet(r rune) *CodePointSet {
	set := CodePointSetOf(r)
	if l.isIgnoreCase() {
		return caseClosure(set, l.isUnicode())
	}
	return set
}

var lineTerminators = CodePointSetOf('\n', '\r', 0x2028, 0x2029)

func (l *Lexer) dotSet() *CodePointSet {
	set := NewCodePointSet(CodePointRange{0, l.maxCodePoint()})
	if l.flags&FlagDotAll == 0 {
		set.Subtract(lineTerminators)
	}
	return set
}

func (l *Lexer) peek4HexDigits() (rune, bool) {
	fourthChar, ended := l.pattern.nextNthCodeUnit(3)
	if ended {
		return 0, false
	}
	u := l.pattern.units[l.pattern.pos:]
	if !isHexDigit(u[0]) || !isHexDigit(u[1]) || !isHexDigit(u[2]) || !isHexDigit(fourthChar) {
		return 0, false
	}
	r := (rune(parseHexDigit(u[0])) << 12) |
		(rune(parseHexDigit(u[1])) << 8) |
		(rune(parseHexDigit(u[2])) << 4) |
		rune(parseHexDigit(fourthChar))
	return r, true
}

// parseUnicodeEscapeSequence is called after "\u". The second result is true
// for the braced \u{...} form.
func (l *Lexer) parseUnicodeEscapeSequence(unicodeMode bool) (rune, bool, error) {
	next, ended := l.pattern.nextCodeUnit()
	if ended {
		return 0, false, l.syntaxError(errInvalidUnicodeEscape)
	}
	if next == '{' && unicodeMode {
		l.pattern.pos++
		codepointStart := l.pattern.pos
		i := 0
		for ; ; i++ {
			char, ended := l.pattern.nextNthCodeUnit(i)
			if ended {
				return 0, false, l.syntaxError(errInvalidUnicodeEscape)
			}
			if char == '}' {
				break
			}
		}
		codepointEnd := codepointStart + i
		src := l.pattern.stringInRange(codepointStart, codepointEnd)
		codepoint, err := strconv.ParseUint(src, 16, 64)
		if err != nil || codepoint > unicode.MaxRune {
			return 0, false, l.syntaxError(errInvalidUnicodeEscape)
		}
		l.pattern.pos = codepointEnd + 1
		return rune(codepoint), true, nil
	}

	r, ok := l.peek4HexDigits()
	if !ok {
		return 0, false, l.syntaxError(errInvalidUnicodeEscape)
	}
	l.pattern.pos += 4
	if unicodeMode && isHighSurrogate(r) {
		if x, _ := l.pattern.nextNthCodeUnit(1); x == 'u' && l.pattern.units[l.pattern.pos] == '\\' {
			l.pattern.pos += 2
			lo, ok := l.peek4HexDigits()
			if ok && isLowSurrogate(lo) {
				l.pattern.pos += 4
				r = utf16.DecodeRune(r, lo)
			} else {
				l.pattern.pos -= 2
			}
		}
	}
	return r, false, nil
}

// parseCharacterEscape is called after "\" once class escapes have been
// ruled out.
func (l *Lexer) parseCharacterEscape() (rune, error) {
	char := l.pattern.units[l.pattern.pos]
	switch char {
	case 't', 'n', 'v', 'f', 'r':
		l.pattern.pos++
		mapping := [...]rune{
			't' - 'f': '\t',
			'n' - 'f': '\n',
			'v' - 'f': '\v',
			'f' - 'f': '\f',
			'r' - 'f': '\r',
		}
		return mapping[char-'f'], nil
	case 'c':
		ch, _ := l.pattern.nextNthCodeUnit(1)
		if !isASCIILetterChar(ch) {
			return 0, l.syntaxError(errInvalidControlEscape)
		}
		l.pattern.pos += 2
		return rune(ch) % 32, nil
	case '0':
		next, _ := l.pattern.nextNthCodeUnit(1)
		if isDigit(next) {
			return 0, l.syntaxError(errInvalidDecimalEscape)
		}
		l.pattern.pos++
		return 0, nil
	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return 0, l.syntaxError(errInvalidDecimalEscape)
	case 'x':
		first, _ := l.pattern.nextNthCodeUnit(1)
		second, _ := l.pattern.nextNthCodeUnit(2)
		if !isHexDigit(first) || !isHexDigit(second) {
			return 0, l.syntaxError(errInvalidHexEscape)
		}
		l.pattern.pos += 3
		return (rune(parseHexDigit(first)) << 4) | rune(parseHexDigit(second)), nil
	case 'u':
		l.pattern.pos++
		r, _, err := l.parseUnicodeEscapeSequence(l.isUnicode())
		return r, err
	case '^', '$', '\\', '/', '.', '*', '+', '?', '(', ')', '[', ']', '{', '}', '|':
		l.pattern.pos++
		return rune(char), nil
	default:
		if l.isUnicode() {
			return 0, l.syntaxError(errInvalidEscape)
		}
		r, _ := l.pattern.move(false)
		if isIDContinue(r) {
			return 0, l.syntaxError(errInvalidEscape)
		}
		return r, nil
	}
}

var (
	digitCharSet     = NewCodePointSet(CodePointRange{'0', '9'})
	asciiWordCharSet = NewCodePointSet(
		CodePointRange{'0', '9'},
		CodePointRange{'A', 'Z'},
		CodePointRange{'_', '_'},
		CodePointRange{'a', 'z'},
	)
	whiteSpaceCharSet = func() *CodePointSet {
		s := CodePointSetOf('\t', '\v', '\f', ' ', 0xa0, 0xfeff)
		s.Union(rangeTableSet(unicode.Zs))
		s.Union(lineTerminators)
		return s
	}()
)

// rangeTableSet converts a unicode.RangeTable to a CodePointSet.
func rangeTableSet(t *unicode.RangeTable) *CodePointSet {
	s := &CodePointSet{}
	for _, r := range t.R16 {
		if r.Stride == 1 {
			s.AddRange(rune(r.Lo), rune(r.Hi))
			continue
		}
		for c := rune(r.Lo); c <= rune(r.Hi); c += rune(r.Stride) {
			s.AddChar(c)
		}
	}
	for _, r := range t.R32 {
		if r.Stride == 1 {
			s.AddRange(rune(r.Lo), rune(r.Hi))
			continue
		}
		for c := rune(r.Lo); c <= rune(r.Hi); c += rune(r.Stride) {
			s.AddChar(c)
		}
	}
	return s
}

// parseCharacterClassEscape returns nil, nil if the escape at the cursor is
// not a class escape. Case closure is left to the caller.
func (l *Lexer) parseCharacterClassEscape() (*CodePointSet, error) {
	char, ended := l.pattern.nextCodeUnit()
	if ended {
		return nil, l.syntaxError(errInvalidEscape)
	}
	inverted := false
	var set *CodePointSet
	switch char {
	case 'D':
		inverted = true
		fallthrough
	case 'd':
		l.pattern.pos++
		set = digitCharSet.Clone()
	case 'S':
		inverted = true
		fallthrough
	case 's':
		l.pattern.pos++
		set = whiteSpaceCharSet.Clone()
	case 'W':
		inverted = true
		fallthrough
	case 'w':
		l.pattern.pos++
		set = asciiWordCharSet.Clone()
		if l.isUnicode() && l.isIgnoreCase() {
			set.Union(ecmaExtraWordChars)
		}
	case 'P':
		inverted = true
		fallthrough
	case 'p':
		l.pattern.pos++
		if !l.isUnicode() {
			return nil, l.syntaxError(errPropertyEscapeNonUnicode)
		}
		var err error
		set, err = l.parseUnicodeProperty()
		if err != nil {
			return nil, err
		}
	default:
		return nil, nil
	}
	if inverted {
		set.invertWithin(l.maxCodePoint())
	}
	return set, nil
}

// parseUnicodeProperty parses the {...} part of \p{...}. Only properties
// backed by Go's unicode tables are known.
func (l *Lexer) parseUnicodeProperty() (*CodePointSet, error) {
	if !l.pattern.consumeNextCodeUnit('{') {
		return nil, l.syntaxError(errInvalidPropertyName)
	}
	start := l.pattern.pos
	eq := -1
	for {
		ch, ended := l.pattern.nextCodeUnit()
		if ended {
			return nil, l.syntaxError(errInvalidPropertyValue)
		}
		if ch == '}' {
			break
		}
		if ch == '=' && eq == -1 {
			eq = l.pattern.pos
		} else if !isASCIIWordChar(ch) {
			return nil, l.syntaxError(errInvalidPropertyName)
		}
		l.pattern.pos++
	}
	end := l.pattern.pos
	l.pattern.pos++

	if eq == -1 {
		nameOrValue := l.pattern.stringInRange(start, end)
		switch nameOrValue {
		case "Any":
			return NewCodePointSet(CodePointRange{0, unicode.MaxRune}), nil
		case "ASCII":
			return NewCodePointSet(CodePointRange{0, 0x7f}), nil
		}
		if t, ok := unicode.Categories[nameOrValue]; ok {
			return rangeTableSet(t), nil
		}
		if t, ok := unicode.Properties[nameOrValue]; ok {
			return rangeTableSet(t), nil
		}
		return nil, l.syntaxError(errInvalidPropertyValue)
	}

	name := l.pattern.stringInRange(start, eq)
	value := l.pattern.stringInRange(eq+1, end)
	var tables map[string]*unicode.RangeTable
	switch name {
	case "General_Category", "gc":
		tables = unicode.Categories
	case "Script", "sc", "Script_Extensions", "scx":
		tables = unicode.Scripts
	default:
		return nil, l.syntaxError(errInvalidPropertyName)
	}
	t, ok := tables[value]
	if !ok {
		return nil, l.syntaxError(errInvalidPropertyValue)
	}
	return rangeTableSet(t), nil
}

// parseClassAtom reads one atom of a character class. It returns the
// character or, for class escapes, the set. foundEnd is set at "]".
func (l *Lexer) parseClassAtom() (r rune, set *CodePointSet, foundEnd bool, err error) {
	char, moved := l.pattern.move(l.isUnicode())
	if !moved {
		return 0, nil, false, l.syntaxError(errUnterminatedCharacterClass)
	}
	if char == ']' {
		return 0, nil, true, nil
	}
	if char != '\\' {
		return char, nil, false, nil
	}
	next, ended := l.pattern.nextCodeUnit()
	if ended {
		return 0, nil, false, l.syntaxError(errInvalidEscape)
	}
	switch next {
	case '-':
		l.pattern.pos++
		return '-', nil, false, nil
	case 'b':
		l.pattern.pos++
		// backspace
		return '\u0008', nil, false, nil
	}
	set, err = l.parseCharacterClassEscape()
	if err != nil || set != nil {
		return 0, set, false, err
	}
	r, err = l.parseCharacterEscape()
	return r, nil, false, err
}

// parseCharacterClass is called after "[". The result is case-closed under
// IgnoreCase and inverted for "[^...]".
func (l *Lexer) parseCharacterClass() (*CodePointSet, error) {
	inverted := l.pattern.consumeNextCodeUnit('^')
	set := &CodePointSet{}
	for {
		leftR, leftS, foundEnd, err := l.parseClassAtom()
		if err != nil {
			return nil, err
		}
		if foundEnd {
			break
		}
		if next, _ := l.pattern.nextCodeUnit(); next != '-' {
			addClassAtom(set, leftR, leftS)
			continue
		}
		if next, _ := l.pattern.nextNthCodeUnit(1); next == ']' {
			addClassAtom(set, leftR, leftS)
			continue
		}
		l.pattern.pos++
		rightR, rightS, foundEnd, err := l.parseClassAtom()
		if err != nil {
			return nil, err
		}
		if foundEnd {
			return nil, l.syntaxError(errUnterminatedCharacterClass)
		}
		if leftS != nil || rightS != nil {
			return nil, l.syntaxError(errClassInRange)
		}
		if leftR > rightR {
			return nil, l.syntaxError(errRangeOutOfOrder)
		}
		set.AddRange(leftR, rightR)
	}
	if l.isIgnoreCase() {
		set = caseClosure(set, l.isUnicode())
	}
	if inverted {
		set.invertWithin(l.maxCodePoint())
	}
	return set, nil
}

func addClassAtom(set *CodePointSet, r rune, s *CodePointSet) {
	if s != nil {
		set.Union(s)
	} else {
		set.AddChar(r)
	}
}

// ClassSet lexes a pattern consisting of exactly one character class, class
// escape, dot or literal character, and returns the code points it matches.
func ClassSet(pattern string, flags Flag) (*CodePointSet, error) {
	source := RegexSource{Pattern: pattern, Flags: flags}
	l := NewLexer(source)
	if !l.HasNext() {
		return nil, newSyntaxError(source, errExpectedCharacterClassInput, 0)
	}
	t, err := l.Next()
	if err != nil {
		return nil, err
	}
	if t.Kind != TokenCharClass || l.HasNext() {
		return nil, newSyntaxError(source, errExpectedCharacterClassInput, t.Pos)
	}
	return t.CodePointSet, nil
}
