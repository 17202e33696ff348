package regast

import "unicode/utf16"

// Parser builds a RegexAST from a token stream. A Parser is used for a
// single call to Parse or Validate.
type Parser struct {
	source RegexSource
	tokens TokenSource
	opts   Options
	ast    *RegexAST
	used   bool

	curGroup    NodeID
	curSequence NodeID
	curTerm     NodeID

	// curTermAnchor is set when curTerm stands for a single anchor of the
	// pattern: a substituted \b, \B or multiline ^ $ group, or an anchor
	// that was merged into the equal one before it. In the latter case
	// curTermElided is set as well and curTerm is the earlier anchor.
	curTermAnchor bool
	curTermElided bool
}

// NewParser creates a parser for tokens, which must have been produced from
// source.
func NewParser(source RegexSource, tokens TokenSource, opts Options) *Parser {
	return &Parser{
		source:      source,
		tokens:      tokens,
		opts:        opts,
		ast:         newRegexAST(source),
		curGroup:    NoNode,
		curSequence: NoNode,
		curTerm:     NoNode,
	}
}

// Parse parses pattern with the default lexer and options.
func Parse(pattern string, flags Flag) (*RegexAST, error) {
	source := RegexSource{Pattern: pattern, Flags: flags}
	return NewParser(source, NewLexer(source), DefaultOptions()).Parse()
}

// MustParse is like [Parse] but panics if the pattern cannot be parsed.
func MustParse(pattern string, flags Flag) *RegexAST {
	ast, err := Parse(pattern, flags)
	if err != nil {
		panic("regast: MustParse: " + err.Error())
	}
	return ast
}

// ParseUtf16 parses a pattern given as UTF-16 code units. Unlike [Parse] it
// accepts patterns containing lone surrogates.
func ParseUtf16(pattern []uint16, flags Flag) (*RegexAST, error) {
	source := RegexSource{Pattern: string(utf16.Decode(pattern)), Flags: flags}
	lexer := newLexer(source, patternSource{units: pattern})
	return NewParser(source, lexer, DefaultOptions()).Parse()
}

// Validate reports whether pattern is well-formed without keeping the tree.
func Validate(pattern string, flags Flag) error {
	source := RegexSource{Pattern: pattern, Flags: flags}
	return NewParser(source, NewLexer(source), DefaultOptions()).Validate()
}

func (p *Parser) Parse() (*RegexAST, error) {
	if _, err := p.parse(true); err != nil {
		return nil, err
	}
	a := p.ast
	a.calcMinPaths()
	a.removeUnreachablePositionAssertions()
	a.createPrefix(p.opts)
	a.initIDs()
	if !a.properties.HasBackReferences() {
		a.markLookBehindEntries()
	}
	return a, nil
}

// Validate runs the parser without the passes that follow tree construction.
func (p *Parser) Validate() error {
	_, err := p.parse(true)
	return err
}

func (p *Parser) syntaxError(msg string, pos int) error {
	return newSyntaxError(p.source, msg, pos)
}

func (p *Parser) setComplexLookAround() {
	if p.ast.isInLookAheadAssertion(p.curGroup) {
		p.ast.properties |= propComplexLookAheadAssertions
	}
	if p.ast.isInLookBehindAssertion(p.curGroup) {
		p.ast.properties |= propComplexLookBehindAssertions
	}
}

// createGroup opens a group. If addToSeq is set the group becomes a term of
// the current sequence; parent, if given, is the root or lookaround node
// that wraps it.
func (p *Parser) createGroup(addToSeq, capture bool, parent NodeID) NodeID {
	a := p.ast
	var group NodeID
	if capture {
		group = a.createCaptureGroup(a.groupCount)
		a.groupCount++
	} else {
		group = a.createGroup()
	}
	if parent != NoNode {
		a.setGroup(parent, group)
	}
	if addToSeq {
		p.setComplexLookAround()
		p.addTerm(group)
	}
	p.curGroup = group
	a.nodes[group].EnclosedCaptureGroupsLow = a.groupCount
	p.addSequence()
	return group
}

func (p *Parser) addSequence() {
	if len(p.ast.nodes[p.curGroup].Alternatives) > 0 {
		p.setComplexLookAround()
	}
	p.curSequence = p.ast.addSequence(p.curGroup)
	p.setCurTerm(NoNode)
}

func (p *Parser) popGroup(pos int) error {
	a := p.ast
	g := &a.nodes[p.curGroup]
	g.EnclosedCaptureGroupsHigh = a.groupCount
	p.setCurTerm(p.curGroup)
	parent := g.Parent
	switch a.nodes[parent].Kind {
	case KindRoot:
		return p.syntaxError(errUnmatchedRightParenthesis, pos)
	case KindLookAheadAssertion, KindLookBehindAssertion:
		p.curSequence = a.nodes[parent].Parent
		p.curTerm = parent
	default:
		p.curSequence = parent
	}
	p.curGroup = a.nodes[p.curSequence].Parent
	return nil
}

func (p *Parser) addTerm(term NodeID) {
	p.ast.addTerm(p.curSequence, term)
	p.setCurTerm(term)
}

func (p *Parser) setCurTerm(term NodeID) {
	p.curTerm = term
	p.curTermAnchor = false
	p.curTermElided = false
}

// elideAnchor keeps the cursor on the equal anchor that precedes a repeated
// ^ or $.
func (p *Parser) elideAnchor() {
	p.curTermAnchor = true
	p.curTermElided = true
}

func (p *Parser) addLookBehindAssertion() {
	lookBehind := p.ast.createLookBehindAssertion()
	p.addTerm(lookBehind)
	p.createGroup(false, false, lookBehind)
}

func (p *Parser) addLookAheadAssertion(negate bool) {
	lookAhead := p.ast.createLookAheadAssertion(negate)
	p.addTerm(lookAhead)
	p.createGroup(false, false, lookAhead)
}

// translateUnicodeCharClass builds the UTF-16 form of a code point set: BMP
// code points, lone lead surrogates, lone trail surrogates and surrogate
// pairs each get their own alternatives.
func (p *Parser) translateUnicodeCharClass(set *CodePointSet) NodeID {
	loadSubstitutions()
	a := p.ast
	group := a.createGroup()
	a.nodes[group].EnclosedCaptureGroupsLow = a.groupCount
	a.nodes[group].EnclosedCaptureGroupsHigh = a.groupCount
	bmpRanges := bmpWithoutSurrogates.CreateIntersection(set)
	astralRanges := astralSymbols.CreateIntersection(set)
	loneLeadSurrogateRanges := leadSurrogates.CreateIntersection(set)
	loneTrailSurrogateRanges := trailSurrogates.CreateIntersection(set)

	if bmpRanges.MatchesSomething() {
		alt := a.addSequence(group)
		a.addTerm(alt, a.createCharacterClass(NewMatcherBuilder(bmpRanges)))
	}

	if loneLeadSurrogateRanges.MatchesSomething() {
		alt := a.addSequence(group)
		a.addTerm(alt, a.createCharacterClass(NewMatcherBuilder(loneLeadSurrogateRanges)))
		f := substitutions.noTrailSurrogateAhead
		a.addTerm(alt, a.copyFrom(f.ast, f.group))
		a.properties |= propAlternations
	}

	if loneTrailSurrogateRanges.MatchesSomething() {
		alt := a.addSequence(group)
		f := substitutions.noLeadSurrogateBehind
		a.addTerm(alt, a.copyFrom(f.ast, f.group))
		a.addTerm(alt, a.createCharacterClass(NewMatcherBuilder(loneTrailSurrogateRanges)))
		a.properties |= propAlternations
	}

	if astralRanges.MatchesSomething() {
		// Lead surrogates that may be followed by any trail surrogate.
		completeRanges := &CodePointSet{}

		addPair := func(lead uint16, trails *CodePointSet) {
			alt := a.addSequence(group)
			a.addTerm(alt, a.createCharacterClass(MatcherBuilderOf(lead)))
			a.addTerm(alt, a.createCharacterClass(NewMatcherBuilder(trails)))
		}

		curLead := highSurrogate(astralRanges.ranges[0].Lo)
		curTrails := &CodePointSet{}
		for _, r := range astralRanges.ranges {
			startLead := highSurrogate(r.Lo)
			startTrail := lowSurrogate(r.Lo)
			endLead := highSurrogate(r.Hi)
			endTrail := lowSurrogate(r.Hi)

			if startLead > curLead {
				if curTrails.MatchesSomething() {
					addPair(curLead, curTrails)
				}
				curLead = startLead
				curTrails = &CodePointSet{}
			}
			if startLead == endLead {
				curTrails.AddRange(rune(startTrail), rune(endTrail))
				continue
			}
			if startTrail != trailSurrogateMin {
				curTrails.AddRange(rune(startTrail), trailSurrogateMax)
				startLead++
			}
			if curTrails.MatchesSomething() {
				addPair(curLead, curTrails)
			}
			curLead = endLead
			curTrails = &CodePointSet{}

			if endTrail != trailSurrogateMax {
				curTrails.AddRange(trailSurrogateMin, rune(endTrail))
				endLead--
			}
			if startLead <= endLead {
				completeRanges.AddRange(rune(startLead), rune(endLead))
			}
		}
		if curTrails.MatchesSomething() {
			addPair(curLead, curTrails)
		}

		if completeRanges.MatchesSomething() {
			alt := a.createSequence()
			a.insertFirst(group, alt)
			a.addTerm(alt, a.createCharacterClass(NewMatcherBuilder(completeRanges)))
			a.addTerm(alt, a.createCharacterClass(trailSurrogateMatcherBuilder()))
		}
	}

	alts := a.nodes[group].Alternatives
	if len(alts) > 1 {
		a.properties |= propAlternations
	}
	if len(alts) == 1 && len(a.nodes[alts[0]].Terms) == 1 {
		term := a.nodes[alts[0]].Terms[0]
		a.nodes[term].Parent = NoNode
		return term
	}
	return group
}

func (p *Parser) addCharClass(set *CodePointSet) {
	if !p.source.Flags.IsUnicode() {
		p.addTerm(p.ast.createCharacterClass(NewMatcherBuilder(set)))
		return
	}
	if set.MatchesNothing() {
		// A group without alternatives is invalid.
		p.addTerm(p.ast.createCharacterClass(emptyMatcherBuilder()))
		return
	}
	p.addTerm(p.translateUnicodeCharClass(set))
}

func (p *Parser) markExpandedQuantifier(id NodeID) {
	n := &p.ast.nodes[id]
	if n.Kind == KindGroup {
		n.flags |= nodeExpandedQuantifier
	}
}

// createOptional appends recurse+1 nested optional copies of term. A greedy
// level tries the copy first, a lazy level tries the empty alternative first.
func (p *Parser) createOptional(term NodeID, greedy bool, recurse int) {
	if recurse < 0 {
		return
	}
	a := p.ast
	a.properties |= propAlternations
	p.createGroup(true, false, NoNode)
	a.nodes[p.curGroup].flags |= nodeExpandedQuantifier
	if t := &a.nodes[term]; t.Kind == KindGroup {
		low, high := t.EnclosedCaptureGroupsLow, t.EnclosedCaptureGroupsHigh
		g := &a.nodes[p.curGroup]
		g.EnclosedCaptureGroupsLow = low
		g.EnclosedCaptureGroupsHigh = high
	}
	if greedy {
		p.addTerm(a.copyFrom(a, term))
		p.markExpandedQuantifier(p.curTerm)
		p.createOptional(term, true, recurse-1)
		p.addSequence()
	} else {
		p.addSequence()
		p.addTerm(a.copyFrom(a, term))
		p.markExpandedQuantifier(p.curTerm)
		p.createOptional(term, false, recurse-1)
	}
	if err := p.popGroup(-1); err != nil {
		internalError("optional group without parent")
	}
}

func (p *Parser) setLoop() {
	a := p.ast
	a.properties |= propLoops
	n := &a.nodes[p.curTerm]
	if n.Kind != KindGroup {
		internalError("loop on " + n.Kind.String())
	}
	n.flags |= nodeLoop
}

func (p *Parser) curTermIsAnchor(kind PositionKind) bool {
	if p.curTerm == NoNode {
		return false
	}
	n := &p.ast.nodes[p.curTerm]
	return n.Kind == KindPositionAssertion && n.Position == kind && !n.IsDead()
}

func (p *Parser) substitute(f fragment) {
	p.addTerm(p.ast.copyFrom(f.ast, f.group))
	p.curTermAnchor = true
}

// parse builds the tree and returns the top-level group. The top-level group
// is capture group 0 if rootCapture is set.
func (p *Parser) parse(rootCapture bool) (NodeID, error) {
	if p.used {
		internalError("parser used twice")
	}
	p.used = true
	a := p.ast
	flags := p.source.Flags
	a.root = a.createRoot()
	root := p.createGroup(false, rootCapture, a.root)
	for p.tokens.HasNext() {
		t, err := p.tokens.Next()
		if err != nil {
			return NoNode, err
		}
		switch t.Kind {
		case TokenCaret:
			if flags.IsMultiline() {
				loadSubstitutions()
				p.substitute(substitutions.multiLineCaret)
				a.properties |= propAlternations
			} else if p.curTermIsAnchor(PositionCaret) {
				p.elideAnchor()
			} else {
				p.addTerm(a.createPositionAssertion(PositionCaret))
			}
		case TokenDollar:
			if flags.IsMultiline() {
				loadSubstitutions()
				p.substitute(substitutions.multiLineDollar)
				a.properties |= propAlternations
			} else if p.curTermIsAnchor(PositionDollar) {
				p.elideAnchor()
			} else {
				p.addTerm(a.createPositionAssertion(PositionDollar))
			}
		case TokenWordBoundary:
			loadSubstitutions()
			if flags.IsUnicode() && flags.IsIgnoreCase() {
				p.substitute(substitutions.unicodeIgnoreCaseWordBoundary)
			} else {
				p.substitute(substitutions.wordBoundary)
			}
			a.properties |= propAlternations
		case TokenNonWordBoundary:
			loadSubstitutions()
			if flags.IsUnicode() && flags.IsIgnoreCase() {
				p.substitute(substitutions.unicodeIgnoreCaseNonWordBoundary)
			} else {
				p.substitute(substitutions.nonWordBoundary)
			}
			a.properties |= propAlternations
		case TokenBackReference:
			a.properties |= propBackReferences
			p.addTerm(a.createBackReference(t.GroupNr))
		case TokenQuantifier:
			if err := p.parseQuantifier(t); err != nil {
				return NoNode, err
			}
		case TokenAlternation:
			p.addSequence()
			a.properties |= propAlternations
		case TokenCaptureGroupBegin:
			a.properties |= propCaptureGroups
			p.createGroup(true, true, NoNode)
		case TokenNonCaptureGroupBegin:
			p.createGroup(true, false, NoNode)
		case TokenLookAheadAssertionBegin:
			p.addLookAheadAssertion(t.Negate)
		case TokenLookBehindAssertionBegin:
			p.addLookBehindAssertion()
		case TokenGroupEnd:
			if err := p.popGroup(t.Pos); err != nil {
				return NoNode, err
			}
		case TokenCharClass:
			if t.CodePointSet == nil {
				internalError("character class token without code points")
			}
			p.addCharClass(t.CodePointSet)
		default:
			internalError("unknown token " + t.Kind.String())
		}
	}
	if p.curGroup != root {
		return NoNode, p.syntaxError(errUnterminatedGroup, -1)
	}
	return root, nil
}

func (p *Parser) parseQuantifier(q Token) error {
	a := p.ast
	if p.curTerm == NoNode || a.nodes[p.curTerm].IsDead() {
		return p.syntaxError(errQuantifierWithoutTarget, q.Pos)
	}
	kind := a.nodes[p.curTerm].Kind
	onLookAround := kind == KindLookAheadAssertion || kind == KindLookBehindAssertion
	onAssertion := onLookAround || p.curTermAnchor || kind == KindPositionAssertion
	if onAssertion && p.source.Flags.IsUnicode() {
		if onLookAround {
			return p.syntaxError(errQuantifierOnLookAround, q.Pos)
		}
		return p.syntaxError(errQuantifierOnPositionAnchor, q.Pos)
	}
	if q.Min > q.Max {
		return p.syntaxError(errQuantifierOutOfOrder, q.Pos)
	}
	if a.lastTerm(p.curSequence) != p.curTerm {
		internalError("quantifier target is not the last term")
	}
	if p.curTermElided {
		return nil
	}
	if q.Min == 0 {
		a.deleteNode(p.curTerm)
		a.removeLast(p.curSequence)
	}
	term := p.curTerm
	if onAssertion {
		return nil
	}
	ceiling := p.opts.MaxCountedRepetition
	if q.Min > ceiling || !q.IsInfiniteLoop() && q.Max > ceiling {
		// The tree is left incomplete; executors must check
		// HasLargeCountedRepetitions.
		a.properties |= propLargeCountedRepetitions
		return nil
	}
	for i := q.Min; i > 1; i-- {
		p.addTerm(a.copyFrom(a, term))
		p.markExpandedQuantifier(p.curTerm)
	}
	if q.IsInfiniteLoop() {
		p.createOptional(term, q.Greedy, 0)
		p.setLoop()
	} else {
		p.createOptional(term, q.Greedy, q.Max-q.Min-1)
	}
	return nil
}
