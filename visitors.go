package regast

import "slices"

// copyFrom deep-copies the subtree at id in src into a, which may be src
// itself. Copies get fresh node ids; capture groups keep their index.
func (a *RegexAST) copyFrom(src *RegexAST, id NodeID) NodeID {
	n := src.nodes[id]
	c := n
	c.Alternatives = nil
	c.Terms = nil
	c.flags &^= nodeDead
	newID := a.newNode(c)
	switch n.Kind {
	case KindGroup:
		for _, alt := range n.Alternatives {
			a.appendSequence(newID, a.copyFrom(src, alt))
		}
	case KindSequence:
		for _, t := range n.Terms {
			a.addTerm(newID, a.copyFrom(src, t))
		}
	case KindRoot, KindLookAheadAssertion, KindLookBehindAssertion:
		a.setGroup(newID, a.copyFrom(src, n.Group))
	}
	return newID
}

// deleteNode marks the subtree at id as removed. The caller unlinks it from
// its parent. Arena slots are not reused, so the subtree can still serve as a
// template for copies.
func (a *RegexAST) deleteNode(id NodeID) {
	a.walk(id, true, func(id NodeID) bool {
		a.nodes[id].flags |= nodeDead
		return true
	})
}

// walk visits the subtree at id in pre-order. If intoLookArounds is false,
// the groups of lookaround assertions are skipped. Returning false from visit
// skips the children of a node.
func (a *RegexAST) walk(id NodeID, intoLookArounds bool, visit func(NodeID) bool) {
	if !visit(id) {
		return
	}
	n := &a.nodes[id]
	switch n.Kind {
	case KindGroup:
		for _, alt := range n.Alternatives {
			a.walk(alt, intoLookArounds, visit)
		}
	case KindSequence:
		for _, t := range n.Terms {
			a.walk(t, intoLookArounds, visit)
		}
	case KindRoot:
		a.walk(n.Group, intoLookArounds, visit)
	case KindLookAheadAssertion, KindLookBehindAssertion:
		if intoLookArounds {
			a.walk(n.Group, intoLookArounds, visit)
		}
	}
}

func addLen(x, y int) int {
	if x == Unbounded || y == Unbounded {
		return Unbounded
	}
	return x + y
}

func maxLen(x, y int) int {
	if x == Unbounded || y == Unbounded {
		return Unbounded
	}
	return max(x, y)
}

// calcMinPaths sets MinLen and MaxLen bottom-up, then MinPath and MinPathRev
// top-down. The groups of lookaround assertions inherit the paths of the
// assertion.
func (a *RegexAST) calcMinPaths() {
	a.calcLengths(a.root)
	a.calcPaths(a.root, 0, 0)
}

func (a *RegexAST) calcLengths(id NodeID) {
	n := &a.nodes[id]
	switch n.Kind {
	case KindRoot:
		a.calcLengths(n.Group)
		g := &a.nodes[n.Group]
		n.MinLen, n.MaxLen = g.MinLen, g.MaxLen
	case KindGroup:
		minLen, maxL := -1, 0
		for _, alt := range n.Alternatives {
			a.calcLengths(alt)
			s := &a.nodes[alt]
			if minLen == -1 || s.MinLen < minLen {
				minLen = s.MinLen
			}
			maxL = maxLen(maxL, s.MaxLen)
		}
		n.MinLen = max(minLen, 0)
		n.MaxLen = maxL
		if n.IsLoop() {
			n.MaxLen = Unbounded
		}
	case KindSequence:
		minLen, maxL := 0, 0
		for _, t := range n.Terms {
			a.calcLengths(t)
			minLen += a.nodes[t].MinLen
			maxL = addLen(maxL, a.nodes[t].MaxLen)
		}
		n.MinLen, n.MaxLen = minLen, maxL
	case KindCharacterClass:
		n.MinLen, n.MaxLen = 1, 1
	case KindBackReference:
		n.MinLen, n.MaxLen = 0, Unbounded
	case KindLookAheadAssertion, KindLookBehindAssertion:
		a.calcLengths(n.Group)
		n.MinLen, n.MaxLen = 0, 0
	case KindPositionAssertion:
		n.MinLen, n.MaxLen = 0, 0
	}
}

func (a *RegexAST) calcPaths(id NodeID, minPath, minPathRev int) {
	n := &a.nodes[id]
	n.MinPath, n.MinPathRev = minPath, minPathRev
	switch n.Kind {
	case KindRoot, KindLookAheadAssertion, KindLookBehindAssertion:
		a.calcPaths(n.Group, minPath, minPathRev)
	case KindGroup:
		for _, alt := range n.Alternatives {
			a.calcPaths(alt, minPath, minPathRev)
		}
	case KindSequence:
		before, total := 0, n.MinLen
		for _, t := range n.Terms {
			l := a.nodes[t].MinLen
			a.calcPaths(t, minPath+before, minPathRev+total-before-l)
			before += l
		}
	}
}

// removeUnreachablePositionAssertions drops the alternatives containing a
// caret or dollar that can never match because code units must be consumed
// before or after it. Lookaround assertions are not inspected.
func (a *RegexAST) removeUnreachablePositionAssertions() {
	for a.removeUnreachablePositionAssertion() {
		a.calcMinPaths()
	}
}

func (a *RegexAST) removeUnreachablePositionAssertion() bool {
	found := NoNode
	a.walk(a.root, false, func(id NodeID) bool {
		if found != NoNode {
			return false
		}
		n := &a.nodes[id]
		if n.Kind != KindPositionAssertion {
			return true
		}
		if n.Position == PositionCaret && n.MinPath > 0 || n.Position == PositionDollar && n.MinPathRev > 0 {
			found = id
		}
		return true
	})
	if found == NoNode {
		return false
	}
	seq := a.nodes[found].Parent
	group := a.nodes[seq].Parent
	a.deleteNode(seq)
	g := &a.nodes[group]
	if len(g.Alternatives) > 1 {
		for i, alt := range g.Alternatives {
			if alt == seq {
				g.Alternatives = append(g.Alternatives[:i:i], g.Alternatives[i+1:]...)
				break
			}
		}
		return true
	}
	// A group needs at least one alternative.
	s := &a.nodes[seq]
	s.flags &^= nodeDead
	s.Terms = nil
	a.addTerm(seq, a.createCharacterClass(emptyMatcherBuilder()))
	return true
}

// initIDs numbers the reachable nodes in pre-order.
func (a *RegexAST) initIDs() {
	next := 0
	a.walk(a.root, true, func(id NodeID) bool {
		a.nodes[id].ID = next
		next++
		return true
	})
	a.numberOfNodes = next
}

// LookBehindLength returns the maximum number of code units the look-behind
// assertion id can look back, or Unbounded.
func (a *RegexAST) LookBehindLength(id NodeID) int {
	n := &a.nodes[id]
	if n.Kind != KindLookBehindAssertion {
		internalError("LookBehindLength on " + n.Kind.String())
	}
	return a.nodes[n.Group].MaxLen
}

// markLookBehindEntries flags the character classes that precede a
// look-behind assertion of bounded length within that length. Matching such
// a class is where the executor may enter the look-behind.
func (a *RegexAST) markLookBehindEntries() {
	var lookBehinds []NodeID
	a.walk(a.root, true, func(id NodeID) bool {
		if a.nodes[id].Kind == KindLookBehindAssertion {
			lookBehinds = append(lookBehinds, id)
		}
		return true
	})
	for _, lb := range lookBehinds {
		length := a.LookBehindLength(lb)
		if length == Unbounded {
			continue
		}
		seq := a.nodes[lb].Parent
		terms := a.nodes[seq].Terms
		for i := slices.Index(terms, lb) - 1; i >= 0 && length > 0; i-- {
			t := &a.nodes[terms[i]]
			switch t.Kind {
			case KindCharacterClass:
				t.flags |= nodeLookBehindEntry
			case KindGroup:
				a.walk(terms[i], false, func(id NodeID) bool {
					if a.nodes[id].Kind == KindCharacterClass {
						a.nodes[id].flags |= nodeLookBehindEntry
					}
					return true
				})
			}
			length -= a.nodes[terms[i]].MinLen
		}
	}
}
