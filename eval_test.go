package regast

import (
	"testing"
	"unicode/utf16"

	"gotest.tools/v3/assert"
)

// evaluator is a naive backtracking matcher over a RegexAST. It checks that
// the trees built by the parser mean what the pattern says.
type evaluator struct {
	ast     *RegexAST
	subject []uint16
	caps    []int
}

func newEvaluator(ast *RegexAST, subject []uint16) *evaluator {
	caps := make([]int, ast.NumberOfCaptureGroups()*2)
	for i := range caps {
		caps[i] = -1
	}
	return &evaluator{ast: ast, subject: subject, caps: caps}
}

func (e *evaluator) node(id NodeID, pos int, k func(int) bool) bool {
	n := &e.ast.nodes[id]
	switch n.Kind {
	case KindGroup:
		if n.IsLoop() {
			return e.loop(id, pos, k)
		}
		if !n.IsCapture() {
			return e.alternatives(id, pos, k)
		}
		return e.alternatives(id, pos, func(end int) bool {
			start, oldEnd := e.caps[n.GroupNr*2], e.caps[n.GroupNr*2+1]
			e.caps[n.GroupNr*2], e.caps[n.GroupNr*2+1] = pos, end
			if k(end) {
				return true
			}
			e.caps[n.GroupNr*2], e.caps[n.GroupNr*2+1] = start, oldEnd
			return false
		})
	case KindSequence:
		return e.terms(n.Terms, pos, k)
	case KindCharacterClass:
		if pos < len(e.subject) && n.Matcher.Test(e.subject[pos]) {
			return k(pos + 1)
		}
		return false
	case KindPositionAssertion:
		if n.Position == PositionCaret && pos == 0 || n.Position == PositionDollar && pos == len(e.subject) {
			return k(pos)
		}
		return false
	case KindLookAheadAssertion:
		matched := e.node(n.Group, pos, func(int) bool { return true })
		if matched != n.IsNegated() {
			return k(pos)
		}
		return false
	case KindLookBehindAssertion:
		for start := pos; start >= 0; start-- {
			if e.node(n.Group, start, func(end int) bool { return end == pos }) {
				return k(pos)
			}
		}
		return false
	case KindBackReference:
		start, end := e.caps[n.GroupNr*2], e.caps[n.GroupNr*2+1]
		if start < 0 {
			return k(pos)
		}
		l := end - start
		if pos+l > len(e.subject) {
			return false
		}
		for i := range l {
			if e.subject[start+i] != e.subject[pos+i] {
				return false
			}
		}
		return k(pos + l)
	}
	panic("unexpected node " + n.Kind.String())
}

func (e *evaluator) alternatives(id NodeID, pos int, k func(int) bool) bool {
	for _, alt := range e.ast.nodes[id].Alternatives {
		if e.node(alt, pos, k) {
			return true
		}
	}
	return false
}

// loop matches a loop group as many times as it consumes input.
func (e *evaluator) loop(id NodeID, pos int, k func(int) bool) bool {
	for _, alt := range e.ast.nodes[id].Alternatives {
		terms := e.ast.nodes[alt].Terms
		if len(terms) == 0 {
			if k(pos) {
				return true
			}
			continue
		}
		if e.terms(terms, pos, func(p int) bool { return p != pos && e.loop(id, p, k) }) {
			return true
		}
	}
	return false
}

func (e *evaluator) terms(terms []NodeID, pos int, k func(int) bool) bool {
	if len(terms) == 0 {
		return k(pos)
	}
	return e.node(terms[0], pos, func(p int) bool { return e.terms(terms[1:], p, k) })
}

// fullMatch reports whether ast matches all of subject.
func fullMatch(ast *RegexAST, subject []uint16) bool {
	e := newEvaluator(ast, subject)
	return e.node(ast.RootGroup(), 0, func(end int) bool { return end == len(subject) })
}

// search returns the first index at which ast matches subject, or -1.
func search(ast *RegexAST, subject []uint16) int {
	for start := 0; start <= len(subject); start++ {
		e := newEvaluator(ast, subject)
		if e.node(ast.RootGroup(), start, func(int) bool { return true }) {
			return start
		}
	}
	return -1
}

func u16(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

type runner struct {
	t     *testing.T
	flags Flag
}

func newRunner(t *testing.T) *runner {
	return &runner{t: t}
}

func (r *runner) f(flags Flag) *runner {
	return &runner{t: r.t, flags: flags}
}

func (r *runner) parse(pattern string) *RegexAST {
	r.t.Helper()
	ast, err := Parse(pattern, r.flags)
	assert.NilError(r.t, err, "/%s/%s", pattern, r.flags)
	return ast
}

// m expects pattern to match somewhere in subject.
func (r *runner) m(pattern, subject string) {
	r.t.Helper()
	r.m16(pattern, u16(subject))
}

// n expects pattern not to match subject.
func (r *runner) n(pattern, subject string) {
	r.t.Helper()
	r.n16(pattern, u16(subject))
}

func (r *runner) m16(pattern string, subject []uint16) {
	r.t.Helper()
	assert.Assert(r.t, search(r.parse(pattern), subject) >= 0, "/%s/%s should match %x", pattern, r.flags, subject)
}

func (r *runner) n16(pattern string, subject []uint16) {
	r.t.Helper()
	assert.Equal(r.t, search(r.parse(pattern), subject), -1, "/%s/%s should not match %x", pattern, r.flags, subject)
}

// full expects pattern to match exactly subject.
func (r *runner) full(pattern, subject string, want bool) {
	r.t.Helper()
	assert.Equal(r.t, fullMatch(r.parse(pattern), u16(subject)), want, "/%s/%s on %q", pattern, r.flags, subject)
}
