package bench

import (
	"github.com/launchdarkly/testbench/framework/opt"
)

// ScopeKind identifies what kind of scope a scope record belongs to.
type ScopeKind int

const (
	// KindRoot is the implicit top-level scope of a run. There is exactly one, at depth 0.
	KindRoot ScopeKind = iota
	// KindGroup is a named scope that can contain cases and further groups.
	KindGroup
	// KindCase is a leaf scope that runs one test body.
	KindCase
)

func (k ScopeKind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindGroup:
		return "group"
	case KindCase:
		return "case"
	default:
		return "unknown"
	}
}

// SetupFunc creates the fixtures for a case. It receives the argument that was given along
// with it to G.Setup. It runs inside the isolated child process.
type SetupFunc func(arg interface{}) interface{}

// TeardownFunc releases whatever SetupFunc created. It receives the argument that was given
// along with it to G.Teardown, and the fixtures value returned by the setup function (nil if
// there was no setup function). It runs inside the isolated child process.
type TeardownFunc func(arg, fixtures interface{})

type setupHook struct {
	fn  SetupFunc
	arg interface{}
}

type teardownHook struct {
	fn  TeardownFunc
	arg interface{}
}

// scope is one record of the context stack. The harness holds a pointer to the current one;
// children copy the hooks of their parent by value when they are created, so that changing the
// hooks of a scope only affects scopes that are entered from it afterward.
type scope struct {
	kind     ScopeKind
	id       TestID
	depth    int
	setup    opt.Maybe[setupHook]
	teardown opt.Maybe[teardownHook]
}

func newRootScope() *scope {
	return &scope{kind: KindRoot}
}

func (s *scope) child(kind ScopeKind, name string) *scope {
	return &scope{
		kind:     kind,
		id:       s.id.Plus(name),
		depth:    s.depth + 1,
		setup:    s.setup,
		teardown: s.teardown,
	}
}

func (s *scope) setSetup(fn SetupFunc, arg interface{}) {
	if fn == nil {
		s.setup = opt.None[setupHook]()
		return
	}
	s.setup = opt.Some(setupHook{fn: fn, arg: arg})
}

func (s *scope) setTeardown(fn TeardownFunc, arg interface{}) {
	if fn == nil {
		s.teardown = opt.None[teardownHook]()
		return
	}
	s.teardown = opt.Some(teardownHook{fn: fn, arg: arg})
}

// runSetup calls the setup hook, if any, and returns the fixtures.
func (s *scope) runSetup() interface{} {
	if !s.setup.IsDefined() {
		return nil
	}
	h := s.setup.Value()
	return h.fn(h.arg)
}

// runTeardown calls the teardown hook, if any.
func (s *scope) runTeardown(fixtures interface{}) {
	if !s.teardown.IsDefined() {
		return
	}
	h := s.teardown.Value()
	h.fn(h.arg, fixtures)
}

// scopeStack tracks the current scope of a run. Entering a scope returns the previous one,
// which must be handed back to exit.
type scopeStack struct {
	current *scope
}

func (st *scopeStack) enter(parent *scope, kind ScopeKind, name string) (entered, previous *scope) {
	previous = st.current
	entered = parent.child(kind, name)
	st.current = entered
	return entered, previous
}

func (st *scopeStack) exit(previous *scope) {
	st.current = previous
}
