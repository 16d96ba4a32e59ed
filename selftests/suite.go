package selftests

import (
	"fmt"
	"os"
	"time"

	"github.com/launchdarkly/testbench/framework/bench"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureSentinel = 42

// Suite returns the root action of the self-test run. Results of cases that are supposed to fail
// are counted in e.
func Suite(e *Expectations) func(*bench.G) {
	return func(g *bench.G) {
		g.Group("Testbench", func(g *bench.G) {
			g.Run(assertTests, e)
			g.Run(assertfTests, e)
			g.Run(passTests, e)
			g.Run(failTests, e)
			g.Run(failfTests, e)
			g.Run(runTests, e)
			g.Run(fixtureTests, e)
			g.Run(crashTests, e)
			g.Run(assertionLibraryTests, e)
		})
	}
}

func expectations(udata interface{}) *Expectations {
	return udata.(*Expectations)
}

func assertTests(g *bench.G, udata interface{}) {
	e := expectations(udata)
	g.Group("Assert()", func(g *bench.G) {
		g.Case("[P] should assert true correctly", func(t *bench.T) {
			t.Assert(true)
		})

		e.MustFail(g, func() {
			g.Case("[F] should assert false correctly", func(t *bench.T) {
				t.Assert(false)
			})
		})

		e.MustFail(g, func() {
			g.Case("[F] should display output on fail [two messages under this line]", func(t *bench.T) {
				fmt.Fprintln(os.Stdout, "A message on STDOUT.")
				fmt.Fprintln(os.Stderr, "A message on STDERR.")
				t.Fail()
			})
		})
	})
}

func assertfTests(g *bench.G, udata interface{}) {
	e := expectations(udata)
	g.Group("Assertf()", func(g *bench.G) {
		g.Case("[P] should assert true correctly", func(t *bench.T) {
			t.Assertf(true, "SHOULD NOT DISPLAY")
		})

		e.MustFail(g, func() {
			g.Case(`[F] should assert false correctly, and display "a nice message"`, func(t *bench.T) {
				t.Assertf(false, "a %s message", "nice")
			})
		})
	})
}

func passTests(g *bench.G, _ interface{}) {
	g.Group("Pass()", func(g *bench.G) {
		g.Case("[P] should pass, and not execute any further instruction", func(t *bench.T) {
			t.Pass()
			t.Failf("SHOULD NOT DISPLAY")
		})
	})
}

func failTests(g *bench.G, udata interface{}) {
	e := expectations(udata)
	g.Group("Fail()", func(g *bench.G) {
		e.MustFail(g, func() {
			g.Case("[F] should fail, and not execute any further instruction", func(t *bench.T) {
				t.Fail()
				t.Failf("SHOULD NOT DISPLAY")
			})
		})
	})
}

func failfTests(g *bench.G, udata interface{}) {
	e := expectations(udata)
	g.Group("Failf()", func(g *bench.G) {
		e.MustFail(g, func() {
			g.Case(`[F] should fail, not execute any further instruction, and display "a nice message"`,
				func(t *bench.T) {
					t.Failf("a %s message", "nice")
					t.Failf("SHOULD NOT DISPLAY")
				})
		})
	})
}

func runContextTests(g *bench.G, udata interface{}) {
	g.Case("[P] should pass user data", func(t *bench.T) {
		t.Assert(udata == fixtureSentinel)
	})
}

func runTests(g *bench.G, _ interface{}) {
	g.Group("Run()", func(g *bench.G) {
		g.Run(runContextTests, fixtureSentinel)
	})
}

func fixtureSetup(udata interface{}) interface{} {
	if *(udata.(*int)) == fixtureSentinel {
		return fixtureSentinel
	}
	return nil
}

func fixtureTeardown(_, fixtures interface{}) {
	fmt.Printf("teardown received fixtures %v\n", fixtures)
}

func fixtureTests(g *bench.G, _ interface{}) {
	g.Group("fixtures", func(g *bench.G) {
		testUdata := fixtureSentinel
		g.Setup(fixtureSetup, &testUdata)
		g.Teardown(fixtureTeardown, &testUdata)

		g.Case("[P] should run setup", func(t *bench.T) {
			t.Assert(t.Fixtures() == fixtureSentinel)
		})

		g.Case("[P] should run teardown", func(t *bench.T) {
			t.Pass()
		})
	})
}

func crashTests(g *bench.G, udata interface{}) {
	e := expectations(udata)
	g.Group("crashes", func(g *bench.G) {
		e.MustFail(g, func() {
			g.Case("[F] should contain a call to os.Exit", func(t *bench.T) {
				fmt.Println("exiting with status 3")
				os.Exit(3)
			})
		})

		e.MustFail(g, func() {
			g.Case("[F] should contain a panic in another goroutine", func(t *bench.T) {
				go func() {
					panic("this goroutine has no recover")
				}()
				time.Sleep(time.Minute)
				t.Failf("SHOULD NOT DISPLAY")
			})
		})
	})
}

func assertionLibraryTests(g *bench.G, udata interface{}) {
	e := expectations(udata)
	g.Group("assertion libraries", func(g *bench.G) {
		g.Case("[P] should accept testify assertions", func(t *bench.T) {
			assert.Equal(t, 2, 1+1)
			require.NotEmpty(t, "x")
		})

		e.MustFail(g, func() {
			g.Case("[F] should report testify failures", func(t *bench.T) {
				require.Equal(t, "expected", "actual")
				t.Failf("SHOULD NOT DISPLAY")
			})
		})

		g.Case("[P] should accept matchers", func(t *bench.T) {
			m.In(t).Assert("test bench", m.AllOf(m.StringContains("test"), m.StringContains("bench")))
		})

		e.MustFail(g, func() {
			g.Case("[F] should report matcher failures", func(t *bench.T) {
				m.In(t).Assert(fixtureSentinel, m.Not(m.Equal(fixtureSentinel)))
			})
		})
	})
}
