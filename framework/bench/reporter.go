package bench

// Reporter receives status information as a run progresses. All methods are called from the
// goroutine that called Run, in declaration order.
type Reporter interface {
	// GroupEntered is called before the body of a group runs.
	GroupEntered(id TestID, depth int)

	// CaseFinished is called once the isolated process of a case has ended.
	CaseFinished(id TestID, depth int, verdict Verdict)

	// CaseSkipped is called for a declared case that was not executed.
	CaseSkipped(id TestID, depth int, reason string)

	// Note is called for lines that are not case results, such as the checks made by self-tests.
	Note(depth int, ok bool, message string)

	// EndLog is called once at the end of the run.
	EndLog(results Results) error
}

type nullReporter struct{}

func (nullReporter) GroupEntered(TestID, int)          {}
func (nullReporter) CaseFinished(TestID, int, Verdict) {}
func (nullReporter) CaseSkipped(TestID, int, string)   {}
func (nullReporter) Note(int, bool, string)            {}
func (nullReporter) EndLog(Results) error              { return nil }

// MultiReporter forwards every call to each of its reporters in turn.
type MultiReporter struct {
	Reporters []Reporter
}

func (m MultiReporter) GroupEntered(id TestID, depth int) {
	for _, r := range m.Reporters {
		r.GroupEntered(id, depth)
	}
}

func (m MultiReporter) CaseFinished(id TestID, depth int, verdict Verdict) {
	for _, r := range m.Reporters {
		r.CaseFinished(id, depth, verdict)
	}
}

func (m MultiReporter) CaseSkipped(id TestID, depth int, reason string) {
	for _, r := range m.Reporters {
		r.CaseSkipped(id, depth, reason)
	}
}

func (m MultiReporter) Note(depth int, ok bool, message string) {
	for _, r := range m.Reporters {
		r.Note(depth, ok, message)
	}
}

// EndLog calls EndLog on every reporter, even if one of them fails, and returns the first error.
func (m MultiReporter) EndLog(results Results) error {
	var firstErr error
	for _, r := range m.Reporters {
		if err := r.EndLog(results); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
