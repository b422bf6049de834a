package ruletest

import "time"

// Status is the outcome of a single test.
type Status int

const (
	StatusPassed Status = iota
	StatusFailed
	StatusSkipped
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "PASS"
	case StatusFailed:
		return "FAIL"
	case StatusSkipped:
		return "SKIP"
	case StatusError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Failure describes why a test failed.
type Failure struct {
	Message string
	File    string
	Line    int
	Got     any
	Want    any
	Diff    string
}

// TestResult is the result of a single test case.
type TestResult struct {
	Name       string
	Line       int
	Status     Status
	Duration   time.Duration
	Failures   []Failure
	Error      error // compile failure of the expression
	SkipReason string
}

// FileResult holds the results of all tests in one file.
type FileResult struct {
	Filename string
	LoadErr  error
	Tests    []*TestResult
}

// Summary aggregates the results of a run.
type Summary struct {
	Files    []*FileResult
	Duration time.Duration

	Passed  int
	Failed  int
	Skipped int
	Errors  int
}

// ComputeTotals counts the results of all files.
func (s *Summary) ComputeTotals() {
	s.Passed, s.Failed, s.Skipped, s.Errors = 0, 0, 0, 0
	for _, f := range s.Files {
		if f.LoadErr != nil {
			s.Errors++
		}
		for _, t := range f.Tests {
			switch t.Status {
			case StatusPassed:
				s.Passed++
			case StatusFailed:
				s.Failed++
			case StatusSkipped:
				s.Skipped++
			case StatusError:
				s.Errors++
			}
		}
	}
}

// Success returns true if no test failed and all files could be loaded.
func (s *Summary) Success() bool {
	return s.Failed == 0 && s.Errors == 0
}
