package ruletest

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// OutputConfig configures output formatting.
type OutputConfig struct {
	Writer io.Writer

	// Verbose prints a line for every test, not only for failures.
	Verbose bool

	// UseColor enables ANSI color codes.
	UseColor bool
}

// Output handles formatting and printing test results.
type Output struct {
	w       io.Writer
	verbose bool
	green   *color.Color
	red     *color.Color
	yellow  *color.Color
}

// NewOutput creates a new Output formatter.
func NewOutput(cfg OutputConfig) *Output {
	o := &Output{
		w:       cfg.Writer,
		verbose: cfg.Verbose,
		green:   color.New(color.FgGreen),
		red:     color.New(color.FgRed),
		yellow:  color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{o.green, o.red, o.yellow} {
		if cfg.UseColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return o
}

// StartTest prints the "=== RUN" line for a test.
func (o *Output) StartTest(name string) {
	fmt.Fprintf(o.w, "=== RUN   %s\n", name)
}

// EndTest prints the result line for a test (--- PASS, --- FAIL, etc.).
func (o *Output) EndTest(result *TestResult) {
	var status string
	switch result.Status {
	case StatusPassed:
		status = o.green.Sprint("--- PASS:")
	case StatusFailed:
		status = o.red.Sprint("--- FAIL:")
	case StatusSkipped:
		status = o.yellow.Sprint("--- SKIP:")
	default:
		status = o.red.Sprintf("--- %s:", result.Status)
	}
	fmt.Fprintf(o.w, "%s %s (%.3fs)\n", status, result.Name, result.Duration.Seconds())

	if result.Status == StatusSkipped && result.SkipReason != "" {
		fmt.Fprintf(o.w, "    %s\n", result.SkipReason)
	}
	if result.Status == StatusError && result.Error != nil {
		fmt.Fprintf(o.w, "    %s\n", indent(result.Error.Error()))
	}
	for _, failure := range result.Failures {
		o.printFailure(failure)
	}
}

func (o *Output) printFailure(f Failure) {
	loc := ""
	if f.File != "" {
		loc = f.File
		if f.Line > 0 {
			loc = fmt.Sprintf("%s:%d", f.File, f.Line)
		}
		loc += ": "
	}
	fmt.Fprintf(o.w, "    %s%s\n", loc, indent(f.Message))
	if f.Diff != "" {
		fmt.Fprintf(o.w, "        %s:  %s\n", o.red.Sprint("got"), compact(f.Got))
		fmt.Fprintf(o.w, "        %s: %s\n", o.green.Sprint("want"), compact(f.Want))
		fmt.Fprintf(o.w, "    %s\n", indent(strings.TrimRight(f.Diff, "\n")))
	}
}

// LoadError prints an error for a test file that could not be loaded.
func (o *Output) LoadError(filename string, err error) {
	fmt.Fprintf(o.w, "%s %s\n", o.red.Sprint("LOAD ERROR:"), filename)
	fmt.Fprintf(o.w, "    %s\n", indent(err.Error()))
}

// Summary prints the final summary line.
func (o *Output) Summary(summary *Summary) {
	fmt.Fprintln(o.w)
	if summary.Success() {
		fmt.Fprintln(o.w, o.green.Sprint("PASS"))
	} else {
		fmt.Fprintln(o.w, o.red.Sprint("FAIL"))
	}

	var parts []string
	if summary.Passed > 0 {
		parts = append(parts, o.green.Sprintf("%d passed", summary.Passed))
	}
	if summary.Failed > 0 {
		parts = append(parts, o.red.Sprintf("%d failed", summary.Failed))
	}
	if summary.Skipped > 0 {
		parts = append(parts, o.yellow.Sprintf("%d skipped", summary.Skipped))
	}
	if summary.Errors > 0 {
		parts = append(parts, o.red.Sprintf("%d errors", summary.Errors))
	}
	if len(parts) > 0 {
		fmt.Fprintln(o.w, strings.Join(parts, ", "))
	}
}

// PrintResults prints all results in Go test style. Passing tests are only
// listed in verbose mode.
func (o *Output) PrintResults(summary *Summary) {
	for _, file := range summary.Files {
		if file.LoadErr != nil {
			o.LoadError(file.Filename, file.LoadErr)
		}
	}
	for _, file := range summary.Files {
		for _, test := range file.Tests {
			if !o.verbose && test.Status == StatusPassed {
				continue
			}
			if o.verbose {
				o.StartTest(test.Name)
			}
			o.EndTest(test)
		}
	}
	o.Summary(summary)
}

func indent(s string) string {
	return strings.ReplaceAll(s, "\n", "\n    ")
}

func compact(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
