package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	exprun "github.com/jcormont/expression-runner"
	"github.com/jcormont/expression-runner/object"
)

const replHelp = `Commands:
  :help          show this help
  :vars          list session variables
  :functions     list registered functions
  :doc <topic>   show documentation for a function or type
  :reset         remove all session variables
  :quit          exit (or press Ctrl-D)

Assignments are kept between lines, for example:
  total = 0
  add = x => total + x
  add(5)`

var (
	replPrompt = color.New(color.FgHiBlue).SprintFunc()
	replMuted  = color.New(color.FgHiBlack).SprintFunc()
)

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

// repl evaluates lines within one session. It is separate from the line
// editor so that it can be driven by tests.
type repl struct {
	session *exprun.Session
	out     io.Writer
}

func newRepl(out io.Writer) *repl {
	return &repl{session: exprun.NewSession(getExprunOptions()...), out: out}
}

// handle evaluates a line or runs a command. It returns false when the
// session should end.
func (r *repl) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	if strings.HasPrefix(line, ":") {
		return r.command(line)
	}
	result, err := r.session.Eval(ctx, line)
	if err != nil {
		fmt.Fprintln(r.out, formatError(err))
		return true
	}
	fmt.Fprintln(r.out, inspect(result))
	return true
}

func (r *repl) command(line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	switch name {
	case ":quit", ":q", ":exit":
		return false
	case ":help", ":h":
		fmt.Fprintln(r.out, replHelp)
	case ":reset":
		r.session.Reset()
	case ":vars":
		for _, name := range r.session.Names() {
			value, ok := r.session.GetObject(name)
			if !ok {
				continue
			}
			fmt.Fprintf(r.out, "%s = %s\n", name, inspect(value))
		}
	case ":functions":
		names := make([]string, 0)
		for name := range exprun.Functions() {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintln(r.out, strings.Join(names, " "))
	case ":doc":
		fmt.Fprintln(r.out, exprun.Docs(exprun.DocsTopic(strings.TrimSpace(arg))).JSON())
	default:
		fmt.Fprintf(r.out, "unknown command %s (try :help)\n", name)
	}
	return true
}

// complete returns completions for the identifier at the end of line.
func (r *repl) complete(line string) []string {
	start := strings.LastIndexFunc(line, func(c rune) bool {
		return !(unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '$')
	}) + 1
	prefix := line[start:]
	if prefix == "" {
		return nil
	}
	var out []string
	for _, name := range r.session.Names() {
		if strings.HasPrefix(name, prefix) {
			out = append(out, line[:start]+name)
		}
	}
	return out
}

// inspect shows a value the way it would be written in an expression.
func inspect(value object.Object) string {
	switch value.(type) {
	case *object.String, *object.List, *object.Map:
		if s, ok, err := object.ToJSON(value, ""); err == nil && ok {
			return s
		}
	}
	return value.Inspect()
}

func runRepl(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	r := newRepl(out)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(r.complete)

	historyPath := historyFile()
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}

	fmt.Fprintf(out, "exprun %s %s\n", version, replMuted("(:help for commands)"))
	for {
		input, err := line.Prompt("> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if !r.handle(ctx, input) {
			break
		}
	}

	if historyPath != "" {
		if f, err := os.Create(historyPath); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}
	return nil
}

func historyFile() string {
	home, err := homedir.Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".exprun_history")
}
