package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	exprun "github.com/jcormont/expression-runner"
	"github.com/jcormont/expression-runner/syntax"
)

// rule is a named expression read from a rule file.
type rule struct {
	Name       string
	Expression string
	Line       int
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Check rule files for errors",
		Long: `Compile every expression in one or more YAML rule files and report all
errors. A rule file maps rule names to expressions:

  discount: "total > 100 ? total * 0.1 : 0"
  label: "customer?.name ?? 'guest'"

With --eval, rules are also evaluated against the given variables. With
--strict, every name a rule uses must be a given variable, a function or
a variable the rule assigns itself. With --watch, the files are checked
again whenever they change.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			eval, _ := f.GetBool("eval")
			strict, _ := f.GetBool("strict")
			pairs, _ := f.GetStringArray("var")
			varsFile, _ := f.GetString("vars-file")
			vars, err := getVars(varsFile, pairs)
			if err != nil {
				return err
			}
			opts := getExprunOptions()
			if strict {
				opts = append(opts, exprun.WithValidators(syntax.NewNameValidator(knownNames(vars)...)))
			}
			c := &checker{out: cmd.OutOrStdout(), eval: eval, vars: vars, opts: opts}
			if watch, _ := f.GetBool("watch"); watch {
				return c.watch(cmd.Context(), args)
			}
			return c.checkFiles(cmd.Context(), args)
		},
	}
	f := cmd.Flags()
	f.Bool("eval", false, "also evaluate each rule")
	f.Bool("strict", false, "report names that are not variables or functions")
	f.StringArray("var", nil, "variable as name=value for --eval and --strict")
	f.String("vars-file", "", "JSON or YAML file with variables for --eval and --strict")
	f.BoolP("watch", "w", false, "check again when the files change")
	return cmd
}

type checker struct {
	out  io.Writer
	eval bool
	vars map[string]any
	opts []exprun.Option
}

// knownNames returns the variable names and, unless disabled, the names of
// the default functions.
func knownNames(vars map[string]any) []string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	if !viper.GetBool("no-builtins") {
		for name := range exprun.Functions() {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// readRules parses a rule file, keeping the order of the rules.
func readRules(file string) ([]rule, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of rule names to expressions", root.Line)
	}
	rules := make([]rule, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: rule %q must be a string", value.Line, key.Value)
		}
		rules = append(rules, rule{Name: key.Value, Expression: value.Value, Line: value.Line})
	}
	return rules, nil
}

// checkFile compiles and optionally evaluates the rules of one file. The
// returned error aggregates all failures.
func (c *checker) checkFile(ctx context.Context, file string) (int, error) {
	rules, err := readRules(file)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", file, err)
	}
	opts := append(slices.Clip(c.opts), exprun.WithFilename(file))
	var result *multierror.Error
	for _, r := range rules {
		p, err := exprun.Compile(r.Expression, opts...)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s:%d: %s: %w", file, r.Line, r.Name, err))
			continue
		}
		if !c.eval {
			continue
		}
		vars := make(map[string]any, len(c.vars))
		for k, v := range c.vars {
			vars[k] = v
		}
		value, err := p.Run(ctx, vars)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s:%d: %s: %w", file, r.Line, r.Name, err))
			continue
		}
		output, err := getOutput(value, "text")
		if err != nil {
			return len(rules), err
		}
		fmt.Fprintf(c.out, "%s: %s = %s\n", file, r.Name, output)
	}
	return len(rules), result.ErrorOrNil()
}

func (c *checker) checkFiles(ctx context.Context, files []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var result *multierror.Error
	total := 0
	for _, file := range files {
		n, err := c.checkFile(ctx, file)
		total += n
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%d rules ok\n", total)
	return nil
}

// watch checks the files, then checks them again after each change until
// ctx is cancelled. Directories are watched rather than files so that
// editors that replace files on save are handled.
func (c *checker) watch(ctx context.Context, files []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	watched := map[string]bool{}
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return err
		}
		watched[abs] = true
		if err := w.Add(filepath.Dir(abs)); err != nil {
			return err
		}
	}

	report := func() {
		if err := c.checkFiles(ctx, files); err != nil {
			fmt.Fprintln(c.out, red(err.Error()))
		}
	}
	report()

	// Editors often write a file in several steps; wait for the burst of
	// events to settle.
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if watched[event.Name] && event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending = time.After(100 * time.Millisecond)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(c.out, red(err.Error()))
		case <-pending:
			pending = nil
			report()
		}
	}
}
