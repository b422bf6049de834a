package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	exprun "github.com/jcormont/expression-runner"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "eval [expression]",
		Aliases: []string{"e"},
		Short:   "Evaluate an expression",
		Example: `  exprun eval 'a + b' --var a=1 --var b=2
  exprun eval -c 'items.map(i => i.name)' --vars-file order.json
  echo 'sortBy(xs, x => -x)' | exprun eval --var 'xs=[3,1,2]'`,
		Args: cobra.MaximumNArgs(1),
		RunE: evalMain,
	}
	addEvalFlags(cmd)
	return cmd
}

func addEvalFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("code", "c", "", "expression to evaluate")
	cmd.Flags().Bool("stdin", false, "read the expression from stdin")
	addRunFlags(cmd)
}

// addRunFlags adds the flags that control evaluation and output.
func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringArray("var", nil, "variable as name=value; values are parsed as JSON when possible")
	f.String("vars-file", "", "JSON or YAML file with variables")
	f.StringP("output", "o", "", "output format (json, text)")
	f.BoolP("quiet", "q", false, "suppress output")
	f.Bool("trace", false, "print evaluated nodes and calls to stderr")
	f.Bool("timing", false, "show evaluation time")
	f.Duration("timeout", 0, "abort evaluation after this duration")
	_ = cmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return outputFormatsCompletion, cobra.ShellCompDirectiveNoFileComp
	})
}

func evalMain(cmd *cobra.Command, args []string) error {
	source, _, err := getSource(cmd, args, false)
	if err != nil {
		return err
	}
	opts := getExprunOptions()
	p, err := exprun.Compile(source, opts...)
	if err != nil {
		return formatError(err)
	}
	return runProgram(cmd, p)
}

// runProgram evaluates p with the variables and output flags of cmd.
func runProgram(cmd *cobra.Command, p *exprun.Program) error {
	f := cmd.Flags()
	pairs, _ := f.GetStringArray("var")
	varsFile, _ := f.GetString("vars-file")
	vars, err := getVars(varsFile, pairs)
	if err != nil {
		return err
	}

	var opts []exprun.Option
	if trace, _ := f.GetBool("trace"); trace {
		opts = append(opts, exprun.WithObserver(newTracer(cmd.ErrOrStderr())))
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout, _ := f.GetDuration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := p.Run(ctx, vars, append(getExprunOptions(), opts...)...)
	if err != nil {
		return formatError(err)
	}
	dt := time.Since(start)

	if quiet, _ := f.GetBool("quiet"); !quiet {
		format, _ := f.GetString("output")
		if format == "" {
			format = viper.GetString("output")
		}
		output, err := getOutput(result, format)
		if err != nil {
			return err
		}
		if output != "" {
			fmt.Fprintln(cmd.OutOrStdout(), output)
		}
	}
	if timing, _ := f.GetBool("timing"); timing {
		fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", dt)
	}
	return nil
}
