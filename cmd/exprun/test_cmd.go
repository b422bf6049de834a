package main

import (
	"errors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jcormont/expression-runner/ruletest"
)

func newTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test [path...]",
		Short: "Run expression test files",
		Long: `Run the test cases in *_test.yaml files. Paths may be files, directories,
glob patterns, or directories ending in /... to search recursively.

  vars:
    rate: 0.2
  tests:
    - name: tax
      expression: "total * rate"
      vars: {total: 10}
      expect: 2
    - name: missing total
      expression: "total * rate"
      error: "Variable is not defined"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			run, _ := cmd.Flags().GetString("run")
			verbose, _ := cmd.Flags().GetBool("verbose")
			summary, err := ruletest.Run(cmd.Context(), &ruletest.Config{
				Patterns:   args,
				RunPattern: run,
				Options:    getExprunOptions(),
			})
			if err != nil {
				return err
			}
			out := ruletest.NewOutput(ruletest.OutputConfig{
				Writer:   cmd.OutOrStdout(),
				Verbose:  verbose,
				UseColor: !color.NoColor,
			})
			out.PrintResults(summary)
			if !summary.Success() {
				return errors.New("tests failed")
			}
			return nil
		},
	}
	cmd.Flags().String("run", "", "run only tests whose name matches this regular expression")
	cmd.Flags().BoolP("verbose", "v", false, "list every test")
	return cmd
}
