package main

import (
	"os"

	"github.com/spf13/cobra"

	exprun "github.com/jcormont/expression-runner"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Evaluate compiled IR",
		Long: `Evaluate a program compiled with "exprun compile". Files with a .cbor
extension are read as CBOR, anything else as JSON.`,
		Example: `  exprun run rule.ir.json --var price=10 --var qty=3`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProgram(args[0])
			if err != nil {
				return formatError(err)
			}
			return runProgram(cmd, p)
		},
	}
	addRunFlags(cmd)
	return cmd
}

func loadProgram(file string) (*exprun.Program, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	opts := append(getExprunOptions(), exprun.WithFilename(file))
	if isCBORFile(file) {
		return exprun.LoadCBOR(data, opts...)
	}
	return exprun.Load(data, opts...)
}
