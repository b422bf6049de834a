package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	exprun "github.com/jcormont/expression-runner"
)

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [file]",
		Short: "Compile an expression to IR",
		Long: `Compile an expression to its JSON IR, which can be stored and later
evaluated with "exprun run" or Load without parsing the source again.`,
		Example: `  exprun compile -c 'price * qty'
  exprun compile rule.expr --out rule.ir.cbor`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, filename, err := getSource(cmd, args, true)
			if err != nil {
				return err
			}
			opts := getExprunOptions()
			if filename != "" {
				opts = append(opts, exprun.WithFilename(filename))
			}
			p, err := exprun.Compile(source, opts...)
			if err != nil {
				return formatError(err)
			}
			if fp, _ := cmd.Flags().GetBool("fingerprint"); fp {
				fmt.Fprintln(cmd.OutOrStdout(), p.Fingerprint())
				return nil
			}
			out, _ := cmd.Flags().GetString("out")
			return writeProgram(cmd, p, out)
		},
	}
	cmd.Flags().StringP("code", "c", "", "expression to compile")
	cmd.Flags().Bool("stdin", false, "read the expression from stdin")
	cmd.Flags().String("out", "", "write the IR to a file; a .cbor extension selects CBOR")
	cmd.Flags().Bool("fingerprint", false, "print the IR fingerprint only")
	return cmd
}

func writeProgram(cmd *cobra.Command, p *exprun.Program, out string) error {
	if out == "" {
		data, err := getOutputJSON(p.IR())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	var data []byte
	var err error
	if isCBORFile(out) {
		data, err = p.MarshalCBOR()
	} else {
		data, err = p.MarshalJSON()
	}
	if err != nil {
		return err
	}
	return os.WriteFile(out, data, 0o644)
}

func isCBORFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".cbor")
}
