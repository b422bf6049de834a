package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func fatal(msg interface{}) {
	var s string
	switch msg := msg.(type) {
	case string:
		s = msg
	case error:
		s = msg.Error()
	default:
		s = fmt.Sprintf("%v", msg)
	}
	fmt.Fprintf(os.Stderr, "%s\n", red(s))
	os.Exit(1)
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func isTerminalIO() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

func shouldRunRepl(cmd *cobra.Command, args []string) bool {
	if len(args) > 0 {
		return false
	}
	if f := cmd.Flags().Lookup("code"); f != nil && f.Changed {
		return false
	}
	if stdin, _ := cmd.Flags().GetBool("stdin"); stdin {
		return false
	}
	return isTerminalIO()
}

// getSource determines the source to compile. There are three
// possibilities:
//  1. --code <source>
//  2. --stdin, or stdin when it is not a terminal
//  3. the source as args[0], or a file path when fromFile is set
//
// The returned filename is empty unless the source was read from a file.
func getSource(cmd *cobra.Command, args []string, fromFile bool) (source, filename string, err error) {
	var codeFlagSet bool
	if f := cmd.Flags().Lookup("code"); f != nil && f.Changed {
		codeFlagSet = true
	}
	stdinFlagSet, _ := cmd.Flags().GetBool("stdin")
	argSupplied := len(args) > 0
	count := 0
	for _, set := range []bool{codeFlagSet, stdinFlagSet, argSupplied} {
		if set {
			count++
		}
	}
	if count > 1 {
		return "", "", errors.New("multiple input sources specified")
	}
	switch {
	case codeFlagSet:
		code, _ := cmd.Flags().GetString("code")
		return code, "", nil
	case argSupplied && fromFile:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", err
		}
		return string(data), args[0], nil
	case argSupplied:
		return args[0], "", nil
	case stdinFlagSet || !isTerminal(os.Stdin):
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", err
		}
		return string(data), "", nil
	}
	return "", "", errors.New("no expression provided")
}
