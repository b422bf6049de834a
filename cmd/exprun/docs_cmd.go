package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	exprun "github.com/jcormont/expression-runner"
	"github.com/jcormont/expression-runner/builtins"
	"github.com/jcormont/expression-runner/object"
)

var (
	docTitle = color.New(color.Bold).SprintFunc()
	docName  = color.New(color.FgCyan).SprintFunc()
	docMuted = color.New(color.FgHiBlack).SprintFunc()
)

func newDocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "docs [topic]",
		Aliases: []string{"doc", "d"},
		Short:   "Show language documentation",
		Long: `Show documentation for the expression language. A topic is a function
("sortBy"), a type ("string"), a method ("string.split") or one of the
categories builtins, types, syntax and errors.`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			topics := []string{"builtins", "types", "syntax", "errors"}
			for _, spec := range builtins.Docs() {
				topics = append(topics, spec.Name)
			}
			return topics, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("output")
			topic := ""
			if len(args) > 0 {
				topic = args[0]
			}
			var docs *exprun.Documentation
			switch topic {
			case "":
				docs = exprun.Docs()
			case "builtins", "types", "syntax", "errors":
				docs = exprun.Docs(exprun.DocsCategory(topic))
			default:
				docs = exprun.Docs(exprun.DocsTopic(topic))
			}
			if format == "json" {
				data, err := getOutputJSON(docs.Data())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			return printDocs(cmd.OutOrStdout(), topic, docs.Data())
		},
	}
	cmd.Flags().StringP("output", "o", "", "output format (json, text)")
	return cmd
}

func printDocs(w io.Writer, topic string, data any) error {
	switch v := data.(type) {
	case object.FuncSpec:
		printFunc(w, v)
		return nil
	case object.AttrSpec:
		fmt.Fprintf(w, "%s\n  %s\n", docName(topic), v.Doc)
		return nil
	case map[string]any:
		if msg, ok := v["error"].(string); ok {
			return fmt.Errorf("%s", msg)
		}
		if fns, ok := v["functions"].([]object.FuncSpec); ok {
			fmt.Fprintln(w, docTitle("Functions"))
			for _, fn := range fns {
				fmt.Fprintf(w, "  %-22s %s\n", docName(signature(fn)), fn.Doc)
			}
			return nil
		}
	}
	// Types, syntax and errors are nested structures; JSON reads well enough.
	out, err := getOutputJSON(data)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(out))
	return nil
}

func printFunc(w io.Writer, fn object.FuncSpec) {
	fmt.Fprintln(w, docName(signature(fn)))
	fmt.Fprintf(w, "  %s\n", fn.Doc)
	if fn.Returns != "" {
		fmt.Fprintf(w, "  %s %s\n", docMuted("returns"), fn.Returns)
	}
	if fn.Example != "" {
		fmt.Fprintf(w, "  %s %s\n", docMuted("example"), fn.Example)
	}
}

func signature(fn object.FuncSpec) string {
	return fmt.Sprintf("%s(%s)", fn.Name, strings.Join(fn.Args, ", "))
}
