package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var red = color.New(color.FgRed).SprintFunc()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	root := &cobra.Command{
		Use:   "exprun [expression]",
		Short: "Compile and evaluate sandboxed JavaScript-like expressions",
		Long: `Compile and evaluate sandboxed JavaScript-like expressions.

With no arguments on an interactive terminal, exprun starts a REPL.
Otherwise the expression given as an argument, with --code or on stdin
is evaluated and the result printed as JSON.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(configFile); err != nil {
				return err
			}
			processGlobalFlags()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if shouldRunRepl(cmd, args) {
				return runRepl(cmd.Context(), cmd.OutOrStdout())
			}
			return evalMain(cmd, args)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default $HOME/.exprun.yaml)")
	pf.Bool("allow-assignment", false, "allow assignment to variables and properties")
	pf.Bool("allow-statements", false, "allow multiple statements and if statements")
	pf.Bool("no-builtins", false, "do not register the default functions")
	pf.Bool("no-color", false, "disable colored output")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")
	pf.Int("max-depth", 0, "maximum arrow function call depth (0 for the default)")
	for _, name := range []string{"allow-assignment", "allow-statements", "no-builtins", "no-color", "log-level", "max-depth"} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}

	addEvalFlags(root)

	root.AddCommand(
		newEvalCmd(),
		newCompileCmd(),
		newRunCmd(),
		newCheckCmd(),
		newTestCmd(),
		newReplCmd(),
		newServeCmd(),
		newDocsCmd(),
	)
	return root
}

// initConfig reads the config file and environment. Flags that were set
// explicitly take precedence over both.
func initConfig(configFile string) error {
	viper.SetEnvPrefix("exprun")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return err
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".exprun")
		viper.SetConfigType("yaml")
	}
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && configFile == "" {
			return nil
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func processGlobalFlags() {
	if viper.GetBool("no-color") || !isTerminal(os.Stdout) {
		color.NoColor = true
	}
}
