package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	exprun "github.com/jcormont/expression-runner"
)

// Returns options for compiling and evaluating based on the global flags
// and config file.
func getExprunOptions() []exprun.Option {
	opts := []exprun.Option{exprun.WithLogger(getLogger())}
	if viper.GetBool("allow-assignment") {
		opts = append(opts, exprun.WithAssignment())
	}
	if viper.GetBool("allow-statements") {
		opts = append(opts, exprun.WithStatements())
	}
	if viper.GetBool("no-builtins") {
		opts = append(opts, exprun.WithoutBuiltins())
	}
	if depth := viper.GetInt("max-depth"); depth > 0 {
		opts = append(opts, exprun.WithMaxFrameDepth(depth))
	}
	return opts
}

func getLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.WarnLevel
	}
	w := zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: viper.GetBool("no-color") || !isTerminal(os.Stderr),
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// getVars merges variables from a JSON or YAML file with name=value pairs
// given on the command line. Values that parse as JSON are used as such,
// anything else is a string.
func getVars(file string, pairs []string) (map[string]any, error) {
	vars := map[string]any{}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(filepath.Ext(file)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, &vars)
		default:
			err = json.Unmarshal(data, &vars)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
	}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid variable %q (expected name=value)", pair)
		}
		var v any
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			v = value
		}
		vars[name] = v
	}
	return vars, nil
}
