package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	exprun "github.com/jcormont/expression-runner"
	"github.com/jcormont/expression-runner/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP evaluation API",
		Long: `Serve expression compilation and evaluation over HTTP:

  GET  /healthz
  GET  /v1/functions
  POST /v1/compile   {"expression": "..."}
  POST /v1/eval      {"expression": "...", "vars": {...}}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			var evalOpts []exprun.Option
			if viper.GetBool("no-builtins") {
				evalOpts = append(evalOpts, exprun.WithoutBuiltins())
			}
			if depth := viper.GetInt("max-depth"); depth > 0 {
				evalOpts = append(evalOpts, exprun.WithMaxFrameDepth(depth))
			}
			logger := getLogger()
			srv := server.New(
				server.WithLogger(logger),
				server.WithEvalOptions(evalOpts...),
				server.WithTimeout(viper.GetDuration("timeout")),
				server.WithMaxBodyBytes(viper.GetInt64("max-body")),
				server.WithCacheSize(viper.GetInt("cache-size")),
			)
			return srv.ListenAndServe(ctx, viper.GetString("addr"))
		},
	}
	f := cmd.Flags()
	f.String("addr", ":8080", "address to listen on")
	f.Duration("timeout", server.DefaultTimeout, "maximum duration of an evaluation")
	f.Int64("max-body", server.DefaultMaxBodyBytes, "maximum request body size in bytes")
	f.Int("cache-size", server.DefaultCacheSize, "number of compiled expressions to cache")
	for _, name := range []string{"addr", "timeout", "max-body", "cache-size"} {
		_ = viper.BindPFlag(name, f.Lookup(name))
	}
	return cmd
}
