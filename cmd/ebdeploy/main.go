// Package main provides the ebdeploy binary.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	var dErr *DeployError
	if errors.As(err, &dErr) {
		return dErr.ExitCode
	}

	// Flag parsing and usage errors.
	fmt.Fprintf(stderr, "error: %v\n", err)
	return ExitConfigError
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "ebdeploy",
		Short: "Deploy applications to AWS Elastic Beanstalk",
		Long: `ebdeploy uploads an application bundle to S3, registers it as a new
Elastic Beanstalk application version, points an environment at it and
waits until the environment is ready, failing if the environment reported
error events along the way.`,
		Version:       fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().NFlag() == 0 && os.Getenv(envName("application.name")) == "" {
				return cmd.Help()
			}
			return runDeploy(cmd.Context(), configPath, cmd.Flags(), stdout, stderr)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file")
	RegisterFlags(cmd.Flags())

	return cmd
}
