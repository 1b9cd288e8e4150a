package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/artpar/ebdeploy/internal/core/domain"
	"github.com/artpar/ebdeploy/internal/shell/beanstalk"
	"github.com/artpar/ebdeploy/internal/shell/console"
	"github.com/artpar/ebdeploy/internal/shell/deploy"
	"github.com/artpar/ebdeploy/internal/shell/provider"
	"github.com/artpar/ebdeploy/internal/shell/report"
	"github.com/artpar/ebdeploy/internal/shell/source"
	"github.com/artpar/ebdeploy/internal/shell/storage"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess       = 0
	ExitConfigError   = 1
	ExitPlatformError = 2
	ExitDeployFailed  = 3
)

// =============================================================================
// Deploy Command
// =============================================================================

func runDeploy(ctx context.Context, configPath string, flags *pflag.FlagSet, stdout, stderr io.Writer) error {
	cfg, err := LoadConfig(configPath, flags)
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return &DeployError{Op: "load config", Err: err, ExitCode: ExitConfigError}
	}

	logger := SetupLogger(cfg, stderr)

	req := cfg.Request()
	if err := req.Validate(); err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return &DeployError{Op: "validate request", Err: err, ExitCode: ExitConfigError}
	}

	cloud, err := provider.NewAWSProvider(ctx, cfg.ProviderOptions(), logger)
	if err != nil {
		code := ExitPlatformError
		if errors.Is(err, provider.ErrPartialCredentials) {
			code = ExitConfigError
		}
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return &DeployError{Op: "configure aws", Err: err, ExitCode: code}
	}

	eb := beanstalk.NewClient(cloud.Beanstalk(), logger)
	printer := console.NewPrinter(stdout, stderr)
	observers := deploy.Observers{printer}

	var rep *report.Writer
	if cfg.Report.File != "" {
		rep = report.NewWriter(cfg.Report.File)
		observers = append(observers, rep)
	}

	orchestrator := deploy.NewOrchestrator(
		deploy.Dependencies{
			Store:        storage.NewClient(cloud.S3(), cfg.StorageConfig(cloud.Region()), logger),
			Registry:     eb,
			Environments: eb,
			Locator:      eb,
			Source:       source.New(cfg.Artifact.SourceDir, logger),
		},
		deploy.WithObserver(observers),
		deploy.WithReadinessConfig(cfg.ReadinessConfig()),
		deploy.WithRevision(cfg.Artifact.GitSHA),
		deploy.WithLogger(logger),
	)

	logger.Debug("starting deploy",
		"version", Version,
		"application", req.ApplicationName,
		"environment", req.EnvironmentName,
		"region", cloud.Region(),
	)
	printer.Start(req.ApplicationName)

	result, err := orchestrator.Deploy(ctx, req)

	if rep != nil {
		if werr := rep.Close(); werr != nil {
			logger.Warn("failed to write deploy report", "path", cfg.Report.File, "error", werr)
		}
	}

	if err != nil {
		// Rejected before any step ran, so no outcome was printed.
		if result == nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return &DeployError{Op: "deploy", Err: err, ExitCode: exitCode(err)}
	}
	return nil
}

// exitCode classifies a deploy error.
func exitCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrDeploymentFailed), errors.Is(err, domain.ErrReadinessTimeout):
		return ExitDeployFailed
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, deploy.ErrNoSource):
		return ExitConfigError
	default:
		return ExitPlatformError
	}
}

// =============================================================================
// Deploy Error
// =============================================================================

// DeployError represents a failed run and the exit code it maps to.
type DeployError struct {
	Op       string
	Err      error
	ExitCode int
}

func (e *DeployError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *DeployError) Unwrap() error {
	return e.Err
}
