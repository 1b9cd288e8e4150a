// Package workers contains the polling workers that run during a deploy.
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/artpar/ebdeploy/internal/core/domain"
	"github.com/artpar/ebdeploy/internal/core/monitoring"
)

// EnvironmentMonitor is the read side of the platform consumed by the poller.
type EnvironmentMonitor interface {
	Status(ctx context.Context, application, environment string) (domain.EnvironmentStatus, error)
	Events(ctx context.Context, application, environment string, since time.Time) ([]domain.EventRecord, error)
}

// EventObserver receives each distinct event as soon as it is first seen.
type EventObserver interface {
	Event(domain.EventRecord)
}

// ReadinessConfig configures the readiness poller.
type ReadinessConfig struct {
	// Interval is the pause between polling iterations.
	// Default: 5 seconds.
	Interval time.Duration

	// Timeout bounds the whole wait. Zero means wait until the environment
	// is terminal or the context is cancelled.
	Timeout time.Duration
}

// DefaultReadinessConfig returns the default configuration.
func DefaultReadinessConfig() ReadinessConfig {
	return ReadinessConfig{
		Interval: 5 * time.Second,
	}
}

// ReadinessPoller waits for an environment to reach terminal status while
// streaming its event log.
type ReadinessPoller struct {
	monitor  EnvironmentMonitor
	observer EventObserver
	config   ReadinessConfig
	logger   *slog.Logger
}

// NewReadinessPoller creates a new readiness poller. observer may be nil.
func NewReadinessPoller(
	monitor EnvironmentMonitor,
	observer EventObserver,
	config ReadinessConfig,
	logger *slog.Logger,
) *ReadinessPoller {
	if config.Interval <= 0 {
		config.Interval = 5 * time.Second
	}
	if config.Timeout < 0 {
		config.Timeout = 0
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ReadinessPoller{
		monitor:  monitor,
		observer: observer,
		config:   config,
		logger:   logger.With("component", "readiness_poller"),
	}
}

// Wait polls until the environment is terminal and returns the verdict.
// Every event query uses the same lower bound so the tracker sees the full
// log of this deploy on each iteration.
//
// A non-nil error means the wait itself could not complete: a collaborator
// failed, ctx was cancelled, or the configured timeout elapsed
// (ErrReadinessTimeout). Error events observed before a terminal status
// produce a failed outcome with a nil error.
func (p *ReadinessPoller) Wait(ctx context.Context, application, environment string, since time.Time) (domain.Outcome, error) {
	logger := p.logger.With("application", application, "environment", environment)

	var deadline <-chan time.Time
	if p.config.Timeout > 0 {
		timer := time.NewTimer(p.config.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	var tracker monitoring.EventTracker
	iteration := 0

	for {
		iteration++

		status, err := p.monitor.Status(ctx, application, environment)
		if err != nil {
			return domain.Outcome{}, fmt.Errorf("describe environment: %w", err)
		}

		events, err := p.monitor.Events(ctx, application, environment, since)
		if err != nil {
			return domain.Outcome{}, fmt.Errorf("describe events: %w", err)
		}

		for _, e := range tracker.Observe(events) {
			if p.observer != nil {
				p.observer.Event(e)
			}
		}

		logger.Debug("readiness poll",
			"iteration", iteration,
			"status", status,
			"events_seen", len(tracker.Seen()),
			"error_events", tracker.ErrorCount(),
		)

		if status.IsTerminal() {
			outcome := tracker.Verdict()
			logger.Info("environment reached terminal status",
				"status", status,
				"iterations", iteration,
				"outcome", outcome.Status,
			)
			return outcome, nil
		}

		wait := time.NewTimer(p.config.Interval)
		select {
		case <-ctx.Done():
			wait.Stop()
			return domain.Outcome{}, ctx.Err()
		case <-deadline:
			wait.Stop()
			logger.Warn("readiness wait timed out",
				"timeout", p.config.Timeout,
				"last_status", status,
			)
			return domain.Outcome{}, &TimeoutError{
				Timeout:    p.config.Timeout,
				LastStatus: status,
			}
		case <-wait.C:
		}
	}
}

// TimeoutError reports that the environment did not become terminal in time.
type TimeoutError struct {
	Timeout    time.Duration
	LastStatus domain.EnvironmentStatus
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: environment still %q after %s", domain.ErrReadinessTimeout, e.LastStatus, e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return domain.ErrReadinessTimeout
}

// IsTimeout reports whether err was caused by the readiness deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, domain.ErrReadinessTimeout)
}
