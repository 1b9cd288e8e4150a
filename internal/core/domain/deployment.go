// Package domain contains the core deploy types: requests, events and outcomes.
// This is part of the Functional Core - all functions are pure with no I/O.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// Deployment Errors
// =============================================================================

var (
	ErrInvalidRequest    = errors.New("invalid deployment request")
	ErrMalformedResponse = errors.New("malformed platform response")
	ErrDeploymentFailed  = errors.New("deployment failed")
	ErrReadinessTimeout  = errors.New("environment did not become ready in time")
)

// DeploymentFailedError is returned when the environment converged but
// error-severity events were observed during the deploy window.
type DeploymentFailedError struct {
	Messages []string
}

func (e *DeploymentFailedError) Error() string {
	if len(e.Messages) == 1 {
		return fmt.Sprintf("%s: 1 error event: %s", ErrDeploymentFailed, e.Messages[0])
	}
	return fmt.Sprintf("%s: %d error events", ErrDeploymentFailed, len(e.Messages))
}

func (e *DeploymentFailedError) Unwrap() error {
	return ErrDeploymentFailed
}

// =============================================================================
// Deployment Request
// =============================================================================

// DeploymentRequest is the immutable input of one orchestrated deploy.
// Empty VersionLabel, VersionDescription and Bucket are resolved lazily by
// the deploy session.
type DeploymentRequest struct {
	ApplicationName    string
	EnvironmentName    string
	VersionLabel       string
	VersionDescription string

	// ArtifactPath is a pre-built zip. When empty the source tree is archived.
	ArtifactPath string

	Bucket     string
	BucketPath string

	ReuseExistingVersion bool
	PublishOnly          bool
	SkipReadinessWait    bool
	SkipCleanup          bool
}

// Validate checks the request carries the identifiers the workflow needs.
func (r DeploymentRequest) Validate() error {
	if r.ApplicationName == "" {
		return fmt.Errorf("%w: application name is required", ErrInvalidRequest)
	}
	if r.EnvironmentName == "" && !r.PublishOnly {
		return fmt.Errorf("%w: environment name is required unless only publishing a version", ErrInvalidRequest)
	}
	return nil
}

// ArtifactRef locates an uploaded artifact in the object store.
type ArtifactRef struct {
	Bucket string `yaml:"bucket"`
	Key    string `yaml:"key"`
}

func (a ArtifactRef) String() string {
	return fmt.Sprintf("s3://%s/%s", a.Bucket, a.Key)
}

// =============================================================================
// Outcome
// =============================================================================

type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailed  OutcomeStatus = "failed"
)

// Outcome is the terminal value of a deploy attempt.
type Outcome struct {
	Status OutcomeStatus
	Reason string
	// Errors holds the messages of every ERROR-class event seen while polling.
	Errors []string
}

// Success returns a successful outcome.
func Success() Outcome {
	return Outcome{Status: OutcomeSuccess}
}

// Failed returns a failed outcome carrying the accumulated error messages.
func Failed(reason string, errorMessages []string) Outcome {
	return Outcome{Status: OutcomeFailed, Reason: reason, Errors: errorMessages}
}

// Succeeded reports whether the outcome is a success.
func (o Outcome) Succeeded() bool {
	return o.Status == OutcomeSuccess
}

// Err converts a failed outcome into an error. Successful outcomes return nil.
func (o Outcome) Err() error {
	if o.Succeeded() {
		return nil
	}
	if len(o.Errors) > 0 {
		return &DeploymentFailedError{Messages: o.Errors}
	}
	if o.Reason != "" {
		return fmt.Errorf("%w: %s", ErrDeploymentFailed, o.Reason)
	}
	return ErrDeploymentFailed
}

// Result describes what a deploy did, alongside its outcome.
type Result struct {
	DeployID        string
	ApplicationName string
	EnvironmentName string
	VersionLabel    string
	Reused          bool
	Activated       bool
	Confirmed       bool
	Outcome         Outcome

	// Artifact is nil when an existing version was reused.
	Artifact *ArtifactRef

	StartedAt  time.Time
	FinishedAt time.Time
}
