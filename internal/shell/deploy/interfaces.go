// Package deploy runs the publish-and-activate workflow against the hosting
// platform. It sequences the artifact store, the version registry and the
// environment controller, and hands the activated environment to the
// readiness poller.
// This is part of the Imperative Shell - it performs every collaborator call.
package deploy

import (
	"context"
	"time"

	"github.com/artpar/ebdeploy/internal/core/deployment"
	"github.com/artpar/ebdeploy/internal/core/domain"
)

// =============================================================================
// Collaborators
// =============================================================================

// ArtifactStore holds deployment artifacts.
type ArtifactStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	CreateBucket(ctx context.Context, bucket string) error
	UploadFile(ctx context.Context, bucket, key, path string) error
	WaitVisible(ctx context.Context, bucket, key string) error
}

// VersionRegistry looks up and registers application versions.
type VersionRegistry interface {
	VersionExists(ctx context.Context, application, label string) (bool, error)
	CreateVersion(ctx context.Context, application, label, description string, artifact domain.ArtifactRef) (string, error)
}

// EnvironmentController activates versions and reports environment state.
type EnvironmentController interface {
	Activate(ctx context.Context, environment, label string) error
	Status(ctx context.Context, application, environment string) (domain.EnvironmentStatus, error)
	Events(ctx context.Context, application, environment string, since time.Time) ([]domain.EventRecord, error)
}

// StorageLocator provides the default bucket when the caller names none.
type StorageLocator interface {
	StorageLocation(ctx context.Context) (string, error)
}

// SourceInfo provides revision metadata and produces artifacts from source.
type SourceInfo interface {
	CurrentRevision(ctx context.Context) (string, error)
	CommitMessage(ctx context.Context, revision string) (string, error)
	Archive(ctx context.Context, dest string) (string, error)
}

// =============================================================================
// Observer
// =============================================================================

// Observer receives progress of a deploy as it happens.
type Observer interface {
	// Step is called when a workflow step begins.
	Step(step deployment.Step, detail string)
	// Event is called once per distinct platform event, oldest first.
	Event(event domain.EventRecord)
	// Outcome is called exactly once when the deploy ends.
	Outcome(result domain.Result)
}

// Observers fans every notification out to each observer in order.
type Observers []Observer

func (o Observers) Step(step deployment.Step, detail string) {
	for _, obs := range o {
		obs.Step(step, detail)
	}
}

func (o Observers) Event(event domain.EventRecord) {
	for _, obs := range o {
		obs.Event(event)
	}
}

func (o Observers) Outcome(result domain.Result) {
	for _, obs := range o {
		obs.Outcome(result)
	}
}

type nopObserver struct{}

func (nopObserver) Step(deployment.Step, string) {}
func (nopObserver) Event(domain.EventRecord)     {}
func (nopObserver) Outcome(domain.Result)        {}
