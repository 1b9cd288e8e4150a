package deploy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/artpar/ebdeploy/internal/core/deployment"
	"github.com/artpar/ebdeploy/internal/core/domain"
)

// =============================================================================
// Recording Fakes
// =============================================================================

// recorder collects the collaborator calls of one test in order.
type recorder struct {
	calls []string
}

func (r *recorder) record(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

type fakeStore struct {
	rec *recorder

	bucketExists   bool
	bucketErr      error
	uploadErr      error
	visibleErr     error
	uploadedPaths  []string
	uploadedExists []bool
}

func (f *fakeStore) BucketExists(ctx context.Context, bucket string) (bool, error) {
	f.rec.record("exists %s", bucket)
	return f.bucketExists, f.bucketErr
}

func (f *fakeStore) CreateBucket(ctx context.Context, bucket string) error {
	f.rec.record("create %s", bucket)
	return nil
}

func (f *fakeStore) UploadFile(ctx context.Context, bucket, key, path string) error {
	f.rec.record("put %s %s", bucket, key)
	f.uploadedPaths = append(f.uploadedPaths, path)
	_, statErr := os.Stat(path)
	f.uploadedExists = append(f.uploadedExists, statErr == nil)
	return f.uploadErr
}

func (f *fakeStore) WaitVisible(ctx context.Context, bucket, key string) error {
	f.rec.record("confirmVisible %s %s", bucket, key)
	return f.visibleErr
}

type fakeRegistry struct {
	rec *recorder

	exists       bool
	existsErr    error
	createErr    error
	confirmAs    string
	descriptions []string
}

func (f *fakeRegistry) VersionExists(ctx context.Context, application, label string) (bool, error) {
	f.rec.record("versionExists %s %s", application, label)
	return f.exists, f.existsErr
}

func (f *fakeRegistry) CreateVersion(ctx context.Context, application, label, description string, artifact domain.ArtifactRef) (string, error) {
	f.rec.record("register %s %s %s", application, label, artifact)
	f.descriptions = append(f.descriptions, description)
	if f.createErr != nil {
		return "", f.createErr
	}
	if f.confirmAs != "" {
		return f.confirmAs, nil
	}
	return label, nil
}

type fakeEnvironments struct {
	rec *recorder

	activateErr error
	statuses    []domain.EnvironmentStatus
	events      [][]domain.EventRecord
	polls       int
	since       []time.Time
}

func (f *fakeEnvironments) Activate(ctx context.Context, environment, label string) error {
	f.rec.record("activate %s %s", environment, label)
	return f.activateErr
}

func (f *fakeEnvironments) Status(ctx context.Context, application, environment string) (domain.EnvironmentStatus, error) {
	if len(f.statuses) == 0 {
		return domain.StatusReady, nil
	}
	i := min(f.polls, len(f.statuses)-1)
	return f.statuses[i], nil
}

func (f *fakeEnvironments) Events(ctx context.Context, application, environment string, since time.Time) ([]domain.EventRecord, error) {
	f.since = append(f.since, since)
	defer func() { f.polls++ }()
	if len(f.events) == 0 {
		return nil, nil
	}
	return f.events[min(f.polls, len(f.events)-1)], nil
}

type fakeLocator struct {
	rec *recorder

	bucket string
	err    error
}

func (f *fakeLocator) StorageLocation(ctx context.Context) (string, error) {
	f.rec.record("storageLocation")
	return f.bucket, f.err
}

type fakeSource struct {
	rec *recorder

	revision   string
	message    string
	revErr     error
	archiveErr error
}

func (f *fakeSource) CurrentRevision(ctx context.Context) (string, error) {
	f.rec.record("revision")
	return f.revision, f.revErr
}

func (f *fakeSource) CommitMessage(ctx context.Context, revision string) (string, error) {
	f.rec.record("commitMessage %s", revision)
	return f.message, nil
}

func (f *fakeSource) Archive(ctx context.Context, dest string) (string, error) {
	f.rec.record("archive %s", filepath.Base(dest))
	if f.archiveErr != nil {
		return "", f.archiveErr
	}
	if err := os.WriteFile(dest, []byte("PK"), 0o644); err != nil {
		return "", err
	}
	return filepath.Abs(dest)
}

type recordingObserver struct {
	steps    []deployment.Step
	events   []domain.EventRecord
	outcomes []domain.Result
}

func (o *recordingObserver) Step(step deployment.Step, detail string) {
	o.steps = append(o.steps, step)
}

func (o *recordingObserver) Event(event domain.EventRecord) {
	o.events = append(o.events, event)
}

func (o *recordingObserver) Outcome(result domain.Result) {
	o.outcomes = append(o.outcomes, result)
}
