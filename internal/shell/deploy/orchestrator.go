package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/artpar/ebdeploy/internal/core/deployment"
	"github.com/artpar/ebdeploy/internal/core/domain"
	"github.com/artpar/ebdeploy/internal/core/validation"
	"github.com/artpar/ebdeploy/internal/shell/workers"
)

// =============================================================================
// Orchestrator
// =============================================================================

// Dependencies are the collaborators an Orchestrator drives. Locator and
// Source may be nil when every request names a bucket, a label, a
// description and an artifact path.
type Dependencies struct {
	Store        ArtifactStore
	Registry     VersionRegistry
	Environments EnvironmentController
	Locator      StorageLocator
	Source       SourceInfo
}

// Orchestrator sequences one deploy at a time. Per-deploy state lives in a
// Session, so one Orchestrator may run deploys back to back.
type Orchestrator struct {
	deps      Dependencies
	observer  Observer
	readiness workers.ReadinessConfig
	revision  string
	workDir   string
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver sets the observer notified of steps, events and the outcome.
func WithObserver(observer Observer) Option {
	return func(o *Orchestrator) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// WithReadinessConfig sets the poll interval and deadline of the readiness wait.
func WithReadinessConfig(config workers.ReadinessConfig) Option {
	return func(o *Orchestrator) {
		o.readiness = config
	}
}

// WithRevision pins the source revision used for default labels and
// descriptions instead of reading it from the repository.
func WithRevision(revision string) Option {
	return func(o *Orchestrator) {
		o.revision = revision
	}
}

// WithWorkDir sets the directory produced archives are written to.
func WithWorkDir(dir string) Option {
	return func(o *Orchestrator) {
		o.workDir = dir
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator replaces the deploy ID generator.
func WithIDGenerator(newID func() string) Option {
	return func(o *Orchestrator) {
		if newID != nil {
			o.newID = newID
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOrchestrator creates a new orchestrator.
func NewOrchestrator(deps Dependencies, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		deps:      deps,
		observer:  nopObserver{},
		readiness: workers.DefaultReadinessConfig(),
		workDir:   ".",
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With("component", "orchestrator")
	return o
}

// =============================================================================
// Deploy
// =============================================================================

// run is the mutable state of one Deploy call.
type run struct {
	session  *Session
	result   *domain.Result
	logger   *slog.Logger
	label    string
	artifact string
	produced bool
}

// Deploy publishes (or reuses) a version, activates it and waits for the
// environment to become ready, as the request asks.
//
// The returned Result is non-nil whenever the request was valid and records
// how far the deploy got. The error is nil only for a successful outcome.
// The first failing step aborts the deploy; its error is a *StepError.
// Failing to derive the version label aborts before any step runs.
// Error events observed while waiting produce a *domain.DeploymentFailedError.
func (o *Orchestrator) Deploy(ctx context.Context, req domain.DeploymentRequest) (*domain.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if field, msg := validation.ValidateRequestFields(req.ApplicationName, req.EnvironmentName, req.VersionLabel, req.Bucket); field != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRequest, msg)
	}

	started := o.now()
	r := &run{
		session: NewSession(req, o.deps.Source, o.deps.Locator, o.revision, o.now),
		result: &domain.Result{
			DeployID:        o.newID(),
			ApplicationName: req.ApplicationName,
			EnvironmentName: req.EnvironmentName,
			StartedAt:       started,
		},
	}
	r.logger = o.logger.With(
		"deploy_id", r.result.DeployID,
		"application", req.ApplicationName,
		"environment", req.EnvironmentName,
	)
	defer o.cleanup(r)

	outcome, err := o.execute(ctx, r, started)
	if err != nil {
		outcome = domain.Failed(err.Error(), nil)
	}

	r.result.Outcome = outcome
	r.result.FinishedAt = o.now()
	o.observer.Outcome(*r.result)

	if err == nil {
		err = outcome.Err()
	}

	if err != nil {
		r.logger.Error("deploy failed",
			"version_label", r.result.VersionLabel,
			"duration", r.result.FinishedAt.Sub(started),
			"error", err,
		)
	} else {
		r.logger.Info("deploy finished",
			"version_label", r.result.VersionLabel,
			"duration", r.result.FinishedAt.Sub(started),
		)
	}

	return r.result, err
}

func (o *Orchestrator) execute(ctx context.Context, r *run, started time.Time) (domain.Outcome, error) {
	req := r.session.Request()

	label, err := r.session.VersionLabel(ctx)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("resolve version label: %w", err)
	}
	if msg := validation.ValidateVersionLabel(label); msg != "" {
		return domain.Outcome{}, fmt.Errorf("resolve version label: %w: %s", domain.ErrInvalidRequest, msg)
	}
	r.label = label
	r.result.VersionLabel = label

	exists := false
	if req.ReuseExistingVersion {
		exists, err = o.deps.Registry.VersionExists(ctx, req.ApplicationName, label)
		if err != nil {
			return domain.Outcome{}, &StepError{Step: deployment.StepReuseVersion, Err: err}
		}
	}

	path := deployment.DeterminePublishPath(deployment.PathOptions{
		ReuseExistingVersion: req.ReuseExistingVersion,
		VersionExists:        exists,
		PublishOnly:          req.PublishOnly,
		// Without an environment there is nothing to watch.
		SkipReadinessWait: req.SkipReadinessWait || req.EnvironmentName == "",
	})
	r.logger.Debug("publish path determined", "steps", path.Steps, "reuse", path.ReuseVersion)

	outcome := domain.Success()
	for _, step := range path.Steps {
		if err := ctx.Err(); err != nil {
			return domain.Outcome{}, &StepError{Step: step, Err: err}
		}

		var stepErr error
		switch step {
		case deployment.StepReuseVersion:
			o.observer.Step(step, fmt.Sprintf("Application version '%s' already exists", label))
			r.result.Reused = true
		case deployment.StepEnsureBucket:
			stepErr = o.ensureBucket(ctx, r)
		case deployment.StepPrepareArtifact:
			stepErr = o.prepareArtifact(ctx, r)
		case deployment.StepUpload:
			stepErr = o.upload(ctx, r)
		case deployment.StepRegister:
			stepErr = o.register(ctx, r)
		case deployment.StepActivate:
			stepErr = o.activate(ctx, r)
		case deployment.StepAwaitReadiness:
			outcome, stepErr = o.awaitReadiness(ctx, r, started)
		}
		if stepErr != nil {
			return domain.Outcome{}, &StepError{Step: step, Err: stepErr}
		}
	}

	return outcome, nil
}

// =============================================================================
// Steps
// =============================================================================

func (o *Orchestrator) ensureBucket(ctx context.Context, r *run) error {
	bucket, err := r.session.Bucket(ctx)
	if err != nil {
		return err
	}

	exists, err := o.deps.Store.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		o.observer.Step(deployment.StepEnsureBucket, fmt.Sprintf("Using bucket %s", bucket))
		return nil
	}

	o.observer.Step(deployment.StepEnsureBucket, fmt.Sprintf("Creating bucket %s", bucket))
	return o.deps.Store.CreateBucket(ctx, bucket)
}

func (o *Orchestrator) prepareArtifact(ctx context.Context, r *run) error {
	req := r.session.Request()

	if req.ArtifactPath != "" {
		path, err := filepath.Abs(req.ArtifactPath)
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("artifact: %w", err)
		}
		r.artifact = path
		o.observer.Step(deployment.StepPrepareArtifact, fmt.Sprintf("Using artifact %s", path))
		return nil
	}

	if o.deps.Source == nil {
		return fmt.Errorf("archive source: %w", ErrNoSource)
	}

	dest := filepath.Join(o.workDir, deployment.ArchiveName(r.label))
	o.observer.Step(deployment.StepPrepareArtifact, fmt.Sprintf("Archiving source to %s", dest))

	path, err := o.deps.Source.Archive(ctx, dest)
	if err != nil {
		return err
	}
	r.artifact = path
	r.produced = true
	return nil
}

func (o *Orchestrator) upload(ctx context.Context, r *run) error {
	req := r.session.Request()

	bucket, err := r.session.Bucket(ctx)
	if err != nil {
		return err
	}

	ref := domain.ArtifactRef{
		Bucket: bucket,
		Key:    deployment.ObjectKey(req.BucketPath, req.ApplicationName, deployment.ArchiveName(r.label)),
	}
	o.observer.Step(deployment.StepUpload, fmt.Sprintf("Uploading %s", ref))

	if err := o.deps.Store.UploadFile(ctx, ref.Bucket, ref.Key, r.artifact); err != nil {
		return err
	}
	if err := o.deps.Store.WaitVisible(ctx, ref.Bucket, ref.Key); err != nil {
		return err
	}

	r.result.Artifact = &ref
	return nil
}

func (o *Orchestrator) register(ctx context.Context, r *run) error {
	req := r.session.Request()
	if r.result.Artifact == nil {
		return errors.New("no uploaded artifact to register")
	}

	desc, err := r.session.Description(ctx)
	if err != nil {
		return err
	}

	confirmed, err := o.deps.Registry.CreateVersion(ctx,
		req.ApplicationName,
		r.label,
		deployment.TruncateDescription(desc),
		*r.result.Artifact,
	)
	if err != nil {
		return err
	}

	r.label = confirmed
	r.result.VersionLabel = confirmed
	o.observer.Step(deployment.StepRegister, fmt.Sprintf("Created application version '%s'", confirmed))
	return nil
}

func (o *Orchestrator) activate(ctx context.Context, r *run) error {
	req := r.session.Request()

	o.observer.Step(deployment.StepActivate,
		fmt.Sprintf("Deploying version '%s' to environment %s", r.label, req.EnvironmentName))

	if err := o.deps.Environments.Activate(ctx, req.EnvironmentName, r.label); err != nil {
		return err
	}
	r.result.Activated = true
	return nil
}

func (o *Orchestrator) awaitReadiness(ctx context.Context, r *run, since time.Time) (domain.Outcome, error) {
	req := r.session.Request()

	o.observer.Step(deployment.StepAwaitReadiness,
		fmt.Sprintf("Waiting for environment %s to become ready", req.EnvironmentName))

	poller := workers.NewReadinessPoller(o.deps.Environments, o.observer, o.readiness, r.logger)
	outcome, err := poller.Wait(ctx, req.ApplicationName, req.EnvironmentName, since)
	if err != nil {
		return domain.Outcome{}, err
	}

	r.result.Confirmed = outcome.Succeeded()
	return outcome, nil
}

// cleanup removes an archive the deploy produced itself.
func (o *Orchestrator) cleanup(r *run) {
	if !r.produced || r.session.Request().SkipCleanup {
		return
	}
	if err := os.Remove(r.artifact); err != nil && !errors.Is(err, os.ErrNotExist) {
		r.logger.Warn("failed to remove archive", "path", r.artifact, "error", err)
		return
	}
	r.logger.Debug("removed archive", "path", r.artifact)
}
