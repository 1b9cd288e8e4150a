package deploy

import (
	"context"
	"fmt"
	"time"

	"github.com/artpar/ebdeploy/internal/core/deployment"
	"github.com/artpar/ebdeploy/internal/core/domain"
)

// =============================================================================
// Session
// =============================================================================

// Session holds the values of one deploy that are derived on first use and
// stay fixed afterwards. A Session is confined to a single deploy and is not
// safe for concurrent use.
type Session struct {
	request  domain.DeploymentRequest
	source   SourceInfo
	locator  StorageLocator
	revision string
	now      func() time.Time

	resolvedRevision    bool
	resolvedMessage     bool
	resolvedLabel       bool
	resolvedDescription bool
	resolvedBucket      bool

	message     string
	label       string
	description string
	bucket      string
}

// NewSession creates a session for req. revision, when non-empty, is used
// instead of asking source for the current revision.
func NewSession(req domain.DeploymentRequest, source SourceInfo, locator StorageLocator, revision string, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{
		request:  req,
		source:   source,
		locator:  locator,
		revision: revision,
		now:      now,
	}
}

// Request returns the request the session was created for.
func (s *Session) Request() domain.DeploymentRequest {
	return s.request
}

// Revision returns the source revision the deploy is built from.
func (s *Session) Revision(ctx context.Context) (string, error) {
	if s.resolvedRevision {
		return s.revision, nil
	}
	if s.revision == "" {
		if s.source == nil {
			return "", fmt.Errorf("current revision: %w", ErrNoSource)
		}
		rev, err := s.source.CurrentRevision(ctx)
		if err != nil {
			return "", fmt.Errorf("current revision: %w", err)
		}
		s.revision = rev
	}
	s.resolvedRevision = true
	return s.revision, nil
}

// CommitMessage returns the message of the revision's commit.
func (s *Session) CommitMessage(ctx context.Context) (string, error) {
	if s.resolvedMessage {
		return s.message, nil
	}
	rev, err := s.Revision(ctx)
	if err != nil {
		return "", err
	}
	if s.source == nil {
		return "", fmt.Errorf("commit message: %w", ErrNoSource)
	}
	msg, err := s.source.CommitMessage(ctx, rev)
	if err != nil {
		return "", fmt.Errorf("commit message of %s: %w", rev, err)
	}
	s.message = msg
	s.resolvedMessage = true
	return s.message, nil
}

// VersionLabel returns the requested label, or sha-{revision}-{unixMillis}
// computed once from the revision and the clock.
func (s *Session) VersionLabel(ctx context.Context) (string, error) {
	if s.resolvedLabel {
		return s.label, nil
	}
	label := s.request.VersionLabel
	if label == "" {
		rev, err := s.Revision(ctx)
		if err != nil {
			return "", err
		}
		label = deployment.DefaultVersionLabel(rev, s.now())
	}
	s.label = label
	s.resolvedLabel = true
	return s.label, nil
}

// Description returns the requested description, or the commit message.
// The value is not truncated here.
func (s *Session) Description(ctx context.Context) (string, error) {
	if s.resolvedDescription {
		return s.description, nil
	}
	desc := s.request.VersionDescription
	if desc == "" {
		msg, err := s.CommitMessage(ctx)
		if err != nil {
			return "", err
		}
		desc = msg
	}
	s.description = desc
	s.resolvedDescription = true
	return s.description, nil
}

// Bucket returns the requested bucket, or the platform's default storage
// location. The locator is consulted at most once.
func (s *Session) Bucket(ctx context.Context) (string, error) {
	if s.resolvedBucket {
		return s.bucket, nil
	}
	bucket := s.request.Bucket
	if bucket == "" {
		if s.locator == nil {
			return "", fmt.Errorf("%w: no bucket given and no storage locator configured", domain.ErrInvalidRequest)
		}
		loc, err := s.locator.StorageLocation(ctx)
		if err != nil {
			return "", fmt.Errorf("storage location: %w", err)
		}
		bucket = loc
	}
	s.bucket = bucket
	s.resolvedBucket = true
	return s.bucket, nil
}
