package beanstalk

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/elasticbeanstalk"
	"github.com/aws/aws-sdk-go-v2/service/elasticbeanstalk/types"

	"github.com/artpar/ebdeploy/internal/core/domain"
)

// Client talks to Elastic Beanstalk on behalf of the orchestrator.
type Client struct {
	api    API
	logger *slog.Logger
}

// NewClient creates a new platform client.
func NewClient(api API, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		api:    api,
		logger: logger.With("component", "beanstalk"),
	}
}

// =============================================================================
// Version Registry
// =============================================================================

// VersionExists reports whether the application already has the version label.
// A response without the version collection is malformed, not "absent".
func (c *Client) VersionExists(ctx context.Context, application, label string) (bool, error) {
	out, err := c.api.DescribeApplicationVersions(ctx, &elasticbeanstalk.DescribeApplicationVersionsInput{
		ApplicationName: aws.String(application),
		VersionLabels:   []string{label},
	})
	if err != nil {
		return false, NewPlatformError("DescribeApplicationVersions", application, err)
	}
	if out == nil || out.ApplicationVersions == nil {
		return false, NewPlatformError("DescribeApplicationVersions", application,
			fmt.Errorf("%w: missing ApplicationVersions", domain.ErrMalformedResponse))
	}

	return len(out.ApplicationVersions) > 0, nil
}

// CreateVersion registers a version pointing at an uploaded artifact and
// returns the label the platform confirmed. The application is never created
// implicitly.
func (c *Client) CreateVersion(ctx context.Context, application, label, description string, artifact domain.ArtifactRef) (string, error) {
	out, err := c.api.CreateApplicationVersion(ctx, &elasticbeanstalk.CreateApplicationVersionInput{
		ApplicationName: aws.String(application),
		VersionLabel:    aws.String(label),
		Description:     aws.String(description),
		SourceBundle: &types.S3Location{
			S3Bucket: aws.String(artifact.Bucket),
			S3Key:    aws.String(artifact.Key),
		},
		AutoCreateApplication: aws.Bool(false),
	})
	if err != nil {
		return "", NewPlatformError("CreateApplicationVersion", label, err)
	}
	if out == nil || out.ApplicationVersion == nil || aws.ToString(out.ApplicationVersion.VersionLabel) == "" {
		return "", NewPlatformError("CreateApplicationVersion", label,
			fmt.Errorf("%w: missing ApplicationVersion", domain.ErrMalformedResponse))
	}

	confirmed := aws.ToString(out.ApplicationVersion.VersionLabel)
	c.logger.Info("application version created",
		"application", application,
		"version_label", confirmed,
		"artifact", artifact.String(),
	)
	return confirmed, nil
}

// =============================================================================
// Environment Controller
// =============================================================================

// Activate points the environment at the version label.
func (c *Client) Activate(ctx context.Context, environment, label string) error {
	_, err := c.api.UpdateEnvironment(ctx, &elasticbeanstalk.UpdateEnvironmentInput{
		EnvironmentName: aws.String(environment),
		VersionLabel:    aws.String(label),
	})
	if err != nil {
		return NewPlatformError("UpdateEnvironment", environment, err)
	}

	c.logger.Info("environment update requested", "environment", environment, "version_label", label)
	return nil
}

// Status returns the environment's current status token.
func (c *Client) Status(ctx context.Context, application, environment string) (domain.EnvironmentStatus, error) {
	out, err := c.api.DescribeEnvironments(ctx, &elasticbeanstalk.DescribeEnvironmentsInput{
		ApplicationName:  aws.String(application),
		EnvironmentNames: []string{environment},
	})
	if err != nil {
		return "", NewPlatformError("DescribeEnvironments", environment, err)
	}
	if out == nil || len(out.Environments) == 0 {
		return "", NewPlatformError("DescribeEnvironments", environment,
			fmt.Errorf("%w: environment not listed", domain.ErrMalformedResponse))
	}

	return domain.EnvironmentStatus(out.Environments[0].Status), nil
}

// Events returns every event of the environment since the given time,
// newest-first as the platform delivers them. Paginated results are joined.
func (c *Client) Events(ctx context.Context, application, environment string, since time.Time) ([]domain.EventRecord, error) {
	var (
		records []domain.EventRecord
		token   *string
	)

	for {
		out, err := c.api.DescribeEvents(ctx, &elasticbeanstalk.DescribeEventsInput{
			ApplicationName: aws.String(application),
			EnvironmentName: aws.String(environment),
			StartTime:       aws.Time(since),
			NextToken:       token,
		})
		if err != nil {
			return nil, NewPlatformError("DescribeEvents", environment, err)
		}
		if out == nil {
			return nil, NewPlatformError("DescribeEvents", environment,
				fmt.Errorf("%w: empty response", domain.ErrMalformedResponse))
		}

		for _, e := range out.Events {
			records = append(records, toEventRecord(e))
		}

		if aws.ToString(out.NextToken) == "" {
			return records, nil
		}
		token = out.NextToken
	}
}

func toEventRecord(e types.EventDescription) domain.EventRecord {
	return domain.EventRecord{
		Time:     aws.ToTime(e.EventDate),
		Severity: domain.ParseSeverity(string(e.Severity)),
		Message:  aws.ToString(e.Message),
	}
}

// =============================================================================
// Storage Location
// =============================================================================

// StorageLocation returns the platform-managed bucket for application
// versions, creating it if the account does not have one yet.
func (c *Client) StorageLocation(ctx context.Context) (string, error) {
	out, err := c.api.CreateStorageLocation(ctx, &elasticbeanstalk.CreateStorageLocationInput{})
	if err != nil {
		return "", NewPlatformError("CreateStorageLocation", "", err)
	}
	if out == nil || aws.ToString(out.S3Bucket) == "" {
		return "", NewPlatformError("CreateStorageLocation", "",
			fmt.Errorf("%w: missing S3Bucket", domain.ErrMalformedResponse))
	}

	bucket := aws.ToString(out.S3Bucket)
	c.logger.Debug("resolved platform storage location", "bucket", bucket)
	return bucket, nil
}
