package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/elasticbeanstalk"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// AWSProvider holds the resolved AWS configuration and hands out service clients.
type AWSProvider struct {
	cfg         aws.Config
	endpointURL string
	logger      *slog.Logger
}

// NewAWSProvider loads AWS configuration for the given options.
func NewAWSProvider(ctx context.Context, opts Options, logger *slog.Logger) (*AWSProvider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := opts.Credentials.Validate(); err != nil {
		return nil, err
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOptions(opts)...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}

	p := &AWSProvider{
		cfg:         cfg,
		endpointURL: opts.EndpointURL,
		logger:      logger.With("provider", "aws"),
	}

	p.logger.Debug("AWS configuration loaded",
		"region", cfg.Region,
		"static_credentials", opts.Credentials.IsStatic(),
		"endpoint_url", opts.EndpointURL,
	)

	return p, nil
}

func loadOptions(opts Options) []func(*config.LoadOptions) error {
	var fns []func(*config.LoadOptions) error

	if opts.Region != "" {
		fns = append(fns, config.WithRegion(opts.Region))
	}

	if opts.Credentials.IsStatic() {
		fns = append(fns, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.Credentials.AccessKeyID,
			opts.Credentials.SecretAccessKey,
			opts.Credentials.SessionToken,
		)))
	}

	if opts.EndpointURL != "" {
		fns = append(fns, config.WithBaseEndpoint(opts.EndpointURL))
	}

	if opts.MaxAttempts > 0 {
		fns = append(fns, config.WithRetryMaxAttempts(opts.MaxAttempts))
	}

	return fns
}

// Region returns the resolved region.
func (p *AWSProvider) Region() string {
	return p.cfg.Region
}

// Config returns a copy of the resolved AWS configuration.
func (p *AWSProvider) Config() aws.Config {
	return p.cfg.Copy()
}

// S3 returns an S3 client. Custom endpoints use path-style addressing.
func (p *AWSProvider) S3() *s3.Client {
	return s3.NewFromConfig(p.cfg, func(o *s3.Options) {
		if p.endpointURL != "" {
			o.UsePathStyle = true
		}
	})
}

// Beanstalk returns an Elastic Beanstalk client.
func (p *AWSProvider) Beanstalk() *elasticbeanstalk.Client {
	return elasticbeanstalk.NewFromConfig(p.cfg)
}
