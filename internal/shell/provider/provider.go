// Package provider builds the cloud configuration shared by the platform clients.
// This is part of the Imperative Shell - handles I/O with cloud APIs.
package provider

import "errors"

// DefaultRegion is used when neither flags, config nor environment name a region.
const DefaultRegion = "eu-central-1"

var (
	// ErrPartialCredentials is returned when only one half of a static key pair is set.
	ErrPartialCredentials = errors.New("access key id and secret access key must be set together")
)

// Credentials holds an optional static key pair. When empty the default
// credential chain (environment, shared config, instance role) is used.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// IsStatic reports whether a complete static key pair is present.
func (c Credentials) IsStatic() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// Validate rejects half-configured key pairs.
func (c Credentials) Validate() error {
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return ErrPartialCredentials
	}
	return nil
}

// Options configures the AWS provider.
type Options struct {
	Region      string
	Credentials Credentials

	// EndpointURL overrides every service endpoint, e.g. for LocalStack.
	EndpointURL string

	// MaxAttempts bounds SDK-level retries per API call. Zero keeps the SDK default.
	MaxAttempts int
}
