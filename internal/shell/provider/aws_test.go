package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentials_Validate(t *testing.T) {
	tests := []struct {
		name    string
		creds   Credentials
		wantErr bool
	}{
		{"empty uses default chain", Credentials{}, false},
		{"complete pair", Credentials{AccessKeyID: "AKID", SecretAccessKey: "secret"}, false},
		{"pair with session token", Credentials{AccessKeyID: "AKID", SecretAccessKey: "secret", SessionToken: "token"}, false},
		{"missing secret", Credentials{AccessKeyID: "AKID"}, true},
		{"missing key id", Credentials{SecretAccessKey: "secret"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrPartialCredentials)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCredentials_IsStatic(t *testing.T) {
	assert.False(t, Credentials{}.IsStatic())
	assert.False(t, Credentials{AccessKeyID: "AKID"}.IsStatic())
	assert.True(t, Credentials{AccessKeyID: "AKID", SecretAccessKey: "secret"}.IsStatic())
}

func TestLoadOptions(t *testing.T) {
	assert.Empty(t, loadOptions(Options{}))

	opts := loadOptions(Options{
		Region:      "us-west-2",
		Credentials: Credentials{AccessKeyID: "AKID", SecretAccessKey: "secret"},
		EndpointURL: "http://localhost:4566",
		MaxAttempts: 5,
	})
	assert.Len(t, opts, 4)
}

func TestNewAWSProvider_StaticCredentials(t *testing.T) {
	ctx := context.Background()

	p, err := NewAWSProvider(ctx, Options{
		Region: "eu-west-1",
		Credentials: Credentials{
			AccessKeyID:     "AKIDEXAMPLE",
			SecretAccessKey: "wJalrXUtnFEMI",
			SessionToken:    "session",
		},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", p.Region())

	creds, err := p.Config().Credentials.Retrieve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AKIDEXAMPLE", creds.AccessKeyID)
	assert.Equal(t, "wJalrXUtnFEMI", creds.SecretAccessKey)
	assert.Equal(t, "session", creds.SessionToken)

	assert.NotNil(t, p.S3())
	assert.NotNil(t, p.Beanstalk())
}

func TestNewAWSProvider_PartialCredentials(t *testing.T) {
	_, err := NewAWSProvider(context.Background(), Options{
		Region:      "eu-west-1",
		Credentials: Credentials{AccessKeyID: "AKID"},
	}, nil)

	assert.ErrorIs(t, err, ErrPartialCredentials)
}
