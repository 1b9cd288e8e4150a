package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/artpar/ebdeploy/internal/core/domain"
	"github.com/artpar/ebdeploy/internal/shell/provider"
	"github.com/artpar/ebdeploy/internal/shell/storage"
	"github.com/artpar/ebdeploy/internal/shell/workers"
)

// envPrefix prefixes every configuration key read from the environment.
const envPrefix = "EBDEPLOY"

// =============================================================================
// Config Types
// =============================================================================

// Config holds all command configuration.
type Config struct {
	Application ApplicationConfig `mapstructure:"application"`
	Version     VersionConfig     `mapstructure:"version"`
	Artifact    ArtifactConfig    `mapstructure:"artifact"`
	AWS         AWSConfig         `mapstructure:"aws"`
	Wait        WaitConfig        `mapstructure:"wait"`
	Report      ReportConfig      `mapstructure:"report"`
	Log         LogConfig         `mapstructure:"log"`
}

// ApplicationConfig names the deploy target.
type ApplicationConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// VersionConfig holds version labelling options.
type VersionConfig struct {
	Label       string `mapstructure:"label"`
	Description string `mapstructure:"description"`

	// UseExisting activates an existing version with the same label instead
	// of publishing a new one.
	UseExisting bool `mapstructure:"use_existing"`

	// OnlyCreate registers the version without activating it.
	OnlyCreate bool `mapstructure:"only_create"`
}

// ArtifactConfig holds artifact and storage options.
type ArtifactConfig struct {
	ZipFile     string `mapstructure:"zip_file"`
	Bucket      string `mapstructure:"bucket"`
	BucketPath  string `mapstructure:"bucket_path"`
	SourceDir   string `mapstructure:"source_dir"`
	SkipCleanup bool   `mapstructure:"skip_cleanup"`

	// GitSHA pins the revision used for the default label and description.
	GitSHA string `mapstructure:"git_sha"`
}

// AWSConfig holds region, credentials and endpoint overrides.
type AWSConfig struct {
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SessionToken    string `mapstructure:"session_token"`
	EndpointURL     string `mapstructure:"endpoint_url"`
	MaxAttempts     int    `mapstructure:"max_attempts"`
}

// WaitConfig holds the readiness and upload confirmation timings.
type WaitConfig struct {
	Skip              bool          `mapstructure:"skip"`
	Interval          time.Duration `mapstructure:"interval"`
	Timeout           time.Duration `mapstructure:"timeout"`
	VisibilityTimeout time.Duration `mapstructure:"visibility_timeout"`
}

// ReportConfig holds the optional deploy report destination.
type ReportConfig struct {
	File string `mapstructure:"file"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Request converts the configuration into a deployment request.
func (c *Config) Request() domain.DeploymentRequest {
	return domain.DeploymentRequest{
		ApplicationName:      c.Application.Name,
		EnvironmentName:      c.Application.Environment,
		VersionLabel:         c.Version.Label,
		VersionDescription:   c.Version.Description,
		ArtifactPath:         c.Artifact.ZipFile,
		Bucket:               c.Artifact.Bucket,
		BucketPath:           c.Artifact.BucketPath,
		ReuseExistingVersion: c.Version.UseExisting,
		PublishOnly:          c.Version.OnlyCreate,
		SkipReadinessWait:    c.Wait.Skip,
		SkipCleanup:          c.Artifact.SkipCleanup,
	}
}

// ProviderOptions returns the AWS provider options.
func (c *Config) ProviderOptions() provider.Options {
	return provider.Options{
		Region: c.AWS.Region,
		Credentials: provider.Credentials{
			AccessKeyID:     c.AWS.AccessKeyID,
			SecretAccessKey: c.AWS.SecretAccessKey,
			SessionToken:    c.AWS.SessionToken,
		},
		EndpointURL: c.AWS.EndpointURL,
		MaxAttempts: c.AWS.MaxAttempts,
	}
}

// StorageConfig returns the storage client configuration for region.
func (c *Config) StorageConfig(region string) storage.Config {
	cfg := storage.DefaultConfig()
	cfg.Region = region
	if c.Wait.VisibilityTimeout > 0 {
		cfg.VisibilityTimeout = c.Wait.VisibilityTimeout
	}
	return cfg
}

// ReadinessConfig returns the readiness poller configuration.
func (c *Config) ReadinessConfig() workers.ReadinessConfig {
	cfg := workers.DefaultReadinessConfig()
	if c.Wait.Interval > 0 {
		cfg.Interval = c.Wait.Interval
	}
	cfg.Timeout = c.Wait.Timeout
	return cfg
}

// =============================================================================
// Flags
// =============================================================================

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"application-name":         "application.name",
	"environment-name":         "application.environment",
	"version-label":            "version.label",
	"version-description":      "version.description",
	"use-existing-app-version": "version.use_existing",
	"only-create-app-version":  "version.only_create",
	"zip-file":                 "artifact.zip_file",
	"bucket":                   "artifact.bucket",
	"bucket-path":              "artifact.bucket_path",
	"source-dir":               "artifact.source_dir",
	"skip-cleanup":             "artifact.skip_cleanup",
	"region":                   "aws.region",
	"access-key-id":            "aws.access_key_id",
	"secret-access-key":        "aws.secret_access_key",
	"session-token":            "aws.session_token",
	"endpoint-url":             "aws.endpoint_url",
	"max-attempts":             "aws.max_attempts",
	"skip-wait":                "wait.skip",
	"poll-interval":            "wait.interval",
	"poll-timeout":             "wait.timeout",
	"visibility-timeout":       "wait.visibility_timeout",
	"report-file":              "report.file",
	"log-level":                "log.level",
	"log-format":               "log.format",
}

// envFallbacks lists environment variables read after the EBDEPLOY_ name of a key.
var envFallbacks = map[string][]string{
	"application.environment": {"ELASTIC_BEANSTALK_ENVIRONMENT"},
	"version.label":           {"ELASTIC_BEANSTALK_LABEL"},
	"version.description":     {"ELASTIC_BEANSTALK_DESCRIPTION"},
	"artifact.git_sha":        {"GIT_SHA"},
	"aws.region":              {"AWS_DEFAULT_REGION", "AWS_REGION"},
	"aws.access_key_id":       {"AWS_ACCESS_KEY_ID"},
	"aws.secret_access_key":   {"AWS_SECRET_ACCESS_KEY"},
	"aws.session_token":       {"AWS_SESSION_TOKEN"},
	"aws.endpoint_url":        {"AWS_ENDPOINT_URL"},
}

// RegisterFlags defines the command-line flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("application-name", "a", "", "Name of the Elastic Beanstalk application")
	fs.StringP("environment-name", "e", "", "Name of the Elastic Beanstalk environment")
	fs.StringP("zip-file", "z", "", "ZIP file to deploy (default: archive HEAD of the source repository)")
	fs.StringP("bucket", "b", "", "S3 bucket to upload the ZIP file to (default: Elastic Beanstalk storage location)")
	fs.StringP("bucket-path", "P", "", "Key prefix of the ZIP file within the bucket (default: application name)")
	fs.StringP("version-label", "l", "", "Label of the application version (default: sha-<revision>-<unix millis>)")
	fs.StringP("version-description", "d", "", "Description of the application version (default: commit message)")
	fs.Bool("use-existing-app-version", false, "Activate the existing version if the label already exists")
	fs.Bool("only-create-app-version", false, "Register the version without deploying it")
	fs.Bool("skip-wait", false, "Do not wait for the environment to become ready")
	fs.Bool("skip-cleanup", false, "Keep the ZIP file produced from the source repository")
	fs.String("source-dir", ".", "Directory inside the git repository to archive")
	fs.String("access-key-id", "", "AWS access key ID")
	fs.String("secret-access-key", "", "AWS secret access key")
	fs.String("session-token", "", "AWS session token")
	fs.String("region", "", "AWS region (default "+provider.DefaultRegion+")")
	fs.String("endpoint-url", "", "Override the AWS endpoint URL")
	fs.Int("max-attempts", 0, "Maximum attempts per AWS API call (default: SDK setting)")
	fs.Duration("poll-interval", 5*time.Second, "Pause between readiness polls")
	fs.Duration("poll-timeout", 0, "Give up waiting for readiness after this long (0 waits indefinitely)")
	fs.Duration("visibility-timeout", 100*time.Second, "Maximum wait for the uploaded artifact to become readable")
	fs.String("report-file", "", "Write a YAML deploy report to this file")
	fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	fs.String("log-format", "text", "Log format (text, json)")
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file, environment and flags.
// Precedence, highest first: flags set on the command line, EBDEPLOY_*
// variables, the fallback variables, the config file, defaults.
func LoadConfig(configPath string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("application.name", "")
	v.SetDefault("application.environment", "")
	v.SetDefault("version.label", "")
	v.SetDefault("version.description", "")
	v.SetDefault("version.use_existing", false)
	v.SetDefault("version.only_create", false)
	v.SetDefault("artifact.zip_file", "")
	v.SetDefault("artifact.bucket", "")
	v.SetDefault("artifact.bucket_path", "")
	v.SetDefault("artifact.source_dir", ".")
	v.SetDefault("artifact.skip_cleanup", false)
	v.SetDefault("artifact.git_sha", "")
	v.SetDefault("aws.region", provider.DefaultRegion)
	v.SetDefault("aws.access_key_id", "")
	v.SetDefault("aws.secret_access_key", "")
	v.SetDefault("aws.session_token", "")
	v.SetDefault("aws.endpoint_url", "")
	v.SetDefault("aws.max_attempts", 0)
	v.SetDefault("wait.skip", false)
	v.SetDefault("wait.interval", "5s")
	v.SetDefault("wait.timeout", "0s")
	v.SetDefault("wait.visibility_timeout", "100s")
	v.SetDefault("report.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Load from file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// Only return error if file was explicitly specified and is invalid
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// File not found is OK, we'll use defaults
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, fallbacks := range envFallbacks {
		names := append([]string{envName(key)}, fallbacks...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	if fs != nil {
		for flag, key := range flagKeys {
			f := fs.Lookup(flag)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", flag, err)
			}
		}
	}

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// envName returns the prefixed environment variable name of a key.
func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format.
// Logs go to w so that stdout carries only the deploy output.
func SetupLogger(cfg *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
