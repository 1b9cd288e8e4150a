package validation

import (
	"fmt"
	"net"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Platform limits.
const (
	MaxApplicationNameLength = 100
	MinEnvironmentNameLength = 4
	MaxEnvironmentNameLength = 40
	MaxVersionLabelLength    = 100
	MinBucketNameLength      = 3
	MaxBucketNameLength      = 63
)

var (
	environmentNamePattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?$`)
	bucketNamePattern      = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]*[a-z0-9]$`)
)

// =============================================================================
// Request Validation Functions
// =============================================================================

// ValidateRequestFields validates the names of a deploy request.
// Empty environment, label and bucket are accepted: they are optional or
// derived later. Returns the field name and error message if validation
// fails, and empty strings if all fields are valid.
//
// Example:
//
//	field, msg := ValidateRequestFields("shop", "shop-prod", "v1", "artifacts")
//	if field != "" {
//	    // Handle validation error
//	}
func ValidateRequestFields(application, environment, label, bucket string) (field, message string) {
	if application == "" {
		return "application_name", "application name is required"
	}
	if utf8.RuneCountInString(application) > MaxApplicationNameLength {
		return "application_name", fmt.Sprintf("application name must be at most %d characters", MaxApplicationNameLength)
	}
	if environment != "" {
		if msg := ValidateEnvironmentName(environment); msg != "" {
			return "environment_name", msg
		}
	}
	if label != "" {
		if msg := ValidateVersionLabel(label); msg != "" {
			return "version_label", msg
		}
	}
	if bucket != "" {
		if msg := ValidateBucketName(bucket); msg != "" {
			return "bucket", msg
		}
	}
	return "", ""
}

// ValidateEnvironmentName checks an environment name. Returns an empty
// string if the name is valid.
func ValidateEnvironmentName(name string) string {
	if len(name) < MinEnvironmentNameLength || len(name) > MaxEnvironmentNameLength {
		return fmt.Sprintf("environment name must be %d to %d characters", MinEnvironmentNameLength, MaxEnvironmentNameLength)
	}
	if !environmentNamePattern.MatchString(name) {
		return "environment name may contain only letters, digits and hyphens and must not start or end with a hyphen"
	}
	return ""
}

// ValidateVersionLabel checks a version label. Labels become archive file
// names and object keys, so path separators are rejected.
// Returns an empty string if the label is valid.
func ValidateVersionLabel(label string) string {
	if utf8.RuneCountInString(label) > MaxVersionLabelLength {
		return fmt.Sprintf("version label must be at most %d characters", MaxVersionLabelLength)
	}
	if strings.ContainsAny(label, `/\`) {
		return "version label must not contain path separators"
	}
	if label == "." || label == ".." {
		return "version label must not be a relative path"
	}
	return ""
}

// ValidateBucketName checks an S3 bucket name. Returns an empty string if
// the name is valid.
func ValidateBucketName(name string) string {
	if len(name) < MinBucketNameLength || len(name) > MaxBucketNameLength {
		return fmt.Sprintf("bucket name must be %d to %d characters", MinBucketNameLength, MaxBucketNameLength)
	}
	if !bucketNamePattern.MatchString(name) {
		return "bucket name may contain only lowercase letters, digits, dots and hyphens and must start and end with a letter or digit"
	}
	if strings.Contains(name, "..") {
		return "bucket name must not contain consecutive dots"
	}
	if net.ParseIP(name) != nil {
		return "bucket name must not be formatted as an IP address"
	}
	return ""
}
