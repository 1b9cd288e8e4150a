// Package validation provides pure validation functions for deploy requests.
//
// This package contains the functional core logic for checking names against
// the limits the platform and the object store enforce, so a bad name fails
// before any remote call is made. All functions are pure (no I/O, no side
// effects) and comply with ADR-002 "Values as Boundaries".
//
// # Functions
//
//   - ValidateRequestFields: Validate application, environment, label and bucket names
//   - ValidateBucketName: Check an S3 bucket name
//   - ValidateVersionLabel: Check an application version label
//
// # Usage
//
// The orchestrator validates a request before running any step:
//
//	if field, msg := validation.ValidateRequestFields(app, env, label, bucket); field != "" {
//	    // Reject the request with msg
//	}
package validation
