package deployment

import (
	"fmt"
	"strings"
	"time"
)

// MaxDescriptionLength is the longest version description the platform accepts.
const MaxDescriptionLength = 200

// =============================================================================
// Naming Functions
// =============================================================================

// ObjectKey derives the object-store key for an artifact.
// Pattern: {prefix}/{artifactName}, or {applicationName}/{artifactName} without a prefix.
//
// Example:
//
//	ObjectKey("builds/web", "shop", "v1.zip") // returns "builds/web/v1.zip"
//	ObjectKey("", "shop", "v1.zip")           // returns "shop/v1.zip"
func ObjectKey(prefix, applicationName, artifactName string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = applicationName
	}
	return fmt.Sprintf("%s/%s", prefix, artifactName)
}

// ArchiveName returns the file name of an archive produced for a version.
// Pattern: {versionLabel}.zip
func ArchiveName(versionLabel string) string {
	return versionLabel + ".zip"
}

// DefaultVersionLabel derives a version label from a source revision and a
// point in time. Pattern: sha-{revision}-{unixMillis}
//
// Example:
//
//	DefaultVersionLabel("3f2a9c1", time.UnixMilli(1700000000000)) // returns "sha-3f2a9c1-1700000000000"
func DefaultVersionLabel(revision string, at time.Time) string {
	return fmt.Sprintf("sha-%s-%d", revision, at.UnixMilli())
}

// TruncateDescription clamps a description to MaxDescriptionLength characters.
func TruncateDescription(description string) string {
	runes := []rune(description)
	if len(runes) <= MaxDescriptionLength {
		return description
	}
	return string(runes[:MaxDescriptionLength])
}
