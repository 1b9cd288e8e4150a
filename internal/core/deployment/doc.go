// Package deployment provides pure functions for deployment planning.
//
// This package contains the functional core logic of the publish-and-activate
// workflow. All functions are pure (no I/O, no side effects); the imperative
// shell (internal/shell/deploy) calls them to decide what to do and then
// performs the platform calls.
//
// # Functions
//
//   - Planning: Decide reuse vs fresh publish and which steps run (DeterminePublishPath)
//   - Naming: Derive object keys, archive names and version labels (ObjectKey, ArchiveName, DefaultVersionLabel)
//   - Descriptions: Clamp version descriptions to the platform limit (TruncateDescription)
//
// # Usage
//
//	path := deployment.DeterminePublishPath(deployment.PathOptions{...})
//	for _, step := range path.Steps {
//	    // execute step
//	}
package deployment
