package deployment

// =============================================================================
// Publish Path Planning
// =============================================================================

// Step is one stage of the publish-and-activate workflow.
type Step string

const (
	StepReuseVersion    Step = "reuse_version"
	StepEnsureBucket    Step = "ensure_bucket"
	StepPrepareArtifact Step = "prepare_artifact"
	StepUpload          Step = "upload"
	StepRegister        Step = "register_version"
	StepActivate        Step = "activate"
	StepAwaitReadiness  Step = "await_readiness"
)

// PathOptions are the inputs to DeterminePublishPath.
type PathOptions struct {
	ReuseExistingVersion bool
	VersionExists        bool // only consulted with ReuseExistingVersion
	PublishOnly          bool
	SkipReadinessWait    bool
}

// PublishPath is the ordered list of steps a deploy executes.
type PublishPath struct {
	// ReuseVersion is true when an existing version is activated as-is and
	// no artifact is uploaded or registered.
	ReuseVersion bool

	Steps []Step
}

// Has reports whether the path includes the given step.
func (p PublishPath) Has(step Step) bool {
	for _, s := range p.Steps {
		if s == step {
			return true
		}
	}
	return false
}

// DeterminePublishPath decides which steps a deploy runs.
//
// Paths:
//   - reuse requested and version exists → reuse_version → [activate] → [await_readiness]
//   - otherwise → ensure_bucket → prepare_artifact → upload → register_version → [activate] → [await_readiness]
//
// activate is omitted when PublishOnly is set; await_readiness is omitted
// when SkipReadinessWait is set.
//
// Example:
//
//	path := DeterminePublishPath(PathOptions{ReuseExistingVersion: true, VersionExists: true})
//	path.Has(StepUpload) // false
func DeterminePublishPath(opts PathOptions) PublishPath {
	var path PublishPath

	if opts.ReuseExistingVersion && opts.VersionExists {
		path.ReuseVersion = true
		path.Steps = append(path.Steps, StepReuseVersion)
	} else {
		path.Steps = append(path.Steps, StepEnsureBucket, StepPrepareArtifact, StepUpload, StepRegister)
	}

	if !opts.PublishOnly {
		path.Steps = append(path.Steps, StepActivate)
	}

	if !opts.SkipReadinessWait {
		path.Steps = append(path.Steps, StepAwaitReadiness)
	}

	return path
}
