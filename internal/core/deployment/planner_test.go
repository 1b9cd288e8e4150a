package deployment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// DeterminePublishPath Tests
// =============================================================================

func TestDeterminePublishPath_FreshPublish(t *testing.T) {
	path := DeterminePublishPath(PathOptions{})

	assert.False(t, path.ReuseVersion)
	assert.Equal(t, []Step{
		StepEnsureBucket,
		StepPrepareArtifact,
		StepUpload,
		StepRegister,
		StepActivate,
		StepAwaitReadiness,
	}, path.Steps)
}

func TestDeterminePublishPath_ReuseExistingVersion(t *testing.T) {
	path := DeterminePublishPath(PathOptions{ReuseExistingVersion: true, VersionExists: true})

	assert.True(t, path.ReuseVersion)
	assert.Equal(t, []Step{StepReuseVersion, StepActivate, StepAwaitReadiness}, path.Steps)
	assert.False(t, path.Has(StepUpload))
	assert.False(t, path.Has(StepRegister))
}

func TestDeterminePublishPath_ReuseRequestedButMissing(t *testing.T) {
	path := DeterminePublishPath(PathOptions{ReuseExistingVersion: true, VersionExists: false})

	assert.False(t, path.ReuseVersion)
	assert.False(t, path.Has(StepReuseVersion))
	assert.True(t, path.Has(StepUpload))
	assert.True(t, path.Has(StepRegister))
}

func TestDeterminePublishPath_ExistsWithoutReuseStillPublishes(t *testing.T) {
	path := DeterminePublishPath(PathOptions{VersionExists: true})

	assert.False(t, path.ReuseVersion)
	assert.True(t, path.Has(StepUpload))
}

func TestDeterminePublishPath_PublishOnly(t *testing.T) {
	path := DeterminePublishPath(PathOptions{PublishOnly: true, SkipReadinessWait: true})

	assert.Equal(t, []Step{StepEnsureBucket, StepPrepareArtifact, StepUpload, StepRegister}, path.Steps)
	assert.False(t, path.Has(StepActivate))
}

func TestDeterminePublishPath_SkipReadinessWait(t *testing.T) {
	path := DeterminePublishPath(PathOptions{SkipReadinessWait: true})

	assert.True(t, path.Has(StepActivate))
	assert.False(t, path.Has(StepAwaitReadiness))
}

func TestDeterminePublishPath_ReuseWithEveryCombination(t *testing.T) {
	for _, publishOnly := range []bool{false, true} {
		for _, skipWait := range []bool{false, true} {
			path := DeterminePublishPath(PathOptions{
				ReuseExistingVersion: true,
				VersionExists:        true,
				PublishOnly:          publishOnly,
				SkipReadinessWait:    skipWait,
			})

			assert.True(t, path.Has(StepReuseVersion))
			assert.False(t, path.Has(StepUpload))
			assert.False(t, path.Has(StepEnsureBucket))
			assert.Equal(t, !publishOnly, path.Has(StepActivate))
			assert.Equal(t, !skipWait, path.Has(StepAwaitReadiness))
		}
	}
}
