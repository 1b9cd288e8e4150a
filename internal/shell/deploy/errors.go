package deploy

import (
	"errors"
	"fmt"

	"github.com/artpar/ebdeploy/internal/core/deployment"
)

// ErrNoSource is returned when a value must be derived from source metadata
// but no SourceInfo is configured.
var ErrNoSource = errors.New("no source repository configured")

// StepError records which workflow step aborted a deploy.
type StepError struct {
	Step deployment.Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// FailedStep returns the step that aborted a deploy, if err carries one.
func FailedStep(err error) (deployment.Step, bool) {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step, true
	}
	return "", false
}
