// Package report writes a YAML record of a deploy for CI pipelines.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/artpar/ebdeploy/internal/core/deployment"
	"github.com/artpar/ebdeploy/internal/core/domain"
)

// Document is the YAML shape of a deploy report.
type Document struct {
	DeployID     string              `yaml:"deploy_id"`
	Application  string              `yaml:"application"`
	Environment  string              `yaml:"environment,omitempty"`
	VersionLabel string              `yaml:"version_label"`
	Reused       bool                `yaml:"reused"`
	Activated    bool                `yaml:"activated"`
	Confirmed    bool                `yaml:"confirmed"`
	Artifact     *domain.ArtifactRef `yaml:"artifact,omitempty"`
	Outcome      string              `yaml:"outcome"`
	Reason       string              `yaml:"reason,omitempty"`
	Errors       []string            `yaml:"errors,omitempty"`
	Steps        []string            `yaml:"steps"`
	Events       []string            `yaml:"events,omitempty"`
	StartedAt    time.Time           `yaml:"started_at"`
	FinishedAt   time.Time           `yaml:"finished_at"`
	Duration     string              `yaml:"duration"`
}

// Writer collects steps and events and writes the report when the outcome
// arrives.
type Writer struct {
	path   string
	steps  []string
	events []string
	err    error
}

// NewWriter creates a writer for path. Nothing is written until Outcome.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Step records a workflow step.
func (w *Writer) Step(step deployment.Step, detail string) {
	w.steps = append(w.steps, string(step))
}

// Event records a platform event.
func (w *Writer) Event(event domain.EventRecord) {
	w.events = append(w.events, event.String())
}

// Outcome writes the report.
func (w *Writer) Outcome(result domain.Result) {
	w.err = w.write(Build(result, w.steps, w.events))
}

// Close returns the error of the last write, if any.
func (w *Writer) Close() error {
	return w.err
}

// Build assembles a report document.
func Build(result domain.Result, steps, events []string) Document {
	if steps == nil {
		steps = []string{}
	}
	return Document{
		DeployID:     result.DeployID,
		Application:  result.ApplicationName,
		Environment:  result.EnvironmentName,
		VersionLabel: result.VersionLabel,
		Reused:       result.Reused,
		Activated:    result.Activated,
		Confirmed:    result.Confirmed,
		Artifact:     result.Artifact,
		Outcome:      string(result.Outcome.Status),
		Reason:       result.Outcome.Reason,
		Errors:       result.Outcome.Errors,
		Steps:        steps,
		Events:       events,
		StartedAt:    result.StartedAt.UTC(),
		FinishedAt:   result.FinishedAt.UTC(),
		Duration:     result.FinishedAt.Sub(result.StartedAt).String(),
	}
}

func (w *Writer) write(doc Document) error {
	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}

	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		f.Close()
		return fmt.Errorf("encode report: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("encode report: %w", err)
	}
	return f.Close()
}
