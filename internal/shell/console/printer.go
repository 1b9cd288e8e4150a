// Package console renders deploy progress for a terminal.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/artpar/ebdeploy/internal/core/deployment"
	"github.com/artpar/ebdeploy/internal/core/domain"
)

var (
	colorMuted  = lipgloss.Color("#737373")
	colorGood   = lipgloss.Color("#22C55E")
	colorBad    = lipgloss.Color("#EF4444")
	colorNotice = lipgloss.Color("#EAB308")
	colorAccent = lipgloss.Color("#06B6D4")
)

// Printer writes the event log and the final verdict. Error-class events and
// failures go to the error writer, everything else to the output writer.
type Printer struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer

	title   lipgloss.Style
	dim     lipgloss.Style
	notice  lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
}

// NewPrinter creates a printer. Colors are used only when the writers are terminals.
func NewPrinter(out, errOut io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	er := lipgloss.NewRenderer(errOut)

	return &Printer{
		out:     out,
		errOut:  errOut,
		title:   r.NewStyle().Foreground(colorAccent).Bold(true),
		dim:     r.NewStyle().Foreground(colorMuted),
		notice:  r.NewStyle().Foreground(colorNotice),
		success: r.NewStyle().Foreground(colorGood),
		failure: er.NewStyle().Foreground(colorBad),
	}
}

// Start announces a deploy.
func (p *Printer) Start(application string) {
	p.println(p.out, p.title.Render(fmt.Sprintf("Deploying application %s", application)))
}

// Step prints the beginning of a workflow step.
func (p *Printer) Step(step deployment.Step, detail string) {
	if step == deployment.StepReuseVersion {
		p.println(p.out, p.notice.Render(detail))
		return
	}
	p.println(p.out, p.dim.Render("→ "+detail))
}

// Event prints one platform event.
func (p *Printer) Event(event domain.EventRecord) {
	if event.Severity.IsError() {
		p.println(p.errOut, p.failure.Render(event.String()))
		return
	}
	p.println(p.out, p.dim.Render(event.String()))
}

// Outcome prints the final verdict.
func (p *Printer) Outcome(result domain.Result) {
	if !result.Outcome.Succeeded() {
		p.println(p.errOut, p.failure.Render(Summary(result)))
		return
	}
	p.println(p.out, p.success.Render(Summary(result)))
}

// Summary is the one-line verdict of a deploy.
func Summary(result domain.Result) string {
	if !result.Outcome.Succeeded() {
		if result.Outcome.Reason == "" {
			return "Deployment failed."
		}
		return fmt.Sprintf("Deployment failed: %s", result.Outcome.Reason)
	}

	switch {
	case result.Activated && result.Confirmed:
		return fmt.Sprintf("Application %s (%s) deployed in %s environment.",
			result.ApplicationName, result.VersionLabel, result.EnvironmentName)
	case result.Activated:
		return fmt.Sprintf("Application %s (%s) deployment started in %s environment.",
			result.ApplicationName, result.VersionLabel, result.EnvironmentName)
	case result.Reused:
		return fmt.Sprintf("Application version '%s' of %s already exists.",
			result.VersionLabel, result.ApplicationName)
	default:
		return fmt.Sprintf("Application version '%s' of %s created.",
			result.VersionLabel, result.ApplicationName)
	}
}

func (p *Printer) println(w io.Writer, s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(w, s)
}
