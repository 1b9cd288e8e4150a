package domain

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// Event Severity
// =============================================================================

// Severity classifies a platform event. The zero value is SeverityUnknown.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityTrace
	SeverityDebug
	SeverityInfo
	SeverityWarn
	SeverityError
	SeverityFatal
)

var severityNames = map[Severity]string{
	SeverityUnknown: "UNKNOWN",
	SeverityTrace:   "TRACE",
	SeverityDebug:   "DEBUG",
	SeverityInfo:    "INFO",
	SeverityWarn:    "WARN",
	SeverityError:   "ERROR",
	SeverityFatal:   "FATAL",
}

// ParseSeverity maps a platform severity token to a Severity.
// Unrecognised tokens map to SeverityUnknown.
func ParseSeverity(s string) Severity {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for sev, name := range severityNames {
		if name == upper {
			return sev
		}
	}
	return SeverityUnknown
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return severityNames[SeverityUnknown]
}

// IsError reports whether the severity belongs to the ERROR class.
func (s Severity) IsError() bool {
	return s >= SeverityError
}

// =============================================================================
// Event Record
// =============================================================================

// EventTimeLayout is the timestamp format used when rendering events.
const EventTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// EventRecord is one entry of an environment's event log.
type EventRecord struct {
	Time     time.Time
	Severity Severity
	Message  string
}

// Signature renders the event as "<timestamp> [<severity>] <message>".
// Two records with the same signature are the same event.
func (e EventRecord) Signature() string {
	return fmt.Sprintf("%s [%s] %s", e.Time.UTC().Format(EventTimeLayout), e.Severity, e.Message)
}

func (e EventRecord) String() string {
	return e.Signature()
}

// =============================================================================
// Environment Status
// =============================================================================

// EnvironmentStatus is the opaque status token reported by the platform.
type EnvironmentStatus string

// StatusReady is the only terminal status. It signals infrastructure
// convergence, not application health.
const StatusReady EnvironmentStatus = "Ready"

// IsTerminal reports whether polling can stop at this status.
func (s EnvironmentStatus) IsTerminal() bool {
	return s == StatusReady
}
