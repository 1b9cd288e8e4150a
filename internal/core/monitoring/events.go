// Package monitoring provides pure functions for deployment monitoring logic.
// Following ADR-002: Values as Boundaries - this package contains NO I/O.
package monitoring

import (
	"fmt"

	"github.com/artpar/ebdeploy/internal/core/domain"
)

// =============================================================================
// Seen Event Set
// =============================================================================

// SeenEvents is an append-only set of event signatures kept in first-seen order.
// The zero value is ready to use.
type SeenEvents struct {
	order []string
	index map[string]struct{}
}

// Add records a signature. It returns false if the signature was already present.
func (s *SeenEvents) Add(signature string) bool {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[signature]; ok {
		return false
	}
	s.index[signature] = struct{}{}
	s.order = append(s.order, signature)
	return true
}

// Contains reports whether a signature has been seen.
func (s *SeenEvents) Contains(signature string) bool {
	_, ok := s.index[signature]
	return ok
}

// Len returns the number of distinct signatures seen.
func (s *SeenEvents) Len() int {
	return len(s.order)
}

// Signatures returns a copy of the signatures in first-seen order.
func (s *SeenEvents) Signatures() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// =============================================================================
// Event Tracker
// =============================================================================

// EventTracker deduplicates the event log of one polling session and counts
// ERROR-class events. The zero value is ready to use.
type EventTracker struct {
	seen   SeenEvents
	errors []string
}

// Observe takes one event query result, delivered newest-first, and returns
// the events not seen before in oldest-first order.
func (t *EventTracker) Observe(newestFirst []domain.EventRecord) []domain.EventRecord {
	var fresh []domain.EventRecord

	for i := len(newestFirst) - 1; i >= 0; i-- {
		e := newestFirst[i]
		if !t.seen.Add(e.Signature()) {
			continue
		}
		if e.Severity.IsError() {
			t.errors = append(t.errors, e.Message)
		}
		fresh = append(fresh, e)
	}

	return fresh
}

// Seen returns the signatures observed so far in first-seen order.
func (t *EventTracker) Seen() []string {
	return t.seen.Signatures()
}

// ErrorCount returns the number of distinct ERROR-class events observed.
func (t *EventTracker) ErrorCount() int {
	return len(t.errors)
}

// ErrorMessages returns the messages of the ERROR-class events in first-seen order.
func (t *EventTracker) ErrorMessages() []string {
	out := make([]string, len(t.errors))
	copy(out, t.errors)
	return out
}

// =============================================================================
// Verdict (Pure Functions)
// =============================================================================

// Verdict renders the outcome once the environment reached terminal status.
// Any ERROR-class event fails the deploy even though the status is terminal:
// status and health are independent signals.
func (t *EventTracker) Verdict() domain.Outcome {
	if t.ErrorCount() > 0 {
		return domain.Failed(VerdictReason(t.ErrorCount()), t.ErrorMessages())
	}
	return domain.Success()
}

// VerdictReason generates a human-readable reason for a failed verdict.
func VerdictReason(errorCount int) string {
	if errorCount == 1 {
		return "1 error event observed during deployment"
	}
	return fmt.Sprintf("%d error events observed during deployment", errorCount)
}
