package workers

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/artpar/ebdeploy/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Fakes
// =============================================================================

// iteration is one scripted response of the fake monitor.
type iteration struct {
	status domain.EnvironmentStatus
	events []domain.EventRecord // newest-first, as the platform returns them
}

type scriptedMonitor struct {
	mu        sync.Mutex
	script    []iteration
	calls     int
	sinceSeen []time.Time
	statusErr error
	eventsErr error
}

func (m *scriptedMonitor) current() iteration {
	if m.calls < len(m.script) {
		return m.script[m.calls]
	}
	return m.script[len(m.script)-1]
}

func (m *scriptedMonitor) Status(ctx context.Context, application, environment string) (domain.EnvironmentStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statusErr != nil {
		return "", m.statusErr
	}
	return m.current().status, nil
}

func (m *scriptedMonitor) Events(ctx context.Context, application, environment string, since time.Time) ([]domain.EventRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.eventsErr != nil {
		return nil, m.eventsErr
	}
	m.sinceSeen = append(m.sinceSeen, since)
	it := m.current()
	m.calls++
	return it.events, nil
}

type recordingObserver struct {
	events []domain.EventRecord
}

func (o *recordingObserver) Event(e domain.EventRecord) {
	o.events = append(o.events, e)
}

func event(sec int, sev domain.Severity, msg string) domain.EventRecord {
	return domain.EventRecord{
		Time:     time.Date(2024, 5, 10, 9, 0, sec, 0, time.UTC),
		Severity: sev,
		Message:  msg,
	}
}

func fastConfig() ReadinessConfig {
	return ReadinessConfig{Interval: time.Millisecond}
}

// =============================================================================
// Configuration Tests
// =============================================================================

func TestDefaultReadinessConfig(t *testing.T) {
	config := DefaultReadinessConfig()

	assert.Equal(t, 5*time.Second, config.Interval)
	assert.Zero(t, config.Timeout)
}

func TestNewReadinessPoller_DefaultConfig(t *testing.T) {
	p := NewReadinessPoller(&scriptedMonitor{}, nil, ReadinessConfig{Timeout: -time.Second}, nil)

	assert.Equal(t, 5*time.Second, p.config.Interval)
	assert.Zero(t, p.config.Timeout)
}

// =============================================================================
// Wait Tests
// =============================================================================

func TestWait_ReadyWithoutErrors(t *testing.T) {
	since := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	a := event(1, domain.SeverityInfo, "createEnvironment is starting.")
	b := event(2, domain.SeverityInfo, "Environment update completed successfully.")

	monitor := &scriptedMonitor{script: []iteration{
		{status: "Updating", events: []domain.EventRecord{a}},
		{status: domain.StatusReady, events: []domain.EventRecord{b, a}},
	}}
	observer := &recordingObserver{}

	outcome, err := NewReadinessPoller(monitor, observer, fastConfig(), slog.Default()).
		Wait(context.Background(), "shop", "shop-prod", since)

	require.NoError(t, err)
	assert.True(t, outcome.Succeeded())
	assert.Equal(t, []domain.EventRecord{a, b}, observer.events)
	assert.Equal(t, 2, monitor.calls)
	for _, s := range monitor.sinceSeen {
		assert.Equal(t, since, s)
	}
}

func TestWait_ErrorEventsFailReadyEnvironment(t *testing.T) {
	x := event(1, domain.SeverityInfo, "Deploying new version to instance(s).")
	y := event(2, domain.SeverityError, "Failed to deploy application.")
	z := event(3, domain.SeverityInfo, "Environment update completed.")

	monitor := &scriptedMonitor{script: []iteration{
		{status: "Updating", events: []domain.EventRecord{y, x}},
		{status: domain.StatusReady, events: []domain.EventRecord{z, y, x}},
	}}
	observer := &recordingObserver{}

	outcome, err := NewReadinessPoller(monitor, observer, fastConfig(), nil).
		Wait(context.Background(), "shop", "shop-prod", time.Time{})

	require.NoError(t, err)
	assert.False(t, outcome.Succeeded())
	assert.Equal(t, []string{"Failed to deploy application."}, outcome.Errors)
	assert.Equal(t, []domain.EventRecord{x, y, z}, observer.events)
	assert.ErrorIs(t, outcome.Err(), domain.ErrDeploymentFailed)
}

func TestWait_RepeatedEventsEmittedOnce(t *testing.T) {
	a := event(1, domain.SeverityWarn, "Instance has not sent data.")

	monitor := &scriptedMonitor{script: []iteration{
		{status: "Updating", events: []domain.EventRecord{a}},
		{status: "Updating", events: []domain.EventRecord{a}},
		{status: "Updating", events: []domain.EventRecord{a}},
		{status: domain.StatusReady, events: []domain.EventRecord{a}},
	}}
	observer := &recordingObserver{}

	outcome, err := NewReadinessPoller(monitor, observer, fastConfig(), nil).
		Wait(context.Background(), "shop", "shop-prod", time.Time{})

	require.NoError(t, err)
	assert.True(t, outcome.Succeeded())
	assert.Len(t, observer.events, 1)
	assert.Equal(t, 4, monitor.calls)
}

func TestWait_NilObserver(t *testing.T) {
	monitor := &scriptedMonitor{script: []iteration{
		{status: domain.StatusReady, events: []domain.EventRecord{event(1, domain.SeverityInfo, "ok")}},
	}}

	outcome, err := NewReadinessPoller(monitor, nil, fastConfig(), nil).
		Wait(context.Background(), "shop", "shop-prod", time.Time{})

	require.NoError(t, err)
	assert.True(t, outcome.Succeeded())
}

func TestWait_CollaboratorErrors(t *testing.T) {
	boom := errors.New("throttled")

	tests := []struct {
		name    string
		monitor *scriptedMonitor
		wantMsg string
	}{
		{
			name:    "status failure",
			monitor: &scriptedMonitor{statusErr: boom},
			wantMsg: "describe environment",
		},
		{
			name: "events failure",
			monitor: &scriptedMonitor{
				script:    []iteration{{status: "Updating"}},
				eventsErr: boom,
			},
			wantMsg: "describe events",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReadinessPoller(tt.monitor, nil, fastConfig(), nil).
				Wait(context.Background(), "shop", "shop-prod", time.Time{})

			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestWait_Timeout(t *testing.T) {
	monitor := &scriptedMonitor{script: []iteration{{status: "Updating"}}}

	_, err := NewReadinessPoller(monitor, nil, ReadinessConfig{
		Interval: time.Millisecond,
		Timeout:  20 * time.Millisecond,
	}, nil).Wait(context.Background(), "shop", "shop-prod", time.Time{})

	require.Error(t, err)
	assert.True(t, IsTimeout(err))

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, domain.EnvironmentStatus("Updating"), timeoutErr.LastStatus)
	assert.Contains(t, err.Error(), "Updating")
}

func TestWait_ContextCancelled(t *testing.T) {
	monitor := &scriptedMonitor{script: []iteration{{status: "Updating"}}}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewReadinessPoller(monitor, nil, ReadinessConfig{Interval: time.Hour}, nil).
		Wait(ctx, "shop", "shop-prod", time.Time{})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, IsTimeout(err))
	assert.Equal(t, 1, monitor.calls)
}
