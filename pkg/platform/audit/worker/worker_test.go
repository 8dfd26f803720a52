package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	audit "anchorage/pkg/platform/audit"
	"anchorage/pkg/platform/audit/store/memory"
	"anchorage/pkg/platform/circuit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorker_DeliversEvents(t *testing.T) {
	store := memory.NewInMemoryStore()
	inbox := make(chan audit.Event, 10)
	w := NewWorker(store, inbox)

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	inbox <- audit.Event{Action: string(audit.EventRootsEnumerated)}
	inbox <- audit.Event{Action: string(audit.EventSettingsReplaced)}
	close(inbox)

	require.NoError(t, <-done)

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, string(audit.EventRootsEnumerated), events[0].Action)
	assert.Equal(t, string(audit.EventSettingsReplaced), events[1].Action)
}

func TestWorker_StopsOnContextCancel(t *testing.T) {
	store := memory.NewInMemoryStore()
	inbox := make(chan audit.Event)
	w := NewWorker(store, inbox)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}

// failingSink fails every delivery and records attempts.
type failingSink struct {
	mu       sync.Mutex
	attempts int
}

func (s *failingSink) Append(context.Context, audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	return errors.New("sink down")
}

func TestWorker_ContinuesAfterSinkFailure(t *testing.T) {
	sink := &failingSink{}
	inbox := make(chan audit.Event, 2)
	w := NewWorker(sink, inbox)

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	inbox <- audit.Event{Action: string(audit.EventRootsEnumerated)}
	inbox <- audit.Event{Action: string(audit.EventSettingsRemoved)}
	close(inbox)

	require.NoError(t, <-done)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, 2, sink.attempts, "both deliveries should be attempted")
}

func TestWorker_BreakerStopsHammeringDeadSink(t *testing.T) {
	sink := &failingSink{}
	breaker := circuit.New("kafka", circuit.WithFailureThreshold(2))
	inbox := make(chan audit.Event, 16)
	w := NewWorker(sink, inbox, WithBreaker(breaker))

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	for i := 0; i < 12; i++ {
		inbox <- audit.Event{Action: string(audit.EventRootsEnumerated)}
	}
	close(inbox)

	require.NoError(t, <-done)
	assert.True(t, breaker.IsOpen())

	sink.mu.Lock()
	defer sink.mu.Unlock()
	// Two failures open the breaker; of the remaining ten events only the
	// probe (every tenth skip) reaches the sink.
	assert.Equal(t, 3, sink.attempts, "an open breaker must suppress all but probe deliveries")
}

// flakySink fails until recovered, then succeeds.
type flakySink struct {
	mu        sync.Mutex
	recovered bool
	attempts  int
	delivered int
}

func (s *flakySink) Append(context.Context, audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if !s.recovered {
		return errors.New("sink down")
	}
	s.delivered++
	return nil
}

func (s *flakySink) attemptCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

func (s *flakySink) recover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recovered = true
}

func TestWorker_BreakerClosesAfterSinkRecovers(t *testing.T) {
	sink := &flakySink{}
	breaker := circuit.New("kafka",
		circuit.WithFailureThreshold(1),
		circuit.WithSuccessThreshold(1),
	)
	inbox := make(chan audit.Event)
	w := NewWorker(sink, inbox, WithBreaker(breaker))

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	// First delivery fails and opens the breaker; wait for the attempt so
	// the recovery below cannot race it.
	inbox <- audit.Event{Action: string(audit.EventRootsEnumerated)}
	require.Eventually(t, func() bool { return sink.attemptCount() == 1 },
		time.Second, time.Millisecond)
	sink.recover()

	// Enough events to reach a probe (every tenth skip) and close the breaker.
	for i := 0; i < 10; i++ {
		inbox <- audit.Event{Action: string(audit.EventRootsEnumerated)}
	}
	// Delivered normally once the breaker closed again.
	inbox <- audit.Event{Action: string(audit.EventSettingsReplaced)}
	close(inbox)

	require.NoError(t, <-done)
	assert.False(t, breaker.IsOpen())

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, 2, sink.delivered, "probe plus post-recovery event")
}
