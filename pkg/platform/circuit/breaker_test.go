package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBreakerStartsClosed(t *testing.T) {
	b := New("audit-sink")

	assert.Equal(t, "audit-sink", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.False(t, b.IsOpen())
}

func TestConsecutiveFailuresOpenTheBreaker(t *testing.T) {
	b := New("audit-sink", WithFailureThreshold(3))

	for i := 0; i < 2; i++ {
		useFallback, change := b.RecordFailure()
		require.False(t, useFallback, "failure %d is below the threshold", i+1)
		require.False(t, change.Opened)
	}

	useFallback, change := b.RecordFailure()
	assert.True(t, useFallback)
	assert.True(t, change.Opened)
	assert.True(t, b.IsOpen())
}

func TestFailureWhileOpenReportsNoTransition(t *testing.T) {
	b := New("audit-sink", WithFailureThreshold(1))
	b.RecordFailure()

	useFallback, change := b.RecordFailure()
	assert.True(t, useFallback)
	assert.Equal(t, Change{}, change, "already open, nothing changed")
}

func TestSuccessStreakClosesAnOpenBreaker(t *testing.T) {
	b := New("audit-sink", WithFailureThreshold(1), WithSuccessThreshold(2))
	b.RecordFailure()
	require.True(t, b.IsOpen())

	usePrimary, change := b.RecordSuccess()
	assert.False(t, usePrimary, "one success is not enough")
	assert.False(t, change.Closed)

	usePrimary, change = b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.True(t, change.Closed)
	assert.False(t, b.IsOpen())
}

func TestStreaksDoNotSurviveOppositeOutcomes(t *testing.T) {
	t.Run("a success clears the failure streak", func(t *testing.T) {
		b := New("audit-sink", WithFailureThreshold(2))
		b.RecordFailure()
		b.RecordSuccess()

		b.RecordFailure()
		assert.False(t, b.IsOpen(), "streak restarted after the success")
		b.RecordFailure()
		assert.True(t, b.IsOpen())
	})

	t.Run("a failure clears the success streak", func(t *testing.T) {
		b := New("audit-sink", WithFailureThreshold(1), WithSuccessThreshold(2))
		b.RecordFailure()
		b.RecordSuccess()
		b.RecordFailure()

		b.RecordSuccess()
		assert.True(t, b.IsOpen(), "streak restarted after the failure")
		b.RecordSuccess()
		assert.False(t, b.IsOpen())
	})
}

func TestResetClosesAndClearsStreaks(t *testing.T) {
	b := New("audit-sink", WithFailureThreshold(2))
	b.RecordFailure()
	b.RecordFailure()
	require.True(t, b.IsOpen())

	b.Reset()
	assert.False(t, b.IsOpen())

	// The breaker must be reusable: the old failure streak is gone.
	b.RecordFailure()
	assert.False(t, b.IsOpen())
	b.RecordFailure()
	assert.True(t, b.IsOpen())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
}

func TestNonPositiveThresholdsKeepDefaults(t *testing.T) {
	b := New("audit-sink", WithFailureThreshold(0), WithSuccessThreshold(-1))

	for i := 0; i < defaultFailureThreshold-1; i++ {
		b.RecordFailure()
	}
	assert.False(t, b.IsOpen())

	b.RecordFailure()
	assert.True(t, b.IsOpen())
}
