package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-interview-worker/pkg/retry"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	p := retry.NewPolicy(3, time.Millisecond, 5*time.Millisecond)

	calls := 0
	err := p.Do(context.Background(), "ping", func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	p := retry.NewPolicy(3, time.Millisecond, 5*time.Millisecond)

	calls := 0
	err := p.Do(context.Background(), "flaky", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoGivesUpWithLastError(t *testing.T) {
	p := retry.NewPolicy(3, time.Millisecond, 5*time.Millisecond)
	sentinel := errors.New("still down")

	calls := 0
	err := p.Do(context.Background(), "dead-capability", func(ctx context.Context) error {
		calls++
		return sentinel
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), "giving up after 3 attempts")
}

func TestDoStopsOnContextCancel(t *testing.T) {
	p := retry.NewPolicy(5, 50*time.Millisecond, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := p.Do(ctx, "slow", func(ctx context.Context) error {
		calls++
		return errors.New("transient")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestNewPolicyClampsInvalidInput(t *testing.T) {
	p := retry.NewPolicy(0, -1, 0)

	assert.Equal(t, 1, p.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, p.BaseDelay)
	assert.Equal(t, p.BaseDelay, p.MaxDelay)
}
