package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func TestDo(t *testing.T) {
	policy := Policy{MaxAttempts: 3, BaseDelay: 5 * time.Millisecond}

	tests := []struct {
		name      string
		failures  int
		permanent bool
		wantCalls int
		wantErr   bool
		wantWaits []time.Duration
	}{
		{"success first try", 0, false, 1, false, nil},
		{"fails twice then succeeds", 2, false, 3, false, []time.Duration{5 * time.Millisecond, 10 * time.Millisecond}},
		{"exhausted", 5, false, 3, true, []time.Duration{5 * time.Millisecond, 10 * time.Millisecond}},
		{"permanent stops immediately", 5, true, 1, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			var waits []time.Duration
			got, err := Do(context.Background(), policy, func() (string, error) {
				calls++
				if calls <= tt.failures {
					if tt.permanent {
						return "", Permanent(errTransient)
					}
					return "", errTransient
				}
				return "ok", nil
			}, WithNotify(func(_ int, _ error, wait time.Duration) {
				waits = append(waits, wait)
			}))

			assert.Equal(t, tt.wantCalls, calls)
			assert.Equal(t, tt.wantWaits, waits)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errTransient)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ok", got)
		})
	}
}

func TestDoNotifyAttemptNumbers(t *testing.T) {
	var attempts []int
	_, err := Do(context.Background(), Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}, func() (int, error) {
		return 0, errTransient
	}, WithNotify(func(attempt int, _ error, _ time.Duration) {
		attempts = append(attempts, attempt)
	}))
	require.Error(t, err)
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestDoContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Do(ctx, Policy{MaxAttempts: 3, BaseDelay: time.Second}, func() (int, error) {
		calls++
		return 0, errTransient
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPolicyDelays(t *testing.T) {
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, DefaultPolicy.Delays())
	assert.Nil(t, Policy{MaxAttempts: 1, BaseDelay: time.Second}.Delays())
}
