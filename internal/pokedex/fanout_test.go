package pokedex

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itoa(i int) string { return fmt.Sprint(i) }

func TestFanOut_OrderMatchesInput(t *testing.T) {
	inputs := make([]int, 50)
	for i := range inputs {
		inputs[i] = i
	}

	out, err := fanOut(context.Background(), "square", inputs, 10, PolicyAllOrNothing, itoa,
		func(ctx context.Context, n int) (int, error) {
			time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
			return n * n, nil
		})
	require.NoError(t, err)
	require.Len(t, out, len(inputs))
	for i, v := range out {
		assert.Equal(t, i*i, v)
	}
}

func TestFanOut_RespectsConcurrencyLimit(t *testing.T) {
	var inflight, peak atomic.Int32
	inputs := make([]int, 20)

	_, err := fanOut(context.Background(), "limit", inputs, 3, PolicyAllOrNothing, itoa,
		func(ctx context.Context, _ int) (struct{}, error) {
			n := inflight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			inflight.Add(-1)
			return struct{}{}, nil
		})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestFanOut_AllOrNothingCancelsSiblings(t *testing.T) {
	boom := errors.New("boom")
	var cancelled atomic.Int32

	out, err := fanOut(context.Background(), "batch", []int{0, 1, 2, 3}, 0, PolicyAllOrNothing, itoa,
		func(ctx context.Context, n int) (int, error) {
			if n == 2 {
				return 0, boom
			}
			select {
			case <-ctx.Done():
				cancelled.Add(1)
				return 0, ctx.Err()
			case <-time.After(2 * time.Second):
				return n, nil
			}
		})
	assert.Nil(t, out)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "batch: 2: boom")
	assert.Equal(t, int32(3), cancelled.Load())
}

func TestFanOut_PartialCollectsFailures(t *testing.T) {
	odd := errors.New("odd")

	out, err := fanOut(context.Background(), "evens", []int{0, 1, 2, 3, 4}, 2, PolicyPartial, itoa,
		func(ctx context.Context, n int) (int, error) {
			if n%2 == 1 {
				return 0, odd
			}
			return n, nil
		})
	assert.Equal(t, []int{0, 2, 4}, out)

	var partial *PartialError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, "evens", partial.Op)
	require.Len(t, partial.Failures, 2)
	assert.Equal(t, 1, partial.Failures[0].Index)
	assert.Equal(t, 3, partial.Failures[1].Index)
	assert.ErrorIs(t, err, odd)
	assert.Equal(t, "evens: 2 item(s) failed: 1, 3", err.Error())
}

func TestFanOut_PartialWithCancelledParent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := fanOut(ctx, "cancelled", []int{1, 2}, 0, PolicyPartial, itoa,
		func(ctx context.Context, n int) (int, error) { return 0, ctx.Err() })
	assert.Nil(t, out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsPartial(err))
}

func TestFanOut_Empty(t *testing.T) {
	out, err := fanOut(context.Background(), "empty", []int(nil), 4, PolicyAllOrNothing, itoa,
		func(ctx context.Context, n int) (int, error) { return n, nil })
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]FailurePolicy{
		"":                 PolicyAllOrNothing,
		"all_or_nothing":   PolicyAllOrNothing,
		" ALL_OR_NOTHING ": PolicyAllOrNothing,
		"partial":          PolicyPartial,
	} {
		got, err := ParsePolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePolicy("retry")
	assert.Error(t, err)
}
