// ABOUTME: Tests for the offset aggregator
// ABOUTME: Covers averaging, range, trimming, and abort-on-failure
package timesource

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// queueSampler replays a fixed sequence of samples or errors.
type queueSampler struct {
	offsets []float64
	failAt  int // 1-based sample index that fails; 0 = never
	calls   int
}

func (q *queueSampler) Sample(ctx context.Context) (TimeSample, error) {
	q.calls++
	if q.failAt != 0 && q.calls == q.failAt {
		return TimeSample{}, fmt.Errorf("%w: injected", ErrNetwork)
	}
	return TimeSample{OffsetMs: q.offsets[q.calls-1]}, nil
}

func TestEstimateIdenticalSamples(t *testing.T) {
	sampler := &queueSampler{offsets: []float64{250, 250, 250, 250, 250}}

	est, err := Estimate(context.Background(), sampler, EstimateOptions{Samples: 5})
	require.NoError(t, err)
	assert.Equal(t, 250.0, est.AverageMs)
	assert.Equal(t, 0.0, est.RangeMs)
	assert.Equal(t, 0.0, est.UncertaintyMs())
	assert.Equal(t, 5, sampler.calls)
}

func TestEstimateMeanAndRange(t *testing.T) {
	sampler := &queueSampler{offsets: []float64{10, 20, 30, 40, 100}}

	est, err := Estimate(context.Background(), sampler, EstimateOptions{Samples: 5})
	require.NoError(t, err)
	assert.InDelta(t, 40, est.AverageMs, 1e-9)
	assert.InDelta(t, 90, est.RangeMs, 1e-9)
	assert.InDelta(t, 45, est.UncertaintyMs(), 1e-9)
}

func TestEstimateTrimmedMean(t *testing.T) {
	sampler := &queueSampler{offsets: []float64{10, 20, 30, 40, 100}}

	est, err := Estimate(context.Background(), sampler, EstimateOptions{Samples: 5, Trim: true})
	require.NoError(t, err)
	// Extremes 10 and 100 excluded from the average.
	assert.InDelta(t, 30, est.AverageMs, 1e-9)
	// Range still reports the full spread.
	assert.InDelta(t, 90, est.RangeMs, 1e-9)
}

func TestEstimateTrimIgnoredForTinyBatches(t *testing.T) {
	sampler := &queueSampler{offsets: []float64{10, 100}}

	est, err := Estimate(context.Background(), sampler, EstimateOptions{Samples: 2, Trim: true})
	require.NoError(t, err)
	assert.InDelta(t, 55, est.AverageMs, 1e-9)
}

func TestEstimateAbortsOnAnyFailure(t *testing.T) {
	for _, failAt := range []int{1, 3, 5} {
		t.Run(fmt.Sprintf("failure at sample %d", failAt), func(t *testing.T) {
			sampler := &queueSampler{
				offsets: []float64{1, 2, 3, 4, 5},
				failAt:  failAt,
			}

			_, err := Estimate(context.Background(), sampler, EstimateOptions{Samples: 5})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNetwork))
			// No samples are issued past the failure.
			assert.Equal(t, failAt, sampler.calls)
		})
	}
}

func TestEstimateCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sampler := &queueSampler{offsets: []float64{1, 2, 3}}

	cancel()
	_, err := Estimate(ctx, sampler, EstimateOptions{Samples: 3, Interval: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
	assert.Equal(t, 0, sampler.calls, "cancelled pass issues no round trips")
}

// cancellingSampler cancels its own context after a given sample.
type cancellingSampler struct {
	inner    queueSampler
	cancelAt int
	cancel   context.CancelFunc
}

func (c *cancellingSampler) Sample(ctx context.Context) (TimeSample, error) {
	sample, err := c.inner.Sample(ctx)
	if c.inner.calls == c.cancelAt {
		c.cancel()
	}
	return sample, err
}

func TestEstimateCancelledBetweenSamples(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sampler := &cancellingSampler{
		inner:    queueSampler{offsets: []float64{1, 2, 3, 4, 5}},
		cancelAt: 2,
		cancel:   cancel,
	}

	_, err := Estimate(ctx, sampler, EstimateOptions{Samples: 5, Interval: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
	assert.Equal(t, 2, sampler.inner.calls, "no samples issued after cancellation")
}

func TestEstimateDefaultsSampleCount(t *testing.T) {
	sampler := &queueSampler{offsets: []float64{1, 1, 1, 1, 1}}

	_, err := Estimate(context.Background(), sampler, EstimateOptions{})
	require.NoError(t, err)
	assert.Equal(t, 5, sampler.calls)
}
