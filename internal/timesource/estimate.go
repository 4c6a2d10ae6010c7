// ABOUTME: Offset aggregator reducing repeated samples to one estimate
// ABOUTME: Strictly sequential sampling; any sample failure aborts the pass
package timesource

import (
	"context"
	"fmt"
	"time"
)

// EstimateOptions controls one aggregation pass.
type EstimateOptions struct {
	// Samples is the number of round trips per pass.
	Samples int
	// Interval is the sleep between consecutive samples. Samples run
	// sequentially on purpose: concurrent requests contend for bandwidth
	// and break the symmetric-latency assumption.
	Interval time.Duration
	// Trim drops the single lowest and single highest offset before
	// averaging, when more than two samples were collected. The range is
	// still computed over all samples.
	Trim bool
}

// DefaultEstimateOptions smooths transient jitter while keeping a full
// pass under about one second.
func DefaultEstimateOptions() EstimateOptions {
	return EstimateOptions{Samples: 5, Interval: 100 * time.Millisecond}
}

// Estimate drives the sampler opts.Samples times and reduces the batch to
// an OffsetEstimate. Sample i+1 starts only after sample i's response and
// the inter-sample interval have elapsed. Any failure aborts the whole
// pass; there is no partial-aggregate fallback.
func Estimate(ctx context.Context, sampler Sampler, opts EstimateOptions) (OffsetEstimate, error) {
	if opts.Samples <= 0 {
		opts.Samples = DefaultEstimateOptions().Samples
	}

	offsets := make([]float64, 0, opts.Samples)
	for i := 0; i < opts.Samples; i++ {
		if i > 0 && opts.Interval > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(opts.Interval):
			}
		}
		// Checked outside the select: when both cases are ready the
		// runtime picks one at random, and a cancelled pass must never
		// issue another round trip.
		if err := ctx.Err(); err != nil {
			return OffsetEstimate{}, fmt.Errorf("%w: %v", ErrNetwork, err)
		}

		sample, err := sampler.Sample(ctx)
		if err != nil {
			return OffsetEstimate{}, fmt.Errorf("sample %d/%d: %w", i+1, opts.Samples, err)
		}
		offsets = append(offsets, sample.OffsetMs)
	}

	return reduce(offsets, opts.Trim), nil
}

// reduce folds a non-empty batch of offsets into the aggregate.
func reduce(offsets []float64, trim bool) OffsetEstimate {
	min, max := offsets[0], offsets[0]
	sum := 0.0
	for _, v := range offsets {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}

	count := len(offsets)
	if trim && count > 2 {
		// Drop one instance of the extremes; duplicates keep the rest.
		sum -= min + max
		count -= 2
	}

	return OffsetEstimate{
		AverageMs: sum / float64(count),
		RangeMs:   max - min,
	}
}
