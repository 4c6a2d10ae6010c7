// ABOUTME: Diagnostic tool running offset estimation passes against a source
// ABOUTME: Prints per-sample offsets, the aggregate, and the ± uncertainty
package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/chronosync/chrono-go/internal/timesource"
)

var (
	sourceURL  = flag.String("source", "http://localhost:8123/api/time", "Time endpoint URL")
	ntpServer  = flag.String("ntp", "", "Probe an NTP server instead of --source")
	samples    = flag.Int("samples", 5, "Samples per estimation pass")
	intervalMs = flag.Int("interval-ms", 100, "Delay between samples in milliseconds")
	trim       = flag.Bool("trim", false, "Drop min/max sample before averaging")
	passes     = flag.Int("passes", 1, "Number of estimation passes")
)

func main() {
	flag.Parse()

	var sampler timesource.Sampler
	var name string
	switch {
	case *ntpServer != "":
		sampler = timesource.NewNTPSampler(*ntpServer)
		name = "ntp://" + *ntpServer
	case strings.HasPrefix(*sourceURL, "ws://") || strings.HasPrefix(*sourceURL, "wss://"):
		sampler = timesource.NewWebSocketSampler(*sourceURL)
		name = *sourceURL
	default:
		sampler = timesource.NewHTTPSampler(*sourceURL)
		name = *sourceURL
	}

	fmt.Printf("Probing %s (%d samples per pass, %dms apart, trim=%v)\n",
		name, *samples, *intervalMs, *trim)

	opts := timesource.EstimateOptions{
		Samples:  *samples,
		Interval: time.Duration(*intervalMs) * time.Millisecond,
		Trim:     *trim,
	}

	for pass := 1; pass <= *passes; pass++ {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		start := time.Now()
		est, err := timesource.Estimate(ctx, sampler, opts)
		cancel()

		if err != nil {
			log.Fatalf("pass %d failed: %v", pass, err)
		}

		fmt.Printf("pass %d: offset %+.2fms ±%.2fms (range %.2fms, took %v)\n",
			pass, est.AverageMs, est.UncertaintyMs(), est.RangeMs,
			time.Since(start).Round(time.Millisecond))

		if pass < *passes {
			time.Sleep(time.Second)
		}
	}
}
