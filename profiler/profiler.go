// Package profiler - Operation timing and counters for the detection pipeline.
package profiler

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// RuntimeProfiler tracks operation timings and custom counters, and can emit
// periodic reports through the logger. It is safe for concurrent use.
type RuntimeProfiler struct {
	reportInterval time.Duration
	maxSamples     int

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.RWMutex
	startTime time.Time
	running   bool

	counters       map[string]int64
	operationTimes map[string]*TimeTracker
}

// TimeTracker tracks operation timing statistics over a sliding window.
type TimeTracker struct {
	durations []time.Duration
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// ProfilingOptions configures the runtime profiler.
type ProfilingOptions struct {
	// ReportInterval specifies how often to emit status reports (default: 30s)
	ReportInterval time.Duration
	// MaxSamples specifies how many durations to keep per operation (default: 1000)
	MaxSamples int
}

// OperationStats summarizes one operation's recorded durations.
type OperationStats struct {
	Count int64         `json:"count"`
	Min   time.Duration `json:"min_ns"`
	Max   time.Duration `json:"max_ns"`
	Mean  time.Duration `json:"mean_ns"`
	Total time.Duration `json:"total_ns"`
}

// Snapshot is a point-in-time copy of the profiler's state.
type Snapshot struct {
	Uptime     time.Duration             `json:"uptime_ns"`
	Goroutines int                       `json:"goroutines"`
	HeapAlloc  uint64                    `json:"heap_alloc_bytes"`
	Operations map[string]OperationStats `json:"operations"`
	Counters   map[string]int64          `json:"counters"`
}

// NewRuntimeProfiler creates a new runtime profiler with the specified options.
//
// Arguments:
// - opts: Configuration options for the profiler
//
// Returns:
// - A configured RuntimeProfiler instance
func NewRuntimeProfiler(opts ProfilingOptions) *RuntimeProfiler {
	if opts.ReportInterval == 0 {
		opts.ReportInterval = 30 * time.Second
	}
	if opts.MaxSamples == 0 {
		opts.MaxSamples = 1000
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &RuntimeProfiler{
		reportInterval: opts.ReportInterval,
		maxSamples:     opts.MaxSamples,
		ctx:            ctx,
		cancel:         cancel,
		startTime:      time.Now(),
		counters:       make(map[string]int64),
		operationTimes: make(map[string]*TimeTracker),
	}
}

// Start begins emitting periodic reports. Calling it twice is a no-op.
func (rp *RuntimeProfiler) Start() {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	if rp.running {
		return
	}
	rp.running = true

	rp.wg.Add(1)
	go func() {
		defer rp.wg.Done()

		ticker := time.NewTicker(rp.reportInterval)
		defer ticker.Stop()

		for {
			select {
			case <-rp.ctx.Done():
				return
			case <-ticker.C:
				rp.emitStatusReport()
			}
		}
	}()
}

// Stop stops reporting and waits for the reporter to exit.
func (rp *RuntimeProfiler) Stop() {
	rp.mu.Lock()
	if !rp.running {
		rp.mu.Unlock()
		return
	}
	rp.running = false
	rp.mu.Unlock()

	rp.cancel()
	rp.wg.Wait()
}

// Add increments a named counter.
func (rp *RuntimeProfiler) Add(name string, delta int64) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.counters[name] += delta
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track
//
// Returns:
// - A function to call when the operation completes
//
// @example
// done := rp.StartOperation("detect")
// boxes, err := detector.Detect(ctx, frame)
// done()
func (rp *RuntimeProfiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		rp.recordOperationTime(name, time.Since(start))
	}
}

func (rp *RuntimeProfiler) recordOperationTime(name string, duration time.Duration) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	tracker, exists := rp.operationTimes[name]
	if !exists {
		tracker = &TimeTracker{minTime: duration, maxTime: duration}
		rp.operationTimes[name] = tracker
	}

	tracker.durations = append(tracker.durations, duration)
	if len(tracker.durations) > rp.maxSamples {
		// Drop the oldest sample.
		tracker.totalTime -= tracker.durations[0]
		tracker.durations = tracker.durations[1:]
	}

	tracker.totalTime += duration
	tracker.count++
	tracker.minTime = min(tracker.minTime, duration)
	tracker.maxTime = max(tracker.maxTime, duration)
}

// Snapshot returns the current statistics. Min and Max cover every recorded
// duration; Mean and Total cover the sliding window.
func (rp *RuntimeProfiler) Snapshot() Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	rp.mu.RLock()
	defer rp.mu.RUnlock()

	snap := Snapshot{
		Uptime:     time.Since(rp.startTime),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  mem.HeapAlloc,
		Operations: make(map[string]OperationStats, len(rp.operationTimes)),
		Counters:   make(map[string]int64, len(rp.counters)),
	}

	for name, tracker := range rp.operationTimes {
		stats := OperationStats{
			Count: tracker.count,
			Min:   tracker.minTime,
			Max:   tracker.maxTime,
			Total: tracker.totalTime,
		}
		if n := len(tracker.durations); n > 0 {
			stats.Mean = tracker.totalTime / time.Duration(n)
		}
		snap.Operations[name] = stats
	}
	for name, v := range rp.counters {
		snap.Counters[name] = v
	}
	return snap
}

func (rp *RuntimeProfiler) emitStatusReport() {
	snap := rp.Snapshot()

	names := make([]string, 0, len(snap.Operations))
	for name := range snap.Operations {
		names = append(names, name)
	}
	sort.Strings(names)

	log.Info().
		Dur("uptime", snap.Uptime.Truncate(time.Millisecond)).
		Int("goroutines", snap.Goroutines).
		Uint64("heap_alloc", snap.HeapAlloc).
		Interface("counters", snap.Counters).
		Msg("runtime profiler status")

	for _, name := range names {
		op := snap.Operations[name]
		log.Info().
			Str("operation", name).
			Int64("count", op.Count).
			Dur("avg", op.Mean.Truncate(time.Microsecond)).
			Dur("min", op.Min.Truncate(time.Microsecond)).
			Dur("max", op.Max.Truncate(time.Microsecond)).
			Msg("operation timing")
	}
}
