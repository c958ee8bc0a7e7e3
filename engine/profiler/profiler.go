// package profiler tracks frame rate and memory statistics for performance
// monitoring of render loops.
package profiler

import (
	"log/slog"
	"runtime"
	"time"
)

// Stats is one interval's worth of frame and memory measurements.
type Stats struct {
	// FPS is the average frames per second over the interval.
	FPS float64

	// HeapMB is the live heap size in megabytes.
	HeapMB float64

	// AllocRateMB is the heap allocation churn in megabytes per second.
	AllocRateMB float64

	// GCCount is the cumulative garbage collection count.
	GCCount uint32

	// LastPauseUs is the most recent GC pause in microseconds.
	LastPauseUs uint64

	// MaxPauseUs is the largest GC pause observed this interval, in microseconds.
	MaxPauseUs uint64

	// SysMB is the total memory obtained from the OS in megabytes.
	SysMB float64
}

// Profiler samples frame timing and memory statistics, emitting a structured
// log record once per interval.
type Profiler struct {
	logger         *slog.Logger
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// ProfilerOption is a functional option for configuring a Profiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often Tick emits statistics. Defaults to one second.
//
// Parameters:
//   - interval: the reporting interval
//
// Returns:
//   - ProfilerOption: option function to apply
func WithInterval(interval time.Duration) ProfilerOption {
	return func(p *Profiler) {
		p.updateInterval = interval
	}
}

// WithLogger sets the logger statistics are emitted through.
// Defaults to slog.Default().
//
// Parameters:
//   - logger: the structured logger to emit to
//
// Returns:
//   - ProfilerOption: option function to apply
func WithLogger(logger *slog.Logger) ProfilerOption {
	return func(p *Profiler) {
		p.logger = logger
	}
}

// NewProfiler creates a new Profiler.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		logger:         slog.Default(),
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Tick should be called once per frame. When the reporting interval has
// elapsed it reads memory statistics, logs them, and returns the sample.
//
// Returns:
//   - Stats: the interval's measurements, meaningful only when emitted
//   - bool: true if stats were emitted this tick
func (p *Profiler) Tick() (Stats, bool) {
	p.frameCount++
	now := time.Now()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Stats{}, false
	}

	runtime.ReadMemStats(&p.memStats)

	stats := Stats{
		FPS:    float64(p.frameCount) / elapsed.Seconds(),
		HeapMB: float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:  float64(p.memStats.Sys) / 1024 / 1024,
	}

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	stats.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	stats.GCCount = p.memStats.NumGC
	if stats.GCCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses.
		stats.LastPauseUs = p.memStats.PauseNs[(stats.GCCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if stats.GCCount-startIdx > 256 {
			startIdx = stats.GCCount - 256
		}
		for i := startIdx; i < stats.GCCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > stats.MaxPauseUs {
				stats.MaxPauseUs = pause
			}
		}
	}

	p.logger.Info("frame stats",
		"fps", stats.FPS,
		"heap_mb", stats.HeapMB,
		"alloc_rate_mb", stats.AllocRateMB,
		"gc", stats.GCCount,
		"gc_last_us", stats.LastPauseUs,
		"gc_max_us", stats.MaxPauseUs,
		"sys_mb", stats.SysMB,
	)

	p.frameCount = 0
	p.lastTime = now
	p.lastGCCount = stats.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return stats, true
}
