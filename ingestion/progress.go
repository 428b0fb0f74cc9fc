package ingestion

import (
	"log/slog"
	"sync"
	"time"
)

// progressReporter logs batch progress every interval completions.
type progressReporter struct {
	logger       *slog.Logger
	total        int
	interval     int
	current      int
	lastReported int
	startTime    time.Time
	mu           sync.Mutex
}

func newProgressReporter(logger *slog.Logger, total, interval int) *progressReporter {
	return &progressReporter{
		logger:    logger,
		total:     total,
		interval:  interval,
		startTime: time.Now(),
	}
}

// Increment counts one completed query.
func (p *progressReporter) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current < p.total {
		p.current++
	}

	if p.current < p.total && p.current-p.lastReported >= p.interval {
		p.report()
		p.lastReported = p.current
	}
}

// Completed returns the number of completed queries.
func (p *progressReporter) Completed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// report logs the current progress. Must be called with lock held.
func (p *progressReporter) report() {
	elapsed := time.Since(p.startTime)
	rate := 0.0
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(p.current) / secs
	}
	p.logger.Info("import progress",
		"completed", p.current,
		"remaining", p.total-p.current,
		"total", p.total,
		"rate", rate)
}
