// Package scheduler drives periodic market scans on a cron schedule and
// keeps the most recent result available for readers.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/newthinker/pulse/internal/core"
	"github.com/newthinker/pulse/internal/metrics"
	"github.com/newthinker/pulse/internal/scanner"
)

// Scheduler runs scans on a cron schedule. Overlapping runs are skipped
// rather than queued; a scan that outlives its interval is already late.
type Scheduler struct {
	cron    *cron.Cron
	scanner *scanner.Scanner
	cache   *scanner.ResultCache
	logger  *zap.Logger
	metrics *metrics.Registry

	mu      sync.Mutex
	running bool
	latest  *core.ScanResult
	lastErr error
}

// New creates a scheduler around a scanner. The cache may be nil when no
// result reuse is wanted.
func New(s *scanner.Scanner, cache *scanner.ResultCache, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:    cron.New(),
		scanner: s,
		cache:   cache,
		logger:  logger,
	}
}

// SetMetrics attaches an optional metrics registry
func (s *Scheduler) SetMetrics(m *metrics.Registry) {
	s.metrics = m
}

// Register adds the scan job under the given cron expression.
func (s *Scheduler) Register(ctx context.Context, spec string, cacheKey string) error {
	if _, err := s.cron.AddFunc(spec, func() {
		s.runOnce(ctx, cacheKey)
	}); err != nil {
		return fmt.Errorf("register scan job: %w", err)
	}
	return nil
}

// Start starts the cron loop.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop stops the cron loop and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunNow triggers one scan immediately, outside the schedule.
func (s *Scheduler) RunNow(ctx context.Context, cacheKey string) (*core.ScanResult, error) {
	s.runOnce(ctx, cacheKey)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.lastErr
}

// Latest returns the most recent scan result, or nil before the first
// completed scan.
func (s *Scheduler) Latest() *core.ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

func (s *Scheduler) runOnce(ctx context.Context, cacheKey string) {
	// A result still inside its staleness window makes a new fetch pointless;
	// serve it instead.
	if s.cache != nil && cacheKey != "" {
		if cached, ok := s.cache.Get(cacheKey); ok {
			if s.metrics != nil {
				s.metrics.RecordCacheHit()
			}
			s.mu.Lock()
			s.latest = cached
			s.lastErr = nil
			s.mu.Unlock()
			s.logger.Debug("serving cached scan result",
				zap.Time("generated_at", cached.GeneratedAt),
			)
			return
		}
		if s.metrics != nil {
			s.metrics.RecordCacheMiss()
		}
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("scan still in progress, skipping this run")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	started := time.Now()
	result, err := s.scanner.Scan(ctx)

	s.mu.Lock()
	s.lastErr = err
	if err == nil {
		s.latest = result
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("scheduled scan failed",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(started)),
		)
		return
	}

	if s.cache != nil && cacheKey != "" {
		s.cache.Put(cacheKey, result)
	}
}
