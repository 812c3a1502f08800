// Package scheduler
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	businessflow "github.com/juicebox-at/limited-builder/business_flow"
	"github.com/juicebox-at/limited-builder/config"
)

// ImageBackfillScheduler periodically scans for creations that are still
// missing an image and regenerates them. A Redis lock keeps concurrent
// replicas from running the same batch.
type ImageBackfillScheduler struct {
	adminFlow businessflow.AdminFlow
	rc        *redis.Client
	cfg       config.SchedulerConfig
	prefix    string
	logger    *log.Logger
	interval  time.Duration
}

func NewImageBackfillScheduler(
	adminFlow businessflow.AdminFlow,
	rc *redis.Client,
	cfg config.SchedulerConfig,
	redisPrefix string,
	logger *log.Logger,
) *ImageBackfillScheduler {
	interval := cfg.BackfillInterval
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if logger == nil {
		logger = log.Default()
	}

	return &ImageBackfillScheduler{
		adminFlow: adminFlow,
		rc:        rc,
		cfg:       cfg,
		prefix:    redisPrefix,
		logger:    logger,
		interval:  interval,
	}
}

// Start launches the backfill loop and returns a cancel function
func (s *ImageBackfillScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *ImageBackfillScheduler) runOnce(ctx context.Context) {
	if !s.acquireLock(ctx) {
		s.logger.Println("image backfill: another replica holds the lock, skipping run")
		return
	}
	defer s.releaseLock(ctx)

	result, err := s.adminFlow.BackfillImages(ctx)
	if err != nil {
		s.logger.Printf("image backfill: run failed: %v", err)
		return
	}

	if result.Scanned > 0 {
		s.logger.Printf("image backfill: scanned=%d generated=%d failed=%d", result.Scanned, result.Generated, len(result.Failed))
	}
}

func (s *ImageBackfillScheduler) lockKey() string {
	return s.prefix + "lock:image_backfill"
}

func (s *ImageBackfillScheduler) acquireLock(ctx context.Context) bool {
	if s.rc == nil {
		return true
	}
	ok, err := s.rc.SetNX(ctx, s.lockKey(), "1", s.interval).Result()
	if err != nil {
		s.logger.Printf("image backfill: lock acquire failed: %v", err)
		return false
	}
	return ok
}

func (s *ImageBackfillScheduler) releaseLock(ctx context.Context) {
	if s.rc == nil {
		return
	}
	if err := s.rc.Del(ctx, s.lockKey()).Err(); err != nil {
		s.logger.Printf("image backfill: lock release failed: %v", err)
	}
}
