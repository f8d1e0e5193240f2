package usecase

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

const (
	defaultRefreshInterval = 6 * time.Hour
	refreshJobPath         = "/v1/internal/jobs/refresh-artists"
)

// JobQueue schedules a delayed HTTP callback to an internal route.
// The deduplication id collapses duplicate submissions for the same
// time window.
type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// refreshJobPayload mirrors the internal refresh route's request body.
type refreshJobPayload struct {
	ArtistIDs  []string `json:"artist_ids,omitempty"`
	MaxWorkers int      `json:"max_workers,omitempty"`
}

// UseQueue wires the recurring schedule: every full refresh re-enqueues
// the next one through the queue. Interval <= 0 keeps the default.
func (s *ArtistRefreshService) UseQueue(queue JobQueue, interval time.Duration) {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	s.queue = queue
	s.interval = interval
}

// Bootstrap enqueues the first refresh run. The dedup id is anchored
// to the current interval window so a fleet of restarting instances
// cannot stack up duplicate jobs.
func (s *ArtistRefreshService) Bootstrap(ctx context.Context) error {
	if err := s.queue.Enqueue(ctx, refreshJobPath, refreshJobPayload{}, 0, s.refreshDedupID(s.now())); err != nil {
		return fmt.Errorf("enqueue bootstrap refresh: %w", err)
	}
	return nil
}

func (s *ArtistRefreshService) scheduleNext(ctx context.Context) {
	next := s.now().Add(s.interval)
	if err := s.queue.Enqueue(ctx, refreshJobPath, refreshJobPayload{}, s.interval, s.refreshDedupID(next)); err != nil {
		s.logger.WarnContext(ctx, "schedule next artist refresh failed", "error", err)
	}
}

func (s *ArtistRefreshService) refreshDedupID(at time.Time) string {
	window := at.UTC().Truncate(s.interval)
	raw := "refresh-artists-" + window.Format("20060102T150405")
	return dedupUnsafeCharRegex.ReplaceAllString(raw, "-")
}
