package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/musileague/backend/internal/domain/artist"
	"github.com/musileague/backend/internal/domain/roster"
	"github.com/musileague/backend/internal/domain/season"
	"github.com/musileague/backend/internal/platform/logging"
)

const (
	refreshStatusSuccess = "success"
	refreshStatusFailed  = "failed"
	refreshStatusSkipped = "skipped"

	defaultRefreshWorkers = 4
	maxRefreshWorkers     = 16
	refreshBatchSize      = 50
)

type RefreshInput struct {
	// ArtistIDs narrows the refresh; empty means every artist
	// currently on a roster in the active season.
	ArtistIDs  []string
	MaxWorkers int
}

type RefreshResult struct {
	ArtistCount  int                  `json:"artist_count"`
	BatchCount   int                  `json:"batch_count"`
	SuccessCount int                  `json:"success_count"`
	FailedCount  int                  `json:"failed_count"`
	SkippedCount int                  `json:"skipped_count"`
	WorkerCount  int                  `json:"worker_count"`
	Batches      []RefreshBatchResult `json:"batches"`
}

type RefreshBatchResult struct {
	ArtistIDs  []string `json:"artist_ids"`
	Status     string   `json:"status"`
	Records    int      `json:"records"`
	DurationMs int64    `json:"duration_ms"`
	Message    string   `json:"message,omitempty"`
}

// ArtistRefreshService re-pulls current popularity and follower
// figures for rostered artists and rewrites the cache. Batches run on
// a bounded worker pool so a large artist set cannot hammer the
// upstream provider.
type ArtistRefreshService struct {
	seasonRepo season.Repository
	rosterRepo roster.ArtistLister
	cache      artist.Repository
	metadata   ArtistMetadataProvider
	queue      JobQueue
	interval   time.Duration
	logger     *logging.Logger
	now        func() time.Time
}

func NewArtistRefreshService(
	seasonRepo season.Repository,
	rosterRepo roster.ArtistLister,
	cache artist.Repository,
	metadata ArtistMetadataProvider,
	logger *logging.Logger,
) *ArtistRefreshService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ArtistRefreshService{
		seasonRepo: seasonRepo,
		rosterRepo: rosterRepo,
		cache:      cache,
		metadata:   metadata,
		queue:      NewNoopJobQueue(),
		interval:   defaultRefreshInterval,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *ArtistRefreshService) Refresh(ctx context.Context, input RefreshInput) (RefreshResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ArtistRefreshService.Refresh")
	defer span.End()

	if s.metadata == nil {
		return RefreshResult{}, fmt.Errorf("%w: artist metadata provider is not configured", ErrDependencyUnavailable)
	}

	artistIDs := input.ArtistIDs
	fullRefresh := len(artistIDs) == 0
	if fullRefresh {
		active, exists, err := s.seasonRepo.GetActive(ctx)
		if err != nil {
			return RefreshResult{}, fmt.Errorf("get active season: %w", err)
		}
		if !exists {
			return RefreshResult{}, fmt.Errorf("%w: no active season", ErrNotFound)
		}
		artistIDs, err = s.rosterRepo.ListRosteredArtistIDs(ctx, active.ID)
		if err != nil {
			return RefreshResult{}, fmt.Errorf("list rostered artists: %w", err)
		}
	}
	artistIDs = dedupeIDs(artistIDs)
	sort.Strings(artistIDs)

	batches := batchIDs(artistIDs, refreshBatchSize)
	workerCount := normalizeRefreshWorkerCount(input.MaxWorkers, len(batches))

	result := RefreshResult{
		ArtistCount: len(artistIDs),
		BatchCount:  len(batches),
		WorkerCount: workerCount,
		Batches:     make([]RefreshBatchResult, 0, len(batches)),
	}
	if len(batches) == 0 {
		if fullRefresh {
			s.scheduleNext(ctx)
		}
		return result, nil
	}

	rows := make(chan RefreshBatchResult, len(batches))

	var successCount atomic.Int32
	var failedCount atomic.Int32
	var skippedCount atomic.Int32

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, batch := range batches {
		batch := batch
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := RefreshBatchResult{ArtistIDs: batch}

			records, status, message := s.refreshBatch(ctx, batch)
			row.Records = records
			row.Status = status
			row.Message = message
			row.DurationMs = time.Since(start).Milliseconds()

			switch status {
			case refreshStatusSuccess:
				successCount.Add(1)
			case refreshStatusSkipped:
				skippedCount.Add(1)
			default:
				failedCount.Add(1)
			}

			rows <- row
		}); err != nil {
			workers.Done()
			return RefreshResult{}, fmt.Errorf("submit batch to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(rows)

	for row := range rows {
		result.Batches = append(result.Batches, row)
	}
	sort.SliceStable(result.Batches, func(i, j int) bool {
		return firstID(result.Batches[i].ArtistIDs) < firstID(result.Batches[j].ArtistIDs)
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())
	result.SkippedCount = int(skippedCount.Load())

	s.logger.InfoContext(ctx, "artist refresh finished",
		"artist_count", result.ArtistCount,
		"batch_count", result.BatchCount,
		"success_count", result.SuccessCount,
		"failed_count", result.FailedCount,
	)

	if fullRefresh {
		s.scheduleNext(ctx)
	}
	return result, nil
}

func (s *ArtistRefreshService) refreshBatch(ctx context.Context, artistIDs []string) (int, string, string) {
	fetched, err := s.metadata.GetArtists(ctx, artistIDs)
	if err != nil {
		return 0, refreshStatusFailed, err.Error()
	}
	if len(fetched) == 0 {
		return 0, refreshStatusSkipped, "provider returned no artists for batch"
	}

	now := s.now().UTC()
	for i := range fetched {
		fetched[i].UpdatedAt = now
	}
	if err := s.cache.Upsert(ctx, fetched); err != nil {
		return 0, refreshStatusFailed, err.Error()
	}
	return len(fetched), refreshStatusSuccess, ""
}

func normalizeRefreshWorkerCount(requested, batchCount int) int {
	count := requested
	if count <= 0 {
		count = defaultRefreshWorkers
	}
	if count > maxRefreshWorkers {
		count = maxRefreshWorkers
	}
	if batchCount > 0 && count > batchCount {
		count = batchCount
	}
	if count < 1 {
		count = 1
	}
	return count
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func batchIDs(ids []string, size int) [][]string {
	if size <= 0 {
		size = refreshBatchSize
	}
	batches := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}

func firstID(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}
