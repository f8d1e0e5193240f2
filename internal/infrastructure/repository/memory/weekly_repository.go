package memory

import (
	"context"
	"sync"
	"time"

	"github.com/musileague/backend/internal/domain/weekly"
)

type weeklyKey struct {
	week     int
	artistID string
}

type SnapshotRepository struct {
	mu    sync.RWMutex
	items map[weeklyKey]weekly.Snapshot
}

func NewSnapshotRepository(snapshots []weekly.Snapshot) *SnapshotRepository {
	items := make(map[weeklyKey]weekly.Snapshot, len(snapshots))
	for _, s := range snapshots {
		items[weeklyKey{week: s.WeekNumber, artistID: s.ArtistID}] = s
	}
	return &SnapshotRepository{items: items}
}

func (r *SnapshotRepository) MaxWeekSince(_ context.Context, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	max := 0
	for _, s := range r.items {
		if s.CreatedAt.Before(since) {
			continue
		}
		if s.WeekNumber > max {
			max = s.WeekNumber
		}
	}
	return max, nil
}

func (r *SnapshotRepository) Exists(_ context.Context, weekNumber int, artistID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.items[weeklyKey{week: weekNumber, artistID: artistID}]
	return ok, nil
}

func (r *SnapshotRepository) InsertIfAbsent(_ context.Context, item weekly.Snapshot) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := weeklyKey{week: item.WeekNumber, artistID: item.ArtistID}
	if _, exists := r.items[key]; exists {
		return false, nil
	}
	r.items[key] = item
	return true, nil
}

func (r *SnapshotRepository) WeekStartedAt(_ context.Context, weekNumber int) (time.Time, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var earliest time.Time
	found := false
	for _, s := range r.items {
		if s.WeekNumber != weekNumber {
			continue
		}
		if !found || s.CreatedAt.Before(earliest) {
			earliest = s.CreatedAt
			found = true
		}
	}
	return earliest, found, nil
}

type ScoreRepository struct {
	mu    sync.RWMutex
	items map[weeklyKey]weekly.Score
}

func NewScoreRepository(scores []weekly.Score) *ScoreRepository {
	items := make(map[weeklyKey]weekly.Score, len(scores))
	for _, s := range scores {
		items[weeklyKey{week: s.WeekNumber, artistID: s.ArtistID}] = s
	}
	return &ScoreRepository{items: items}
}

func (r *ScoreRepository) Add(score weekly.Score) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[weeklyKey{week: score.WeekNumber, artistID: score.ArtistID}] = score
}

func (r *ScoreRepository) MaxWeekSince(_ context.Context, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	max := 0
	for _, s := range r.items {
		if s.CreatedAt.Before(since) {
			continue
		}
		if s.WeekNumber > max {
			max = s.WeekNumber
		}
	}
	return max, nil
}

func (r *ScoreRepository) GetByWeekAndArtists(_ context.Context, weekNumber int, artistIDs []string) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int, len(artistIDs))
	for _, id := range artistIDs {
		if s, ok := r.items[weeklyKey{week: weekNumber, artistID: id}]; ok {
			out[id] = s.TotalPoints
		}
	}
	return out, nil
}
