package weekly

import (
	"context"
	"time"
)

// SnapshotRepository reads and appends weekly popularity snapshots.
// InsertIfAbsent must be first-writer-wins: when a snapshot already
// exists for (week, artist) the call is a no-op and reports false.
type SnapshotRepository interface {
	MaxWeekSince(ctx context.Context, since time.Time) (int, error)
	Exists(ctx context.Context, weekNumber int, artistID string) (bool, error)
	InsertIfAbsent(ctx context.Context, item Snapshot) (bool, error)
	WeekStartedAt(ctx context.Context, weekNumber int) (time.Time, bool, error)
}

// ScoreRepository reads the weekly scores produced by the external
// batch process.
type ScoreRepository interface {
	MaxWeekSince(ctx context.Context, since time.Time) (int, error)
	GetByWeekAndArtists(ctx context.Context, weekNumber int, artistIDs []string) (map[string]int, error)
}
