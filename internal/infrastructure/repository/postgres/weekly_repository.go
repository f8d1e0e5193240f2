package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/musileague/backend/internal/domain/weekly"
	qb "github.com/musileague/backend/internal/platform/querybuilder"
)

type snapshotInsertModel struct {
	WeekNumber     int       `db:"week_number"`
	ArtistPublicID string    `db:"artist_public_id"`
	Popularity     int       `db:"popularity"`
	Followers      int64     `db:"followers"`
	CreatedAt      time.Time `db:"created_at"`
}

type SnapshotRepository struct {
	db *sqlx.DB
}

func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) MaxWeekSince(ctx context.Context, since time.Time) (int, error) {
	query, args, err := qb.Select("COALESCE(MAX(week_number), 0)").
		From("weekly_snapshots").
		Where(qb.Gte("created_at", since)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build max snapshot week query: %w", err)
	}

	var week int
	if err := r.db.GetContext(ctx, &week, query, args...); err != nil {
		return 0, fmt.Errorf("max snapshot week: %w", err)
	}
	return week, nil
}

func (r *SnapshotRepository) Exists(ctx context.Context, weekNumber int, artistID string) (bool, error) {
	query, args, err := qb.Select("COUNT(1)").
		From("weekly_snapshots").
		Where(
			qb.Eq("week_number", weekNumber),
			qb.Eq("artist_public_id", artistID),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build snapshot exists query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("snapshot exists: %w", err)
	}
	return count > 0, nil
}

// InsertIfAbsent freezes the snapshot unless the week already has one
// for this artist. First writer wins; the loser is reported as not
// inserted, never as an error.
func (r *SnapshotRepository) InsertIfAbsent(ctx context.Context, item weekly.Snapshot) (bool, error) {
	model := snapshotInsertModel{
		WeekNumber:     item.WeekNumber,
		ArtistPublicID: item.ArtistID,
		Popularity:     item.Popularity,
		Followers:      item.Followers,
		CreatedAt:      item.CreatedAt,
	}

	query, args, err := qb.InsertModel("weekly_snapshots", model,
		"ON CONFLICT (week_number, artist_public_id) DO NOTHING")
	if err != nil {
		return false, fmt.Errorf("build insert snapshot query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert snapshot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert snapshot rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *SnapshotRepository) WeekStartedAt(ctx context.Context, weekNumber int) (time.Time, bool, error) {
	query, args, err := qb.Select("MIN(created_at)").
		From("weekly_snapshots").
		Where(qb.Eq("week_number", weekNumber)).
		ToSQL()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("build week started at query: %w", err)
	}

	var startedAt *time.Time
	if err := r.db.GetContext(ctx, &startedAt, query, args...); err != nil {
		return time.Time{}, false, fmt.Errorf("week started at: %w", err)
	}
	if startedAt == nil {
		return time.Time{}, false, nil
	}
	return *startedAt, true, nil
}

type ScoreRepository struct {
	db *sqlx.DB
}

func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

func (r *ScoreRepository) MaxWeekSince(ctx context.Context, since time.Time) (int, error) {
	query, args, err := qb.Select("COALESCE(MAX(week_number), 0)").
		From("weekly_scores").
		Where(qb.Gte("created_at", since)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build max score week query: %w", err)
	}

	var week int
	if err := r.db.GetContext(ctx, &week, query, args...); err != nil {
		return 0, fmt.Errorf("max score week: %w", err)
	}
	return week, nil
}

func (r *ScoreRepository) GetByWeekAndArtists(ctx context.Context, weekNumber int, artistIDs []string) (map[string]int, error) {
	if len(artistIDs) == 0 {
		return map[string]int{}, nil
	}

	values := make([]any, 0, len(artistIDs))
	for _, id := range artistIDs {
		values = append(values, id)
	}

	query, args, err := qb.Select("artist_public_id", "total_points").
		From("weekly_scores").
		Where(
			qb.Eq("week_number", weekNumber),
			qb.In("artist_public_id", values),
		).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get weekly scores query: %w", err)
	}

	type scoreRow struct {
		ArtistPublicID string `db:"artist_public_id"`
		TotalPoints    int    `db:"total_points"`
	}

	var rows []scoreRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get weekly scores: %w", err)
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.ArtistPublicID] = row.TotalPoints
	}
	return out, nil
}
