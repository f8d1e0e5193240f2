package usecase

import (
	"context"
	"fmt"

	"github.com/musileague/backend/internal/domain/season"
	"github.com/musileague/backend/internal/domain/weekly"
)

// ResolvedWeek is the single authoritative answer to "what week is
// it". DisplayWeek is the latest week any stream knows about and is
// what read paths show; ScoringWeek is the week whose scores may be
// trusted, 0 while the scoring batch lags behind the snapshots.
type ResolvedWeek struct {
	DisplayWeek  int
	ScoringWeek  int
	SnapshotWeek int
}

// WeekService reconciles the two independently-advancing week
// counters: popularity snapshots (taken at week start) and computed
// scores (derived from snapshots, lagging behind). Every code path
// that needs a week number goes through here so two call sites can
// never diverge.
type WeekService struct {
	seasonRepo   season.Repository
	snapshotRepo weekly.SnapshotRepository
	scoreRepo    weekly.ScoreRepository
}

func NewWeekService(
	seasonRepo season.Repository,
	snapshotRepo weekly.SnapshotRepository,
	scoreRepo weekly.ScoreRepository,
) *WeekService {
	return &WeekService{
		seasonRepo:   seasonRepo,
		snapshotRepo: snapshotRepo,
		scoreRepo:    scoreRepo,
	}
}

// Resolve computes the week pair for the given season.
//
// ScoringWeek follows the score stream only when it has caught up
// with the snapshot stream; otherwise it is 0 so no stale or
// premature numbers surface. DisplayWeek is the max of both streams
// floored at week 1, the explicit convention for a season with no
// snapshots yet.
func (s *WeekService) Resolve(ctx context.Context, seasonID string) (ResolvedWeek, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeekService.Resolve")
	defer span.End()

	current, exists, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		return ResolvedWeek{}, fmt.Errorf("get season for week resolution: %w", err)
	}
	if !exists {
		return ResolvedWeek{}, fmt.Errorf("%w: season=%s", ErrNotFound, seasonID)
	}

	return s.resolveFor(ctx, current)
}

// ResolveActive resolves against the currently active season.
func (s *WeekService) ResolveActive(ctx context.Context) (season.Season, ResolvedWeek, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeekService.ResolveActive")
	defer span.End()

	current, exists, err := s.seasonRepo.GetActive(ctx)
	if err != nil {
		return season.Season{}, ResolvedWeek{}, fmt.Errorf("get active season: %w", err)
	}
	if !exists {
		return season.Season{}, ResolvedWeek{}, fmt.Errorf("%w: no active season", ErrNotFound)
	}

	week, err := s.resolveFor(ctx, current)
	if err != nil {
		return season.Season{}, ResolvedWeek{}, err
	}
	return current, week, nil
}

func (s *WeekService) resolveFor(ctx context.Context, current season.Season) (ResolvedWeek, error) {
	snapshotWeek, err := s.snapshotRepo.MaxWeekSince(ctx, current.StartsAt)
	if err != nil {
		return ResolvedWeek{}, fmt.Errorf("max snapshot week: %w", err)
	}

	scoreWeek, err := s.scoreRepo.MaxWeekSince(ctx, current.StartsAt)
	if err != nil {
		return ResolvedWeek{}, fmt.Errorf("max score week: %w", err)
	}

	scoringWeek := 0
	if scoreWeek >= snapshotWeek {
		scoringWeek = scoreWeek
	}

	displayWeek := scoringWeek
	if snapshotWeek > displayWeek {
		displayWeek = snapshotWeek
	}
	if displayWeek < 1 {
		displayWeek = 1
	}

	return ResolvedWeek{
		DisplayWeek:  displayWeek,
		ScoringWeek:  scoringWeek,
		SnapshotWeek: snapshotWeek,
	}, nil
}
