package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/musileague/backend/internal/domain/artist"
	"github.com/musileague/backend/internal/domain/promo"
	"github.com/musileague/backend/internal/domain/roster"
	"github.com/musileague/backend/internal/domain/weekly"
)

// ArtistScore is one roster artist's scoring line for the current
// week. Fanta points carry the captain multiplier; promo points are
// the player's own engagement and are never multiplied.
type ArtistScore struct {
	ArtistID    string
	ArtistName  string
	SlotKey     string
	IsCaptain   bool
	Multiplier  float64
	FantaPoints float64
	PromoPoints int
	TotalPoints float64
}

// ScoreBoard is the full weekly scoring view for one user.
type ScoreBoard struct {
	DisplayWeek  int
	ScoringWeek  int
	ArtistScores []ArtistScore
	TotalPoints  float64
}

// ScoringService aggregates the weekly scoring view: per-artist fanta
// points from the computed score stream and promo points from the
// engagement source, combined under the captain multiplier rules.
type ScoringService struct {
	artistRepo   artist.Repository
	rosterRepo   roster.Repository
	snapshotRepo weekly.SnapshotRepository
	scoreRepo    weekly.ScoreRepository
	promoSource  promo.PointsSource
	weekSvc      *WeekService
}

func NewScoringService(
	artistRepo artist.Repository,
	rosterRepo roster.Repository,
	snapshotRepo weekly.SnapshotRepository,
	scoreRepo weekly.ScoreRepository,
	promoSource promo.PointsSource,
	weekSvc *WeekService,
) *ScoringService {
	return &ScoringService{
		artistRepo:   artistRepo,
		rosterRepo:   rosterRepo,
		snapshotRepo: snapshotRepo,
		scoreRepo:    scoreRepo,
		promoSource:  promoSource,
		weekSvc:      weekSvc,
	}
}

// GetScores builds the scoring view for the user's roster in effect
// this week. Fanta points are zero while ScoringWeek is 0, so a week
// whose scores have not been computed yet shows promo points only
// rather than last week's stale numbers.
func (s *ScoringService) GetScores(ctx context.Context, userID string) (ScoreBoard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.GetScores")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ScoreBoard{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	currentSeason, week, err := s.weekSvc.ResolveActive(ctx)
	if err != nil {
		return ScoreBoard{}, err
	}

	board := ScoreBoard{
		DisplayWeek:  week.DisplayWeek,
		ScoringWeek:  week.ScoringWeek,
		ArtistScores: []ArtistScore{},
	}

	effective, exists, err := s.rosterRepo.GetForWeek(ctx, userID, currentSeason.ID, week.DisplayWeek)
	if err != nil {
		return ScoreBoard{}, fmt.Errorf("get effective roster: %w", err)
	}
	if !exists {
		return board, nil
	}

	artistIDs := effective.ArtistIDs()

	artists, err := s.artistRepo.GetByIDs(ctx, artistIDs)
	if err != nil {
		return ScoreBoard{}, fmt.Errorf("get roster artists: %w", err)
	}
	namesByID := make(map[string]string, len(artists))
	featuredByID := make(map[string]bool, len(artists))
	for _, a := range artists {
		namesByID[a.ID] = a.Name
		featuredByID[a.ID] = a.IsFeatured
	}

	pointsByID := map[string]int{}
	if week.ScoringWeek > 0 {
		pointsByID, err = s.scoreRepo.GetByWeekAndArtists(ctx, week.ScoringWeek, artistIDs)
		if err != nil {
			return ScoreBoard{}, fmt.Errorf("read weekly scores week=%d: %w", week.ScoringWeek, err)
		}
	}

	since, err := s.promoWindowStart(ctx, currentSeason.StartsAt, week.SnapshotWeek)
	if err != nil {
		return ScoreBoard{}, err
	}

	promoByID := map[string]int{}
	if s.promoSource != nil {
		promoByID, err = s.promoSource.GetPointsSince(ctx, userID, artistIDs, since)
		if err != nil {
			return ScoreBoard{}, fmt.Errorf("read promo points: %w", err)
		}
	}

	for i, slot := range effective.Slots {
		isCaptain := slot.ArtistID != "" && slot.ArtistID == effective.CaptainID

		mult := 1.0
		if isCaptain {
			if featuredByID[slot.ArtistID] {
				mult = captainFeaturedMultiplier
			} else {
				mult = captainMultiplier
			}
		}

		fanta := float64(pointsByID[slot.ArtistID]) * mult
		promoPoints := promoByID[slot.ArtistID]

		line := ArtistScore{
			ArtistID:    slot.ArtistID,
			ArtistName:  namesByID[slot.ArtistID],
			SlotKey:     roster.SlotKey(i),
			IsCaptain:   isCaptain,
			Multiplier:  mult,
			FantaPoints: fanta,
			PromoPoints: promoPoints,
			TotalPoints: fanta + float64(promoPoints),
		}
		board.ArtistScores = append(board.ArtistScores, line)
		board.TotalPoints += line.TotalPoints
	}

	return board, nil
}

// Preview scores an arbitrary artist list against the current week
// without requiring a committed roster. Promo points need a known
// user and are left at zero for anonymous callers.
func (s *ScoringService) Preview(ctx context.Context, userID string, artistIDs []string, captainID string) (ScoreBoard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.Preview")
	defer span.End()

	ids := make([]string, 0, len(artistIDs))
	seen := make(map[string]struct{}, len(artistIDs))
	for _, raw := range artistIDs {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return ScoreBoard{}, fmt.Errorf("%w: at least one artist id is required", ErrInvalidInput)
	}
	if len(ids) > roster.SlotCount {
		return ScoreBoard{}, fmt.Errorf("%w: at most %d artists may be scored at once", ErrInvalidInput, roster.SlotCount)
	}

	captainID = strings.TrimSpace(captainID)
	if captainID != "" {
		if _, ok := seen[captainID]; !ok {
			return ScoreBoard{}, fmt.Errorf("%w: captain %s is not in the artist list", ErrInvalidInput, captainID)
		}
	}

	currentSeason, week, err := s.weekSvc.ResolveActive(ctx)
	if err != nil {
		return ScoreBoard{}, err
	}

	board := ScoreBoard{
		DisplayWeek:  week.DisplayWeek,
		ScoringWeek:  week.ScoringWeek,
		ArtistScores: []ArtistScore{},
	}

	artists, err := s.artistRepo.GetByIDs(ctx, ids)
	if err != nil {
		return ScoreBoard{}, fmt.Errorf("get preview artists: %w", err)
	}
	namesByID := make(map[string]string, len(artists))
	featuredByID := make(map[string]bool, len(artists))
	for _, a := range artists {
		namesByID[a.ID] = a.Name
		featuredByID[a.ID] = a.IsFeatured
	}

	pointsByID := map[string]int{}
	if week.ScoringWeek > 0 {
		pointsByID, err = s.scoreRepo.GetByWeekAndArtists(ctx, week.ScoringWeek, ids)
		if err != nil {
			return ScoreBoard{}, fmt.Errorf("read weekly scores week=%d: %w", week.ScoringWeek, err)
		}
	}

	promoByID := map[string]int{}
	if userID = strings.TrimSpace(userID); userID != "" && s.promoSource != nil {
		since, err := s.promoWindowStart(ctx, currentSeason.StartsAt, week.SnapshotWeek)
		if err != nil {
			return ScoreBoard{}, err
		}
		promoByID, err = s.promoSource.GetPointsSince(ctx, userID, ids, since)
		if err != nil {
			return ScoreBoard{}, fmt.Errorf("read promo points: %w", err)
		}
	}

	for i, artistID := range ids {
		isCaptain := captainID != "" && artistID == captainID

		mult := 1.0
		if isCaptain {
			if featuredByID[artistID] {
				mult = captainFeaturedMultiplier
			} else {
				mult = captainMultiplier
			}
		}

		fanta := float64(pointsByID[artistID]) * mult
		promoPoints := promoByID[artistID]

		line := ArtistScore{
			ArtistID:    artistID,
			ArtistName:  namesByID[artistID],
			SlotKey:     roster.SlotKey(i),
			IsCaptain:   isCaptain,
			Multiplier:  mult,
			FantaPoints: fanta,
			PromoPoints: promoPoints,
			TotalPoints: fanta + float64(promoPoints),
		}
		board.ArtistScores = append(board.ArtistScores, line)
		board.TotalPoints += line.TotalPoints
	}

	return board, nil
}

// promoWindowStart anchors promo counting to the moment the current
// snapshot week was frozen, so engagement from before the week began
// never leaks in. A season with no snapshots yet counts from the
// season start.
func (s *ScoringService) promoWindowStart(ctx context.Context, seasonStart time.Time, snapshotWeek int) (time.Time, error) {
	if snapshotWeek <= 0 {
		return seasonStart, nil
	}

	startedAt, exists, err := s.snapshotRepo.WeekStartedAt(ctx, snapshotWeek)
	if err != nil {
		return time.Time{}, fmt.Errorf("snapshot week start week=%d: %w", snapshotWeek, err)
	}
	if !exists {
		return seasonStart, nil
	}
	return startedAt, nil
}
