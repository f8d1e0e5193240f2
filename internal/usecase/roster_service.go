package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/musileague/backend/internal/domain/artist"
	"github.com/musileague/backend/internal/domain/profile"
	"github.com/musileague/backend/internal/domain/roster"
	"github.com/musileague/backend/internal/domain/season"
	"github.com/musileague/backend/internal/domain/tier"
	"github.com/musileague/backend/internal/domain/weekly"
	"github.com/musileague/backend/internal/platform/logging"
)

const (
	captainFeaturedMultiplier = 2.0
	captainMultiplier         = 1.5
)

// ArtistMetadataProvider fetches live artist figures when the cache
// misses. Implemented by the external metadata client.
type ArtistMetadataProvider interface {
	GetArtists(ctx context.Context, artistIDs []string) ([]artist.Artist, error)
}

// SaveRosterInput is one submission: five positional artist ids and
// an optional captain.
type SaveRosterInput struct {
	UserID        string
	SeasonID      string
	SlotArtistIDs [roster.SlotCount]string
	CaptainID     string
}

// CommitResult reports a committed submission.
type CommitResult struct {
	WeekAssigned int
	Cost         int64
	Bootstrapped bool
	InstantScore float64
}

// RosterService is the single entry point for roster submissions.
// Each submission walks an explicit state machine:
//
//	Validating -> (reject | Costing)
//	Costing    -> (insufficient-balance reject | Bootstrapping-if-first | Persisting)
//	Persisting -> Committed
//
// Validation and affordability always run before any mutation. The
// debit lands only once affordability is confirmed, and persistence
// is the only step allowed to fail afterwards; that narrow window is
// covered by a compensating credit.
type RosterService struct {
	seasonRepo    season.Repository
	artistRepo    artist.Repository
	rosterRepo    roster.Repository
	profileRepo   profile.Repository
	snapshotRepo  weekly.SnapshotRepository
	scoreRepo     weekly.ScoreRepository
	weekSvc       *WeekService
	metadata      ArtistMetadataProvider
	bounds        tier.Bounds
	pricing       roster.Pricing
	startingCoins int64
	logger        *logging.Logger
	now           func() time.Time
}

func NewRosterService(
	seasonRepo season.Repository,
	artistRepo artist.Repository,
	rosterRepo roster.Repository,
	profileRepo profile.Repository,
	snapshotRepo weekly.SnapshotRepository,
	scoreRepo weekly.ScoreRepository,
	weekSvc *WeekService,
	metadata ArtistMetadataProvider,
	bounds tier.Bounds,
	pricing roster.Pricing,
	startingCoins int64,
	logger *logging.Logger,
) *RosterService {
	if logger == nil {
		logger = logging.Default()
	}

	return &RosterService{
		seasonRepo:    seasonRepo,
		artistRepo:    artistRepo,
		rosterRepo:    rosterRepo,
		profileRepo:   profileRepo,
		snapshotRepo:  snapshotRepo,
		scoreRepo:     scoreRepo,
		weekSvc:       weekSvc,
		metadata:      metadata,
		bounds:        bounds,
		pricing:       pricing,
		startingCoins: startingCoins,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *RosterService) Commit(ctx context.Context, input SaveRosterInput) (CommitResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.Commit")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.SeasonID = strings.TrimSpace(input.SeasonID)
	input.CaptainID = strings.TrimSpace(input.CaptainID)
	for i := range input.SlotArtistIDs {
		input.SlotArtistIDs[i] = strings.TrimSpace(input.SlotArtistIDs[i])
	}

	if input.UserID == "" {
		return CommitResult{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.SeasonID == "" {
		return CommitResult{}, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}

	currentSeason, exists, err := s.seasonRepo.GetByID(ctx, input.SeasonID)
	if err != nil {
		return CommitResult{}, fmt.Errorf("get season: %w", err)
	}
	if !exists {
		return CommitResult{}, fmt.Errorf("%w: season=%s", ErrNotFound, input.SeasonID)
	}
	if !currentSeason.IsActive || currentSeason.Status != season.StatusActive {
		return CommitResult{}, fmt.Errorf("%w: season %s is not accepting rosters", ErrInvalidInput, input.SeasonID)
	}

	week, err := s.weekSvc.Resolve(ctx, input.SeasonID)
	if err != nil {
		return CommitResult{}, err
	}

	previous, hasPrevious, err := s.rosterRepo.GetLatest(ctx, input.UserID, input.SeasonID)
	if err != nil {
		return CommitResult{}, fmt.Errorf("get latest roster: %w", err)
	}
	var previousRef *roster.Roster
	if hasPrevious {
		previousRef = &previous
	}

	// Validating.
	slots, artistsByID, err := s.resolveSlots(ctx, input.SlotArtistIDs)
	if err != nil {
		return CommitResult{}, err
	}
	if fields := roster.Validate(slots, input.CaptainID, previousRef, s.bounds); len(fields) > 0 {
		return CommitResult{}, &roster.ValidationError{Fields: fields}
	}

	// Costing.
	cost := roster.ChangeCost(slots, input.CaptainID, previousRef, s.pricing)

	userProfile, err := s.profileRepo.GetOrCreate(ctx, input.UserID, s.startingCoins)
	if err != nil {
		return CommitResult{}, fmt.Errorf("get profile: %w", err)
	}
	if cost > 0 && userProfile.MusiCoins < cost {
		return CommitResult{}, &InsufficientBalanceError{Required: cost, Available: userProfile.MusiCoins}
	}

	debited := false
	if cost > 0 {
		if _, err := s.profileRepo.Debit(ctx, input.UserID, cost); err != nil {
			if errors.Is(err, profile.ErrInsufficientFunds) {
				return CommitResult{}, &InsufficientBalanceError{Required: cost, Available: userProfile.MusiCoins}
			}
			return CommitResult{}, fmt.Errorf("debit roster cost: %w", err)
		}
		debited = true
	}

	// Bootstrapping-if-first. A retried first save runs bootstrap
	// again (no roster row exists yet), so every failure path below
	// must revert the instant credit or the retry double-credits.
	result := CommitResult{Cost: cost}
	if !hasPrevious {
		instant, err := s.bootstrap(ctx, input.UserID, slots, input.CaptainID, artistsByID, week.DisplayWeek)
		if err != nil {
			return CommitResult{}, s.compensate(ctx, input.UserID, cost, debited, 0, fmt.Errorf("bootstrap first roster: %w", err))
		}
		result.Bootstrapped = true
		result.InstantScore = instant
	}

	if err := s.cacheArtists(ctx, slots, artistsByID); err != nil {
		return CommitResult{}, s.compensate(ctx, input.UserID, cost, debited, result.InstantScore, fmt.Errorf("cache artists: %w", err))
	}

	// Persisting. Changes take effect next week; only the first
	// roster of a season lands on the current week.
	targetWeek := week.DisplayWeek
	if hasPrevious {
		targetWeek = week.DisplayWeek + 1
	}

	item := roster.Roster{
		UserID:     input.UserID,
		SeasonID:   input.SeasonID,
		WeekNumber: targetWeek,
		Slots:      slots,
		CaptainID:  input.CaptainID,
		LockedAt:   s.now().UTC(),
	}
	if err := item.ValidateBasic(); err != nil {
		return CommitResult{}, s.compensate(ctx, input.UserID, cost, debited, result.InstantScore, fmt.Errorf("validate roster: %w", err))
	}

	if err := s.persist(ctx, item, previousRef); err != nil {
		if errors.Is(err, roster.ErrDuplicateWeek) {
			// Concurrent double-submit. Refund and let the caller
			// re-read and retry.
			s.refund(ctx, input.UserID, cost, debited, result.InstantScore)
			return CommitResult{}, fmt.Errorf("%w: roster week %d already committed", ErrConflict, targetWeek)
		}
		return CommitResult{}, s.compensate(ctx, input.UserID, cost, debited, result.InstantScore, fmt.Errorf("persist roster: %w", err))
	}

	result.WeekAssigned = targetWeek
	s.logger.InfoContext(ctx, "roster committed",
		"user_id", input.UserID,
		"season_id", input.SeasonID,
		"week_number", targetWeek,
		"cost", cost,
		"bootstrapped", result.Bootstrapped,
	)

	return result, nil
}

// GetCurrent returns the roster version in effect for the user. With
// a week number the carry-over rule applies: the exact row when
// present, else the most recent earlier version. Without one the
// latest version is returned.
func (s *RosterService) GetCurrent(ctx context.Context, userID, seasonID string, weekNumber *int) (roster.Roster, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.GetCurrent")
	defer span.End()

	userID = strings.TrimSpace(userID)
	seasonID = strings.TrimSpace(seasonID)
	if userID == "" || seasonID == "" {
		return roster.Roster{}, false, fmt.Errorf("%w: user_id and season_id are required", ErrInvalidInput)
	}

	if weekNumber == nil {
		item, exists, err := s.rosterRepo.GetLatest(ctx, userID, seasonID)
		if err != nil {
			return roster.Roster{}, false, fmt.Errorf("get latest roster: %w", err)
		}
		return item, exists, nil
	}

	if *weekNumber <= 0 {
		return roster.Roster{}, false, fmt.Errorf("%w: week number must be greater than zero", ErrInvalidInput)
	}

	item, exists, err := s.rosterRepo.GetForWeek(ctx, userID, seasonID, *weekNumber)
	if err != nil {
		return roster.Roster{}, false, fmt.Errorf("get roster for week: %w", err)
	}
	return item, exists, nil
}

// resolveSlots resolves each proposed artist against the cache,
// falling back to the metadata provider on misses, and classifies the
// tier from current popularity. Empty ids pass through so the
// validator reports them as field errors.
func (s *RosterService) resolveSlots(ctx context.Context, slotArtistIDs [roster.SlotCount]string) ([roster.SlotCount]roster.SlotAssignment, map[string]artist.Artist, error) {
	var slots [roster.SlotCount]roster.SlotAssignment

	wanted := make([]string, 0, roster.SlotCount)
	seen := make(map[string]struct{}, roster.SlotCount)
	for _, id := range slotArtistIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		wanted = append(wanted, id)
	}

	cached, err := s.artistRepo.GetByIDs(ctx, wanted)
	if err != nil {
		return slots, nil, fmt.Errorf("get artists from cache: %w", err)
	}

	byID := make(map[string]artist.Artist, len(wanted))
	for _, a := range cached {
		byID[a.ID] = a
	}

	missing := make([]string, 0, len(wanted))
	for _, id := range wanted {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 && s.metadata != nil {
		fetched, err := s.metadata.GetArtists(ctx, missing)
		if err != nil {
			return slots, nil, fmt.Errorf("%w: fetch artist metadata: %v", ErrDependencyUnavailable, err)
		}
		if len(fetched) > 0 {
			if err := s.artistRepo.Upsert(ctx, fetched); err != nil {
				return slots, nil, fmt.Errorf("cache fetched artists: %w", err)
			}
			for _, a := range fetched {
				byID[a.ID] = a
			}
		}
	}

	unknown := make([]string, 0)
	for _, id := range wanted {
		if _, ok := byID[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return slots, nil, fmt.Errorf("%w: unknown artist ids %s", ErrInvalidInput, strings.Join(unknown, ", "))
	}

	for i, id := range slotArtistIDs {
		if id == "" {
			continue
		}
		a := byID[id]
		slots[i] = roster.SlotAssignment{
			ArtistID: a.ID,
			Tier:     s.bounds.Classify(a.Popularity),
		}
	}

	return slots, byID, nil
}

// bootstrap gives a first-of-season roster an immediate scoring base
// instead of a dead week-one experience: freeze a snapshot for every
// selected artist that lacks one, then credit whatever weekly scores
// already exist for the current week, captain-multiplied.
func (s *RosterService) bootstrap(
	ctx context.Context,
	userID string,
	slots [roster.SlotCount]roster.SlotAssignment,
	captainID string,
	artistsByID map[string]artist.Artist,
	currentWeek int,
) (float64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.bootstrap")
	defer span.End()

	artistIDs := make([]string, 0, roster.SlotCount)
	for _, slot := range slots {
		artistIDs = append(artistIDs, slot.ArtistID)

		a := artistsByID[slot.ArtistID]
		inserted, err := s.snapshotRepo.InsertIfAbsent(ctx, weekly.Snapshot{
			WeekNumber: currentWeek,
			ArtistID:   a.ID,
			Popularity: a.Popularity,
			Followers:  a.Followers,
			CreatedAt:  s.now().UTC(),
		})
		if err != nil {
			return 0, fmt.Errorf("freeze snapshot artist=%s week=%d: %w", a.ID, currentWeek, err)
		}
		if inserted {
			s.logger.DebugContext(ctx, "bootstrap snapshot frozen",
				"artist_id", a.ID,
				"week_number", currentWeek,
			)
		}
	}

	points, err := s.scoreRepo.GetByWeekAndArtists(ctx, currentWeek, artistIDs)
	if err != nil {
		return 0, fmt.Errorf("read weekly scores week=%d: %w", currentWeek, err)
	}

	var instant float64
	for _, slot := range slots {
		base := float64(points[slot.ArtistID])
		if slot.ArtistID == captainID {
			mult, err := s.captainMultiplier(ctx, captainID)
			if err != nil {
				return 0, err
			}
			base *= mult
		}
		instant += base
	}

	if instant != 0 {
		if err := s.profileRepo.AddScore(ctx, userID, instant); err != nil {
			return 0, fmt.Errorf("credit instant score: %w", err)
		}
	}

	return instant, nil
}

func (s *RosterService) captainMultiplier(ctx context.Context, captainID string) (float64, error) {
	featured, err := s.artistRepo.IsFeatured(ctx, captainID)
	if err != nil {
		return 0, fmt.Errorf("check featured artist %s: %w", captainID, err)
	}
	if featured {
		return captainFeaturedMultiplier, nil
	}
	return captainMultiplier, nil
}

func (s *RosterService) cacheArtists(ctx context.Context, slots [roster.SlotCount]roster.SlotAssignment, artistsByID map[string]artist.Artist) error {
	entries := make([]artist.Artist, 0, roster.SlotCount)
	for _, slot := range slots {
		if a, ok := artistsByID[slot.ArtistID]; ok {
			a.UpdatedAt = s.now().UTC()
			entries = append(entries, a)
		}
	}
	if len(entries) == 0 {
		return nil
	}
	return s.artistRepo.Upsert(ctx, entries)
}

func (s *RosterService) persist(ctx context.Context, item roster.Roster, previous *roster.Roster) error {
	// A resubmission targeting the week it already committed replaces
	// that version in place; anything else is a fresh insert that
	// must trip the uniqueness constraint on a race.
	if previous != nil && previous.WeekNumber == item.WeekNumber {
		return s.rosterRepo.Replace(ctx, item)
	}
	return s.rosterRepo.Insert(ctx, item)
}

// compensate handles a failure after a mutation landed: credit the
// cost back, revert any instant-score credit, and surface the
// paid-but-unsaved state distinctly so it can be reconciled.
func (s *RosterService) compensate(ctx context.Context, userID string, cost int64, debited bool, instant float64, cause error) error {
	s.revertInstantScore(ctx, userID, instant)

	if !debited {
		return cause
	}

	if err := s.profileRepo.Credit(ctx, userID, cost); err != nil {
		s.logger.ErrorContext(ctx, "compensating credit failed, balance requires manual reconciliation",
			"user_id", userID,
			"amount", cost,
			"cause", cause,
			"error", err,
		)
		return fmt.Errorf("%w: %v (compensating credit failed: %v)", ErrInconsistentState, cause, err)
	}

	s.logger.ErrorContext(ctx, "post-debit failure, cost refunded",
		"user_id", userID,
		"amount", cost,
		"cause", cause,
	)
	return fmt.Errorf("%w: %v", ErrInconsistentState, cause)
}

func (s *RosterService) refund(ctx context.Context, userID string, cost int64, debited bool, instant float64) {
	s.revertInstantScore(ctx, userID, instant)

	if !debited {
		return
	}
	if err := s.profileRepo.Credit(ctx, userID, cost); err != nil {
		s.logger.ErrorContext(ctx, "refund after conflict failed, balance requires manual reconciliation",
			"user_id", userID,
			"amount", cost,
			"error", err,
		)
	}
}

// revertInstantScore undoes the bootstrap credit so a retried or
// losing first save cannot leave the score counted twice.
func (s *RosterService) revertInstantScore(ctx context.Context, userID string, instant float64) {
	if instant == 0 {
		return
	}
	if err := s.profileRepo.AddScore(ctx, userID, -instant); err != nil {
		s.logger.ErrorContext(ctx, "instant score revert failed, total requires manual reconciliation",
			"user_id", userID,
			"amount", instant,
			"error", err,
		)
	}
}
