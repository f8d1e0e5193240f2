package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/musileague/backend/internal/domain/season"
	"github.com/musileague/backend/internal/platform/id"
	"github.com/musileague/backend/internal/platform/logging"
)

type CreateSeasonInput struct {
	Name     string
	StartsAt time.Time
	EndsAt   time.Time
}

// SeasonService owns the season lifecycle. At most one season is
// active at a time; activation demotes whichever season currently
// holds the flag before promoting the target.
type SeasonService struct {
	seasonRepo season.Repository
	idGen      id.Generator
	logger     *logging.Logger
	now        func() time.Time
}

func NewSeasonService(seasonRepo season.Repository, idGen id.Generator, logger *logging.Logger) *SeasonService {
	if idGen == nil {
		idGen = id.NewPrefixedGenerator("ssn")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SeasonService{
		seasonRepo: seasonRepo,
		idGen:      idGen,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *SeasonService) Create(ctx context.Context, input CreateSeasonInput) (season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.Create")
	defer span.End()

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return season.Season{}, fmt.Errorf("%w: season name is required", ErrInvalidInput)
	}
	if input.StartsAt.IsZero() || input.EndsAt.IsZero() {
		return season.Season{}, fmt.Errorf("%w: starts_at and ends_at are required", ErrInvalidInput)
	}
	if !input.EndsAt.After(input.StartsAt) {
		return season.Season{}, fmt.Errorf("%w: ends_at must be after starts_at", ErrInvalidInput)
	}

	publicID, err := s.idGen.NewID()
	if err != nil {
		return season.Season{}, fmt.Errorf("generate season id: %w", err)
	}

	now := s.now().UTC()
	item := season.Season{
		ID:        publicID,
		Name:      input.Name,
		StartsAt:  input.StartsAt.UTC(),
		EndsAt:    input.EndsAt.UTC(),
		IsActive:  false,
		Status:    season.StatusUpcoming,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := item.ValidateBasic(); err != nil {
		return season.Season{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.seasonRepo.Insert(ctx, item); err != nil {
		return season.Season{}, fmt.Errorf("insert season: %w", err)
	}

	s.logger.InfoContext(ctx, "season created", "season_id", item.ID, "name", item.Name)
	return item, nil
}

func (s *SeasonService) GetActive(ctx context.Context) (season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.GetActive")
	defer span.End()

	current, exists, err := s.seasonRepo.GetActive(ctx)
	if err != nil {
		return season.Season{}, fmt.Errorf("get active season: %w", err)
	}
	if !exists {
		return season.Season{}, fmt.Errorf("%w: no active season", ErrNotFound)
	}
	return current, nil
}

// Activate promotes the season to active. Any previously active
// season is demoted to completed first so the single-active invariant
// holds even if the previous operator forgot to complete it.
func (s *SeasonService) Activate(ctx context.Context, seasonID string) (season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.Activate")
	defer span.End()

	target, exists, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		return season.Season{}, fmt.Errorf("get season: %w", err)
	}
	if !exists {
		return season.Season{}, fmt.Errorf("%w: season=%s", ErrNotFound, seasonID)
	}
	if target.Status == season.StatusActive && target.IsActive {
		return target, nil
	}
	if target.Status == season.StatusCompleted {
		return season.Season{}, fmt.Errorf("%w: season %s is completed", ErrInvalidInput, seasonID)
	}

	now := s.now().UTC()

	current, hasActive, err := s.seasonRepo.GetActive(ctx)
	if err != nil {
		return season.Season{}, fmt.Errorf("get active season: %w", err)
	}
	if hasActive && current.ID != target.ID {
		current.IsActive = false
		current.Status = season.StatusCompleted
		current.UpdatedAt = now
		if err := s.seasonRepo.Update(ctx, current); err != nil {
			return season.Season{}, fmt.Errorf("demote active season: %w", err)
		}
		s.logger.WarnContext(ctx, "previous active season demoted",
			"season_id", current.ID, "replaced_by", target.ID)
	}

	target.IsActive = true
	target.Status = season.StatusActive
	target.UpdatedAt = now
	if err := s.seasonRepo.Update(ctx, target); err != nil {
		return season.Season{}, fmt.Errorf("activate season: %w", err)
	}

	s.logger.InfoContext(ctx, "season activated", "season_id", target.ID)
	return target, nil
}

// Complete closes out a season. The calculating status is the
// intermediate state while the final scoring batch drains; complete
// is terminal.
func (s *SeasonService) Complete(ctx context.Context, seasonID string) (season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.Complete")
	defer span.End()

	target, exists, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		return season.Season{}, fmt.Errorf("get season: %w", err)
	}
	if !exists {
		return season.Season{}, fmt.Errorf("%w: season=%s", ErrNotFound, seasonID)
	}
	if target.Status == season.StatusCompleted {
		return target, nil
	}
	if target.Status == season.StatusUpcoming {
		return season.Season{}, fmt.Errorf("%w: season %s was never activated", ErrInvalidInput, seasonID)
	}

	target.IsActive = false
	target.Status = season.StatusCompleted
	target.UpdatedAt = s.now().UTC()
	if err := s.seasonRepo.Update(ctx, target); err != nil {
		return season.Season{}, fmt.Errorf("complete season: %w", err)
	}

	s.logger.InfoContext(ctx, "season completed", "season_id", target.ID)
	return target, nil
}
