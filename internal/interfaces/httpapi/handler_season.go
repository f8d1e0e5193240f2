package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/musileague/backend/internal/domain/season"
	"github.com/musileague/backend/internal/usecase"
)

type seasonDTO struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at,omitempty"`
	IsActive bool      `json:"is_active"`
	Status   string    `json:"status"`
}

type resolvedWeekDTO struct {
	DisplayWeek  int `json:"display_week"`
	ScoringWeek  int `json:"scoring_week"`
	SnapshotWeek int `json:"snapshot_week"`
}

type createSeasonRequest struct {
	Name     string    `json:"name" validate:"required,min=3,max=120"`
	StartsAt time.Time `json:"starts_at" validate:"required"`
	EndsAt   time.Time `json:"ends_at"`
}

func (h *Handler) GetActiveSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetActiveSeason")
	defer span.End()

	active, err := h.seasonService.GetActive(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonToDTO(active))
}

func (h *Handler) GetActiveSeasonWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetActiveSeasonWeek")
	defer span.End()

	_, week, err := h.weekService.ResolveActive(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, resolvedWeekDTO{
		DisplayWeek:  week.DisplayWeek,
		ScoringWeek:  week.ScoringWeek,
		SnapshotWeek: week.SnapshotWeek,
	})
}

func (h *Handler) CreateSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateSeason")
	defer span.End()

	var req createSeasonRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.seasonService.Create(ctx, usecase.CreateSeasonInput{
		Name:     req.Name,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create season failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, seasonToDTO(created))
}

func (h *Handler) ActivateSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ActivateSeason")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	activated, err := h.seasonService.Activate(ctx, seasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "activate season failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonToDTO(activated))
}

func (h *Handler) CompleteSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CompleteSeason")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	completed, err := h.seasonService.Complete(ctx, seasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "complete season failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonToDTO(completed))
}

func seasonToDTO(item season.Season) seasonDTO {
	return seasonDTO{
		ID:       item.ID,
		Name:     item.Name,
		StartsAt: item.StartsAt,
		EndsAt:   item.EndsAt,
		IsActive: item.IsActive,
		Status:   string(item.Status),
	}
}
