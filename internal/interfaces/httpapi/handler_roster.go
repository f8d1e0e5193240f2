package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/musileague/backend/internal/domain/roster"
	"github.com/musileague/backend/internal/usecase"
)

type saveRosterRequest struct {
	SeasonID  string    `json:"season_id"`
	Slots     [5]string `json:"slots" validate:"required,dive,required"`
	CaptainID string    `json:"captain_id"`
}

type commitResultDTO struct {
	WeekNumber   int     `json:"week_number"`
	Cost         int64   `json:"cost"`
	Bootstrapped bool    `json:"bootstrapped"`
	InstantScore float64 `json:"instant_score"`
}

type rosterSlotDTO struct {
	SlotKey  string `json:"slot_key"`
	ArtistID string `json:"artist_id"`
	Tier     string `json:"tier"`
}

type rosterDTO struct {
	SeasonID   string          `json:"season_id"`
	WeekNumber int             `json:"week_number"`
	Slots      []rosterSlotDTO `json:"slots"`
	CaptainID  string          `json:"captain_id,omitempty"`
	LockedAt   time.Time       `json:"locked_at"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (h *Handler) SaveMyRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SaveMyRoster")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req saveRosterRequest
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

	seasonID := strings.TrimSpace(req.SeasonID)
	if seasonID == "" {
		active, err := h.seasonService.GetActive(ctx)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		seasonID = active.ID
	}

	result, err := h.rosterService.Commit(ctx, usecase.SaveRosterInput{
		UserID:        principal.UserID,
		SeasonID:      seasonID,
		SlotArtistIDs: req.Slots,
		CaptainID:     req.CaptainID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "roster commit failed", "user_id", principal.UserID, "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, commitResultDTO{
		WeekNumber:   result.WeekAssigned,
		Cost:         result.Cost,
		Bootstrapped: result.Bootstrapped,
		InstantScore: result.InstantScore,
	})
}

func (h *Handler) GetMyRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyRoster")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var weekNumber *int
	if raw := strings.TrimSpace(r.URL.Query().Get("week")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: week must be an integer", usecase.ErrInvalidInput))
			return
		}
		weekNumber = &parsed
	}

	active, err := h.seasonService.GetActive(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, exists, err := h.rosterService.GetCurrent(ctx, principal.UserID, active.ID, weekNumber)
	if err != nil {
		h.logger.WarnContext(ctx, "get roster failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if !exists {
		writeSuccess(ctx, w, http.StatusOK, nil)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rosterToDTO(item))
}

func rosterToDTO(item roster.Roster) rosterDTO {
	slots := make([]rosterSlotDTO, 0, roster.SlotCount)
	for i, slot := range item.Slots {
		slots = append(slots, rosterSlotDTO{
			SlotKey:  roster.SlotKey(i),
			ArtistID: slot.ArtistID,
			Tier:     string(slot.Tier),
		})
	}

	return rosterDTO{
		SeasonID:   item.SeasonID,
		WeekNumber: item.WeekNumber,
		Slots:      slots,
		CaptainID:  item.CaptainID,
		LockedAt:   item.LockedAt,
		CreatedAt:  item.CreatedAt,
	}
}
