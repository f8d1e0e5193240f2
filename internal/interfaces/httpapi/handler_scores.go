package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/musileague/backend/internal/usecase"
)

type artistScoreDTO struct {
	ArtistID    string  `json:"artist_id"`
	ArtistName  string  `json:"artist_name,omitempty"`
	SlotKey     string  `json:"slot_key"`
	IsCaptain   bool    `json:"is_captain"`
	Multiplier  float64 `json:"multiplier"`
	FantaPoints float64 `json:"fanta_points"`
	PromoPoints int     `json:"promo_points"`
	TotalPoints float64 `json:"total_points"`
}

type scoreBoardDTO struct {
	DisplayWeek  int              `json:"display_week"`
	ScoringWeek  int              `json:"scoring_week"`
	ArtistScores []artistScoreDTO `json:"artist_scores"`
	TotalPoints  float64          `json:"total_points"`
}

// GetScores serves the weekly board. Without query parameters it
// scores the caller's committed roster and requires auth; with an
// artists list it previews arbitrary picks, anonymously if need be.
func (h *Handler) GetScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetScores")
	defer span.End()

	principal, authed := principalFromContext(ctx)

	if raw := strings.TrimSpace(r.URL.Query().Get("artists")); raw != "" {
		userID := ""
		if authed {
			userID = principal.UserID
		}

		board, err := h.scoringService.Preview(ctx, userID, strings.Split(raw, ","), r.URL.Query().Get("captain"))
		if err != nil {
			h.logger.WarnContext(ctx, "score preview failed", "error", err)
			writeError(ctx, w, err)
			return
		}

		writeSuccess(ctx, w, http.StatusOK, scoreBoardToDTO(board))
		return
	}

	if !authed {
		writeError(ctx, w, fmt.Errorf("%w: authentication is required to read roster scores", usecase.ErrUnauthorized))
		return
	}

	board, err := h.scoringService.GetScores(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get scores failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scoreBoardToDTO(board))
}

func scoreBoardToDTO(board usecase.ScoreBoard) scoreBoardDTO {
	items := make([]artistScoreDTO, 0, len(board.ArtistScores))
	for _, line := range board.ArtistScores {
		items = append(items, artistScoreDTO{
			ArtistID:    line.ArtistID,
			ArtistName:  line.ArtistName,
			SlotKey:     line.SlotKey,
			IsCaptain:   line.IsCaptain,
			Multiplier:  line.Multiplier,
			FantaPoints: line.FantaPoints,
			PromoPoints: line.PromoPoints,
			TotalPoints: line.TotalPoints,
		})
	}

	return scoreBoardDTO{
		DisplayWeek:  board.DisplayWeek,
		ScoringWeek:  board.ScoringWeek,
		ArtistScores: items,
		TotalPoints:  board.TotalPoints,
	}
}
