package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/musileague/backend/internal/usecase"
)

type refreshArtistsRequest struct {
	ArtistIDs  []string `json:"artist_ids" validate:"omitempty,dive,required"`
	MaxWorkers int      `json:"max_workers" validate:"omitempty,min=1,max=16"`
}

// RunRefreshArtistsJob re-pulls metadata for rostered artists. An
// empty body refreshes everything on a roster in the active season.
func (h *Handler) RunRefreshArtistsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRefreshArtistsJob")
	defer span.End()

	if h.refreshService == nil {
		writeError(ctx, w, fmt.Errorf("%w: artist refresh service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req refreshArtistsRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.refreshService.Refresh(ctx, usecase.RefreshInput{
		ArtistIDs:  req.ArtistIDs,
		MaxWorkers: req.MaxWorkers,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "run refresh artists job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
