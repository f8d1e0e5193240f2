package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.HandleFunc("GET /v1/seasons/active", handler.GetActiveSeason)
	mux.HandleFunc("GET /v1/seasons/active/week", handler.GetActiveSeasonWeek)
	// Score previews work anonymously; promo points appear only for
	// authenticated callers.
	mux.Handle("GET /v1/scores", OptionalAuth(verifier, http.HandlerFunc(handler.GetScores)))
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("PUT /v1/rosters/me", RequireAuth(verifier, http.HandlerFunc(handler.SaveMyRoster)))
	mux.Handle("GET /v1/rosters/me", RequireAuth(verifier, http.HandlerFunc(handler.GetMyRoster)))
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/refresh-artists", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRefreshArtistsJob)))
	mux.Handle("POST /v1/internal/seasons", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.CreateSeason)))
	mux.Handle("POST /v1/internal/seasons/{seasonID}/activate", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ActivateSeason)))
	mux.Handle("POST /v1/internal/seasons/{seasonID}/complete", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.CompleteSeason)))
}
