package handler

import (
	"net/http"
	"time"

	"atcrank/internal/app/service"
	"atcrank/internal/common"

	"github.com/go-chi/chi/v5"
)

type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

func (h *LeaderboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.current)
}

// current returns the standings of the running week, or of the week containing
// ?at=<RFC3339> when given.
func (h *LeaderboardHandler) current(w http.ResponseWriter, r *http.Request) {
	at := time.Now()
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid 'at' timestamp, want RFC3339")
			return
		}
		at = parsed
	}

	board, err := h.leaderboardService.Standings(r.Context(), at)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, board)
}
