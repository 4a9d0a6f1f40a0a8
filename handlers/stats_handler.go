package handlers

import (
	"net/http"

	"github.com/snapfest/luckydraw/services"
)

type StatsHandler struct {
	statsService services.StatsService
}

func NewStatsHandler(statsService services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetStatsHandler обрабатывает GET /events/{eventID}/stats.
func (h *StatsHandler) GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIntFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stats, err := h.statsService.GetEventStats(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stats": stats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
