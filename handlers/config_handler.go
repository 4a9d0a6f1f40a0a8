package handlers

import (
	"net/http"

	"github.com/snapfest/luckydraw/middleware"
	"github.com/snapfest/luckydraw/services"
)

type ConfigHandler struct {
	configService services.ConfigService
}

func NewConfigHandler(configService services.ConfigService) *ConfigHandler {
	return &ConfigHandler{configService: configService}
}

// UpsertHandler обрабатывает PUT /events/{eventID}/draw/config.
func (h *ConfigHandler) UpsertHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to configure a draw")
		return
	}

	eventID, err := getIntFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ConfigurationInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.EventID = eventID
	input.CreatedBy = currentUserID

	cfg, err := h.configService.UpsertConfiguration(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"configuration": cfg}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetActiveHandler обрабатывает GET /events/{eventID}/draw/config.
func (h *ConfigHandler) GetActiveHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIntFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	cfg, err := h.configService.GetActiveConfiguration(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"configuration": cfg}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
