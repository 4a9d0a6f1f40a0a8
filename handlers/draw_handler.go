package handlers

import (
	"net/http"

	"github.com/snapfest/luckydraw/middleware"
	"github.com/snapfest/luckydraw/services"
)

type DrawHandler struct {
	drawService   services.DrawService
	ledgerService services.LedgerService
}

func NewDrawHandler(drawService services.DrawService, ledgerService services.LedgerService) *DrawHandler {
	return &DrawHandler{
		drawService:   drawService,
		ledgerService: ledgerService,
	}
}

type executeDrawInput struct {
	ConfigID int `json:"config_id"`
}

// ExecuteHandler обрабатывает POST /events/{eventID}/draw/execute.
// Конкурентный второй вызов получает 409 и должен опрашивать результат,
// а не перезапускать исполнение.
func (h *DrawHandler) ExecuteHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to execute a draw")
		return
	}

	eventID, err := getIntFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input executeDrawInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.drawService.ExecuteDraw(r.Context(), eventID, input.ConfigID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LatestResultHandler обрабатывает GET /events/{eventID}/draw/results/latest.
func (h *DrawHandler) LatestResultHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIntFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.ledgerService.GetLatestResult(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResultByIDHandler обрабатывает GET /events/{eventID}/draw/results/{resultID}.
func (h *DrawHandler) ResultByIDHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIntFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	resultID, err := getInt64FromURL(r, "resultID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.ledgerService.GetResultByID(r.Context(), resultID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if result.EventID != eventID {
		notFoundResponse(w, r)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListResultsHandler обрабатывает GET /events/{eventID}/draw/results:
// история перезапусков для аудита.
func (h *DrawHandler) ListResultsHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIntFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	results, err := h.ledgerService.ListResults(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"results": results}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RevokeWinnerHandler обрабатывает POST /events/{eventID}/draw/winners/revoke.
func (h *DrawHandler) RevokeWinnerHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to revoke a prize")
		return
	}

	eventID, err := getIntFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.RevokeWinnerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.EventID = eventID
	input.RevokedBy = currentUserID

	rev, err := h.ledgerService.RevokeWinner(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"revocation": rev}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
