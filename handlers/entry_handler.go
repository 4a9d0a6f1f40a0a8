package handlers

import (
	"errors"
	"net/http"

	"github.com/snapfest/luckydraw/services"
)

type EntryHandler struct {
	entryService services.EntryService
}

func NewEntryHandler(entryService services.EntryService) *EntryHandler {
	return &EntryHandler{entryService: entryService}
}

// RegisterHandler обрабатывает POST /events/{eventID}/entries.
// Вызывается пайплайном загрузки фото после успешной загрузки с opt-in.
func (h *EntryHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIntFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.RegisterEntryInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.EventID = eventID

	entry, err := h.entryService.RegisterEntry(r.Context(), input)
	if err != nil {
		// Отсутствие конфигурации - не вина гостя: мягкий ответ
		// "ваш номер появится позже", без ошибки на экране.
		if errors.Is(err, services.ErrNoActiveConfiguration) {
			if err := writeJSON(w, http.StatusAccepted, jsonResponse{
				"status":  "pending",
				"message": "you're in the draw, your number will appear shortly",
			}, nil); err != nil {
				serverErrorResponse(w, r, err)
			}
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"entry_id":    entry.ID,
		"draw_number": entry.DrawNumber(),
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
