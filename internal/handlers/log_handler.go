package handlers

import (
	"encoding/json"
	"net/http"

	"carecall/internal/service"
)

// LogHandler serves the family activity log
type LogHandler struct {
	familyService *service.FamilyService
}

// NewLogHandler creates a new log handler
func NewLogHandler(familyService *service.FamilyService) *LogHandler {
	return &LogHandler{familyService: familyService}
}

// List returns the family's log entries, newest first
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	logs, err := h.familyService.Logs(user.FamilyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, logs)
}

// Create appends a custom entry to the family log
func (h *LogHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var input service.LogInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	entry, err := h.familyService.AppendLog(user.FamilyID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}
