package handlers

import (
	"encoding/json"
	"net/http"

	"carecall/internal/service"
)

// ReminderHandler handles reminder trigger HTTP requests
type ReminderHandler struct {
	familyService *service.FamilyService
}

// NewReminderHandler creates a new reminder handler
func NewReminderHandler(familyService *service.FamilyService) *ReminderHandler {
	return &ReminderHandler{familyService: familyService}
}

type triggerRequest struct {
	MemberID     string `json:"memberId"`
	MedicationID string `json:"medicationId"`
	DoseTime     string `json:"doseTime"`
}

// Trigger runs the reminder pipeline for one dose of one medication
func (h *ReminderHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req triggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}
	if req.MemberID == "" || req.MedicationID == "" {
		respondWithError(w, http.StatusBadRequest, "memberId and medicationId are required", "", nil)
		return
	}

	result, err := h.familyService.TriggerReminder(user.FamilyID, req.MemberID, req.MedicationID, req.DoseTime)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
