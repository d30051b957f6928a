package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"carecall/internal/service"
)

// MemberHandler handles family member and medication HTTP requests
type MemberHandler struct {
	familyService *service.FamilyService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(familyService *service.FamilyService) *MemberHandler {
	return &MemberHandler{familyService: familyService}
}

// List returns every member of the caller's family
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	members, err := h.familyService.Members(user.FamilyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, members)
}

// Create adds a member to the caller's family
func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var input service.MemberInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	member, err := h.familyService.CreateMember(user.FamilyID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, member)
}

// Update replaces a member's profile and medication list
func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	memberID := r.PathValue("id")

	var input service.MemberInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	member, err := h.familyService.UpdateMember(user.FamilyID, memberID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, member)
}

type consumeRequest struct {
	Change *int `json:"change"`
}

// Consume records a dose taken or a manual supply adjustment. An empty
// body means one dose was taken.
func (h *MemberHandler) Consume(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	memberID := r.PathValue("memberId")
	medID := r.PathValue("medId")

	var req consumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	result, err := h.familyService.Consume(user.FamilyID, memberID, medID, req.Change)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
