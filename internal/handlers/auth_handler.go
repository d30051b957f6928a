package handlers

import (
	"encoding/json"
	"net/http"

	"carecall/internal/models"
	"carecall/internal/service"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Phone      string `json:"phone"`
	FamilyName string `json:"familyName"`
	IsHead     bool   `json:"isHead"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// authResponse is the body returned by register and login.
type authResponse struct {
	Token string          `json:"token"`
	User  models.UserInfo `json:"user"`
}

// Register creates an account and opens a session for it
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	user, token, err := h.authService.Register(service.RegisterInput{
		Username:   req.Username,
		Password:   req.Password,
		Phone:      req.Phone,
		FamilyName: req.FamilyName,
		IsHead:     req.IsHead,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, authResponse{Token: token, User: user.Info()})
}

// Login checks credentials and opens a session
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	user, token, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, authResponse{Token: token, User: user.Info()})
}

// Logout discards the caller's session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.Logout(bearerToken(r))
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me returns the authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	respondJSON(w, http.StatusOK, user.Info())
}
