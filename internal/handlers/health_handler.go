package handlers

import "net/http"

// Health reports service liveness
func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "carecall-backend",
	})
}
