package handlers

import (
	"net/http"

	"carecall/internal/security"
	"carecall/internal/service"
)

// NewRouter builds the HTTP route table. Auth endpoints sit behind the
// rate limiter, everything else under /api requires a bearer token, and
// member management additionally requires a head of family.
func NewRouter(authService *service.AuthService, familyService *service.FamilyService, limiter *security.RateLimiter) http.Handler {
	mw := NewMiddleware(authService, limiter)
	authHandler := NewAuthHandler(authService)
	memberHandler := NewMemberHandler(familyService)
	logHandler := NewLogHandler(familyService)
	reminderHandler := NewReminderHandler(familyService)

	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /api/health", Health)
	mux.HandleFunc("POST /api/auth/register", mw.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", mw.RateLimit(authHandler.Login))

	// Authenticated routes
	mux.HandleFunc("POST /api/auth/logout", mw.RequireAuth(authHandler.Logout))
	mux.HandleFunc("GET /api/me", mw.RequireAuth(authHandler.Me))
	mux.HandleFunc("GET /api/logs", mw.RequireAuth(logHandler.List))
	mux.HandleFunc("POST /api/logs", mw.RequireAuth(logHandler.Create))
	mux.HandleFunc("POST /api/members/{memberId}/medications/{medId}/consume", mw.RequireAuth(memberHandler.Consume))
	mux.HandleFunc("POST /api/reminders/trigger", mw.RequireAuth(reminderHandler.Trigger))

	// Head of family routes
	mux.HandleFunc("GET /api/members", mw.RequireAuth(mw.RequireHead(memberHandler.List)))
	mux.HandleFunc("POST /api/members", mw.RequireAuth(mw.RequireHead(memberHandler.Create)))
	mux.HandleFunc("PUT /api/members/{id}", mw.RequireAuth(mw.RequireHead(memberHandler.Update)))

	return Logging(mux)
}
