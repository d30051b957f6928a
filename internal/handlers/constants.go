package handlers

const (
	ErrInvalidJSON         = "Invalid JSON body"
	ErrUnauthorized        = "Unauthorized"
	ErrHeadRequired        = "Head of family access required"
	ErrTooManyRequests     = "Too many requests"
	ErrInternalServerError = "Internal server error"
)
