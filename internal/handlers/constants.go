package handlers

const (
	SessionCookieName = "session_id"
	CSRFFormField     = "csrf_token"
	CSRFHeaderName    = "X-CSRF-Token"

	ErrInvalidFormData     = "Invalid form data"
	ErrUnauthorized        = "Unauthorized"
	ErrInternalServerError = "Internal server error"
)
