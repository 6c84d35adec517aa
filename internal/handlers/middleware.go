package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/security"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const UserContextKey ContextKey = "user"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	csrfStore   *security.CSRFTokenStore
	rateLimiter *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, csrfStore *security.CSRFTokenStore, rateLimiter *security.RateLimiter) *Middleware {
	return &Middleware{
		authService: authService,
		csrfStore:   csrfStore,
		rateLimiter: rateLimiter,
	}
}

// RequireAuth is middleware that requires a valid session
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		user, err := m.authService.ValidateSession(cookie.Value)
		if err != nil {
			// Clear invalid cookie
			http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// RequireParent is middleware that requires a valid session held by a
// parent. Members without the parent role get a 403, never a silent
// downgrade.
func (m *Middleware) RequireParent(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if user == nil || !user.IsParent() {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next(w, r)
	})
}

// CSRFProtect validates the CSRF token on state-changing requests.
// The token arrives either as a form field or a request header.
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			http.Error(w, ErrUnauthorized, http.StatusUnauthorized)
			return
		}

		token := r.Header.Get(CSRFHeaderName)
		if token == "" {
			if err := r.ParseForm(); err != nil {
				http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
				return
			}
			token = r.FormValue(CSRFFormField)
		}

		if !m.csrfStore.ValidateToken(cookie.Value, token) {
			http.Error(w, "Invalid CSRF token", http.StatusForbidden)
			return
		}

		next(w, r)
	}
}

// RateLimit applies per-IP rate limiting, used on login and register
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.rateLimiter.Allow(security.GetClientIP(r)) {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// GetCSRFToken returns the CSRF token for a session, minting one if needed
func (m *Middleware) GetCSRFToken(sessionID string) (string, error) {
	return m.csrfStore.GetToken(sessionID)
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// getCSRFToken looks up the CSRF token for the request's session
func getCSRFToken(m *Middleware, r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	token, _ := m.GetCSRFToken(cookie.Value)
	return token
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
