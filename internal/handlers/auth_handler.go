package handlers

import (
	"html/template"
	"log"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/security"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService          *service.AuthService
	middleware           *Middleware
	templates            *template.Template
	googleOAuth          *oauth2.Config
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, middleware *Middleware, templates *template.Template, googleOAuth *oauth2.Config, oauthRedirectBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		middleware:           middleware,
		templates:            templates,
		googleOAuth:          googleOAuth,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
	}
}

// Home renders the home page
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if _, err := h.authService.ValidateSession(cookie.Value); err == nil {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ShowLogin renders the login page
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if _, err := h.authService.ValidateSession(cookie.Value); err == nil {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
	}

	h.renderLogin(w, LoginViewData{
		Title:      "Login - Myte Home Assistant",
		GoogleAuth: h.googleAuthEnabled(),
		Success:    r.URL.Query().Get("success"),
	})
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")

	session, _, err := h.authService.Login(email, password)
	if err != nil {
		h.renderLogin(w, LoginViewData{
			Title:      "Login - Myte Home Assistant",
			GoogleAuth: h.googleAuthEnabled(),
			Error:      "Invalid email or password",
			Email:      email,
		})
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// ShowRegister renders the registration page
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if _, err := h.authService.ValidateSession(cookie.Value); err == nil {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
	}

	h.renderRegister(w, RegisterViewData{
		Title:      "Register - Myte Home Assistant",
		InviteCode: r.URL.Query().Get("invite_code"),
		GoogleAuth: h.googleAuthEnabled(),
	})
}

// Register handles registration form submission
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	username := r.FormValue("username")
	email := r.FormValue("email")
	password := r.FormValue("password")
	name := r.FormValue("name")
	inviteCode := r.FormValue("invite_code")

	_, err := h.authService.Register(r.Context(), username, email, password, name, inviteCode)
	if err != nil {
		h.renderRegister(w, RegisterViewData{
			Title:      "Register - Myte Home Assistant",
			InviteCode: inviteCode,
			GoogleAuth: h.googleAuthEnabled(),
			Error:      err.Error(),
			Username:   username,
			Email:      email,
			Name:       name,
		})
		return
	}

	// Auto-login after registration
	session, _, err := h.authService.Login(email, password)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Logout handles logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		_ = h.authService.Logout(cookie.Value)
	}

	http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// VerifyEmail confirms an address from the emailed verification link
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing verification token", http.StatusBadRequest)
		return
	}

	if err := h.authService.VerifyEmail(token); err != nil {
		h.renderLogin(w, LoginViewData{
			Title:      "Login - Myte Home Assistant",
			GoogleAuth: h.googleAuthEnabled(),
			Error:      "Verification link is invalid or has expired",
		})
		return
	}

	http.Redirect(w, r, "/login?success=Email+verified", http.StatusSeeOther)
}

// ResendVerification sends a fresh verification email
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	if err := h.authService.ResendVerificationEmail(r.Context(), r.FormValue("email")); err != nil {
		log.Printf("Error resending verification email: %v", err)
	}

	http.Redirect(w, r, "/login?success=Verification+email+sent", http.StatusSeeOther)
}

// ShowForgotPassword renders the forgot-password page
func (h *AuthHandler) ShowForgotPassword(w http.ResponseWriter, r *http.Request) {
	data := ForgotPasswordViewData{Title: "Forgot Password - Myte Home Assistant"}
	if err := h.templates.ExecuteTemplate(w, "forgot_password.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering forgot password template", err)
	}
}

// ForgotPassword handles the forgot-password form. It always reports
// success so addresses cannot be probed.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), r.FormValue("email")); err != nil {
		log.Printf("Error requesting password reset: %v", err)
	}

	data := ForgotPasswordViewData{
		Title:   "Forgot Password - Myte Home Assistant",
		Success: "If that address has an account, a reset link is on its way",
	}
	if err := h.templates.ExecuteTemplate(w, "forgot_password.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering forgot password template", err)
	}
}

// ShowResetPassword renders the reset form from an emailed link
func (h *AuthHandler) ShowResetPassword(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Redirect(w, r, "/forgot-password", http.StatusSeeOther)
		return
	}

	data := ResetPasswordViewData{
		Title: "Reset Password - Myte Home Assistant",
		Token: token,
	}
	if err := h.templates.ExecuteTemplate(w, "reset_password.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering reset password template", err)
	}
}

// ResetPassword handles the reset form submission
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	token := r.FormValue("token")
	password := r.FormValue("password")

	if err := h.authService.ResetPassword(token, password); err != nil {
		data := ResetPasswordViewData{
			Title: "Reset Password - Myte Home Assistant",
			Token: token,
			Error: "Reset link is invalid or has expired",
		}
		if err := h.templates.ExecuteTemplate(w, "reset_password.tmpl", data); err != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering reset password template", err)
		}
		return
	}

	http.Redirect(w, r, "/login?success=Password+updated", http.StatusSeeOther)
}

func (h *AuthHandler) googleAuthEnabled() bool {
	return h.googleOAuth != nil && h.googleOAuth.ClientID != "" && h.googleOAuth.ClientSecret != ""
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, data LoginViewData) {
	if err := h.templates.ExecuteTemplate(w, "login.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering login template", err)
	}
}

func (h *AuthHandler) renderRegister(w http.ResponseWriter, data RegisterViewData) {
	if err := h.templates.ExecuteTemplate(w, "register.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering register template", err)
	}
}
