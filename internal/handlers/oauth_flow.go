package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/security"
)

type oauthUserInfo struct {
	Subject string
	Email   string
	Name    string
}

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// StartGoogleOAuth initiates the Google sign-in flow
func (h *AuthHandler) StartGoogleOAuth(w http.ResponseWriter, r *http.Request) {
	if !h.googleAuthEnabled() {
		http.Error(w, "Google sign-in not configured", http.StatusBadRequest)
		return
	}

	state := security.GenerateSessionID()
	h.setTempCookie(w, r, "oauth_state", state, 10*time.Minute)

	if inviteCode := r.URL.Query().Get("invite_code"); inviteCode != "" {
		h.setTempCookie(w, r, "oauth_invite_code", inviteCode, 10*time.Minute)
	}

	config := *h.googleOAuth
	config.RedirectURL = h.oauthRedirectURL(r)

	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOnline)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// GoogleOAuthCallback handles the Google callback
func (h *AuthHandler) GoogleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	if !h.googleAuthEnabled() {
		http.Error(w, "Google sign-in not configured", http.StatusBadRequest)
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if code == "" {
		h.oauthError(w, "Missing authorization code")
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		h.oauthError(w, "Invalid OAuth state")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	config := *h.googleOAuth
	config.RedirectURL = h.oauthRedirectURL(r)

	token, err := config.Exchange(ctx, code)
	if err != nil {
		h.oauthError(w, "Failed to exchange OAuth code")
		return
	}

	userInfo, err := fetchGoogleUser(ctx, token)
	if err != nil {
		h.oauthError(w, err.Error())
		return
	}

	inviteCode := ""
	if cookie, err := r.Cookie("oauth_invite_code"); err == nil {
		inviteCode = cookie.Value
	}

	h.clearTempCookie(w, r, "oauth_state")
	h.clearTempCookie(w, r, "oauth_invite_code")

	session, _, err := h.authService.OAuthLogin("google", userInfo.Subject, userInfo.Email, userInfo.Name, inviteCode)
	if err != nil {
		h.oauthError(w, err.Error())
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func fetchGoogleUser(ctx context.Context, token *oauth2.Token) (oauthUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return oauthUserInfo{}, fmt.Errorf("failed to fetch Google user info")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return oauthUserInfo{}, fmt.Errorf("failed to fetch Google user info")
	}

	var payload struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return oauthUserInfo{}, fmt.Errorf("failed to parse Google user info")
	}

	return oauthUserInfo{Subject: payload.ID, Email: payload.Email, Name: payload.Name}, nil
}

func (h *AuthHandler) oauthRedirectURL(r *http.Request) string {
	baseURL := strings.TrimSpace(h.oauthRedirectBaseURL)
	if baseURL == "" {
		scheme := "http"
		if security.IsSecureRequest(r) {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s", scheme, r.Host)
	}
	return strings.TrimRight(baseURL, "/") + "/auth/google/callback"
}

func (h *AuthHandler) setTempCookie(w http.ResponseWriter, r *http.Request, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   security.IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
	})
}

func (h *AuthHandler) clearTempCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   security.IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (h *AuthHandler) oauthError(w http.ResponseWriter, message string) {
	h.renderLogin(w, LoginViewData{
		Title:      "Login - Myte Home Assistant",
		GoogleAuth: h.googleAuthEnabled(),
		Error:      message,
	})
}
