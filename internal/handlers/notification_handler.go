package handlers

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/service"
)

// NotificationHandler handles notification HTTP requests
type NotificationHandler struct {
	notificationService *service.NotificationService
	middleware          *Middleware
	templates           *template.Template
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *service.NotificationService, middleware *Middleware, templates *template.Template) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		middleware:          middleware,
		templates:           templates,
	}
}

// ShowNotifications displays the user's notifications
func (h *NotificationHandler) ShowNotifications(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	notifications, err := h.notificationService.ListNotifications(user.ID)
	if err != nil {
		respondWithServiceError(w, "Error loading notifications", err)
		return
	}

	unread, err := h.notificationService.CountUnread(user.ID)
	if err != nil {
		respondWithServiceError(w, "Error counting notifications", err)
		return
	}

	data := NotificationsViewData{
		Title:         "Notifications - Myte Home Assistant",
		User:          user,
		Notifications: notifications,
		Unread:        unread,
		CSRFToken:     getCSRFToken(h.middleware, r),
	}

	if err := h.templates.ExecuteTemplate(w, "notifications.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering notifications template", err)
	}
}

// MarkRead marks a single notification read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	notificationID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid notification ID", http.StatusBadRequest)
		return
	}

	if err := h.notificationService.MarkRead(user.ID, notificationID); err != nil {
		respondWithServiceError(w, "Error marking notification read", err)
		return
	}

	http.Redirect(w, r, "/notifications", http.StatusSeeOther)
}

// MarkAllRead marks every notification for the user read
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.notificationService.MarkAllRead(user.ID); err != nil {
		respondWithServiceError(w, "Error marking notifications read", err)
		return
	}

	http.Redirect(w, r, "/notifications", http.StatusSeeOther)
}
