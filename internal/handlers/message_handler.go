package handlers

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/service"
)

// MessageHandler handles message board HTTP requests
type MessageHandler struct {
	messageService *service.MessageService
	familyService  *service.FamilyService
	middleware     *Middleware
	templates      *template.Template
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messageService *service.MessageService, familyService *service.FamilyService, middleware *Middleware, templates *template.Template) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		familyService:  familyService,
		middleware:     middleware,
		templates:      templates,
	}
}

// ShowMessages displays the family message board
func (h *MessageHandler) ShowMessages(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	messages, err := h.messageService.ListMessages(user.FamilyID)
	if err != nil {
		respondWithServiceError(w, "Error loading messages", err)
		return
	}

	members, err := h.familyService.GetRoster(user.FamilyID)
	if err != nil {
		respondWithServiceError(w, "Error loading family members", err)
		return
	}

	data := MessagesViewData{
		Title:     "Messages - Myte Home Assistant",
		User:      user,
		Messages:  messages,
		Members:   members,
		CSRFToken: getCSRFToken(h.middleware, r),
	}

	if err := h.templates.ExecuteTemplate(w, "messages.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering messages template", err)
	}
}

// SendMessage posts a message to the board. Mentioned members get
// notified.
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	if _, err := h.messageService.SendMessage(user, r.FormValue("content")); err != nil {
		respondWithServiceError(w, "Error sending message", err)
		return
	}

	http.Redirect(w, r, "/messages", http.StatusSeeOther)
}

// MarkRead records that the user has read a message
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	messageID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid message ID", http.StatusBadRequest)
		return
	}

	if err := h.messageService.MarkRead(user, messageID); err != nil {
		respondWithServiceError(w, "Error marking message read", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
