package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/service"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/validation"
)

// CalendarHandler handles calendar HTTP requests
type CalendarHandler struct {
	calendarService *service.CalendarService
	middleware      *Middleware
	templates       *template.Template
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(calendarService *service.CalendarService, middleware *Middleware, templates *template.Template) *CalendarHandler {
	return &CalendarHandler{
		calendarService: calendarService,
		middleware:      middleware,
		templates:       templates,
	}
}

// ShowCalendar displays the calendar page, optionally filtered by a
// search term
func (h *CalendarHandler) ShowCalendar(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	term := r.URL.Query().Get("q")
	events, err := h.calendarService.SearchEvents(user, term)
	if err != nil {
		respondWithServiceError(w, "Error loading events", err)
		return
	}

	data := CalendarViewData{
		Title:      "Calendar - Myte Home Assistant",
		User:       user,
		Events:     events,
		SearchTerm: term,
		CSRFToken:  getCSRFToken(h.middleware, r),
	}

	if err := h.templates.ExecuteTemplate(w, "calendar.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering calendar template", err)
	}
}

// EventsAPI serves the calendar events as JSON for the frontend widget
func (h *CalendarHandler) EventsAPI(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		http.Error(w, ErrUnauthorized, http.StatusUnauthorized)
		return
	}

	events, err := h.calendarService.ListEvents(user)
	if err != nil {
		respondWithServiceError(w, "Error loading events", err)
		return
	}

	type eventJSON struct {
		ID          int64  `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description,omitempty"`
		Date        string `json:"date"`
		Time        string `json:"time,omitempty"`
		Category    string `json:"category,omitempty"`
		Visibility  string `json:"visibility"`
	}

	payload := make([]eventJSON, 0, len(events))
	for _, e := range events {
		payload = append(payload, eventJSON{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			Date:        e.Date.Format(validation.DateLayout),
			Time:        e.Time,
			Category:    e.Category,
			Visibility:  e.Visibility,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error encoding events", err)
	}
}

// CreateEvent handles the new event form. Recurring events expand into
// one row per occurrence.
func (h *CalendarHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	event, err := eventFromForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := h.calendarService.CreateEvent(user, event); err != nil {
		respondWithServiceError(w, "Error creating event", err)
		return
	}

	http.Redirect(w, r, "/calendar", http.StatusSeeOther)
}

// UpdateEvent handles event edits
func (h *CalendarHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	eventID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid event ID", http.StatusBadRequest)
		return
	}

	event, err := eventFromForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	event.ID = eventID

	if err := h.calendarService.UpdateEvent(user, event); err != nil {
		respondWithServiceError(w, "Error updating event", err)
		return
	}

	http.Redirect(w, r, "/calendar", http.StatusSeeOther)
}

// DeleteEvent removes an event
func (h *CalendarHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	eventID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid event ID", http.StatusBadRequest)
		return
	}

	if err := h.calendarService.DeleteEvent(user, eventID); err != nil {
		respondWithServiceError(w, "Error deleting event", err)
		return
	}

	http.Redirect(w, r, "/calendar", http.StatusSeeOther)
}

// eventFromForm builds an event from common form fields
func eventFromForm(r *http.Request) (*models.Event, error) {
	date, err := validation.ParseDate("date", r.FormValue("date"))
	if err != nil {
		return nil, err
	}

	return &models.Event{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Date:        date,
		Time:        r.FormValue("time"),
		Category:    r.FormValue("category"),
		Visibility:  r.FormValue("visibility"),
		Recurrence:  r.FormValue("recurrence"),
	}, nil
}
