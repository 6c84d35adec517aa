package service

import (
	"strings"
	"time"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/recurrence"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/repository"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/validation"
)

// CalendarService handles calendar event business logic
type CalendarService struct {
	eventRepo *repository.EventRepository
}

// NewCalendarService creates a new calendar service
func NewCalendarService(eventRepo *repository.EventRepository) *CalendarService {
	return &CalendarService{eventRepo: eventRepo}
}

// CreateEvent creates an event, expanding a recurrence rule into one
// event per occurrence
func (s *CalendarService) CreateEvent(actor *models.User, event *models.Event) ([]models.Event, error) {
	if err := validation.ValidateTitle(event.Title); err != nil {
		return nil, err
	}
	if event.Visibility != models.VisibilityPersonal {
		event.Visibility = models.VisibilityFamily
	}

	dates, err := recurrence.Expand(event.Date, event.Recurrence, 0)
	if err != nil {
		return nil, err
	}

	var created []models.Event
	for _, date := range dates {
		e := *event
		e.FamilyID = actor.FamilyID
		e.CreatedBy = actor.ID
		e.Date = date
		id, err := s.eventRepo.CreateEvent(&e)
		if err != nil {
			return created, err
		}
		e.ID = id
		created = append(created, e)
	}
	return created, nil
}

// GetEvent returns an event the actor may see. Personal events belong
// to their creator alone.
func (s *CalendarService) GetEvent(actor *models.User, eventID int64) (*models.Event, error) {
	event, err := s.eventRepo.GetEvent(actor.FamilyID, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrNotFound
	}
	if event.Visibility == models.VisibilityPersonal && event.CreatedBy != actor.ID {
		return nil, ErrNotFound
	}
	return event, nil
}

// ListEvents returns the events visible to the actor in date order
func (s *CalendarService) ListEvents(actor *models.User) ([]models.Event, error) {
	return s.eventRepo.ListEvents(actor.FamilyID, actor.ID)
}

// ListUpcoming returns the next visible events from today forward
func (s *CalendarService) ListUpcoming(actor *models.User, limit int) ([]models.Event, error) {
	today := time.Now().Truncate(24 * time.Hour)
	return s.eventRepo.ListUpcoming(actor.FamilyID, actor.ID, today, limit)
}

// SearchEvents returns visible events matching a search term in title
// or description. A blank term returns everything.
func (s *CalendarService) SearchEvents(actor *models.User, term string) ([]models.Event, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.ListEvents(actor)
	}
	return s.eventRepo.SearchEvents(actor.FamilyID, actor.ID, term)
}

// UpdateEvent updates an event's details. Personal events may only be
// edited by their creator.
func (s *CalendarService) UpdateEvent(actor *models.User, event *models.Event) error {
	if err := validation.ValidateTitle(event.Title); err != nil {
		return err
	}
	if event.Visibility != models.VisibilityPersonal {
		event.Visibility = models.VisibilityFamily
	}

	existing, err := s.GetEvent(actor, event.ID)
	if err != nil {
		return err
	}

	event.FamilyID = actor.FamilyID
	event.CreatedBy = existing.CreatedBy
	affected, err := s.eventRepo.UpdateEvent(event)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEvent removes an event the actor may see
func (s *CalendarService) DeleteEvent(actor *models.User, eventID int64) error {
	if _, err := s.GetEvent(actor, eventID); err != nil {
		return err
	}

	affected, err := s.eventRepo.DeleteEvent(actor.FamilyID, eventID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
