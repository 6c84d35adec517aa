package handlers

import (
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/service"
)

const (
	dashboardTaskLimit  = 5
	dashboardEventLimit = 5
)

// DashboardHandler renders the aggregated family dashboard
type DashboardHandler struct {
	familyService       *service.FamilyService
	taskService         *service.TaskService
	calendarService     *service.CalendarService
	budgetService       *service.BudgetService
	mealService         *service.MealService
	messageService      *service.MessageService
	notificationService *service.NotificationService
	middleware          *Middleware
	templates           *template.Template
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(familyService *service.FamilyService, taskService *service.TaskService, calendarService *service.CalendarService, budgetService *service.BudgetService, mealService *service.MealService, messageService *service.MessageService, notificationService *service.NotificationService, middleware *Middleware, templates *template.Template) *DashboardHandler {
	return &DashboardHandler{
		familyService:       familyService,
		taskService:         taskService,
		calendarService:     calendarService,
		budgetService:       budgetService,
		mealService:         mealService,
		messageService:      messageService,
		notificationService: notificationService,
		middleware:          middleware,
		templates:           templates,
	}
}

// Dashboard renders the dashboard page. Sections follow the user's
// shared feature settings, an opted-out section is simply left empty.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	family, err := h.familyService.GetFamily(user.FamilyID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading family", err)
		return
	}

	data := DashboardViewData{
		Title:     "Dashboard - Myte Home Assistant",
		User:      user,
		Family:    &family.Family,
		CSRFToken: getCSRFToken(h.middleware, r),
	}

	if user.SharedFeatures.Tasks {
		tasks, err := h.taskService.ListUpcoming(user.FamilyID, dashboardTaskLimit)
		if err != nil {
			log.Printf("Error loading upcoming tasks: %v", err)
		}
		data.UpcomingTasks = tasks
	}

	events, err := h.calendarService.ListUpcoming(user, dashboardEventLimit)
	if err != nil {
		log.Printf("Error loading upcoming events: %v", err)
	}
	data.UpcomingEvents = events

	if user.SharedFeatures.Budget {
		summary, err := h.budgetService.MonthSummary(user.FamilyID, time.Now())
		if err != nil {
			log.Printf("Error loading budget summary: %v", err)
		}
		data.BudgetSummary = summary
	}

	if user.SharedFeatures.Meals {
		plan, err := h.mealService.GetLatestPlan(user.FamilyID)
		if err != nil {
			log.Printf("Error loading latest meal plan: %v", err)
		}
		data.LatestMealPlan = plan
	}

	unreadNotifications, err := h.notificationService.CountUnread(user.ID)
	if err != nil {
		log.Printf("Error counting unread notifications: %v", err)
	}
	data.UnreadNotifications = unreadNotifications

	unreadMessages, err := h.messageService.UnreadCount(user)
	if err != nil {
		log.Printf("Error counting unread messages: %v", err)
	}
	data.UnreadMessages = unreadMessages

	if err := h.templates.ExecuteTemplate(w, "dashboard.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering dashboard template", err)
	}
}
