package handlers

import (
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
)

type LoginViewData struct {
	Title      string
	GoogleAuth bool
	Error      string
	Email      string
	Success    string
}

type RegisterViewData struct {
	Title      string
	InviteCode string
	GoogleAuth bool
	Error      string
	Username   string
	Email      string
	Name       string
}

type ForgotPasswordViewData struct {
	Title   string
	Success string
	Error   string
}

type ResetPasswordViewData struct {
	Title string
	Token string
	Error string
}

type DashboardViewData struct {
	Title               string
	User                *models.User
	Family              *models.Family
	UpcomingTasks       []models.Task
	UpcomingEvents      []models.Event
	BudgetSummary       []models.CategorySummary
	LatestMealPlan      *models.MealPlan
	UnreadNotifications int
	UnreadMessages      int
	CSRFToken           string
}

type FamilyViewData struct {
	Title     string
	User      *models.User
	Family    *models.FamilyWithMembers
	Groups    []models.Group
	Flash     string
	CSRFToken string
}

type TasksViewData struct {
	Title     string
	User      *models.User
	Tasks     []models.Task
	Members   []models.User
	CSRFToken string
}

type TaskDetailViewData struct {
	Title     string
	User      *models.User
	Task      *models.Task
	Comments  []models.Comment
	Members   []models.User
	CSRFToken string
}

type CalendarViewData struct {
	Title      string
	User       *models.User
	Events     []models.Event
	SearchTerm string
	CSRFToken  string
}

type BudgetViewData struct {
	Title      string
	User       *models.User
	Summary    []models.CategorySummary
	Categories []models.BudgetCategory
	Expenses   []models.Expense
	CSRFToken  string
}

type MealsViewData struct {
	Title        string
	User         *models.User
	Plan         *models.MealPlan
	Plans        []models.MealPlan
	GroceryItems []models.GroceryItem
	AIEnabled    bool
	Flash        string
	CSRFToken    string
}

type MessagesViewData struct {
	Title     string
	User      *models.User
	Messages  []models.Message
	Members   []models.User
	CSRFToken string
}

type NotificationsViewData struct {
	Title         string
	User          *models.User
	Notifications []models.Notification
	Unread        int
	CSRFToken     string
}
