package handlers

import (
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/service"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/validation"
)

// BudgetHandler handles budget HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
	middleware    *Middleware
	templates     *template.Template
}

// NewBudgetHandler creates a new budget handler
func NewBudgetHandler(budgetService *service.BudgetService, middleware *Middleware, templates *template.Template) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
		middleware:    middleware,
		templates:     templates,
	}
}

// ShowBudget displays the budget page with the current month's summary
func (h *BudgetHandler) ShowBudget(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	summary, err := h.budgetService.MonthSummary(user.FamilyID, time.Now())
	if err != nil {
		respondWithServiceError(w, "Error loading budget summary", err)
		return
	}

	categories, err := h.budgetService.ListCategories(user.FamilyID)
	if err != nil {
		respondWithServiceError(w, "Error loading categories", err)
		return
	}

	expenses, err := h.budgetService.ListExpenses(user.FamilyID)
	if err != nil {
		respondWithServiceError(w, "Error loading expenses", err)
		return
	}

	data := BudgetViewData{
		Title:      "Budget - Myte Home Assistant",
		User:       user,
		Summary:    summary,
		Categories: categories,
		Expenses:   expenses,
		CSRFToken:  getCSRFToken(h.middleware, r),
	}

	if err := h.templates.ExecuteTemplate(w, "budget.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering budget template", err)
	}
}

// CreateCategory handles the new category form
func (h *BudgetHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	limit, err := parseAmount(r.FormValue("limit"))
	if err != nil {
		http.Error(w, "Invalid spending limit", http.StatusBadRequest)
		return
	}

	if _, err := h.budgetService.CreateCategory(user, r.FormValue("name"), limit); err != nil {
		respondWithServiceError(w, "Error creating category", err)
		return
	}

	http.Redirect(w, r, "/budget", http.StatusSeeOther)
}

// UpdateCategory handles category edits
func (h *BudgetHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	categoryID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid category ID", http.StatusBadRequest)
		return
	}

	limit, err := parseAmount(r.FormValue("limit"))
	if err != nil {
		http.Error(w, "Invalid spending limit", http.StatusBadRequest)
		return
	}

	if err := h.budgetService.UpdateCategory(user, categoryID, r.FormValue("name"), limit); err != nil {
		respondWithServiceError(w, "Error updating category", err)
		return
	}

	http.Redirect(w, r, "/budget", http.StatusSeeOther)
}

// DeleteCategory removes a category and its expenses
func (h *BudgetHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	categoryID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid category ID", http.StatusBadRequest)
		return
	}

	if err := h.budgetService.DeleteCategory(user.FamilyID, categoryID); err != nil {
		respondWithServiceError(w, "Error deleting category", err)
		return
	}

	http.Redirect(w, r, "/budget", http.StatusSeeOther)
}

// AddExpense handles the new expense form
func (h *BudgetHandler) AddExpense(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	categoryID, err := strconv.ParseInt(r.FormValue("category_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid category ID", http.StatusBadRequest)
		return
	}

	amount, err := parseAmount(r.FormValue("amount"))
	if err != nil {
		http.Error(w, "Invalid amount", http.StatusBadRequest)
		return
	}

	expense := &models.Expense{
		CategoryID:  categoryID,
		Amount:      amount,
		Description: r.FormValue("description"),
	}

	// Date is optional, today when omitted
	if dateValue := r.FormValue("date"); dateValue != "" {
		date, err := validation.ParseDate("date", dateValue)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		expense.Date = date
	}

	if _, err := h.budgetService.AddExpense(user, expense); err != nil {
		respondWithServiceError(w, "Error adding expense", err)
		return
	}

	http.Redirect(w, r, "/budget", http.StatusSeeOther)
}

// DeleteExpense removes an expense
func (h *BudgetHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	expenseID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid expense ID", http.StatusBadRequest)
		return
	}

	if err := h.budgetService.DeleteExpense(user.FamilyID, expenseID); err != nil {
		respondWithServiceError(w, "Error deleting expense", err)
		return
	}

	http.Redirect(w, r, "/budget", http.StatusSeeOther)
}

func parseAmount(value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.ParseFloat(value, 64)
}
