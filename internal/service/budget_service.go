package service

import (
	"time"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/repository"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/validation"
)

// BudgetService handles budget category and expense business logic
type BudgetService struct {
	budgetRepo *repository.BudgetRepository
}

// NewBudgetService creates a new budget service
func NewBudgetService(budgetRepo *repository.BudgetRepository) *BudgetService {
	return &BudgetService{budgetRepo: budgetRepo}
}

// CreateCategory creates a budget category for the actor's family
func (s *BudgetService) CreateCategory(actor *models.User, name string, limit float64) (*models.BudgetCategory, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, validation.ValidationError{Field: "limit", Message: "limit cannot be negative"}
	}

	category := &models.BudgetCategory{
		FamilyID: actor.FamilyID,
		Name:     name,
		Limit:    limit,
	}
	id, err := s.budgetRepo.CreateCategory(category)
	if err != nil {
		return nil, err
	}
	category.ID = id
	return category, nil
}

// ListCategories returns a family's budget categories
func (s *BudgetService) ListCategories(familyID int64) ([]models.BudgetCategory, error) {
	return s.budgetRepo.ListCategories(familyID)
}

// UpdateCategory changes a category's name and spending limit
func (s *BudgetService) UpdateCategory(actor *models.User, categoryID int64, name string, limit float64) error {
	if err := validation.ValidateName(name); err != nil {
		return err
	}
	if limit < 0 {
		return validation.ValidationError{Field: "limit", Message: "limit cannot be negative"}
	}

	affected, err := s.budgetRepo.UpdateCategory(&models.BudgetCategory{
		ID:       categoryID,
		FamilyID: actor.FamilyID,
		Name:     name,
		Limit:    limit,
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCategory removes a category along with its expenses
func (s *BudgetService) DeleteCategory(familyID, categoryID int64) error {
	affected, err := s.budgetRepo.DeleteCategory(familyID, categoryID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddExpense records an expense against one of the family's categories
func (s *BudgetService) AddExpense(actor *models.User, expense *models.Expense) (*models.Expense, error) {
	if expense.Amount <= 0 {
		return nil, validation.ValidationError{Field: "amount", Message: "amount must be positive"}
	}

	category, err := s.budgetRepo.GetCategory(actor.FamilyID, expense.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}

	expense.FamilyID = actor.FamilyID
	expense.CreatedBy = actor.ID
	if expense.Date.IsZero() {
		expense.Date = time.Now()
	}

	id, err := s.budgetRepo.CreateExpense(expense)
	if err != nil {
		return nil, err
	}
	expense.ID = id
	return expense, nil
}

// ListExpenses returns a family's expenses, newest first
func (s *BudgetService) ListExpenses(familyID int64) ([]models.Expense, error) {
	return s.budgetRepo.ListExpenses(familyID)
}

// DeleteExpense removes an expense
func (s *BudgetService) DeleteExpense(familyID, expenseID int64) error {
	affected, err := s.budgetRepo.DeleteExpense(familyID, expenseID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// MonthSummary returns per-category totals for the month containing the
// given time, pairing each category with its limit and spend
func (s *BudgetService) MonthSummary(familyID int64, at time.Time) ([]models.CategorySummary, error) {
	monthStart := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, at.Location())
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)

	categories, err := s.budgetRepo.ListCategories(familyID)
	if err != nil {
		return nil, err
	}

	sums, err := s.budgetRepo.SumExpensesByCategory(familyID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.CategorySummary, 0, len(categories))
	for _, category := range categories {
		spent := sums[category.ID]
		summaries = append(summaries, models.CategorySummary{
			Category:  category,
			Spent:     spent,
			Remaining: category.Limit - spent,
		})
	}
	return summaries, nil
}
