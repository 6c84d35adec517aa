package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/database"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
)

// BudgetRepository handles database operations for budget categories
// and expenses
type BudgetRepository struct {
	db *database.DB
}

// NewBudgetRepository creates a new budget repository
func NewBudgetRepository(db *database.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// CreateCategory inserts a budget category
func (r *BudgetRepository) CreateCategory(category *models.BudgetCategory) (int64, error) {
	query := "INSERT INTO budget_categories (family_id, name, spend_limit) VALUES (?, ?, ?)"
	id, err := r.db.ExecReturningID(query, category.FamilyID, category.Name, category.Limit)
	if err != nil {
		return 0, fmt.Errorf("failed to create budget category: %w", err)
	}
	return id, nil
}

// GetCategory retrieves a budget category scoped to a family
func (r *BudgetRepository) GetCategory(familyID, categoryID int64) (*models.BudgetCategory, error) {
	query := `
		SELECT id, family_id, name, spend_limit, created_at
		FROM budget_categories
		WHERE id = ? AND family_id = ?
	`
	var c models.BudgetCategory
	err := r.db.QueryRow(query, categoryID, familyID).Scan(&c.ID, &c.FamilyID, &c.Name, &c.Limit, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget category: %w", err)
	}
	return &c, nil
}

// ListCategories retrieves a family's budget categories by name
func (r *BudgetRepository) ListCategories(familyID int64) ([]models.BudgetCategory, error) {
	query := `
		SELECT id, family_id, name, spend_limit, created_at
		FROM budget_categories
		WHERE family_id = ?
		ORDER BY name ASC
	`
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget categories: %w", err)
	}
	defer rows.Close()

	var categories []models.BudgetCategory
	for rows.Next() {
		var c models.BudgetCategory
		if err := rows.Scan(&c.ID, &c.FamilyID, &c.Name, &c.Limit, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan budget category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateCategory updates a category's name and limit, scoped to a
// family. Returns the number of rows updated.
func (r *BudgetRepository) UpdateCategory(category *models.BudgetCategory) (int64, error) {
	query := "UPDATE budget_categories SET name = ?, spend_limit = ? WHERE id = ? AND family_id = ?"
	result, err := r.db.Exec(query, category.Name, category.Limit, category.ID, category.FamilyID)
	if err != nil {
		return 0, fmt.Errorf("failed to update budget category: %w", err)
	}
	return result.RowsAffected()
}

// DeleteCategory removes a category and its expenses, returning the
// number of category rows deleted
func (r *BudgetRepository) DeleteCategory(familyID, categoryID int64) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM expenses WHERE category_id = ? AND family_id = ?", categoryID, familyID); err != nil {
		return 0, fmt.Errorf("failed to delete category expenses: %w", err)
	}

	result, err := tx.Exec("DELETE FROM budget_categories WHERE id = ? AND family_id = ?", categoryID, familyID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete budget category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return affected, nil
}

// CreateExpense inserts an expense against a category
func (r *BudgetRepository) CreateExpense(expense *models.Expense) (int64, error) {
	query := `
		INSERT INTO expenses (family_id, category_id, created_by, description, amount, expense_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		expense.FamilyID, expense.CategoryID, expense.CreatedBy,
		expense.Description, expense.Amount, expense.Date)
	if err != nil {
		return 0, fmt.Errorf("failed to create expense: %w", err)
	}
	return id, nil
}

// ListExpenses retrieves a family's expenses, newest first
func (r *BudgetRepository) ListExpenses(familyID int64) ([]models.Expense, error) {
	query := `
		SELECT id, family_id, category_id, created_by, description, amount, expense_date, created_at
		FROM expenses
		WHERE family_id = ?
		ORDER BY expense_date DESC, id DESC
	`
	return r.queryExpenses(query, familyID)
}

// ListExpensesByCategory retrieves a category's expenses, newest first
func (r *BudgetRepository) ListExpensesByCategory(familyID, categoryID int64) ([]models.Expense, error) {
	query := `
		SELECT id, family_id, category_id, created_by, description, amount, expense_date, created_at
		FROM expenses
		WHERE family_id = ? AND category_id = ?
		ORDER BY expense_date DESC, id DESC
	`
	return r.queryExpenses(query, familyID, categoryID)
}

func (r *BudgetRepository) queryExpenses(query string, args ...interface{}) ([]models.Expense, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		err := rows.Scan(&e.ID, &e.FamilyID, &e.CategoryID, &e.CreatedBy,
			&e.Description, &e.Amount, &e.Date, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// DeleteExpense removes an expense scoped to a family, returning the
// number of rows deleted
func (r *BudgetRepository) DeleteExpense(familyID, expenseID int64) (int64, error) {
	result, err := r.db.Exec("DELETE FROM expenses WHERE id = ? AND family_id = ?", expenseID, familyID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expense: %w", err)
	}
	return result.RowsAffected()
}

// SumExpensesByCategory returns total spend per category for a family
// within a date range, keyed by category id
func (r *BudgetRepository) SumExpensesByCategory(familyID int64, from, to time.Time) (map[int64]float64, error) {
	query := `
		SELECT category_id, SUM(amount)
		FROM expenses
		WHERE family_id = ? AND expense_date >= ? AND expense_date <= ?
		GROUP BY category_id
	`
	rows, err := r.db.Query(query, familyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum expenses: %w", err)
	}
	defer rows.Close()

	sums := make(map[int64]float64)
	for rows.Next() {
		var categoryID int64
		var total float64
		if err := rows.Scan(&categoryID, &total); err != nil {
			return nil, fmt.Errorf("failed to scan expense sum: %w", err)
		}
		sums[categoryID] = total
	}
	return sums, rows.Err()
}
