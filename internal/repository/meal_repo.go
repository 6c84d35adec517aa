package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/database"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
)

// MealRepository handles database operations for meal plans and
// grocery lists
type MealRepository struct {
	db *database.DB
}

// NewMealRepository creates a new meal repository
func NewMealRepository(db *database.DB) *MealRepository {
	return &MealRepository{db: db}
}

// CreateMealPlan inserts a meal plan. The day-by-day meals are stored
// as a JSON document.
func (r *MealRepository) CreateMealPlan(plan *models.MealPlan) (int64, error) {
	meals, err := json.Marshal(plan.Meals)
	if err != nil {
		return 0, fmt.Errorf("failed to encode meals: %w", err)
	}

	query := "INSERT INTO meal_plans (family_id, created_by, week_start, meals) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, plan.FamilyID, plan.CreatedBy, plan.WeekStart, string(meals))
	if err != nil {
		return 0, fmt.Errorf("failed to create meal plan: %w", err)
	}
	return id, nil
}

// GetMealPlan retrieves a meal plan scoped to a family
func (r *MealRepository) GetMealPlan(familyID, planID int64) (*models.MealPlan, error) {
	query := `
		SELECT id, family_id, created_by, week_start, meals, created_at
		FROM meal_plans
		WHERE id = ? AND family_id = ?
	`
	plan, err := r.scanMealPlan(r.db.QueryRow(query, planID, familyID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meal plan: %w", err)
	}
	return plan, nil
}

// GetLatestMealPlan retrieves the most recent meal plan for a family
func (r *MealRepository) GetLatestMealPlan(familyID int64) (*models.MealPlan, error) {
	query := `
		SELECT id, family_id, created_by, week_start, meals, created_at
		FROM meal_plans
		WHERE family_id = ?
		ORDER BY week_start DESC, id DESC
		LIMIT 1
	`
	plan, err := r.scanMealPlan(r.db.QueryRow(query, familyID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest meal plan: %w", err)
	}
	return plan, nil
}

// ListMealPlans retrieves a family's meal plans, most recent first
func (r *MealRepository) ListMealPlans(familyID int64) ([]models.MealPlan, error) {
	query := `
		SELECT id, family_id, created_by, week_start, meals, created_at
		FROM meal_plans
		WHERE family_id = ?
		ORDER BY week_start DESC, id DESC
	`
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query meal plans: %w", err)
	}
	defer rows.Close()

	var plans []models.MealPlan
	for rows.Next() {
		plan, err := r.scanMealPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal plan: %w", err)
		}
		plans = append(plans, *plan)
	}
	return plans, rows.Err()
}

// UpdateMealPlan replaces a plan's meals, scoped to a family. Returns
// the number of rows updated.
func (r *MealRepository) UpdateMealPlan(plan *models.MealPlan) (int64, error) {
	meals, err := json.Marshal(plan.Meals)
	if err != nil {
		return 0, fmt.Errorf("failed to encode meals: %w", err)
	}

	query := "UPDATE meal_plans SET meals = ? WHERE id = ? AND family_id = ?"
	result, err := r.db.Exec(query, string(meals), plan.ID, plan.FamilyID)
	if err != nil {
		return 0, fmt.Errorf("failed to update meal plan: %w", err)
	}
	return result.RowsAffected()
}

// DeleteMealPlan removes a meal plan scoped to a family, returning the
// number of rows deleted
func (r *MealRepository) DeleteMealPlan(familyID, planID int64) (int64, error) {
	result, err := r.db.Exec("DELETE FROM meal_plans WHERE id = ? AND family_id = ?", planID, familyID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete meal plan: %w", err)
	}
	return result.RowsAffected()
}

func (r *MealRepository) scanMealPlan(row rowScanner) (*models.MealPlan, error) {
	plan := &models.MealPlan{}
	var meals string
	err := row.Scan(&plan.ID, &plan.FamilyID, &plan.CreatedBy, &plan.WeekStart, &meals, &plan.CreatedAt)
	if err != nil {
		return nil, err
	}
	if meals != "" {
		if err := json.Unmarshal([]byte(meals), &plan.Meals); err != nil {
			return nil, fmt.Errorf("failed to decode meals: %w", err)
		}
	}
	return plan, nil
}

// CreateGroceryItem inserts a grocery list item
func (r *MealRepository) CreateGroceryItem(item *models.GroceryItem) (int64, error) {
	query := "INSERT INTO grocery_items (family_id, name, quantity, purchased) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, item.FamilyID, item.Name, item.Quantity, item.Purchased)
	if err != nil {
		return 0, fmt.Errorf("failed to create grocery item: %w", err)
	}
	return id, nil
}

// ListGroceryItems retrieves a family's grocery list, unpurchased
// items first
func (r *MealRepository) ListGroceryItems(familyID int64) ([]models.GroceryItem, error) {
	query := `
		SELECT id, family_id, name, quantity, purchased, created_at
		FROM grocery_items
		WHERE family_id = ?
		ORDER BY purchased ASC, name ASC
	`
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query grocery items: %w", err)
	}
	defer rows.Close()

	var items []models.GroceryItem
	for rows.Next() {
		var item models.GroceryItem
		if err := rows.Scan(&item.ID, &item.FamilyID, &item.Name, &item.Quantity, &item.Purchased, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan grocery item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// SetGroceryItemPurchased toggles an item's purchased flag, scoped to a
// family. Returns the number of rows updated.
func (r *MealRepository) SetGroceryItemPurchased(familyID, itemID int64, purchased bool) (int64, error) {
	query := "UPDATE grocery_items SET purchased = ? WHERE id = ? AND family_id = ?"
	result, err := r.db.Exec(query, purchased, itemID, familyID)
	if err != nil {
		return 0, fmt.Errorf("failed to update grocery item: %w", err)
	}
	return result.RowsAffected()
}

// DeleteGroceryItem removes a grocery item scoped to a family,
// returning the number of rows deleted
func (r *MealRepository) DeleteGroceryItem(familyID, itemID int64) (int64, error) {
	result, err := r.db.Exec("DELETE FROM grocery_items WHERE id = ? AND family_id = ?", itemID, familyID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete grocery item: %w", err)
	}
	return result.RowsAffected()
}

// ClearPurchasedGroceryItems removes purchased items from a family's
// grocery list
func (r *MealRepository) ClearPurchasedGroceryItems(familyID int64) error {
	_, err := r.db.Exec("DELETE FROM grocery_items WHERE family_id = ? AND purchased = ?", familyID, true)
	if err != nil {
		return fmt.Errorf("failed to clear purchased grocery items: %w", err)
	}
	return nil
}
