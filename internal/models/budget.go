package models

import "time"

// BudgetCategory groups expenses under a spending limit
type BudgetCategory struct {
	ID        int64
	FamilyID  int64
	Name      string
	Limit     float64
	CreatedAt time.Time
}

// Expense records a single spend against a category
type Expense struct {
	ID          int64
	FamilyID    int64
	CategoryID  int64
	CreatedBy   int64
	Amount      float64
	Date        time.Time
	Description string
	CreatedAt   time.Time
}

// CategorySummary is a category with its accumulated spend for a
// reporting period
type CategorySummary struct {
	Category  BudgetCategory
	Spent     float64
	Remaining float64
}

// OverLimit reports whether spending has exceeded the category's limit
func (s CategorySummary) OverLimit() bool {
	return s.Category.Limit > 0 && s.Spent > s.Category.Limit
}
