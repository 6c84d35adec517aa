package models

import (
	"strings"
	"time"
)

// Meal is a single planned meal within a weekly plan
type Meal struct {
	Day          string   `json:"day"`
	Name         string   `json:"name"`
	Servings     int      `json:"servings"`
	Ingredients  []string `json:"ingredients,omitempty"`
	Instructions string   `json:"instructions,omitempty"`
	Description  string   `json:"description,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
}

// MealPlan is a week of meals for a family
type MealPlan struct {
	ID        int64
	FamilyID  int64
	CreatedBy int64
	WeekStart time.Time
	Meals     []Meal
	CreatedAt time.Time
}

// MealForDay returns the plan's meal for the given weekday name, or nil
func (p *MealPlan) MealForDay(day string) *Meal {
	for i := range p.Meals {
		if strings.EqualFold(p.Meals[i].Day, day) {
			return &p.Meals[i]
		}
	}
	return nil
}

// GroceryItem is one entry on the family grocery list
type GroceryItem struct {
	ID        int64
	FamilyID  int64
	Name      string
	Quantity  int
	Purchased bool
	CreatedAt time.Time
}
