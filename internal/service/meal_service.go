package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/ai"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/repository"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/validation"
)

// ErrAIDisabled reports that no AI API key is configured
var ErrAIDisabled = errors.New("ai features are not configured")

// MealService handles meal planning, grocery lists and AI-assisted
// plan generation
type MealService struct {
	mealRepo *repository.MealRepository
	userRepo *repository.UserRepository
	aiClient *ai.Client
}

// NewMealService creates a new meal service
func NewMealService(mealRepo *repository.MealRepository, userRepo *repository.UserRepository, aiClient *ai.Client) *MealService {
	return &MealService{
		mealRepo: mealRepo,
		userRepo: userRepo,
		aiClient: aiClient,
	}
}

// AIEnabled reports whether AI plan generation is available
func (s *MealService) AIEnabled() bool {
	return s.aiClient != nil && s.aiClient.Enabled()
}

// CreateMealPlan saves a manually composed meal plan
func (s *MealService) CreateMealPlan(actor *models.User, plan *models.MealPlan) (*models.MealPlan, error) {
	if len(plan.Meals) == 0 {
		return nil, validation.ValidationError{Field: "meals", Message: "a meal plan needs at least one meal"}
	}

	plan.FamilyID = actor.FamilyID
	plan.CreatedBy = actor.ID
	if plan.WeekStart.IsZero() {
		plan.WeekStart = startOfWeek(time.Now())
	}

	id, err := s.mealRepo.CreateMealPlan(plan)
	if err != nil {
		return nil, err
	}
	plan.ID = id
	return plan, nil
}

// GetLatestPlan returns the family's most recent meal plan, or nil if
// none exists yet
func (s *MealService) GetLatestPlan(familyID int64) (*models.MealPlan, error) {
	return s.mealRepo.GetLatestMealPlan(familyID)
}

// ListMealPlans returns a family's meal plans, most recent first
func (s *MealService) ListMealPlans(familyID int64) ([]models.MealPlan, error) {
	return s.mealRepo.ListMealPlans(familyID)
}

// DeleteMealPlan removes a meal plan
func (s *MealService) DeleteMealPlan(familyID, planID int64) error {
	affected, err := s.mealRepo.DeleteMealPlan(familyID, planID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GeneratePlan asks the AI for a week of meals. Dietary preferences of
// every family member who shares meals are merged into the prompt, so
// one member's restriction binds the whole plan.
func (s *MealService) GeneratePlan(ctx context.Context, actor *models.User, request string) (*models.MealPlan, error) {
	if !s.AIEnabled() {
		return nil, ErrAIDisabled
	}

	roster, err := s.userRepo.GetFamilyRoster(actor.FamilyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family members: %w", err)
	}

	systemPrompt := `You are a family meal planner. Respond with a JSON object of the form
{"meals": [{"day": "Monday", "name": "...", "servings": 4, "ingredients": ["..."], "instructions": "...", "description": "..."}]}
covering seven days, Monday through Sunday, one dinner per day.`

	userPrompt := buildMealPrompt(roster, request)

	content, err := s.aiClient.ChatJSON(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate meal plan: %w", err)
	}

	var parsed struct {
		Meals []models.Meal `json:"meals"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse generated meal plan: %w", err)
	}
	if len(parsed.Meals) == 0 {
		return nil, errors.New("generated meal plan contained no meals")
	}

	plan := &models.MealPlan{
		FamilyID:  actor.FamilyID,
		CreatedBy: actor.ID,
		WeekStart: startOfWeek(time.Now()),
		Meals:     parsed.Meals,
	}
	id, err := s.mealRepo.CreateMealPlan(plan)
	if err != nil {
		return nil, err
	}
	plan.ID = id
	return plan, nil
}

// buildMealPrompt merges dietary preferences of meal-sharing members
// with the free-form request
func buildMealPrompt(roster []models.User, request string) string {
	var restrictions, likes, dislikes []string
	for _, member := range roster {
		if !member.SharedFeatures.Meals {
			continue
		}
		restrictions = append(restrictions, member.Dietary.Restrictions...)
		likes = append(likes, member.Dietary.Likes...)
		dislikes = append(dislikes, member.Dietary.Dislikes...)
	}

	var b strings.Builder
	b.WriteString("Plan dinners for a family.\n")
	if len(restrictions) > 0 {
		b.WriteString("Dietary restrictions (must be respected for every meal): ")
		b.WriteString(strings.Join(dedupeStrings(restrictions), ", "))
		b.WriteString("\n")
	}
	if len(likes) > 0 {
		b.WriteString("The family likes: ")
		b.WriteString(strings.Join(dedupeStrings(likes), ", "))
		b.WriteString("\n")
	}
	if len(dislikes) > 0 {
		b.WriteString("The family dislikes: ")
		b.WriteString(strings.Join(dedupeStrings(dislikes), ", "))
		b.WriteString("\n")
	}
	if request = strings.TrimSpace(request); request != "" {
		b.WriteString("Additional request: ")
		b.WriteString(request)
		b.WriteString("\n")
	}
	return b.String()
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if !seen[key] {
			seen[key] = true
			out = append(out, v)
		}
	}
	return out
}

// GenerateMealImage creates an image for one meal in a plan and stores
// its URL on the plan
func (s *MealService) GenerateMealImage(ctx context.Context, familyID, planID int64, day string) (string, error) {
	if !s.AIEnabled() {
		return "", ErrAIDisabled
	}

	plan, err := s.mealRepo.GetMealPlan(familyID, planID)
	if err != nil {
		return "", err
	}
	if plan == nil {
		return "", ErrNotFound
	}

	meal := plan.MealForDay(day)
	if meal == nil {
		return "", ErrNotFound
	}

	prompt := fmt.Sprintf("A homemade dinner plate of %s, appetizing food photography", meal.Name)
	url, err := s.aiClient.GenerateImage(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate meal image: %w", err)
	}

	meal.ImageURL = url
	if _, err := s.mealRepo.UpdateMealPlan(plan); err != nil {
		return "", err
	}
	return url, nil
}

// TranscribeRequest converts a voice recording into meal request text
func (s *MealService) TranscribeRequest(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if !s.AIEnabled() {
		return "", ErrAIDisabled
	}
	return s.aiClient.Transcribe(ctx, filename, audio)
}

// BuildGroceryList adds every ingredient of a plan to the family's
// grocery list, skipping names already on it
func (s *MealService) BuildGroceryList(familyID, planID int64) ([]models.GroceryItem, error) {
	plan, err := s.mealRepo.GetMealPlan(familyID, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrNotFound
	}

	existing, err := s.mealRepo.ListGroceryItems(familyID)
	if err != nil {
		return nil, err
	}
	onList := make(map[string]bool, len(existing))
	for _, item := range existing {
		onList[strings.ToLower(item.Name)] = true
	}

	var added []models.GroceryItem
	for _, meal := range plan.Meals {
		for _, ingredient := range meal.Ingredients {
			ingredient = strings.TrimSpace(ingredient)
			if ingredient == "" || onList[strings.ToLower(ingredient)] {
				continue
			}
			onList[strings.ToLower(ingredient)] = true

			item := models.GroceryItem{
				FamilyID: familyID,
				Name:     ingredient,
				Quantity: 1,
			}
			id, err := s.mealRepo.CreateGroceryItem(&item)
			if err != nil {
				return added, err
			}
			item.ID = id
			added = append(added, item)
		}
	}
	return added, nil
}

// ListGroceryItems returns the family's grocery list
func (s *MealService) ListGroceryItems(familyID int64) ([]models.GroceryItem, error) {
	return s.mealRepo.ListGroceryItems(familyID)
}

// AddGroceryItem adds a single item to the grocery list
func (s *MealService) AddGroceryItem(familyID int64, name string, quantity int) (*models.GroceryItem, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if quantity < 1 {
		quantity = 1
	}

	item := &models.GroceryItem{
		FamilyID: familyID,
		Name:     strings.TrimSpace(name),
		Quantity: quantity,
	}
	id, err := s.mealRepo.CreateGroceryItem(item)
	if err != nil {
		return nil, err
	}
	item.ID = id
	return item, nil
}

// SetGroceryItemPurchased toggles an item's purchased state
func (s *MealService) SetGroceryItemPurchased(familyID, itemID int64, purchased bool) error {
	affected, err := s.mealRepo.SetGroceryItemPurchased(familyID, itemID, purchased)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteGroceryItem removes an item from the grocery list
func (s *MealService) DeleteGroceryItem(familyID, itemID int64) error {
	affected, err := s.mealRepo.DeleteGroceryItem(familyID, itemID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearPurchased removes purchased items from the grocery list
func (s *MealService) ClearPurchased(familyID int64) error {
	return s.mealRepo.ClearPurchasedGroceryItems(familyID)
}

// startOfWeek returns the Monday of the week containing t
func startOfWeek(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return t.AddDate(0, 0, 1-weekday)
}
