package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/service"
)

// MealHandler handles meal planning HTTP requests
type MealHandler struct {
	mealService   *service.MealService
	middleware    *Middleware
	templates     *template.Template
	uploadMaxSize int64
}

// NewMealHandler creates a new meal handler
func NewMealHandler(mealService *service.MealService, middleware *Middleware, templates *template.Template, uploadMaxSize int64) *MealHandler {
	return &MealHandler{
		mealService:   mealService,
		middleware:    middleware,
		templates:     templates,
		uploadMaxSize: uploadMaxSize,
	}
}

// ShowMeals displays the meal planning page
func (h *MealHandler) ShowMeals(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	plan, err := h.mealService.GetLatestPlan(user.FamilyID)
	if err != nil {
		respondWithServiceError(w, "Error loading latest meal plan", err)
		return
	}

	plans, err := h.mealService.ListMealPlans(user.FamilyID)
	if err != nil {
		respondWithServiceError(w, "Error loading meal plans", err)
		return
	}

	items, err := h.mealService.ListGroceryItems(user.FamilyID)
	if err != nil {
		respondWithServiceError(w, "Error loading grocery items", err)
		return
	}

	data := MealsViewData{
		Title:        "Meals - Myte Home Assistant",
		User:         user,
		Plan:         plan,
		Plans:        plans,
		GroceryItems: items,
		AIEnabled:    h.mealService.AIEnabled(),
		Flash:        popFlash(w, r),
		CSRFToken:    getCSRFToken(h.middleware, r),
	}

	if err := h.templates.ExecuteTemplate(w, "meals.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering meals template", err)
	}
}

// GeneratePlan asks the AI for a new weekly meal plan
func (h *MealHandler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	if _, err := h.mealService.GeneratePlan(r.Context(), user, r.FormValue("request")); err != nil {
		respondWithServiceError(w, "Error generating meal plan", err)
		return
	}

	setFlash(w, "Meal plan generated")
	http.Redirect(w, r, "/meals", http.StatusSeeOther)
}

// DeletePlan removes a meal plan
func (h *MealHandler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	planID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid plan ID", http.StatusBadRequest)
		return
	}

	if err := h.mealService.DeleteMealPlan(user.FamilyID, planID); err != nil {
		respondWithServiceError(w, "Error deleting meal plan", err)
		return
	}

	http.Redirect(w, r, "/meals", http.StatusSeeOther)
}

// GenerateMealImage creates an image for one meal of a plan and
// returns its URL as JSON
func (h *MealHandler) GenerateMealImage(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	planID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid plan ID", http.StatusBadRequest)
		return
	}

	imageURL, err := h.mealService.GenerateMealImage(r.Context(), user.FamilyID, planID, r.FormValue("day"))
	if err != nil {
		respondWithServiceError(w, "Error generating meal image", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"image_url": imageURL})
}

// TranscribeRequest transcribes an uploaded audio clip into text for
// the meal request field
func (h *MealHandler) TranscribeRequest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.uploadMaxSize); err != nil {
		http.Error(w, "Upload too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		http.Error(w, "Missing audio file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	text, err := h.mealService.TranscribeRequest(r.Context(), header.Filename, file)
	if err != nil {
		respondWithServiceError(w, "Error transcribing audio", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"text": text})
}

// BuildGroceryList adds a plan's ingredients to the grocery list
func (h *MealHandler) BuildGroceryList(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	planID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid plan ID", http.StatusBadRequest)
		return
	}

	if _, err := h.mealService.BuildGroceryList(user.FamilyID, planID); err != nil {
		respondWithServiceError(w, "Error building grocery list", err)
		return
	}

	setFlash(w, "Grocery list updated")
	http.Redirect(w, r, "/meals", http.StatusSeeOther)
}

// AddGroceryItem handles the new grocery item form
func (h *MealHandler) AddGroceryItem(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	quantity := 1
	if q := r.FormValue("quantity"); q != "" {
		parsed, err := strconv.Atoi(q)
		if err != nil || parsed < 1 {
			http.Error(w, "Invalid quantity", http.StatusBadRequest)
			return
		}
		quantity = parsed
	}

	if _, err := h.mealService.AddGroceryItem(user.FamilyID, r.FormValue("name"), quantity); err != nil {
		respondWithServiceError(w, "Error adding grocery item", err)
		return
	}

	http.Redirect(w, r, "/meals", http.StatusSeeOther)
}

// ToggleGroceryItem marks a grocery item purchased or not
func (h *MealHandler) ToggleGroceryItem(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	itemID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}

	purchased := r.FormValue("purchased") == "true" || r.FormValue("purchased") == "on"

	if err := h.mealService.SetGroceryItemPurchased(user.FamilyID, itemID, purchased); err != nil {
		respondWithServiceError(w, "Error updating grocery item", err)
		return
	}

	http.Redirect(w, r, "/meals", http.StatusSeeOther)
}

// DeleteGroceryItem removes a grocery item
func (h *MealHandler) DeleteGroceryItem(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	itemID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}

	if err := h.mealService.DeleteGroceryItem(user.FamilyID, itemID); err != nil {
		respondWithServiceError(w, "Error deleting grocery item", err)
		return
	}

	http.Redirect(w, r, "/meals", http.StatusSeeOther)
}

// ClearPurchased removes all purchased items from the grocery list
func (h *MealHandler) ClearPurchased(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.mealService.ClearPurchased(user.FamilyID); err != nil {
		respondWithServiceError(w, "Error clearing purchased items", err)
		return
	}

	http.Redirect(w, r, "/meals", http.StatusSeeOther)
}
