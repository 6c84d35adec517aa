package handlers

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/service"
)

// FamilyHandler handles family management HTTP requests
type FamilyHandler struct {
	familyService *service.FamilyService
	middleware    *Middleware
	templates     *template.Template
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(familyService *service.FamilyService, middleware *Middleware, templates *template.Template) *FamilyHandler {
	return &FamilyHandler{
		familyService: familyService,
		middleware:    middleware,
		templates:     templates,
	}
}

// ShowFamily displays the family management page
func (h *FamilyHandler) ShowFamily(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	family, err := h.familyService.GetFamily(user.FamilyID)
	if err != nil {
		respondWithServiceError(w, "Error loading family", err)
		return
	}

	groups, err := h.familyService.ListGroups(user.FamilyID)
	if err != nil {
		respondWithServiceError(w, "Error loading groups", err)
		return
	}

	data := FamilyViewData{
		Title:     "Family - Myte Home Assistant",
		User:      user,
		Family:    family,
		Groups:    groups,
		Flash:     popFlash(w, r),
		CSRFToken: getCSRFToken(h.middleware, r),
	}

	if err := h.templates.ExecuteTemplate(w, "family.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering family template", err)
	}
}

// RenameFamily handles the family rename form
func (h *FamilyHandler) RenameFamily(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	if err := h.familyService.RenameFamily(user, r.FormValue("name")); err != nil {
		respondWithServiceError(w, "Error renaming family", err)
		return
	}

	http.Redirect(w, r, "/family", http.StatusSeeOther)
}

// SendInvite emails the family invite code to an address
func (h *FamilyHandler) SendInvite(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	if err := h.familyService.SendInvite(r.Context(), user, r.FormValue("email")); err != nil {
		respondWithServiceError(w, "Error sending invite", err)
		return
	}

	setFlash(w, "Invite sent")
	http.Redirect(w, r, "/family", http.StatusSeeOther)
}

// JoinFamily switches the user into another family by invite code
func (h *FamilyHandler) JoinFamily(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	if _, err := h.familyService.JoinFamily(user, r.FormValue("invite_code")); err != nil {
		respondWithServiceError(w, "Error joining family", err)
		return
	}

	http.Redirect(w, r, "/family", http.StatusSeeOther)
}

// ReturnHome moves a switched user back to their original family
func (h *FamilyHandler) ReturnHome(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.familyService.ReturnHome(user); err != nil {
		respondWithServiceError(w, "Error returning home", err)
		return
	}

	http.Redirect(w, r, "/family", http.StatusSeeOther)
}

// PromoteMember changes a family member's role
func (h *FamilyHandler) PromoteMember(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	memberID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid member ID", http.StatusBadRequest)
		return
	}

	if err := h.familyService.PromoteMember(user, memberID, r.FormValue("role")); err != nil {
		respondWithServiceError(w, "Error updating member role", err)
		return
	}

	http.Redirect(w, r, "/family", http.StatusSeeOther)
}

// UpdateSharedFeatures saves the user's feature sharing settings
func (h *FamilyHandler) UpdateSharedFeatures(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	features := models.SharedFeatures{
		Tasks:  r.FormValue("tasks") == "on",
		Meals:  r.FormValue("meals") == "on",
		Budget: r.FormValue("budget") == "on",
	}

	if err := h.familyService.UpdateSharedFeatures(user.ID, features); err != nil {
		respondWithServiceError(w, "Error updating shared features", err)
		return
	}

	http.Redirect(w, r, "/family", http.StatusSeeOther)
}

// UpdateDietaryPreferences saves the user's food preferences
func (h *FamilyHandler) UpdateDietaryPreferences(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	prefs := models.DietaryPreferences{
		Restrictions: splitCommaList(r.FormValue("restrictions")),
		Likes:        splitCommaList(r.FormValue("likes")),
		Dislikes:     splitCommaList(r.FormValue("dislikes")),
	}

	if err := h.familyService.UpdateDietaryPreferences(user.ID, prefs); err != nil {
		respondWithServiceError(w, "Error updating dietary preferences", err)
		return
	}

	http.Redirect(w, r, "/family", http.StatusSeeOther)
}

// CreateGroup creates a named sub-roster within the family
func (h *FamilyHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	memberIDs, err := parseIDList(r.Form["member_ids"])
	if err != nil {
		http.Error(w, "Invalid member IDs", http.StatusBadRequest)
		return
	}

	if _, err := h.familyService.CreateGroup(user, r.FormValue("name"), memberIDs); err != nil {
		respondWithServiceError(w, "Error creating group", err)
		return
	}

	http.Redirect(w, r, "/family", http.StatusSeeOther)
}

// UpdateGroup renames a group or changes its membership
func (h *FamilyHandler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	groupID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid group ID", http.StatusBadRequest)
		return
	}

	memberIDs, err := parseIDList(r.Form["member_ids"])
	if err != nil {
		http.Error(w, "Invalid member IDs", http.StatusBadRequest)
		return
	}

	if err := h.familyService.UpdateGroup(user, groupID, r.FormValue("name"), memberIDs); err != nil {
		respondWithServiceError(w, "Error updating group", err)
		return
	}

	http.Redirect(w, r, "/family", http.StatusSeeOther)
}

// DeleteGroup removes a group
func (h *FamilyHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	groupID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid group ID", http.StatusBadRequest)
		return
	}

	if err := h.familyService.DeleteGroup(user, groupID); err != nil {
		respondWithServiceError(w, "Error deleting group", err)
		return
	}

	http.Redirect(w, r, "/family", http.StatusSeeOther)
}

// splitCommaList splits a comma-separated form value, dropping blanks
func splitCommaList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseIDList parses repeated numeric form values
func parseIDList(values []string) ([]int64, error) {
	var ids []int64
	for _, v := range values {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
