package handlers

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/service"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/validation"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskService   *service.TaskService
	familyService *service.FamilyService
	middleware    *Middleware
	templates     *template.Template
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *service.TaskService, familyService *service.FamilyService, middleware *Middleware, templates *template.Template) *TaskHandler {
	return &TaskHandler{
		taskService:   taskService,
		familyService: familyService,
		middleware:    middleware,
		templates:     templates,
	}
}

// ShowTasks displays the family task list
func (h *TaskHandler) ShowTasks(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	tasks, err := h.taskService.ListTasks(user.FamilyID)
	if err != nil {
		respondWithServiceError(w, "Error loading tasks", err)
		return
	}

	members, err := h.familyService.GetRoster(user.FamilyID)
	if err != nil {
		respondWithServiceError(w, "Error loading family members", err)
		return
	}

	data := TasksViewData{
		Title:     "Tasks - Myte Home Assistant",
		User:      user,
		Tasks:     tasks,
		Members:   members,
		CSRFToken: getCSRFToken(h.middleware, r),
	}

	if err := h.templates.ExecuteTemplate(w, "tasks.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering tasks template", err)
	}
}

// CreateTask handles the new task form. Recurring tasks expand into
// one row per occurrence.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	task, err := taskFromForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := h.taskService.CreateTask(user, task); err != nil {
		respondWithServiceError(w, "Error creating task", err)
		return
	}

	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

// ViewTask displays a single task with its comments
func (h *TaskHandler) ViewTask(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	taskID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	task, err := h.taskService.GetTask(user.FamilyID, taskID)
	if err != nil {
		respondWithServiceError(w, "Error loading task", err)
		return
	}

	comments, err := h.taskService.ListComments(user.FamilyID, taskID)
	if err != nil {
		respondWithServiceError(w, "Error loading comments", err)
		return
	}

	members, err := h.familyService.GetRoster(user.FamilyID)
	if err != nil {
		respondWithServiceError(w, "Error loading family members", err)
		return
	}

	data := TaskDetailViewData{
		Title:     task.Title + " - Myte Home Assistant",
		User:      user,
		Task:      task,
		Comments:  comments,
		Members:   members,
		CSRFToken: getCSRFToken(h.middleware, r),
	}

	if err := h.templates.ExecuteTemplate(w, "task_detail.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering task detail template", err)
	}
}

// UpdateTask handles task edits
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	taskID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	task, err := taskFromForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	task.ID = taskID
	task.Status = r.FormValue("status")

	if err := h.taskService.UpdateTask(user, task); err != nil {
		respondWithServiceError(w, "Error updating task", err)
		return
	}

	http.Redirect(w, r, "/tasks/"+strconv.FormatInt(taskID, 10), http.StatusSeeOther)
}

// UpdateStatus handles status changes, only the assignee may complete
// their own task
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	taskID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	if err := h.taskService.UpdateStatus(user, taskID, r.FormValue("status")); err != nil {
		respondWithServiceError(w, "Error updating task status", err)
		return
	}

	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

// DeleteTask removes a task
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	taskID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	if err := h.taskService.DeleteTask(user.FamilyID, taskID); err != nil {
		respondWithServiceError(w, "Error deleting task", err)
		return
	}

	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

// AddComment posts a comment on a task. Mentioned members get notified.
func (h *TaskHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	taskID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	if _, err := h.taskService.AddComment(user, taskID, r.FormValue("text")); err != nil {
		respondWithServiceError(w, "Error adding comment", err)
		return
	}

	http.Redirect(w, r, "/tasks/"+strconv.FormatInt(taskID, 10), http.StatusSeeOther)
}

// taskFromForm builds a task from common form fields
func taskFromForm(r *http.Request) (*models.Task, error) {
	dueDate, err := validation.ParseDate("due_date", r.FormValue("due_date"))
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		DueDate:     dueDate,
		Priority:    r.FormValue("priority"),
		Recurrence:  r.FormValue("recurrence"),
	}

	if assigned := r.FormValue("assigned_to"); assigned != "" {
		assignedTo, err := strconv.ParseInt(assigned, 10, 64)
		if err != nil {
			return nil, validation.ValidationError{Field: "assigned_to", Message: "invalid assignee"}
		}
		task.AssignedTo = assignedTo
	}

	return task, nil
}
