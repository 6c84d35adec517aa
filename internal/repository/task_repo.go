package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/database"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
)

// TaskRepository handles database operations for tasks and their comments
type TaskRepository struct {
	db *database.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *database.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `
	id, family_id, title, description, due_date, priority, status,
	recurrence, assigned_to, created_at, updated_at
`

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	var assignedTo sql.NullInt64
	err := row.Scan(
		&task.ID,
		&task.FamilyID,
		&task.Title,
		&task.Description,
		&task.DueDate,
		&task.Priority,
		&task.Status,
		&task.Recurrence,
		&assignedTo,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.AssignedTo = assignedTo.Int64
	return task, nil
}

// nullableID maps the zero ID to NULL so unassigned rows do not trip
// the foreign key
func nullableID(id int64) interface{} {
	if id == 0 {
		return nil
	}
	return id
}

// CreateTask inserts a new task
func (r *TaskRepository) CreateTask(task *models.Task) (int64, error) {
	query := `
		INSERT INTO tasks (family_id, title, description, due_date, priority, status, recurrence, assigned_to)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		task.FamilyID, task.Title, task.Description, task.DueDate,
		task.Priority, task.Status, task.Recurrence, nullableID(task.AssignedTo))
	if err != nil {
		return 0, fmt.Errorf("failed to create task: %w", err)
	}
	return id, nil
}

// GetTask retrieves a task scoped to a family. A correct id with the
// wrong family reads as absent.
func (r *TaskRepository) GetTask(familyID, taskID int64) (*models.Task, error) {
	query := "SELECT" + taskColumns + "FROM tasks WHERE id = ? AND family_id = ?"
	task, err := scanTask(r.db.QueryRow(query, taskID, familyID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// ListTasks retrieves all tasks for a family ordered by due date
func (r *TaskRepository) ListTasks(familyID int64) ([]models.Task, error) {
	query := "SELECT" + taskColumns + "FROM tasks WHERE family_id = ? ORDER BY due_date ASC"
	return r.queryTasks(query, familyID)
}

// ListUpcomingIncomplete retrieves up to limit incomplete tasks for the
// dashboard, soonest due first
func (r *TaskRepository) ListUpcomingIncomplete(familyID int64, limit int) ([]models.Task, error) {
	query := "SELECT" + taskColumns + "FROM tasks WHERE family_id = ? AND status = ? ORDER BY due_date ASC LIMIT ?"
	return r.queryTasks(query, familyID, models.TaskStatusIncomplete, limit)
}

func (r *TaskRepository) queryTasks(query string, args ...interface{}) ([]models.Task, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// UpdateTask updates a task's editable fields, scoped to a family.
// Returns the number of rows updated.
func (r *TaskRepository) UpdateTask(task *models.Task) (int64, error) {
	query := `
		UPDATE tasks
		SET title = ?, description = ?, due_date = ?, priority = ?, assigned_to = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND family_id = ?
	`
	result, err := r.db.Exec(query,
		task.Title, task.Description, task.DueDate, task.Priority, nullableID(task.AssignedTo),
		task.ID, task.FamilyID)
	if err != nil {
		return 0, fmt.Errorf("failed to update task: %w", err)
	}
	return result.RowsAffected()
}

// UpdateTaskStatus sets a task's status, scoped to a family
func (r *TaskRepository) UpdateTaskStatus(familyID, taskID int64, status string) error {
	query := "UPDATE tasks SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND family_id = ?"
	if _, err := r.db.Exec(query, status, taskID, familyID); err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}
	return nil
}

// DeleteTask removes a task scoped to a family, returning the number of
// rows deleted
func (r *TaskRepository) DeleteTask(familyID, taskID int64) (int64, error) {
	query := "DELETE FROM tasks WHERE id = ? AND family_id = ?"
	result, err := r.db.Exec(query, taskID, familyID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete task: %w", err)
	}
	return result.RowsAffected()
}

// AddComment appends a comment to a task. Comments are never edited or
// removed.
func (r *TaskRepository) AddComment(taskID, userID int64, text string) (*models.Comment, error) {
	query := "INSERT INTO task_comments (task_id, user_id, comment_text) VALUES (?, ?, ?)"
	id, err := r.db.ExecReturningID(query, taskID, userID, text)
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	return &models.Comment{
		ID:        id,
		TaskID:    taskID,
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now(),
	}, nil
}

// ListComments retrieves a task's comments oldest first
func (r *TaskRepository) ListComments(taskID int64) ([]models.Comment, error) {
	query := `
		SELECT id, task_id, user_id, comment_text, created_at
		FROM task_comments
		WHERE task_id = ?
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.UserID, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
