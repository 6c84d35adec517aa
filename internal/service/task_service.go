package service

import (
	"fmt"
	"log"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/mentions"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/recurrence"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/repository"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/validation"
)

// TaskService handles shared task business logic
type TaskService struct {
	taskRepo            *repository.TaskRepository
	userRepo            *repository.UserRepository
	notificationService *NotificationService
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo *repository.TaskRepository, userRepo *repository.UserRepository, notificationService *NotificationService) *TaskService {
	return &TaskService{
		taskRepo:            taskRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
	}
}

// CreateTask creates a task, expanding a recurrence rule into one task
// per occurrence. The assignee gets a notification for the first
// occurrence only.
func (s *TaskService) CreateTask(actor *models.User, task *models.Task) ([]models.Task, error) {
	if err := validation.ValidateTitle(task.Title); err != nil {
		return nil, err
	}
	if !models.ValidTaskStatus(task.Status) {
		task.Status = models.TaskStatusIncomplete
	}

	if task.AssignedTo != 0 {
		assignee, err := s.userRepo.GetUserByID(task.AssignedTo)
		if err != nil {
			return nil, fmt.Errorf("failed to check assignee: %w", err)
		}
		if assignee == nil || assignee.FamilyID != actor.FamilyID {
			return nil, ErrNotFound
		}
	}

	dueDates, err := recurrence.Expand(task.DueDate, task.Recurrence, 0)
	if err != nil {
		return nil, err
	}

	var created []models.Task
	for _, dueDate := range dueDates {
		t := *task
		t.FamilyID = actor.FamilyID
		t.DueDate = dueDate
		id, err := s.taskRepo.CreateTask(&t)
		if err != nil {
			return created, err
		}
		t.ID = id
		created = append(created, t)
	}

	if task.AssignedTo != 0 && task.AssignedTo != actor.ID {
		message := fmt.Sprintf("%s assigned you a task: %s", actor.Name, task.Title)
		if err := s.notificationService.Notify([]int64{task.AssignedTo}, message); err != nil {
			log.Printf("Warning: failed to notify assignee for task %q: %v", task.Title, err)
		}
	}

	return created, nil
}

// GetTask returns a task in the actor's family
func (s *TaskService) GetTask(familyID, taskID int64) (*models.Task, error) {
	task, err := s.taskRepo.GetTask(familyID, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	return task, nil
}

// ListTasks returns all of a family's tasks
func (s *TaskService) ListTasks(familyID int64) ([]models.Task, error) {
	return s.taskRepo.ListTasks(familyID)
}

// ListUpcoming returns the next incomplete tasks for the dashboard
func (s *TaskService) ListUpcoming(familyID int64, limit int) ([]models.Task, error) {
	return s.taskRepo.ListUpcomingIncomplete(familyID, limit)
}

// UpdateTask updates a task's details
func (s *TaskService) UpdateTask(actor *models.User, task *models.Task) error {
	if err := validation.ValidateTitle(task.Title); err != nil {
		return err
	}

	if task.AssignedTo != 0 {
		assignee, err := s.userRepo.GetUserByID(task.AssignedTo)
		if err != nil {
			return fmt.Errorf("failed to check assignee: %w", err)
		}
		if assignee == nil || assignee.FamilyID != actor.FamilyID {
			return ErrNotFound
		}
	}

	task.FamilyID = actor.FamilyID
	affected, err := s.taskRepo.UpdateTask(task)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus changes a task's status. Only the assigned user may do
// this; anyone else, parents included, gets ErrForbidden.
func (s *TaskService) UpdateStatus(actor *models.User, taskID int64, status string) error {
	if !models.ValidTaskStatus(status) {
		return validation.ValidationError{Field: "status", Message: "invalid task status"}
	}

	task, err := s.taskRepo.GetTask(actor.FamilyID, taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return ErrNotFound
	}
	if !task.IsAssignedTo(actor.ID) {
		return ErrForbidden
	}

	return s.taskRepo.UpdateTaskStatus(actor.FamilyID, taskID, status)
}

// DeleteTask removes a task from the actor's family
func (s *TaskService) DeleteTask(familyID, taskID int64) error {
	affected, err := s.taskRepo.DeleteTask(familyID, taskID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddComment appends a comment to a task. @username mentions of family
// members in the text produce a notification for each mentioned user
// except the author.
func (s *TaskService) AddComment(actor *models.User, taskID int64, text string) (*models.Comment, error) {
	if err := validation.ValidateTitle(text); err != nil {
		return nil, validation.ValidationError{Field: "comment", Message: "comment is required"}
	}

	task, err := s.taskRepo.GetTask(actor.FamilyID, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}

	comment, err := s.taskRepo.AddComment(taskID, actor.ID, text)
	if err != nil {
		return nil, err
	}

	roster, err := s.userRepo.GetFamilyRoster(actor.FamilyID)
	if err != nil {
		return comment, fmt.Errorf("failed to get family members: %w", err)
	}

	var mentioned []int64
	for _, id := range mentions.Parse(text, roster) {
		if id != actor.ID {
			mentioned = append(mentioned, id)
		}
	}
	if len(mentioned) > 0 {
		message := fmt.Sprintf("%s mentioned you on task: %s", actor.Name, task.Title)
		if err := s.notificationService.Notify(mentioned, message); err != nil {
			log.Printf("Warning: failed to notify mentions on task %d: %v", taskID, err)
		}
	}

	return comment, nil
}

// ListComments returns a task's comments oldest first
func (s *TaskService) ListComments(familyID, taskID int64) ([]models.Comment, error) {
	task, err := s.taskRepo.GetTask(familyID, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	return s.taskRepo.ListComments(taskID)
}
