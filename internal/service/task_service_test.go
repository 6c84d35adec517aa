package service

import (
	"errors"
	"testing"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/recurrence"
)

func newTaskService(env *testEnv) *TaskService {
	return NewTaskService(env.taskRepo, env.userRepo, NewNotificationService(env.notificationRepo))
}

func TestCreateTaskExpandsWeeklyRecurrence(t *testing.T) {
	env := newTestEnv(t)
	family := env.createFamily(t, "Smith")
	alice := env.createUser(t, family.ID, models.RoleParent, "alice")

	svc := newTaskService(env)
	created, err := svc.CreateTask(alice, &models.Task{
		Title:      "Take out bins",
		DueDate:    mustDate(t, "2025-01-06"),
		Priority:   "medium",
		Recurrence: recurrence.Weekly,
	})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	want := []string{"2025-01-06", "2025-01-13", "2025-01-20", "2025-01-27"}
	if len(created) != len(want) {
		t.Fatalf("created %d tasks, want %d", len(created), len(want))
	}
	for i, task := range created {
		if got := task.DueDate.Format("2006-01-02"); got != want[i] {
			t.Errorf("occurrence %d due %s, want %s", i, got, want[i])
		}
	}
}

func TestCreateTaskNotifiesAssignee(t *testing.T) {
	env := newTestEnv(t)
	family := env.createFamily(t, "Smith")
	alice := env.createUser(t, family.ID, models.RoleParent, "alice")
	bob := env.createUser(t, family.ID, models.RoleChild, "bob")

	svc := newTaskService(env)
	_, err := svc.CreateTask(alice, &models.Task{
		Title:      "Clean your room",
		DueDate:    mustDate(t, "2025-03-01"),
		AssignedTo: bob.ID,
	})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	count, err := env.notificationRepo.CountUnread(bob.ID)
	if err != nil {
		t.Fatalf("CountUnread() error = %v", err)
	}
	if count != 1 {
		t.Errorf("assignee unread notifications = %d, want 1", count)
	}
}

func TestUpdateStatusAssigneeOnly(t *testing.T) {
	env := newTestEnv(t)
	family := env.createFamily(t, "Smith")
	alice := env.createUser(t, family.ID, models.RoleParent, "alice")
	bob := env.createUser(t, family.ID, models.RoleChild, "bob")

	svc := newTaskService(env)
	created, err := svc.CreateTask(alice, &models.Task{
		Title:      "Homework",
		DueDate:    mustDate(t, "2025-03-01"),
		AssignedTo: bob.ID,
	})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	taskID := created[0].ID

	// Even the parent who created the task cannot complete it
	if err := svc.UpdateStatus(alice, taskID, models.TaskStatusComplete); !errors.Is(err, ErrForbidden) {
		t.Errorf("UpdateStatus as non-assignee = %v, want ErrForbidden", err)
	}

	if err := svc.UpdateStatus(bob, taskID, models.TaskStatusComplete); err != nil {
		t.Fatalf("UpdateStatus as assignee error = %v", err)
	}

	task, err := svc.GetTask(family.ID, taskID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if task.Status != models.TaskStatusComplete {
		t.Errorf("status = %q, want %q", task.Status, models.TaskStatusComplete)
	}
}

func TestGetTaskHiddenAcrossFamilies(t *testing.T) {
	env := newTestEnv(t)
	smiths := env.createFamily(t, "Smith")
	jones := env.createFamily(t, "Jones")
	alice := env.createUser(t, smiths.ID, models.RoleParent, "alice")
	env.createUser(t, jones.ID, models.RoleParent, "carol")

	svc := newTaskService(env)
	created, err := svc.CreateTask(alice, &models.Task{
		Title:   "Private chore",
		DueDate: mustDate(t, "2025-03-01"),
	})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	// A correct ID queried through the wrong family reads as absent
	if _, err := svc.GetTask(jones.ID, created[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTask from other family = %v, want ErrNotFound", err)
	}
}

func TestAddCommentNotifiesMentions(t *testing.T) {
	env := newTestEnv(t)
	family := env.createFamily(t, "Smith")
	alice := env.createUser(t, family.ID, models.RoleParent, "alice")
	bob := env.createUser(t, family.ID, models.RoleChild, "bob")
	carol := env.createUser(t, family.ID, models.RoleChild, "carol")

	svc := newTaskService(env)
	created, err := svc.CreateTask(alice, &models.Task{
		Title:   "Plan the weekend",
		DueDate: mustDate(t, "2025-03-01"),
	})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	// @stranger matches nobody and is silently dropped
	_, err = svc.AddComment(alice, created[0].ID, "what do you think @bob and @stranger?")
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}

	bobCount, _ := env.notificationRepo.CountUnread(bob.ID)
	if bobCount != 1 {
		t.Errorf("mentioned user unread = %d, want 1", bobCount)
	}
	carolCount, _ := env.notificationRepo.CountUnread(carol.ID)
	if carolCount != 0 {
		t.Errorf("unmentioned user unread = %d, want 0", carolCount)
	}

	comments, err := svc.ListComments(family.ID, created[0].ID)
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("got %d comments, want 1", len(comments))
	}
}
