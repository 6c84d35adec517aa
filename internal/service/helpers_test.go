package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/database"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/repository"
)

// testEnv bundles a migrated SQLite database with the repositories the
// service tests need
type testEnv struct {
	db               *database.DB
	userRepo         *repository.UserRepository
	familyRepo       *repository.FamilyRepository
	taskRepo         *repository.TaskRepository
	eventRepo        *repository.EventRepository
	messageRepo      *repository.MessageRepository
	notificationRepo *repository.NotificationRepository
	budgetRepo       *repository.BudgetRepository
	mealRepo         *repository.MealRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping database-backed test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return &testEnv{
		db:               db,
		userRepo:         repository.NewUserRepository(db),
		familyRepo:       repository.NewFamilyRepository(db),
		taskRepo:         repository.NewTaskRepository(db),
		eventRepo:        repository.NewEventRepository(db),
		messageRepo:      repository.NewMessageRepository(db),
		notificationRepo: repository.NewNotificationRepository(db),
		budgetRepo:       repository.NewBudgetRepository(db),
		mealRepo:         repository.NewMealRepository(db),
	}
}

// createFamily inserts a family and returns it
func (e *testEnv) createFamily(t *testing.T, name string) *models.Family {
	t.Helper()
	family, err := e.familyRepo.CreateFamily(name)
	if err != nil {
		t.Fatalf("Failed to create family: %v", err)
	}
	return family
}

// createUser inserts a user in the given family and returns it
func (e *testEnv) createUser(t *testing.T, familyID int64, role, username string) *models.User {
	t.Helper()
	user, err := e.userRepo.CreateUser(familyID, role, username, username+"@example.com", "hashedpass", username)
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

// mustDate parses a YYYY-MM-DD string
func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("Failed to parse date %q: %v", value, err)
	}
	return d
}
