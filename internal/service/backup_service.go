package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/database"
)

// BackupData is the complete on-disk backup structure. Sessions are
// deliberately excluded; they are ephemeral.
type BackupData struct {
	Version       string               `json:"version"`
	ExportedAt    time.Time            `json:"exported_at"`
	Families      []FamilyBackup       `json:"families"`
	Users         []UserBackup         `json:"users"`
	Tasks         []TaskBackup         `json:"tasks"`
	TaskComments  []TaskCommentBackup  `json:"task_comments"`
	Events        []EventBackup        `json:"events"`
	Messages      []MessageBackup      `json:"messages"`
	Notifications []NotificationBackup `json:"notifications"`
	Categories    []CategoryBackup     `json:"budget_categories"`
	Expenses      []ExpenseBackup      `json:"expenses"`
	MealPlans     []MealPlanBackup     `json:"meal_plans"`
	GroceryItems  []GroceryItemBackup  `json:"grocery_items"`
}

type FamilyBackup struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"invite_code"`
	CreatedAt  time.Time `json:"created_at"`
}

type UserBackup struct {
	ID               int64     `json:"id"`
	FamilyID         int64     `json:"family_id"`
	OriginalFamilyID *int64    `json:"original_family_id"`
	Role             string    `json:"role"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"password_hash"`
	Name             string    `json:"name"`
	OAuthProvider    string    `json:"oauth_provider"`
	OAuthSubject     string    `json:"oauth_subject"`
	EmailVerified    bool      `json:"email_verified"`
	ShareTasks       bool      `json:"share_tasks"`
	ShareMeals       bool      `json:"share_meals"`
	ShareBudget      bool      `json:"share_budget"`
	DietaryR         string    `json:"dietary_restrictions"`
	DietaryL         string    `json:"dietary_likes"`
	DietaryD         string    `json:"dietary_dislikes"`
	CreatedAt        time.Time `json:"created_at"`
}

type TaskBackup struct {
	ID          int64     `json:"id"`
	FamilyID    int64     `json:"family_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	Recurrence  string    `json:"recurrence"`
	AssignedTo  *int64    `json:"assigned_to"`
}

type TaskCommentBackup struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	UserID    int64     `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type EventBackup struct {
	ID          int64     `json:"id"`
	FamilyID    int64     `json:"family_id"`
	CreatedBy   int64     `json:"created_by"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EventDate   time.Time `json:"event_date"`
	EventTime   string    `json:"event_time"`
	Category    string    `json:"category"`
	Visibility  string    `json:"visibility"`
	Recurrence  string    `json:"recurrence"`
}

type MessageBackup struct {
	ID           int64     `json:"id"`
	FamilyID     int64     `json:"family_id"`
	SenderID     int64     `json:"sender_id"`
	Content      string    `json:"content"`
	RecipientIDs string    `json:"recipient_ids"`
	ReadBy       string    `json:"read_by"`
	SentAt       time.Time `json:"sent_at"`
}

type NotificationBackup struct {
	ID          int64     `json:"id"`
	RecipientID int64     `json:"recipient_id"`
	Message     string    `json:"message"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

type CategoryBackup struct {
	ID       int64   `json:"id"`
	FamilyID int64   `json:"family_id"`
	Name     string  `json:"name"`
	Limit    float64 `json:"limit"`
}

type ExpenseBackup struct {
	ID          int64     `json:"id"`
	FamilyID    int64     `json:"family_id"`
	CategoryID  int64     `json:"category_id"`
	CreatedBy   int64     `json:"created_by"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	ExpenseDate time.Time `json:"expense_date"`
}

type MealPlanBackup struct {
	ID        int64           `json:"id"`
	FamilyID  int64           `json:"family_id"`
	CreatedBy int64           `json:"created_by"`
	WeekStart time.Time       `json:"week_start"`
	Meals     json.RawMessage `json:"meals"`
}

type GroceryItemBackup struct {
	ID        int64  `json:"id"`
	FamilyID  int64  `json:"family_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Purchased bool   `json:"purchased"`
}

// BackupService handles database export and restore
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export writes a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter writes a complete backup to w as indented JSON
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
	}

	steps := []struct {
		name string
		fn   func(*BackupData) error
	}{
		{"families", s.exportFamilies},
		{"users", s.exportUsers},
		{"tasks", s.exportTasks},
		{"task comments", s.exportTaskComments},
		{"events", s.exportEvents},
		{"messages", s.exportMessages},
		{"notifications", s.exportNotifications},
		{"budget categories", s.exportCategories},
		{"expenses", s.exportExpenses},
		{"meal plans", s.exportMealPlans},
		{"grocery items", s.exportGroceryItems},
	}
	for _, step := range steps {
		if err := step.fn(backup); err != nil {
			return fmt.Errorf("failed to export %s: %w", step.name, err)
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(backup)
}

// Import restores a database from a backup file. Tables are imported in
// dependency order; the target database must be empty.
func (s *BackupService) Import(inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup stream
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	if err := s.importFamilies(backup.Families); err != nil {
		return err
	}
	if err := s.importUsers(backup.Users); err != nil {
		return err
	}
	if err := s.importTasks(backup.Tasks); err != nil {
		return err
	}
	if err := s.importTaskComments(backup.TaskComments); err != nil {
		return err
	}
	if err := s.importEvents(backup.Events); err != nil {
		return err
	}
	if err := s.importMessages(backup.Messages); err != nil {
		return err
	}
	if err := s.importNotifications(backup.Notifications); err != nil {
		return err
	}
	if err := s.importCategories(backup.Categories); err != nil {
		return err
	}
	if err := s.importExpenses(backup.Expenses); err != nil {
		return err
	}
	if err := s.importMealPlans(backup.MealPlans); err != nil {
		return err
	}
	if err := s.importGroceryItems(backup.GroceryItems); err != nil {
		return err
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportFamilies(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, name, invite_code, created_at FROM families ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var f FamilyBackup
		if err := rows.Scan(&f.ID, &f.Name, &f.InviteCode, &f.CreatedAt); err != nil {
			return err
		}
		backup.Families = append(backup.Families, f)
	}
	return rows.Err()
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	query := `
		SELECT id, family_id, original_family_id, role, username, email, password_hash, name,
		       COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), email_verified,
		       share_tasks, share_meals, share_budget,
		       dietary_restrictions, dietary_likes, dietary_dislikes, created_at
		FROM users ORDER BY id
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		var originalFamilyID sql.NullInt64
		err := rows.Scan(&u.ID, &u.FamilyID, &originalFamilyID, &u.Role, &u.Username, &u.Email,
			&u.PasswordHash, &u.Name, &u.OAuthProvider, &u.OAuthSubject, &u.EmailVerified,
			&u.ShareTasks, &u.ShareMeals, &u.ShareBudget,
			&u.DietaryR, &u.DietaryL, &u.DietaryD, &u.CreatedAt)
		if err != nil {
			return err
		}
		if originalFamilyID.Valid {
			u.OriginalFamilyID = &originalFamilyID.Int64
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportTasks(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, family_id, title, description, due_date, priority, status, recurrence, assigned_to FROM tasks ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t TaskBackup
		var assignedTo sql.NullInt64
		if err := rows.Scan(&t.ID, &t.FamilyID, &t.Title, &t.Description, &t.DueDate, &t.Priority, &t.Status, &t.Recurrence, &assignedTo); err != nil {
			return err
		}
		if assignedTo.Valid {
			t.AssignedTo = &assignedTo.Int64
		}
		backup.Tasks = append(backup.Tasks, t)
	}
	return rows.Err()
}

func (s *BackupService) exportTaskComments(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, task_id, user_id, comment_text, created_at FROM task_comments ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c TaskCommentBackup
		if err := rows.Scan(&c.ID, &c.TaskID, &c.UserID, &c.Text, &c.CreatedAt); err != nil {
			return err
		}
		backup.TaskComments = append(backup.TaskComments, c)
	}
	return rows.Err()
}

func (s *BackupService) exportEvents(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, family_id, created_by, title, description, event_date, event_time, category, visibility, recurrence FROM events ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var e EventBackup
		if err := rows.Scan(&e.ID, &e.FamilyID, &e.CreatedBy, &e.Title, &e.Description, &e.EventDate, &e.EventTime, &e.Category, &e.Visibility, &e.Recurrence); err != nil {
			return err
		}
		backup.Events = append(backup.Events, e)
	}
	return rows.Err()
}

func (s *BackupService) exportMessages(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, family_id, sender_id, content, recipient_ids, read_by, sent_at FROM messages ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var m MessageBackup
		if err := rows.Scan(&m.ID, &m.FamilyID, &m.SenderID, &m.Content, &m.RecipientIDs, &m.ReadBy, &m.SentAt); err != nil {
			return err
		}
		backup.Messages = append(backup.Messages, m)
	}
	return rows.Err()
}

func (s *BackupService) exportNotifications(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, recipient_id, message, is_read, created_at FROM notifications ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var n NotificationBackup
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return err
		}
		backup.Notifications = append(backup.Notifications, n)
	}
	return rows.Err()
}

func (s *BackupService) exportCategories(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, family_id, name, spend_limit FROM budget_categories ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c CategoryBackup
		if err := rows.Scan(&c.ID, &c.FamilyID, &c.Name, &c.Limit); err != nil {
			return err
		}
		backup.Categories = append(backup.Categories, c)
	}
	return rows.Err()
}

func (s *BackupService) exportExpenses(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, family_id, category_id, created_by, description, amount, expense_date FROM expenses ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var e ExpenseBackup
		if err := rows.Scan(&e.ID, &e.FamilyID, &e.CategoryID, &e.CreatedBy, &e.Description, &e.Amount, &e.ExpenseDate); err != nil {
			return err
		}
		backup.Expenses = append(backup.Expenses, e)
	}
	return rows.Err()
}

func (s *BackupService) exportMealPlans(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, family_id, created_by, week_start, meals FROM meal_plans ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p MealPlanBackup
		var meals string
		if err := rows.Scan(&p.ID, &p.FamilyID, &p.CreatedBy, &p.WeekStart, &meals); err != nil {
			return err
		}
		p.Meals = json.RawMessage(meals)
		backup.MealPlans = append(backup.MealPlans, p)
	}
	return rows.Err()
}

func (s *BackupService) exportGroceryItems(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, family_id, name, quantity, purchased FROM grocery_items ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var g GroceryItemBackup
		if err := rows.Scan(&g.ID, &g.FamilyID, &g.Name, &g.Quantity, &g.Purchased); err != nil {
			return err
		}
		backup.GroceryItems = append(backup.GroceryItems, g)
	}
	return rows.Err()
}

func (s *BackupService) importFamilies(families []FamilyBackup) error {
	log.Printf("Importing %d families...", len(families))
	for _, f := range families {
		_, err := s.db.Exec("INSERT INTO families (id, name, invite_code, created_at) VALUES (?, ?, ?, ?)",
			f.ID, f.Name, f.InviteCode, f.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import family %d: %w", f.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importUsers(users []UserBackup) error {
	log.Printf("Importing %d users...", len(users))
	for _, u := range users {
		query := `
			INSERT INTO users (id, family_id, original_family_id, role, username, email, password_hash, name,
				oauth_provider, oauth_subject, email_verified, share_tasks, share_meals, share_budget,
				dietary_restrictions, dietary_likes, dietary_dislikes, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		var originalFamilyID interface{}
		if u.OriginalFamilyID != nil {
			originalFamilyID = *u.OriginalFamilyID
		}
		_, err := s.db.Exec(query, u.ID, u.FamilyID, originalFamilyID, u.Role, u.Username, u.Email,
			u.PasswordHash, u.Name, nullIfEmpty(u.OAuthProvider), nullIfEmpty(u.OAuthSubject),
			u.EmailVerified, u.ShareTasks, u.ShareMeals, u.ShareBudget,
			u.DietaryR, u.DietaryL, u.DietaryD, u.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import user %d: %w", u.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importTasks(tasks []TaskBackup) error {
	log.Printf("Importing %d tasks...", len(tasks))
	for _, t := range tasks {
		var assignedTo interface{}
		if t.AssignedTo != nil {
			assignedTo = *t.AssignedTo
		}
		query := "INSERT INTO tasks (id, family_id, title, description, due_date, priority, status, recurrence, assigned_to) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, t.ID, t.FamilyID, t.Title, t.Description, t.DueDate, t.Priority, t.Status, t.Recurrence, assignedTo)
		if err != nil {
			return fmt.Errorf("failed to import task %d: %w", t.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importTaskComments(comments []TaskCommentBackup) error {
	log.Printf("Importing %d task comments...", len(comments))
	for _, c := range comments {
		_, err := s.db.Exec("INSERT INTO task_comments (id, task_id, user_id, comment_text, created_at) VALUES (?, ?, ?, ?, ?)",
			c.ID, c.TaskID, c.UserID, c.Text, c.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import comment %d: %w", c.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importEvents(events []EventBackup) error {
	log.Printf("Importing %d events...", len(events))
	for _, e := range events {
		query := "INSERT INTO events (id, family_id, created_by, title, description, event_date, event_time, category, visibility, recurrence) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, e.ID, e.FamilyID, e.CreatedBy, e.Title, e.Description, e.EventDate, e.EventTime, e.Category, e.Visibility, e.Recurrence)
		if err != nil {
			return fmt.Errorf("failed to import event %d: %w", e.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importMessages(messages []MessageBackup) error {
	log.Printf("Importing %d messages...", len(messages))
	for _, m := range messages {
		_, err := s.db.Exec("INSERT INTO messages (id, family_id, sender_id, content, recipient_ids, read_by, sent_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			m.ID, m.FamilyID, m.SenderID, m.Content, m.RecipientIDs, m.ReadBy, m.SentAt)
		if err != nil {
			return fmt.Errorf("failed to import message %d: %w", m.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importNotifications(notifications []NotificationBackup) error {
	log.Printf("Importing %d notifications...", len(notifications))
	for _, n := range notifications {
		_, err := s.db.Exec("INSERT INTO notifications (id, recipient_id, message, is_read, created_at) VALUES (?, ?, ?, ?, ?)",
			n.ID, n.RecipientID, n.Message, n.Read, n.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import notification %d: %w", n.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importCategories(categories []CategoryBackup) error {
	log.Printf("Importing %d budget categories...", len(categories))
	for _, c := range categories {
		_, err := s.db.Exec("INSERT INTO budget_categories (id, family_id, name, spend_limit) VALUES (?, ?, ?, ?)",
			c.ID, c.FamilyID, c.Name, c.Limit)
		if err != nil {
			return fmt.Errorf("failed to import category %d: %w", c.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importExpenses(expenses []ExpenseBackup) error {
	log.Printf("Importing %d expenses...", len(expenses))
	for _, e := range expenses {
		_, err := s.db.Exec("INSERT INTO expenses (id, family_id, category_id, created_by, description, amount, expense_date) VALUES (?, ?, ?, ?, ?, ?, ?)",
			e.ID, e.FamilyID, e.CategoryID, e.CreatedBy, e.Description, e.Amount, e.ExpenseDate)
		if err != nil {
			return fmt.Errorf("failed to import expense %d: %w", e.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importMealPlans(plans []MealPlanBackup) error {
	log.Printf("Importing %d meal plans...", len(plans))
	for _, p := range plans {
		_, err := s.db.Exec("INSERT INTO meal_plans (id, family_id, created_by, week_start, meals) VALUES (?, ?, ?, ?, ?)",
			p.ID, p.FamilyID, p.CreatedBy, p.WeekStart, string(p.Meals))
		if err != nil {
			return fmt.Errorf("failed to import meal plan %d: %w", p.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importGroceryItems(items []GroceryItemBackup) error {
	log.Printf("Importing %d grocery items...", len(items))
	for _, g := range items {
		_, err := s.db.Exec("INSERT INTO grocery_items (id, family_id, name, quantity, purchased) VALUES (?, ?, ?, ?, ?)",
			g.ID, g.FamilyID, g.Name, g.Quantity, g.Purchased)
		if err != nil {
			return fmt.Errorf("failed to import grocery item %d: %w", g.ID, err)
		}
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
