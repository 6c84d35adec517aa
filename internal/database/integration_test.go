package database

import (
	"context"
	"path/filepath"
	"testing"
)

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "test_integration.db")

	db, err := Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	// Test that tables were created by migrations
	tables := []string{
		"families", "users", "sessions", "groups", "group_members",
		"tasks", "task_comments", "events", "messages", "notifications",
		"budget_categories", "expenses", "meal_plans", "grocery_items",
	}

	for _, table := range tables {
		query := "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
		var name string
		err := db.QueryRowContext(ctx, query, table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}
}

// TestDatabaseTransactions tests transaction support
func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "test_transactions.db")

	db, err := Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()

	familyID, err := db.ExecReturningID("INSERT INTO families (name, invite_code) VALUES (?, ?)", "Testers", "code-tx")
	if err != nil {
		t.Fatalf("Failed to create test family: %v", err)
	}

	// Test successful transaction
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}

	_, err = tx.ExecContext(ctx, "INSERT INTO users (family_id, role, username, email, password_hash, name) VALUES (?, ?, ?, ?, ?, ?)",
		familyID, "parent", "testuser", "test@example.com", "hashedpass", "Test User")
	if err != nil {
		tx.Rollback()
		t.Fatalf("Failed to insert in transaction: %v", err)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit transaction: %v", err)
	}

	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE username = ?", "testuser").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query after commit: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 user, got %d", count)
	}

	// Test rollback
	tx2, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to begin second transaction: %v", err)
	}

	_, err = tx2.ExecContext(ctx, "INSERT INTO users (family_id, role, username, email, password_hash, name) VALUES (?, ?, ?, ?, ?, ?)",
		familyID, "parent", "testuser2", "test2@example.com", "hashedpass", "Second User")
	if err != nil {
		tx2.Rollback()
		t.Fatalf("Failed to insert in second transaction: %v", err)
	}

	if err := tx2.Rollback(); err != nil {
		t.Fatalf("Failed to rollback transaction: %v", err)
	}

	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE username = ?", "testuser2").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query after rollback: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 users after rollback, got %d", count)
	}
}

// TestConcurrentAccess tests concurrent database access
func TestConcurrentAccess(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "test_concurrent.db")

	db, err := Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()

	familyID, err := db.ExecReturningID("INSERT INTO families (name, invite_code) VALUES (?, ?)", "Testers", "code-cc")
	if err != nil {
		t.Fatalf("Failed to create test family: %v", err)
	}

	_, err = db.ExecContext(ctx, "INSERT INTO users (family_id, role, username, email, password_hash, name) VALUES (?, ?, ?, ?, ?, ?)",
		familyID, "parent", "concurrentuser", "concurrent@example.com", "hashedpass", "Concurrent User")
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	// Run concurrent reads
	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			var username string
			err := db.QueryRowContext(ctx, "SELECT username FROM users WHERE email = ?", "concurrent@example.com").Scan(&username)
			if err != nil {
				t.Errorf("Concurrent read failed: %v", err)
			}
			if username != "concurrentuser" {
				t.Errorf("Expected username 'concurrentuser', got '%s'", username)
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
