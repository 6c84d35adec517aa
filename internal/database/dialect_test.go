package database

import "testing"

func TestRewritePlaceholdersToNumbered(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "no placeholders",
			query: "SELECT 1",
			want:  "SELECT 1",
		},
		{
			name:  "single placeholder",
			query: "SELECT * FROM users WHERE id = ?",
			want:  "SELECT * FROM users WHERE id = $1",
		},
		{
			name:  "multiple placeholders",
			query: "INSERT INTO tasks (family_id, title, status) VALUES (?, ?, ?)",
			want:  "INSERT INTO tasks (family_id, title, status) VALUES ($1, $2, $3)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewritePlaceholdersToNumbered(tt.query); got != tt.want {
				t.Errorf("rewritePlaceholdersToNumbered() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDialectRewriteQuery(t *testing.T) {
	query := "SELECT id FROM users WHERE email = ? AND family_id = ?"

	sqlite := NewSQLiteDialect()
	if got := sqlite.RewriteQuery(query); got != query {
		t.Errorf("sqlite RewriteQuery changed query: %q", got)
	}

	mysql := NewMySQLDialect()
	if got := mysql.RewriteQuery(query); got != query {
		t.Errorf("mysql RewriteQuery changed query: %q", got)
	}

	postgres := NewPostgresDialect()
	want := "SELECT id FROM users WHERE email = $1 AND family_id = $2"
	if got := postgres.RewriteQuery(query); got != want {
		t.Errorf("postgres RewriteQuery = %q, want %q", got, want)
	}
}

func TestDialectLastInsertIdSupport(t *testing.T) {
	if !NewSQLiteDialect().SupportsLastInsertId() {
		t.Error("sqlite should support LastInsertId")
	}
	if !NewMySQLDialect().SupportsLastInsertId() {
		t.Error("mysql should support LastInsertId")
	}
	if NewPostgresDialect().SupportsLastInsertId() {
		t.Error("postgres should not support LastInsertId")
	}
}

func TestSQLiteDSNEnforcesForeignKeys(t *testing.T) {
	dsn := NewSQLiteDialect().DSN(DialectConfig{Path: "/tmp/app.db"})
	want := "/tmp/app.db?_foreign_keys=on"
	if dsn != want {
		t.Errorf("DSN = %q, want %q", dsn, want)
	}
}
