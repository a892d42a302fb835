package auth

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/nerrad567/babylog/internal/infrastructure/database"
	"github.com/nerrad567/babylog/migrations"
)

const testSecret = "test-secret-key-for-jwt-signing-32b"

// testParams keep Argon2id cheap in tests; production uses DefaultParams.
var testParams = Params{Time: 1, Memory: 64, Threads: 1, KeyLen: 16, SaltLen: 8}

// testDB creates a temporary SQLite database with the real migrations applied.
// The database is closed when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(t.Context(), database.Config{
		Path:        filepath.Join(t.TempDir(), "auth-test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // test cleanup

	if err := db.Migrate(t.Context(), migrations.FS); err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
	return db.DB
}

// testService returns a Service over a fresh database.
func testService(t *testing.T) (*Service, *SQLiteUserRepository) {
	t.Helper()

	repo := NewUserRepository(testDB(t))
	svc, err := NewService(repo, ServiceConfig{Secret: testSecret, Params: testParams})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc, repo
}

// seedTestUser inserts an account with the given email and password.
func seedTestUser(t *testing.T, db *sql.DB, email, password string) *User {
	t.Helper()

	hash, err := NewHasher(testParams).Hash(password)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	user := &User{Email: email, PasswordHash: hash}
	if err := NewUserRepository(db).Create(t.Context(), user); err != nil {
		t.Fatalf("creating test user %s: %v", email, err)
	}
	return user
}
