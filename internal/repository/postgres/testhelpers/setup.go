package testhelpers

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// TestDB - connection to the integration test database
type TestDB struct {
	DB     *sqlx.DB
	Logger *zap.Logger
}

// SetupTestDB connects to TEST_DATABASE_URL, or to a DSN built from the
// TEST_DB_* variables, and skips the test when nothing answers.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			envOr("TEST_DB_HOST", "localhost"),
			envOr("TEST_DB_PORT", "5433"),
			envOr("TEST_DB_USER", "postgres"),
			envOr("TEST_DB_PASSWORD", "postgres"),
			envOr("TEST_DB_NAME", "praio_test"),
			envOr("TEST_DB_SSLMODE", "disable"),
		)
	}

	db, err := connectWithRetry(dsn, 3, 200*time.Millisecond)
	if err != nil {
		t.Skipf("PostgreSQL not available for integration tests: %v", err)
	}

	return &TestDB{
		DB:     db,
		Logger: zap.NewNop(),
	}
}

// connectWithRetry doubles the delay after every failed attempt.
func connectWithRetry(dsn string, attempts int, delay time.Duration) (*sqlx.DB, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		db, err := sqlx.Connect("postgres", dsn)
		if err == nil {
			return db, nil
		}
		lastErr = err
		if i < attempts-1 {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return nil, lastErr
}

func (tdb *TestDB) Close() {
	if tdb.DB != nil {
		_ = tdb.DB.Close()
	}
}

// Cleanup empties the vote table between tests.
func (tdb *TestDB) Cleanup(ctx context.Context) error {
	_, err := tdb.DB.ExecContext(ctx, "TRUNCATE TABLE votos")
	return err
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
