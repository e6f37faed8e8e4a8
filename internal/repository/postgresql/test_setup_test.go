package postgresql_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/leavehub/leavehub-backend-go/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

var (
	dbOnce sync.Once
	db     *database.DB
	dbErr  error
)

// testDB returns a shared connection to the database named by
// TEST_DATABASE_URL, and skips the test when the variable is unset. The
// schema from migrations/001_init.sql must already be applied.
func testDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	dbOnce.Do(func() {
		db, dbErr = database.NewPostgreSQLDB(dsn)
	})
	require.NoError(t, dbErr, "failed to connect to test database")

	return db
}

// truncateAll resets every table between tests. CASCADE handles the
// foreign keys, so ordering does not matter.
func truncateAll(t *testing.T, db *database.DB) {
	t.Helper()
	ctx := context.Background()

	tables := []string{
		"refresh_tokens",
		"memberships",
		"invitations",
		"teams",
		"organizations",
		"users",
	}

	for _, table := range tables {
		_, err := db.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE")
		require.NoError(t, err, "failed to truncate %s", table)
	}
}
