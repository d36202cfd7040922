package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"microblog/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect(":memory:")
	require.NoError(t, err, "Failed to connect to test database")

	// One connection: in-memory sqlite is per-connection.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func TestRevoke_Idempotent(t *testing.T) {
	repo := NewRevokedTokenRepository(setupTestDB(t))
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	require.NoError(t, repo.Revoke(ctx, "hash-1", exp))
	require.NoError(t, repo.Revoke(ctx, "hash-1", exp))

	revoked, err := repo.IsRevoked(ctx, "hash-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestIsRevoked_Unknown(t *testing.T) {
	repo := NewRevokedTokenRepository(setupTestDB(t))

	revoked, err := repo.IsRevoked(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestClaim_FirstCallerWins(t *testing.T) {
	repo := NewRevokedTokenRepository(setupTestDB(t))
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	claimed, err := repo.Claim(ctx, "hash-2", exp)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.Claim(ctx, "hash-2", exp)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestClaim_ConcurrentSingleWinner(t *testing.T) {
	repo := NewRevokedTokenRepository(setupTestDB(t))
	exp := time.Now().Add(time.Hour)

	const n = 16
	var wg sync.WaitGroup
	results := make(chan bool, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := repo.Claim(context.Background(), "contested-hash", exp)
			if err != nil {
				t.Error(err)
				return
			}
			results <- claimed
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	for claimed := range results {
		if claimed {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one concurrent claim must win")
}

func TestDeleteExpired(t *testing.T) {
	repo := NewRevokedTokenRepository(setupTestDB(t))
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Revoke(ctx, "stale", now.Add(-time.Minute)))
	require.NoError(t, repo.Revoke(ctx, "live", now.Add(time.Hour)))

	removed, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	revoked, err := repo.IsRevoked(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = repo.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)
}
