package repository

import (
	"context"
	"testing"

	"microblog/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	u := &domain.User{
		Email:        "Mixed.Case@Example.com",
		Username:     "alice",
		PasswordHash: "hash",
		Role:         domain.RoleUser,
		IsActive:     true,
	}
	require.NoError(t, repo.Create(ctx, u))
	require.NotZero(t, u.ID)

	// Email is stored lowercased and lookup is case-insensitive
	got, err := repo.GetByEmail(ctx, "mixed.case@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "mixed.case@example.com", got.Email)

	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
}

func TestUserRepository_Exists(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{
		Email: "a@x.com", Username: "alice", PasswordHash: "h", Role: domain.RoleUser, IsActive: true,
	}))

	exists, err := repo.ExistsByEmail(ctx, "A@X.COM")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "b@x.com")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUserRepository_UniqueConstraints(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{
		Email: "a@x.com", Username: "alice", PasswordHash: "h", Role: domain.RoleUser, IsActive: true,
	}))

	err := repo.Create(ctx, &domain.User{
		Email: "a@x.com", Username: "other", PasswordHash: "h", Role: domain.RoleUser, IsActive: true,
	})
	assert.Error(t, err)

	err = repo.Create(ctx, &domain.User{
		Email: "b@x.com", Username: "alice", PasswordHash: "h", Role: domain.RoleUser, IsActive: true,
	})
	assert.Error(t, err)
}

func TestUserRepository_List(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{
		Email: "a@x.com", Username: "alice", PasswordHash: "h", Role: domain.RoleUser, IsActive: true,
	}))
	require.NoError(t, repo.Create(ctx, &domain.User{
		Email: "b@x.com", Username: "bob", PasswordHash: "h", Role: domain.RoleAdmin, IsActive: true,
	}))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
}
