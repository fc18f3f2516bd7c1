package service

import (
	"context"
	"testing"

	"chirp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowService_Follow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("self follow is a conflict", func(t *testing.T) {
		t.Parallel()
		svc := NewFollowService(noopFollowRepo(), noopUserRepo(), "")
		_, err := svc.Follow(ctx, 1, 1)
		assertAppErrorCode(t, err, models.CodeConflict)
	})

	t.Run("missing target id", func(t *testing.T) {
		t.Parallel()
		svc := NewFollowService(noopFollowRepo(), noopUserRepo(), "")
		_, err := svc.Follow(ctx, 1, 0)
		assertValidationError(t, err)
	})

	t.Run("target must exist before uniqueness is checked", func(t *testing.T) {
		t.Parallel()
		users := noopUserRepo()
		users.existsFn = func(_ context.Context, _ uint) (bool, error) { return false, nil }
		follows := noopFollowRepo()
		follows.createFn = func(_ context.Context, _ *models.Follow) error {
			t.Fatal("create must not run for a missing target")
			return nil
		}
		_, err := NewFollowService(follows, users, "").Follow(ctx, 1, 2)
		assertAppErrorCode(t, err, models.CodeNotFound)
	})

	t.Run("duplicate surfaces conflict", func(t *testing.T) {
		t.Parallel()
		follows := noopFollowRepo()
		follows.createFn = func(_ context.Context, _ *models.Follow) error {
			return models.NewConflictError("Already subscribed to this user")
		}
		_, err := NewFollowService(follows, noopUserRepo(), "").Follow(ctx, 1, 2)
		assertAppErrorCode(t, err, models.CodeConflict)
	})

	t.Run("creates directed edge", func(t *testing.T) {
		t.Parallel()
		follows := noopFollowRepo()
		follows.createFn = func(_ context.Context, f *models.Follow) error { f.ID = 5; return nil }
		edge, err := NewFollowService(follows, noopUserRepo(), "").Follow(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, uint(5), edge.ID)
		assert.Equal(t, uint(1), edge.FollowerID)
		assert.Equal(t, uint(2), edge.FollowingID)
	})
}

func TestFollowService_Unfollow(t *testing.T) {
	t.Parallel()

	follows := noopFollowRepo()
	follows.deleteFn = func(_ context.Context, _, id uint) error { return models.NewNotFoundError("Subscription", id) }
	err := NewFollowService(follows, noopUserRepo(), "").Unfollow(context.Background(), 1, 2)
	assertAppErrorCode(t, err, models.CodeNotFound)

	err = NewFollowService(noopFollowRepo(), noopUserRepo(), "").Unfollow(context.Background(), 1, 0)
	assertValidationError(t, err)
}

func TestFollowService_ListsMaterializeAvatars(t *testing.T) {
	t.Parallel()

	follows := noopFollowRepo()
	follows.followersFn = func(_ context.Context, _ uint) ([]models.FollowListEntry, error) {
		return []models.FollowListEntry{
			{ID: 2, Username: "bob", Avatar: "uploads/avatars/b.png"},
			{ID: 3, Username: "carol", Avatar: "https://cdn.example.com/c.png"},
			{ID: 4, Username: "dave"},
		}, nil
	}
	svc := NewFollowService(follows, noopUserRepo(), "http://localhost:8375")

	entries, err := svc.Followers(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "http://localhost:8375/uploads/avatars/b.png", entries[0].Avatar)
	assert.Equal(t, "https://cdn.example.com/c.png", entries[1].Avatar)
	assert.Empty(t, entries[2].Avatar)
}

func TestFollowService_UnknownUser(t *testing.T) {
	t.Parallel()

	users := noopUserRepo()
	users.existsFn = func(_ context.Context, _ uint) (bool, error) { return false, nil }
	svc := NewFollowService(noopFollowRepo(), users, "")
	ctx := context.Background()

	_, err := svc.Followers(ctx, 9)
	assertAppErrorCode(t, err, models.CodeNotFound)
	_, err = svc.Following(ctx, 9)
	assertAppErrorCode(t, err, models.CodeNotFound)
	_, err = svc.Stats(ctx, 9)
	assertAppErrorCode(t, err, models.CodeNotFound)
}
