package repository

import (
	"context"
	"testing"

	"chirp/internal/models"
	"chirp/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository_CreateExistsDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "alice")
	b := testutil.CreateUser(t, db, "bob")

	follow := &models.Follow{FollowerID: a.ID, FollowingID: b.ID}
	require.NoError(t, repo.Create(ctx, follow))
	assert.NotZero(t, follow.ID)

	ok, err := repo.Exists(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// The edge is directed.
	ok, err = repo.Exists(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	err = repo.Create(ctx, &models.Follow{FollowerID: a.ID, FollowingID: b.ID})
	assert.True(t, models.IsCode(err, models.CodeConflict))

	require.NoError(t, repo.Delete(ctx, a.ID, b.ID))
	err = repo.Delete(ctx, a.ID, b.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestFollowRepository_ListsAndStats(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "alice")
	b := testutil.CreateUser(t, db, "bob")
	c := testutil.CreateUser(t, db, "carol")

	testutil.Follow(t, db, a.ID, b.ID)
	testutil.Follow(t, db, a.ID, c.ID)
	testutil.Follow(t, db, c.ID, a.ID)

	following, err := repo.Following(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, following, 2)
	names := []string{following[0].Username, following[1].Username}
	assert.ElementsMatch(t, []string{"bob", "carol"}, names)

	followers, err := repo.Followers(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, c.ID, followers[0].ID)
	assert.Equal(t, "carol", followers[0].Username)

	ids, err := repo.FollowingIDs(ctx, a.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{b.ID, c.ID}, ids)

	stats, err := repo.Stats(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FollowStats{FollowersCount: 1, FollowingCount: 2}, stats)

	empty, err := repo.Followers(ctx, b.ID+100)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
