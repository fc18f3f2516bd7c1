package seed

import (
	"testing"
	"time"
	"unicode/utf8"

	"chirp/internal/models"
	"chirp/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBuildPost_TimestampsAndContent(t *testing.T) {
	opts := Options{DryRun: true, MaxDays: 30, RandSeed: 7}
	f := NewFactory(nil, opts)
	user := &models.User{ID: 1}

	for i := 0; i < 50; i++ {
		p := f.BuildPost(user)
		assert.Equal(t, user.ID, p.UserID)
		assert.NotEmpty(t, p.Content)
		assert.LessOrEqual(t, utf8.RuneCountInString(p.Content), maxContentLen)
		assert.LessOrEqual(t, time.Since(p.CreatedAt), time.Duration(opts.MaxDays)*24*time.Hour+time.Minute)
		assert.LessOrEqual(t, len(p.Images), 3)
		for pos, img := range p.Images {
			assert.Equal(t, pos, img.Position)
			assert.Contains(t, img.URL, "https://picsum.photos/seed/")
		}
	}
}

func TestBuildPost_Overrides(t *testing.T) {
	f := NewFactory(nil, Options{DryRun: true, RandSeed: 1})
	p := f.BuildPost(&models.User{ID: 4}, func(p *models.Post) { p.Content = "fixed" })
	assert.Equal(t, "fixed", p.Content)
}

func TestCreateUser_DryRunAssignsSyntheticIDs(t *testing.T) {
	f := NewFactory(nil, Options{DryRun: true, SkipBcrypt: true, RandSeed: 3})

	a, err := f.CreateUser(0)
	require.NoError(t, err)
	b, err := f.CreateUser(1)
	require.NoError(t, err)

	assert.NotZero(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.Username, b.Username)
	assert.LessOrEqual(t, len(a.Username), maxUsernameLen)
	assert.Equal(t, DefaultPassword, a.Password)
	require.NotNil(t, a.Birthdate)
	assert.True(t, a.Birthdate.Before(time.Now().AddDate(-13, 0, 0)))
}

func TestCreateUser_HashesPassword(t *testing.T) {
	db := testutil.NewTestDB(t)
	f := NewFactory(db, Options{RandSeed: 11})

	u, err := f.CreateUser(0)
	require.NoError(t, err)

	var stored models.User
	require.NoError(t, db.First(&stored, u.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte(DefaultPassword)))
}

func TestFactory_PersistsGraph(t *testing.T) {
	db := testutil.NewTestDB(t)
	f := NewFactory(db, Options{SkipBcrypt: true, RandSeed: 5})

	alice, err := f.CreateUser(0)
	require.NoError(t, err)
	bob, err := f.CreateUser(1)
	require.NoError(t, err)

	post, err := f.CreatePost(alice, func(p *models.Post) {
		p.Images = []models.PostImage{{URL: "https://example.com/a.png", Position: 0}}
	})
	require.NoError(t, err)
	require.NotZero(t, post.ID)

	require.NoError(t, f.CreateLike(bob, post))
	comment, err := f.CreateComment(bob, post)
	require.NoError(t, err)
	assert.False(t, comment.CreatedAt.Before(post.CreatedAt))
	require.NoError(t, f.CreateFollow(bob, alice))
	assert.Error(t, f.CreateFollow(alice, alice))

	var images, likes, comments, follows int64
	require.NoError(t, db.Model(&models.PostImage{}).Where("post_id = ?", post.ID).Count(&images).Error)
	require.NoError(t, db.Model(&models.Like{}).Count(&likes).Error)
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)
	require.NoError(t, db.Model(&models.Follow{}).Count(&follows).Error)
	assert.Equal(t, int64(1), images)
	assert.Equal(t, int64(1), likes)
	assert.Equal(t, int64(1), comments)
	assert.Equal(t, int64(1), follows)

	// Duplicate likes are rejected by the unique pair index.
	assert.Error(t, f.CreateLike(bob, post))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("  abc ", 5))
	assert.Equal(t, "éé", truncateRunes("ééé", 2))
}
