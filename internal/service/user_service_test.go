package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"chirp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestUserService(repo *userRepoStub) *UserService {
	svc := NewUserService(repo)
	svc.bcryptCost = bcrypt.MinCost
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestUserService_Register_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestUserService(noopUserRepo())
	ctx := context.Background()
	young := fixedNow.AddDate(-13, 0, 0)
	future := fixedNow.Add(time.Hour)

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"missing fields", RegisterInput{Username: "alice"}},
		{"short username", RegisterInput{Username: "al", Email: "a@example.com", Password: "secret"}},
		{"bad email", RegisterInput{Username: "alice", Email: "not-an-email", Password: "secret"}},
		{"short password", RegisterInput{Username: "alice", Email: "a@example.com", Password: "12345"}},
		{"too young", RegisterInput{Username: "alice", Email: "a@example.com", Password: "secret", Birthdate: &young}},
		{"future birthdate", RegisterInput{Username: "alice", Email: "a@example.com", Password: "secret", Birthdate: &future}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Register(ctx, tt.input)
			assertValidationError(t, err)
		})
	}
}

func TestUserService_Register_Duplicates(t *testing.T) {
	t.Parallel()

	t.Run("username taken", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByUsernameFn = func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: 9}, nil
		}
		_, err := newTestUserService(repo).Register(context.Background(), RegisterInput{
			Username: "alice", Email: "a@example.com", Password: "secret",
		})
		assertAppErrorCode(t, err, models.CodeConflict)
	})

	t.Run("email taken", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByEmailFn = func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: 9}, nil
		}
		_, err := newTestUserService(repo).Register(context.Background(), RegisterInput{
			Username: "alice", Email: "a@example.com", Password: "secret",
		})
		assertAppErrorCode(t, err, models.CodeConflict)
	})
}

func TestUserService_Register_HashesPassword(t *testing.T) {
	t.Parallel()

	var created *models.User
	repo := noopUserRepo()
	repo.createFn = func(_ context.Context, u *models.User) error {
		u.ID = 7
		created = u
		return nil
	}
	birth := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)

	user, err := newTestUserService(repo).Register(context.Background(), RegisterInput{
		Username: "alice", Email: " Alice@Example.com ", Password: "secret", Birthdate: &birth,
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, uint(7), user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "secret", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret")))
}

func TestUserService_Authenticate(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		if email == "alice@example.com" {
			return &models.User{ID: 1, Email: email, Password: string(hash)}, nil
		}
		return nil, nil
	}
	svc := newTestUserService(repo)
	ctx := context.Background()

	user, err := svc.Authenticate(ctx, "alice@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)

	_, err = svc.Authenticate(ctx, "alice@example.com", "wrong")
	assertAppErrorCode(t, err, models.CodeUnauthorized)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "secret")
	assertAppErrorCode(t, err, models.CodeUnauthorized)

	_, err = svc.Authenticate(ctx, "", "")
	assertValidationError(t, err)
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()

	newRepo := func() *userRepoStub {
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "alice", Email: "alice@example.com"}, nil
		}
		return repo
	}

	t.Run("applies fields", func(t *testing.T) {
		t.Parallel()
		var saved *models.User
		repo := newRepo()
		repo.updateFn = func(_ context.Context, u *models.User) error { saved = u; return nil }

		name, bio := "alice2", "  hi there "
		user, err := newTestUserService(repo).UpdateProfile(context.Background(), UpdateProfileInput{
			UserID: 1, Username: &name, Bio: &bio,
		})
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, "alice2", user.Username)
		assert.Equal(t, "hi there", user.Bio)
		assert.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("duplicate username", func(t *testing.T) {
		t.Parallel()
		repo := newRepo()
		repo.getByUsernameFn = func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: 2}, nil
		}
		name := "bob"
		_, err := newTestUserService(repo).UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1, Username: &name})
		assertAppErrorCode(t, err, models.CodeConflict)
	})

	t.Run("same username is not a conflict", func(t *testing.T) {
		t.Parallel()
		repo := newRepo()
		repo.getByUsernameFn = func(_ context.Context, _ string) (*models.User, error) {
			t.Fatal("unchanged username should not be looked up")
			return nil, nil
		}
		name := "alice"
		_, err := newTestUserService(repo).UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1, Username: &name})
		require.NoError(t, err)
	})

	t.Run("bio too long", func(t *testing.T) {
		t.Parallel()
		long := strings.Repeat("b", 251)
		_, err := newTestUserService(newRepo()).UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1, Bio: &long})
		assertValidationError(t, err)
	})

	t.Run("future birthdate", func(t *testing.T) {
		t.Parallel()
		future := fixedNow.AddDate(0, 0, 1)
		_, err := newTestUserService(newRepo()).UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1, Birthdate: &future})
		assertValidationError(t, err)
	})

	t.Run("missing user", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return nil, models.NewNotFoundError("User", id)
		}
		_, err := newTestUserService(repo).UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1})
		assertAppErrorCode(t, err, models.CodeNotFound)
	})
}
