package service

import (
	"context"
	"strings"
	"time"

	"chirp/internal/models"
	"chirp/internal/repository"
	"chirp/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService implements registration, login and profile maintenance.
type UserService struct {
	userRepo   repository.UserRepository
	bcryptCost int
	now        func() time.Time
}

// RegisterInput carries signup fields.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Birthdate *time.Time
	Avatar    string
}

// UpdateProfileInput is a partial update; nil fields are left unchanged.
type UpdateProfileInput struct {
	UserID    uint
	Username  *string
	Email     *string
	Bio       *string
	Birthdate *time.Time
	Avatar    *string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, bcryptCost: bcrypt.DefaultCost, now: time.Now}
}

// Register validates the input, hashes the password and creates the user.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, models.NewValidationError("Username, email, and password are required")
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.Birthdate != nil {
		if err := validation.ValidateSignupAge(*in.Birthdate, s.now()); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	if err := s.ensureUsernameFree(ctx, in.Username, 0); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, in.Email, 0); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hashed),
		Birthdate: in.Birthdate,
		Avatar:    in.Avatar,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate returns the user owning email when password matches.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdateProfile applies the non-nil fields of in to the user.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if username != user.Username {
			if err := s.ensureUsernameFree(ctx, username, user.ID); err != nil {
				return nil, err
			}
			user.Username = username
		}
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if err := validation.ValidateEmail(email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if err := validation.ValidateBio(bio); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Bio = bio
	}
	if in.Birthdate != nil {
		if err := validation.ValidateBirthdate(*in.Birthdate, s.now()); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Birthdate = in.Birthdate
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ensureUsernameFree(ctx context.Context, username string, self uint) error {
	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return models.NewConflictError("Username already taken")
	}
	return nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string, self uint) error {
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return models.NewConflictError("Email already registered")
	}
	return nil
}
