package service

import (
	"context"

	"chirp/internal/models"
	"chirp/internal/repository"
)

// FollowService provides subscription (follow graph) business logic.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	assetHost  string
}

// NewFollowService returns a new FollowService.
func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository, assetHost string) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		assetHost:  assetHost,
	}
}

// Follow makes followerID follow targetID. The target must exist; a second
// follow of the same user is a conflict.
func (s *FollowService) Follow(ctx context.Context, followerID, targetID uint) (*models.Follow, error) {
	if targetID == 0 {
		return nil, models.NewValidationError("Target user ID is required")
	}
	if followerID == targetID {
		return nil, models.NewConflictError("You cannot subscribe to yourself")
	}
	if err := s.requireUser(ctx, targetID); err != nil {
		return nil, err
	}

	follow := &models.Follow{FollowerID: followerID, FollowingID: targetID}
	if err := s.followRepo.Create(ctx, follow); err != nil {
		return nil, err
	}
	return follow, nil
}

// Unfollow removes the edge; a missing edge is NotFound.
func (s *FollowService) Unfollow(ctx context.Context, followerID, targetID uint) error {
	if targetID == 0 {
		return models.NewValidationError("Target user ID is required")
	}
	return s.followRepo.Delete(ctx, followerID, targetID)
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, targetID uint) (bool, error) {
	return s.followRepo.Exists(ctx, followerID, targetID)
}

// Followers lists the users following userID with avatar URLs materialized.
func (s *FollowService) Followers(ctx context.Context, userID uint) ([]models.FollowListEntry, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	entries, err := s.followRepo.Followers(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withAvatarURLs(entries), nil
}

// Following lists the users userID follows with avatar URLs materialized.
func (s *FollowService) Following(ctx context.Context, userID uint) ([]models.FollowListEntry, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	entries, err := s.followRepo.Following(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withAvatarURLs(entries), nil
}

func (s *FollowService) Stats(ctx context.Context, userID uint) (models.FollowStats, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return models.FollowStats{}, err
	}
	return s.followRepo.Stats(ctx, userID)
}

func (s *FollowService) requireUser(ctx context.Context, id uint) error {
	ok, err := s.userRepo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func (s *FollowService) withAvatarURLs(entries []models.FollowListEntry) []models.FollowListEntry {
	for i := range entries {
		entries[i].Avatar = MaterializeURL(s.assetHost, entries[i].Avatar)
	}
	return entries
}
