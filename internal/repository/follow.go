package repository

import (
	"context"

	"chirp/internal/models"

	"gorm.io/gorm"
)

// FollowRepository defines persistence operations for the directed follow graph.
type FollowRepository interface {
	Create(ctx context.Context, follow *models.Follow) error
	Delete(ctx context.Context, followerID, followingID uint) error
	Exists(ctx context.Context, followerID, followingID uint) (bool, error)
	Followers(ctx context.Context, userID uint) ([]models.FollowListEntry, error)
	Following(ctx context.Context, userID uint) ([]models.FollowListEntry, error)
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	Stats(ctx context.Context, userID uint) (models.FollowStats, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, follow *models.Follow) error {
	if err := r.db.WithContext(ctx).Omit("Follower", "Following").Create(follow).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("Already subscribed to this user")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID uint) error {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Subscription", followingID)
	}
	return nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Followers lists the users following userID, most recent edge first.
func (r *followRepository) Followers(ctx context.Context, userID uint) ([]models.FollowListEntry, error) {
	return r.listEdges(ctx, "follows.follower_id", "follows.following_id", userID)
}

// Following lists the users userID follows, most recent edge first.
func (r *followRepository) Following(ctx context.Context, userID uint) ([]models.FollowListEntry, error) {
	return r.listEdges(ctx, "follows.following_id", "follows.follower_id", userID)
}

func (r *followRepository) listEdges(ctx context.Context, joinCol, filterCol string, userID uint) ([]models.FollowListEntry, error) {
	entries := []models.FollowListEntry{}
	err := r.db.WithContext(ctx).
		Table("follows").
		Select("users.id, users.username, users.avatar, follows.created_at").
		Joins("JOIN users ON users.id = "+joinCol).
		Where(filterCol+" = ?", userID).
		Order("follows.created_at DESC, follows.id DESC").
		Scan(&entries).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *followRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *followRepository) Stats(ctx context.Context, userID uint) (models.FollowStats, error) {
	var stats models.FollowStats
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Follow{}).Where("following_id = ?", userID).Count(&stats.FollowersCount).Error; err != nil {
		return stats, models.NewInternalError(err)
	}
	if err := db.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&stats.FollowingCount).Error; err != nil {
		return stats, models.NewInternalError(err)
	}
	return stats, nil
}
