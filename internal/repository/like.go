package repository

import (
	"context"
	"errors"

	"chirp/internal/models"
	"chirp/internal/observability"

	"gorm.io/gorm"
)

// LikeRepository defines persistence operations for likes.
type LikeRepository interface {
	Like(ctx context.Context, userID, postID uint) (*models.Like, int64, error)
	Unlike(ctx context.Context, userID, postID uint) (int64, error)
	Get(ctx context.Context, userID, postID uint) (*models.Like, error)
	CountFor(ctx context.Context, postID uint) (int64, error)
	CountsFor(ctx context.Context, postIDs []uint) (map[uint]int64, error)
	LikedAmong(ctx context.Context, userID uint, postIDs []uint) (map[uint]bool, error)
	PostIDsLikedBy(ctx context.Context, userID uint) ([]uint, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a new LikeRepository implementation.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Like records userID's like on postID and returns it with the post's fresh
// like count. The insert and the recount share a transaction.
func (r *likeRepository) Like(ctx context.Context, userID, postID uint) (*models.Like, int64, error) {
	like := &models.Like{UserID: userID, PostID: postID}
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var posts int64
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&posts).Error; err != nil {
			return models.NewInternalError(err)
		}
		if posts == 0 {
			return models.NewNotFoundError("Post", postID)
		}
		if err := tx.Omit("User", "Post").Create(like).Error; err != nil {
			if isUniqueViolation(err) {
				return models.NewConflictError("Post already liked")
			}
			return models.NewInternalError(err)
		}
		if err := tx.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return like, count, nil
}

// Unlike removes userID's like on postID and returns the post's fresh like count.
func (r *likeRepository) Unlike(ctx context.Context, userID, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Like", postID)
		}
		if err := tx.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Get returns nil, nil when userID has not liked postID.
func (r *likeRepository) Get(ctx context.Context, userID, postID uint) (*models.Like, error) {
	var like models.Like
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&like).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &like, nil
}

func (r *likeRepository) CountFor(ctx context.Context, postID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// CountsFor returns like counts keyed by post ID. Posts without likes are absent.
func (r *likeRepository) CountsFor(ctx context.Context, postIDs []uint) (_ map[uint]int64, err error) {
	counts := make(map[uint]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	ctx, span := traced(ctx, "CountsFor", "likes")
	defer func() { observability.EndSpan(span, err) }()

	var rows []models.LikeCount
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		counts[row.PostID] = row.Count
	}
	return counts, nil
}

// LikedAmong returns the subset of postIDs that userID has liked.
func (r *likeRepository) LikedAmong(ctx context.Context, userID uint, postIDs []uint) (map[uint]bool, error) {
	liked := make(map[uint]bool)
	if userID == 0 || len(postIDs) == 0 {
		return liked, nil
	}
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

func (r *likeRepository) PostIDsLikedBy(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ?", userID).
		Pluck("post_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
