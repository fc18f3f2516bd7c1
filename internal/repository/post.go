package repository

import (
	"context"

	"chirp/internal/models"
	"chirp/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines persistence operations for posts and their images.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Delete(ctx context.Context, id uint) error
	ListRecent(ctx context.Context, limit int) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID uint) ([]models.Post, error)
	ListByAuthors(ctx context.Context, authorIDs []uint, limit, offset int) ([]models.Post, int64, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// withDetails preloads the author and the ordered image list.
func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		})
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("posts.created_at DESC, posts.id DESC")
}

// Create inserts the post and its images in one transaction. Image rows take
// their position from their index in post.Images.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	images := post.Images
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return err
		}
		if len(images) == 0 {
			return nil
		}
		for i := range images {
			images[i].PostID = post.ID
			images[i].Position = i
		}
		return tx.Create(&images).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	post.Images = images
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Scopes(withDetails).First(&post, id).Error; err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Delete removes a post together with its images, likes and comments.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	var missing bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dep := range []any{&models.PostImage{}, &models.Like{}, &models.Comment{}} {
			if err := tx.Where("post_id = ?", id).Delete(dep).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		missing = res.RowsAffected == 0
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	if missing {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

func (r *postRepository) ListRecent(ctx context.Context, limit int) (_ []models.Post, err error) {
	ctx, span := traced(ctx, "ListRecent", "posts")
	defer func() { observability.EndSpan(span, err) }()

	posts := []models.Post{}
	if err := r.db.WithContext(ctx).Scopes(withDetails, newestFirst).Limit(limit).Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint) ([]models.Post, error) {
	posts := []models.Post{}
	if err := r.db.WithContext(ctx).Scopes(withDetails, newestFirst).
		Where("user_id = ?", authorID).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ListByAuthors returns one page of posts by any of authorIDs plus the total
// number of matching posts.
func (r *postRepository) ListByAuthors(ctx context.Context, authorIDs []uint, limit, offset int) (_ []models.Post, _ int64, err error) {
	ctx, span := traced(ctx, "ListByAuthors", "posts")
	defer func() { observability.EndSpan(span, err) }()

	posts := []models.Post{}
	if len(authorIDs) == 0 {
		return posts, 0, nil
	}

	var total int64
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Post{}).Where("user_id IN ?", authorIDs).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	if total == 0 || int64(offset) >= total {
		return posts, total, nil
	}
	if err := db.Scopes(withDetails, newestFirst).
		Where("user_id IN ?", authorIDs).
		Limit(limit).Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}

func (r *postRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Post, error) {
	posts := []models.Post{}
	if len(ids) == 0 {
		return posts, nil
	}
	if err := r.db.WithContext(ctx).Scopes(withDetails, newestFirst).
		Where("posts.id IN ?", ids).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}
