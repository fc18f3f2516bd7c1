package service

import (
	"context"

	"chirp/internal/models"
	"chirp/internal/repository"
)

// LikeService manages likes and live like counts.
type LikeService struct {
	likeRepo repository.LikeRepository
	postRepo repository.PostRepository
}

// NewLikeService returns a new LikeService.
func NewLikeService(likeRepo repository.LikeRepository, postRepo repository.PostRepository) *LikeService {
	return &LikeService{likeRepo: likeRepo, postRepo: postRepo}
}

// Like records the like and returns it with the post's updated count.
func (s *LikeService) Like(ctx context.Context, userID, postID uint) (*models.Like, int64, error) {
	return s.likeRepo.Like(ctx, userID, postID)
}

// Unlike removes the like and returns the post's updated count.
func (s *LikeService) Unlike(ctx context.Context, userID, postID uint) (int64, error) {
	return s.likeRepo.Unlike(ctx, userID, postID)
}

// Status returns the viewer's like on postID, or nil if there is none.
func (s *LikeService) Status(ctx context.Context, userID, postID uint) (*models.Like, error) {
	return s.likeRepo.Get(ctx, userID, postID)
}

func (s *LikeService) HasLiked(ctx context.Context, userID, postID uint) (bool, error) {
	like, err := s.likeRepo.Get(ctx, userID, postID)
	if err != nil {
		return false, err
	}
	return like != nil, nil
}

// Count returns the live like count of an existing post.
func (s *LikeService) Count(ctx context.Context, postID uint) (int64, error) {
	ok, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, models.NewNotFoundError("Post", postID)
	}
	return s.likeRepo.CountFor(ctx, postID)
}
