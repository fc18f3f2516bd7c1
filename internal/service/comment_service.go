package service

import (
	"context"

	"chirp/internal/models"
	"chirp/internal/repository"
	"chirp/internal/validation"
)

// CommentService handles append-only comments on posts.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	assetHost   string
}

// CreateCommentInput carries the fields of a new comment.
type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

// NewCommentService returns a new CommentService.
func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository, assetHost string) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo, assetHost: assetHost}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.CommentView, error) {
	content, err := validation.ValidateText("Comment", in.Content, validation.CommentMaxLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.requirePost(ctx, in.PostID); err != nil {
		return nil, err
	}

	comment := &models.Comment{UserID: in.UserID, PostID: in.PostID, Content: content}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	view := s.toView(created)
	return &view, nil
}

// ListComments returns the comments on postID newest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]models.CommentView, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	views := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, s.toView(c))
	}
	return views, nil
}

func (s *CommentService) requirePost(ctx context.Context, postID uint) error {
	ok, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}

func (s *CommentService) toView(c *models.Comment) models.CommentView {
	return models.CommentView{
		ID:        c.ID,
		Content:   c.Content,
		PostID:    c.PostID,
		CreatedAt: c.CreatedAt,
		User: models.Author{
			ID:       c.UserID,
			Username: c.User.Username,
			Avatar:   MaterializeURL(s.assetHost, c.User.Avatar),
		},
	}
}
