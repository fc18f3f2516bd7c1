package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"chirp/internal/config"
	"chirp/internal/models"
	"chirp/internal/repository"
	"chirp/internal/validation"
)

// PostService handles post creation (with image attachments) and deletion.
type PostService struct {
	postRepo repository.PostRepository
	assets   AssetStore
	policy   string
}

// CreatePostInput carries the author, raw content and uploaded files of a new post.
type CreatePostInput struct {
	UserID  uint
	Content string
	Images  []UploadImageInput
}

// CreatePostResult is the stored post plus one result per uploaded file, in upload order.
type CreatePostResult struct {
	Post   *models.Post
	Images []ImageResult
}

// NewPostService returns a new PostService. An unknown policy falls back to best effort.
func NewPostService(postRepo repository.PostRepository, assets AssetStore, policy string) *PostService {
	if policy != config.ImagePolicyAllOrNothing {
		policy = config.ImagePolicyBestEffort
	}
	return &PostService{postRepo: postRepo, assets: assets, policy: policy}
}

// CreatePost validates content, screens each image and persists the post and
// its accepted images in one transaction. Under the best effort policy an
// invalid image is reported as rejected while the rest are kept; under all or
// nothing any invalid image fails the whole request before anything is written.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*CreatePostResult, error) {
	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	content := strings.TrimSpace(in.Content)
	if utf8.RuneCountInString(content) > validation.PostMaxLength {
		return nil, models.NewValidationError("Post content must not exceed 280 characters")
	}

	results := make([]ImageResult, len(in.Images))
	var accepted []int
	for i, img := range in.Images {
		if err := s.assets.Validate(img); err != nil {
			if s.policy == config.ImagePolicyAllOrNothing {
				return nil, models.NewValidationError(img.Filename + ": " + errorMessage(err))
			}
			results[i] = Rejected(img.Filename, errorMessage(err))
			slog.WarnContext(ctx, "rejected post image",
				slog.String("filename", img.Filename),
				slog.String("reason", results[i].Reason))
			continue
		}
		accepted = append(accepted, i)
	}

	if content == "" && len(accepted) == 0 {
		return nil, models.NewValidationError("Post must have content or at least one valid image")
	}

	var stored []string
	post := &models.Post{UserID: in.UserID, Content: content}
	for _, i := range accepted {
		img := in.Images[i]
		ref, err := s.assets.Store(ctx, AssetKindPost, img)
		if err != nil {
			s.removeAll(stored)
			return nil, err
		}
		stored = append(stored, ref)
		results[i] = Accepted(img.Filename, ref, s.assets.URLFor(ref))
		post.Images = append(post.Images, models.PostImage{URL: ref})
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		s.removeAll(stored)
		return nil, err
	}

	created, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return &CreatePostResult{Post: created, Images: results}, nil
}

// DeletePost removes a post owned by requesterID along with its images, likes
// and comments.
func (s *PostService) DeletePost(ctx context.Context, requesterID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != requesterID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	for _, img := range post.Images {
		s.assets.Remove(img.URL)
	}
	return nil
}

func (s *PostService) removeAll(refs []string) {
	for _, ref := range refs {
		s.assets.Remove(ref)
	}
}

func errorMessage(err error) string {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
