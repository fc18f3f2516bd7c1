package service

import (
	"context"
	"errors"
	"testing"

	"chirp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByIDsFn      func(context.Context, []uint) ([]models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	existsFn        func(context.Context, uint) (bool, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	return s.getByIDsFn(ctx, ids)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:       func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByIDsFn:      func(_ context.Context, _ []uint) ([]models.User, error) { return nil, nil },
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		existsFn:        func(_ context.Context, _ uint) (bool, error) { return true, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		updateFn:        func(_ context.Context, _ *models.User) error { return nil },
	}
}

type followRepoStub struct {
	createFn       func(context.Context, *models.Follow) error
	deleteFn       func(context.Context, uint, uint) error
	existsFn       func(context.Context, uint, uint) (bool, error)
	followersFn    func(context.Context, uint) ([]models.FollowListEntry, error)
	followingFn    func(context.Context, uint) ([]models.FollowListEntry, error)
	followingIDsFn func(context.Context, uint) ([]uint, error)
	statsFn        func(context.Context, uint) (models.FollowStats, error)
}

func (s *followRepoStub) Create(ctx context.Context, follow *models.Follow) error {
	return s.createFn(ctx, follow)
}
func (s *followRepoStub) Delete(ctx context.Context, followerID, followingID uint) error {
	return s.deleteFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Exists(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.existsFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Followers(ctx context.Context, userID uint) ([]models.FollowListEntry, error) {
	return s.followersFn(ctx, userID)
}
func (s *followRepoStub) Following(ctx context.Context, userID uint) ([]models.FollowListEntry, error) {
	return s.followingFn(ctx, userID)
}
func (s *followRepoStub) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.followingIDsFn(ctx, userID)
}
func (s *followRepoStub) Stats(ctx context.Context, userID uint) (models.FollowStats, error) {
	return s.statsFn(ctx, userID)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		createFn:       func(_ context.Context, _ *models.Follow) error { return nil },
		deleteFn:       func(_ context.Context, _, _ uint) error { return nil },
		existsFn:       func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		followersFn:    func(_ context.Context, _ uint) ([]models.FollowListEntry, error) { return nil, nil },
		followingFn:    func(_ context.Context, _ uint) ([]models.FollowListEntry, error) { return nil, nil },
		followingIDsFn: func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
		statsFn:        func(_ context.Context, _ uint) (models.FollowStats, error) { return models.FollowStats{}, nil },
	}
}

type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint) (*models.Post, error)
	existsFn        func(context.Context, uint) (bool, error)
	deleteFn        func(context.Context, uint) error
	listRecentFn    func(context.Context, int) ([]models.Post, error)
	listByAuthorFn  func(context.Context, uint) ([]models.Post, error)
	listByAuthorsFn func(context.Context, []uint, int, int) ([]models.Post, int64, error)
	listByIDsFn     func(context.Context, []uint) ([]models.Post, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) ListRecent(ctx context.Context, limit int) ([]models.Post, error) {
	return s.listRecentFn(ctx, limit)
}
func (s *postRepoStub) ListByAuthor(ctx context.Context, authorID uint) ([]models.Post, error) {
	return s.listByAuthorFn(ctx, authorID)
}
func (s *postRepoStub) ListByAuthors(ctx context.Context, authorIDs []uint, limit, offset int) ([]models.Post, int64, error) {
	return s.listByAuthorsFn(ctx, authorIDs, limit, offset)
}
func (s *postRepoStub) ListByIDs(ctx context.Context, ids []uint) ([]models.Post, error) {
	return s.listByIDsFn(ctx, ids)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:       func(_ context.Context, p *models.Post) error { p.ID = 1; return nil },
		getByIDFn:      func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		existsFn:       func(_ context.Context, _ uint) (bool, error) { return true, nil },
		deleteFn:       func(_ context.Context, _ uint) error { return nil },
		listRecentFn:   func(_ context.Context, _ int) ([]models.Post, error) { return nil, nil },
		listByAuthorFn: func(_ context.Context, _ uint) ([]models.Post, error) { return nil, nil },
		listByAuthorsFn: func(_ context.Context, _ []uint, _, _ int) ([]models.Post, int64, error) {
			return nil, 0, nil
		},
		listByIDsFn: func(_ context.Context, _ []uint) ([]models.Post, error) { return nil, nil },
	}
}

type likeRepoStub struct {
	likeFn           func(context.Context, uint, uint) (*models.Like, int64, error)
	unlikeFn         func(context.Context, uint, uint) (int64, error)
	getFn            func(context.Context, uint, uint) (*models.Like, error)
	countForFn       func(context.Context, uint) (int64, error)
	countsForFn      func(context.Context, []uint) (map[uint]int64, error)
	likedAmongFn     func(context.Context, uint, []uint) (map[uint]bool, error)
	postIDsLikedByFn func(context.Context, uint) ([]uint, error)
}

func (s *likeRepoStub) Like(ctx context.Context, userID, postID uint) (*models.Like, int64, error) {
	return s.likeFn(ctx, userID, postID)
}
func (s *likeRepoStub) Unlike(ctx context.Context, userID, postID uint) (int64, error) {
	return s.unlikeFn(ctx, userID, postID)
}
func (s *likeRepoStub) Get(ctx context.Context, userID, postID uint) (*models.Like, error) {
	return s.getFn(ctx, userID, postID)
}
func (s *likeRepoStub) CountFor(ctx context.Context, postID uint) (int64, error) {
	return s.countForFn(ctx, postID)
}
func (s *likeRepoStub) CountsFor(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	return s.countsForFn(ctx, postIDs)
}
func (s *likeRepoStub) LikedAmong(ctx context.Context, userID uint, postIDs []uint) (map[uint]bool, error) {
	return s.likedAmongFn(ctx, userID, postIDs)
}
func (s *likeRepoStub) PostIDsLikedBy(ctx context.Context, userID uint) ([]uint, error) {
	return s.postIDsLikedByFn(ctx, userID)
}

func noopLikeRepo() *likeRepoStub {
	return &likeRepoStub{
		likeFn: func(_ context.Context, u, p uint) (*models.Like, int64, error) {
			return &models.Like{ID: 1, UserID: u, PostID: p}, 1, nil
		},
		unlikeFn:         func(_ context.Context, _, _ uint) (int64, error) { return 0, nil },
		getFn:            func(_ context.Context, _, _ uint) (*models.Like, error) { return nil, nil },
		countForFn:       func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		countsForFn:      func(_ context.Context, _ []uint) (map[uint]int64, error) { return map[uint]int64{}, nil },
		likedAmongFn:     func(_ context.Context, _ uint, _ []uint) (map[uint]bool, error) { return map[uint]bool{}, nil },
		postIDsLikedByFn: func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
	}
}

type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:    func(_ context.Context, _ uint) (*models.Comment, error) { return &models.Comment{}, nil },
		listByPostFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
	}
}

// assetStoreStub accepts files whose content is not "bad" and records stores and removals.
type assetStoreStub struct {
	storeErr error
	stored   []string
	removed  []string
}

func (s *assetStoreStub) Validate(in UploadImageInput) error {
	if string(in.Content) == "bad" {
		return models.NewValidationError("Invalid image type (allowed: jpeg, png, gif, webp)")
	}
	return nil
}

func (s *assetStoreStub) Store(_ context.Context, kind string, in UploadImageInput) (string, error) {
	if s.storeErr != nil {
		return "", s.storeErr
	}
	ref := UploadURLPrefix + "/" + kind + "/" + in.Filename
	s.stored = append(s.stored, ref)
	return ref, nil
}

func (s *assetStoreStub) Remove(ref string) { s.removed = append(s.removed, ref) }

func (s *assetStoreStub) URLFor(ref string) string { return MaterializeURL("http://assets.test", ref) }

// assertAppErrorCode asserts that err is an AppError with the given code.
func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidation)
}
