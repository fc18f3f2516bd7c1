package service

import (
	"context"
	"log/slog"
	"math"

	"chirp/internal/config"
	"chirp/internal/models"
	"chirp/internal/observability"
	"chirp/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Feed variants, used as metric and span labels.
const (
	FeedGlobal    = "global"
	FeedOwn       = "own"
	FeedFollowing = "following"
	FeedLiked     = "liked"
	FeedProfile   = "profile"
)

const (
	DefaultGlobalFeedLimit = 100
	DefaultFeedPageLimit   = 20
	MaxFeedPageLimit       = 100
)

// FeedService selects posts for each feed variant and decorates them through
// one enrichment pipeline.
type FeedService struct {
	postRepo   repository.PostRepository
	likeRepo   repository.LikeRepository
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository

	assetHost    string
	globalLimit  int
	defaultLimit int
}

// NewFeedService returns a new FeedService.
func NewFeedService(
	postRepo repository.PostRepository,
	likeRepo repository.LikeRepository,
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	cfg *config.Config,
) *FeedService {
	s := &FeedService{
		postRepo:     postRepo,
		likeRepo:     likeRepo,
		followRepo:   followRepo,
		userRepo:     userRepo,
		globalLimit:  DefaultGlobalFeedLimit,
		defaultLimit: DefaultFeedPageLimit,
	}
	if cfg != nil {
		s.assetHost = cfg.AssetHost
		if cfg.GlobalFeedLimit > 0 {
			s.globalLimit = min(cfg.GlobalFeedLimit, MaxFeedPageLimit)
		}
		if cfg.FeedDefaultLimit > 0 {
			s.defaultLimit = min(cfg.FeedDefaultLimit, MaxFeedPageLimit)
		}
	}
	return s
}

// GlobalFeed returns the newest posts from everyone. viewerID may be 0 for
// anonymous readers, in which case isLiked is always false.
func (s *FeedService) GlobalFeed(ctx context.Context, viewerID uint) (_ []models.EnrichedPost, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "FeedService.GlobalFeed")
	defer func() { observability.EndSpan(span, err) }()
	done := observability.TrackFeed(FeedGlobal)

	posts, err := s.postRepo.ListRecent(ctx, s.globalLimit)
	if err != nil {
		return nil, err
	}
	out := s.Enrich(ctx, posts, viewerID)
	done(len(out))
	return out, nil
}

// OwnFeed returns the viewer's own posts.
func (s *FeedService) OwnFeed(ctx context.Context, viewerID uint) (_ []models.EnrichedPost, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "FeedService.OwnFeed")
	defer func() { observability.EndSpan(span, err) }()
	done := observability.TrackFeed(FeedOwn)

	posts, err := s.postRepo.ListByAuthor(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	out := s.Enrich(ctx, posts, viewerID)
	done(len(out))
	return out, nil
}

// FollowingFeed returns one page of posts written by users the viewer follows.
// page is 1-based; non-positive page or limit fall back to defaults and limit
// is clamped to MaxFeedPageLimit.
func (s *FeedService) FollowingFeed(ctx context.Context, viewerID uint, page, limit int) (_ *models.FeedPage, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "FeedService.FollowingFeed")
	defer func() { observability.EndSpan(span, err) }()
	done := observability.TrackFeed(FeedFollowing)

	page, limit = s.normalizePage(page, limit)
	span.SetAttributes(attribute.Int("feed.page", page), attribute.Int("feed.limit", limit))

	following, err := s.followRepo.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if len(following) == 0 {
		done(0)
		return &models.FeedPage{Posts: []models.EnrichedPost{}, CurrentPage: page}, nil
	}

	offset := (page - 1) * limit
	posts, total, err := s.postRepo.ListByAuthors(ctx, following, limit, offset)
	if err != nil {
		return nil, err
	}
	if int64(offset) >= total {
		posts = nil
	}
	out := s.Enrich(ctx, posts, viewerID)
	done(len(out))
	return &models.FeedPage{
		Posts:       out,
		TotalCount:  total,
		TotalPages:  totalPages(total, limit),
		CurrentPage: page,
	}, nil
}

// LikedFeed returns the posts the viewer has liked. isLiked is always true.
func (s *FeedService) LikedFeed(ctx context.Context, viewerID uint) (_ []models.EnrichedPost, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "FeedService.LikedFeed")
	defer func() { observability.EndSpan(span, err) }()
	done := observability.TrackFeed(FeedLiked)

	ids, err := s.likeRepo.PostIDsLikedBy(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := s.enrich(ctx, posts, viewerID, true)
	done(len(out))
	return out, nil
}

// ProfileFeed returns targetID's public profile and posts, with isLiked
// evaluated for viewerID.
func (s *FeedService) ProfileFeed(ctx context.Context, targetID, viewerID uint) (_ *models.Profile, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "FeedService.ProfileFeed")
	defer func() { observability.EndSpan(span, err) }()
	done := observability.TrackFeed(FeedProfile)

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.ListByAuthor(ctx, targetID)
	if err != nil {
		return nil, err
	}
	out := s.Enrich(ctx, posts, viewerID)
	done(len(out))
	return &models.Profile{
		User: models.ProfileUser{
			ID:        user.ID,
			Username:  user.Username,
			Info:      user.Bio,
			Birthdate: user.Birthdate,
			Avatar:    MaterializeURL(s.assetHost, user.Avatar),
			CreatedAt: user.CreatedAt,
		},
		Posts: out,
	}, nil
}

// Enrich decorates posts with the author projection, absolute image URLs, the
// live like count and the viewer's like state. Lookup failures degrade the
// affected fields instead of failing the feed.
func (s *FeedService) Enrich(ctx context.Context, posts []models.Post, viewerID uint) []models.EnrichedPost {
	return s.enrich(ctx, posts, viewerID, false)
}

func (s *FeedService) enrich(ctx context.Context, posts []models.Post, viewerID uint, likedByViewer bool) []models.EnrichedPost {
	out := make([]models.EnrichedPost, 0, len(posts))
	if len(posts) == 0 {
		return out
	}

	ids := make([]uint, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}

	var missingAuthors []uint
	for i := range posts {
		if posts[i].User.ID == 0 {
			missingAuthors = append(missingAuthors, posts[i].UserID)
		}
	}

	var (
		counts   map[uint]int64
		liked    map[uint]bool
		authors  map[uint]models.User
		countErr error
		likedErr error
		authErr  error
		g        errgroup.Group
	)
	// Each stage keeps its own error so one failed lookup degrades only its fields.
	g.Go(func() error {
		counts, countErr = s.likeRepo.CountsFor(ctx, ids)
		return countErr
	})
	if viewerID != 0 && !likedByViewer {
		g.Go(func() error {
			liked, likedErr = s.likeRepo.LikedAmong(ctx, viewerID, ids)
			return likedErr
		})
	}
	if len(missingAuthors) > 0 {
		g.Go(func() error {
			users, err := s.userRepo.GetByIDs(ctx, missingAuthors)
			authors = make(map[uint]models.User, len(users))
			for _, u := range users {
				authors[u.ID] = u
			}
			authErr = err
			return err
		})
	}

	if err := g.Wait(); err != nil {
		if countErr != nil {
			s.degraded(ctx, "likes_count", len(posts), countErr)
		}
		if likedErr != nil {
			s.degraded(ctx, "is_liked", len(posts), likedErr)
		}
		if authErr != nil {
			s.degraded(ctx, "author_lookup", len(missingAuthors), authErr)
		}
	}

	for i := range posts {
		p := &posts[i]
		item := models.EnrichedPost{
			ID:         p.ID,
			Content:    p.Content,
			CreatedAt:  p.CreatedAt,
			Images:     make([]string, 0, len(p.Images)),
			LikesCount: counts[p.ID],
			IsLiked:    likedByViewer || liked[p.ID],
			User:       s.author(ctx, p, authors),
		}
		for _, img := range p.Images {
			item.Images = append(item.Images, MaterializeURL(s.assetHost, img.URL))
		}
		out = append(out, item)
	}
	return out
}

// author prefers the preloaded user and falls back to the batch lookup.
func (s *FeedService) author(ctx context.Context, p *models.Post, fetched map[uint]models.User) models.Author {
	u := p.User
	if u.ID == 0 {
		var ok bool
		if u, ok = fetched[p.UserID]; !ok {
			s.degraded(ctx, "author", 1, models.NewNotFoundError("User", p.UserID))
			return models.Author{ID: p.UserID}
		}
	}
	return models.Author{
		ID:       u.ID,
		Username: u.Username,
		Avatar:   MaterializeURL(s.assetHost, u.Avatar),
	}
}

func (s *FeedService) degraded(ctx context.Context, stage string, items int, err error) {
	observability.EnrichmentDegraded.WithLabelValues(stage).Add(float64(items))
	slog.WarnContext(ctx, "feed enrichment degraded",
		slog.String("stage", stage),
		slog.Int("items", items),
		slog.String("error", err.Error()))
}

func (s *FeedService) normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.defaultLimit
	}
	if limit > MaxFeedPageLimit {
		limit = MaxFeedPageLimit
	}
	// Keeps (page-1)*limit representable; such a page is always past the end.
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	if total == 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
