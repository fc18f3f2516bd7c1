package seed

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"chirp/internal/middleware"
	"chirp/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the plain-text password of every seeded account.
const DefaultPassword = "password123"

const (
	maxUsernameLen = 30
	maxContentLen  = 280
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	// synthetic ID counter when running in DryRun mode
	nextID uint
	// hashed DefaultPassword, computed once per factory
	passwordHash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
// A zero Options.RandSeed seeds the generator from the clock.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{db: db, opts: opts, faker: gofakeit.New(seed), nextID: 1000}
}

func (f *Factory) password() (string, error) {
	if f.opts.SkipBcrypt {
		return DefaultPassword, nil
	}
	if f.passwordHash == "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return "", fmt.Errorf("hash seed password: %w", err)
		}
		f.passwordHash = string(hashed)
	}
	return f.passwordHash, nil
}

// BuildUser constructs a sample user without persisting it. The index keeps
// usernames and emails unique within one seeding run.
func (f *Factory) BuildUser(index int, overrides ...func(*models.User)) (*models.User, error) {
	password, err := f.password()
	if err != nil {
		return nil, err
	}

	suffix := fmt.Sprintf("%d", index)
	base := strings.ToLower(f.faker.Username())
	if limit := maxUsernameLen - len(suffix); len(base) > limit {
		base = base[:limit]
	}
	username := base + suffix

	now := time.Now()
	birthdate := f.faker.DateRange(now.AddDate(-60, 0, 0), now.AddDate(-14, 0, 0))

	user := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  password,
		Bio:       truncateRunes(f.faker.Sentence(10), 250),
		Birthdate: &birthdate,
		Avatar:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
	}
	for _, override := range overrides {
		override(user)
	}
	return user, nil
}

// CreateUser constructs and persists a sample user.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(index int, overrides ...func(*models.User)) (*models.User, error) {
	user, err := f.BuildUser(index, overrides...)
	if err != nil {
		return nil, err
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		middleware.Logger.Debug("[dry-run] CreateUser", slog.String("username", user.Username))
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post authored by user without persisting it.
// CreatedAt is spread over the last MaxDays days and roughly a third of
// posts carry one to three remote images.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.faker.Number(0, maxDays*24*60-1)) * time.Minute
	createdAt := time.Now().Add(-back)

	post := &models.Post{
		Content:   truncateRunes(f.faker.Sentence(f.faker.Number(3, 40)), maxContentLen),
		UserID:    user.ID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	if f.faker.Number(1, 100) <= 35 {
		for i := 0; i < f.faker.Number(1, 3); i++ {
			post.Images = append(post.Images, models.PostImage{
				URL:      fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.faker.UUID()),
				Position: i,
			})
		}
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost constructs and persists a sample post for the given user.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(user, overrides...)
	if err := f.CreatePostsBatch([]*models.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePostsBatch persists multiple posts and their images in as few
// statements as the batch size allows.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		middleware.Logger.Debug("[dry-run] CreatePostsBatch", slog.Int("posts", len(posts)))
		return nil
	}
	return f.db.Omit("User").CreateInBatches(posts, f.batchSize()).Error
}

// CreateComment constructs and persists a sample comment on post authored by user.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content:   truncateRunes(f.faker.Sentence(f.faker.Number(2, 15)), maxContentLen),
		UserID:    user.ID,
		PostID:    post.ID,
		CreatedAt: f.after(post.CreatedAt),
	}
	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		f.nextID++
		comment.ID = f.nextID
		return comment, nil
	}
	if err := f.db.Omit("User", "Post").Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like from user on post.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	if f.opts.DryRun {
		return nil
	}
	like := &models.Like{
		UserID:    user.ID,
		PostID:    post.ID,
		CreatedAt: f.after(post.CreatedAt),
	}
	return f.db.Omit("User", "Post").Create(like).Error
}

// CreateFollow persists a follow edge from follower to following.
func (f *Factory) CreateFollow(follower, following *models.User) error {
	if follower.ID == following.ID {
		return fmt.Errorf("user %d cannot follow themselves", follower.ID)
	}
	if f.opts.DryRun {
		return nil
	}
	follow := &models.Follow{FollowerID: follower.ID, FollowingID: following.ID}
	return f.db.Omit("Follower", "Following").Create(follow).Error
}

// after returns a random instant between t and now.
func (f *Factory) after(t time.Time) time.Time {
	span := time.Since(t)
	if span <= time.Minute {
		return time.Now()
	}
	return t.Add(time.Duration(f.faker.Number(0, int(span/time.Minute))) * time.Minute)
}

func (f *Factory) batchSize() int {
	if f.opts.BatchSize > 0 {
		return f.opts.BatchSize
	}
	return 100
}

func truncateRunes(s string, limit int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:limit]))
}
