// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"chirp/internal/middleware"
	"chirp/internal/models"

	"gorm.io/gorm"
)

// Options configures the seeder and its factory.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool

	SkipBcrypt bool
	DryRun     bool
	// MaxDays bounds how far back post timestamps are spread.
	MaxDays   int
	BatchSize int
	// RandSeed makes a run reproducible when non-zero.
	RandSeed int64
}

// Preset is a named seeding size.
type Preset struct {
	Users int
	Posts int
}

// Presets are the sizes accepted by ApplyPreset.
var Presets = map[string]Preset{
	"minimal":   {Users: 5, Posts: 20},
	"standard":  {Users: 50, Posts: 200},
	"populated": {Users: 250, Posts: 2000},
}

// baseUsers are always created first so demo logins stay stable across runs.
var baseUsers = []string{"demo", "chirper", "test"}

// Seeder populates the database with a connected set of users, follows,
// posts, likes and comments.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, opts: opts, factory: NewFactory(db, opts)}
}

// Factory exposes the seeder's entity factory.
func (s *Seeder) Factory() *Factory {
	return s.factory
}

// Seed populates the database according to opts.
func Seed(db *gorm.DB, opts Options) error {
	middleware.Logger.Info("starting database seeding",
		slog.Int("users", opts.NumUsers), slog.Int("posts", opts.NumPosts))

	s := NewSeeder(db, opts)
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return fmt.Errorf("clear existing data: %w", err)
		}
	}

	users, err := s.SeedSocialMesh(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	if _, err := s.SeedEngagement(users, opts.NumPosts); err != nil {
		return fmt.Errorf("seed engagement: %w", err)
	}

	middleware.Logger.Info("database seeding completed")
	return nil
}

// ApplyPreset seeds one of the named Presets.
func (s *Seeder) ApplyPreset(name string) error {
	preset, ok := Presets[strings.ToLower(name)]
	if !ok {
		names := make([]string, 0, len(Presets))
		for n := range Presets {
			names = append(names, n)
		}
		sort.Strings(names)
		return fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(names, ", "))
	}

	users, err := s.SeedSocialMesh(preset.Users)
	if err != nil {
		return err
	}
	_, err = s.SeedEngagement(users, preset.Posts)
	return err
}

// ClearAll removes every seeded row, children before parents.
func (s *Seeder) ClearAll() error {
	if s.opts.DryRun {
		return nil
	}
	middleware.Logger.Info("clearing existing data")

	if s.db.Dialector.Name() == "postgres" {
		return s.db.Exec(`TRUNCATE TABLE comments, likes, post_images, follows, posts, users RESTART IDENTITY CASCADE`).Error
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []any{
			&models.Comment{},
			&models.Like{},
			&models.PostImage{},
			&models.Follow{},
			&models.Post{},
			&models.User{},
		} {
			if err := all.Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SeedSocialMesh creates count users and a follow graph between them where
// every user follows at least one other user.
func (s *Seeder) SeedSocialMesh(count int) ([]models.User, error) {
	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		var overrides []func(*models.User)
		if i < len(baseUsers) {
			name := baseUsers[i]
			overrides = append(overrides, func(u *models.User) {
				u.Username = name
				u.Email = name + "@example.com"
			})
		}
		u, err := s.factory.CreateUser(i, overrides...)
		if err != nil {
			return nil, fmt.Errorf("create user %d: %w", i, err)
		}
		users = append(users, *u)
	}
	middleware.Logger.Info("users created", slog.Int("count", len(users)))

	if len(users) < 2 {
		return users, nil
	}

	follows := 0
	for i := range users {
		// A ring edge guarantees the minimum of one followee.
		targets := map[int]struct{}{(i + 1) % len(users): {}}
		for j := range users {
			if j != i && s.factory.faker.Number(1, 100) <= 25 {
				targets[j] = struct{}{}
			}
		}
		for j := range targets {
			if err := s.factory.CreateFollow(&users[i], &users[j]); err != nil {
				return nil, fmt.Errorf("follow %d -> %d: %w", users[i].ID, users[j].ID, err)
			}
			follows++
		}
	}
	middleware.Logger.Info("follow graph created", slog.Int("follows", follows))

	return users, nil
}

// EngagementStats reports what SeedEngagement wrote.
type EngagementStats struct {
	Posts    int
	Likes    int
	Comments int
}

// SeedEngagement creates count posts spread across users, then likes and
// comments from random users on each post.
func (s *Seeder) SeedEngagement(users []models.User, count int) (EngagementStats, error) {
	var stats EngagementStats
	if len(users) == 0 || count <= 0 {
		return stats, nil
	}
	f := s.factory

	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := &users[f.faker.Number(0, len(users)-1)]
		posts = append(posts, f.BuildPost(author))
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return stats, fmt.Errorf("create posts: %w", err)
	}
	stats.Posts = len(posts)

	for _, post := range posts {
		for i := range users {
			if f.faker.Number(1, 100) > 30 {
				continue
			}
			if err := f.CreateLike(&users[i], post); err != nil {
				return stats, fmt.Errorf("like post %d: %w", post.ID, err)
			}
			stats.Likes++
		}

		for n := f.faker.Number(0, 3); n > 0; n-- {
			commenter := &users[f.faker.Number(0, len(users)-1)]
			if _, err := f.CreateComment(commenter, post); err != nil {
				return stats, fmt.Errorf("comment on post %d: %w", post.ID, err)
			}
			stats.Comments++
		}
	}

	middleware.Logger.Info("engagement created",
		slog.Int("posts", stats.Posts),
		slog.Int("likes", stats.Likes),
		slog.Int("comments", stats.Comments))
	return stats, nil
}
