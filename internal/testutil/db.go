// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"sync/atomic"
	"testing"
	"time"

	"chirp/internal/database"
	"chirp/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter atomic.Int64

// NewTestDB opens an isolated in-memory SQLite database with the full schema migrated.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:chirp_test_%d?mode=memory&cache=shared&_foreign_keys=1", dbCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser inserts a user with a placeholder password hash.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "$2a$10$placeholderplaceholderplaceholderplaceholderpla",
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// CreatePost inserts a post by author at the given time with optional image refs.
func CreatePost(t testing.TB, db *gorm.DB, authorID uint, content string, at time.Time, imageRefs ...string) *models.Post {
	t.Helper()
	p := &models.Post{UserID: authorID, Content: content, CreatedAt: at, UpdatedAt: at}
	for i, ref := range imageRefs {
		p.Images = append(p.Images, models.PostImage{URL: ref, Position: i})
	}
	if err := db.Omit("User").Create(p).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

// Follow inserts a follow edge.
func Follow(t testing.TB, db *gorm.DB, followerID, followingID uint) {
	t.Helper()
	if err := db.Omit("Follower", "Following").Create(&models.Follow{FollowerID: followerID, FollowingID: followingID}).Error; err != nil {
		t.Fatalf("follow: %v", err)
	}
}

// Like inserts a like.
func Like(t testing.TB, db *gorm.DB, userID, postID uint) {
	t.Helper()
	if err := db.Omit("User", "Post").Create(&models.Like{UserID: userID, PostID: postID}).Error; err != nil {
		t.Fatalf("like: %v", err)
	}
}

// TinyPNG returns an in-memory PNG byte slice with the requested dimensions.
func TinyPNG(t testing.TB, w, h int) []byte {
	t.Helper()
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, solid(w, h)); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// TinyJPEG returns an in-memory JPEG byte slice.
func TinyJPEG(t testing.TB, w, h int) []byte {
	t.Helper()
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, solid(w, h), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// TinyGIF returns an in-memory GIF byte slice.
func TinyGIF(t testing.TB, w, h int) []byte {
	t.Helper()
	buf := bytes.NewBuffer(nil)
	if err := gif.Encode(buf, solid(w, h), nil); err != nil {
		t.Fatalf("encode gif: %v", err)
	}
	return buf.Bytes()
}

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 29, G: 161, B: 242, A: 255})
		}
	}
	return img
}
