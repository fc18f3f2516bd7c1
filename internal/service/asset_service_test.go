package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chirp/internal/config"
	"chirp/internal/models"
	"chirp/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetService_StoreAndRemove(t *testing.T) {
	dir := t.TempDir()
	svc := NewAssetService(&config.Config{UploadDir: dir, ImageMaxUploadSizeMB: 1, AssetHost: "http://localhost:8375"})

	ref, err := svc.Store(context.Background(), AssetKindPost, UploadImageInput{
		UserID:      1,
		Filename:    "pic.png",
		ContentType: "image/png",
		Content:     testutil.TinyPNG(t, 8, 8),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "uploads/posts/"), ref)
	assert.True(t, strings.HasSuffix(ref, ".png"), ref)

	abs := filepath.Join(dir, "posts", filepath.Base(ref))
	_, statErr := os.Stat(abs)
	require.NoError(t, statErr)

	assert.Equal(t, "http://localhost:8375/"+ref, svc.URLFor(ref))

	svc.Remove(ref)
	_, statErr = os.Stat(abs)
	assert.True(t, os.IsNotExist(statErr))
}

func TestAssetService_Validate(t *testing.T) {
	svc := NewAssetService(&config.Config{UploadDir: t.TempDir(), ImageMaxUploadSizeMB: 1})

	tests := []struct {
		name    string
		input   UploadImageInput
		wantErr bool
	}{
		{"png", UploadImageInput{Filename: "a.png", Content: testutil.TinyPNG(t, 4, 4)}, false},
		{"jpeg", UploadImageInput{Filename: "a.jpg", ContentType: "image/jpeg", Content: testutil.TinyJPEG(t, 4, 4)}, false},
		{"gif", UploadImageInput{Filename: "a.gif", Content: testutil.TinyGIF(t, 4, 4)}, false},
		{"empty", UploadImageInput{Filename: "a.png"}, true},
		{"text", UploadImageInput{Filename: "a.txt", Content: []byte("hello world")}, true},
		{"content type mismatch", UploadImageInput{Filename: "a.png", ContentType: "image/gif", Content: testutil.TinyPNG(t, 4, 4)}, true},
		{"too large", UploadImageInput{Filename: "big.png", Content: append(testutil.TinyPNG(t, 4, 4), make([]byte, 1024*1024)...)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Validate(tt.input)
			if tt.wantErr {
				assertValidationError(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAssetService_StoreRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	svc := NewAssetService(&config.Config{UploadDir: dir})

	_, err := svc.Store(context.Background(), AssetKindAvatar, UploadImageInput{Filename: "x", Content: []byte("nope")})
	assertAppErrorCode(t, err, models.CodeValidation)

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestAssetService_RemoveIgnoresForeignRefs(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(dir, "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o600))

	svc := NewAssetService(&config.Config{UploadDir: filepath.Join(dir, "uploads")})
	svc.Remove("uploads/../keep.txt")
	svc.Remove("https://cdn.example.com/a.png")

	_, err := os.Stat(outside)
	assert.NoError(t, err)
}

func TestMaterializeURL(t *testing.T) {
	tests := []struct {
		host, ref, want string
	}{
		{"http://localhost:8375", "", ""},
		{"http://localhost:8375", "uploads/a.png", "http://localhost:8375/uploads/a.png"},
		{"http://localhost:8375/", "/uploads/a.png", "http://localhost:8375/uploads/a.png"},
		{"http://localhost:8375", "https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"http://localhost:8375", "http://other/a.png", "http://other/a.png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaterializeURL(tt.host, tt.ref))
	}
}
