package models

import (
	"time"
)

// EnrichedPost is a post decorated with author, absolute image URLs and like state.
type EnrichedPost struct {
	ID         uint      `json:"id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	Images     []string  `json:"images"`
	LikesCount int64     `json:"likesCount"`
	IsLiked    bool      `json:"isLiked"`
	User       Author    `json:"user"`
}

// FeedPage is a paginated slice of a feed.
type FeedPage struct {
	Posts       []EnrichedPost `json:"posts"`
	TotalCount  int64          `json:"totalCount"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
}

// ProfileUser is the public profile projection of a user.
type ProfileUser struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	Info      string     `json:"info,omitempty"`
	Birthdate *time.Time `json:"birthdate,omitempty"`
	Avatar    string     `json:"avatar,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Profile is a user's public profile together with their posts.
type Profile struct {
	User  ProfileUser    `json:"user"`
	Posts []EnrichedPost `json:"posts"`
}
