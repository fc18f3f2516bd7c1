// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents an account in the chirp application.
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Username  string     `gorm:"size:30;uniqueIndex;not null" json:"username"`
	Email     string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"not null" json:"-"`
	Bio       string     `gorm:"size:250" json:"bio"`
	Birthdate *time.Time `json:"birthdate,omitempty"`
	// Avatar holds the stored asset reference, not a materialized URL.
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Author is the public projection of a user embedded in feeds, comments and follow lists.
type Author struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}
