package models

import (
	"time"
)

// Post represents a short text/image update owned by exactly one author.
type Post struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Content   string      `gorm:"size:280;not null;default:''" json:"content"`
	UserID    uint        `gorm:"not null;index" json:"userId"`
	User      User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Images    []PostImage `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"images"`
	CreatedAt time.Time   `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// PostImage is one ordered image attachment of a post.
type PostImage struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	PostID uint   `gorm:"not null;index:idx_post_images_post_position,priority:1" json:"postId"`
	URL    string `gorm:"column:image_url;not null" json:"url"`
	// Position is zero-based and assigned in upload sequence.
	Position  int       `gorm:"not null;default:0;index:idx_post_images_post_position,priority:2" json:"order"`
	CreatedAt time.Time `json:"createdAt"`
}
