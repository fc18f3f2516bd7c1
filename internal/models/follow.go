package models

import (
	"time"
)

// Follow is a directed edge: FollowerID follows FollowingID.
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_follows_pair;index" json:"followerId"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_follows_pair;index" json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`

	// Relationships
	Follower  User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Following User `gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}

// FollowStats holds live follower/following counts for a user.
type FollowStats struct {
	FollowersCount int64 `json:"followersCount"`
	FollowingCount int64 `json:"followingCount"`
}

// FollowListEntry is one user in a followers/following listing.
type FollowListEntry struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
