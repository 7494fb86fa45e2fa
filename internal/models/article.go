// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Article represents a free-board post in the marketplace.
type Article struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Title   string `gorm:"not null" json:"title"`
	Content string `gorm:"type:text;not null" json:"content"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	User    User   `gorm:"foreignKey:UserID" json:"user"`
	// LikeCount is not persisted; computed at query time
	LikeCount int64 `gorm:"->" json:"likeCount"`
	// Liked indicates whether the current requesting user liked this article (computed)
	Liked bool `gorm:"->" json:"isLiked"`
	// LikedUserIDs is filled on the detail endpoint only.
	LikedUserIDs []uint         `gorm:"-" json:"likedUserIds,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// ArticleLike marks that a user liked an article. The (UserID, ArticleID)
// pair is unique; rows are hard-deleted on un-like.
type ArticleLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_article" json:"user_id"`
	ArticleID uint      `gorm:"not null;uniqueIndex:idx_user_article" json:"article_id"`
	CreatedAt time.Time `json:"created_at"`
}
