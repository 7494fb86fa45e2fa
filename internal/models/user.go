// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Auth providers known to the application.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User represents a marketplace account. Password is nil for accounts that
// only ever signed in through an OAuth provider.
type User struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Email      string         `gorm:"unique;not null" json:"email"`
	Nickname   string         `gorm:"unique;not null" json:"nickname"`
	Password   *string        `json:"-"`
	Provider   string         `gorm:"not null;default:local;uniqueIndex:idx_provider_identity" json:"provider"`
	ProviderID *string        `gorm:"uniqueIndex:idx_provider_identity" json:"-"`
	Image      string         `json:"image"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// Author is the reduced user shape embedded in articles, products and comments.
type Author struct {
	ID       uint   `json:"id"`
	Nickname string `json:"nickname"`
}

// AuthorOf builds the embedded author shape for a user.
func AuthorOf(u User) Author {
	return Author{ID: u.ID, Nickname: u.Nickname}
}
