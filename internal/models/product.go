// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a listing for sale.
type Product struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	Name        string   `gorm:"not null" json:"name"`
	Description string   `gorm:"type:text;not null" json:"description"`
	Price       int64    `gorm:"not null" json:"price"`
	Tags        []string `gorm:"serializer:json" json:"tags"`
	UserID      uint     `gorm:"not null;index" json:"user_id"`
	User        User     `gorm:"foreignKey:UserID" json:"user"`
	Images      []Image  `gorm:"many2many:product_images" json:"images"`
	// LikeCount is not persisted; computed at query time
	LikeCount int64 `gorm:"->" json:"likeCount"`
	// Liked indicates whether the current requesting user liked this product (computed)
	Liked     bool           `gorm:"->" json:"isLiked"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ProductLike marks that a user liked a product. The (UserID, ProductID)
// pair is unique; rows are hard-deleted on un-like.
type ProductLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_product" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_user_product" json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}
