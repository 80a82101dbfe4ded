package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product represents a catalog product. Orders keep their own copy of the
// product as it existed at checkout time, so edits here never rewrite
// historical orders.
type Product struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"not null" json:"description"`
	Price       string `gorm:"type:decimal(10,2);not null" json:"price"`
	Category    string `gorm:"not null" json:"category"`
	Image       string `gorm:"not null" json:"image"`
	Stock       int    `gorm:"not null;default:10" json:"stock"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// Admin represents a store administrator
type Admin struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
}

func (a *Admin) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// User represents a storefront customer account. Orders reference users
// weakly; guest checkout is allowed.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Password string `gorm:"not null" json:"-"`
}
