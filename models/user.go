package models

import (
	"gorm.io/gorm"
)

// User is the single owner account gating the tracker. The data model is
// single-tenant; no other row carries a user reference.
type User struct {
	gorm.Model
	Email    string `gorm:"uniqueIndex;not null"`
	Password string `gorm:"not null"`
	FullName string
	Disabled bool
}
