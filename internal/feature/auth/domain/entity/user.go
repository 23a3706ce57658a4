// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User is a registered helpdesk account. Users are created at registration
// and never updated or deleted.
type User struct {
	ID uint `gorm:"primaryKey"`

	// Email is unique across all users and compared case-sensitively, as stored.
	Email string `gorm:"uniqueIndex;size:100;not null"`

	// Password holds the bcrypt hash, never the plaintext.
	Password string `gorm:"size:100;not null"`

	CreatedAt time.Time
}
