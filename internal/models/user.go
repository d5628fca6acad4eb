package models

import (
	"strings"

	"gorm.io/gorm"
)

// User is a registered account. Email is stored lower-cased and is unique.
type User struct {
	BaseModel

	FullName     string `gorm:"size:255;not null" json:"full_name"`
	Email        string `gorm:"size:320;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	IsAdmin  bool `gorm:"default:false" json:"is_admin"`
	IsMember bool `gorm:"default:false" json:"is_member"`
}

// BeforeSave normalises the email so the unique index is case-insensitive.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormaliseEmail(u.Email)
	return nil
}

// NormaliseEmail trims and lower-cases an email address.
func NormaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
