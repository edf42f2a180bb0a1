package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	Email    string `gorm:"unique;not null" json:"email" validate:"required,email"`
	Password string `gorm:"not null" json:"-"`
	Name     string `gorm:"not null" json:"name" validate:"required,min=3,max=50"`
	Role     string `gorm:"not null;default:user" json:"role" validate:"required,oneof=user admin"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// LoginInput - used for login validation
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterInput - used for registration validation
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Nickname string `json:"nickname" validate:"omitempty,max=300"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}
