package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Comment struct {
	ID          string          `gorm:"type:uuid;primaryKey" json:"id"`
	Description string          `gorm:"not null" json:"description" validate:"required,max=1000"`
	DatePublic  time.Time       `gorm:"not null" json:"datePublic"`
	Estimation  decimal.Decimal `gorm:"type:decimal(5,1);not null;default:0" json:"estimation"`
	GameID      string          `gorm:"type:uuid;not null" json:"gameId"`
	ClientID    *string         `gorm:"type:uuid" json:"clientId,omitempty"`
	Game        Game            `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE" json:"-"`
}

func (cm *Comment) BeforeCreate(tx *gorm.DB) error {
	if cm.ID == "" {
		cm.ID = uuid.NewString()
	}
	if cm.DatePublic.IsZero() {
		cm.DatePublic = time.Now()
	}
	return nil
}

func (cm *Comment) BeforeSave(tx *gorm.DB) error {
	if err := CheckEstimation(cm.Estimation); err != nil {
		return err
	}
	return CheckDateNotFuture("date_public", cm.DatePublic)
}

// CommentInput - for comment create/update on the game detail page
type CommentInput struct {
	Description string          `json:"description" validate:"required,max=1000"`
	Estimation  decimal.Decimal `json:"estimation"`
}

// CommentAPIInput - for comment writes through the REST resource, where the
// game is named in the body rather than the path
type CommentAPIInput struct {
	Description string          `json:"description" validate:"required,max=1000"`
	Estimation  decimal.Decimal `json:"estimation"`
	GameID      string          `json:"gameId" validate:"required,uuid"`
	ClientID    *string         `json:"clientId" validate:"omitempty,uuid"`
}
