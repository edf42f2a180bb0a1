package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Client is the buyer profile. At most one client per user account; the user
// link is optional so a client row can exist without a login.
type Client struct {
	ID             string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         *string         `gorm:"type:uuid;uniqueIndex" json:"userId,omitempty"`
	Nickname       string          `gorm:"not null" json:"nickname" validate:"required,max=300"`
	Money          decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"money"`
	DateRegistrate time.Time       `gorm:"not null" json:"dateRegistrate"`
	// Version guards the balance against concurrent settlements.
	Version uint `gorm:"not null;default:0" json:"-"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	// Registration date is system-assigned, never client-supplied.
	if c.DateRegistrate.IsZero() {
		c.DateRegistrate = time.Now()
	}
	return nil
}

func (c *Client) BeforeSave(tx *gorm.DB) error {
	if err := CheckMoney(c.Money); err != nil {
		return err
	}
	return CheckDateNotFuture("date_registrate", c.DateRegistrate)
}

// ClientInput - for client create/update via the API. Money is a pointer so
// an update that omits it leaves the balance alone.
type ClientInput struct {
	Nickname string           `json:"nickname" validate:"required,max=300"`
	Money    *decimal.Decimal `json:"money"`
}
