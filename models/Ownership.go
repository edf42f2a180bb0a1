package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ownership is the per-(client, game) ledger row. The composite unique index
// is what makes get-or-create idempotent under concurrent calls.
type Ownership struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID  string `gorm:"type:uuid;not null;uniqueIndex:idx_client_game" json:"clientId"`
	GameID    string `gorm:"type:uuid;not null;uniqueIndex:idx_client_game" json:"gameId"`
	InCart    bool   `gorm:"not null;default:false" json:"inCart"`
	Purchased bool   `gorm:"not null;default:false" json:"purchased"`
	Game      Game   `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE" json:"game"`
	Client    Client `gorm:"foreignKey:ClientID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (o *Ownership) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
