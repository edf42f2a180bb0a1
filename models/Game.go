package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Game struct {
	ID     string          `gorm:"type:uuid;primaryKey" json:"id"`
	Title  string          `gorm:"not null" json:"title" validate:"required,max=100"`
	Price  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	Genres []Genre         `gorm:"many2many:game_genres;" json:"genres,omitempty"`
}

func (g *Game) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

func (g *Game) BeforeSave(tx *gorm.DB) error {
	return CheckPrice(g.Price)
}

// GameInput - for game create/update
type GameInput struct {
	Title    string          `json:"title" validate:"required,max=100"`
	Price    decimal.Decimal `json:"price"`
	GenreIDs []string        `json:"genreIds" validate:"omitempty,dive,uuid"`
}
