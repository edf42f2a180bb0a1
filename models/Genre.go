package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GenreTitles is the fixed vocabulary a genre title must come from.
var GenreTitles = []string{
	"Fiction", "PVP", "Horror", "Card", "Simulator",
	"Strategy", "Casual", "Adventures", "Verbal", "Puzzles",
}

type Genre struct {
	ID    string `gorm:"type:uuid;primaryKey" json:"id"`
	Title string `gorm:"not null" json:"title" validate:"required,oneof=Fiction PVP Horror Card Simulator Strategy Casual Adventures Verbal Puzzles"`
	Games []Game `gorm:"many2many:game_genres;" json:"-"`
}

func (g *Genre) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// GameGenre is the explicit join row between games and genres.
type GameGenre struct {
	ID      string `gorm:"type:uuid;primaryKey" json:"id"`
	GameID  string `gorm:"type:uuid;not null;uniqueIndex:idx_game_genre" json:"gameId"`
	GenreID string `gorm:"type:uuid;not null;uniqueIndex:idx_game_genre" json:"genreId"`
}

func (gg *GameGenre) BeforeCreate(tx *gorm.DB) error {
	if gg.ID == "" {
		gg.ID = uuid.NewString()
	}
	return nil
}
