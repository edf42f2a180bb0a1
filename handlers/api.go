package handlers

import (
	"gamestore/cache"
	"gamestore/models"

	"gorm.io/gorm"
)

// REST resources, one explicit instantiation per entity.

var GamesResource = &Resource[models.Game, models.GameInput]{
	Name: "game",
	Apply: func(in models.GameInput, out *models.Game) {
		out.Title = in.Title
		out.Price = in.Price
	},
	Assoc: func(gdb *gorm.DB, game *models.Game, in models.GameInput) error {
		if in.GenreIDs == nil {
			return nil
		}
		var genres []models.Genre
		if err := gdb.Find(&genres, "id IN ?", in.GenreIDs).Error; err != nil {
			return err
		}
		return gdb.Model(game).Association("Genres").Replace(genres)
	},
	AfterWrite: func(*models.Game) {
		if cache.IsRedisAvailable() {
			cache.InvalidateGames()
		}
	},
}

var GenresResource = &Resource[models.Genre, models.Genre]{
	Name: "genre",
	Apply: func(in models.Genre, out *models.Genre) {
		out.Title = in.Title
	},
	AfterWrite: func(*models.Genre) {
		if cache.IsRedisAvailable() {
			cache.InvalidateGenres()
		}
	},
}

// Registration date is system-assigned and deliberately absent from the
// input, so API updates cannot touch it.
var ClientsResource = &Resource[models.Client, models.ClientInput]{
	Name: "client",
	Apply: func(in models.ClientInput, out *models.Client) {
		out.Nickname = in.Nickname
		if in.Money != nil {
			out.Money = *in.Money
		}
	},
}

var CommentsResource = &Resource[models.Comment, models.CommentAPIInput]{
	Name: "comment",
	Apply: func(in models.CommentAPIInput, out *models.Comment) {
		out.Description = in.Description
		out.Estimation = in.Estimation
		out.GameID = in.GameID
		out.ClientID = in.ClientID
	},
	AfterWrite: func(cm *models.Comment) {
		if cache.IsRedisAvailable() {
			cache.InvalidateComments(cm.GameID)
		}
	},
}
