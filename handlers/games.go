package handlers

import (
	"net/http"
	"strconv"

	"gamestore/cache"
	"gamestore/db"
	"gamestore/models"
	"gamestore/utils"

	"github.com/gin-gonic/gin"
)

const gamesPageSize = 10

// GetGames lists the catalog, paginated, with an optional title filter.
func GetGames(c *gin.Context) {
	query := c.Query("query")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	// Plain unfiltered first page is the hot path; serve it from cache.
	if query == "" && page == 1 && cache.IsRedisAvailable() {
		if cached, err := cache.GetGames(); err == nil && cached != nil {
			utils.Log.Debug("Cache HIT: games")
			c.JSON(http.StatusOK, cached)
			return
		}
		utils.Log.Debug("Cache MISS: games")
	}

	countQ := db.DB.Model(&models.Game{})
	listQ := db.DB.Preload("Genres")
	if query != "" {
		countQ = countQ.Where("LOWER(title) LIKE LOWER(?)", "%"+query+"%")
		listQ = listQ.Where("LOWER(title) LIKE LOWER(?)", "%"+query+"%")
	}

	var total int64
	if err := countQ.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch games"})
		return
	}

	var games []models.Game
	err := listQ.Limit(gamesPageSize).Offset((page - 1) * gamesPageSize).Find(&games).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch games"})
		return
	}

	resp := gin.H{
		"games": games,
		"page":  page,
		"total": total,
	}
	if query == "" && page == 1 && cache.IsRedisAvailable() {
		cache.SetGames(resp)
	}
	c.JSON(http.StatusOK, resp)
}

// GetGameByID returns a game with its comments and statistics.
func GetGameByID(c *gin.Context) {
	details, err := Cart.FetchGameDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		workflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"game":     details.Game,
		"comments": details.Comments,
		"statistics": gin.H{
			"total_comments":     details.Statistics.TotalComments,
			"average_estimation": details.Statistics.AverageEstimation,
			"total_owners":       details.Statistics.TotalOwners,
		},
	})
}

// SearchGames handles GET /search?query=
func SearchGames(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search query is required"})
		return
	}
	games, err := Cart.SearchGames(c.Request.Context(), query, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"query":       query,
		"results":     games,
		"total_found": len(games),
	})
}

// GetGenres lists genres, cached.
func GetGenres(c *gin.Context) {
	if cache.IsRedisAvailable() {
		if cached, err := cache.GetGenres(); err == nil && cached != nil {
			utils.Log.Debug("Cache HIT: genres")
			c.JSON(http.StatusOK, cached)
			return
		}
		utils.Log.Debug("Cache MISS: genres")
	}

	var genres []models.Genre
	if err := db.DB.Find(&genres).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch genres"})
		return
	}

	if cache.IsRedisAvailable() {
		cache.SetGenres(genres)
	}
	c.JSON(http.StatusOK, genres)
}
