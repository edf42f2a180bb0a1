package handlers

import (
	"net/http"

	"gamestore/cache"
	"gamestore/db"
	"gamestore/models"
	"gamestore/utils"

	"github.com/gin-gonic/gin"
)

// CreateComment handles POST /games/:id/comments
func CreateComment(c *gin.Context) {
	client, ok := currentClient(c)
	if !ok {
		return
	}

	var game models.Game
	if err := db.DB.First(&game, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	var input models.CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateStruct(input); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	comment := models.Comment{
		Description: input.Description,
		Estimation:  input.Estimation,
		GameID:      game.ID,
		ClientID:    &client.ID,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		workflowError(c, err)
		return
	}

	invalidateComments(game.ID)
	c.JSON(http.StatusCreated, comment)
}

// GetComments handles GET /games/:id/comments
func GetComments(c *gin.Context) {
	gameID := c.Param("id")

	if cache.IsRedisAvailable() {
		if cached, err := cache.GetComments(gameID); err == nil && cached != nil {
			utils.Log.Debug("Cache HIT: comments for game " + gameID)
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	var game models.Game
	if err := db.DB.First(&game, "id = ?", gameID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	var comments []models.Comment
	if err := db.DB.Where("game_id = ?", gameID).Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	if cache.IsRedisAvailable() {
		cache.SetComments(gameID, comments)
	}
	c.JSON(http.StatusOK, comments)
}

// UpdateComment handles PUT /comments/:id. Authorship is not enforced, any
// authenticated client may edit.
func UpdateComment(c *gin.Context) {
	var comment models.Comment
	if err := db.DB.First(&comment, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	var input models.CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateStruct(input); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	comment.Description = input.Description
	comment.Estimation = input.Estimation
	if err := db.DB.Save(&comment).Error; err != nil {
		workflowError(c, err)
		return
	}

	invalidateComments(comment.GameID)
	c.JSON(http.StatusOK, comment)
}

// DeleteComment handles DELETE /comments/:id. Authorship is not enforced.
func DeleteComment(c *gin.Context) {
	var comment models.Comment
	if err := db.DB.First(&comment, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	if err := db.DB.Delete(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	invalidateComments(comment.GameID)
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

func invalidateComments(gameID string) {
	go func(id string) {
		if cache.IsRedisAvailable() {
			cache.InvalidateComments(id)
			utils.Log.Debug("Comments cache invalidated for game " + id)
		}
	}(gameID)
}
