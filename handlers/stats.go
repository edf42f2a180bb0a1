package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetDashboardStats handles GET /stats (admin only).
func GetDashboardStats(c *gin.Context) {
	stats, err := Cart.CalculateDashboardStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate statistics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"statistics": stats})
}
