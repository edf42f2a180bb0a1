package handlers

import (
	"errors"
	"net/http"

	"gamestore/models"
	"gamestore/monitoring"
	"gamestore/services"
	"gamestore/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Cart is the workflow service; wired in main.
var Cart *services.CartService

// workflowError maps service errors to HTTP statuses.
func workflowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrNegativeBalance):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// AddToCart handles POST /cart/:gameID
func AddToCart(c *gin.Context) {
	client, ok := currentClient(c)
	if !ok {
		return
	}
	entry, err := Cart.AddToCart(c.Request.Context(), client.ID, c.Param("gameID"))
	if err != nil {
		workflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Game added to cart", "entry": entry})
}

// RemoveFromCart handles DELETE /cart/:gameID
func RemoveFromCart(c *gin.Context) {
	client, ok := currentClient(c)
	if !ok {
		return
	}
	entry, err := Cart.RemoveFromCart(c.Request.Context(), client.ID, c.Param("gameID"))
	if err != nil {
		workflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Game removed from cart", "entry": entry})
}

// BuyGame handles POST /buy/:gameID
func BuyGame(c *gin.Context) {
	client, ok := currentClient(c)
	if !ok {
		return
	}
	gameID := c.Param("gameID")

	entry, balance, err := Cart.Buy(c.Request.Context(), client.ID, gameID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInsufficientFunds):
			monitoring.PurchasesTotal.WithLabelValues("insufficient_funds").Inc()
		case errors.Is(err, services.ErrNotFound):
			monitoring.PurchasesTotal.WithLabelValues("not_found").Inc()
		default:
			monitoring.PurchasesTotal.WithLabelValues("error").Inc()
		}
		workflowError(c, err)
		return
	}

	monitoring.PurchasesTotal.WithLabelValues("settled").Inc()
	utils.Log.WithFields(logrus.Fields{
		"client_id": client.ID,
		"game_id":   gameID,
		"balance":   balance.String(),
	}).Info("Purchase settled")

	c.JSON(http.StatusOK, gin.H{
		"message": "Game purchased",
		"entry":   entry,
		"balance": balance,
	})
}

// ViewCart handles GET /cart
func ViewCart(c *gin.Context) {
	client, ok := currentClient(c)
	if !ok {
		return
	}
	entries, err := Cart.ViewCart(c.Request.Context(), client.ID)
	if err != nil {
		workflowError(c, err)
		return
	}
	count, err := Cart.CartCount(c.Request.Context(), client.ID)
	if err != nil {
		workflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries, "count": count})
}

// GetLibrary handles GET /library
func GetLibrary(c *gin.Context) {
	client, ok := currentClient(c)
	if !ok {
		return
	}
	entries, err := Cart.Library(c.Request.Context(), client.ID)
	if err != nil {
		workflowError(c, err)
		return
	}
	games := make([]models.Game, 0, len(entries))
	for _, e := range entries {
		games = append(games, e.Game)
	}
	c.JSON(http.StatusOK, games)
}

// RemoveOwnership handles DELETE /ownership/:clientID/:gameID (admin only).
func RemoveOwnership(c *gin.Context) {
	err := Cart.Remove(c.Request.Context(), c.Param("clientID"), c.Param("gameID"))
	if err != nil {
		workflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ledger entry removed"})
}
