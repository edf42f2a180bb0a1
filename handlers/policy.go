package handlers

import (
	"net/http"

	"gamestore/models"

	"github.com/gin-gonic/gin"
)

// Permission is the explicit API permission policy: reads need any
// authenticated user, writes need an administrator.
type Permission int

const (
	PermitAuthenticated Permission = iota
	PermitAdmin
	PermitNone
)

// PolicyFor maps an HTTP method to the permission it requires on the REST
// resources.
func PolicyFor(method string) Permission {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return PermitAuthenticated
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return PermitAdmin
	default:
		return PermitNone
	}
}

// authorize enforces the permission against the authenticated user. Returns
// false after writing the Forbidden response.
func authorize(c *gin.Context, perm Permission) bool {
	user, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return false
	}
	switch perm {
	case PermitAuthenticated:
		return true
	case PermitAdmin:
		if user.(models.User).Role != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admins only"})
			return false
		}
		return true
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return false
	}
}

// RequireAdmin guards the administrative web routes.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(models.User)
		if user.Role != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admins only"})
			c.Abort()
			return
		}
		c.Next()
	}
}
