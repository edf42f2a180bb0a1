package handlers

import (
	"errors"
	"net/http"

	"gamestore/db"
	"gamestore/models"
	"gamestore/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Resource is a generic REST handler over one entity, instantiated
// explicitly per model. The method-based permission policy applies to every
// route it serves.
type Resource[T any, I any] struct {
	// Name appears in error messages ("game not found").
	Name string
	// Apply copies validated input onto the entity.
	Apply func(in I, out *T)
	// Assoc optionally maintains associations after the entity is written.
	Assoc func(gdb *gorm.DB, entity *T, in I) error
	// AfterWrite optionally runs after any successful write (cache
	// invalidation).
	AfterWrite func(entity *T)
}

// Mount registers the CRUD routes on the group.
func (r *Resource[T, I]) Mount(g gin.IRoutes) {
	g.GET("", r.List)
	g.GET("/:id", r.Get)
	g.POST("", r.Create)
	g.PUT("/:id", r.Update)
	g.DELETE("/:id", r.Delete)
}

func (r *Resource[T, I]) List(c *gin.Context) {
	if !authorize(c, PolicyFor(c.Request.Method)) {
		return
	}
	var items []T
	if err := db.DB.Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch " + r.Name + "s"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (r *Resource[T, I]) Get(c *gin.Context) {
	if !authorize(c, PolicyFor(c.Request.Method)) {
		return
	}
	var item T
	if err := db.DB.First(&item, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": r.Name + " not found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (r *Resource[T, I]) Create(c *gin.Context) {
	if !authorize(c, PolicyFor(c.Request.Method)) {
		return
	}
	in, ok := r.bind(c)
	if !ok {
		return
	}
	var item T
	r.Apply(in, &item)
	if err := db.DB.Create(&item).Error; err != nil {
		r.writeError(c, err)
		return
	}
	if r.Assoc != nil {
		if err := r.Assoc(db.DB, &item, in); err != nil {
			r.writeError(c, err)
			return
		}
	}
	r.invalidate(&item)
	c.JSON(http.StatusCreated, item)
}

func (r *Resource[T, I]) Update(c *gin.Context) {
	if !authorize(c, PolicyFor(c.Request.Method)) {
		return
	}
	var item T
	if err := db.DB.First(&item, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": r.Name + " not found"})
		return
	}
	in, ok := r.bind(c)
	if !ok {
		return
	}
	r.Apply(in, &item)
	if err := db.DB.Save(&item).Error; err != nil {
		r.writeError(c, err)
		return
	}
	if r.Assoc != nil {
		if err := r.Assoc(db.DB, &item, in); err != nil {
			r.writeError(c, err)
			return
		}
	}
	r.invalidate(&item)
	c.JSON(http.StatusOK, item)
}

func (r *Resource[T, I]) Delete(c *gin.Context) {
	if !authorize(c, PolicyFor(c.Request.Method)) {
		return
	}
	var item T
	if err := db.DB.First(&item, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": r.Name + " not found"})
		return
	}
	if err := db.DB.Delete(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete " + r.Name})
		return
	}
	r.invalidate(&item)
	c.JSON(http.StatusNoContent, nil)
}

func (r *Resource[T, I]) bind(c *gin.Context) (I, bool) {
	var in I
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return in, false
	}
	if err := utils.ValidateStruct(in); err != nil {
		utils.ValidationErrorResponse(c, err)
		return in, false
	}
	return in, true
}

func (r *Resource[T, I]) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrNegativeBalance):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save " + r.Name})
	}
}

func (r *Resource[T, I]) invalidate(entity *T) {
	if r.AfterWrite != nil {
		r.AfterWrite(entity)
	}
}
