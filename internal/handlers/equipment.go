package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campusfit/gym-backend/internal/models"
	"github.com/campusfit/gym-backend/internal/services"
	"github.com/campusfit/gym-backend/internal/store"
)

// CreateEquipment registers a new equipment type. Admin only.
// Accepts multipart form data so an item photo can be attached.
func CreateEquipment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name     string `form:"name" binding:"required"`
			Category string `form:"category" binding:"required"`
			Total    int    `form:"total" binding:"required,min=1"`
		}

		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}

		equipment := models.EquipmentType{
			Name:      input.Name,
			Category:  input.Category,
			Total:     input.Total,
			Available: input.Total, // new stock starts fully available
		}

		// Photo is optional
		if file, err := c.FormFile("image"); err == nil {
			imageURL, err := services.UploadImage(file, "equipment")
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to upload image"})
				return
			}
			equipment.ImageURL = imageURL
		}

		if err := db.Create(&equipment).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create equipment"})
			return
		}

		c.JSON(http.StatusCreated, equipment)
	}
}

// ListEquipment returns all equipment types with live availability counts.
func ListEquipment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var items []models.EquipmentType
		query := db.Order("name ASC")
		if category := c.Query("category"); category != "" {
			query = query.Where("category = ?", category)
		}
		if err := query.Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch equipment"})
			return
		}

		for i := range items {
			items[i].ImageURL = services.GetImageURL(items[i].ImageURL)
		}

		c.JSON(http.StatusOK, items)
	}
}

// GetEquipment returns one equipment type with its active borrow records.
func GetEquipment(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid equipment id"})
			return
		}

		equipment, err := s.EquipmentSnapshot(c.Request.Context(), uint(id))
		if err != nil {
			if errors.Is(err, store.ErrEquipmentNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "Equipment not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch equipment"})
			return
		}

		equipment.ImageURL = services.GetImageURL(equipment.ImageURL)
		c.JSON(http.StatusOK, equipment)
	}
}

// UpdateEquipment changes name, category or total stock. Admin only.
// Raising or lowering the total adjusts the available count by the
// same delta so outstanding borrows stay accounted for.
func UpdateEquipment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid equipment id"})
			return
		}

		var input struct {
			Name     *string `form:"name"`
			Category *string `form:"category"`
			Total    *int    `form:"total"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}

		var equipment models.EquipmentType
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&equipment, uint(id)).Error; err != nil {
				return err
			}

			if input.Name != nil {
				equipment.Name = *input.Name
			}
			if input.Category != nil {
				equipment.Category = *input.Category
			}
			if input.Total != nil {
				if err := equipment.Restock(*input.Total); err != nil {
					return err
				}
			}

			if file, err := c.FormFile("image"); err == nil {
				imageURL, err := services.UploadImage(file, "equipment")
				if err != nil {
					return err
				}
				if equipment.ImageURL != "" {
					services.DeleteImage(equipment.ImageURL)
				}
				equipment.ImageURL = imageURL
			}

			return tx.Save(&equipment).Error
		})

		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "Equipment not found"})
				return
			}
			if errors.Is(err, models.ErrTotalBelowOutstanding) {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Total cannot drop below the number of items currently out"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update equipment"})
			return
		}

		c.JSON(http.StatusOK, equipment)
	}
}

// DeleteEquipment removes an equipment type. Blocked while any unit is out.
func DeleteEquipment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid equipment id"})
			return
		}

		var equipment models.EquipmentType
		if err := db.First(&equipment, uint(id)).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Equipment not found"})
			return
		}

		if equipment.Available != equipment.Total {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Cannot delete equipment with items still out"})
			return
		}

		if err := db.Delete(&equipment).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete equipment"})
			return
		}

		if equipment.ImageURL != "" {
			services.DeleteImage(equipment.ImageURL)
		}

		c.JSON(http.StatusOK, gin.H{"message": "Equipment deleted"})
	}
}
