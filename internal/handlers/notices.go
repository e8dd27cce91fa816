package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campusfit/gym-backend/internal/models"
	"github.com/campusfit/gym-backend/internal/services"
)

// CreateNotice posts an announcement and fans it out over websocket and push.
// Admin only.
func CreateNotice(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Title  string `json:"title" binding:"required"`
			Body   string `json:"body" binding:"required"`
			Pinned bool   `json:"pinned"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}

		notice := models.Notice{
			Title:    input.Title,
			Body:     input.Body,
			PostedBy: c.GetUint("userId"),
			Pinned:   input.Pinned,
		}
		if err := db.Create(&notice).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create notice"})
			return
		}

		if hub != nil {
			hub.SendNoticePosted(services.NoticePosted{
				NoticeID: notice.ID,
				Title:    notice.Title,
			})
		}
		go services.SendNoticeNotification(context.Background(), notice.ID, notice.Title, notice.Body)

		c.JSON(http.StatusCreated, notice)
	}
}

// ListNotices returns announcements, pinned first then newest.
func ListNotices(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var notices []models.Notice
		if err := db.Preload("Author").
			Order("pinned DESC, created_at DESC").
			Limit(50).
			Find(&notices).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch notices"})
			return
		}

		c.JSON(http.StatusOK, notices)
	}
}

// UpdateNotice edits an announcement. Admin only.
func UpdateNotice(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid notice id"})
			return
		}

		var input struct {
			Title  *string `json:"title"`
			Body   *string `json:"body"`
			Pinned *bool   `json:"pinned"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}

		var notice models.Notice
		if err := db.First(&notice, uint(id)).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Notice not found"})
			return
		}

		if input.Title != nil {
			notice.Title = *input.Title
		}
		if input.Body != nil {
			notice.Body = *input.Body
		}
		if input.Pinned != nil {
			notice.Pinned = *input.Pinned
		}

		if err := db.Save(&notice).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update notice"})
			return
		}

		c.JSON(http.StatusOK, notice)
	}
}

// DeleteNotice removes an announcement. Admin only.
func DeleteNotice(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid notice id"})
			return
		}

		result := db.Delete(&models.Notice{}, uint(id))
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete notice"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"message": "Notice not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Notice deleted"})
	}
}
