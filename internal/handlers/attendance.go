package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campusfit/gym-backend/internal/models"
	"github.com/campusfit/gym-backend/internal/services"
)

func broadcastOccupancy(c *gin.Context, hub *services.Hub, count int64) {
	services.PublishOccupancyUpdate(c.Request.Context(), count)
	if hub != nil {
		hub.SendOccupancyUpdate(services.OccupancyUpdate{
			Occupancy: count,
			Timestamp: time.Now().Unix(),
		})
	}
}

// CheckIn opens a gym visit for the badge presented at the front desk and
// bumps the live occupancy counter.
func CheckIn(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			BadgeCode string `json:"badgeCode" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}

		var member models.User
		if err := db.Where("badge_code = ?", input.BadgeCode).First(&member).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Unknown badge"})
			return
		}

		ctx := c.Request.Context()
		if openID, err := services.GetMemberInside(ctx, member.ID); err == nil && openID != 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Member is already checked in"})
			return
		}

		// Redis can lose the marker, the database is authoritative
		var open models.AttendanceRecord
		if err := db.Where("user_id = ? AND check_out_at IS NULL", member.ID).
			First(&open).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Member is already checked in"})
			return
		}

		record := models.AttendanceRecord{
			UserID:    member.ID,
			CheckInAt: time.Now().UTC(),
		}
		if err := db.Create(&record).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to record check-in"})
			return
		}

		services.SetMemberInside(ctx, member.ID, record.ID)
		count, err := services.IncrementOccupancy(ctx)
		if err == nil {
			broadcastOccupancy(c, hub, count)
		}

		c.JSON(http.StatusOK, gin.H{
			"message":    "Checked in",
			"attendance": record,
			"occupancy":  count,
		})
	}
}

// CheckOut closes the member's open visit and drops the occupancy counter.
func CheckOut(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			BadgeCode string `json:"badgeCode" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}

		var member models.User
		if err := db.Where("badge_code = ?", input.BadgeCode).First(&member).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Unknown badge"})
			return
		}

		var record models.AttendanceRecord
		if err := db.Where("user_id = ? AND check_out_at IS NULL", member.ID).
			Order("check_in_at DESC").
			First(&record).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Member is not checked in"})
			return
		}

		now := time.Now().UTC()
		record.CheckOutAt = &now
		if err := db.Save(&record).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to record check-out"})
			return
		}

		ctx := c.Request.Context()
		services.ClearMemberInside(ctx, member.ID)
		count, err := services.DecrementOccupancy(ctx)
		if err == nil {
			broadcastOccupancy(c, hub, count)
		}

		c.JSON(http.StatusOK, gin.H{
			"message":    "Checked out",
			"attendance": record,
			"duration":   record.Duration(now).String(),
			"occupancy":  count,
		})
	}
}

// GetOccupancy reports how many members are inside right now.
func GetOccupancy() gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := services.GetOccupancy(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to read occupancy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"occupancy": count})
	}
}

// MyAttendance lists the calling user's visit history, newest first.
func MyAttendance(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var records []models.AttendanceRecord
		if err := db.Where("user_id = ?", userId).
			Order("check_in_at DESC").
			Limit(100).
			Find(&records).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch attendance"})
			return
		}

		c.JSON(http.StatusOK, records)
	}
}

// AttendanceReport gives admins the visits in a date range. Defaults to the
// last 7 days when no range is passed.
func AttendanceReport(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		to := time.Now().UTC()
		from := to.AddDate(0, 0, -7)

		if v := c.Query("from"); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": "from must be YYYY-MM-DD"})
				return
			}
			from = t
		}
		if v := c.Query("to"); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": "to must be YYYY-MM-DD"})
				return
			}
			to = t.AddDate(0, 0, 1) // inclusive end date
		}

		var records []models.AttendanceRecord
		if err := db.Preload("User").
			Where("check_in_at >= ? AND check_in_at < ?", from, to).
			Order("check_in_at DESC").
			Find(&records).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch attendance"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"from":    from,
			"to":      to,
			"visits":  len(records),
			"records": records,
		})
	}
}
