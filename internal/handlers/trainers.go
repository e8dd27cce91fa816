package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campusfit/gym-backend/internal/models"
	"github.com/campusfit/gym-backend/internal/store"
)

func validSlotTimes(start, end string) bool {
	s, err := time.Parse("15:04", start)
	if err != nil {
		return false
	}
	e, err := time.Parse("15:04", end)
	if err != nil {
		return false
	}
	return e.After(s)
}

// CreateTrainerSlot publishes a recurring weekly session. Trainers create
// their own slots; admins can create slots for any trainer via trainerId.
func CreateTrainerSlot(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			TrainerID uint   `json:"trainerId"`
			Title     string `json:"title" binding:"required"`
			Weekday   *int   `json:"weekday" binding:"required,min=0,max=6"`
			StartTime string `json:"startTime" binding:"required"`
			EndTime   string `json:"endTime" binding:"required"`
			Capacity  int    `json:"capacity" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		if !validSlotTimes(input.StartTime, input.EndTime) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Times must be HH:MM with endTime after startTime"})
			return
		}

		trainerID := c.GetUint("userId")
		if c.GetString("userType") == string(models.UserTypeAdmin) && input.TrainerID != 0 {
			trainerID = input.TrainerID
		}

		var trainer models.User
		if err := db.First(&trainer, trainerID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Trainer not found"})
			return
		}
		if trainer.UserType != models.UserTypeTrainer {
			c.JSON(http.StatusBadRequest, gin.H{"message": "User is not a trainer"})
			return
		}

		slot := models.TrainerSlot{
			TrainerID: trainerID,
			Title:     input.Title,
			Weekday:   *input.Weekday,
			StartTime: input.StartTime,
			EndTime:   input.EndTime,
			Capacity:  input.Capacity,
		}
		if err := db.Create(&slot).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create slot"})
			return
		}

		c.JSON(http.StatusCreated, slot)
	}
}

// ListTrainerSlots shows the weekly schedule, optionally for one trainer or
// one weekday.
func ListTrainerSlots(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Preload("Trainer").Order("weekday ASC, start_time ASC")
		if v := c.Query("trainerId"); v != "" {
			query = query.Where("trainer_id = ?", v)
		}
		if v := c.Query("weekday"); v != "" {
			query = query.Where("weekday = ?", v)
		}

		var slots []models.TrainerSlot
		if err := query.Find(&slots).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch slots"})
			return
		}

		c.JSON(http.StatusOK, slots)
	}
}

// DeleteTrainerSlot removes a slot and cancels its active bookings. The owner
// trainer or an admin may delete.
func DeleteTrainerSlot(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid slot id"})
			return
		}

		var slot models.TrainerSlot
		if err := db.First(&slot, uint(id)).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Slot not found"})
			return
		}

		isAdmin := c.GetString("userType") == string(models.UserTypeAdmin)
		if !isAdmin && slot.TrainerID != c.GetUint("userId") {
			c.JSON(http.StatusForbidden, gin.H{"message": "Not your slot"})
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.SessionBooking{}).
				Where("slot_id = ? AND status = ?", slot.ID, models.SessionStatusBooked).
				Update("status", models.SessionStatusCancelled).Error; err != nil {
				return err
			}
			return tx.Delete(&slot).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete slot"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Slot deleted"})
	}
}

// BookSession reserves the calling member's seat in a slot.
func BookSession(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			SlotID uint `json:"slotId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}

		session, err := s.BookSession(c.Request.Context(), input.SlotID, c.GetUint("userId"))
		if err != nil {
			switch {
			case errors.Is(err, store.ErrSlotNotFound):
				c.JSON(http.StatusNotFound, gin.H{"message": "Slot not found"})
			case errors.Is(err, models.ErrSlotFull):
				c.JSON(http.StatusBadRequest, gin.H{"message": "Session is fully booked"})
			case errors.Is(err, models.ErrAlreadyBookedSession):
				c.JSON(http.StatusBadRequest, gin.H{"message": "You already booked this session"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to book session"})
			}
			return
		}

		c.JSON(http.StatusCreated, session)
	}
}

// CancelSession frees the calling member's seat.
func CancelSession(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid session id"})
			return
		}

		session, err := s.CancelSession(c.Request.Context(), uint(id), c.GetUint("userId"))
		if err != nil {
			switch {
			case errors.Is(err, store.ErrSessionNotFound):
				c.JSON(http.StatusNotFound, gin.H{"message": "Session booking not found"})
			case errors.Is(err, models.ErrSessionNotActive):
				c.JSON(http.StatusBadRequest, gin.H{"message": "Session booking is not active"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to cancel session"})
			}
			return
		}

		c.JSON(http.StatusOK, session)
	}
}

// MySessions lists the calling member's session bookings.
func MySessions(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sessions []models.SessionBooking
		if err := db.Preload("Slot").Preload("Slot.Trainer").
			Where("member_id = ?", c.GetUint("userId")).
			Order("booked_at DESC").
			Find(&sessions).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch sessions"})
			return
		}

		c.JSON(http.StatusOK, sessions)
	}
}

// SlotRoster shows a trainer who is booked into one of their slots.
func SlotRoster(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid slot id"})
			return
		}

		var slot models.TrainerSlot
		if err := db.First(&slot, uint(id)).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Slot not found"})
			return
		}

		isAdmin := c.GetString("userType") == string(models.UserTypeAdmin)
		if !isAdmin && slot.TrainerID != c.GetUint("userId") {
			c.JSON(http.StatusForbidden, gin.H{"message": "Not your slot"})
			return
		}

		var sessions []models.SessionBooking
		if err := db.Preload("Member").
			Where("slot_id = ? AND status = ?", slot.ID, models.SessionStatusBooked).
			Order("booked_at ASC").
			Find(&sessions).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch roster"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"slot":     slot,
			"capacity": slot.Capacity,
			"booked":   len(sessions),
			"roster":   sessions,
		})
	}
}
