package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campusfit/gym-backend/internal/models"
	"github.com/campusfit/gym-backend/internal/services"
	"github.com/campusfit/gym-backend/internal/store"
	"github.com/campusfit/gym-backend/pkg/utils"
)

// CreateBooking files a reservation request for equipment. It stays pending
// until an admin decides it; no stock is held in the meantime.
func CreateBooking(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			UserID      uint `json:"userId"`
			EquipmentID uint `json:"equipmentId" binding:"required"`
			Quantity    int  `json:"quantity"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		if input.UserID == 0 {
			input.UserID = c.GetUint("userId")
		}
		if input.Quantity == 0 {
			input.Quantity = 1
		}

		booking, err := s.CreateBooking(c.Request.Context(), input.UserID, input.EquipmentID, input.Quantity)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrEquipmentNotFound):
				c.JSON(http.StatusNotFound, gin.H{"message": "Equipment not found"})
			case errors.Is(err, models.ErrInsufficientAvailability):
				c.JSON(http.StatusBadRequest, gin.H{"message": "Not enough items available"})
			case errors.Is(err, models.ErrInvalidQuantity):
				c.JSON(http.StatusBadRequest, gin.H{"message": "Quantity must be at least 1"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create booking"})
			}
			return
		}

		c.JSON(http.StatusCreated, booking)
	}
}

// UpdateBookingStatus lets an admin approve or reject a pending booking.
// Approval deducts the quantity and opens a borrow record; rejection leaves
// inventory untouched. The member is notified over websocket, push and email.
func UpdateBookingStatus(s *store.Store, db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			BookingID uint   `json:"bookingId" binding:"required"`
			Status    string `json:"status" binding:"required,oneof=approved rejected"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}

		booking, err := s.UpdateBookingStatus(c.Request.Context(), input.BookingID, models.BookingStatus(input.Status))
		if err != nil {
			switch {
			case errors.Is(err, store.ErrBookingNotFound):
				c.JSON(http.StatusNotFound, gin.H{"message": "Booking not found"})
			case errors.Is(err, store.ErrEquipmentNotFound):
				c.JSON(http.StatusNotFound, gin.H{"message": "Equipment not found"})
			case errors.Is(err, models.ErrBookingNotPending):
				c.JSON(http.StatusBadRequest, gin.H{"message": "Booking has already been decided"})
			case errors.Is(err, models.ErrInsufficientAvailability):
				c.JSON(http.StatusBadRequest, gin.H{"message": "Not enough items available to approve"})
			case errors.Is(err, models.ErrInvalidBookingStatus):
				c.JSON(http.StatusBadRequest, gin.H{"message": "Status must be approved or rejected"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update booking"})
			}
			return
		}

		var equipment *models.EquipmentType
		var loaded models.EquipmentType
		if err := db.First(&loaded, booking.EquipmentTypeID).Error; err == nil {
			equipment = &loaded
		} else {
			log.Printf("Skipping booking %d fan-out, equipment load failed: %v", booking.ID, err)
		}

		var member *models.User
		var user models.User
		if err := db.First(&user, booking.UserID).Error; err == nil {
			member = &user
		}

		notifyBookingDecision(hub, booking, equipment, member)

		c.JSON(http.StatusOK, booking)
	}
}

// notifyBookingDecision fans a decided booking out to the member over
// websocket, push, email and SMS. The fan-out is skipped entirely when the
// equipment row could not be loaded rather than announcing a blank item name.
func notifyBookingDecision(hub *services.Hub, booking *models.Booking, equipment *models.EquipmentType, member *models.User) {
	if equipment == nil {
		return
	}

	if hub != nil {
		hub.SendBookingDecision(booking.UserID, services.BookingDecision{
			BookingID: booking.ID,
			ItemID:    booking.EquipmentTypeID,
			ItemName:  equipment.Name,
			Status:    string(booking.Status),
		})
	}

	if member == nil {
		return
	}
	if member.FCMToken != "" {
		go services.SendBookingDecisionNotification(context.Background(),
			member.FCMToken, booking.ID, equipment.Name, string(booking.Status))
	}

	approved := booking.Status == models.BookingStatusApproved
	quantity := booking.Quantity
	go func(member models.User, itemName string) {
		if approved {
			utils.SendBookingApprovedEmail(member.Email, itemName, quantity)
			if member.PhoneNumber != "" {
				utils.SendBookingApprovedSMS(member.PhoneNumber, itemName, quantity)
			}
		} else {
			utils.SendBookingRejectedEmail(member.Email, itemName)
			if member.PhoneNumber != "" {
				utils.SendBookingRejectedSMS(member.PhoneNumber, itemName)
			}
		}
	}(*member, equipment.Name)
}

// GetMyBookings lists the calling user's bookings, newest first.
func GetMyBookings(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		bookings, err := s.BookingsForUser(c.Request.Context(), userId)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch bookings"})
			return
		}

		c.JSON(http.StatusOK, bookings)
	}
}

// GetAllBookings lists every booking for the admin view. Supports ?status=.
func GetAllBookings(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookings, err := s.AllBookings(c.Request.Context(), c.Query("status"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch bookings"})
			return
		}

		c.JSON(http.StatusOK, bookings)
	}
}
