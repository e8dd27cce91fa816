package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campusfit/gym-backend/internal/models"
	"github.com/campusfit/gym-backend/internal/services"
	"github.com/campusfit/gym-backend/internal/store"
)

// borrowErrorResponse maps ledger errors onto HTTP statuses: missing rows are
// 404, broken business rules are 400, anything else is 500.
func borrowErrorResponse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrEquipmentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Equipment not found"})
	case errors.Is(err, models.ErrBorrowRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Borrow record not found"})
	case errors.Is(err, models.ErrInsufficientAvailability):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Not enough items available"})
	case errors.Is(err, models.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Quantity must be at least 1"})
	case errors.Is(err, models.ErrReturnAlreadyRequested):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Return already requested for this borrow"})
	case errors.Is(err, models.ErrReturnAlreadyApproved):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Return already approved for this borrow"})
	case errors.Is(err, models.ErrNoPendingReturns):
		c.JSON(http.StatusBadRequest, gin.H{"message": "No pending returns for this user"})
	case errors.Is(err, models.ErrAvailabilityExceedsTotal):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Return would exceed total stock"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong"})
	}
}

// BorrowEquipment loans units of an item to a user and deducts availability.
func BorrowEquipment(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			ItemID   uint `json:"itemId" binding:"required"`
			UserID   uint `json:"userId" binding:"required"`
			Quantity int  `json:"quantity"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		if input.Quantity == 0 {
			input.Quantity = 1
		}

		equipment, err := s.BorrowEquipment(c.Request.Context(), input.ItemID, input.UserID, input.Quantity)
		if err != nil {
			borrowErrorResponse(c, err)
			return
		}

		c.JSON(http.StatusOK, equipment)
	}
}

// RequestReturn flags a borrow as returned, pending admin approval.
// Availability does not change until the approval lands.
func RequestReturn(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			ItemID   uint `json:"itemId" binding:"required"`
			BorrowID uint `json:"borrowId" binding:"required"`
			UserID   uint `json:"userId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}

		equipment, err := s.RequestReturn(c.Request.Context(), input.ItemID, input.BorrowID, input.UserID)
		if err != nil {
			borrowErrorResponse(c, err)
			return
		}

		c.JSON(http.StatusOK, equipment)
	}
}

// ApproveReturn approves every pending return of one borrower on one item,
// credits the quantities back and notifies the borrower. Admin only.
func ApproveReturn(s *store.Store, db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			ItemID uint `json:"itemId" binding:"required"`
			UserID uint `json:"userId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}

		credited, equipment, err := s.ApproveReturns(c.Request.Context(), input.ItemID, input.UserID)
		if err != nil {
			borrowErrorResponse(c, err)
			return
		}

		if hub != nil {
			hub.SendReturnApproved(input.UserID, services.ReturnApproved{
				ItemID:   equipment.ID,
				ItemName: equipment.Name,
				Quantity: credited,
			})
		}
		var borrower models.User
		if err := db.First(&borrower, input.UserID).Error; err == nil && borrower.FCMToken != "" {
			go services.SendReturnApprovedNotification(context.Background(), borrower.FCMToken, equipment.Name, credited)
		}

		c.JSON(http.StatusOK, gin.H{
			"message":  "Return approved",
			"credited": credited,
			"item":     equipment,
		})
	}
}

// ListPendingReturns shows admins every return awaiting approval, grouped per
// borrower and item.
func ListPendingReturns(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		groups, err := s.PendingReturns(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch pending returns"})
			return
		}
		c.JSON(http.StatusOK, groups)
	}
}

// MyBorrows lists the calling user's borrow records across all equipment.
func MyBorrows(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var records []models.BorrowRecord
		if err := db.Where("user_id = ?", userId).
			Order("borrowed_at DESC").
			Find(&records).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch borrows"})
			return
		}

		c.JSON(http.StatusOK, records)
	}
}
