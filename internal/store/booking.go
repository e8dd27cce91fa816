package store

import (
	"context"
	"time"

	"github.com/campusfit/gym-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateBooking records a pending reservation request. Availability is checked
// here so hopeless requests fail fast, but nothing is deducted until an admin
// approves — the approval path re-checks the counter under the row lock.
func (s *Store) CreateBooking(ctx context.Context, userID, equipmentID uint, quantity int) (*models.Booking, error) {
	var equipment models.EquipmentType
	if err := s.db.WithContext(ctx).First(&equipment, equipmentID).Error; err != nil {
		return nil, notFound(err, ErrEquipmentNotFound)
	}
	if err := equipment.CanReserve(quantity); err != nil {
		return nil, err
	}

	booking := models.Booking{
		UserID:          userID,
		EquipmentTypeID: equipmentID,
		Quantity:        quantity,
		Status:          models.BookingStatusPending,
		RequestedAt:     time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateBookingStatus decides a pending booking. Approval deducts the quantity
// from the equipment ledger and appends a borrow record, so from then on the
// loan is tracked by the same state machine as a direct borrow. Rejection
// touches no inventory. Both outcomes are terminal.
func (s *Store) UpdateBookingStatus(ctx context.Context, bookingID uint, status models.BookingStatus) (*models.Booking, error) {
	if status != models.BookingStatusApproved && status != models.BookingStatusRejected {
		return nil, models.ErrInvalidBookingStatus
	}

	var booking models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&booking, bookingID).Error; err != nil {
			return notFound(err, ErrBookingNotFound)
		}

		now := time.Now().UTC()
		if status == models.BookingStatusRejected {
			if err := booking.Reject(now); err != nil {
				return err
			}
			return tx.Save(&booking).Error
		}

		var equipment models.EquipmentType
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&equipment, booking.EquipmentTypeID).Error; err != nil {
			return notFound(err, ErrEquipmentNotFound)
		}
		if err := booking.Approve(now); err != nil {
			return err
		}
		record, err := equipment.Borrow(booking.UserID, booking.Quantity, now)
		if err != nil {
			return err
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		if err := tx.Model(&equipment).Update("available", equipment.Available).Error; err != nil {
			return err
		}
		return tx.Save(&booking).Error
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// BookingsForUser lists a member's bookings, newest first.
func (s *Store) BookingsForUser(ctx context.Context, userID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).Preload("Equipment").
		Where("user_id = ?", userID).
		Order("requested_at DESC").
		Find(&bookings).Error
	return bookings, err
}

// AllBookings lists every booking for the admin view, optionally filtered by
// status.
func (s *Store) AllBookings(ctx context.Context, status string) ([]models.Booking, error) {
	q := s.db.WithContext(ctx).Preload("Equipment").Preload("User").
		Order("requested_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var bookings []models.Booking
	err := q.Find(&bookings).Error
	return bookings, err
}
