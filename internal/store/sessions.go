package store

import (
	"context"
	"time"

	"github.com/campusfit/gym-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookSession reserves a member's seat in a trainer slot. The slot row is
// locked while the headcount is taken so the capacity can never be oversold.
func (s *Store) BookSession(ctx context.Context, slotID, memberID uint) (*models.SessionBooking, error) {
	var session models.SessionBooking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var slot models.TrainerSlot
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&slot, slotID).Error; err != nil {
			return notFound(err, ErrSlotNotFound)
		}

		var existing int64
		if err := tx.Model(&models.SessionBooking{}).
			Where("slot_id = ? AND member_id = ? AND status = ?", slotID, memberID, models.SessionStatusBooked).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return models.ErrAlreadyBookedSession
		}

		var booked int64
		if err := tx.Model(&models.SessionBooking{}).
			Where("slot_id = ? AND status = ?", slotID, models.SessionStatusBooked).
			Count(&booked).Error; err != nil {
			return err
		}
		if booked >= int64(slot.Capacity) {
			return models.ErrSlotFull
		}

		session = models.SessionBooking{
			SlotID:   slotID,
			MemberID: memberID,
			Status:   models.SessionStatusBooked,
			BookedAt: time.Now().UTC(),
		}
		return tx.Create(&session).Error
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// CancelSession frees the member's seat. Only active bookings can be
// cancelled.
func (s *Store) CancelSession(ctx context.Context, sessionID, memberID uint) (*models.SessionBooking, error) {
	var session models.SessionBooking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND member_id = ?", sessionID, memberID).
			First(&session).Error; err != nil {
			return notFound(err, ErrSessionNotFound)
		}
		if err := session.Cancel(); err != nil {
			return err
		}
		return tx.Save(&session).Error
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}
