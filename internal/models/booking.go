package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrBookingNotPending    = errors.New("booking is no longer pending")
	ErrInvalidBookingStatus = errors.New("invalid booking status")
)

type BookingStatus string

const (
	BookingStatusPending  BookingStatus = "pending"
	BookingStatusApproved BookingStatus = "approved"
	BookingStatusRejected BookingStatus = "rejected"
)

// Booking is a reservation request for equipment, decided by an admin.
// Approved and rejected are terminal. Availability is checked when the booking
// is created but only deducted when it is approved; the approval-time deduction
// re-checks the counter so a stale precheck can never drive it negative.
type Booking struct {
	gorm.Model
	UserID          uint           `json:"userId" gorm:"not null;index"`
	User            *User          `json:"user,omitempty" gorm:"foreignKey:UserID"`
	EquipmentTypeID uint           `json:"equipmentId" gorm:"not null;index"`
	Equipment       *EquipmentType `json:"equipment,omitempty" gorm:"foreignKey:EquipmentTypeID"`
	Quantity        int            `json:"quantity" gorm:"not null;default:1"`
	Status          BookingStatus  `json:"status" gorm:"not null;default:'pending'"`
	RequestedAt     time.Time      `json:"requestedAt" gorm:"not null"`
	ApprovedAt      *time.Time     `json:"approvedAt,omitempty"`
	RejectedAt      *time.Time     `json:"rejectedAt,omitempty"`
}

// TableName specifies the table name
func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) IsPending() bool {
	return b.Status == BookingStatusPending
}

// Approve transitions a pending booking to approved. The caller is responsible
// for deducting the quantity from the equipment ledger in the same transaction.
func (b *Booking) Approve(now time.Time) error {
	if !b.IsPending() {
		return ErrBookingNotPending
	}
	b.Status = BookingStatusApproved
	approvedAt := now
	b.ApprovedAt = &approvedAt
	return nil
}

// Reject transitions a pending booking to rejected. No inventory mutation.
func (b *Booking) Reject(now time.Time) error {
	if !b.IsPending() {
		return ErrBookingNotPending
	}
	b.Status = BookingStatusRejected
	rejectedAt := now
	b.RejectedAt = &rejectedAt
	return nil
}
