package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrSlotFull             = errors.New("session slot is fully booked")
	ErrSessionNotActive     = errors.New("session booking is not active")
	ErrAlreadyBookedSession = errors.New("session already booked by this member")
)

// TrainerSlot is a recurring weekly training session offered by a trainer,
// with a fixed member capacity.
type TrainerSlot struct {
	gorm.Model
	TrainerID uint   `json:"trainerId" gorm:"not null;index"`
	Trainer   *User  `json:"trainer,omitempty" gorm:"foreignKey:TrainerID"`
	Title     string `json:"title" gorm:"not null"`
	Weekday   int    `json:"weekday" gorm:"not null;check:weekday >= 0 AND weekday <= 6"`
	StartTime string `json:"startTime" gorm:"not null"` // "HH:MM", 24h
	EndTime   string `json:"endTime" gorm:"not null"`
	Capacity  int    `json:"capacity" gorm:"not null;check:capacity >= 1"`
}

// TableName specifies the table name
func (TrainerSlot) TableName() string {
	return "trainer_slots"
}

type SessionStatus string

const (
	SessionStatusBooked    SessionStatus = "booked"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// SessionBooking is a member's seat in a trainer slot.
type SessionBooking struct {
	gorm.Model
	SlotID   uint          `json:"slotId" gorm:"not null;index"`
	Slot     *TrainerSlot  `json:"slot,omitempty" gorm:"foreignKey:SlotID"`
	MemberID uint          `json:"memberId" gorm:"not null;index"`
	Member   *User         `json:"member,omitempty" gorm:"foreignKey:MemberID"`
	Status   SessionStatus `json:"status" gorm:"not null;default:'booked'"`
	BookedAt time.Time     `json:"bookedAt" gorm:"not null"`
}

// TableName specifies the table name
func (SessionBooking) TableName() string {
	return "session_bookings"
}

func (s *SessionBooking) Cancel() error {
	if s.Status != SessionStatusBooked {
		return ErrSessionNotActive
	}
	s.Status = SessionStatusCancelled
	return nil
}
