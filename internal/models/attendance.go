package models

import (
	"time"

	"gorm.io/gorm"
)

// AttendanceRecord is one gym visit: check-in at the front desk, check-out on
// the way out. CheckOutAt stays nil while the member is inside.
type AttendanceRecord struct {
	gorm.Model
	UserID     uint       `json:"userId" gorm:"not null;index"`
	User       *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	CheckInAt  time.Time  `json:"checkInAt" gorm:"not null;index"`
	CheckOutAt *time.Time `json:"checkOutAt,omitempty"`
}

// TableName specifies the table name
func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

func (a *AttendanceRecord) IsOpen() bool {
	return a.CheckOutAt == nil
}

// Duration reports how long the visit lasted, or how long it has been running
// for an open visit.
func (a *AttendanceRecord) Duration(now time.Time) time.Duration {
	if a.CheckOutAt != nil {
		return a.CheckOutAt.Sub(a.CheckInAt)
	}
	return now.Sub(a.CheckInAt)
}
