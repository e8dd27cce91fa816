package database

import (
	"gorm.io/gorm"

	"github.com/campusfit/gym-backend/internal/models"
)

func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.OTP{},
		&models.EquipmentType{},
		&models.BorrowRecord{},
		&models.Booking{},
		&models.AttendanceRecord{},
		&models.TrainerSlot{},
		&models.SessionBooking{},
		&models.Notice{},
	)
	if err != nil {
		return err
	}

	// Database-level backstop for the availability counters. Application code
	// already refuses to cross these bounds; a bug cannot silently corrupt the
	// ledger past this constraint.
	db.Exec(`ALTER TABLE equipment_types DROP CONSTRAINT IF EXISTS equipment_types_available_check`)
	if err := db.Exec(`ALTER TABLE equipment_types ADD CONSTRAINT equipment_types_available_check CHECK (available >= 0 AND available <= total)`).Error; err != nil {
		return err
	}

	db.Exec(`ALTER TABLE users DROP CONSTRAINT IF EXISTS users_user_type_check`)
	if err := db.Exec(`ALTER TABLE users ADD CONSTRAINT users_user_type_check CHECK (user_type IN ('member', 'trainer', 'admin'))`).Error; err != nil {
		return err
	}

	db.Exec(`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_status_check`)
	if err := db.Exec(`ALTER TABLE bookings ADD CONSTRAINT bookings_status_check CHECK (status IN ('pending', 'approved', 'rejected'))`).Error; err != nil {
		return err
	}

	return nil
}
