package store

import (
	"errors"

	"gorm.io/gorm"
)

// Lookup errors. Business-rule violations carry the sentinel errors defined in
// the models package; handlers translate both families into HTTP statuses.
var (
	ErrEquipmentNotFound = errors.New("equipment not found")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrSlotNotFound      = errors.New("session slot not found")
	ErrSessionNotFound   = errors.New("session booking not found")
)

// Store runs the lending, booking and session workflows as single transactions
// against the shared database. Concurrent writers to the same equipment row are
// serialized with SELECT ... FOR UPDATE, so counter updates never interleave.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
