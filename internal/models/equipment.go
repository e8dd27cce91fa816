package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Business-rule errors surfaced by the inventory ledger. The store layer maps
// these to HTTP 400; lookups that miss entirely are 404s raised by the store.
var (
	ErrInvalidQuantity          = errors.New("quantity must be at least 1")
	ErrInsufficientAvailability = errors.New("insufficient availability")
	ErrAvailabilityExceedsTotal = errors.New("available cannot exceed total")
	ErrBorrowRecordNotFound     = errors.New("borrow record not found")
	ErrReturnAlreadyRequested   = errors.New("return already requested")
	ErrReturnAlreadyApproved    = errors.New("return already approved")
	ErrNoPendingReturns         = errors.New("no pending returns for this user")
	ErrTotalBelowOutstanding    = errors.New("total cannot drop below outstanding loans")
)

// BorrowState describes where a borrow record sits in its lifecycle.
type BorrowState string

const (
	BorrowStateActive          BorrowState = "active"
	BorrowStateReturnRequested BorrowState = "return_requested"
	BorrowStateReturnApproved  BorrowState = "return_approved"
)

// EquipmentType tracks one category of loanable equipment as a single counter
// pair: Total units owned and Available units currently loanable. It is the
// ground truth for every quantity mutation; both direct borrows and booking
// approvals deduct through it.
type EquipmentType struct {
	gorm.Model
	Name          string         `json:"name" gorm:"not null;uniqueIndex"`
	Category      string         `json:"category" gorm:"not null"`
	Total         int            `json:"total" gorm:"not null"`
	Available     int            `json:"available" gorm:"not null"`
	ImageURL      string         `json:"imageUrl"`
	BorrowRecords []BorrowRecord `json:"borrowedBy" gorm:"foreignKey:EquipmentTypeID"`
}

// TableName specifies the table name
func (EquipmentType) TableName() string {
	return "equipment_types"
}

// BorrowRecord is one loan event of one or more units to one borrower.
// Lifecycle: active (ReturnedAt nil) -> return_requested (ReturnedAt set) ->
// return_approved (IsApproved true, terminal). Transitions never skip a state
// and are never reversed. A record that is never returned simply stays active.
type BorrowRecord struct {
	gorm.Model
	EquipmentTypeID uint       `json:"itemId" gorm:"not null;index"`
	UserID          uint       `json:"userId" gorm:"not null;index"`
	User            *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Quantity        int        `json:"quantity" gorm:"not null;default:1"`
	BorrowedAt      time.Time  `json:"borrowedAt" gorm:"not null;index"`
	ReturnedAt      *time.Time `json:"returnedAt,omitempty"`
	IsApproved      bool       `json:"isApproved" gorm:"not null;default:false"`
}

// TableName specifies the table name
func (BorrowRecord) TableName() string {
	return "borrow_records"
}

func (r *BorrowRecord) State() BorrowState {
	switch {
	case r.IsApproved:
		return BorrowStateReturnApproved
	case r.ReturnedAt != nil:
		return BorrowStateReturnRequested
	default:
		return BorrowStateActive
	}
}

// PendingApproval reports whether the borrower has requested a return that an
// admin has not yet approved. Quantity for such records is still held against
// Available.
func (r *BorrowRecord) PendingApproval() bool {
	return r.ReturnedAt != nil && !r.IsApproved
}

// MarkReturnRequested moves an active record to return_requested.
func (r *BorrowRecord) MarkReturnRequested(now time.Time) error {
	switch r.State() {
	case BorrowStateReturnApproved:
		return ErrReturnAlreadyApproved
	case BorrowStateReturnRequested:
		return ErrReturnAlreadyRequested
	}
	returnedAt := now
	r.ReturnedAt = &returnedAt
	return nil
}

// CanReserve reports whether quantity units could be taken right now, without
// taking them. The booking precheck uses this to fail hopeless requests early;
// the approval path still re-checks through Reserve under the row lock.
func (e *EquipmentType) CanReserve(quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if e.Available < quantity {
		return ErrInsufficientAvailability
	}
	return nil
}

// Reserve takes quantity units out of the available pool. Every deduction path
// (direct borrow, booking approval) goes through here so the two flows cannot
// double-spend the same units.
func (e *EquipmentType) Reserve(quantity int) error {
	if err := e.CanReserve(quantity); err != nil {
		return err
	}
	e.Available -= quantity
	return nil
}

// Release credits quantity units back to the available pool.
func (e *EquipmentType) Release(quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if e.Available+quantity > e.Total {
		return ErrAvailabilityExceedsTotal
	}
	e.Available += quantity
	return nil
}

// Restock changes the owned total and shifts Available by the same delta.
// The number of units currently out (Total - Available) is preserved, so the
// new total cannot drop below it.
func (e *EquipmentType) Restock(total int) error {
	if total < 1 {
		return ErrInvalidQuantity
	}
	outstanding := e.Total - e.Available
	if total < outstanding {
		return ErrTotalBelowOutstanding
	}
	e.Total = total
	e.Available = total - outstanding
	return nil
}

// Borrow deducts quantity units and appends a new active borrow record.
// The caller persists both the counter and the record in one transaction.
func (e *EquipmentType) Borrow(userID uint, quantity int, now time.Time) (*BorrowRecord, error) {
	if err := e.Reserve(quantity); err != nil {
		return nil, err
	}
	record := BorrowRecord{
		EquipmentTypeID: e.ID,
		UserID:          userID,
		Quantity:        quantity,
		BorrowedAt:      now,
	}
	e.BorrowRecords = append(e.BorrowRecords, record)
	return &e.BorrowRecords[len(e.BorrowRecords)-1], nil
}

// RequestReturn marks the borrower's record as returned. Available is NOT
// credited here: the units stay held until an admin approves, so a borrower
// cannot inflate availability by self-declaring a return.
func (e *EquipmentType) RequestReturn(borrowID, userID uint, now time.Time) (*BorrowRecord, error) {
	for i := range e.BorrowRecords {
		r := &e.BorrowRecords[i]
		if r.ID != borrowID || r.UserID != userID {
			continue
		}
		if err := r.MarkReturnRequested(now); err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, ErrBorrowRecordNotFound
}

// ApproveReturns is the only path that credits Available after a return. It
// approves every pending record of the given borrower in one batch and credits
// the sum of their quantities exactly once. Returns the approved records.
func (e *EquipmentType) ApproveReturns(userID uint) ([]*BorrowRecord, error) {
	var pending []*BorrowRecord
	credit := 0
	for i := range e.BorrowRecords {
		r := &e.BorrowRecords[i]
		if r.UserID == userID && r.PendingApproval() {
			pending = append(pending, r)
			credit += r.Quantity
		}
	}
	if len(pending) == 0 {
		return nil, ErrNoPendingReturns
	}
	if err := e.Release(credit); err != nil {
		return nil, err
	}
	for _, r := range pending {
		r.IsApproved = true
	}
	return pending, nil
}

// PendingFor returns the borrower's records awaiting admin approval.
func (e *EquipmentType) PendingFor(userID uint) []BorrowRecord {
	var out []BorrowRecord
	for _, r := range e.BorrowRecords {
		if r.UserID == userID && r.PendingApproval() {
			out = append(out, r)
		}
	}
	return out
}
