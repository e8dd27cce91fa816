package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEquipment(total int) *EquipmentType {
	e := &EquipmentType{
		Name:      "Dumbbell 10kg",
		Category:  "weights",
		Total:     total,
		Available: total,
	}
	e.ID = 1
	return e
}

func TestReserveAndRelease(t *testing.T) {
	e := newEquipment(5)

	require.NoError(t, e.Reserve(3))
	assert.Equal(t, 2, e.Available)

	assert.ErrorIs(t, e.Reserve(3), ErrInsufficientAvailability)
	assert.Equal(t, 2, e.Available, "failed reserve must not change the counter")

	assert.ErrorIs(t, e.Reserve(0), ErrInvalidQuantity)
	assert.ErrorIs(t, e.Reserve(-1), ErrInvalidQuantity)

	require.NoError(t, e.Release(3))
	assert.Equal(t, 5, e.Available)

	assert.ErrorIs(t, e.Release(1), ErrAvailabilityExceedsTotal)
	assert.Equal(t, 5, e.Available)
}

func TestCanReserveChecksWithoutTaking(t *testing.T) {
	e := newEquipment(5)
	require.NoError(t, e.Reserve(4))
	assert.Equal(t, 1, e.Available)

	// A reservation request for 2 units against 1 available is refused and
	// nothing changes
	assert.ErrorIs(t, e.CanReserve(2), ErrInsufficientAvailability)
	assert.Equal(t, 1, e.Available)
	assert.Equal(t, 5, e.Total)

	assert.ErrorIs(t, e.CanReserve(0), ErrInvalidQuantity)
	assert.ErrorIs(t, e.CanReserve(-3), ErrInvalidQuantity)

	// A passing check holds nothing either
	require.NoError(t, e.CanReserve(1))
	assert.Equal(t, 1, e.Available)
}

func TestBorrowCreatesActiveRecord(t *testing.T) {
	e := newEquipment(5)
	now := time.Now().UTC()

	record, err := e.Borrow(42, 2, now)
	require.NoError(t, err)
	assert.Equal(t, 3, e.Available)
	assert.Equal(t, uint(42), record.UserID)
	assert.Equal(t, 2, record.Quantity)
	assert.Equal(t, BorrowStateActive, record.State())
	assert.Nil(t, record.ReturnedAt)

	_, err = e.Borrow(42, 4, now)
	assert.ErrorIs(t, err, ErrInsufficientAvailability)
	assert.Equal(t, 3, e.Available)
	assert.Len(t, e.BorrowRecords, 1)
}

func TestReturnLifecycle(t *testing.T) {
	e := newEquipment(5)
	now := time.Now().UTC()

	record, err := e.Borrow(7, 2, now)
	require.NoError(t, err)
	record.ID = 10

	// Requesting a return does not credit availability
	requested, err := e.RequestReturn(10, 7, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, BorrowStateReturnRequested, requested.State())
	assert.True(t, requested.PendingApproval())
	assert.Equal(t, 3, e.Available)

	// A second request on the same record is refused
	_, err = e.RequestReturn(10, 7, now.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrReturnAlreadyRequested)

	// Approval credits exactly once
	approved, err := e.ApproveReturns(7)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, BorrowStateReturnApproved, approved[0].State())
	assert.Equal(t, 5, e.Available)

	// Nothing left to approve, nothing further credited
	_, err = e.ApproveReturns(7)
	assert.ErrorIs(t, err, ErrNoPendingReturns)
	assert.Equal(t, 5, e.Available)

	// Terminal state cannot be re-requested
	_, err = e.RequestReturn(10, 7, now.Add(3*time.Hour))
	assert.ErrorIs(t, err, ErrReturnAlreadyApproved)
}

func TestRequestReturnWrongBorrower(t *testing.T) {
	e := newEquipment(5)
	now := time.Now().UTC()

	record, err := e.Borrow(7, 1, now)
	require.NoError(t, err)
	record.ID = 10

	_, err = e.RequestReturn(10, 99, now)
	assert.ErrorIs(t, err, ErrBorrowRecordNotFound)

	_, err = e.RequestReturn(999, 7, now)
	assert.ErrorIs(t, err, ErrBorrowRecordNotFound)
}

func TestBatchApprovalCreditsSumOnce(t *testing.T) {
	e := newEquipment(5)
	now := time.Now().UTC()

	// One borrower takes three separate loans, total 4 units
	r1, err := e.Borrow(7, 1, now)
	require.NoError(t, err)
	r1.ID = 1
	r2, err := e.Borrow(7, 2, now.Add(time.Minute))
	require.NoError(t, err)
	r2.ID = 2
	r3, err := e.Borrow(7, 1, now.Add(2*time.Minute))
	require.NoError(t, err)
	r3.ID = 3

	// Another borrower holds the last unit
	r4, err := e.Borrow(8, 1, now)
	require.NoError(t, err)
	r4.ID = 4
	assert.Equal(t, 0, e.Available)

	// First borrower returns two of the three loans
	_, err = e.RequestReturn(1, 7, now.Add(time.Hour))
	require.NoError(t, err)
	_, err = e.RequestReturn(2, 7, now.Add(time.Hour))
	require.NoError(t, err)

	approved, err := e.ApproveReturns(7)
	require.NoError(t, err)
	assert.Len(t, approved, 2)
	assert.Equal(t, 3, e.Available, "only the requested quantities are credited")

	// The untouched loan is still active; the other borrower is unaffected
	assert.Equal(t, BorrowStateActive, e.BorrowRecords[2].State())
	assert.Equal(t, BorrowStateActive, e.BorrowRecords[3].State())
}

func TestPendingForFiltersByBorrower(t *testing.T) {
	e := newEquipment(5)
	now := time.Now().UTC()

	r1, _ := e.Borrow(7, 1, now)
	r1.ID = 1
	r2, _ := e.Borrow(8, 1, now)
	r2.ID = 2

	_, err := e.RequestReturn(1, 7, now.Add(time.Hour))
	require.NoError(t, err)

	pending := e.PendingFor(7)
	require.Len(t, pending, 1)
	assert.Equal(t, uint(1), pending[0].ID)
	assert.Empty(t, e.PendingFor(8))
}

func TestAvailabilityNeverNegativeOrAboveTotal(t *testing.T) {
	e := newEquipment(5)
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		_, err := e.Borrow(uint(i+1), 1, now)
		require.NoError(t, err)
		e.BorrowRecords[i].ID = uint(i + 1)
	}
	assert.Equal(t, 0, e.Available)

	_, err := e.Borrow(99, 1, now)
	assert.ErrorIs(t, err, ErrInsufficientAvailability)
	assert.Equal(t, 0, e.Available)

	for i := 0; i < 5; i++ {
		_, err := e.RequestReturn(uint(i+1), uint(i+1), now.Add(time.Hour))
		require.NoError(t, err)
		_, err = e.ApproveReturns(uint(i + 1))
		require.NoError(t, err)
	}
	assert.Equal(t, 5, e.Available)
}

func TestTwoLoansReturnedAndApprovedTogether(t *testing.T) {
	e := newEquipment(5)
	now := time.Now().UTC()

	r1, err := e.Borrow(7, 1, now)
	require.NoError(t, err)
	r1.ID = 1
	r2, err := e.Borrow(7, 1, now.Add(time.Minute))
	require.NoError(t, err)
	r2.ID = 2
	assert.Equal(t, 3, e.Available)

	_, err = e.RequestReturn(1, 7, now.Add(time.Hour))
	require.NoError(t, err)
	_, err = e.RequestReturn(2, 7, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, e.Available)
	assert.Equal(t, BorrowStateReturnRequested, e.BorrowRecords[0].State())
	assert.Equal(t, BorrowStateReturnRequested, e.BorrowRecords[1].State())

	approved, err := e.ApproveReturns(7)
	require.NoError(t, err)
	assert.Len(t, approved, 2)
	assert.Equal(t, 5, e.Available)
	assert.Equal(t, BorrowStateReturnApproved, e.BorrowRecords[0].State())
	assert.Equal(t, BorrowStateReturnApproved, e.BorrowRecords[1].State())
}

func TestRestock(t *testing.T) {
	e := newEquipment(5)
	now := time.Now().UTC()

	_, err := e.Borrow(7, 3, now)
	require.NoError(t, err)

	require.NoError(t, e.Restock(10))
	assert.Equal(t, 10, e.Total)
	assert.Equal(t, 7, e.Available)

	require.NoError(t, e.Restock(3))
	assert.Equal(t, 3, e.Total)
	assert.Equal(t, 0, e.Available)

	assert.ErrorIs(t, e.Restock(2), ErrTotalBelowOutstanding)
	assert.ErrorIs(t, e.Restock(0), ErrInvalidQuantity)
}

func TestBorrowStateOrdering(t *testing.T) {
	now := time.Now().UTC()
	r := BorrowRecord{Quantity: 1}
	assert.Equal(t, BorrowStateActive, r.State())

	require.NoError(t, r.MarkReturnRequested(now))
	assert.Equal(t, BorrowStateReturnRequested, r.State())

	r.IsApproved = true
	assert.Equal(t, BorrowStateReturnApproved, r.State())
	assert.False(t, r.PendingApproval())
}
