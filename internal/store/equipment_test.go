package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusfit/gym-backend/internal/models"
)

func pendingRecord(id, itemID, userID uint, quantity int, username string) models.BorrowRecord {
	returned := time.Now().UTC()
	r := models.BorrowRecord{
		EquipmentTypeID: itemID,
		UserID:          userID,
		Quantity:        quantity,
		BorrowedAt:      returned.Add(-time.Hour),
		ReturnedAt:      &returned,
	}
	r.ID = id
	if username != "" {
		r.User = &models.User{Username: username}
	}
	return r
}

func testItems() map[uint]models.EquipmentType {
	mat := models.EquipmentType{Name: "Yoga Mat", Category: "accessories"}
	mat.ID = 1
	rope := models.EquipmentType{Name: "Jump Rope", Category: "cardio"}
	rope.ID = 2
	return map[uint]models.EquipmentType{1: mat, 2: rope}
}

func TestGroupPendingReturnsAggregatesPerPair(t *testing.T) {
	records := []models.BorrowRecord{
		pendingRecord(1, 1, 7, 1, "ama"),
		pendingRecord(2, 1, 7, 2, "ama"),
		pendingRecord(3, 2, 7, 1, "ama"),
		pendingRecord(4, 1, 8, 3, "kofi"),
	}

	groups := GroupPendingReturns(records, testItems())
	require.Len(t, groups, 3)

	// Sorted by borrower then item
	assert.Equal(t, uint(7), groups[0].UserID)
	assert.Equal(t, uint(1), groups[0].ItemID)
	assert.Equal(t, "Yoga Mat", groups[0].ItemName)
	assert.Equal(t, "accessories", groups[0].Category)
	assert.Equal(t, 3, groups[0].TotalQuantity)
	assert.Len(t, groups[0].BorrowedRecords, 2)
	assert.Equal(t, "ama", groups[0].Username)

	assert.Equal(t, uint(7), groups[1].UserID)
	assert.Equal(t, uint(2), groups[1].ItemID)
	assert.Equal(t, "Jump Rope", groups[1].ItemName)
	assert.Equal(t, 1, groups[1].TotalQuantity)

	assert.Equal(t, uint(8), groups[2].UserID)
	assert.Equal(t, 3, groups[2].TotalQuantity)
	assert.Equal(t, "kofi", groups[2].Username)
}

func TestGroupPendingReturnsSkipsNonPending(t *testing.T) {
	active := models.BorrowRecord{EquipmentTypeID: 1, UserID: 7, Quantity: 1}
	active.ID = 5

	approved := pendingRecord(6, 1, 7, 1, "")
	approved.IsApproved = true

	groups := GroupPendingReturns([]models.BorrowRecord{active, approved}, testItems())
	assert.Empty(t, groups)
}

func TestGroupPendingReturnsEmptyInput(t *testing.T) {
	assert.Empty(t, GroupPendingReturns(nil, nil))
}
