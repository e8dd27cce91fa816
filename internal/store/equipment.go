package store

import (
	"context"
	"sort"
	"time"

	"github.com/campusfit/gym-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BorrowEquipment deducts quantity from the equipment's available pool and
// records the loan, atomically. Fails with ErrEquipmentNotFound or
// models.ErrInsufficientAvailability; on failure nothing is persisted.
func (s *Store) BorrowEquipment(ctx context.Context, equipmentID, userID uint, quantity int) (*models.EquipmentType, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var equipment models.EquipmentType
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&equipment, equipmentID).Error; err != nil {
			return notFound(err, ErrEquipmentNotFound)
		}

		record, err := equipment.Borrow(userID, quantity, time.Now().UTC())
		if err != nil {
			return err
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		return tx.Model(&equipment).Update("available", equipment.Available).Error
	})
	if err != nil {
		return nil, err
	}
	return s.EquipmentSnapshot(ctx, equipmentID)
}

// RequestReturn marks the borrower's record as returned. Available stays
// untouched until an admin approves.
func (s *Store) RequestReturn(ctx context.Context, equipmentID, borrowID, userID uint) (*models.EquipmentType, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var equipment models.EquipmentType
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&equipment, equipmentID).Error; err != nil {
			return notFound(err, ErrEquipmentNotFound)
		}

		var record models.BorrowRecord
		if err := tx.Where("id = ? AND equipment_type_id = ? AND user_id = ?",
			borrowID, equipmentID, userID).First(&record).Error; err != nil {
			return notFound(err, models.ErrBorrowRecordNotFound)
		}

		if err := record.MarkReturnRequested(time.Now().UTC()); err != nil {
			return err
		}
		return tx.Save(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return s.EquipmentSnapshot(ctx, equipmentID)
}

// ApproveReturns approves every pending return of the borrower on this
// equipment in one batch and credits the summed quantity back, exactly once.
func (s *Store) ApproveReturns(ctx context.Context, equipmentID, userID uint) (int, *models.EquipmentType, error) {
	credited := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var equipment models.EquipmentType
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&equipment, equipmentID).Error; err != nil {
			return notFound(err, ErrEquipmentNotFound)
		}

		if err := tx.Where("equipment_type_id = ? AND user_id = ? AND returned_at IS NOT NULL AND is_approved = ?",
			equipmentID, userID, false).Find(&equipment.BorrowRecords).Error; err != nil {
			return err
		}

		approved, err := equipment.ApproveReturns(userID)
		if err != nil {
			return err
		}
		ids := make([]uint, 0, len(approved))
		for _, r := range approved {
			ids = append(ids, r.ID)
			credited += r.Quantity
		}
		if err := tx.Model(&models.BorrowRecord{}).Where("id IN ?", ids).
			Update("is_approved", true).Error; err != nil {
			return err
		}
		return tx.Model(&equipment).Update("available", equipment.Available).Error
	})
	if err != nil {
		return 0, nil, err
	}
	snapshot, err := s.EquipmentSnapshot(ctx, equipmentID)
	return credited, snapshot, err
}

// EquipmentSnapshot loads the equipment with its loan history, oldest first.
func (s *Store) EquipmentSnapshot(ctx context.Context, equipmentID uint) (*models.EquipmentType, error) {
	var equipment models.EquipmentType
	err := s.db.WithContext(ctx).
		Preload("BorrowRecords", func(db *gorm.DB) *gorm.DB {
			return db.Order("borrowed_at ASC")
		}).
		First(&equipment, equipmentID).Error
	if err != nil {
		return nil, notFound(err, ErrEquipmentNotFound)
	}
	return &equipment, nil
}

// PendingReturnGroup is one (borrower, equipment) pair awaiting approval, with
// the aggregate quantity across all of the pair's pending records.
type PendingReturnGroup struct {
	UserID          uint                  `json:"userId"`
	Username        string                `json:"username,omitempty"`
	ItemID          uint                  `json:"itemId"`
	ItemName        string                `json:"itemName"`
	Category        string                `json:"category"`
	TotalQuantity   int                   `json:"totalQuantity"`
	BorrowedRecords []models.BorrowRecord `json:"borrowedRecords"`
}

// PendingReturns lists every returned-but-unapproved record across all
// equipment, grouped per (borrower, equipment) pair for the admin view.
func (s *Store) PendingReturns(ctx context.Context) ([]PendingReturnGroup, error) {
	var records []models.BorrowRecord
	if err := s.db.WithContext(ctx).Preload("User").
		Where("returned_at IS NOT NULL AND is_approved = ?", false).
		Order("returned_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []PendingReturnGroup{}, nil
	}

	itemIDs := make([]uint, 0, len(records))
	for _, r := range records {
		itemIDs = append(itemIDs, r.EquipmentTypeID)
	}
	var items []models.EquipmentType
	if err := s.db.WithContext(ctx).Where("id IN ?", itemIDs).Find(&items).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.EquipmentType, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	return GroupPendingReturns(records, byID), nil
}

// GroupPendingReturns folds pending borrow records into per (borrower,
// equipment) groups with aggregate quantities.
func GroupPendingReturns(records []models.BorrowRecord, items map[uint]models.EquipmentType) []PendingReturnGroup {
	type key struct {
		userID uint
		itemID uint
	}
	groups := make(map[key]*PendingReturnGroup)
	var order []key
	for _, r := range records {
		if !r.PendingApproval() {
			continue
		}
		k := key{userID: r.UserID, itemID: r.EquipmentTypeID}
		g, ok := groups[k]
		if !ok {
			item := items[r.EquipmentTypeID]
			g = &PendingReturnGroup{
				UserID:   r.UserID,
				ItemID:   r.EquipmentTypeID,
				ItemName: item.Name,
				Category: item.Category,
			}
			if r.User != nil {
				g.Username = r.User.Username
			}
			groups[k] = g
			order = append(order, k)
		}
		g.TotalQuantity += r.Quantity
		g.BorrowedRecords = append(g.BorrowedRecords, r)
	}

	out := make([]PendingReturnGroup, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out
}
