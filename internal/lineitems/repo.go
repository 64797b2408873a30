package lineitems

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/conviteapp/convite-backend/pkg/db/models"
	"github.com/conviteapp/convite-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a line-items repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context, eventID uuid.UUID, family enums.ItemFamily) ([]models.LineItem, error) {
	var rows []models.LineItem
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND family = ?", eventID, family).
		Order("category ASC").
		Order("position ASC").
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Replace makes the stored rows for (eventID, family) match items exactly.
// Rows carrying a known id are updated in place, rows without one are
// inserted, and stored ids absent from items are deleted. Callers wanting the
// whole swap to commit or roll back together must bind the repository to a
// transaction first.
func (r *repository) Replace(ctx context.Context, eventID uuid.UUID, family enums.ItemFamily, items []models.LineItem) ([]models.LineItem, error) {
	var existing []models.LineItem
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND family = ?", eventID, family).
		Find(&existing).Error
	if err != nil {
		return nil, err
	}

	known := make(map[uuid.UUID]bool, len(existing))
	for _, row := range existing {
		known[row.ID] = true
	}

	persisted := make([]models.LineItem, 0, len(items))
	kept := make(map[uuid.UUID]bool, len(items))
	for idx, item := range items {
		item.EventID = eventID
		item.Family = family
		item.Position = idx
		if item.ID != uuid.Nil && known[item.ID] {
			updates := map[string]any{
				"category":    item.Category,
				"name":        item.Name,
				"quantity":    item.Quantity,
				"unit_price":  item.UnitPrice,
				"position":    item.Position,
				"notes":       item.Notes,
				"is_override": item.IsOverride,
				"photo_ref":   item.PhotoRef,
			}
			err := r.db.WithContext(ctx).
				Model(&models.LineItem{}).
				Where("id = ?", item.ID).
				Updates(updates).Error
			if err != nil {
				return nil, err
			}
		} else {
			item.ID = uuid.New()
			if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
				return nil, err
			}
		}
		kept[item.ID] = true
		persisted = append(persisted, item)
	}

	stale := make([]uuid.UUID, 0)
	for _, row := range existing {
		if !kept[row.ID] {
			stale = append(stale, row.ID)
		}
	}
	if len(stale) > 0 {
		err := r.db.WithContext(ctx).
			Where("id IN ?", stale).
			Delete(&models.LineItem{}).Error
		if err != nil {
			return nil, err
		}
	}
	return persisted, nil
}
