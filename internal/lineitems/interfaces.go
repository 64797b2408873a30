// Package lineitems owns the per-event purchase list: catalog generation,
// quantity recalculation, manual overrides and the transactional replace of
// one item family's rows.
package lineitems

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/conviteapp/convite-backend/pkg/db/models"
	"github.com/conviteapp/convite-backend/pkg/enums"
)

// Repository defines persistence operations for the line_items table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, eventID uuid.UUID, family enums.ItemFamily) ([]models.LineItem, error)
	Replace(ctx context.Context, eventID uuid.UUID, family enums.ItemFamily, items []models.LineItem) ([]models.LineItem, error)
}
