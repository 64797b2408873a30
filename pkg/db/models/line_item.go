package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/conviteapp/convite-backend/pkg/enums"
)

// LineItem is one row of an event's purchase list for a given family.
// When IsOverride is false and a catalog entry matches (Family, Category,
// Name), Quantity tracks the derived value as of the last successful sync.
type LineItem struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventID    uuid.UUID        `gorm:"column:event_id;type:uuid;not null;index"`
	Family     enums.ItemFamily `gorm:"column:family;type:item_family;not null"`
	Category   string           `gorm:"column:category;not null"`
	Name       string           `gorm:"column:name;not null"`
	Quantity   int              `gorm:"column:quantity;not null;default:0"`
	UnitPrice  float64          `gorm:"column:unit_price;not null;default:0"`
	Position   int              `gorm:"column:position;not null;default:0"`
	Notes      *string          `gorm:"column:notes"`
	IsOverride bool             `gorm:"column:is_override;not null;default:false"`
	PhotoRef   *string          `gorm:"column:photo_ref"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
