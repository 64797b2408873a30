package models

import (
	"time"

	"github.com/google/uuid"
)

// Ingredient carries the purchasing metadata consolidation joins against.
// Name is the join key used by recipe rows; it is unique but not a stable
// identifier, so renames orphan existing requirements.
type Ingredient struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string    `gorm:"column:name;not null;uniqueIndex"`
	Supplier        string    `gorm:"column:supplier;not null;default:''"`
	Unit            string    `gorm:"column:unit;not null;default:'kg'"`
	UnitCost        float64   `gorm:"column:unit_cost;not null;default:0"`
	WastePercentage float64   `gorm:"column:waste_percentage;not null;default:0"`
	PhotoRef        *string   `gorm:"column:photo_ref"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
