package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Recipe belongs to one event and scales its ingredient lines from
// BaseServings to the servings planned for that event.
type Recipe struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventID       uuid.UUID          `gorm:"column:event_id;type:uuid;not null;index"`
	Name          string             `gorm:"column:name;not null"`
	BaseServings  int                `gorm:"column:base_servings;not null;default:1"`
	EventServings int                `gorm:"column:event_servings;not null;default:0"`
	Allergens     pq.StringArray     `gorm:"column:allergens;type:text[]"`
	Notes         *string            `gorm:"column:notes"`
	Ingredients   []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// RecipeIngredient is one ingredient line of a recipe at base servings.
// IngredientName joins against Ingredient.Name; there is no foreign key.
type RecipeIngredient struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RecipeID       uuid.UUID `gorm:"column:recipe_id;type:uuid;not null;index"`
	IngredientName string    `gorm:"column:ingredient_name;not null"`
	BaseQuantity   float64   `gorm:"column:base_quantity;not null;default:0"`
	Unit           string    `gorm:"column:unit;not null;default:'kg'"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
