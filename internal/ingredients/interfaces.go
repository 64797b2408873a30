// Package ingredients manages the purchasing metadata consolidation joins
// against: supplier, unit cost and waste allowance per ingredient name.
package ingredients

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/conviteapp/convite-backend/pkg/db/models"
	"github.com/conviteapp/convite-backend/pkg/pagination"
)

// Repository defines persistence operations for the ingredients table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, ingredient *models.Ingredient) (*models.Ingredient, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params pagination.Params) (*IngredientList, error)
}

// IngredientList is one cursor page of ingredients.
type IngredientList struct {
	Ingredients []models.Ingredient `json:"ingredients"`
	NextCursor  *string             `json:"next_cursor,omitempty"`
}
