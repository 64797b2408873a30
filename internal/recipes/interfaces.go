// Package recipes manages per-event recipes and costs them against the
// ingredient metadata, waste allowance included.
package recipes

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/conviteapp/convite-backend/pkg/db/models"
)

// Repository defines persistence operations for recipes and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Recipe, error)
	Replace(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ingredientSource resolves metadata for the names a recipe references.
type ingredientSource interface {
	IngredientsByName(ctx context.Context, names []string) (map[string]models.Ingredient, error)
}

// CostLine is one ingredient's contribution to a recipe's cost at event
// servings, inflated by the ingredient's waste percentage.
type CostLine struct {
	IngredientName string          `json:"ingredient_name"`
	Unit           string          `json:"unit"`
	Quantity       decimal.Decimal `json:"quantity"`
	EffectiveQty   decimal.Decimal `json:"effective_quantity"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	LineCost       decimal.Decimal `json:"line_cost"`
}

// CostSummary is the full costing of one recipe.
type CostSummary struct {
	RecipeID   uuid.UUID       `json:"recipe_id"`
	RecipeName string          `json:"recipe_name"`
	Servings   int             `json:"servings"`
	Lines      []CostLine      `json:"lines"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	PerServing decimal.Decimal `json:"per_serving_cost"`
}
