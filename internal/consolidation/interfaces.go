// Package consolidation folds every recipe's scaled ingredient lines into one
// purchase order per supplier.
package consolidation

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/conviteapp/convite-backend/pkg/db/models"
)

// Requirement is one recipe ingredient line already scaled to the recipe's
// event servings.
type Requirement struct {
	RecipeID       uuid.UUID
	RecipeName     string
	IngredientName string
	Quantity       decimal.Decimal
	Unit           string
}

// ConsolidatedItem is the summed demand for one ingredient at one supplier.
// WastePercentage is carried through from the ingredient metadata so the
// purchasing view shows the allowance behind the quantities.
type ConsolidatedItem struct {
	IngredientName  string          `json:"ingredient_name"`
	Supplier        string          `json:"supplier"`
	Unit            string          `json:"unit"`
	TotalQuantity   decimal.Decimal `json:"total_quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	WastePercentage float64         `json:"waste_percentage"`
	TotalCost       decimal.Decimal `json:"total_cost"`
}

// SupplierOrder groups the consolidated items bought from one supplier.
type SupplierOrder struct {
	Supplier          string             `json:"supplier"`
	Items             []ConsolidatedItem `json:"items"`
	TotalSupplierCost decimal.Decimal    `json:"total_supplier_cost"`
}

// Repository is the read-only source consolidation aggregates from.
type Repository interface {
	RequirementsByEvent(ctx context.Context, eventID uuid.UUID) ([]Requirement, error)
	IngredientsByName(ctx context.Context, names []string) (map[string]models.Ingredient, error)
}
