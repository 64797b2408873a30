package consolidation

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/conviteapp/convite-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a consolidation repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// RequirementsByEvent loads every recipe for the event and scales each
// ingredient line from base servings to the recipe's event servings.
func (r *repository) RequirementsByEvent(ctx context.Context, eventID uuid.UUID) ([]Requirement, error) {
	var recipes []models.Recipe
	err := r.db.WithContext(ctx).
		Preload("Ingredients").
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}

	requirements := make([]Requirement, 0)
	for _, recipe := range recipes {
		base := recipe.BaseServings
		if base <= 0 {
			base = 1
		}
		scale := decimal.NewFromInt(int64(recipe.EventServings)).
			Div(decimal.NewFromInt(int64(base)))
		for _, line := range recipe.Ingredients {
			requirements = append(requirements, Requirement{
				RecipeID:       recipe.ID,
				RecipeName:     recipe.Name,
				IngredientName: line.IngredientName,
				Quantity:       decimal.NewFromFloat(line.BaseQuantity).Mul(scale),
				Unit:           line.Unit,
			})
		}
	}
	return requirements, nil
}

func (r *repository) IngredientsByName(ctx context.Context, names []string) (map[string]models.Ingredient, error) {
	byName := make(map[string]models.Ingredient, len(names))
	if len(names) == 0 {
		return byName, nil
	}
	var rows []models.Ingredient
	err := r.db.WithContext(ctx).
		Where("name IN ?", names).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		byName[row.Name] = row
	}
	return byName, nil
}
