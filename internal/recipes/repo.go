package recipes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/conviteapp/convite-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a recipes repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	if recipe.ID == uuid.Nil {
		recipe.ID = uuid.New()
	}
	for i := range recipe.Ingredients {
		if recipe.Ingredients[i].ID == uuid.Nil {
			recipe.Ingredients[i].ID = uuid.New()
		}
		recipe.Ingredients[i].RecipeID = recipe.ID
	}
	if err := r.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, err
	}
	return recipe, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.db.WithContext(ctx).
		Preload("Ingredients").
		Where("id = ?", id).
		First(&recipe).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := r.db.WithContext(ctx).
		Preload("Ingredients").
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

// Replace rewrites the recipe row and swaps its ingredient lines wholesale.
func (r *repository) Replace(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	updates := map[string]any{
		"name":           recipe.Name,
		"base_servings":  recipe.BaseServings,
		"event_servings": recipe.EventServings,
		"allergens":      recipe.Allergens,
		"notes":          recipe.Notes,
	}
	err := r.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Where("id = ?", recipe.ID).
		Updates(updates).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Where("recipe_id = ?", recipe.ID).
		Delete(&models.RecipeIngredient{}).Error
	if err != nil {
		return nil, err
	}
	for i := range recipe.Ingredients {
		recipe.Ingredients[i].ID = uuid.New()
		recipe.Ingredients[i].RecipeID = recipe.ID
	}
	if len(recipe.Ingredients) > 0 {
		if err := r.db.WithContext(ctx).Create(&recipe.Ingredients).Error; err != nil {
			return nil, err
		}
	}
	return recipe, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Recipe{}).Error
}
