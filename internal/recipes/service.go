package recipes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/conviteapp/convite-backend/pkg/db/models"
	"github.com/conviteapp/convite-backend/pkg/enums"
	pkgerrors "github.com/conviteapp/convite-backend/pkg/errors"
	"github.com/conviteapp/convite-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes recipe CRUD and costing.
type Service interface {
	Create(ctx context.Context, input Input) (*models.Recipe, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Recipe, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*models.Recipe, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Cost(ctx context.Context, id uuid.UUID) (*CostSummary, error)
}

// Input carries the writable recipe fields, ingredient lines included.
type Input struct {
	EventID       uuid.UUID
	Name          string
	BaseServings  int
	EventServings int
	Allergens     []string
	Notes         *string
	Ingredients   []LineInput
}

// LineInput is one ingredient line at base servings.
type LineInput struct {
	IngredientName string
	BaseQuantity   float64
	Unit           string
}

// ChangedEvent is the outbox payload for a recipe mutation.
type ChangedEvent struct {
	RecipeID uuid.UUID `json:"recipe_id"`
	EventID  uuid.UUID `json:"event_id"`
	Action   string    `json:"action"`
}

type service struct {
	repo        Repository
	ingredients ingredientSource
	tx          txRunner
	outbox      outboxPublisher
}

// NewService builds a recipes service with the required dependencies.
func NewService(repo Repository, ingredients ingredientSource, tx txRunner, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("recipes repository required")
	}
	if ingredients == nil {
		return nil, fmt.Errorf("ingredient source required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, ingredients: ingredients, tx: tx, outbox: outboxSvc}, nil
}

func (s *service) Create(ctx context.Context, input Input) (*models.Recipe, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	recipe := recipeFromInput(input)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.repo.WithTx(tx).Create(ctx, recipe)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create recipe")
		}
		recipe = created
		return s.emit(ctx, tx, recipe, "created")
	})
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipe id required")
	}
	recipe, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "recipe not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipe")
	}
	return recipe, nil
}

func (s *service) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Recipe, error) {
	if eventID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id required")
	}
	recipes, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list recipes")
	}
	return recipes, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*models.Recipe, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipe id required")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var updated *models.Recipe
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "recipe not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipe")
		}

		recipe := recipeFromInput(input)
		recipe.ID = current.ID
		recipe.EventID = current.EventID
		updated, err = repo.Replace(ctx, recipe)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace recipe")
		}
		return s.emit(ctx, tx, updated, "updated")
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipe id required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		recipe, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "recipe not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipe")
		}
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete recipe")
		}
		return s.emit(ctx, tx, recipe, "deleted")
	})
}

// Cost scales every line to event servings, inflates it by the ingredient's
// waste percentage and prices it at the ingredient's unit cost. Lines whose
// ingredient has no metadata row cost zero.
func (s *service) Cost(ctx context.Context, id uuid.UUID) (*CostSummary, error) {
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(recipe.Ingredients))
	for _, line := range recipe.Ingredients {
		names = append(names, line.IngredientName)
	}
	metadata, err := s.ingredients.IngredientsByName(ctx, names)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ingredients")
	}

	base := recipe.BaseServings
	if base <= 0 {
		base = 1
	}
	scale := decimal.NewFromInt(int64(recipe.EventServings)).
		Div(decimal.NewFromInt(int64(base)))
	hundred := decimal.NewFromInt(100)

	summary := &CostSummary{
		RecipeID:   recipe.ID,
		RecipeName: recipe.Name,
		Servings:   recipe.EventServings,
		Lines:      make([]CostLine, 0, len(recipe.Ingredients)),
		TotalCost:  decimal.Zero,
	}
	for _, line := range recipe.Ingredients {
		quantity := decimal.NewFromFloat(line.BaseQuantity).Mul(scale)
		effective := quantity
		unitCost := decimal.Zero
		unit := line.Unit
		if meta, ok := metadata[line.IngredientName]; ok {
			unitCost = decimal.NewFromFloat(meta.UnitCost)
			if meta.WastePercentage > 0 {
				factor := decimal.NewFromFloat(meta.WastePercentage).Div(hundred)
				effective = quantity.Mul(decimal.NewFromInt(1).Add(factor))
			}
			if meta.Unit != "" {
				unit = meta.Unit
			}
		}
		lineCost := effective.Mul(unitCost)
		summary.Lines = append(summary.Lines, CostLine{
			IngredientName: line.IngredientName,
			Unit:           unit,
			Quantity:       quantity,
			EffectiveQty:   effective,
			UnitCost:       unitCost,
			LineCost:       lineCost,
		})
		summary.TotalCost = summary.TotalCost.Add(lineCost)
	}
	if recipe.EventServings > 0 {
		summary.PerServing = summary.TotalCost.Div(decimal.NewFromInt(int64(recipe.EventServings)))
	} else {
		summary.PerServing = decimal.Zero
	}
	return summary, nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, recipe *models.Recipe, action string) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventRecipeChanged,
		AggregateType: enums.AggregateRecipe,
		AggregateID:   recipe.ID,
		Version:       1,
		Data: ChangedEvent{
			RecipeID: recipe.ID,
			EventID:  recipe.EventID,
			Action:   action,
		},
	})
}

func recipeFromInput(input Input) *models.Recipe {
	recipe := &models.Recipe{
		EventID:       input.EventID,
		Name:          strings.TrimSpace(input.Name),
		BaseServings:  input.BaseServings,
		EventServings: input.EventServings,
		Allergens:     pq.StringArray(input.Allergens),
		Notes:         input.Notes,
	}
	for _, line := range input.Ingredients {
		recipe.Ingredients = append(recipe.Ingredients, models.RecipeIngredient{
			IngredientName: strings.TrimSpace(line.IngredientName),
			BaseQuantity:   line.BaseQuantity,
			Unit:           strings.TrimSpace(line.Unit),
		})
	}
	return recipe
}

func validateInput(input Input) error {
	if input.EventID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "event id required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipe name is required")
	}
	if input.BaseServings < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "base servings must be at least 1")
	}
	if input.EventServings < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "event servings cannot be negative")
	}

	var combined error
	for idx, line := range input.Ingredients {
		row := idx + 1
		if strings.TrimSpace(line.IngredientName) == "" {
			combined = multierr.Append(combined, fmt.Errorf("line %d: ingredient name is required", row))
		}
		if line.BaseQuantity <= 0 {
			combined = multierr.Append(combined, fmt.Errorf("line %d %s: quantity must be positive", row, line.IngredientName))
		}
	}
	if combined != nil {
		messages := make([]string, 0, len(multierr.Errors(combined)))
		for _, err := range multierr.Errors(combined) {
			messages = append(messages, err.Error())
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid recipe lines").WithDetails(messages)
	}
	return nil
}
