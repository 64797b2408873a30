package recipes

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/conviteapp/convite-backend/pkg/db/models"
	pkgerrors "github.com/conviteapp/convite-backend/pkg/errors"
	"github.com/conviteapp/convite-backend/pkg/outbox"
)

type stubRepo struct {
	createFn   func(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	findByIDFn func(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	listFn     func(ctx context.Context, eventID uuid.UUID) ([]models.Recipe, error)
	replaceFn  func(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	deleteFn   func(ctx context.Context, id uuid.UUID) error
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	return s.createFn(ctx, recipe)
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	return s.findByIDFn(ctx, id)
}

func (s *stubRepo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Recipe, error) {
	return s.listFn(ctx, eventID)
}

func (s *stubRepo) Replace(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	return s.replaceFn(ctx, recipe)
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteFn(ctx, id)
}

type stubIngredients struct {
	byName map[string]models.Ingredient
}

func (s *stubIngredients) IngredientsByName(ctx context.Context, names []string) (map[string]models.Ingredient, error) {
	return s.byName, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func newTestService(t *testing.T, repo Repository, ingredients ingredientSource) (Service, *stubOutbox) {
	t.Helper()
	sink := &stubOutbox{}
	svc, err := NewService(repo, ingredients, stubTxRunner{}, sink)
	require.NoError(t, err)
	return svc, sink
}

func TestCreateValidatesLines(t *testing.T) {
	svc, _ := newTestService(t, &stubRepo{}, &stubIngredients{})

	_, err := svc.Create(context.Background(), Input{
		EventID:       uuid.New(),
		Name:          "Gazpacho",
		BaseServings:  10,
		EventServings: 150,
		Ingredients: []LineInput{
			{IngredientName: "", BaseQuantity: 0.5},
			{IngredientName: "Tomate", BaseQuantity: -1},
		},
	})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	details, ok := appErr.Details().([]string)
	require.True(t, ok)
	assert.Len(t, details, 2)
}

func TestCreateEmitsChangeEvent(t *testing.T) {
	repo := &stubRepo{
		createFn: func(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
			recipe.ID = uuid.New()
			return recipe, nil
		},
	}
	svc, sink := newTestService(t, repo, &stubIngredients{})

	created, err := svc.Create(context.Background(), Input{
		EventID:       uuid.New(),
		Name:          "Gazpacho",
		BaseServings:  10,
		EventServings: 150,
		Ingredients: []LineInput{
			{IngredientName: "Tomate", BaseQuantity: 0.5, Unit: "kg"},
		},
	})
	require.NoError(t, err)
	require.Len(t, sink.events, 1)
	payload := sink.events[0].Data.(ChangedEvent)
	assert.Equal(t, created.ID, payload.RecipeID)
	assert.Equal(t, "created", payload.Action)
}

func TestCostScalesAndAppliesWaste(t *testing.T) {
	recipeID := uuid.New()
	repo := &stubRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
			return &models.Recipe{
				ID:            recipeID,
				Name:          "Gazpacho",
				BaseServings:  10,
				EventServings: 150,
				Ingredients: []models.RecipeIngredient{
					{IngredientName: "Tomate", BaseQuantity: 0.5, Unit: "kg"},
					{IngredientName: "Aceite de Oliva", BaseQuantity: 0.1, Unit: "l"},
				},
			}, nil
		},
	}
	ingredients := &stubIngredients{byName: map[string]models.Ingredient{
		"Tomate":          {Name: "Tomate", Unit: "kg", UnitCost: 2.0, WastePercentage: 10},
		"Aceite de Oliva": {Name: "Aceite de Oliva", Unit: "l", UnitCost: 8.0},
	}}
	svc, _ := newTestService(t, repo, ingredients)

	summary, err := svc.Cost(context.Background(), recipeID)
	require.NoError(t, err)
	require.Len(t, summary.Lines, 2)

	// 0.5 kg x 15 scale = 7.5 kg, +10% waste = 8.25 kg at 2.00.
	tomato := summary.Lines[0]
	assert.True(t, tomato.Quantity.Equal(decimal.NewFromFloat(7.5)), "got %s", tomato.Quantity)
	assert.True(t, tomato.EffectiveQty.Equal(decimal.NewFromFloat(8.25)), "got %s", tomato.EffectiveQty)
	assert.True(t, tomato.LineCost.Equal(decimal.NewFromFloat(16.5)), "got %s", tomato.LineCost)

	// 0.1 l x 15 scale = 1.5 l, no waste, at 8.00.
	oil := summary.Lines[1]
	assert.True(t, oil.EffectiveQty.Equal(decimal.NewFromFloat(1.5)))
	assert.True(t, oil.LineCost.Equal(decimal.NewFromFloat(12.0)))

	assert.True(t, summary.TotalCost.Equal(decimal.NewFromFloat(28.5)), "got %s", summary.TotalCost)
	assert.True(t, summary.PerServing.Equal(decimal.NewFromFloat(0.19)), "got %s", summary.PerServing)
}

func TestCostUnknownIngredientIsFree(t *testing.T) {
	recipeID := uuid.New()
	repo := &stubRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
			return &models.Recipe{
				ID:            recipeID,
				Name:          "Gazpacho",
				BaseServings:  10,
				EventServings: 150,
				Ingredients: []models.RecipeIngredient{
					{IngredientName: "Hierba Secreta", BaseQuantity: 0.2, Unit: "kg"},
				},
			}, nil
		},
	}
	svc, _ := newTestService(t, repo, &stubIngredients{})

	summary, err := svc.Cost(context.Background(), recipeID)
	require.NoError(t, err)
	require.Len(t, summary.Lines, 1)
	assert.True(t, summary.Lines[0].LineCost.IsZero())
	assert.True(t, summary.TotalCost.IsZero())
}

func TestGetNotFound(t *testing.T) {
	repo := &stubRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc, _ := newTestService(t, repo, &stubIngredients{})

	_, err := svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}
