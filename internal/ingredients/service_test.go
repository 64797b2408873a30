package ingredients

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/conviteapp/convite-backend/pkg/db/models"
	pkgerrors "github.com/conviteapp/convite-backend/pkg/errors"
	"github.com/conviteapp/convite-backend/pkg/outbox"
	"github.com/conviteapp/convite-backend/pkg/pagination"
)

type stubRepo struct {
	createFn   func(ctx context.Context, ingredient *models.Ingredient) (*models.Ingredient, error)
	findByIDFn func(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	updateFn   func(ctx context.Context, id uuid.UUID, updates map[string]any) error
	deleteFn   func(ctx context.Context, id uuid.UUID) error
	listFn     func(ctx context.Context, params pagination.Params) (*IngredientList, error)
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, ingredient *models.Ingredient) (*models.Ingredient, error) {
	return s.createFn(ctx, ingredient)
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	return s.findByIDFn(ctx, id)
}

func (s *stubRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return s.updateFn(ctx, id, updates)
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteFn(ctx, id)
}

func (s *stubRepo) List(ctx context.Context, params pagination.Params) (*IngredientList, error) {
	return s.listFn(ctx, params)
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

func TestCreateValidation(t *testing.T) {
	svc, err := NewService(&stubRepo{}, stubTxRunner{}, &stubOutbox{})
	require.NoError(t, err)

	cases := []struct {
		name  string
		input Input
	}{
		{"empty name", Input{Name: "  ", UnitCost: 2.0}},
		{"negative cost", Input{Name: "Tomate", UnitCost: -1}},
		{"waste over 100", Input{Name: "Tomate", UnitCost: 2.0, WastePercentage: 120}},
		{"negative waste", Input{Name: "Tomate", UnitCost: 2.0, WastePercentage: -5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			require.Error(t, err)
			appErr := pkgerrors.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
		})
	}
}

func TestCreateDefaultsUnitAndEmits(t *testing.T) {
	repo := &stubRepo{
		createFn: func(ctx context.Context, ingredient *models.Ingredient) (*models.Ingredient, error) {
			ingredient.ID = uuid.New()
			return ingredient, nil
		},
	}
	sink := &stubOutbox{}
	svc, err := NewService(repo, stubTxRunner{}, sink)
	require.NoError(t, err)

	created, err := svc.Create(context.Background(), Input{
		Name:     " Tomate ",
		Supplier: "Proveedor A",
		UnitCost: 2.0,
	})
	require.NoError(t, err)
	assert.Equal(t, "Tomate", created.Name)
	assert.Equal(t, "kg", created.Unit)

	require.Len(t, sink.events, 1)
	payload, ok := sink.events[0].Data.(ChangedEvent)
	require.True(t, ok)
	assert.Equal(t, "created", payload.Action)
	assert.Equal(t, "Tomate", payload.Name)
}

func TestCreateDuplicateNameConflicts(t *testing.T) {
	repo := &stubRepo{
		createFn: func(ctx context.Context, ingredient *models.Ingredient) (*models.Ingredient, error) {
			return nil, &duplicateErr{}
		},
	}
	sink := &stubOutbox{}
	svc, err := NewService(repo, stubTxRunner{}, sink)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), Input{Name: "Tomate", UnitCost: 2.0})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
	assert.Empty(t, sink.events)
}

type duplicateErr struct{}

func (duplicateErr) Error() string { return "UNIQUE constraint failed: ingredients.name" }

func TestUpdateNotFound(t *testing.T) {
	repo := &stubRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc, err := NewService(repo, stubTxRunner{}, &stubOutbox{})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), uuid.New(), Input{Name: "Tomate", UnitCost: 2.0})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestDeleteEmitsChange(t *testing.T) {
	id := uuid.New()
	repo := &stubRepo{
		findByIDFn: func(ctx context.Context, ingredientID uuid.UUID) (*models.Ingredient, error) {
			return &models.Ingredient{ID: id, Name: "Tomate"}, nil
		},
		deleteFn: func(ctx context.Context, ingredientID uuid.UUID) error { return nil },
	}
	sink := &stubOutbox{}
	svc, err := NewService(repo, stubTxRunner{}, sink)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), id))
	require.Len(t, sink.events, 1)
	payload := sink.events[0].Data.(ChangedEvent)
	assert.Equal(t, "deleted", payload.Action)
}
