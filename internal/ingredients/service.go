package ingredients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/conviteapp/convite-backend/pkg/db"
	"github.com/conviteapp/convite-backend/pkg/db/models"
	"github.com/conviteapp/convite-backend/pkg/enums"
	pkgerrors "github.com/conviteapp/convite-backend/pkg/errors"
	"github.com/conviteapp/convite-backend/pkg/outbox"
	"github.com/conviteapp/convite-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes ingredient CRUD. Mutations journal a change event because
// supplier and cost edits shift every consolidation that references the name.
type Service interface {
	Create(ctx context.Context, input Input) (*models.Ingredient, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	List(ctx context.Context, params pagination.Params) (*IngredientList, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*models.Ingredient, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Input carries the writable ingredient fields.
type Input struct {
	Name            string
	Supplier        string
	Unit            string
	UnitCost        float64
	WastePercentage float64
	PhotoRef        *string
}

// ChangedEvent is the outbox payload for an ingredient mutation.
type ChangedEvent struct {
	IngredientID uuid.UUID `json:"ingredient_id"`
	Name         string    `json:"name"`
	Action       string    `json:"action"`
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds an ingredients service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ingredients repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outboxSvc}, nil
}

func (s *service) Create(ctx context.Context, input Input) (*models.Ingredient, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	ingredient := &models.Ingredient{
		Name:            strings.TrimSpace(input.Name),
		Supplier:        strings.TrimSpace(input.Supplier),
		Unit:            defaultUnit(input.Unit),
		UnitCost:        input.UnitCost,
		WastePercentage: input.WastePercentage,
		PhotoRef:        input.PhotoRef,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.repo.WithTx(tx).Create(ctx, ingredient)
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict,
					fmt.Sprintf("ingredient %q already exists", ingredient.Name))
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create ingredient")
		}
		ingredient = created
		return s.emit(ctx, tx, ingredient, "created")
	})
	if err != nil {
		return nil, err
	}
	return ingredient, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient id required")
	}
	ingredient, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ingredient not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ingredient")
	}
	return ingredient, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*IngredientList, error) {
	list, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ingredients")
	}
	return list, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*models.Ingredient, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient id required")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var updated *models.Ingredient
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "ingredient not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ingredient")
		}

		updates := map[string]any{
			"name":             strings.TrimSpace(input.Name),
			"supplier":         strings.TrimSpace(input.Supplier),
			"unit":             defaultUnit(input.Unit),
			"unit_cost":        input.UnitCost,
			"waste_percentage": input.WastePercentage,
			"photo_ref":        input.PhotoRef,
		}
		if err := repo.Update(ctx, id, updates); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict,
					fmt.Sprintf("ingredient %q already exists", strings.TrimSpace(input.Name)))
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update ingredient")
		}

		var err error
		updated, err = repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload ingredient")
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
		return pkgerrors.New(pkgerrors.CodeValidation, "ingredient id required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ingredient, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "ingredient not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ingredient")
		}
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete ingredient")
		}
		return s.emit(ctx, tx, ingredient, "deleted")
	})
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, ingredient *models.Ingredient, action string) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventIngredientChanged,
		AggregateType: enums.AggregateIngredient,
		AggregateID:   ingredient.ID,
		Version:       1,
		Data: ChangedEvent{
			IngredientID: ingredient.ID,
			Name:         ingredient.Name,
			Action:       action,
		},
	})
}

func validateInput(input Input) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "ingredient name is required")
	}
	if input.UnitCost < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit cost cannot be negative")
	}
	if input.WastePercentage < 0 || input.WastePercentage > 100 {
		return pkgerrors.New(pkgerrors.CodeValidation, "waste percentage must be between 0 and 100")
	}
	return nil
}

func defaultUnit(unit string) string {
	trimmed := strings.TrimSpace(unit)
	if trimmed == "" {
		return "kg"
	}
	return trimmed
}
