package lineitems

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/conviteapp/convite-backend/internal/catalog"
	"github.com/conviteapp/convite-backend/internal/override"
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

type parameterSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

// Service is the UI-facing surface for one event's line items. Every mutation
// replaces the full family in one transaction and journals a change
// notification with it.
type Service interface {
	List(ctx context.Context, eventID uuid.UUID, family enums.ItemFamily) ([]models.LineItem, error)
	GenerateFromCatalog(ctx context.Context, req Request) ([]models.LineItem, error)
	PreviewRecalculation(ctx context.Context, req Request) ([]models.LineItem, error)
	Recalculate(ctx context.Context, req Request) ([]models.LineItem, error)
	Save(ctx context.Context, req Request, items []models.LineItem) ([]models.LineItem, error)
	ToggleOverride(ctx context.Context, req Request, index int) ([]models.LineItem, error)
	AddManualItem(ctx context.Context, req Request, input ManualItemInput) ([]models.LineItem, error)
	RemoveItem(ctx context.Context, req Request, index int) ([]models.LineItem, error)
}

// Request identifies the family being operated on and the session doing it.
// SessionID travels in the outbox envelope so consumers can tell their own
// writes apart from another session's.
type Request struct {
	EventID   uuid.UUID
	Family    enums.ItemFamily
	SessionID string
}

// ManualItemInput is a hand-entered row outside the catalog.
type ManualItemInput struct {
	Category  string
	Name      string
	Quantity  int
	UnitPrice float64
	Notes     *string
}

// ItemsReplacedEvent is the outbox payload for a completed family replace.
type ItemsReplacedEvent struct {
	EventID   uuid.UUID        `json:"event_id"`
	Family    enums.ItemFamily `json:"family"`
	ItemCount int              `json:"item_count"`
}

type service struct {
	repo   Repository
	params parameterSource
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds a line-items service with the required dependencies.
func NewService(repo Repository, params parameterSource, tx txRunner, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("line items repository required")
	}
	if params == nil {
		return nil, fmt.Errorf("parameter source required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, params: params, tx: tx, outbox: outboxSvc}, nil
}

func (s *service) List(ctx context.Context, eventID uuid.UUID, family enums.ItemFamily) ([]models.LineItem, error) {
	if err := checkScope(eventID, family); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, eventID, family)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list line items")
	}
	return rows, nil
}

// GenerateFromCatalog replaces the family with freshly derived rows, one per
// catalog entry, using the event's current guest count and bar duration.
func (s *service) GenerateFromCatalog(ctx context.Context, req Request) ([]models.LineItem, error) {
	if err := checkScope(req.EventID, req.Family); err != nil {
		return nil, err
	}
	event, err := s.loadEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	duration := event.BarDurationHours()
	items := make([]models.LineItem, 0)
	for _, entry := range catalog.ByFamily(req.Family) {
		items = append(items, models.LineItem{
			Category:  entry.Category,
			Name:      entry.Name,
			Quantity:  catalog.Derive(entry, event.GuestCount, duration),
			UnitPrice: entry.UnitPrice,
		})
	}
	return s.replaceAll(ctx, req, items)
}

// PreviewRecalculation re-derives the quantity of every non-overridden row
// that still matches a catalog entry, without persisting anything. Overridden
// rows and manual rows keep their quantities.
func (s *service) PreviewRecalculation(ctx context.Context, req Request) ([]models.LineItem, error) {
	if err := checkScope(req.EventID, req.Family); err != nil {
		return nil, err
	}
	event, err := s.loadEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	current, err := s.repo.List(ctx, req.EventID, req.Family)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list line items")
	}

	duration := event.BarDurationHours()
	for idx, item := range current {
		if item.IsOverride {
			continue
		}
		entry, ok := catalog.Lookup(req.Family, item.Category, item.Name)
		if !ok {
			continue
		}
		current[idx].Quantity = catalog.Derive(entry, event.GuestCount, duration)
	}
	return current, nil
}

// Recalculate computes the preview and persists it as a full-family replace.
func (s *service) Recalculate(ctx context.Context, req Request) ([]models.LineItem, error) {
	items, err := s.PreviewRecalculation(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.replaceAll(ctx, req, items)
}

func (s *service) Save(ctx context.Context, req Request, items []models.LineItem) ([]models.LineItem, error) {
	if err := checkScope(req.EventID, req.Family); err != nil {
		return nil, err
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}
	return s.replaceAll(ctx, req, items)
}

// ToggleOverride flips the manual-quantity flag on the row at index. Marking
// adds the safety margin on top of the current quantity and records the base
// in the notes tag; clearing restores the recorded base.
func (s *service) ToggleOverride(ctx context.Context, req Request, index int) ([]models.LineItem, error) {
	if err := checkScope(req.EventID, req.Family); err != nil {
		return nil, err
	}
	current, err := s.repo.List(ctx, req.EventID, req.Family)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list line items")
	}
	if index < 0 || index >= len(current) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("no line item at position %d", index+1))
	}

	if current[index].IsOverride {
		current[index] = override.Clear(current[index])
	} else {
		current[index] = override.Mark(current[index])
	}
	return s.replaceAll(ctx, req, current)
}

func (s *service) AddManualItem(ctx context.Context, req Request, input ManualItemInput) ([]models.LineItem, error) {
	if err := checkScope(req.EventID, req.Family); err != nil {
		return nil, err
	}
	item := models.LineItem{
		Category:  strings.TrimSpace(input.Category),
		Name:      strings.TrimSpace(input.Name),
		Quantity:  input.Quantity,
		UnitPrice: input.UnitPrice,
		Notes:     input.Notes,
	}
	if item.Category == "" {
		item.Category = "Otros"
	}
	if err := validateItems([]models.LineItem{item}); err != nil {
		return nil, err
	}

	current, err := s.repo.List(ctx, req.EventID, req.Family)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list line items")
	}
	current = append(current, item)
	return s.replaceAll(ctx, req, current)
}

func (s *service) RemoveItem(ctx context.Context, req Request, index int) ([]models.LineItem, error) {
	if err := checkScope(req.EventID, req.Family); err != nil {
		return nil, err
	}
	current, err := s.repo.List(ctx, req.EventID, req.Family)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list line items")
	}
	if index < 0 || index >= len(current) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("no line item at position %d", index+1))
	}
	current = append(current[:index], current[index+1:]...)
	return s.replaceAll(ctx, req, current)
}

// replaceAll swaps the full family inside one transaction. The outbox row is
// written in the same transaction, so the change and its notification commit
// or roll back together.
func (s *service) replaceAll(ctx context.Context, req Request, items []models.LineItem) ([]models.LineItem, error) {
	var persisted []models.LineItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		persisted, err = s.repo.WithTx(tx).Replace(ctx, req.EventID, req.Family, items)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace line items")
		}

		var session *outbox.SessionRef
		if req.SessionID != "" {
			session = &outbox.SessionRef{SessionID: req.SessionID}
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventLineItemsReplaced,
			AggregateType: enums.AggregateLineItemSet,
			AggregateID:   req.EventID,
			Session:       session,
			Version:       1,
			Data: ItemsReplacedEvent{
				EventID:   req.EventID,
				Family:    req.Family,
				ItemCount: len(persisted),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return persisted, nil
}

func (s *service) loadEvent(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	event, err := s.params.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load event")
	}
	return event, nil
}

func checkScope(eventID uuid.UUID, family enums.ItemFamily) error {
	if eventID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "event id required")
	}
	if !family.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid item family %q", family))
	}
	return nil
}
