package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

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

// Service exposes event CRUD plus the parameter-update path every derived
// quantity depends on.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Event, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Event, error)
	List(ctx context.Context, params pagination.Params) (*EventList, error)
	UpdateParameters(ctx context.Context, input UpdateParametersInput) (*models.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// CreateInput carries the fields accepted on event creation.
type CreateInput struct {
	Name       string
	Venue      *string
	HeldOn     *time.Time
	GuestCount int
	BarStart   *string
	BarEnd     *string
	BarHours   *int
	Notes      *string
}

// UpdateParametersInput is a patch of the live parameters. Nil fields are
// left untouched.
type UpdateParametersInput struct {
	EventID    uuid.UUID
	SessionID  string
	GuestCount *int
	BarStart   *string
	BarEnd     *string
	BarHours   *int
}

// ParametersUpdatedEvent is the outbox payload emitted when either live
// parameter changes.
type ParametersUpdatedEvent struct {
	EventID          uuid.UUID `json:"event_id"`
	GuestCount       int       `json:"guest_count"`
	BarDurationHours int       `json:"bar_duration_hours"`
}

// NewService builds an events service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("events repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outboxSvc}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Event, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event name is required")
	}
	if input.GuestCount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest count cannot be negative")
	}
	if input.BarHours != nil && *input.BarHours < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bar hours must be at least 1")
	}

	event := &models.Event{
		Name:       strings.TrimSpace(input.Name),
		Venue:      input.Venue,
		HeldOn:     input.HeldOn,
		GuestCount: input.GuestCount,
		BarStart:   input.BarStart,
		BarEnd:     input.BarEnd,
		BarHours:   input.BarHours,
		Notes:      input.Notes,
	}
	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create event")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id required")
	}
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load event")
	}
	return event, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*EventList, error) {
	list, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list events")
	}
	return list, nil
}

// UpdateParameters patches guest count and bar timing. When the effective
// parameters change, an outbox notification goes out in the same transaction
// as the row update so watching sessions recompute.
func (s *service) UpdateParameters(ctx context.Context, input UpdateParametersInput) (*models.Event, error) {
	if input.EventID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id required")
	}
	if input.GuestCount != nil && *input.GuestCount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest count cannot be negative")
	}
	if input.BarHours != nil && *input.BarHours < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bar hours must be at least 1")
	}

	var updated *models.Event
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		current, err := repo.FindByID(ctx, input.EventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load event")
		}

		updates := map[string]any{}
		if input.GuestCount != nil {
			updates["guest_count"] = *input.GuestCount
		}
		if input.BarStart != nil {
			updates["bar_start"] = *input.BarStart
		}
		if input.BarEnd != nil {
			updates["bar_end"] = *input.BarEnd
		}
		if input.BarHours != nil {
			updates["bar_hours"] = *input.BarHours
		}
		if len(updates) == 0 {
			updated = current
			return nil
		}

		if err := repo.Update(ctx, input.EventID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update event parameters")
		}

		updated, err = repo.FindByID(ctx, input.EventID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload event")
		}

		if current.GuestCount == updated.GuestCount &&
			current.BarDurationHours() == updated.BarDurationHours() {
			return nil
		}

		var session *outbox.SessionRef
		if input.SessionID != "" {
			session = &outbox.SessionRef{SessionID: input.SessionID}
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventParametersUpdated,
			AggregateType: enums.AggregateEvent,
			AggregateID:   updated.ID,
			Session:       session,
			Version:       1,
			Data: ParametersUpdatedEvent{
				EventID:          updated.ID,
				GuestCount:       updated.GuestCount,
				BarDurationHours: updated.BarDurationHours(),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "event id required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete event")
	}
	return nil
}
