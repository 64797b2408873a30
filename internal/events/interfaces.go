package events

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/conviteapp/convite-backend/pkg/db/models"
	"github.com/conviteapp/convite-backend/pkg/pagination"
)

// Repository defines persistence operations for the events table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params pagination.Params) (*EventList, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

// EventList is one cursor page of events.
type EventList struct {
	Events     []models.Event `json:"events"`
	NextCursor *string        `json:"next_cursor,omitempty"`
}
