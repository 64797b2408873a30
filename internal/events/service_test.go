package events

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
	createFn   func(ctx context.Context, event *models.Event) (*models.Event, error)
	findByIDFn func(ctx context.Context, id uuid.UUID) (*models.Event, error)
	updateFn   func(ctx context.Context, id uuid.UUID, updates map[string]any) error
	deleteFn   func(ctx context.Context, id uuid.UUID) error
	listFn     func(ctx context.Context, params pagination.Params) (*EventList, error)
	listIDsFn  func(ctx context.Context) ([]uuid.UUID, error)
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	return s.createFn(ctx, event)
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return s.findByIDFn(ctx, id)
}

func (s *stubRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return s.updateFn(ctx, id, updates)
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteFn(ctx, id)
}

func (s *stubRepo) List(ctx context.Context, params pagination.Params) (*EventList, error) {
	return s.listFn(ctx, params)
}

func (s *stubRepo) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	if s.listIDsFn != nil {
		return s.listIDsFn(ctx)
	}
	return nil, nil
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

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, stubTxRunner{}, &stubOutbox{})
	assert.Error(t, err)

	_, err = NewService(&stubRepo{}, nil, &stubOutbox{})
	assert.Error(t, err)

	_, err = NewService(&stubRepo{}, stubTxRunner{}, nil)
	assert.Error(t, err)
}

func TestCreateValidation(t *testing.T) {
	svc, err := NewService(&stubRepo{}, stubTxRunner{}, &stubOutbox{})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInput{Name: "  "})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Create(context.Background(), CreateInput{Name: "Boda Ana", GuestCount: -1})
	assertCode(t, err, pkgerrors.CodeValidation)

	hours := 0
	_, err = svc.Create(context.Background(), CreateInput{Name: "Boda Ana", BarHours: &hours})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateTrimsName(t *testing.T) {
	repo := &stubRepo{
		createFn: func(ctx context.Context, event *models.Event) (*models.Event, error) {
			event.ID = uuid.New()
			return event, nil
		},
	}
	svc, err := NewService(repo, stubTxRunner{}, &stubOutbox{})
	require.NoError(t, err)

	created, err := svc.Create(context.Background(), CreateInput{Name: "  Boda Ana  ", GuestCount: 150})
	require.NoError(t, err)
	assert.Equal(t, "Boda Ana", created.Name)
	assert.Equal(t, 150, created.GuestCount)
}

func TestGetMapsRecordNotFound(t *testing.T) {
	repo := &stubRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Event, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc, err := NewService(repo, stubTxRunner{}, &stubOutbox{})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestUpdateParametersEmitsWhenGuestCountChanges(t *testing.T) {
	id := uuid.New()
	stored := &models.Event{ID: id, Name: "Boda Ana", GuestCount: 150}
	repo := &stubRepo{
		findByIDFn: func(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
			copied := *stored
			return &copied, nil
		},
		updateFn: func(ctx context.Context, eventID uuid.UUID, updates map[string]any) error {
			if guests, ok := updates["guest_count"]; ok {
				stored.GuestCount = guests.(int)
			}
			return nil
		},
	}
	sink := &stubOutbox{}
	svc, err := NewService(repo, stubTxRunner{}, sink)
	require.NoError(t, err)

	guests := 175
	updated, err := svc.UpdateParameters(context.Background(), UpdateParametersInput{
		EventID:    id,
		SessionID:  "session-a",
		GuestCount: &guests,
	})
	require.NoError(t, err)
	assert.Equal(t, 175, updated.GuestCount)

	require.Len(t, sink.events, 1)
	payload, ok := sink.events[0].Data.(ParametersUpdatedEvent)
	require.True(t, ok)
	assert.Equal(t, 175, payload.GuestCount)
	require.NotNil(t, sink.events[0].Session)
	assert.Equal(t, "session-a", sink.events[0].Session.SessionID)
}

func TestUpdateParametersSkipsEmitWhenUnchanged(t *testing.T) {
	id := uuid.New()
	stored := &models.Event{ID: id, Name: "Boda Ana", GuestCount: 150}
	repo := &stubRepo{
		findByIDFn: func(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
			copied := *stored
			return &copied, nil
		},
		updateFn: func(ctx context.Context, eventID uuid.UUID, updates map[string]any) error {
			return nil
		},
	}
	sink := &stubOutbox{}
	svc, err := NewService(repo, stubTxRunner{}, sink)
	require.NoError(t, err)

	guests := 150
	_, err = svc.UpdateParameters(context.Background(), UpdateParametersInput{
		EventID:    id,
		GuestCount: &guests,
	})
	require.NoError(t, err)
	assert.Empty(t, sink.events)
}

func TestUpdateParametersBarTimingChangeEmits(t *testing.T) {
	id := uuid.New()
	start, end := "22:00", "02:00"
	stored := &models.Event{ID: id, Name: "Boda Ana", GuestCount: 150}
	repo := &stubRepo{
		findByIDFn: func(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
			copied := *stored
			return &copied, nil
		},
		updateFn: func(ctx context.Context, eventID uuid.UUID, updates map[string]any) error {
			if v, ok := updates["bar_start"]; ok {
				s := v.(string)
				stored.BarStart = &s
			}
			if v, ok := updates["bar_end"]; ok {
				s := v.(string)
				stored.BarEnd = &s
			}
			return nil
		},
	}
	sink := &stubOutbox{}
	svc, err := NewService(repo, stubTxRunner{}, sink)
	require.NoError(t, err)

	updated, err := svc.UpdateParameters(context.Background(), UpdateParametersInput{
		EventID:  id,
		BarStart: &start,
		BarEnd:   &end,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.BarDurationHours())

	require.Len(t, sink.events, 1)
	payload := sink.events[0].Data.(ParametersUpdatedEvent)
	assert.Equal(t, 4, payload.BarDurationHours)
}

func TestUpdateParametersValidation(t *testing.T) {
	svc, err := NewService(&stubRepo{}, stubTxRunner{}, &stubOutbox{})
	require.NoError(t, err)

	guests := -5
	_, err = svc.UpdateParameters(context.Background(), UpdateParametersInput{
		EventID:    uuid.New(),
		GuestCount: &guests,
	})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.UpdateParameters(context.Background(), UpdateParametersInput{})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, code, appErr.Code())
}
