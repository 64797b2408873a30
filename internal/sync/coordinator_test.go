package sync

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conviteapp/convite-backend/internal/lineitems"
	"github.com/conviteapp/convite-backend/pkg/db/models"
	"github.com/conviteapp/convite-backend/pkg/enums"
	"github.com/conviteapp/convite-backend/pkg/logger"
	"github.com/conviteapp/convite-backend/pkg/metrics"
)

type stubRecalc struct {
	calls     chan lineitems.Request
	saves     chan lineitems.Request
	err       error
	saveErr   error
	onPreview func(lineitems.Request)
	onSave    func(lineitems.Request)
}

func (s *stubRecalc) PreviewRecalculation(ctx context.Context, req lineitems.Request) ([]models.LineItem, error) {
	if s.onPreview != nil {
		s.onPreview(req)
	}
	if s.calls != nil {
		s.calls <- req
	}
	return nil, s.err
}

func (s *stubRecalc) Save(ctx context.Context, req lineitems.Request, items []models.LineItem) ([]models.LineItem, error) {
	if s.onSave != nil {
		s.onSave(req)
	}
	if s.saves != nil {
		s.saves <- req
	}
	return items, s.saveErr
}

type stubIDSource struct {
	ids []uuid.UUID
	err error
}

func (s *stubIDSource) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.ids, s.err
}

type stubParams struct {
	event *models.Event
	err   error
}

func (s *stubParams) FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	copied := *s.event
	return &copied, nil
}

func newTestCoordinator(t *testing.T, recalc recalculator, params parameterSource) *Coordinator {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	coordinator, err := NewCoordinator(recalc, params, metrics.NewSyncMetrics(prometheus.NewRegistry()), logg)
	require.NoError(t, err)
	return coordinator
}

func TestTriggerCoalescesDuplicates(t *testing.T) {
	coordinator := newTestCoordinator(t, &stubRecalc{}, &stubParams{event: &models.Event{}})
	eventID := uuid.New()

	coordinator.Trigger(Trigger{EventID: eventID, Source: SourcePush})
	coordinator.Trigger(Trigger{EventID: eventID, Source: SourcePoll})
	coordinator.Trigger(Trigger{EventID: eventID, Source: SourcePush})

	first, ok := coordinator.next()
	require.True(t, ok)
	assert.Equal(t, eventID, first.EventID)
	assert.Equal(t, SourcePush, first.Source)

	_, ok = coordinator.next()
	assert.False(t, ok, "duplicates must collapse into one token")
}

func TestTriggerKeepsDistinctEvents(t *testing.T) {
	coordinator := newTestCoordinator(t, &stubRecalc{}, &stubParams{event: &models.Event{}})
	eventA := uuid.New()
	eventB := uuid.New()

	coordinator.Trigger(Trigger{EventID: eventA, Source: SourcePush})
	coordinator.Trigger(Trigger{EventID: eventB, Source: SourcePush})

	first, ok := coordinator.next()
	require.True(t, ok)
	second, ok := coordinator.next()
	require.True(t, ok)
	assert.NotEqual(t, first.EventID, second.EventID)
}

func TestHandleRecalculatesEveryFamily(t *testing.T) {
	hours := 3
	event := &models.Event{ID: uuid.New(), GuestCount: 150, BarHours: &hours}
	recalc := &stubRecalc{calls: make(chan lineitems.Request, 9)}
	coordinator := newTestCoordinator(t, recalc, &stubParams{event: event})

	coordinator.handle(context.Background(), Trigger{EventID: event.ID, Source: SourcePush})

	families := map[enums.ItemFamily]bool{}
	for i := 0; i < 3; i++ {
		req := <-recalc.calls
		families[req.Family] = true
		assert.Equal(t, event.ID, req.EventID)
		assert.Equal(t, syncSessionID, req.SessionID)
	}
	assert.Len(t, families, 3)
	assert.Equal(t, enums.SyncIdle, coordinator.StateFor(event.ID))
}

func TestHandlePersistsEveryFamily(t *testing.T) {
	hours := 3
	event := &models.Event{ID: uuid.New(), GuestCount: 150, BarHours: &hours}
	recalc := &stubRecalc{calls: make(chan lineitems.Request, 9), saves: make(chan lineitems.Request, 9)}
	coordinator := newTestCoordinator(t, recalc, &stubParams{event: event})

	coordinator.handle(context.Background(), Trigger{EventID: event.ID, Source: SourcePush})

	families := map[enums.ItemFamily]bool{}
	for i := 0; i < 3; i++ {
		req := <-recalc.saves
		families[req.Family] = true
	}
	assert.Len(t, families, 3)
}

func TestHandleStateSequence(t *testing.T) {
	hours := 3
	event := &models.Event{ID: uuid.New(), GuestCount: 150, BarHours: &hours}
	recalc := &stubRecalc{}

	var coordinator *Coordinator
	var computeStates, persistStates []enums.SyncState
	recalc.onPreview = func(lineitems.Request) {
		computeStates = append(computeStates, coordinator.StateFor(event.ID))
	}
	recalc.onSave = func(lineitems.Request) {
		persistStates = append(persistStates, coordinator.StateFor(event.ID))
	}
	coordinator = newTestCoordinator(t, recalc, &stubParams{event: event})

	coordinator.handle(context.Background(), Trigger{EventID: event.ID, Source: SourcePush})

	require.Len(t, computeStates, 3)
	for _, state := range computeStates {
		assert.Equal(t, enums.SyncRecalculating, state)
	}
	require.Len(t, persistStates, 3)
	for _, state := range persistStates {
		assert.Equal(t, enums.SyncPersisting, state)
	}
	assert.Equal(t, enums.SyncIdle, coordinator.StateFor(event.ID))
}

func TestSeedWatchRegistersExistingEvents(t *testing.T) {
	coordinator := newTestCoordinator(t, &stubRecalc{}, &stubParams{event: &models.Event{}})
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	err := coordinator.SeedWatch(context.Background(), &stubIDSource{ids: ids})
	require.NoError(t, err)

	watched := coordinator.Watched()
	assert.ElementsMatch(t, ids, watched)
}

func TestSeedWatchPropagatesListError(t *testing.T) {
	coordinator := newTestCoordinator(t, &stubRecalc{}, &stubParams{event: &models.Event{}})

	err := coordinator.SeedWatch(context.Background(), &stubIDSource{err: assert.AnError})
	assert.Error(t, err)
	assert.Empty(t, coordinator.Watched())
}

func TestHandleSkipsWhenParametersUnchanged(t *testing.T) {
	hours := 3
	event := &models.Event{ID: uuid.New(), GuestCount: 150, BarHours: &hours}
	recalc := &stubRecalc{calls: make(chan lineitems.Request, 9)}
	coordinator := newTestCoordinator(t, recalc, &stubParams{event: event})

	coordinator.handle(context.Background(), Trigger{EventID: event.ID, Source: SourcePush})
	coordinator.handle(context.Background(), Trigger{EventID: event.ID, Source: SourcePoll})

	assert.Len(t, recalc.calls, 3, "second pass sees identical parameters and skips")
}

func TestHandleRecalculatesAfterGuestCountChange(t *testing.T) {
	hours := 3
	event := &models.Event{ID: uuid.New(), GuestCount: 150, BarHours: &hours}
	params := &stubParams{event: event}
	recalc := &stubRecalc{calls: make(chan lineitems.Request, 9)}
	coordinator := newTestCoordinator(t, recalc, params)

	coordinator.handle(context.Background(), Trigger{EventID: event.ID, Source: SourcePush})
	event.GuestCount = 175
	coordinator.handle(context.Background(), Trigger{EventID: event.ID, Source: SourcePush})

	assert.Len(t, recalc.calls, 6)
}

func TestShouldPollGating(t *testing.T) {
	coordinator := newTestCoordinator(t, &stubRecalc{}, &stubParams{event: &models.Event{}})

	assert.True(t, coordinator.ShouldPoll())

	coordinator.SetEditing(true)
	assert.False(t, coordinator.ShouldPoll(), "editing suppresses the poll")

	coordinator.SetEditing(false)
	coordinator.SetVisible(false)
	assert.False(t, coordinator.ShouldPoll(), "background surfaces do not poll")
}

func TestUnwatchForgetsCachedState(t *testing.T) {
	hours := 2
	event := &models.Event{ID: uuid.New(), GuestCount: 80, BarHours: &hours}
	recalc := &stubRecalc{calls: make(chan lineitems.Request, 9)}
	coordinator := newTestCoordinator(t, recalc, &stubParams{event: event})

	coordinator.Watch(event.ID)
	coordinator.handle(context.Background(), Trigger{EventID: event.ID, Source: SourcePoll})
	require.Len(t, recalc.calls, 3)

	coordinator.Unwatch(event.ID)
	assert.Empty(t, coordinator.Watched())

	// Re-watching starts from a clean slate, so the next trigger recomputes.
	coordinator.Watch(event.ID)
	coordinator.handle(context.Background(), Trigger{EventID: event.ID, Source: SourcePoll})
	assert.Len(t, recalc.calls, 6)
}

func TestRunDrainsQueueUntilCanceled(t *testing.T) {
	hours := 4
	event := &models.Event{ID: uuid.New(), GuestCount: 120, BarHours: &hours}
	recalc := &stubRecalc{calls: make(chan lineitems.Request, 9)}
	coordinator := newTestCoordinator(t, recalc, &stubParams{event: event})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- coordinator.Run(ctx) }()

	coordinator.Trigger(Trigger{EventID: event.ID, Source: SourcePush})

	for i := 0; i < 3; i++ {
		select {
		case <-recalc.calls:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for recalculation")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}
