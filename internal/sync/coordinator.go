// Package sync keeps every session's line items consistent with the event's
// live parameters. Push notifications and the visibility poll both funnel into
// one coalescing work queue, so at most one recompute-and-persist runs per
// event at a time.
package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/conviteapp/convite-backend/internal/lineitems"
	"github.com/conviteapp/convite-backend/pkg/db/models"
	"github.com/conviteapp/convite-backend/pkg/enums"
	"github.com/conviteapp/convite-backend/pkg/logger"
	"github.com/conviteapp/convite-backend/pkg/metrics"
)

// TriggerSource labels which path requested a recompute.
type TriggerSource string

const (
	SourcePush TriggerSource = "push"
	SourcePoll TriggerSource = "poll"
)

// Trigger is one recompute request for one event.
type Trigger struct {
	EventID uuid.UUID
	Source  TriggerSource
}

type recalculator interface {
	PreviewRecalculation(ctx context.Context, req lineitems.Request) ([]models.LineItem, error)
	Save(ctx context.Context, req lineitems.Request, items []models.LineItem) ([]models.LineItem, error)
}

type parameterSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

type eventIDSource interface {
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

type lastKnown struct {
	guestCount int
	duration   int
}

// Coordinator drains the trigger queue with a single worker. Duplicate
// triggers for an event already queued are coalesced instead of stacking up.
type Coordinator struct {
	recalc  recalculator
	params  parameterSource
	metrics *metrics.SyncMetrics
	logg    *logger.Logger

	mu      gosync.Mutex
	pending map[uuid.UUID]Trigger
	order   []uuid.UUID
	states  map[uuid.UUID]enums.SyncState
	known   map[uuid.UUID]lastKnown
	watched map[uuid.UUID]bool
	editing bool
	visible bool
	wake    chan struct{}
}

// NewCoordinator builds the sync coordinator.
func NewCoordinator(recalc recalculator, params parameterSource, syncMetrics *metrics.SyncMetrics, logg *logger.Logger) (*Coordinator, error) {
	if recalc == nil {
		return nil, fmt.Errorf("recalculator required")
	}
	if params == nil {
		return nil, fmt.Errorf("parameter source required")
	}
	if syncMetrics == nil {
		return nil, fmt.Errorf("sync metrics required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Coordinator{
		recalc:  recalc,
		params:  params,
		metrics: syncMetrics,
		logg:    logg,
		pending: map[uuid.UUID]Trigger{},
		states:  map[uuid.UUID]enums.SyncState{},
		known:   map[uuid.UUID]lastKnown{},
		watched: map[uuid.UUID]bool{},
		visible: true,
		wake:    make(chan struct{}, 1),
	}, nil
}

// Trigger enqueues a recompute request. Non-blocking; a trigger for an event
// that is already queued is coalesced into the existing token.
func (c *Coordinator) Trigger(trigger Trigger) {
	if trigger.EventID == uuid.Nil {
		return
	}
	c.mu.Lock()
	if _, queued := c.pending[trigger.EventID]; queued {
		c.mu.Unlock()
		c.metrics.IncCoalesced(string(trigger.Source))
		return
	}
	c.pending[trigger.EventID] = trigger
	c.order = append(c.order, trigger.EventID)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Watch registers an event for the poll path. The push path needs no
// registration; it carries its own event id.
func (c *Coordinator) Watch(eventID uuid.UUID) {
	if eventID == uuid.Nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watched[eventID] = true
}

// SeedWatch registers every existing event for the poll path. The worker
// calls this once at startup; the change consumer keeps the set current for
// events created afterwards.
func (c *Coordinator) SeedWatch(ctx context.Context, source eventIDSource) error {
	ids, err := source.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("listing events to watch: %w", err)
	}
	for _, id := range ids {
		c.Watch(id)
	}
	return nil
}

// Unwatch drops an event from the poll path and forgets its cached state.
// Sessions call this on teardown, together with unsubscribing from push,
// so stale callbacks cannot touch another event's items.
func (c *Coordinator) Unwatch(eventID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.watched, eventID)
	delete(c.known, eventID)
	delete(c.states, eventID)
}

// Watched returns the events currently registered for polling.
func (c *Coordinator) Watched() []uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]uuid.UUID, 0, len(c.watched))
	for id := range c.watched {
		out = append(out, id)
	}
	return out
}

// SetEditing marks whether a manual edit is in progress. Editing suppresses
// the poll path only; pushes still go through.
func (c *Coordinator) SetEditing(editing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editing = editing
}

// SetVisible marks whether the owning surface is foreground.
func (c *Coordinator) SetVisible(visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = visible
}

// ShouldPoll reports whether the poll path is currently allowed to fire.
func (c *Coordinator) ShouldPoll() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible && !c.editing
}

// StateFor reports where an event's pipeline currently is.
func (c *Coordinator) StateFor(eventID uuid.UUID) enums.SyncState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if state, ok := c.states[eventID]; ok {
		return state
	}
	return enums.SyncIdle
}

// Run drains the queue until the context is canceled. Cancellation tears the
// worker down together with whichever trigger sources share the context.
func (c *Coordinator) Run(ctx context.Context) error {
	for {
		trigger, ok := c.next()
		if !ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-c.wake:
				continue
			}
		}
		c.handle(ctx, trigger)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Coordinator) next() (Trigger, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.order) > 0 {
		id := c.order[0]
		c.order = c.order[1:]
		trigger, ok := c.pending[id]
		if !ok {
			continue
		}
		delete(c.pending, id)
		return trigger, true
	}
	return Trigger{}, false
}

// handle runs one recompute. Parameters are re-read first; when neither the
// guest count nor the bar duration moved since the last pass, persistence is
// skipped entirely.
func (c *Coordinator) handle(ctx context.Context, trigger Trigger) {
	start := time.Now()
	source := string(trigger.Source)
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"event_id": trigger.EventID.String(),
		"trigger":  source,
	})

	c.setState(trigger.EventID, enums.SyncRecalculating)
	defer c.setState(trigger.EventID, enums.SyncIdle)

	event, err := c.params.FindByID(ctx, trigger.EventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.logg.Warn(logCtx, "event gone, dropping trigger")
			c.Unwatch(trigger.EventID)
			return
		}
		c.logg.Error(logCtx, "failed to read parameters", err)
		c.metrics.IncFailure(source)
		return
	}

	current := lastKnown{guestCount: event.GuestCount, duration: event.BarDurationHours()}
	if previous, seen := c.lastKnownFor(trigger.EventID); seen && previous == current {
		c.logg.Info(logCtx, "parameters unchanged, skipping recompute")
		c.rememberKnown(trigger.EventID, current)
		return
	}

	families := []enums.ItemFamily{enums.FamilyBeverage, enums.FamilySupply, enums.FamilyEquipment}
	previews := make(map[enums.ItemFamily][]models.LineItem, len(families))
	for _, family := range families {
		items, err := c.recalc.PreviewRecalculation(ctx, lineitems.Request{
			EventID:   trigger.EventID,
			Family:    family,
			SessionID: syncSessionID,
		})
		if err != nil {
			c.logg.Error(logCtx, "recalculation failed", err)
			c.metrics.IncFailure(source)
			return
		}
		previews[family] = items
	}

	c.setState(trigger.EventID, enums.SyncPersisting)
	for _, family := range families {
		_, err := c.recalc.Save(ctx, lineitems.Request{
			EventID:   trigger.EventID,
			Family:    family,
			SessionID: syncSessionID,
		}, previews[family])
		if err != nil {
			c.logg.Error(logCtx, "persisting recalculated items failed", err)
			c.metrics.IncFailure(source)
			return
		}
	}

	c.rememberKnown(trigger.EventID, current)
	c.metrics.IncSuccess(source)
	c.metrics.ObserveDuration(source, time.Since(start))
	c.logg.Info(logCtx, "line items recalculated")
}

// syncSessionID identifies the worker's own writes in outbox envelopes, so the
// replace events it causes are never mistaken for another session's edits.
const syncSessionID = "sync-worker"

func (c *Coordinator) setState(eventID uuid.UUID, state enums.SyncState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if state == enums.SyncIdle {
		delete(c.states, eventID)
		return
	}
	c.states[eventID] = state
}

func (c *Coordinator) lastKnownFor(eventID uuid.UUID) (lastKnown, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	known, ok := c.known[eventID]
	return known, ok
}

func (c *Coordinator) rememberKnown(eventID uuid.UUID, known lastKnown) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.known[eventID] = known
}
