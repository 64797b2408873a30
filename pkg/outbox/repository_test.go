package outbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/conviteapp/convite-backend/pkg/db/models"
	"github.com/conviteapp/convite-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	err = conn.Exec(`CREATE TABLE outbox_events (
		id             text PRIMARY KEY,
		event_type     text NOT NULL,
		aggregate_type text NOT NULL,
		aggregate_id   text NOT NULL,
		payload        text NOT NULL,
		created_at     datetime,
		published_at   datetime,
		attempt_count  integer NOT NULL DEFAULT 0,
		last_error     text
	)`).Error
	require.NoError(t, err)
	return conn
}

func testEvent(aggregateID uuid.UUID) models.OutboxEvent {
	return models.OutboxEvent{
		EventType:     enums.EventParametersUpdated,
		AggregateType: enums.AggregateEvent,
		AggregateID:   aggregateID,
		Payload:       json.RawMessage(`{"version":1}`),
	}
}

func TestInsertAssignsID(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)

	err := repo.Insert(conn, testEvent(uuid.New()))
	require.NoError(t, err)

	var rows []models.OutboxEvent
	require.NoError(t, conn.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.NotEqual(t, uuid.Nil, rows[0].ID)
}

func TestInsertRequiresTransaction(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	err := repo.Insert(nil, testEvent(uuid.New()))
	assert.Error(t, err)
}

func TestFetchUnpublishedSkipsExhausted(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)

	fresh := testEvent(uuid.New())
	require.NoError(t, repo.Insert(conn, fresh))

	exhausted := testEvent(uuid.New())
	exhausted.ID = uuid.New()
	exhausted.AttemptCount = 10
	require.NoError(t, conn.Create(&exhausted).Error)

	rows, err := repo.FetchUnpublished(50, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, fresh.AggregateID, rows[0].AggregateID)
}

func TestMarkPublishedExcludesFromFetch(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)

	require.NoError(t, repo.Insert(conn, testEvent(uuid.New())))

	rows, err := repo.FetchUnpublished(50, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NoError(t, repo.MarkPublished(rows[0].ID))

	rows, err = repo.FetchUnpublished(50, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMarkFailedIncrementsAttempts(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)

	require.NoError(t, repo.Insert(conn, testEvent(uuid.New())))

	rows, err := repo.FetchUnpublished(50, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NoError(t, repo.MarkFailed(rows[0].ID, errors.New("broker unavailable")))
	require.NoError(t, repo.MarkFailed(rows[0].ID, errors.New("broker unavailable")))

	var row models.OutboxEvent
	require.NoError(t, conn.First(&row, "id = ?", rows[0].ID).Error)
	assert.Equal(t, 2, row.AttemptCount)
	require.NotNil(t, row.LastError)
	assert.Equal(t, "broker unavailable", *row.LastError)
}
