package audit

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/linebook/internal/database"
	"github.com/mrlokans/linebook/internal/entities"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewDatabase(database.Options{
		Path:   filepath.Join(t.TempDir(), "audit.db"),
		Silent: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.DB)
}

func TestRepository_LogEvent(t *testing.T) {
	repo := setupTestRepo(t)

	event := &entities.AuditEvent{
		UserID:      "user-1",
		EventType:   entities.AuditEventBookSave,
		Action:      "book_update",
		Description: "Saved book Sicilian",
		EntityType:  "book",
		EntityID:    "sicilian",
		Status:      entities.AuditStatusSuccess,
	}

	require.NoError(t, repo.LogEvent(context.Background(), event))
	assert.NotZero(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestRepository_GetEvents(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		eventType := entities.AuditEventBookSave
		if i%3 == 0 {
			eventType = entities.AuditEventCounterSync
		}
		require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{
			UserID:    "user-1",
			EventType: eventType,
			Action:    fmt.Sprintf("action_%d", i),
			Status:    entities.AuditStatusSuccess,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{UserID: "user-2", EventType: entities.AuditEventBookDelete}))

	t.Run("paginates newest first", func(t *testing.T) {
		events, total, err := repo.GetEvents(ctx, "user-1", 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)
		require.Len(t, events, 10)
		assert.Equal(t, "action_14", events[0].Action)

		events, _, err = repo.GetEvents(ctx, "user-1", 10, 10)
		require.NoError(t, err)
		assert.Len(t, events, 5)
	})

	t.Run("all users", func(t *testing.T) {
		_, total, err := repo.GetEvents(ctx, "", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(16), total)
	})

	t.Run("by type", func(t *testing.T) {
		events, total, err := repo.GetEventsByType(ctx, entities.AuditEventCounterSync, "user-1", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		for _, e := range events {
			assert.Equal(t, entities.AuditEventCounterSync, e.EventType)
		}
	})
}

func TestRepository_DeleteOldEvents(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{UserID: "u", Action: "old", CreatedAt: time.Now().Add(-48 * time.Hour)}))
	require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{UserID: "u", Action: "new"}))

	deleted, err := repo.DeleteOldEvents(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	events, total, err := repo.GetEvents(ctx, "u", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "new", events[0].Action)
}
