// Package audit records book and training changes, and failed counter
// updates, as audit events.
package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/mrlokans/linebook/internal/database/audit"
	"github.com/mrlokans/linebook/internal/entities"
	"github.com/mrlokans/linebook/internal/logger"
)

const maxErrorLen = 500

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
	log  *logger.Logger
	wg   sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: logger.OrNop(log)}
}

// Log records a generic audit event.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(context.Background(), event); err != nil {
			s.log.Warn("failed to log audit event", "action", event.Action, "error", err)
		}
	}()
}

// Wait blocks until every pending LogAsync call has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// LogBookSave records a book write together with its line count change.
func (s *Service) LogBookSave(userID string, book entities.BookSummary, oldLineCount int, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventBookSave,
		Action:      "book_save",
		Description: "Saved book " + book.Name,
		EntityType:  "book",
		EntityID:    book.ID,
		Metadata: metadata(map[string]any{
			"line_count":     book.LineCount,
			"old_line_count": oldLineCount,
		}),
	}
	s.LogAsync(withStatus(event, err))
}

// LogBookDelete records a book deletion.
func (s *Service) LogBookDelete(userID, bookID string, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventBookDelete,
		Action:      "book_delete",
		Description: "Deleted book " + bookID,
		EntityType:  "book",
		EntityID:    bookID,
	}
	s.LogAsync(withStatus(event, err))
}

// LogCounterSync records the outcome of adjusting one training's total line
// count after a book changed.
func (s *Service) LogCounterSync(userID, trainingID, bookID string, delta int, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventCounterSync,
		Action:      "total_lines_increment",
		Description: "Adjusted total lines after book " + bookID + " changed",
		EntityType:  "training",
		EntityID:    trainingID,
		Metadata: metadata(map[string]any{
			"book_id": bookID,
			"delta":   delta,
		}),
	}
	s.LogAsync(withStatus(event, err))
}

// LogTraining records a training create, update or delete.
func (s *Service) LogTraining(userID, trainingID, action string, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventTraining,
		Action:      "training_" + action,
		Description: "Training " + trainingID + " " + action,
		EntityType:  "training",
		EntityID:    trainingID,
	}
	s.LogAsync(withStatus(event, err))
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(ctx context.Context, userID string, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, userID, limit, offset)
}

// GetEventsByType retrieves audit events filtered by type.
func (s *Service) GetEventsByType(ctx context.Context, eventType entities.AuditEventType, userID string, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsByType(ctx, eventType, userID, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

func withStatus(event *entities.AuditEvent, err error) *entities.AuditEvent {
	event.Status = entities.AuditStatusSuccess
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), maxErrorLen)
	}
	return event
}

func metadata(m map[string]any) string {
	b, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(b)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
