package services

import (
	"context"
	"time"

	"github.com/mrlokans/linebook/internal/entities"
	"github.com/mrlokans/linebook/internal/logger"
)

// RecentActivity is an activity entry with its age at the time of reading.
type RecentActivity struct {
	entities.TrainingActivity
	SinceMs int64 `json:"since_ms"`
}

// ActivityService records training sessions and reads them back for display.
type ActivityService struct {
	store        ActivityStore
	defaultLimit int
	log          *logger.Logger
}

// NewActivityService creates an ActivityService. defaultLimit applies when
// Recent is called with a non-positive limit.
func NewActivityService(store ActivityStore, defaultLimit int, log *logger.Logger) *ActivityService {
	return &ActivityService{store: store, defaultLimit: defaultLimit, log: logger.OrNop(log)}
}

// Record stores one finished session. A zero timestamp is set to now.
func (s *ActivityService) Record(ctx context.Context, userID string, a *entities.TrainingActivity, now time.Time) error {
	if a.Timestamp == 0 {
		a.Timestamp = now.UnixMilli()
	}
	return s.store.PutActivity(ctx, userID, a)
}

// Recent lists the latest activity of a user and how long ago each entry
// happened. Entries stamped in the future are moved to now along the way.
func (s *ActivityService) Recent(ctx context.Context, userID string, limit int, now time.Time) ([]RecentActivity, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	list, err := s.store.ListActivity(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	out := make([]RecentActivity, 0, len(list))
	for i := range list {
		// Several future entries all move to the same now and share one key;
		// only the last one rewritten survives in storage.
		since := s.TimeSince(ctx, userID, &list[i], now)
		out = append(out, RecentActivity{TrainingActivity: list[i], SinceMs: since.Milliseconds()})
	}
	return out, nil
}

// TimeSince returns how long ago a happened.
//
// A timestamp later than now comes from a client with a wrong clock. It is
// rewritten to now in storage and on a itself, so a second call with the
// same value does nothing. A failed rewrite is logged and left for the next
// read.
func (s *ActivityService) TimeSince(ctx context.Context, userID string, a *entities.TrainingActivity, now time.Time) time.Duration {
	current := now.UnixMilli()
	if a.Timestamp > current {
		if err := s.store.UpdateActivityTimestamp(ctx, userID, a, current); err != nil {
			s.log.Warn("failed to correct future activity timestamp",
				"user_id", userID, "timestamp", a.Timestamp, "now", current, "error", err)
			return 0
		}
		s.log.Debug("corrected future activity timestamp",
			"user_id", userID, "from", a.Timestamp, "to", current)
		a.Timestamp = current
	}
	return time.Duration(current-a.Timestamp) * time.Millisecond
}
