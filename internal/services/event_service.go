package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/oops"

	"github.com/isdelr/cabinet-be/internal/models"
)

// Event levels.
const (
	LevelInfo = "info"
	LevelWarn = "warn"
)

// DefaultEventLimit is used when a caller asks for a non-positive number of events.
const DefaultEventLimit = 50

// Event types with this prefix describe a user's saved recipes and are only
// listed back to that user.
const privateEventPrefix = "favorite."

const eventColumns = "id, type, level, message, username, created_at"

// EventServiceProvider defines the interface for the activity log.
type EventServiceProvider interface {
	CreateEvent(ctx context.Context, eventType, level, message string, username *string) error
	GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error)
	GetUserEvents(ctx context.Context, username string, limit int) ([]models.Event, error)
}

// EventService records catalogue activity in the events table.
type EventService struct {
	db  *sql.DB
	now func() time.Time
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db, now: time.Now}
}

// CreateEvent logs a new event to the database.
func (s *EventService) CreateEvent(ctx context.Context, eventType, level, message string, username *string) error {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Level:     level,
		Message:   message,
		Username:  username,
		CreatedAt: s.now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (id, type, level, message, username, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		event.ID, event.Type, event.Level, event.Message, event.Username, event.CreatedAt)
	if err != nil {
		return oops.Code("EVENT_CREATE_FAILED").With("type", eventType).Wrap(err)
	}
	return nil
}

// GetRecentEvents retrieves the most recent public events, newest first.
// Favorite activity is left out.
func (s *EventService) GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	return s.queryEvents(ctx, "WHERE type NOT LIKE ?", limit, privateEventPrefix+"%")
}

// GetUserEvents retrieves the most recent events caused by username, including
// favorite activity, newest first.
func (s *EventService) GetUserEvents(ctx context.Context, username string, limit int) ([]models.Event, error) {
	return s.queryEvents(ctx, "WHERE username = ?", limit, username)
}

func (s *EventService) queryEvents(ctx context.Context, where string, limit int, args ...any) ([]models.Event, error) {
	if limit <= 0 {
		limit = DefaultEventLimit
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events "+where+" ORDER BY created_at DESC, rowid DESC LIMIT ?",
		append(args, limit)...)
	if err != nil {
		return nil, oops.Code("EVENT_LIST_FAILED").Wrap(err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		var username sql.NullString
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &username, &event.CreatedAt); err != nil {
			return nil, oops.Code("EVENT_LIST_FAILED").Wrap(err)
		}
		if username.Valid {
			event.Username = &username.String
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("EVENT_LIST_FAILED").Wrap(err)
	}
	return events, nil
}

// recordEvent writes an activity entry. Failures are logged, not returned.
func recordEvent(ctx context.Context, events EventServiceProvider, eventType, level, message, identity string) {
	if events == nil {
		return
	}
	var username *string
	if identity != "" {
		username = &identity
	}
	if err := events.CreateEvent(ctx, eventType, level, message, username); err != nil {
		log.Warn().Err(err).Str("type", eventType).Msg("Failed to record event")
	}
}
