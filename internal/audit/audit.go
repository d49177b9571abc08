package audit

import (
	"context"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"project-service/internal/auth"
	"project-service/pkg/logger"
)

const (
	auditTable   = "audit_events"
	logTimeout   = 2 * time.Second
	defaultLimit = 100
)

// ActorType represents the type of entity performing an action
type ActorType string

const (
	ActorTypeAdmin  ActorType = "admin"
	ActorTypeSystem ActorType = "system"
)

// ResourceType represents the type of resource being acted upon
type ResourceType string

const (
	ResourceTypeProject ResourceType = "project"
)

// Action represents the action being performed
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionPurge  Action = "purge"
	ActionStatus Action = "status"
)

// Status represents the outcome of an action
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

type Event struct {
	ID           uuid.UUID      `json:"id"`
	EventType    string         `json:"eventType"`
	ActorType    ActorType      `json:"actorType"`
	ActorID      *string        `json:"actorId,omitempty"`
	ResourceType ResourceType   `json:"resourceType"`
	ResourceID   *uuid.UUID     `json:"resourceId,omitempty"`
	Action       Action         `json:"action"`
	Status       Status         `json:"status"`
	IPAddress    string         `json:"ipAddress"`
	UserAgent    string         `json:"userAgent"`
	RequestID    string         `json:"requestId"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

var columns = []string{
	"id", "event_type", "actor_type", "actor_id", "resource_type", "resource_id",
	"action", "status", "ip_address", "user_agent", "request_id", "metadata", "error_message", "created_at",
}

// Logger writes audit events to Postgres. Request-path logging is
// asynchronous and never fails the request.
type Logger struct {
	pool *pgxpool.Pool
	psql sq.StatementBuilderType
}

func NewLogger(pool *pgxpool.Pool) *Logger {
	return &Logger{
		pool: pool,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (l *Logger) Log(ctx context.Context, event *Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var metadataJSON []byte
	if event.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(event.Metadata)
		if err != nil {
			return err
		}
	}

	query, args, err := l.psql.Insert(auditTable).
		Columns(columns...).
		Values(
			event.ID, event.EventType, event.ActorType, event.ActorID, event.ResourceType, event.ResourceID,
			event.Action, event.Status, event.IPAddress, event.UserAgent, event.RequestID, metadataJSON,
			event.ErrorMessage, event.CreatedAt,
		).
		ToSql()
	if err != nil {
		return err
	}

	_, err = l.pool.Exec(ctx, query, args...)
	return err
}

// LogFromContext records a successful project action.
func (l *Logger) LogFromContext(c echo.Context, resourceID *uuid.UUID, action Action, metadata map[string]any) {
	l.logAsync(c, NewEvent(c, ResourceTypeProject, resourceID, action, StatusSuccess, metadata))
}

// LogError records a failed project action.
func (l *Logger) LogError(c echo.Context, resourceID *uuid.UUID, action Action, err error) {
	message := logger.SanitizeLogMessage(err.Error())
	event := NewEvent(c, ResourceTypeProject, resourceID, action, StatusFailure, map[string]any{
		"error": message,
	})
	event.ErrorMessage = message
	l.logAsync(c, event)
}

func (l *Logger) logAsync(c echo.Context, event *Event) {
	echoLogger := c.Logger()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), logTimeout)
	go func() {
		defer cancel()
		if err := l.Log(ctx, event); err != nil {
			echoLogger.Warnf("audit log failed: %v", err)
		}
	}()
}

// NewEvent builds an event from the request, taking the actor from the
// admin identity set by auth middleware.
func NewEvent(c echo.Context, resourceType ResourceType, resourceID *uuid.UUID, action Action, status Status, metadata map[string]any) *Event {
	event := &Event{
		EventType:    string(action) + "_" + string(resourceType),
		ActorType:    ActorTypeSystem,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Action:       action,
		Status:       status,
		IPAddress:    c.RealIP(),
		UserAgent:    c.Request().UserAgent(),
		RequestID:    c.Response().Header().Get(echo.HeaderXRequestID),
		Metadata:     logger.SanitizeMap(metadata),
	}

	if adminID, err := auth.GetAdminID(c); err == nil {
		event.ActorType = ActorTypeAdmin
		event.ActorID = &adminID
	}

	return event
}

type QueryFilter struct {
	ActorID    *string
	ResourceID *uuid.UUID
	Action     *Action
	Status     *Status
	StartTime  *time.Time
	EndTime    *time.Time
	Limit      int
	Offset     int
}

func (l *Logger) Query(ctx context.Context, filter QueryFilter) ([]*Event, error) {
	builder := l.psql.Select(columns...).From(auditTable).OrderBy("created_at DESC")

	if filter.ActorID != nil {
		builder = builder.Where(sq.Eq{"actor_id": *filter.ActorID})
	}
	if filter.ResourceID != nil {
		builder = builder.Where(sq.Eq{"resource_id": *filter.ResourceID})
	}
	if filter.Action != nil {
		builder = builder.Where(sq.Eq{"action": *filter.Action})
	}
	if filter.Status != nil {
		builder = builder.Where(sq.Eq{"status": *filter.Status})
	}
	if filter.StartTime != nil {
		builder = builder.Where(sq.GtOrEq{"created_at": *filter.StartTime})
	}
	if filter.EndTime != nil {
		builder = builder.Where(sq.LtOrEq{"created_at": *filter.EndTime})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	builder = builder.Limit(uint64(limit))
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := l.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		event := &Event{}
		var metadataJSON []byte

		err := rows.Scan(
			&event.ID,
			&event.EventType,
			&event.ActorType,
			&event.ActorID,
			&event.ResourceType,
			&event.ResourceID,
			&event.Action,
			&event.Status,
			&event.IPAddress,
			&event.UserAgent,
			&event.RequestID,
			&metadataJSON,
			&event.ErrorMessage,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &event.Metadata); err != nil {
				return nil, err
			}
		}

		events = append(events, event)
	}

	return events, rows.Err()
}
