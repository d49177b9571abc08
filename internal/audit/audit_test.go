package audit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project-service/internal/auth"
)

func newContext() echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/api/projects/x", nil)
	req.Header.Set(echo.HeaderXRealIP, "203.0.113.9")
	req.Header.Set("User-Agent", "admin-panel/1.0")
	rec := httptest.NewRecorder()
	rec.Header().Set(echo.HeaderXRequestID, "req-42")
	return e.NewContext(req, rec)
}

func TestNewEvent_Admin(t *testing.T) {
	c := newContext()
	c.Set(auth.ContextKeyAdminID, "admin-3")
	id := uuid.New()

	event := NewEvent(c, ResourceTypeProject, &id, ActionUpdate, StatusSuccess, map[string]any{"slug": "lake-view"})

	assert.Equal(t, "update_project", event.EventType)
	assert.Equal(t, ActorTypeAdmin, event.ActorType)
	require.NotNil(t, event.ActorID)
	assert.Equal(t, "admin-3", *event.ActorID)
	assert.Equal(t, &id, event.ResourceID)
	assert.Equal(t, "203.0.113.9", event.IPAddress)
	assert.Equal(t, "admin-panel/1.0", event.UserAgent)
	assert.Equal(t, "req-42", event.RequestID)
	assert.Equal(t, "lake-view", event.Metadata["slug"])
}

func TestNewEvent_System(t *testing.T) {
	event := NewEvent(newContext(), ResourceTypeProject, nil, ActionPurge, StatusFailure, nil)

	assert.Equal(t, ActorTypeSystem, event.ActorType)
	assert.Nil(t, event.ActorID)
	assert.Equal(t, "purge_project", event.EventType)
}

func TestNewEvent_ScrubsMetadata(t *testing.T) {
	event := NewEvent(newContext(), ResourceTypeProject, nil, ActionCreate, StatusFailure, map[string]any{
		"error": "connect: password=hunter2 host=db",
		"token": "abc",
	})

	assert.Equal(t, "connect: password=[REDACTED] host=db", event.Metadata["error"])
	assert.Equal(t, "[REDACTED]", event.Metadata["token"])
}
