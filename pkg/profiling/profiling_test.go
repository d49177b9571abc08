package profiling

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRegister(t *testing.T) {
	e := echo.New()
	Register(e.Group("/debug/pprof"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/goroutine?debug=1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "goroutine")
}

func TestReadMemoryStats(t *testing.T) {
	stats := ReadMemoryStats()
	assert.Positive(t, stats.SysMB)
	assert.Positive(t, stats.Goroutines)
}
