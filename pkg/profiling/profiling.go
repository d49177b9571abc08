package profiling

import (
	"net/http"
	"net/http/pprof"
	"runtime"

	"github.com/labstack/echo/v4"
)

const bytesPerMB = 1024 * 1024

var namedProfiles = []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"}

// Register mounts the pprof endpoints on g. Callers decide who may reach
// the group.
func Register(g *echo.Group) {
	g.GET("/", echo.WrapHandler(http.HandlerFunc(pprof.Index)))
	g.GET("/cmdline", echo.WrapHandler(http.HandlerFunc(pprof.Cmdline)))
	g.GET("/profile", echo.WrapHandler(http.HandlerFunc(pprof.Profile)))
	g.GET("/symbol", echo.WrapHandler(http.HandlerFunc(pprof.Symbol)))
	g.GET("/trace", echo.WrapHandler(http.HandlerFunc(pprof.Trace)))
	for _, name := range namedProfiles {
		g.GET("/"+name, echo.WrapHandler(pprof.Handler(name)))
	}
}

// MemoryStats is the runtime snapshot reported by /health. Multipart
// submissions are buffered in memory, so heap size is the number operators
// watch.
type MemoryStats struct {
	AllocMB     float64 `json:"alloc_mb"`
	SysMB       float64 `json:"sys_mb"`
	HeapInUseMB float64 `json:"heap_in_use_mb"`
	NumGC       uint32  `json:"num_gc"`
	Goroutines  int     `json:"goroutines"`
}

func ReadMemoryStats() MemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemoryStats{
		AllocMB:     float64(m.Alloc) / bytesPerMB,
		SysMB:       float64(m.Sys) / bytesPerMB,
		HeapInUseMB: float64(m.HeapInuse) / bytesPerMB,
		NumGC:       m.NumGC,
		Goroutines:  runtime.NumGoroutine(),
	}
}
