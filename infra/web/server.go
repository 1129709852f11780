// Package web serves the live warehouse view and a JSON API over the latest
// simulation frame.
package web

import (
	"context"
	_ "embed"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/warebotics/warebot/core/logger"
	"github.com/warebotics/warebot/core/tasklog"
	"github.com/warebotics/warebot/dashboard"
	infralogger "github.com/warebotics/warebot/infra/logger"
	"github.com/warebotics/warebot/internal/eventbus"
	"github.com/warebotics/warebot/sim"
)

//go:embed index.html
var indexHTML []byte

// Server caches the newest snapshot and answers polling clients. The cache is
// replaced whole per frame, so handlers may keep reading a frame after the
// lock is released.
type Server struct {
	cfg   Config
	log   logger.Logger
	store tasklog.Store
	hist  *dashboard.Collector

	mu    sync.RWMutex
	snap  sim.Snapshot
	ready bool
}

// New returns a server. store may be nil when no task log is kept; hist may
// be nil when no throughput history is collected.
func New(cfg Config, store tasklog.Store, hist *dashboard.Collector, log logger.Logger) (*Server, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		store = tasklog.Nop{}
	}
	if log == nil {
		log = infralogger.NopLogger{}
	}
	return &Server{cfg: cfg, log: log, store: store, hist: hist}, nil
}

// Observe replaces the cached frame.
func (s *Server) Observe(snap sim.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.ready = true
	s.mu.Unlock()
}

// Handler builds the route table. Exposed separately so tests can drive it
// through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", s.handleIndex)
	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api")
	api.GET("/state", s.handleState)
	api.GET("/tasks", s.handleTasks)
	api.GET("/stats", s.handleStats)
	api.GET("/log", s.handleLog)

	return r
}

// Start serves until the context is canceled. When bus is non-nil the server
// consumes snapshot frames from it. Start blocks; run it in a goroutine.
func (s *Server) Start(ctx context.Context, bus *eventbus.Bus[any]) error {
	if bus != nil {
		sub := bus.Subscribe()
		go func() {
			defer bus.Unsubscribe(sub)
			for {
				select {
				case <-ctx.Done():
					return
				case ev, ok := <-sub:
					if !ok {
						return
					}
					if snap, isSnap := ev.(sim.Snapshot); isSnap {
						s.Observe(snap)
					}
				}
			}
		}()
	}

	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("web server shutdown: %v", err)
		}
		cancel()
	}()
	s.log.Infof("web: listening on %s", s.cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleState(c *gin.Context) {
	s.mu.RLock()
	snap, ready := s.snap, s.ready
	s.mu.RUnlock()
	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot yet"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleTasks(c *gin.Context) {
	s.mu.RLock()
	tasks := s.snap.Tasks
	s.mu.RUnlock()
	if tasks == nil {
		tasks = []sim.TaskSnapshot{}
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleStats(c *gin.Context) {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	resp := gin.H{
		"queue": snap.Stats,
		"robot": snap.Robot.Metrics,
	}
	if s.hist != nil {
		resp["rate_1m"] = s.hist.Throughput(60)
		resp["rate_5m"] = s.hist.Throughput(300)
	}
	c.JSON(http.StatusOK, resp)
}

// handleLog exposes the task log. Malformed time filters are ignored rather
// than rejected; type and outcome pass through as given.
func (s *Server) handleLog(c *gin.Context) {
	q := tasklog.Query{
		Type:    c.Query("type"),
		Outcome: tasklog.Outcome(c.Query("outcome")),
	}
	if v := c.Query("start"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			q.Start = t
		}
	}
	if v := c.Query("end"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			q.End = t
		}
	}
	recs, err := s.store.Query(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if recs == nil {
		recs = []tasklog.Record{}
	}
	c.JSON(http.StatusOK, recs)
}
