// Package api wires the HTTP handlers of the control plane into a single
// server with CORS, bearer authentication on mutating endpoints, tracing
// and request metrics.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	analyticsapi "github.com/d1vyadharsh1n1/MetroX/api/analytics"
	dataapi "github.com/d1vyadharsh1n1/MetroX/api/data"
	"github.com/d1vyadharsh1n1/MetroX/api/response"
	runapi "github.com/d1vyadharsh1n1/MetroX/api/run"
	scheduleapi "github.com/d1vyadharsh1n1/MetroX/api/schedule"
	"github.com/d1vyadharsh1n1/MetroX/api/stream"
	whatifapi "github.com/d1vyadharsh1n1/MetroX/api/whatif"
	"github.com/d1vyadharsh1n1/MetroX/config"
	"github.com/d1vyadharsh1n1/MetroX/core/analytics"
	"github.com/d1vyadharsh1n1/MetroX/core/events"
	"github.com/d1vyadharsh1n1/MetroX/core/history"
	"github.com/d1vyadharsh1n1/MetroX/core/logger"
	coremetrics "github.com/d1vyadharsh1n1/MetroX/core/metrics"
	"github.com/d1vyadharsh1n1/MetroX/core/modlog"
	"github.com/d1vyadharsh1n1/MetroX/core/override"
	"github.com/d1vyadharsh1n1/MetroX/core/schedule"
	"github.com/d1vyadharsh1n1/MetroX/core/whatif"
	"github.com/d1vyadharsh1n1/MetroX/internal/eventbus"
)

// Deps are the components served over HTTP. History, Bus and Metrics are
// optional.
type Deps struct {
	Controller         runapi.Controller
	Jobs               runapi.JobFactory
	InteractiveDefault bool
	Store              schedule.Store
	Overrides          *override.Engine
	ModLog             modlog.Store
	WhatIf             *whatif.Analyzer
	Analytics          *analytics.Analyzer
	History            history.Store
	Bus                *eventbus.TypedBus[events.Event]
	Metrics            coremetrics.HTTPRequestRecorder
	Log                logger.Logger
	Now                func() time.Time
}

// Server is the API listener.
type Server struct {
	cfg     config.HTTPConfig
	d       Deps
	handler http.Handler
}

// NewServer builds the routing table.
func NewServer(cfg config.HTTPConfig, d Deps) (*Server, error) {
	if d.Controller == nil || d.Jobs == nil || d.Store == nil {
		return nil, errors.New("api: controller, jobs and store are required")
	}
	if d.Overrides == nil || d.ModLog == nil || d.WhatIf == nil || d.Analytics == nil {
		return nil, errors.New("api: override engine, modification log, what-if and analytics are required")
	}
	if d.Log == nil {
		d.Log = logger.Nop{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	s := &Server{cfg: cfg, d: d}
	s.handler = cors(cfg.AllowedOrigins, s.routes())
	return s, nil
}

func (s *Server) routes() *http.ServeMux {
	d := s.d
	mux := http.NewServeMux()
	handle := func(route string, h http.Handler, mutating bool) {
		if mutating {
			h = bearerAuth(s.cfg.Token, s.cfg.JWTSecret, h)
		}
		mux.Handle(route, instrument(route, h, d.Metrics, d.Log))
	}

	handle("/api/health", s.healthHandler(), false)
	handle("/api/status", runapi.NewStatusHandler(d.Controller), false)
	handle("/api/predict", runapi.NewPredictHandler(d.Controller, d.Jobs, d.InteractiveDefault), true)
	handle("/api/input", runapi.NewInputHandler(d.Controller), true)

	handle("/api/schedule", scheduleapi.NewScheduleHandler(d.Store), false)
	handle("/api/schedule/chart", scheduleapi.NewChartHandler(d.Store, d.Overrides.Threshold()), false)
	handle("/api/modify", scheduleapi.NewModifyHandler(d.Overrides, d.Store, d.ModLog, d.Log), true)
	handle("/api/modification-log", scheduleapi.NewLogHandler(d.Store, d.ModLog), false)

	handle("/api/whatif", whatifapi.NewHandler(d.WhatIf), false)
	handle("/api/data/predictions", dataapi.NewPredictionsHandler(d.Store), false)
	handle("/api/data/simulated", dataapi.NewSimulatedHandler(d.Store, d.History), false)
	handle("/api/data/history", dataapi.NewHistoryHandler(d.History), false)
	handle("/api/fleet-analytics", analyticsapi.NewReportHandler(d.Store, d.Analytics), false)
	handle("/api/alerts", analyticsapi.NewAlertsHandler(d.Store), false)

	if d.Bus != nil {
		handle("/api/stream", stream.NewHandler(d.Bus, d.Log), false)
	}
	return mux
}

func (s *Server) healthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{
			"status":    "healthy",
			"timestamp": s.d.Now().Format(time.RFC3339),
		})
	})
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.handler }

// Start serves on cfg.Addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: time.Duration(s.cfg.ReadTimeoutSeconds) * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.d.Log.Warnf("api shutdown: %v", err)
		}
	}()
	s.d.Log.Infof("api listening on %s", s.cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
