// Package app wires configuration into a running control plane.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"github.com/d1vyadharsh1n1/MetroX/api"
	"github.com/d1vyadharsh1n1/MetroX/config"
	"github.com/d1vyadharsh1n1/MetroX/core/analytics"
	"github.com/d1vyadharsh1n1/MetroX/core/events"
	"github.com/d1vyadharsh1n1/MetroX/core/execution"
	"github.com/d1vyadharsh1n1/MetroX/core/history"
	coremetrics "github.com/d1vyadharsh1n1/MetroX/core/metrics"
	"github.com/d1vyadharsh1n1/MetroX/core/modlog"
	coremon "github.com/d1vyadharsh1n1/MetroX/core/monitoring"
	"github.com/d1vyadharsh1n1/MetroX/core/override"
	"github.com/d1vyadharsh1n1/MetroX/core/pipeline"
	"github.com/d1vyadharsh1n1/MetroX/core/prediction"
	"github.com/d1vyadharsh1n1/MetroX/core/schedule"
	"github.com/d1vyadharsh1n1/MetroX/core/scheduler"
	"github.com/d1vyadharsh1n1/MetroX/core/whatif"
	infrahistory "github.com/d1vyadharsh1n1/MetroX/infra/history"
	"github.com/d1vyadharsh1n1/MetroX/infra/logger"
	"github.com/d1vyadharsh1n1/MetroX/infra/metrics"
	"github.com/d1vyadharsh1n1/MetroX/infra/monitoring"
	"github.com/d1vyadharsh1n1/MetroX/infra/mqtt"
	"github.com/d1vyadharsh1n1/MetroX/infra/tracing"
	"github.com/d1vyadharsh1n1/MetroX/internal/eventbus"
	"github.com/d1vyadharsh1n1/MetroX/simulator"
)

// busBuffer sizes subscriber queues so bursts of run output are not dropped.
const busBuffer = 256

// Core holds the domain components without any network listener. The CLI
// uses it directly for offline runs.
type Core struct {
	Bus        *eventbus.TypedBus[events.Event]
	Controller *execution.Controller
	Pipeline   *pipeline.Pipeline
	Store      *schedule.MemoryStore
	ModLog     modlog.Store
	History    history.Store
	Overrides  *override.Engine
	WhatIf     *whatif.Analyzer
	Analytics  *analytics.Analyzer

	cancel context.CancelFunc
}

// NewCore builds the domain components described by cfg.
func NewCore(cfg *config.Config) (*Core, error) {
	policy, err := cfg.Planner.Resolve()
	if err != nil {
		return nil, fmt.Errorf("planner policy: %w", err)
	}
	planner, err := scheduler.New(policy)
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}
	sim, err := simulator.New(cfg.Simulator)
	if err != nil {
		return nil, fmt.Errorf("simulator: %w", err)
	}
	oracle, err := prediction.NewOracle(cfg.Oracle)
	if err != nil {
		return nil, fmt.Errorf("oracle: %w", err)
	}
	modLog, err := modlog.Open(cfg.ModLog)
	if err != nil {
		return nil, fmt.Errorf("modification log: %w", err)
	}
	hist, err := infrahistory.Open(cfg.History)
	if err != nil {
		_ = modLog.Close()
		return nil, fmt.Errorf("history: %w", err)
	}

	bus := eventbus.NewTypedWithBuffer[events.Event](busBuffer)
	store := schedule.NewMemoryStore()
	engine := override.NewEngine(store, modLog, cfg.Overrides, bus, logger.New("override"))
	wcfg := cfg.WhatIf
	wcfg.RiskThreshold = engine.Threshold()
	wi := whatif.New(store, wcfg)
	pipe, err := pipeline.New(cfg.Pipeline, pipeline.Deps{
		Source:    sim,
		Oracle:    oracle,
		Planner:   planner,
		Store:     store,
		History:   hist,
		Overrides: engine,
		WhatIf:    wi,
		ModLog:    modLog,
		Bus:       bus,
		Log:       logger.New("pipeline"),
	})
	if err != nil {
		_ = modLog.Close()
		_ = hist.Close()
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ctrl := execution.NewController(
		execution.WithEvents(bus),
		execution.WithLogger(logger.New("execution")),
		execution.WithInputTimeout(cfg.Pipeline.InputTimeout()),
		execution.WithContext(ctx),
	)
	return &Core{
		Bus:        bus,
		Controller: ctrl,
		Pipeline:   pipe,
		Store:      store,
		ModLog:     modLog,
		History:    hist,
		Overrides:  engine,
		WhatIf:     wi,
		Analytics:  analytics.New(planner),
		cancel:     cancel,
	}, nil
}

// RunOnce starts a non-interactive run and waits for it to finish.
func (c *Core) RunOnce(ctx context.Context) (execution.State, error) {
	if _, err := c.Controller.Start(c.Pipeline.Job(false)); err != nil {
		return execution.State{}, err
	}
	if err := c.Controller.Wait(ctx); err != nil {
		return c.Controller.Poll(), err
	}
	st := c.Controller.Poll()
	if st.Error != "" {
		return st, fmt.Errorf("%w: %s", execution.ErrComputationFailed, st.Error)
	}
	return st, nil
}

// Close aborts a pending run and releases the stores.
func (c *Core) Close() error {
	c.cancel()
	c.Bus.Close()
	return errors.Join(c.ModLog.Close(), c.History.Close())
}

// Service runs the API, the nightly trigger and the event consumers.
type Service struct {
	*Core

	cfg     *config.Config
	api     *api.Server
	sink    coremetrics.MetricsSink
	mqtt    *mqtt.PahoClient
	cron    *cron.Cron
	tracing tracing.Shutdown
	log     logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if err := cfg.Logging.Apply(); err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, err
	}
	coremon.Init(mon)

	shutdown, err := tracing.Init(cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	core, err := NewCore(cfg)
	if err != nil {
		return nil, err
	}
	svc := &Service{Core: core, cfg: cfg, sink: sink, tracing: shutdown, log: logg}

	var httpRec coremetrics.HTTPRequestRecorder
	if r, ok := sink.(coremetrics.HTTPRequestRecorder); ok {
		httpRec = r
	}
	svc.api, err = api.NewServer(cfg.HTTP, api.Deps{
		Controller:         core.Controller,
		Jobs:               core.Pipeline.Job,
		InteractiveDefault: cfg.Pipeline.Interactive,
		Store:              core.Store,
		Overrides:          core.Overrides,
		ModLog:             core.ModLog,
		WhatIf:             core.WhatIf,
		Analytics:          core.Analytics,
		History:            core.History,
		Bus:                core.Bus,
		Metrics:            httpRec,
		Log:                logger.New("api"),
	})
	if err != nil {
		_ = core.Close()
		return nil, fmt.Errorf("api: %w", err)
	}

	if cfg.MQTT.Enabled() {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			_ = core.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		client.OnInput(core.Controller.SubmitInput)
		svc.mqtt = client
	}

	if cfg.Pipeline.Cron != "" {
		svc.cron = cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
		if _, err := svc.cron.AddFunc(cfg.Pipeline.Cron, svc.trigger); err != nil {
			_ = core.Close()
			return nil, fmt.Errorf("cron: %w", err)
		}
	}
	return svc, nil
}

// trigger starts an unattended run. A run already in progress wins.
func (s *Service) trigger() {
	id, err := s.Controller.Start(s.Pipeline.Job(false))
	if errors.Is(err, execution.ErrAlreadyRunning) {
		s.log.Warnf("scheduled run skipped: a run is already in progress")
		return
	}
	if err != nil {
		s.log.Errorf("scheduled run: %v", err)
		return
	}
	s.log.Infof("scheduled run %s started", id)
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.Bus, s.sink)
	if s.mqtt != nil {
		mqtt.StartNotifier(ctx, s.Bus, s.mqtt)
	}
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		coremon.Go("prom-server", func() {
			if err := metrics.StartPromServer(ctx, addr, prometheus.DefaultGatherer); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}, nil)
	}
	if s.cron != nil {
		s.cron.Start()
		s.log.Infof("nightly run scheduled at %q", s.cfg.Pipeline.Cron)
	}
	return s.api.Start(ctx)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	if s.mqtt != nil {
		s.mqtt.Disconnect()
	}
	err := s.Core.Close()
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if s.tracing != nil {
		err = errors.Join(err, s.tracing(ctx))
	}
	coremon.Flush(2 * time.Second)
	return err
}
