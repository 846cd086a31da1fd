package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/d1vyadharsh1n1/MetroX/core/events"
	"github.com/d1vyadharsh1n1/MetroX/core/execution"
	"github.com/d1vyadharsh1n1/MetroX/core/history"
	"github.com/d1vyadharsh1n1/MetroX/core/logger"
	"github.com/d1vyadharsh1n1/MetroX/core/model"
	"github.com/d1vyadharsh1n1/MetroX/core/modlog"
	"github.com/d1vyadharsh1n1/MetroX/core/override"
	"github.com/d1vyadharsh1n1/MetroX/core/prediction"
	"github.com/d1vyadharsh1n1/MetroX/core/schedule"
	"github.com/d1vyadharsh1n1/MetroX/core/scheduler"
	"github.com/d1vyadharsh1n1/MetroX/core/whatif"
	"github.com/d1vyadharsh1n1/MetroX/internal/eventbus"
	"github.com/d1vyadharsh1n1/MetroX/pkg/export"
)

// Step names reported through the controller.
const (
	StepSimulation  = "Data Simulation"
	StepPrediction  = "Prediction"
	StepSchedule    = "Schedule Generation"
	StepPersistence = "Persistence"
	StepReview      = "Operator Review"
)

// Source produces the daily feed, continuing from prev when given.
type Source interface {
	Day(date time.Time, prev []model.DailyRecord) []model.DailyRecord
}

// Deps are the collaborators of a pipeline. History, Bus and Log are
// optional.
type Deps struct {
	Source    Source
	Oracle    prediction.Oracle
	Planner   *scheduler.Scheduler
	Store     schedule.Store
	History   history.Store
	Overrides *override.Engine
	WhatIf    *whatif.Analyzer
	ModLog    modlog.Store
	Bus       eventbus.Publisher[events.Event]
	Log       logger.Logger
	Now       func() time.Time
}

// Pipeline builds execution jobs.
type Pipeline struct {
	cfg Config
	d   Deps
}

// Error wraps any failure of a run. Its message is what operators see in
// the run status.
type Error struct{ Err error }

func (e *Error) Error() string { return "Pipeline error: " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

func New(cfg Config, d Deps) (*Pipeline, error) {
	if d.Source == nil || d.Oracle == nil || d.Planner == nil || d.Store == nil {
		return nil, errors.New("pipeline requires source, oracle, planner and store")
	}
	if d.Overrides == nil || d.WhatIf == nil || d.ModLog == nil {
		return nil, errors.New("pipeline requires override engine, what-if analyzer and modification log")
	}
	if d.Bus == nil {
		d.Bus = eventbus.NopPublisher[events.Event]{}
	}
	if d.Log == nil {
		d.Log = logger.Nop{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Pipeline{cfg: cfg, d: d}, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Job returns the run function for the controller.
func (p *Pipeline) Job(interactive bool) execution.Job {
	return func(ctx context.Context, r *execution.Run) error {
		if err := p.run(ctx, r, interactive); err != nil {
			if errors.Is(err, context.Canceled) {
				r.Logf("❌ Pipeline cancelled")
			} else {
				r.Logf("❌ Pipeline error: %v", err)
			}
			return &Error{Err: err}
		}
		r.Logf("🎉 Pipeline completed successfully!")
		return nil
	}
}

func (p *Pipeline) run(ctx context.Context, r *execution.Run, interactive bool) error {
	ctx, span := otel.Tracer("metrox/pipeline").Start(ctx, "pipeline.run")
	span.SetAttributes(attribute.String("run.id", r.ID()), attribute.Bool("interactive", interactive))
	defer span.End()

	date := p.d.Now()

	r.Step(StepSimulation)
	r.Logf("Starting data simulation...")
	feed := p.d.Source.Day(date, p.previousDay(ctx, date))
	r.Logf("Generated %d train records", len(feed))

	r.Step(StepPrediction)
	r.Logf("Scoring fleet...")
	preds, err := p.d.Oracle.Predict(ctx, feed)
	if err != nil {
		return fmt.Errorf("prediction: %w", err)
	}

	r.Step(StepSchedule)
	r.Logf("Generating optimized schedule...")
	plan, err := p.d.Planner.Plan(prediction.Merge(feed, preds))
	if err != nil {
		return fmt.Errorf("schedule generation: %w", err)
	}
	p.d.Store.Replace(r.ID(), plan)
	counts := model.StatusCounts(plan)
	p.d.Bus.Publish(events.ScheduleEvent{RunID: r.ID(), Trains: len(plan), Counts: counts, Time: p.d.Now()})
	r.Logf("✅ Schedule generated successfully")
	r.Logf("%s", summary(counts))
	p.d.Log.Infof("run %s installed schedule: %s", r.ID(), summary(counts))

	if p.d.History != nil {
		r.Step(StepPersistence)
		day := history.Day(date)
		if err := p.d.History.SaveDay(ctx, day, feed); err != nil {
			p.d.Log.Warnf("history save failed: %v", err)
			r.Logf("⚠️ History save failed: %v", err)
		} else {
			r.Logf("💾 Data saved to history (%d records for %s)", len(feed), day)
		}
	}

	if interactive {
		r.Step(StepReview)
		if err := p.review(ctx, r); err != nil {
			return err
		}
	}

	if p.cfg.ExportPath != "" {
		if err := p.export(); err != nil {
			p.d.Log.Warnf("schedule export failed: %v", err)
			r.Logf("⚠️ Schedule export failed: %v", err)
		} else {
			r.Logf("💾 Saved final schedule to %s", p.cfg.ExportPath)
		}
	}
	return nil
}

// previousDay returns the feed of the day before date, or the latest feed
// recorded before date.
func (p *Pipeline) previousDay(ctx context.Context, date time.Time) []model.DailyRecord {
	if p.d.History == nil {
		return nil
	}
	day, recs, err := p.d.History.Latest(ctx)
	if err != nil {
		if !errors.Is(err, history.ErrEmpty) {
			p.d.Log.Warnf("load previous feed: %v", err)
		}
		return nil
	}
	if day < history.Day(date) {
		return recs
	}
	prev, err := p.d.History.Day(ctx, history.Day(date.AddDate(0, 0, -1)))
	if err != nil {
		p.d.Log.Warnf("load previous feed: %v", err)
		return nil
	}
	return prev
}

func (p *Pipeline) export() error {
	if dir := filepath.Dir(p.cfg.ExportPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(p.cfg.ExportPath)
	if err != nil {
		return err
	}
	if err := export.WriteCSV(f, p.d.Store.List()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func summary(c map[model.Status]int) string {
	return fmt.Sprintf("📊 SUMMARY: %d Service, %d Standby, %d IBL",
		c[model.StatusService], c[model.StatusStandby], c[model.StatusIBL])
}
