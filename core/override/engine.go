// Package override applies operator status overrides to the schedule with
// a risk gate and an audit trail.
package override

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/d1vyadharsh1n1/MetroX/core/events"
	"github.com/d1vyadharsh1n1/MetroX/core/logger"
	"github.com/d1vyadharsh1n1/MetroX/core/model"
	"github.com/d1vyadharsh1n1/MetroX/core/modlog"
	"github.com/d1vyadharsh1n1/MetroX/core/schedule"
	"github.com/d1vyadharsh1n1/MetroX/internal/eventbus"
)

// Request describes a single override call.
type Request struct {
	Action  Action
	TrainID string
	Force   bool
}

// Result is exactly one of Applied, NeedsConfirmation or Rejected.
type Result struct {
	Outcome        Outcome
	Action         Action
	TrainID        string
	From           model.Status
	To             model.Status
	Risk           float64
	Message        string
	Details        string
	Recommendation string
	// Alerts describe an applied change for the operator.
	Alerts []string
	Depot  string
	Record modlog.Record
	// Err is set when Outcome is Rejected.
	Err error
}

// Engine serializes overrides per train.
type Engine struct {
	store schedule.Store
	log   modlog.Store
	cfg   Config
	bus   eventbus.Publisher[events.Event]
	lg    logger.Logger
	now   func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine builds an Engine. A nil bus or logger disables that output.
func NewEngine(store schedule.Store, log modlog.Store, cfg Config, bus eventbus.Publisher[events.Event], lg logger.Logger) *Engine {
	cfg.SetDefaults()
	if bus == nil {
		bus = eventbus.NopPublisher[events.Event]{}
	}
	if lg == nil {
		lg = logger.Nop{}
	}
	return &Engine{
		store: store,
		log:   log,
		cfg:   cfg,
		bus:   bus,
		lg:    lg,
		now:   time.Now,
		locks: map[string]*sync.Mutex{},
	}
}

// Threshold returns the configured confirmation threshold.
func (e *Engine) Threshold() float64 { return e.cfg.RiskThreshold }

func (e *Engine) lockFor(id string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	return l
}

// Modify applies req. Reading, updating and logging a train happen under
// that train's lock so concurrent calls never lose an update.
func (e *Engine) Modify(ctx context.Context, req Request) Result {
	ctx, span := otel.Tracer("metrox/override").Start(ctx, "override.modify")
	span.SetAttributes(attribute.String("train.id", req.TrainID), attribute.String("action", string(req.Action)))
	defer span.End()

	res := e.modify(ctx, req)
	span.SetAttributes(attribute.String("outcome", res.Outcome.String()))
	e.bus.Publish(events.OverrideEvent{
		RunID:   res.Record.RunID,
		Action:  string(req.Action),
		TrainID: req.TrainID,
		Depot:   res.Depot,
		From:    res.From,
		To:      res.To,
		Forced:  req.Force,
		Outcome: res.Outcome.String(),
		Risk:    res.Risk,
		Message: res.Message,
		Time:    e.now(),
	})
	return res
}

func (e *Engine) modify(ctx context.Context, req Request) Result {
	action, err := ParseAction(string(req.Action))
	if err != nil {
		return rejected(req, err, "Invalid action")
	}
	req.Action = action

	// existence check first so unknown ids never allocate a lock
	if _, err := e.store.Get(req.TrainID); err != nil {
		return lookupFailed(req, err)
	}
	l := e.lockFor(req.TrainID)
	l.Lock()
	defer l.Unlock()

	// decide on the record the store holds so a concurrent Replace cannot
	// slip between the checks and the write
	var (
		from     model.Status
		prevFlag bool
		risk     float64
		depot    string
	)
	to, isForce := action.Target()
	ch, err := e.store.Update(req.TrainID, func(r *model.TrainRecord) error {
		from, prevFlag, risk, depot = r.FinalStatus, r.ManualOverrideFlag, r.PredictedFailureRisk, r.Depot
		if isForce {
			if e.cfg.BlockIBLRelease && from == model.StatusIBL && to != model.StatusIBL {
				return ErrSafetyViolation
			}
			if action == ForceService && risk > e.cfg.RiskThreshold && !req.Force {
				return errNeedsConfirmation
			}
		} else {
			if !r.ManualOverrideFlag {
				return ErrNothingToReset
			}
			to = r.PredictedStatus
		}
		r.FinalStatus = to
		r.ManualOverrideFlag = isForce
		return nil
	})
	switch {
	case errors.Is(err, ErrSafetyViolation):
		r := rejected(req, fmt.Errorf("%w: %s is IBL", ErrSafetyViolation, req.TrainID),
			fmt.Sprintf("❌ SAFETY VIOLATION: Cannot force IBL train to %s", to))
		r.From, r.Risk, r.Depot = from, risk, depot
		r.Details = fmt.Sprintf("Train %s is currently IBL due to safety concerns. Forcing to %s would violate safety protocols.", req.TrainID, to)
		r.Recommendation = "Address maintenance issues first before changing status."
		return r
	case errors.Is(err, errNeedsConfirmation):
		return Result{
			Outcome:        NeedsConfirmation,
			Action:         action,
			TrainID:        req.TrainID,
			From:           from,
			To:             to,
			Risk:           risk,
			Message:        fmt.Sprintf("⚠️ HIGH RISK WARNING: Failure risk is %s", pct(risk)),
			Details:        fmt.Sprintf("Train %s has a high predicted failure risk of %s. Forcing to Service is not recommended.", req.TrainID, pct(risk)),
			Recommendation: "Consider addressing maintenance issues or use as Standby instead.",
			Depot:          depot,
		}
	case errors.Is(err, ErrNothingToReset):
		r := rejected(req, ErrNothingToReset, fmt.Sprintf("Train %s has no manual override to reset", req.TrainID))
		r.From, r.Risk, r.Depot = from, risk, depot
		return r
	case err != nil:
		return lookupFailed(req, err)
	}

	rec := modlog.Record{
		Timestamp: e.now(),
		RunID:     ch.RunID,
		Action:    string(action),
		TrainID:   req.TrainID,
		From:      from,
		To:        to,
		Forced:    req.Force,
		Message:   logLine(action, req.TrainID, from, to),
	}
	if err := e.log.Append(ctx, rec); err != nil {
		// keep state and log in step; a newer run already discarded the change
		if _, rerr := e.store.UpdateIn(ch.RunID, req.TrainID, func(r *model.TrainRecord) error {
			r.FinalStatus = from
			r.ManualOverrideFlag = prevFlag
			return nil
		}); rerr != nil && !errors.Is(rerr, schedule.ErrStaleRun) {
			e.lg.Errorf("rollback %s after log failure: %v", req.TrainID, rerr)
		}
		return rejected(req, fmt.Errorf("append modification log: %w", err), "Modification failed")
	}
	e.lg.Infof("%s", rec.Message)

	res := Result{
		Outcome: Applied,
		Action:  action,
		TrainID: req.TrainID,
		From:    from,
		To:      ch.After.FinalStatus,
		Risk:    risk,
		Depot:   depot,
		Record:  rec,
		Alerts:  alerts(action, req.TrainID, from, to, risk),
	}
	if isForce {
		res.Message = fmt.Sprintf("✅ Train %s successfully forced to %s", req.TrainID, to)
		res.Details = fmt.Sprintf("Status changed from %s to %s. Manual override applied.", from, to)
	} else {
		res.Message = fmt.Sprintf("✅ Train %s reset to predicted status", req.TrainID)
		res.Details = fmt.Sprintf("Status changed from %s to %s. Manual override removed.", from, to)
	}
	return res
}

func lookupFailed(req Request, err error) Result {
	switch {
	case errors.Is(err, schedule.ErrNoData):
		return rejected(req, err, "No schedule available")
	case errors.Is(err, schedule.ErrUnknownTrain):
		return rejected(req, err, "Train not found")
	}
	return rejected(req, err, "Modification failed")
}

func rejected(req Request, err error, msg string) Result {
	return Result{Outcome: Rejected, Action: req.Action, TrainID: req.TrainID, Err: err, Message: msg}
}

func logLine(a Action, id string, from, to model.Status) string {
	if a == Reset {
		return fmt.Sprintf("🚆 %s: %s → %s (Reset)", id, from, to)
	}
	return fmt.Sprintf("🚆 %s: %s → %s (Manual override)", id, from, to)
}

func alerts(a Action, id string, from, to model.Status, risk float64) []string {
	if a == Reset {
		return []string{
			fmt.Sprintf("🚆 Train %s status reset: %s → %s", id, from, to),
			fmt.Sprintf("✅ Manual override flag removed for %s", id),
			fmt.Sprintf("📊 Failure risk: %s", pct(risk)),
		}
	}
	out := []string{
		fmt.Sprintf("🚆 Train %s status changed: %s → %s", id, from, to),
		fmt.Sprintf("⚠️ Manual override flag set for %s", id),
	}
	if to == model.StatusIBL {
		out = append(out, fmt.Sprintf("🚨 Train %s is now out of service", id))
	}
	return append(out, fmt.Sprintf("📊 Failure risk: %s", pct(risk)))
}

func pct(v float64) string { return fmt.Sprintf("%.1f%%", v*100) }
