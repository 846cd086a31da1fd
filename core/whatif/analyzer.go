// Package whatif projects hypothetical scenarios against a schedule
// snapshot. Nothing here mutates state.
package whatif

import (
	"errors"
	"fmt"
	"math"

	"github.com/d1vyadharsh1n1/MetroX/core/model"
	"github.com/d1vyadharsh1n1/MetroX/core/schedule"
)

var (
	ErrUnknownTrain    = schedule.ErrUnknownTrain
	ErrNoData          = schedule.ErrNoData
	ErrInvalidScenario = errors.New("invalid scenario")
	ErrInvalidHeadway  = errors.New("headway must be positive")
)

// Scenario names accepted by Run.
const (
	ScenarioForceService     = "force_service_analysis"
	ScenarioSimulateFailure  = "simulate_failure"
	ScenarioMaintenanceDelay = "maintenance_delay"
	ScenarioHeadway          = "headway_analysis"
)

// Request selects a scenario and its parameters.
type Request struct {
	Scenario string
	TrainID  string
	// Headway in minutes. Nil falls back to the configured default.
	Headway *float64
}

// ForceServiceAnalysis is the result of ScenarioForceService.
type ForceServiceAnalysis struct {
	TrainID        string       `json:"train_id"`
	CurrentStatus  model.Status `json:"current_status"`
	FailureRisk    float64      `json:"failure_risk"`
	Recommendation string       `json:"recommendation"`
	Reason         string       `json:"reason"`
	SafetyConcern  bool         `json:"safety_concern"`
}

// FailureSimulation is the result of ScenarioSimulateFailure.
type FailureSimulation struct {
	TrainID          string       `json:"train_id"`
	CurrentStatus    model.Status `json:"current_status"`
	ServiceImpact    string       `json:"service_impact"`
	AvailableStandby int          `json:"available_standby"`
	Critical         bool         `json:"critical"`
}

// MaintenanceDelay is the result of ScenarioMaintenanceDelay.
type MaintenanceDelay struct {
	HighRiskTrains int      `json:"high_risk_trains"`
	Trains         []string `json:"trains"`
	Impact         string   `json:"impact"`
}

// Allocation splits the fleet for a feasible headway.
type Allocation struct {
	Service int `json:"service"`
	Standby int `json:"standby"`
	IBL     int `json:"ibl"`
}

// HeadwayAnalysis is the result of ScenarioHeadway.
type HeadwayAnalysis struct {
	Model        string      `json:"model"`
	NewHeadway   float64     `json:"new_headway"`
	TrainsNeeded int         `json:"trains_needed"`
	TotalNeeded  int         `json:"total_needed"`
	FleetSize    int         `json:"fleet_size"`
	Feasible     bool        `json:"feasible"`
	Shortage     int         `json:"shortage"`
	MaxHeadway   float64     `json:"max_headway"`
	Allocation   *Allocation `json:"allocation,omitempty"`
}

// Reader is the read side of the schedule store.
type Reader interface {
	List() []model.TrainRecord
}

// Analyzer evaluates scenarios against the current schedule.
type Analyzer struct {
	store Reader
	cfg   Config
}

// New returns an Analyzer reading from store.
func New(store Reader, cfg Config) *Analyzer {
	cfg.SetDefaults()
	return &Analyzer{store: store, cfg: cfg}
}

// Run dispatches req to the matching scenario.
func (a *Analyzer) Run(req Request) (any, error) {
	switch req.Scenario {
	case ScenarioForceService:
		return a.ForceService(req.TrainID)
	case ScenarioSimulateFailure:
		return a.SimulateFailure(req.TrainID)
	case ScenarioMaintenanceDelay:
		return a.MaintenanceDelay()
	case ScenarioHeadway:
		h := a.cfg.DefaultHeadway
		if req.Headway != nil {
			h = *req.Headway
		}
		return a.Headway(h)
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidScenario, req.Scenario)
}

func (a *Analyzer) snapshot() ([]model.TrainRecord, error) {
	recs := a.store.List()
	if len(recs) == 0 {
		return nil, ErrNoData
	}
	return recs, nil
}

func find(recs []model.TrainRecord, id string) (model.TrainRecord, error) {
	for _, r := range recs {
		if r.TrainID == id {
			return r, nil
		}
	}
	return model.TrainRecord{}, fmt.Errorf("%w: %s", ErrUnknownTrain, id)
}

// ForceService judges whether forcing the train into service is advisable.
func (a *Analyzer) ForceService(trainID string) (ForceServiceAnalysis, error) {
	recs, err := a.snapshot()
	if err != nil {
		return ForceServiceAnalysis{}, err
	}
	t, err := find(recs, trainID)
	if err != nil {
		return ForceServiceAnalysis{}, err
	}
	res := ForceServiceAnalysis{
		TrainID:       t.TrainID,
		CurrentStatus: t.FinalStatus,
		FailureRisk:   t.PredictedFailureRisk,
		SafetyConcern: t.FinalStatus == model.StatusIBL,
	}
	if t.PredictedFailureRisk > a.cfg.RiskThreshold {
		res.Recommendation = "caution"
		res.Reason = fmt.Sprintf("Failure risk %.1f%% exceeds the %.1f%% threshold", t.PredictedFailureRisk*100, a.cfg.RiskThreshold*100)
	} else {
		res.Recommendation = "proceed"
		res.Reason = fmt.Sprintf("Failure risk %.1f%% is within the %.1f%% threshold", t.PredictedFailureRisk*100, a.cfg.RiskThreshold*100)
	}
	if res.SafetyConcern {
		res.Reason += "; train is currently held in IBL"
	}
	return res, nil
}

// SimulateFailure estimates the impact of the train failing in service.
func (a *Analyzer) SimulateFailure(trainID string) (FailureSimulation, error) {
	recs, err := a.snapshot()
	if err != nil {
		return FailureSimulation{}, err
	}
	t, err := find(recs, trainID)
	if err != nil {
		return FailureSimulation{}, err
	}
	standby := 0
	for _, r := range recs {
		if r.FinalStatus == model.StatusStandby && r.TrainID != trainID {
			standby++
		}
	}
	res := FailureSimulation{
		TrainID:          t.TrainID,
		CurrentStatus:    t.FinalStatus,
		AvailableStandby: standby,
		Critical:         standby == 0 && t.FinalStatus == model.StatusService,
		ServiceImpact:    "Minimal service impact",
	}
	if t.FinalStatus == model.StatusService {
		res.ServiceImpact = "Requires immediate standby deployment"
	}
	return res, nil
}

// MaintenanceDelay counts trains that become critical if maintenance slips.
func (a *Analyzer) MaintenanceDelay() (MaintenanceDelay, error) {
	recs, err := a.snapshot()
	if err != nil {
		return MaintenanceDelay{}, err
	}
	res := MaintenanceDelay{Trains: []string{}}
	for _, r := range recs {
		if r.PredictedFailureRisk > a.cfg.RiskThreshold {
			res.Trains = append(res.Trains, r.TrainID)
		}
	}
	res.HighRiskTrains = len(res.Trains)
	if res.HighRiskTrains > 0 {
		res.Impact = fmt.Sprintf("%d trains would become critical", res.HighRiskTrains)
	} else {
		res.Impact = "No high-risk trains affected"
	}
	return res, nil
}

// Headway checks whether the fleet can sustain the given headway.
func (a *Analyzer) Headway(minutes float64) (HeadwayAnalysis, error) {
	if minutes <= 0 || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return HeadwayAnalysis{}, fmt.Errorf("%w: %v", ErrInvalidHeadway, minutes)
	}
	recs, err := a.snapshot()
	if err != nil {
		return HeadwayAnalysis{}, err
	}
	fleet := a.cfg.FleetSize
	if fleet == 0 {
		fleet = len(recs)
	}

	// demand is expressed in train-minutes per departure interval
	var demand float64
	switch a.cfg.HeadwayModel {
	case HeadwayRoundTrip:
		demand = a.cfg.RoundTripMinutes
	default:
		demand = float64(model.StatusCounts(recs)[model.StatusService]) * a.cfg.CurrentHeadway
	}
	needed := ceil(demand / minutes)
	total := needed + a.cfg.Standby()
	res := HeadwayAnalysis{
		Model:        a.cfg.HeadwayModel,
		NewHeadway:   minutes,
		TrainsNeeded: needed,
		TotalNeeded:  total,
		FleetSize:    fleet,
		Feasible:     total <= fleet,
		Shortage:     max(0, total-fleet),
	}
	if spare := fleet - a.cfg.Standby(); spare > 0 {
		res.MaxHeadway = math.Round(demand/float64(spare)*100) / 100
	}
	if res.Feasible {
		res.Allocation = &Allocation{Service: needed, Standby: a.cfg.Standby(), IBL: fleet - total}
	}
	return res, nil
}

// maxTrainsNeeded bounds trains_needed so tiny headways cannot overflow.
const maxTrainsNeeded = math.MaxInt32

// ceil rounds up while tolerating floating point noise on exact results.
// Results beyond maxTrainsNeeded are capped.
func ceil(v float64) int {
	c := math.Ceil(v - 1e-9)
	if c >= maxTrainsNeeded || math.IsInf(c, 1) {
		return maxTrainsNeeded
	}
	return int(c)
}
