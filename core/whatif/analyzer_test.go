package whatif

import (
	"errors"
	"testing"

	"github.com/d1vyadharsh1n1/MetroX/core/model"
	"github.com/d1vyadharsh1n1/MetroX/core/schedule"
)

func fleet(statuses []model.Status, risks []float64) *schedule.MemoryStore {
	recs := make([]model.TrainRecord, len(statuses))
	for i, st := range statuses {
		r := 0.0
		if i < len(risks) {
			r = risks[i]
		}
		recs[i] = model.TrainRecord{
			DailyRecord:          model.DailyRecord{TrainID: string(rune('A' + i))},
			PredictedFailureRisk: r,
			PredictedStatus:      st,
			FinalStatus:          st,
		}
	}
	s := schedule.NewMemoryStore()
	s.Replace("run", recs)
	return s
}

func repeat(st model.Status, n int) []model.Status {
	out := make([]model.Status, n)
	for i := range out {
		out[i] = st
	}
	return out
}

func TestEmptyStoreReturnsNoData(t *testing.T) {
	a := New(schedule.NewMemoryStore(), Config{})
	h := 10.0
	for _, req := range []Request{
		{Scenario: ScenarioForceService, TrainID: "A"},
		{Scenario: ScenarioSimulateFailure, TrainID: "A"},
		{Scenario: ScenarioMaintenanceDelay},
		{Scenario: ScenarioHeadway, Headway: &h},
	} {
		if _, err := a.Run(req); !errors.Is(err, ErrNoData) {
			t.Fatalf("%s: expected ErrNoData got %v", req.Scenario, err)
		}
	}
}

func TestUnknownTrainAndScenario(t *testing.T) {
	a := New(fleet([]model.Status{model.StatusService}, nil), Config{})
	if _, err := a.Run(Request{Scenario: ScenarioForceService, TrainID: "Z"}); !errors.Is(err, ErrUnknownTrain) {
		t.Fatalf("expected ErrUnknownTrain got %v", err)
	}
	if _, err := a.Run(Request{Scenario: ScenarioSimulateFailure, TrainID: "Z"}); !errors.Is(err, ErrUnknownTrain) {
		t.Fatalf("expected ErrUnknownTrain got %v", err)
	}
	if _, err := a.Run(Request{Scenario: "meteor"}); !errors.Is(err, ErrInvalidScenario) {
		t.Fatalf("expected ErrInvalidScenario got %v", err)
	}
}

func TestForceServiceRecommendation(t *testing.T) {
	a := New(fleet([]model.Status{model.StatusStandby, model.StatusIBL}, []float64{0.3, 0.31}), Config{})
	res, err := a.ForceService("A")
	if err != nil {
		t.Fatalf("analysis: %v", err)
	}
	if res.Recommendation != "proceed" || res.SafetyConcern {
		t.Fatalf("unexpected result %+v", res)
	}
	res, _ = a.ForceService("B")
	if res.Recommendation != "caution" || !res.SafetyConcern {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Reason == "" {
		t.Fatalf("caution must cite a reason")
	}
}

func TestSimulateFailureCritical(t *testing.T) {
	st := append(repeat(model.StatusService, 6), repeat(model.StatusIBL, 4)...)
	a := New(fleet(st, nil), Config{})
	res, err := a.SimulateFailure("A")
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if !res.Critical || res.AvailableStandby != 0 {
		t.Fatalf("expected critical result, got %+v", res)
	}
	if res.ServiceImpact != "Requires immediate standby deployment" {
		t.Fatalf("unexpected impact %q", res.ServiceImpact)
	}
}

func TestSimulateFailureExcludesTarget(t *testing.T) {
	a := New(fleet([]model.Status{model.StatusStandby, model.StatusStandby, model.StatusService}, nil), Config{})
	res, _ := a.SimulateFailure("A")
	if res.AvailableStandby != 1 || res.Critical {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.ServiceImpact != "Minimal service impact" {
		t.Fatalf("unexpected impact %q", res.ServiceImpact)
	}
}

func TestMaintenanceDelay(t *testing.T) {
	st := repeat(model.StatusService, 5)
	a := New(fleet(st, []float64{0.05, 0.12, 0.35, 0.5, 0.02}), Config{})
	res, err := a.MaintenanceDelay()
	if err != nil {
		t.Fatalf("delay: %v", err)
	}
	if res.HighRiskTrains != 2 || res.Impact != "2 trains would become critical" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestHeadwayProportional(t *testing.T) {
	st := append(repeat(model.StatusService, 14), repeat(model.StatusStandby, 4)...)
	st = append(st, repeat(model.StatusIBL, 7)...)
	a := New(fleet(st, nil), Config{})

	res, err := a.Headway(7.5)
	if err != nil {
		t.Fatalf("headway: %v", err)
	}
	if res.TrainsNeeded != 14 || res.TotalNeeded != 17 || !res.Feasible || res.Shortage != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Allocation == nil || res.Allocation.IBL != 8 {
		t.Fatalf("unexpected allocation %+v", res.Allocation)
	}

	res, _ = a.Headway(4)
	// 14*7.5/4 = 26.25 -> 27 trains, plus 3 standby
	if res.TrainsNeeded != 27 || res.Feasible || res.Shortage != 5 || res.Allocation != nil {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestHeadwayZeroStandbyIsHonoured(t *testing.T) {
	zero := 0
	a := New(fleet(repeat(model.StatusService, 25), nil), Config{HeadwayModel: HeadwayRoundTrip, FleetSize: 20, MinStandby: &zero})
	res, err := a.Headway(6)
	if err != nil {
		t.Fatalf("headway: %v", err)
	}
	if res.TotalNeeded != 20 || !res.Feasible || res.Allocation == nil || res.Allocation.Standby != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.MaxHeadway != 6 {
		t.Fatalf("unexpected max headway %v", res.MaxHeadway)
	}
}

func TestConfigRejectsThresholdOutOfRange(t *testing.T) {
	for _, v := range []float64{-0.1, 1.5} {
		c := Config{RiskThreshold: v}
		c.SetDefaults()
		if err := c.Validate(); err == nil {
			t.Fatalf("expected error for threshold %v", v)
		}
	}
	c := Config{}
	c.SetDefaults()
	if err := c.Validate(); err != nil || c.Standby() != DefaultMinStandby {
		t.Fatalf("defaults: standby %d err %v", c.Standby(), err)
	}
}

func TestHeadwayRoundTrip(t *testing.T) {
	a := New(fleet(repeat(model.StatusService, 25), nil), Config{HeadwayModel: HeadwayRoundTrip, FleetSize: 25})
	res, err := a.Headway(6)
	if err != nil {
		t.Fatalf("headway: %v", err)
	}
	if res.TrainsNeeded != 20 || res.TotalNeeded != 23 || !res.Feasible {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.MaxHeadway != 5.45 {
		t.Fatalf("unexpected max headway %v", res.MaxHeadway)
	}
	res, _ = a.Headway(5)
	if res.Feasible || res.Shortage != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestHeadwayValidation(t *testing.T) {
	a := New(fleet([]model.Status{model.StatusService}, nil), Config{})
	for _, h := range []float64{0, -3} {
		if _, err := a.Headway(h); !errors.Is(err, ErrInvalidHeadway) {
			t.Fatalf("headway %v: expected ErrInvalidHeadway got %v", h, err)
		}
	}
	res, err := a.Run(Request{Scenario: ScenarioHeadway})
	if err != nil {
		t.Fatalf("default headway: %v", err)
	}
	if res.(HeadwayAnalysis).NewHeadway != 10 {
		t.Fatalf("expected default headway 10, got %+v", res)
	}
}

func TestHeadwayTinyValuesStayConsistent(t *testing.T) {
	a := New(fleet(repeat(model.StatusService, 14), nil), Config{})
	for _, h := range []float64{1e-17, 1e-20, 1e-300} {
		res, err := a.Headway(h)
		if err != nil {
			t.Fatalf("headway %v: %v", h, err)
		}
		if res.TrainsNeeded != maxTrainsNeeded || res.TotalNeeded != maxTrainsNeeded+3 {
			t.Fatalf("headway %v: unexpected counts %+v", h, res)
		}
		if res.Feasible || res.Allocation != nil {
			t.Fatalf("headway %v: expected infeasible, got %+v", h, res)
		}
		if res.Shortage != res.TotalNeeded-res.FleetSize || res.Shortage <= 0 {
			t.Fatalf("headway %v: inconsistent shortage %+v", h, res)
		}
	}
}

func TestAnalyzerDoesNotMutate(t *testing.T) {
	s := fleet([]model.Status{model.StatusService, model.StatusStandby}, []float64{0.9, 0.1})
	before := s.List()
	a := New(s, Config{})
	_, _ = a.ForceService("A")
	_, _ = a.SimulateFailure("A")
	_, _ = a.MaintenanceDelay()
	_, _ = a.Headway(3)
	after := s.List()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("record %d changed", i)
		}
	}
}
