package analytics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/d1vyadharsh1n1/MetroX/core/analytics"
	"github.com/d1vyadharsh1n1/MetroX/core/model"
	"github.com/d1vyadharsh1n1/MetroX/core/schedule"
	"github.com/d1vyadharsh1n1/MetroX/core/scheduler"
)

func TestReportHandler(t *testing.T) {
	s, err := scheduler.New(scheduler.Policy{})
	if err != nil {
		t.Fatalf("scheduler: %v", err)
	}
	store := schedule.NewMemoryStore()
	h := NewReportHandler(store, analytics.New(s))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/fleet-analytics", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rr.Code)
	}

	store.Replace("run-1", []model.TrainRecord{{
		DailyRecord: model.DailyRecord{TrainID: "KM-T101", Depot: "Muttom Depot", MileageKM: 300},
		FinalStatus: model.StatusService,
	}})
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/fleet-analytics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rr.Code)
	}
	var body struct {
		Report analytics.Report `json:"report"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Report.Allocation.FleetSize != 1 {
		t.Fatalf("unexpected allocation %+v", body.Report.Allocation)
	}
}

func TestAlertsHandler(t *testing.T) {
	store := schedule.NewMemoryStore()
	h := NewAlertsHandler(store)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/alerts", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "{\"alerts\":[]}\n" {
		t.Fatalf("unexpected empty response %d %q", rr.Code, rr.Body.String())
	}

	store.Replace("run-1", []model.TrainRecord{{
		DailyRecord:          model.DailyRecord{TrainID: "KM-T101", BogieWearIndex: 0.4},
		PredictedFailureRisk: 0.4,
		FinalStatus:          model.StatusStandby,
	}})
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/alerts", nil))
	var body struct {
		Alerts []analytics.Alert `json:"alerts"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Alerts) != 2 {
		t.Fatalf("expected failure and bogie alerts got %+v", body.Alerts)
	}
}
