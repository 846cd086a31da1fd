package schedule

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d1vyadharsh1n1/MetroX/core/model"
	"github.com/d1vyadharsh1n1/MetroX/core/modlog"
	"github.com/d1vyadharsh1n1/MetroX/core/override"
	"github.com/d1vyadharsh1n1/MetroX/core/schedule"
)

func train(id string, st model.Status, risk float64) model.TrainRecord {
	return model.TrainRecord{
		DailyRecord:          model.DailyRecord{TrainID: id, Depot: "Muttom Depot"},
		PredictedFailureRisk: risk,
		PredictedStatus:      st,
		FinalStatus:          st,
	}
}

type fixture struct {
	store  *schedule.MemoryStore
	log    *modlog.MemoryStore
	modify http.Handler
	list   http.Handler
	sched  http.Handler
}

func newFixture(t *testing.T, cfg override.Config, recs ...model.TrainRecord) *fixture {
	t.Helper()
	store := schedule.NewMemoryStore()
	if len(recs) > 0 {
		store.Replace("run-1", recs)
	}
	log := modlog.NewMemoryStore()
	engine := override.NewEngine(store, log, cfg, nil, nil)
	return &fixture{
		store:  store,
		log:    log,
		modify: NewModifyHandler(engine, store, log, nil),
		list:   NewLogHandler(store, log),
		sched:  NewScheduleHandler(store),
	}
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	out := map[string]any{}
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") && rr.Body.Len() > 0 && rr.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	}
	return rr, out
}

func TestScheduleNotAvailable(t *testing.T) {
	f := newFixture(t, override.Config{})
	rr, body := do(t, f.sched, http.MethodGet, "/api/schedule", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "No schedule available", body["error"])
}

func TestScheduleCSV(t *testing.T) {
	f := newFixture(t, override.Config{}, train("KM-T101", model.StatusService, 0.1))
	rr, _ := do(t, f.sched, http.MethodGet, "/api/schedule?format=csv", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "KM-T101")
}

func TestForceIBLRoundTrip(t *testing.T) {
	f := newFixture(t, override.Config{},
		train("T1", model.StatusService, 0.1),
		train("T2", model.StatusStandby, 0.2),
	)
	_, before := do(t, f.list, http.MethodGet, "/api/modification-log", "")
	prev := len(before["modification_log"].([]any))

	rr, body := do(t, f.modify, http.MethodPost, "/api/modify", `{"action":"force_ibl","train_id":"T1"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "IBL", body["new_status"])
	assert.Len(t, body["modification_log"], prev+1)
	assert.NotNil(t, body["system_alerts"])

	rr, _ = do(t, f.sched, http.MethodGet, "/api/schedule", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var recs []model.TrainRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recs))
	var found bool
	for _, r := range recs {
		if r.TrainID == "T1" {
			found = true
			assert.Equal(t, model.StatusIBL, r.FinalStatus)
			assert.True(t, r.ManualOverrideFlag)
		}
	}
	assert.True(t, found)

	_, after := do(t, f.list, http.MethodGet, "/api/modification-log", "")
	assert.Len(t, after["modification_log"], prev+1)
}

func TestModifyHighRiskWarning(t *testing.T) {
	f := newFixture(t, override.Config{}, train("T1", model.StatusStandby, 0.45))

	rr, body := do(t, f.modify, http.MethodPost, "/api/modify", `{"action":"force_service","train_id":"T1"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, body["proceed_anyway"])
	assert.Contains(t, body["warning"], "HIGH RISK WARNING")
	assert.NotContains(t, body, "success")
	assert.NotContains(t, body, "error")

	rec, err := f.store.Get("T1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusStandby, rec.FinalStatus)

	rr, body = do(t, f.modify, http.MethodPost, "/api/modify", `{"action":"force_service","train_id":"T1","force":true}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Service", body["new_status"])
}

func TestModifyErrorStatuses(t *testing.T) {
	f := newFixture(t, override.Config{BlockIBLRelease: true},
		train("T1", model.StatusIBL, 0.5),
		train("T2", model.StatusService, 0.1),
	)
	cases := []struct {
		name string
		body string
		code int
	}{
		{"missing train", `{"action":"force_ibl"}`, http.StatusBadRequest},
		{"bad json", `{"action":`, http.StatusBadRequest},
		{"invalid action", `{"action":"launch","train_id":"T2"}`, http.StatusBadRequest},
		{"unknown train", `{"action":"force_ibl","train_id":"T9"}`, http.StatusNotFound},
		{"nothing to reset", `{"action":"reset","train_id":"T2"}`, http.StatusConflict},
		{"safety violation", `{"action":"force_standby","train_id":"T1"}`, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr, body := do(t, f.modify, http.MethodPost, "/api/modify", tc.body)
			assert.Equal(t, tc.code, rr.Code)
			assert.NotEmpty(t, body["error"])
			assert.NotContains(t, body, "success")
		})
	}
}

func TestModifyWithoutSchedule(t *testing.T) {
	f := newFixture(t, override.Config{})
	rr, body := do(t, f.modify, http.MethodPost, "/api/modify", `{"action":"force_ibl","train_id":"T1"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "No schedule available", body["error"])
}

func TestLogScopes(t *testing.T) {
	f := newFixture(t, override.Config{}, train("T1", model.StatusService, 0.1))
	rr, _ := do(t, f.modify, http.MethodPost, "/api/modify", `{"action":"force_standby","train_id":"T1"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	f.store.Replace("run-2", []model.TrainRecord{train("T1", model.StatusService, 0.1)})

	_, cur := do(t, f.list, http.MethodGet, "/api/modification-log", "")
	assert.Empty(t, cur["modification_log"])

	_, all := do(t, f.list, http.MethodGet, "/api/modification-log?scope=all&detail=true", "")
	assert.Len(t, all["modification_log"], 1)
	assert.Len(t, all["records"], 1)
}

func TestChartHandler(t *testing.T) {
	store := schedule.NewMemoryStore()
	h := NewChartHandler(store, 0.3)
	rr, _ := do(t, h, http.MethodGet, "/api/schedule/chart", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	store.Replace("run-1", []model.TrainRecord{train("KM-T101", model.StatusService, 0.12)})
	rr, _ = do(t, h, http.MethodGet, "/api/schedule/chart", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "KM-T101")
}
