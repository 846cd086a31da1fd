package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{"service": StatusService, " STANDBY ": StatusStandby, "Ibl": StatusIBL}
	for in, want := range cases {
		got, err := ParseStatus(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q: got %s want %s", in, got, want)
		}
	}
	if _, err := ParseStatus("depot"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestTrainRecordJSONInlinesDailyFields(t *testing.T) {
	rec := TrainRecord{
		DailyRecord:     DailyRecord{TrainID: "KM-T101", Depot: "Pettah Depot"},
		PredictedStatus: StatusStandby,
		FinalStatus:     StatusService,
	}
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, want := range []string{`"train_id":"KM-T101"`, `"final_status":"Service"`, `"predicted_status":"Standby"`} {
		if !strings.Contains(s, want) {
			t.Fatalf("missing %s in %s", want, s)
		}
	}
	var back TrainRecord
	if err := json.Unmarshal([]byte(strings.Replace(s, `"Service"`, `"service"`, 1)), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.FinalStatus != StatusService {
		t.Fatalf("expected case-insensitive status decode, got %s", back.FinalStatus)
	}
}

func TestHardBlocked(t *testing.T) {
	r := DailyRecord{RSDaysFromPlan: 10, SigDaysFromPlan: 5, TelDaysFromPlan: 7}
	if r.HardBlocked() {
		t.Fatalf("valid certificates should not block")
	}
	r.TelDaysFromPlan = 0
	if !r.HardBlocked() {
		t.Fatalf("expired telecom certificate should block")
	}
	r = DailyRecord{RSDaysFromPlan: 10, SigDaysFromPlan: 10, TelDaysFromPlan: 10, JobCriticalCount: 1}
	if !r.HardBlocked() {
		t.Fatalf("critical job should block")
	}
}

func TestPassengerScore(t *testing.T) {
	r := DailyRecord{HVACAlert: true, IoTTempAvgC: 28.5}
	if got := r.PassengerScore(); got != 70 {
		t.Fatalf("expected 70 got %v", got)
	}
}
