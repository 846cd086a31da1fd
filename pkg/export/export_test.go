package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/d1vyadharsh1n1/MetroX/core/model"
)

func sample() []model.TrainRecord {
	return []model.TrainRecord{
		{
			DailyRecord:          model.DailyRecord{TrainID: "KM-T101", Depot: "Pettah Depot"},
			PredictedFailureRisk: 0.125,
			PredictedStatus:      model.StatusService,
			FinalStatus:          model.StatusService,
			Ranking:              1,
		},
		{
			DailyRecord:          model.DailyRecord{TrainID: "KM-T102", Depot: "Tripunithura Depot"},
			PredictedFailureRisk: 0.4,
			PredictedStatus:      model.StatusStandby,
			FinalStatus:          model.StatusIBL,
			ManualOverrideFlag:   true,
			Ranking:              2,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sample()); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if strings.Join(rows[2], ",") != "2,KM-T102,Tripunithura Depot,IBL,Standby,0.4,0,true" {
		t.Fatalf("unexpected row %v", rows[2])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sample()); err != nil {
		t.Fatalf("write: %v", err)
	}
	var out []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out[1]["final_status"] != "IBL" || out[1]["train_id"] != "KM-T102" {
		t.Fatalf("unexpected json %v", out[1])
	}
}

func TestTable(t *testing.T) {
	lines := Table(sample())
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[1], "12.5%") || strings.HasSuffix(lines[1], "*") {
		t.Fatalf("unexpected line %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "40.0%*") {
		t.Fatalf("override not marked: %q", lines[2])
	}
}

func TestRiskChartHTML(t *testing.T) {
	html, err := RiskChartHTML(sample(), 0.3)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Failure Risk by Train", "KM-T101", "Standby"} {
		if !strings.Contains(html, want) {
			t.Fatalf("chart missing %q", want)
		}
	}
}
