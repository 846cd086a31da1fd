package export

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/d1vyadharsh1n1/MetroX/core/model"
)

// RiskChartHTML renders predicted failure risk per train as a bar chart,
// one series per final status.
func RiskChartHTML(recs []model.TrainRecord, threshold float64) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Failure Risk by Train",
			Subtitle: fmt.Sprintf("override threshold %.0f%%", threshold*100),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Train"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Risk (%)"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	ids := make([]string, 0, len(recs))
	series := map[model.Status][]opts.BarData{}
	for _, r := range recs {
		ids = append(ids, r.TrainID)
		for _, s := range model.Statuses {
			v := opts.BarData{Value: "-"}
			if r.FinalStatus == s {
				v.Value = r.PredictedFailureRisk * 100
			}
			series[s] = append(series[s], v)
		}
	}
	bar.SetXAxis(ids)
	for _, s := range model.Statuses {
		bar.AddSeries(s.String(), series[s], charts.WithBarChartOpts(opts.BarChart{Stack: "risk"}))
	}

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		return "", fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.String(), nil
}
