package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/d1vyadharsh1n1/MetroX/core/execution"
	"github.com/d1vyadharsh1n1/MetroX/core/model"
	"github.com/d1vyadharsh1n1/MetroX/core/modlog"
	"github.com/d1vyadharsh1n1/MetroX/core/override"
	"github.com/d1vyadharsh1n1/MetroX/core/whatif"
	"github.com/d1vyadharsh1n1/MetroX/pkg/export"
)

var reviewMenu = []execution.Choice{
	{Value: "1", Label: "Force train to Service"},
	{Value: "2", Label: "Force train to Standby"},
	{Value: "3", Label: "Force train to IBL"},
	{Value: "4", Label: "Reset train to predicted status"},
	{Value: "5", Label: "Show current schedule"},
	{Value: "6", Label: "Show modification log"},
	{Value: "7", Label: "What-If Analysis"},
	{Value: "8", Label: "Finish modifications"},
}

var menuActions = map[string]struct {
	action override.Action
	prompt string
}{
	"1": {override.ForceService, "Enter Train ID to force to Service:"},
	"2": {override.ForceStandby, "Enter Train ID to force to Standby:"},
	"3": {override.ForceIBL, "Enter Train ID to force to IBL:"},
	"4": {override.Reset, "Enter Train ID to reset to predicted status:"},
}

var whatIfMenu = []execution.Choice{
	{Value: "1", Label: "Force specific train to Service"},
	{Value: "2", Label: "Simulate train failure"},
	{Value: "3", Label: "Change maintenance schedule"},
	{Value: "4", Label: "Adjust service hours/headway"},
	{Value: "5", Label: "Back to main menu"},
}

var headwayChoices = []execution.Choice{
	{Value: "5", Label: "5 min"},
	{Value: "7.5", Label: "7.5 min (current)"},
	{Value: "10", Label: "10 min"},
	{Value: "12", Label: "12 min"},
}

// review loops over the modification menu until the operator finishes.
func (p *Pipeline) review(ctx context.Context, r *execution.Run) error {
	r.Logf("🎮 INTERACTIVE SCHEDULE MODIFICATION")
	for {
		a, err := r.Ask(ctx, execution.Prompt{Text: "Select option (1-8):", Type: execution.InputMenu, Options: reviewMenu})
		if err != nil {
			return err
		}
		switch a.Value {
		case "1", "2", "3", "4":
			if err := p.modify(ctx, r, a.Value); err != nil {
				return err
			}
		case "5":
			for _, line := range export.Table(p.d.Store.List()) {
				r.Logf("%s", line)
			}
			r.Logf("%s", summary(model.StatusCounts(p.d.Store.List())))
		case "6":
			p.showLog(ctx, r)
		case "7":
			if err := p.whatIf(ctx, r); err != nil {
				return err
			}
		case "8":
			r.Logf("✅ Finishing modifications...")
			p.showSummary(ctx, r)
			return nil
		default:
			r.Logf("❌ Invalid option")
		}
	}
}

func (p *Pipeline) askTrain(ctx context.Context, r *execution.Run, text string) (string, error) {
	a, err := r.Ask(ctx, execution.Prompt{Text: text, Type: execution.InputTrainID})
	if err != nil {
		return "", err
	}
	return strings.ToUpper(strings.TrimSpace(a.Value)), nil
}

func (p *Pipeline) modify(ctx context.Context, r *execution.Run, choice string) error {
	m := menuActions[choice]
	id, err := p.askTrain(ctx, r, m.prompt)
	if err != nil {
		return err
	}
	res := p.d.Overrides.Modify(ctx, override.Request{Action: m.action, TrainID: id})
	if res.Outcome == override.NeedsConfirmation {
		a, err := r.Ask(ctx, execution.Prompt{
			Text: fmt.Sprintf("⚠️ WARNING: High failure risk (%.1f%%). Continue? (y/n):", res.Risk*100),
			Type: execution.InputConfirm,
		})
		if err != nil {
			return err
		}
		if !confirmed(a.Value) {
			r.Logf("❌ Operation cancelled")
			return nil
		}
		res = p.d.Overrides.Modify(ctx, override.Request{Action: m.action, TrainID: id, Force: true})
	}
	switch res.Outcome {
	case override.Applied:
		r.Logf("%s", res.Message)
		for _, line := range res.Alerts {
			r.Logf("%s", line)
		}
		if res.To == model.StatusIBL && res.From == model.StatusService {
			r.Logf("ℹ️ Service capacity reduced by 1 train")
		}
	case override.Rejected:
		if errors.Is(res.Err, override.ErrUnknownTrain) {
			r.Logf("❌ Train %s not found", id)
		} else {
			r.Logf("❌ %s", strings.TrimPrefix(res.Message, "❌ "))
		}
	}
	return nil
}

func (p *Pipeline) showLog(ctx context.Context, r *execution.Run) {
	r.Logf("📝 MODIFICATION LOG:")
	recs, err := p.d.ModLog.Query(ctx, modlog.Query{RunID: r.ID()})
	if err != nil {
		r.Logf("⚠️ Modification log unavailable: %v", err)
		return
	}
	if len(recs) == 0 {
		r.Logf("No modifications yet")
		return
	}
	for _, m := range modlog.Messages(recs) {
		r.Logf("• %s", m)
	}
}

func (p *Pipeline) showSummary(ctx context.Context, r *execution.Run) {
	recs, err := p.d.ModLog.Query(ctx, modlog.Query{RunID: r.ID()})
	if err != nil || len(recs) == 0 {
		r.Logf("✅ No modifications were made")
		return
	}
	r.Logf("📝 FINAL MODIFICATION SUMMARY:")
	for _, m := range modlog.Messages(recs) {
		r.Logf("• %s", m)
	}
	r.Logf("%s", summary(model.StatusCounts(p.d.Store.List())))
}

func (p *Pipeline) whatIf(ctx context.Context, r *execution.Run) error {
	r.Logf("🔍 WHAT-IF SCENARIO ANALYSIS")
	a, err := r.Ask(ctx, execution.Prompt{Text: "Select scenario (1-5):", Type: execution.InputMenu, Options: whatIfMenu})
	if err != nil {
		return err
	}
	switch a.Value {
	case "1":
		id, err := p.askTrain(ctx, r, "Enter Train ID to analyze forcing to Service:")
		if err != nil {
			return err
		}
		res, err := p.d.WhatIf.ForceService(id)
		if err != nil {
			r.Logf("❌ %v", err)
			return nil
		}
		r.Logf("🔍 ANALYSIS FOR %s: current %s, failure risk %.1f%%", res.TrainID, res.CurrentStatus, res.FailureRisk*100)
		r.Logf("%s: %s", res.Recommendation, res.Reason)
	case "2":
		id, err := p.askTrain(ctx, r, "Enter Train ID to simulate failure:")
		if err != nil {
			return err
		}
		res, err := p.d.WhatIf.SimulateFailure(id)
		if err != nil {
			r.Logf("❌ %v", err)
			return nil
		}
		r.Logf("🔍 FAILURE SIMULATION FOR %s: current %s", res.TrainID, res.CurrentStatus)
		r.Logf("%s (standby available: %d)", res.ServiceImpact, res.AvailableStandby)
		if res.Critical {
			r.Logf("⚠️ CRITICAL: No standby trains available!")
		}
	case "3":
		res, err := p.d.WhatIf.MaintenanceDelay()
		if err != nil {
			r.Logf("❌ %v", err)
			return nil
		}
		r.Logf("🔍 MAINTENANCE DELAY ANALYSIS: %d high-risk trains", res.HighRiskTrains)
		r.Logf("%s", res.Impact)
	case "4":
		a, err := r.Ask(ctx, execution.Prompt{Text: "Enter new headway in minutes:", Type: execution.InputMenu, Options: headwayChoices})
		if err != nil {
			return err
		}
		h, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64)
		if err != nil {
			r.Logf("❌ Please enter a valid number")
			return nil
		}
		res, err := p.d.WhatIf.Headway(h)
		if err != nil {
			r.Logf("❌ Headway must be positive")
			return nil
		}
		logHeadway(r, res)
	case "5":
	}
	return nil
}

func logHeadway(r *execution.Run, res whatif.HeadwayAnalysis) {
	r.Logf("🔍 HEADWAY ANALYSIS: new headway %g min", res.NewHeadway)
	r.Logf("Trains needed for service: %d, total with standby: %d, fleet: %d", res.TrainsNeeded, res.TotalNeeded, res.FleetSize)
	if res.Feasible && res.Allocation != nil {
		r.Logf("✅ FEASIBLE: %d Service, %d Standby, %d IBL", res.Allocation.Service, res.Allocation.Standby, res.Allocation.IBL)
		return
	}
	r.Logf("🚨 NOT FEASIBLE - Shortage of %d trains", res.Shortage)
	r.Logf("💡 Maximum headway: %.1f min", res.MaxHeadway)
}

// confirmed accepts y or yes in any case.
func confirmed(v string) bool {
	v = strings.TrimSpace(v)
	return strings.EqualFold(v, "y") || strings.EqualFold(v, "yes")
}
