package app

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/agrisense/agrisense/internal/model"
)

// AdviceHistory is one historical advice row from the event service.
type AdviceHistory struct {
	ZoneID   string  `json:"zone_id,omitempty"`
	NeedMM   float64 `json:"need_mm"`
	Priority string  `json:"priority,omitempty"`
	Time     string  `json:"time"`
}

// DashboardData is the single payload the dashboard UI polls.
type DashboardData struct {
	Zones         []model.SoilReading          `json:"zones"`
	Schedule      []ZoneScheduleRow            `json:"schedule"`
	Water         []model.WaterAssessmentEvent `json:"water"`
	History       []AdviceHistory              `json:"history"`
	DroughtRisk   []string                     `json:"drought_risk"`
	WaterSavings  float64                      `json:"water_savings_pct"`
	MoistureStats map[string]float64           `json:"moisture_stats"`
}

type adviceResp struct {
	Advice []model.IrrigationAdviceEvent `json:"advice"`
}

type waterResp struct {
	Water []model.WaterAssessmentEvent `json:"water"`
}

// HandleDashboard fans out to all upstreams in parallel, tolerating any of
// them being down; missing sections come back empty.
func (g *Gateway) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), g.cfg.HTTPTimeout)
	defer cancel()

	var (
		soils   []model.SoilReading
		advice  adviceResp
		water   waterResp
		history []AdviceHistory
	)

	done := make(chan struct{}, 4)
	fetch := func(u *Upstream, out any) {
		if err := u.GetJSON(ctx, out); err != nil {
			g.cfg.Logger.Printf("gateway: %v", err)
		}
		done <- struct{}{}
	}
	go fetch(g.persistence, &soils)
	go fetch(g.advisor, &advice)
	go fetch(g.water, &water)
	go fetch(g.events, &history)
	for i := 0; i < 4; i++ {
		<-done
	}

	data := DashboardData{
		Zones:         soils,
		Schedule:      BuildSchedule(advice.Advice),
		Water:         water.Water,
		History:       history,
		DroughtRisk:   DroughtRiskZones(advice.Advice, g.cfg.DroughtMoisturePct),
		WaterSavings:  WaterSavingsPct(advice.Advice),
		MoistureStats: MoistureStats(soils),
	}
	if data.Zones == nil {
		data.Zones = []model.SoilReading{}
	}
	if data.Water == nil {
		data.Water = []model.WaterAssessmentEvent{}
	}
	if data.History == nil {
		data.History = []AdviceHistory{}
	}
	if data.DroughtRisk == nil {
		data.DroughtRisk = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

func (g *Gateway) HandleHealthz(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}
