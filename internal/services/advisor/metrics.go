package advisor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the advisor's Prometheus instrument set, served on /metrics.
type Metrics struct {
	AdviceTotal  *prometheus.CounterVec
	SkippedTotal *prometheus.CounterVec

	ZoneNeedMM      *prometheus.GaugeVec
	SoilHealthScore *prometheus.GaugeVec
	WaterScore      *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AdviceTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agrisense",
			Subsystem: "advisor",
			Name:      "advice_total",
			Help:      "Irrigation advice events published, by priority tier.",
		}, []string{"priority"}),
		SkippedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agrisense",
			Subsystem: "advisor",
			Name:      "skipped_readings_total",
			Help:      "Snapshots skipped without advice, by reason.",
		}, []string{"reason"}),
		ZoneNeedMM: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "agrisense",
			Subsystem: "advisor",
			Name:      "zone_need_mm",
			Help:      "Latest estimated daily water need per zone, in mm.",
		}, []string{"zone"}),
		SoilHealthScore: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "agrisense",
			Subsystem: "advisor",
			Name:      "soil_health_score",
			Help:      "Latest composite soil health score per zone (0-100).",
		}, []string{"zone"}),
		WaterScore: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "agrisense",
			Subsystem: "advisor",
			Name:      "water_quality_score",
			Help:      "Latest water quality score per source (0-100).",
		}, []string{"source"}),
	}
}
