package event

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

// Advice is the shape served to the gateway.
type Advice struct {
	ZoneID   string  `json:"zone_id,omitempty"`
	NeedMM   float64 `json:"need_mm"`
	Priority string  `json:"priority,omitempty"`
	Time     string  `json:"time"` // RFC3339
}

type adviceQueryParams struct {
	Minutes   int
	Limit     int
	TimeoutMS int
}

func parseAdviceParams(r *http.Request, defMin, defLim, defTOms int) adviceQueryParams {
	q := r.URL.Query()
	get := func(k string, def, min, max int) int {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				if n < min {
					return min
				}
				if max > 0 && n > max {
					return max
				}
				return n
			}
		}
		return def
	}
	return adviceQueryParams{
		Minutes:   get("minutes", defMin, 1, 7*24*60),
		Limit:     get("limit", defLim, 1, 500),
		TimeoutMS: get("timeout_ms", defTOms, 200, 5000),
	}
}

func buildAdviceFlux(bucket string, minutes, limit int) string {
	return fmt.Sprintf(`
from(bucket: %q)
  |> range(start: -%dm)
  |> filter(fn: (r) => r._measurement == "system_event" and r.event_type == "irrigation.advice")
  |> filter(fn: (r) => r._field == "need_mm")
  |> keep(columns: ["_time","_value","zone_id","severity"])
  |> sort(columns: ["_time"], desc: true)
  |> limit(n:%d)
`, bucket, minutes, limit)
}

// NewAdviceLatestHandler serves the recent advice stream read back from
// Influx.
//
// GET /events/advice/latest?limit=20[&minutes=1440]
func NewAdviceLatestHandler(influx influxdb2.Client, org, bucket string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := parseAdviceParams(r, 1440, 20, 2000)

		ctx, cancel := context.WithTimeout(r.Context(), time.Duration(p.TimeoutMS)*time.Millisecond)
		defer cancel()

		api := influx.QueryAPI(org)
		res, err := api.Query(ctx, buildAdviceFlux(bucket, p.Minutes, p.Limit))
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Error", "influx-query-error")
			_, _ = w.Write([]byte("[]"))
			return
		}
		defer func() { _ = res.Close() }()

		out := make([]Advice, 0, p.Limit)
		for res.Next() {
			rec := res.Record()

			var need float64
			switch v := rec.Value().(type) {
			case float64:
				need = v
			case int64:
				need = float64(v)
			case string:
				if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
					need = f
				}
			}

			var zone string
			if v, ok := rec.ValueByKey("zone_id").(string); ok {
				zone = v
			}
			var prio string
			if v, ok := rec.ValueByKey("severity").(string); ok && v == "warning" {
				prio = "High"
			}

			out = append(out, Advice{
				ZoneID:   zone,
				NeedMM:   need,
				Priority: prio,
				Time:     rec.Time().UTC().Format(time.RFC3339),
			})
		}
		if res.Err() != nil {
			w.Header().Set("X-Error", "influx-iter-error")
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	})
}
