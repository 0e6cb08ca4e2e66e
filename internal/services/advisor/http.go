package advisor

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// Handler exposes the advisor's latest state over HTTP for the gateway.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/advice/latest", s.handleAdviceLatest)
	mux.HandleFunc("/water/latest", s.handleWaterLatest)
	mux.HandleFunc("/crops/recommend", s.handleCropsRecommend)
	return mux
}

func (s *Service) handleAdviceLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]any{"advice": s.LatestAdvice()})
}

func (s *Service) handleWaterLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]any{"water": s.LatestWater()})
}

// GET /crops/recommend?zone=zone-north&top=3
func (s *Service) handleCropsRecommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	zone := strings.TrimSpace(r.URL.Query().Get("zone"))
	if zone == "" {
		http.Error(w, "missing zone parameter", http.StatusBadRequest)
		return
	}
	top := 3
	if v := r.URL.Query().Get("top"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			top = n
		}
	}

	scores, ok := s.RecommendCrops(zone, top)
	if !ok {
		http.Error(w, "no soil data for zone yet", http.StatusNotFound)
		return
	}
	out := make([]map[string]any, 0, len(scores))
	for _, cs := range scores {
		out = append(out, map[string]any{"crop": cs.Crop, "score": cs.Score})
	}
	writeJSON(w, map[string]any{"zone": zone, "recommendations": out})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
