package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agrisense/agrisense/internal/agronomy"
	"github.com/agrisense/agrisense/internal/model/entities"
	"github.com/agrisense/agrisense/internal/services/advisor"
	"github.com/agrisense/agrisense/pkg/mqttbus"
)

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
func envFloat(key string, def float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func main() {
	_ = godotenv.Load()

	cfg := struct {
		Broker mqttbus.BrokerConfig

		ZonesFile        string
		SoilProfilesFile string
		CropsFile        string

		HighThresholdMM   float64
		MediumThresholdMM float64
		MaxNeedMM         float64

		OWMAPIKey string
		HTTPPort  int
	}{
		Broker: mqttbus.BrokerConfig{
			Host:     envStr("MQTT_HOST", "localhost"),
			Port:     envInt("MQTT_PORT", 1883),
			User:     envStr("MQTT_USER", "guest"),
			Password: envStr("MQTT_PASSWORD", "guest"),
			ClientID: envStr("HOSTNAME", "advisor"),
		},

		ZonesFile:        envStr("ZONES_FILE", "config/zones.json"),
		SoilProfilesFile: strings.TrimSpace(os.Getenv("SOIL_PROFILES_FILE")),
		CropsFile:        envStr("CROPS_FILE", "config/crops.json"),

		HighThresholdMM:   envFloat("NEED_HIGH_MM", 12),
		MediumThresholdMM: envFloat("NEED_MEDIUM_MM", 6),
		MaxNeedMM:         envFloat("NEED_MAX_MM", 50),

		OWMAPIKey: strings.TrimSpace(os.Getenv("OWM_API_KEY")),
		HTTPPort:  envInt("HTTP_PORT", 8082),
	}

	zones, err := entities.LoadZones(cfg.ZonesFile)
	if err != nil {
		log.Fatalf("advisor: load zones: %v", err)
	}
	crops, err := entities.LoadCropDatabase(cfg.CropsFile)
	if err != nil {
		log.Fatalf("advisor: load crop database: %v", err)
	}

	estCfg := agronomy.DefaultIrrigationConfig()
	estCfg.HighThresholdMM = cfg.HighThresholdMM
	estCfg.MediumThresholdMM = cfg.MediumThresholdMM
	estCfg.MaxNeedMM = cfg.MaxNeedMM
	if cfg.SoilProfilesFile != "" {
		profiles, err := entities.LoadSoilProfiles(cfg.SoilProfilesFile)
		if err != nil {
			log.Fatalf("advisor: load soil profiles: %v", err)
		}
		estCfg.SoilProfiles = profiles
	}
	estimator, err := agronomy.NewIrrigationEstimator(estCfg)
	if err != nil {
		log.Fatalf("advisor: estimator config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := mqttbus.NewBrokerConn(&cfg.Broker, ctx)
	if err != nil {
		log.Fatalf("advisor: mqtt connection error: %v", err)
	}
	defer mqttbus.CloseBrokerConn(client)

	publisher := mqttbus.NewPublisher(client, "event/irrigationAdvice")
	consumer := mqttbus.NewMultiConsumer(client, []string{"sensor/aggregated/#", "sensor/water/#"}, nil)

	var weather advisor.WeatherClient
	if cfg.OWMAPIKey != "" {
		weather = advisor.NewOWMClient(cfg.OWMAPIKey)
		log.Println("advisor: openweathermap fallback enabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := advisor.NewMetrics(reg)

	svc, err := advisor.NewService(consumer, publisher, estimator, weather, zones, crops, metrics)
	if err != nil {
		log.Fatalf("advisor: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/", svc.Handler())
	hs := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("advisor: HTTP listening on :%d", cfg.HTTPPort)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("advisor: http server error: %v", err)
		}
	}()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Println("advisor: shutdown signal received")
		shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = hs.Shutdown(shCtx)
		shCancel()
		cancel()
	}()

	log.Printf("advisor: running, zones=%d crops=%d", len(zones), len(crops))
	svc.Start(ctx)
}
