package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/agrisense/agrisense/internal/model/entities"
	sensorSimulator "github.com/agrisense/agrisense/internal/sensor-simulator"
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
func envBool(key string, def bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func main() {
	_ = godotenv.Load()

	cfg := struct {
		Broker mqttbus.BrokerConfig

		ZonesFile   string
		Interval    time.Duration
		DecayPerMin float64
		Seed        int64
		SeedFromAPI bool
	}{
		Broker: mqttbus.BrokerConfig{
			Host:     envStr("MQTT_HOST", "localhost"),
			Port:     envInt("MQTT_PORT", 1883),
			User:     envStr("MQTT_USER", "guest"),
			Password: envStr("MQTT_PASSWORD", "guest"),
			ClientID: envStr("HOSTNAME", "sensor-simulator"),
		},

		ZonesFile:   envStr("ZONES_FILE", "config/zones.json"),
		Interval:    time.Duration(envInt("PUBLISH_INTERVAL_SEC", 10)) * time.Second,
		DecayPerMin: envFloat("MOISTURE_DECAY_PER_MIN", 0),
		Seed:        int64(envInt("RNG_SEED", int(time.Now().UnixNano()))),
		SeedFromAPI: envBool("SOILGRIDS_SEED", false),
	}

	zones, err := entities.LoadZones(cfg.ZonesFile)
	if err != nil {
		log.Fatalf("simulator: load zones: %v", err)
	}
	log.Printf("simulator: loaded %d zones from %s", len(zones), cfg.ZonesFile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := mqttbus.NewBrokerConn(&cfg.Broker, ctx)
	if err != nil {
		log.Fatalf("simulator: mqtt connection error: %v", err)
	}
	defer mqttbus.CloseBrokerConn(client)

	publisher := mqttbus.NewPublisher(client, "sensor/soil")

	sim := sensorSimulator.NewSimulator(publisher, zones, cfg.DecayPerMin, cfg.Seed)
	if cfg.SeedFromAPI {
		seedCtx, seedCancel := context.WithTimeout(ctx, 30*time.Second)
		sim.SeedFromSoilGrids(seedCtx, zones)
		seedCancel()
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Println("simulator: shutdown signal received")
		cancel()
	}()

	log.Printf("simulator: publishing every %s", cfg.Interval)
	sim.Start(ctx, cfg.Interval)
}
