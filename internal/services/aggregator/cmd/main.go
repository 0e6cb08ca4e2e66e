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

	"github.com/agrisense/agrisense/internal/services/aggregator"
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

func main() {
	_ = godotenv.Load()

	cfg := &mqttbus.BrokerConfig{
		Host:     envStr("MQTT_HOST", "localhost"),
		Port:     envInt("MQTT_PORT", 1883),
		User:     envStr("MQTT_USER", "guest"),
		Password: envStr("MQTT_PASSWORD", "guest"),
		ClientID: envStr("HOSTNAME", "aggregator"),
	}
	interval := time.Duration(envInt("AGGREGATION_INTERVAL_SEC", 60)) * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := mqttbus.NewBrokerConn(cfg, ctx)
	if err != nil {
		log.Fatalf("aggregator: mqtt connection error: %v", err)
	}
	defer mqttbus.CloseBrokerConn(client)

	publisher := mqttbus.NewPublisher(client, "sensor/aggregated")
	consumer := mqttbus.NewMultiConsumer(client, []string{"sensor/soil/#", "sensor/weather"}, nil)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Println("aggregator: shutdown signal received")
		cancel()
	}()

	svc := aggregator.NewService(consumer, publisher, interval)
	log.Printf("aggregator: running, window=%s", interval)
	svc.Start(ctx)
}
