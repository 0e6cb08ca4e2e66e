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

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/joho/godotenv"

	"github.com/agrisense/agrisense/internal/services/persistence"
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

	broker := mqttbus.BrokerConfig{
		Host:     envStr("MQTT_HOST", "localhost"),
		Port:     envInt("MQTT_PORT", 1883),
		User:     envStr("MQTT_USER", "guest"),
		Password: envStr("MQTT_PASSWORD", "guest"),
		ClientID: envStr("HOSTNAME", "persistence"),
	}
	influxCfg := persistence.InfluxConfig{
		InfluxURL:    envStr("INFLUX_URL", "http://localhost:8086"),
		InfluxToken:  os.Getenv("INFLUX_TOKEN"),
		InfluxOrg:    envStr("INFLUX_ORG", "agrisense"),
		InfluxBucket: envStr("INFLUX_BUCKET", "readings"),
	}
	httpPort := envInt("HTTP_PORT", 8081)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := mqttbus.NewBrokerConn(&broker, ctx)
	if err != nil {
		log.Fatalf("persistence: mqtt connection error: %v", err)
	}
	defer mqttbus.CloseBrokerConn(client)

	influx := influxdb2.NewClient(influxCfg.InfluxURL, influxCfg.InfluxToken)
	defer influx.Close()

	consumer := mqttbus.NewMultiConsumer(client, []string{"sensor/soil/#", "sensor/weather", "sensor/water/#"}, nil)
	svc, err := persistence.NewService(consumer, influx, influxCfg)
	if err != nil {
		log.Fatalf("persistence: %v", err)
	}

	hs := &http.Server{
		Addr:              ":" + strconv.Itoa(httpPort),
		Handler:           persistence.NewHTTPMux(svc),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("persistence: HTTP listening on :%d", httpPort)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("persistence: http server error: %v", err)
		}
	}()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Println("persistence: shutdown signal received")
		shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = hs.Shutdown(shCtx)
		shCancel()
		cancel()
	}()

	log.Println("persistence: consuming sensor topics")
	svc.Start(ctx)
}
