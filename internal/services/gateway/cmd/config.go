package main

import (
	"os"
	"strconv"
)

type Config struct {
	Port      string
	TimeoutMs int

	PersistenceURL string // e.g. http://persistence:8081
	AdvisorURL     string // e.g. http://advisor:8082
	EventURL       string // e.g. http://event-service:8083

	BreakerFailures int
	BreakerOpenSec  int

	DroughtMoisturePct float64

	CORSOrigins string // comma-separated, * for any
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}
func getenvFloat(k string, d float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return d
}

func loadConfig() Config {
	return Config{
		Port:      getenv("PORT", "8080"),
		TimeoutMs: getenvInt("TIMEOUT_MS", 3000),

		PersistenceURL: getenv("PERSISTENCE_URL", "http://persistence:8081"),
		AdvisorURL:     getenv("ADVISOR_URL", "http://advisor:8082"),
		EventURL:       getenv("EVENT_URL", "http://event-service:8083"),

		BreakerFailures: getenvInt("BREAKER_FAILURES", 3),
		BreakerOpenSec:  getenvInt("BREAKER_OPEN_SEC", 10),

		DroughtMoisturePct: getenvFloat("DROUGHT_MOISTURE_PCT", 20),

		CORSOrigins: getenv("CORS_ORIGINS", "*"),
	}
}
