package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	gatewayURL string
	timeout    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "agrisensectl",
	Short: "Query the AgriSense gateway from the command line",
	Long: `agrisensectl talks to the AgriSense gateway and prints the dashboard
data, the latest per-zone soil readings or the current irrigation advice
as JSON.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&gatewayURL, "gateway", envOr("AGRISENSE_GATEWAY", "http://localhost:8080"), "gateway base URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Second, "request timeout")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getJSON fetches url and decodes the body into out.
func getJSON(url string, out any) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("GET %s -> %s", url, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// printJSON pretty-prints v to stdout.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
