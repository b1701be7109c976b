package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	outhttp "github.com/fyrsmithlabs/outcomed/internal/http"
)

// serverURL is the base URL of a running outcomed
var serverURL string

// healthCmd checks a running outcomed
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check outcomed server health",
	Long: `Check the health of a running outcomed HTTP server.

Examples:
  outcome health
  outcome health --server http://localhost:8080`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

func init() {
	healthCmd.Flags().StringVar(&serverURL, "server", "http://127.0.0.1:9191", "outcomed server URL")
}

func runHealth(cmd *cobra.Command, _ []string) error {
	url := strings.TrimRight(serverURL, "/") + "/health"

	req, err := http.NewRequestWithContext(commandContext(cmd), http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("server returned status %d (failed to read response body: %w)", resp.StatusCode, readErr)
		}
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	var health outhttp.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return printReport(cmd, health, renderHealth(health))
}
