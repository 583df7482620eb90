package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"
)

var seedPaths = []string{
	"/orders/created",
	"/orders/paid",
	"/customers/updated",
	"/inventory/sync",
	"/payments/callback",
	"/shipping/status",
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Send synthetic webhook traffic to a running relay",
	Long: `Generate realistic webhook payloads and post them to a relay.

Each event goes to a random capture path under the given tenant hosts,
the way upstream providers deliver real traffic.

Examples:
  # 100 events for one store against a local relay
  relayctl seed --url http://localhost:8080 --host shop1.example

  # Spread traffic over several tenants
  relayctl seed --host shop1.example --host shop2.example --count 500`,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	relayURL, _ := cmd.Flags().GetString("url")
	hosts, _ := cmd.Flags().GetStringArray("host")
	count, _ := cmd.Flags().GetInt("count")
	interval, _ := cmd.Flags().GetDuration("interval")

	if len(hosts) == 0 {
		return fmt.Errorf("at least one --host is required")
	}

	gofakeit.Seed(time.Now().UnixNano())
	client := &http.Client{Timeout: 10 * time.Second}

	fmt.Printf("Seeding %d events across %d host(s) via %s\n", count, len(hosts), relayURL)

	success := 0
	failed := 0
	for i := 0; i < count; i++ {
		host := hosts[rand.Intn(len(hosts))]
		path := seedPaths[rand.Intn(len(seedPaths))]

		body, err := json.Marshal(seedPayload())
		if err != nil {
			return fmt.Errorf("failed to build payload: %w", err)
		}

		req, err := http.NewRequest(http.MethodPost, relayURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Host = host
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Webhook-Id", gofakeit.UUID())

		resp, err := client.Do(req)
		if err != nil {
			failed++
			fmt.Printf("  send failed: %v\n", err)
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusCreated {
			success++
		} else {
			failed++
			fmt.Printf("  relay returned %d for %s%s\n", resp.StatusCode, host, path)
		}

		if interval > 0 && i < count-1 {
			time.Sleep(interval)
		}
	}

	fmt.Printf("Done: %d delivered, %d failed\n", success, failed)
	if failed > 0 {
		return fmt.Errorf("%d events were not captured", failed)
	}
	return nil
}

func seedPayload() map[string]any {
	return map[string]any{
		"id":         gofakeit.UUID(),
		"created_at": time.Now().UTC().Format(time.RFC3339),
		"customer": map[string]any{
			"name":  gofakeit.Name(),
			"email": gofakeit.Email(),
			"ip":    gofakeit.IPv4Address(),
		},
		"order": map[string]any{
			"number":   gofakeit.Number(10000, 99999),
			"total":    gofakeit.Price(5, 500),
			"currency": gofakeit.CurrencyShort(),
			"product":  gofakeit.ProductName(),
		},
		"source": gofakeit.DomainName(),
	}
}

func init() {
	seedCmd.Flags().String("url", "http://localhost:8080", "base URL of the relay")
	seedCmd.Flags().StringArray("host", nil, "tenant host to seed (repeatable)")
	seedCmd.Flags().Int("count", 100, "number of events to send")
	seedCmd.Flags().Duration("interval", 0, "pause between events")

	rootCmd.AddCommand(seedCmd)
}
