package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/medicoord/coordinator-go/internal/config"
	"github.com/medicoord/coordinator-go/internal/domain"
	"github.com/medicoord/coordinator-go/internal/infra/cache"
	"github.com/medicoord/coordinator-go/internal/infra/client"
	"github.com/medicoord/coordinator-go/internal/infra/observability"
	"github.com/medicoord/coordinator-go/internal/infra/resilience"
	"github.com/medicoord/coordinator-go/internal/infra/staticdata"
	"github.com/medicoord/coordinator-go/internal/port"
	"github.com/medicoord/coordinator-go/internal/service"
)

// Demo scenarios mirroring a typical hospital shift: an emergency
// surgery request and a routine discharge.
var scenarios = []struct {
	title     string
	request   string
	patientID string
}{
	{
		title:     "Emergency C-Section",
		request:   "Emergency C-section needed for patient in room 304. Patient is 32 years old, currently on blood thinners. Need surgical suite prepped and supplies verified.",
		patientID: "patient_123",
	},
	{
		title:     "Routine Discharge",
		request:   "Patient in room 302 recovering from surgery is ready for discharge. Need discharge planning including home care instructions.",
		patientID: "patient_302",
	},
}

func main() {
	_ = config.LoadDotEnv(".env")
	cfg := config.Load()

	if cfg.CompletionAPIKey == "" {
		fmt.Fprintln(os.Stderr, "PERPLEXITY_API_KEY is required for the demo")
		os.Exit(1)
	}

	logger := observability.NewLogger("warn")
	defer logger.Sync()

	metrics := observability.NewMetrics()
	cb := resilience.NewCircuitBreaker("completion")
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	completer := client.NewCompletionClient(
		httpClient,
		cfg.CompletionBaseURL,
		cfg.CompletionAPIKey,
		cfg.CompletionModel,
		cb,
		metrics,
	)

	directory, err := staticdata.NewPatientDirectory(cfg.PatientsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading patient directory: %v\n", err)
		os.Exit(1)
	}
	inventory, err := staticdata.NewInventory(cfg.InventoryFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading inventory: %v\n", err)
		os.Exit(1)
	}

	snapshotCache := cache.New[map[string]int](cfg.InventoryCacheTTL)
	defer snapshotCache.Close()

	responders := []port.Responder{
		service.NewSupplyChainResponder(completer, inventory, snapshotCache, metrics, logger),
		service.NewClinicalSafetyResponder(completer, directory, metrics, logger),
		service.NewDischargePlanningResponder(completer, metrics, logger),
	}
	classifier := service.NewClassifier(completer, metrics, logger)
	ledger := service.NewLedger()
	coord := service.NewCoordinator(classifier, responders, ledger, metrics, logger)

	fmt.Println(strings.Repeat("=", 70))
	fmt.Println("  MediCoord demo: multi-agent healthcare coordination")
	fmt.Println(strings.Repeat("=", 70))

	for i, s := range scenarios {
		fmt.Printf("\n--- Scenario %d: %s ---\n", i+1, s.title)
		fmt.Printf("Request: %s\n\n", s.request)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		result, err := coord.Coordinate(ctx, s.request, s.patientID)
		cancel()
		if err != nil {
			fmt.Printf("coordination failed: %v\n", err)
			continue
		}

		fmt.Printf("Priority:   %s\n", result.Routing.Priority)
		fmt.Printf("Responders: %s\n", joinResponders(result.Routing.AgentsNeeded))
		fmt.Printf("Analysis:   %s\n", firstLine(result.Routing.Analysis))

		for _, r := range result.Results {
			fmt.Printf("\n[%s]\n", r.Responder)
			if !r.OK() {
				fmt.Printf("  error: %s\n", r.Err)
				continue
			}
			fmt.Println(indent(r.Analysis, "  "))
		}

		fmt.Printf("\nStatus:  %s\n", result.Status)
		fmt.Printf("Elapsed: %.2fs\n", result.ElapsedSeconds)
	}

	stats := ledger.Summary()
	fmt.Println("\n--- Session savings ---")
	fmt.Printf("Requests handled:  %d\n", stats.TotalRequests)
	fmt.Printf("Avg response time: %.2fs\n", stats.AvgResponseSeconds)
	fmt.Printf("Time saved:        %.1f min (%.2f h)\n", stats.TotalTimeSavedMinutes, stats.TotalTimeSavedHours)
	fmt.Printf("Cost saved:        $%.2f\n", stats.TotalCostSavedUSD)
	fmt.Printf("Daily projection:  $%.2f\n", stats.DailyCostSavedUSD)
	fmt.Printf("Annual projection: $%.2f\n", stats.AnnualProjectionUSD)
}

func joinResponders(ids []domain.ResponderID) string {
	if len(ids) == 0 {
		return "(none)"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
