package service_test

import (
	"strings"
	"testing"
	"time"

	"github.com/medicoord/coordinator-go/internal/domain"
	"github.com/medicoord/coordinator-go/internal/service"
)

func TestLedger_SavingsArithmetic(t *testing.T) {
	ledger := service.NewLedger()

	rec := ledger.Log("scheduled surgery prep",
		[]domain.ResponderID{domain.ResponderSupplyChain, domain.ResponderDischarge},
		2*time.Second,
		domain.StatusApproved,
	)

	if rec.TimeSavedMinutes != 35+120 {
		t.Errorf("expected 155 minutes, got %v", rec.TimeSavedMinutes)
	}

	// (minutes / 60) * blended hourly rate, rate = (85+45)/2
	want := (155.0 / 60.0) * ((85.0 + 45.0) / 2.0)
	if rec.CostSavedUSD != want {
		t.Errorf("expected %v USD, got %v", want, rec.CostSavedUSD)
	}
}

func TestLedger_ZeroRespondersZeroSavings(t *testing.T) {
	ledger := service.NewLedger()

	rec := ledger.Log("informational request", nil, time.Second, domain.StatusApproved)

	if rec.TimeSavedMinutes != 0 {
		t.Errorf("expected 0 minutes, got %v", rec.TimeSavedMinutes)
	}
	if rec.CostSavedUSD != 0 {
		t.Errorf("expected 0 USD, got %v", rec.CostSavedUSD)
	}
}

func TestLedger_EmptySummaryHasNoDivisionErrors(t *testing.T) {
	stats := service.NewLedger().Summary()

	if stats.TotalRequests != 0 {
		t.Errorf("expected 0 requests, got %d", stats.TotalRequests)
	}
	if stats.AvgResponseSeconds != 0 || stats.TotalTimeSavedMinutes != 0 || stats.TotalCostSavedUSD != 0 {
		t.Error("expected all-zero aggregates for empty ledger")
	}
	if stats.DailyCostSavedUSD != 0 || stats.AnnualProjectionUSD != 0 {
		t.Error("expected zero projections for empty ledger")
	}
}

func TestLedger_SummaryAcrossRecords(t *testing.T) {
	ledger := service.NewLedger()

	ledger.Log("a", []domain.ResponderID{domain.ResponderSupplyChain}, 1500*time.Millisecond, domain.StatusApproved)
	ledger.Log("b", []domain.ResponderID{domain.ResponderClinical}, 2500*time.Millisecond, domain.StatusApproved)
	ledger.Log("c", []domain.ResponderID{domain.ResponderDischarge}, 2*time.Second, domain.StatusReviewRequired)

	stats := ledger.Summary()

	if stats.TotalRequests != 3 {
		t.Errorf("expected 3 requests, got %d", stats.TotalRequests)
	}
	if stats.AvgResponseSeconds != 2.0 {
		t.Errorf("expected mean 2.0s, got %v", stats.AvgResponseSeconds)
	}
	if stats.TotalTimeSavedMinutes != 35+12+120 {
		t.Errorf("expected 167 minutes, got %v", stats.TotalTimeSavedMinutes)
	}

	wantCost := ((35.0 + 12.0 + 120.0) / 60.0) * 65.0
	// Summary rounds to cents.
	if diff := stats.TotalCostSavedUSD - wantCost; diff > 0.01 || diff < -0.01 {
		t.Errorf("expected ~%v USD, got %v", wantCost, stats.TotalCostSavedUSD)
	}
}

func TestLedger_RecentReturnsNewestTail(t *testing.T) {
	ledger := service.NewLedger()

	ledger.Log("first", nil, time.Second, domain.StatusApproved)
	ledger.Log("second", nil, time.Second, domain.StatusApproved)
	ledger.Log("third", nil, time.Second, domain.StatusApproved)

	recent := ledger.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recent))
	}
	if recent[0].RequestLabel != "second" || recent[1].RequestLabel != "third" {
		t.Errorf("expected the newest tail, got %q, %q", recent[0].RequestLabel, recent[1].RequestLabel)
	}
}

func TestLedger_TruncatesRequestLabel(t *testing.T) {
	ledger := service.NewLedger()

	long := strings.Repeat("x", 80)
	rec := ledger.Log(long, nil, time.Second, domain.StatusApproved)

	if len(rec.RequestLabel) != 50 {
		t.Errorf("expected 50-char label, got %d chars", len(rec.RequestLabel))
	}
}
