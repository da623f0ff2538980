package service

import (
	"math"
	"sync"
	"time"

	"github.com/medicoord/coordinator-go/internal/domain"

	"github.com/google/uuid"
)

// Manual-effort assumptions used to derive savings (industry averages).
// Savings are deterministic functions of the responder set, not measured
// real-world effects.
const (
	manualSupplyPrepMinutes    = 35
	manualSafetyCheckMinutes   = 12
	manualDischargePlanMinutes = 120

	clinicalStaffHourlyUSD = 85
	adminStaffHourlyUSD    = 45
)

// manualMinutes maps each responder to the manual effort it replaces.
var manualMinutes = map[domain.ResponderID]float64{
	domain.ResponderSupplyChain: manualSupplyPrepMinutes,
	domain.ResponderClinical:    manualSafetyCheckMinutes,
	domain.ResponderDischarge:   manualDischargePlanMinutes,
}

// requestLabelLimit caps the stored request label.
const requestLabelLimit = 50

// Ledger is the append-only record of coordination calls. It is owned by
// whoever constructs it and passed by reference into the coordinator, so
// tests get a fresh ledger per case. Records are never edited or removed;
// aggregates are recomputed from scratch on every query.
type Ledger struct {
	mu      sync.Mutex
	records []domain.MetricsRecord
	start   time.Time
	now     func() time.Time
}

// NewLedger creates an empty ledger anchored at the current time.
// Process uptime for the daily/annual projections is measured from here.
func NewLedger() *Ledger {
	return &Ledger{
		start: time.Now(),
		now:   time.Now,
	}
}

// Log appends exactly one record for a coordination call and returns it.
func (l *Ledger) Log(requestText string, used []domain.ResponderID, elapsed time.Duration, status domain.CoordinationStatus) domain.MetricsRecord {
	minutes := timeSavedMinutes(used)

	rec := domain.MetricsRecord{
		ID:               uuid.New().String(),
		Timestamp:        l.now(),
		RequestLabel:     truncateLabel(requestText),
		RespondersUsed:   append([]domain.ResponderID(nil), used...),
		ElapsedSeconds:   elapsed.Seconds(),
		Status:           status,
		TimeSavedMinutes: minutes,
		CostSavedUSD:     costSavedUSD(minutes),
	}

	l.mu.Lock()
	l.records = append(l.records, rec)
	l.mu.Unlock()

	return rec
}

// Summary recomputes the aggregate statistics from the full record list.
// An empty ledger yields all-zero fields.
func (l *Ledger) Summary() *domain.SummaryStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	uptimeHours := l.now().Sub(l.start).Hours()

	if len(l.records) == 0 {
		return &domain.SummaryStats{UptimeHours: round2(uptimeHours)}
	}

	var totalElapsed, totalMinutes, totalCost float64
	for _, rec := range l.records {
		totalElapsed += rec.ElapsedSeconds
		totalMinutes += rec.TimeSavedMinutes
		totalCost += rec.CostSavedUSD
	}

	stats := &domain.SummaryStats{
		TotalRequests:         len(l.records),
		AvgResponseSeconds:    round2(totalElapsed / float64(len(l.records))),
		TotalTimeSavedMinutes: totalMinutes,
		TotalTimeSavedHours:   round2(totalMinutes / 60),
		TotalCostSavedUSD:     round2(totalCost),
		UptimeHours:           round2(uptimeHours),
	}

	if uptimeHours > 0 {
		stats.DailyCostSavedUSD = round2(totalCost * (24 / uptimeHours))
		stats.AnnualProjectionUSD = round2(totalCost * (8760 / uptimeHours))
	}

	return stats
}

// Recent returns up to limit records, newest last.
func (l *Ledger) Recent(limit int) []domain.MetricsRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 || limit > len(l.records) {
		limit = len(l.records)
	}
	tail := l.records[len(l.records)-limit:]
	return append([]domain.MetricsRecord(nil), tail...)
}

// timeSavedMinutes sums the fixed manual-effort table over the invoked set.
func timeSavedMinutes(used []domain.ResponderID) float64 {
	var minutes float64
	for _, id := range used {
		minutes += manualMinutes[id]
	}
	return minutes
}

// costSavedUSD prices saved minutes at the blended clinical/admin rate.
func costSavedUSD(minutes float64) float64 {
	blendedRate := float64(clinicalStaffHourlyUSD+adminStaffHourlyUSD) / 2
	return (minutes / 60) * blendedRate
}

func truncateLabel(s string) string {
	runes := []rune(s)
	if len(runes) <= requestLabelLimit {
		return s
	}
	return string(runes[:requestLabelLimit])
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
