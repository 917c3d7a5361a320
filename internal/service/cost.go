package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Strob0t/OpsPlane/internal/adapter/otel"
	"github.com/Strob0t/OpsPlane/internal/domain"
	"github.com/Strob0t/OpsPlane/internal/domain/cost"
	"github.com/Strob0t/OpsPlane/internal/domain/tier"
	"github.com/Strob0t/OpsPlane/internal/port/database"
)

// CostService records per-call cost events and aggregates them into the
// daily and trailing-window views. Aggregation always recomputes from the
// ledger; nothing is cached or incrementally maintained.
type CostService struct {
	store   database.CostStore
	tiers   *TierService
	metrics *otel.Metrics
	now     func() time.Time
}

// NewCostService creates a CostService. tiers is used only to resolve the
// current primary provider per agent for the fallback rate; metrics is
// optional.
func NewCostService(store database.CostStore, tiers *TierService, metrics *otel.Metrics) *CostService {
	return &CostService{
		store:   store,
		tiers:   tiers,
		metrics: metrics,
		now:     time.Now,
	}
}

// SetClock overrides the service clock. Test hook.
func (s *CostService) SetClock(now func() time.Time) { s.now = now }

// Record appends one cost event. When the caller reports token counts but
// no dollar amount, the cost is derived from the static price card of the
// reported model; unknown models stay at zero.
func (s *CostService) Record(ctx context.Context, e cost.Event) (*cost.Event, error) {
	if e.AgentName == "" {
		return nil, fmt.Errorf("agent_name is required: %w", domain.ErrValidation)
	}
	if e.CostUSD < 0 {
		return nil, fmt.Errorf("cost_usd must not be negative: %w", domain.ErrValidation)
	}
	if e.CostUSD == 0 && (e.InputTokens > 0 || e.OutputTokens > 0) {
		if model, ok := tier.Models[tier.ModelKey(e.Model)]; ok {
			e.CostUSD = float64(e.InputTokens)/1_000_000*model.InputUSDPer1M +
				float64(e.OutputTokens)/1_000_000*model.OutputUSDPer1M
		}
	}
	if e.CallID == "" {
		e.CallID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now().UTC()
	}

	if err := s.store.AppendCostEvent(ctx, &e); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.CostRecorded.Record(ctx, e.CostUSD)
	}
	return &e, nil
}

// DailyCosts returns per-day buckets over the trailing window, oldest day
// first. Every calendar day in the window appears, zero-filled when empty.
func (s *CostService) DailyCosts(ctx context.Context, days int) (*cost.DailyCosts, error) {
	if days < 1 {
		days = 1
	}
	now := s.now().UTC()
	since := now.AddDate(0, 0, -days)

	events, err := s.store.CostEventsSince(ctx, since)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*cost.DayBucket)
	var order []string
	for d := since; !d.After(now); d = d.AddDate(0, 0, 1) {
		date := d.Format("2006-01-02")
		buckets[date] = &cost.DayBucket{
			Date:       date,
			ByAgent:    make(map[string]float64),
			ByProvider: make(map[string]float64),
		}
		order = append(order, date)
	}

	for _, e := range events {
		date := e.Timestamp.UTC().Format("2006-01-02")
		b, ok := buckets[date]
		if !ok {
			continue
		}
		b.TotalUSD += e.CostUSD
		b.Calls++
		b.ByAgent[e.AgentName] += e.CostUSD
		b.ByProvider[e.Provider] += e.CostUSD
	}

	out := &cost.DailyCosts{Days: days, Daily: make([]cost.DayBucket, 0, len(order))}
	for _, date := range order {
		out.Daily = append(out.Daily, *buckets[date])
	}
	return out, nil
}

// TotalSpend aggregates the trailing window into a single summary. The
// fallback rate is the share of calls served by a provider other than the
// agent's current primary, judged against today's tier state, not the
// state at call time.
func (s *CostService) TotalSpend(ctx context.Context, days int) (*cost.SpendSummary, error) {
	if days < 1 {
		days = 1
	}
	since := s.now().UTC().AddDate(0, 0, -days)

	events, err := s.store.CostEventsSince(ctx, since)
	if err != nil {
		return nil, err
	}

	summary := &cost.SpendSummary{
		ByAgent:    make(map[string]cost.GroupTotal),
		ByProvider: make(map[string]cost.GroupTotal),
	}
	fallbacks := 0
	for _, e := range events {
		summary.TotalUSD += e.CostUSD
		summary.Calls++

		agent := summary.ByAgent[e.AgentName]
		agent.CostUSD += e.CostUSD
		agent.Calls++
		summary.ByAgent[e.AgentName] = agent

		provider := summary.ByProvider[e.Provider]
		provider.CostUSD += e.CostUSD
		provider.Calls++
		summary.ByProvider[e.Provider] = provider

		if s.isFallback(e) {
			fallbacks++
		}
	}
	if summary.Calls > 0 {
		summary.AvgPerCall = summary.TotalUSD / float64(summary.Calls)
		summary.FallbackRate = float64(fallbacks) / float64(summary.Calls)
	}
	return summary, nil
}

func (s *CostService) isFallback(e cost.Event) bool {
	if s.tiers != nil {
		if primary, ok := s.tiers.PrimaryProvider(e.AgentName); ok {
			return e.Provider != primary
		}
	}
	// Unknown agents keep whatever the caller reported.
	return e.UsedFallback
}
