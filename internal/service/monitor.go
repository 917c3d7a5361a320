package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Strob0t/OpsPlane/internal/adapter/otel"
	"github.com/Strob0t/OpsPlane/internal/adapter/ws"
	"github.com/Strob0t/OpsPlane/internal/config"
	"github.com/Strob0t/OpsPlane/internal/domain"
	"github.com/Strob0t/OpsPlane/internal/domain/task"
	"github.com/Strob0t/OpsPlane/internal/port/connector"
	"github.com/Strob0t/OpsPlane/internal/port/messagequeue"
)

const monitorAuthor = "cron"

// MonitorReport is the outcome of one policy sweep. Alerts is never nil.
type MonitorReport struct {
	OK        bool      `json:"ok"`
	Alerts    []string  `json:"alerts"`
	Timestamp time.Time `json:"timestamp"`
}

// PolicyMonitorService runs the threshold policies: stale open tasks,
// connector sync gaps, and the daily cost ceiling. Each fired policy
// creates one bundled alert task on the board. The sweep is deliberately
// not idempotent; scheduling cadence is the caller's problem.
type PolicyMonitorService struct {
	board    *TaskBoardService
	registry connector.SyncRegistry
	costs    *CostService
	queue    messagequeue.Queue
	hub      *ws.Hub
	metrics  *otel.Metrics
	cfg      config.Monitor
	now      func() time.Time

	mu sync.Mutex // held for the duration of one sweep
}

// NewPolicyMonitorService creates a PolicyMonitorService. queue, hub and
// metrics are optional.
func NewPolicyMonitorService(board *TaskBoardService, registry connector.SyncRegistry, costs *CostService, queue messagequeue.Queue, hub *ws.Hub, metrics *otel.Metrics, cfg config.Monitor) *PolicyMonitorService {
	return &PolicyMonitorService{
		board:    board,
		registry: registry,
		costs:    costs,
		queue:    queue,
		hub:      hub,
		metrics:  metrics,
		cfg:      cfg,
		now:      time.Now,
	}
}

// SetClock overrides the service clock. Test hook.
func (m *PolicyMonitorService) SetClock(now func() time.Time) { m.now = now }

// RunPolicies performs one sweep of all policies. Overlapping invocations
// are rejected with domain.ErrMonitorBusy rather than queued. A failing
// stale or sync-gap policy is logged and skipped; a cost ledger failure
// aborts the whole sweep with no partial report.
func (m *PolicyMonitorService) RunPolicies(ctx context.Context) (*MonitorReport, error) {
	if !m.mu.TryLock() {
		return nil, fmt.Errorf("policy sweep already running: %w", domain.ErrMonitorBusy)
	}
	defer m.mu.Unlock()

	now := m.now().UTC()
	alerts := []string{}

	if alert, err := m.checkStaleTasks(ctx, now); err != nil {
		slog.Error("stale task policy failed", "error", err)
	} else if alert != "" {
		alerts = append(alerts, alert)
	}

	if alert, err := m.checkSyncGaps(ctx, now); err != nil {
		slog.Error("sync gap policy failed", "error", err)
	} else if alert != "" {
		alerts = append(alerts, alert)
	}

	alert, err := m.checkDailyCost(ctx)
	if err != nil {
		return nil, err
	}
	if alert != "" {
		alerts = append(alerts, alert)
	}

	return &MonitorReport{OK: true, Alerts: alerts, Timestamp: now}, nil
}

// checkStaleTasks flags open tasks older than the stale window and bundles
// them into a single medium-priority operations task.
func (m *PolicyMonitorService) checkStaleTasks(ctx context.Context, now time.Time) (string, error) {
	open, err := m.board.List(ctx, task.Filter{Status: task.StatusOpen})
	if err != nil {
		return "", fmt.Errorf("list open tasks: %w", err)
	}

	var stale []task.Task
	for _, t := range open {
		if now.Sub(t.CreatedAt) > m.cfg.StaleAfter {
			stale = append(stale, t)
		}
	}
	if len(stale) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(stale))
	for _, t := range stale {
		parts = append(parts, shortID(t.ID)+": "+t.Title)
	}

	alert := fmt.Sprintf("%d stale tasks (open > %s)", len(stale), formatWindow(m.cfg.StaleAfter))
	created, err := m.board.Create(ctx, task.CreateRequest{
		Title:       alert,
		Description: "Stale tasks: " + strings.Join(parts, "; "),
		Department:  task.DeptOperations,
		Priority:    task.PriorityMedium,
		CreatedBy:   monitorAuthor,
		Labels:      []string{"auto", "stale"},
	})
	if err != nil {
		return "", fmt.Errorf("create stale alert task: %w", err)
	}
	m.fired(ctx, "stale", alert, created.ID)
	return alert, nil
}

// checkSyncGaps flags connector sources that never completed a sync or
// whose last completed sync is older than the gap window. A registry
// failure degrades to an empty source list.
func (m *PolicyMonitorService) checkSyncGaps(ctx context.Context, now time.Time) (string, error) {
	statuses, err := m.registry.Status(ctx)
	if err != nil {
		// The pipeline owns the sync log; its absence must not break the sweep.
		slog.Warn("sync registry unavailable, treating as empty", "error", err)
		statuses = nil
	}

	var gapped []string
	for _, st := range statuses {
		var lastDone *time.Time
		if st.LastSync != nil {
			lastDone = st.LastSync.CompletedAt
		}
		// A source that never completed a sync is always behind.
		if lastDone == nil || now.Sub(*lastDone) > m.cfg.SyncGapAfter {
			gapped = append(gapped, st.SourceID)
		}
	}
	if len(gapped) == 0 {
		return "", nil
	}

	alert := fmt.Sprintf("%d sources need sync update", len(gapped))
	created, err := m.board.Create(ctx, task.CreateRequest{
		Title:       alert,
		Description: "Sources needing update: " + strings.Join(gapped, ", "),
		Department:  task.DeptDataEngineering,
		Priority:    task.PriorityMedium,
		CreatedBy:   monitorAuthor,
		Labels:      []string{"auto", "sync-gap"},
	})
	if err != nil {
		return "", fmt.Errorf("create sync gap alert task: %w", err)
	}
	m.fired(ctx, "sync-gap", alert, created.ID)
	return alert, nil
}

// checkDailyCost fires when the trailing-day spend exceeds the configured
// ceiling. Errors here propagate: a cost sweep that cannot read the ledger
// must not report a clean bill.
func (m *PolicyMonitorService) checkDailyCost(ctx context.Context) (string, error) {
	spend, err := m.costs.TotalSpend(ctx, 1)
	if err != nil {
		return "", fmt.Errorf("read daily spend: %w", err)
	}
	if spend.TotalUSD <= m.cfg.DailyCostUSDLimit {
		return "", nil
	}

	alert := fmt.Sprintf("Daily cost alert: $%.2f exceeds $%.2f threshold", spend.TotalUSD, m.cfg.DailyCostUSDLimit)
	created, err := m.board.Create(ctx, task.CreateRequest{
		Title:       alert,
		Description: fmt.Sprintf("Today's spend: $%.2f across %d calls. Avg: $%.4f/call.", spend.TotalUSD, spend.Calls, spend.AvgPerCall),
		Department:  task.DeptFinance,
		Priority:    task.PriorityHigh,
		CreatedBy:   monitorAuthor,
		Labels:      []string{"auto", "cost-alert"},
	})
	if err != nil {
		return "", fmt.Errorf("create cost alert task: %w", err)
	}
	m.fired(ctx, "cost", alert, created.ID)
	return alert, nil
}

func (m *PolicyMonitorService) fired(ctx context.Context, policy, alert, taskID string) {
	if m.metrics != nil {
		m.metrics.PoliciesFired.Add(ctx, 1)
	}
	event := ws.AlertEvent{Policy: policy, Alert: alert, TaskID: taskID}
	if m.hub != nil {
		m.hub.BroadcastEvent(ctx, ws.EventOpsAlert, event)
	}
	if m.queue != nil {
		data, err := json.Marshal(event)
		if err != nil {
			slog.Error("marshal alert event", "policy", policy, "error", err)
			return
		}
		if err := m.queue.Publish(ctx, messagequeue.SubjectOpsAlert, data); err != nil {
			slog.Error("publish alert event", "policy", policy, "error", err)
		}
	}
}

// shortID returns the first 8 characters of a UUID for compact display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatWindow renders a threshold duration in whole days when possible.
func formatWindow(d time.Duration) string {
	if d >= 24*time.Hour && d%(24*time.Hour) == 0 {
		days := int(d / (24 * time.Hour))
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
	return d.String()
}
