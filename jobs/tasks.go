package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ZubairAhmed90/multipos-sub002/internal/auth"
	"github.com/ZubairAhmed90/multipos-sub002/internal/authz"
	jobmetrics "github.com/ZubairAhmed90/multipos-sub002/internal/jobs"
	"github.com/ZubairAhmed90/multipos-sub002/internal/masterdata"
	"github.com/ZubairAhmed90/multipos-sub002/internal/settings"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSettingsWarmup preloads scope settings for every active location.
	TaskSettingsWarmup = "settings:warmup"
	// TaskSessionPurge removes expired session registry rows.
	TaskSessionPurge = "sessions:purge"
)

// SettingsWarmupPayload optionally restricts warmup to one scope kind.
type SettingsWarmupPayload struct {
	Kind string `json:"kind,omitempty"`
}

// NewSettingsWarmupTask constructs an Asynq task.
func NewSettingsWarmupTask(payload SettingsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSettingsWarmup, data), nil
}

// NewSessionPurgeTask constructs an Asynq task.
func NewSessionPurgeTask() *asynq.Task {
	return asynq.NewTask(TaskSessionPurge, nil)
}

// SettingsWarmup loads feature flags for every active branch and warehouse
// so the first dashboard request after a deploy decides on warm data.
type SettingsWarmup struct {
	Logger    *slog.Logger
	Locations masterdata.Repository
	Settings  *settings.Service
	Metrics   *jobmetrics.Metrics
}

// Handle processes TaskSettingsWarmup tasks.
func (w SettingsWarmup) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := w.Metrics.Track(TaskSettingsWarmup)

	var payload SettingsWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			_ = tracker.End(err)
			return asynq.SkipRetry
		}
	}

	if payload.Kind == "" || payload.Kind == string(authz.ScopeBranch) {
		branches, err := w.Locations.ListBranches(ctx)
		if err != nil {
			return tracker.End(err)
		}
		warmed := 0
		for _, b := range branches {
			if !b.IsActive {
				continue
			}
			if _, err := w.Settings.Load(ctx, authz.ScopeBranch, b.ID); err != nil {
				w.Logger.Warn("warmup branch settings", slog.Int64("branch_id", b.ID), slog.Any("error", err))
				continue
			}
			warmed++
		}
		w.Metrics.AddWarmedScopes(string(authz.ScopeBranch), warmed)
	}

	if payload.Kind == "" || payload.Kind == string(authz.ScopeWarehouse) {
		warehouses, err := w.Locations.ListWarehouses(ctx)
		if err != nil {
			return tracker.End(err)
		}
		warmed := 0
		for _, wh := range warehouses {
			if !wh.IsActive {
				continue
			}
			if _, err := w.Settings.Load(ctx, authz.ScopeWarehouse, wh.ID); err != nil {
				w.Logger.Warn("warmup warehouse settings", slog.Int64("warehouse_id", wh.ID), slog.Any("error", err))
				continue
			}
			warmed++
		}
		w.Metrics.AddWarmedScopes(string(authz.ScopeWarehouse), warmed)
	}

	return tracker.End(nil)
}

// SessionPurge removes expired rows from the session registry.
type SessionPurge struct {
	Logger  *slog.Logger
	Auth    *auth.Service
	Metrics *jobmetrics.Metrics
}

// Handle processes TaskSessionPurge tasks.
func (p SessionPurge) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := p.Metrics.Track(TaskSessionPurge)
	removed, err := p.Auth.PurgeExpired(ctx, time.Now())
	if err != nil {
		return tracker.End(err)
	}
	if removed > 0 {
		p.Logger.Info("purged expired sessions", slog.Int64("count", removed))
	}
	return tracker.End(nil)
}
