package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"mercator-hq/ganymede/pkg/audit"
	"mercator-hq/ganymede/pkg/config"
)

// Pruner deletes audit records older than the retention window on a
// cron schedule.
type Pruner struct {
	storage  audit.Storage
	days     int
	schedule string
	logger   *slog.Logger

	cron *cron.Cron
	now  func() time.Time
}

// NewPruner builds a pruner from the retention config. The schedule
// must be a standard 5-field cron expression.
func NewPruner(storage audit.Storage, cfg *config.RetentionConfig, logger *slog.Logger) (*Pruner, error) {
	if storage == nil {
		return nil, fmt.Errorf("retention: storage is required")
	}
	if cfg.Days <= 0 {
		return nil, fmt.Errorf("retention: days must be positive, got %d", cfg.Days)
	}
	if _, err := cron.ParseStandard(cfg.PruneSchedule); err != nil {
		return nil, fmt.Errorf("retention: invalid prune schedule %q: %w", cfg.PruneSchedule, err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Pruner{
		storage:  storage,
		days:     cfg.Days,
		schedule: cfg.PruneSchedule,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Start begins scheduled pruning. It returns immediately; pruning runs
// on the cron goroutine until Stop is called.
func (p *Pruner) Start() error {
	if p.cron != nil {
		return fmt.Errorf("retention: pruner already started")
	}

	c := cron.New()
	_, err := c.AddFunc(p.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := p.Prune(ctx); err != nil {
			p.logger.Error("scheduled audit prune failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("retention: scheduling prune: %w", err)
	}

	p.cron = c
	c.Start()
	p.logger.Info("audit retention pruner started",
		"schedule", p.schedule,
		"retention_days", p.days)
	return nil
}

// Stop halts scheduled pruning and waits for an in-flight run.
func (p *Pruner) Stop() {
	if p.cron == nil {
		return
	}
	<-p.cron.Stop().Done()
	p.cron = nil
}

// Prune deletes records older than the retention window and returns
// the number removed.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	cutoff := p.now().UTC().AddDate(0, 0, -p.days)
	removed, err := p.storage.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("retention: deleting records before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	if removed > 0 {
		p.logger.Info("pruned audit records",
			"removed", removed,
			"cutoff", cutoff.Format(time.RFC3339))
	}
	return removed, nil
}
