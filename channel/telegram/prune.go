package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// AuditPruner deletes audit records older than a cutoff.
type AuditPruner interface {
	PruneAudit(ctx context.Context, before time.Time) (int64, error)
}

// Pruner trims the audit log on a cron schedule while the bot runs.
type Pruner struct {
	store     AuditPruner
	retention time.Duration
	schedule  string
	log       *zap.Logger
	now       func() time.Time
}

// NewPruner returns a pruner that keeps retention worth of audit records.
// A zero retention keeps everything.
func NewPruner(store AuditPruner, retention time.Duration, schedule string, log *zap.Logger) *Pruner {
	return &Pruner{store: store, retention: retention, schedule: schedule, log: log, now: time.Now}
}

// PruneOnce removes records older than the retention window.
func (p *Pruner) PruneOnce(ctx context.Context) (int64, error) {
	if p.retention <= 0 {
		return 0, nil
	}
	n, err := p.store.PruneAudit(ctx, p.now().Add(-p.retention))
	if err != nil {
		return 0, fmt.Errorf("pruning audit log: %w", err)
	}
	return n, nil
}

// Run schedules pruning and blocks until ctx is done.
func (p *Pruner) Run(ctx context.Context) error {
	if p.retention <= 0 {
		p.log.Info("audit retention disabled")
		<-ctx.Done()
		return nil
	}

	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(p.schedule, func() {
		n, err := p.PruneOnce(ctx)
		if err != nil {
			p.log.Error("audit prune failed", zap.Error(err))
			return
		}
		p.log.Info("audit log pruned", zap.Int64("removed", n))
	}); err != nil {
		return fmt.Errorf("bad prune schedule %q: %w", p.schedule, err)
	}

	c.Start()
	p.log.Info("audit pruning scheduled", zap.String("schedule", p.schedule), zap.Duration("retention", p.retention))
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
