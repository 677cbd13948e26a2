package stub

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"warnmode/internal/logx"
)

// Pruner deletes change log rows older than a cutoff.
type Pruner interface {
	PruneChanges(ctx context.Context, before time.Time) (int64, error)
}

// StartPruner runs p once now and then every hour, removing changes older than
// retention. Stop the returned scheduler to end it.
func StartPruner(ctx context.Context, p Pruner, retention time.Duration) (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(time.UTC)
	if _, err := s.Every(1).Hour().Do(func() { prune(ctx, p, retention) }); err != nil {
		return nil, err
	}
	s.StartAsync()
	return s, nil
}

func prune(ctx context.Context, p Pruner, retention time.Duration) {
	n, err := p.PruneChanges(ctx, time.Now().Add(-retention))
	if err != nil {
		logx.From(ctx).Error().Err(err).Msg("prune mode changes")
		return
	}
	logx.From(ctx).Info().Int64("deleted", n).Dur("retention", retention).Msg("pruned mode changes")
}
