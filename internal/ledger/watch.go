package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/Hruthwik-68/MyVyaya-sub000/internal/metrics"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/notify"
)

// Invalidations yields batched change signals, e.g. a *notify.Subscription.
type Invalidations interface {
	Next(ctx context.Context) (notify.Invalidation, error)
}

// Watch sends viewer's friend view immediately and again after every batch
// of invalidations, until ctx is done or send fails. Signals that arrive while
// a view is being computed collapse into one recompute.
func Watch(ctx context.Context, view *View, viewer string, inv Invalidations, m *metrics.Metrics, send func([]Friend) error) error {
	m.WatcherStarted()
	defer m.WatcherStopped()

	for {
		friends, err := view.FriendBalances(ctx, viewer)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to compute friend view: %w", err)
		}
		if err := send(friends); err != nil {
			return err
		}

		if _, err := inv.Next(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		m.Invalidated()
	}
}
