package retry

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/flatsite/internal/foundation/errors"
	"git.home.luguber.info/inful/flatsite/internal/logfields"
)

// wait blocks for d or until ctx is done. Replaced in tests.
var wait = func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do calls fn until it succeeds, returns an error that does not allow retry, or
// the policy is exhausted. Errors retry only when classified as retryable;
// immediate strategies skip the backoff delay. The last error is returned.
func Do(ctx context.Context, p Policy, op string, fn func(context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		strategy := errors.GetRetryStrategy(err)
		if strategy == errors.RetryNever || strategy == errors.RetryUserAction || attempt >= p.MaxRetries {
			return err
		}
		delay := p.Delay(attempt + 1)
		if strategy == errors.RetryImmediate {
			delay = 0
		}
		slog.Debug("Retrying operation",
			logfields.Stage(op),
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			logfields.Error(err))
		if werr := wait(ctx, delay); werr != nil {
			return err
		}
	}
}
