package loadtest

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// WaitReady probes every target until it answers 200 or timeout elapses.
// The timeout bounds the whole wait, hung probes included. A fresh deployment
// can take a while before the stage URL resolves.
func (r *Runner) WaitReady(ctx context.Context, targets []Target, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for _, target := range targets {
		b := backoff.WithContext(backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(200*time.Millisecond),
			backoff.WithMaxInterval(15*time.Second),
			backoff.WithMaxElapsedTime(timeout),
		), ctx)

		err := backoff.RetryNotify(func() error {
			return r.probe(ctx, target)
		}, b, func(err error, next time.Duration) {
			r.logger.Warn("target not ready", zap.String("target", target.Name), zap.Error(err), zap.String("retry_in", next.String()))
		})
		if err != nil {
			return errors.Wrapf(err, "target %s not ready", target.Name)
		}
		r.logger.Info("target ready", zap.String("target", target.Name))
	}
	return nil
}

func (r *Runner) probe(ctx context.Context, target Target) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.URL, nil)
	if err != nil {
		return backoff.Permanent(errors.Wrap(err, "building probe request"))
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "probing")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
