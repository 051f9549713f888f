package llm

import (
	"context"
	"errors"
	"time"

	"github.com/neilberkman/hireplan/internal/core/errs"
)

// RetryPolicy bounds completion calls.
type RetryPolicy struct {
	Attempts int           // total attempts, at least 1
	Timeout  time.Duration // per attempt, 0 for none
	Backoff  time.Duration // wait before the second attempt, doubled after each failure
}

type retrying struct {
	next   Provider
	policy RetryPolicy
}

// WithRetry wraps p so every call is bounded by policy. Only unavailable and
// timeout failures are retried.
func WithRetry(p Provider, policy RetryPolicy) Provider {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	if policy.Backoff <= 0 {
		policy.Backoff = 500 * time.Millisecond
	}
	return &retrying{next: p, policy: policy}
}

func (r *retrying) Name() string { return r.next.Name() }

func (r *retrying) Complete(ctx context.Context, req Request) (string, error) {
	wait := r.policy.Backoff
	var lastErr error
	for attempt := 0; attempt < r.policy.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", classify(r.next.Name(), ctx.Err())
			case <-time.After(wait):
			}
			wait *= 2
		}

		text, err := r.attempt(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = classify(r.next.Name(), err)
		if !retryable(lastErr) || ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

func (r *retrying) attempt(ctx context.Context, req Request) (string, error) {
	if r.policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.policy.Timeout)
		defer cancel()
	}
	return r.next.Complete(ctx, req)
}

func retryable(err error) bool {
	var ue *errs.UpstreamError
	if !errors.As(err, &ue) {
		return false
	}
	return ue.Kind == errs.UpstreamUnavailable || ue.Kind == errs.UpstreamTimeout
}
