package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	"secure-quiz-service/internal/domain"
)

// Retrier re-runs store calls that fail for infrastructure reasons.
// Domain outcomes (not found, forbidden, conflict...) are returned immediately.
type Retrier struct {
	retries uint64
	initial time.Duration
}

// NewRetrier allows up to retries extra attempts with exponential backoff starting at initial.
func NewRetrier(retries int, initial time.Duration) Retrier {
	if retries < 0 {
		retries = 0
	}
	if initial <= 0 {
		initial = 50 * time.Millisecond
	}
	return Retrier{retries: uint64(retries), initial: initial}
}

// NoRetry runs every call exactly once.
var NoRetry = Retrier{initial: time.Millisecond}

func (r Retrier) do(ctx context.Context, op string, fn func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.initial
	policy.MaxInterval = 20 * r.initial

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if stopRetry(err) {
			return backoff.Permanent(err)
		}
		log.Printf("%s: attempt %d failed: %v", op, attempt, err)
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, r.retries), ctx))

	if err == nil || stopRetry(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrStore, op, err)
}

func stopRetry(err error) bool {
	return domain.Permanent(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func retryValue[T any](ctx context.Context, r Retrier, op string, fn func() (T, error)) (T, error) {
	var out T
	err := r.do(ctx, op, func() error {
		v, err := fn()
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
