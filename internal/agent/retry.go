package agent

import (
	"context"
	"time"
)

// Retrier wraps agent calls with a per-attempt timeout and retry with
// exponential backoff. Generation and judgment calls have no inherent bound,
// so every external call goes through a Retrier; the attempt timeout is the
// only thing standing between the loop and an unresponsive backend.
type Retrier struct {
	// Timeout bounds each individual attempt. Zero means no per-attempt
	// timeout beyond the caller's context.
	Timeout time.Duration
	// Retries is the number of additional attempts after the first failure.
	Retries int
	// Backoff is the base delay before retry attempt n (doubled each time).
	// Zero means one second.
	Backoff time.Duration
	// OnRetry, when set, is called before each backoff sleep.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Generate calls a.Generate under the retry policy. The last error is
// returned when all attempts fail or the context ends.
func (r Retrier) Generate(ctx context.Context, a Agent, role Role, prompt string, opts Options) (string, error) {
	base := r.Backoff
	if base <= 0 {
		base = time.Second
	}

	var lastErr error
	for attempt := 0; attempt <= r.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := r.generateOnce(ctx, a, role, prompt, opts)
		if err == nil {
			return text, nil
		}
		lastErr = err

		// Parent cancellation is not retryable
		if ctx.Err() != nil {
			return "", lastErr
		}

		if attempt < r.Retries {
			delay := base * (1 << attempt)
			if r.OnRetry != nil {
				r.OnRetry(attempt+1, err, delay)
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", lastErr
			}
		}
	}

	return "", lastErr
}

func (r Retrier) generateOnce(ctx context.Context, a Agent, role Role, prompt string, opts Options) (string, error) {
	callCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	return a.Generate(callCtx, role, prompt, opts)
}
