package node

import (
	"context"
	"time"

	apperrors "fairybook-api/pkg/errors"
	"fairybook-api/pkg/metrics"
)

// RetryPolicy 上游调用的有界重试策略
type RetryPolicy struct {
	// MaxAttempts 总尝试次数（含首次），小于 1 视为 1
	MaxAttempts int
	// Backoff 第 attempt 次失败后的等待时长（attempt 从 1 开始）
	Backoff func(attempt int) time.Duration
	// Retryable 为 nil 时所有错误都重试
	Retryable func(err error) bool
}

// LinearBackoff 线性退避：attempt × unit
func LinearBackoff(unit time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * unit
	}
}

// DefaultRetryPolicy 3 次尝试，250ms 线性退避，配置错误不重试
func DefaultRetryPolicy() RetryPolicy {
	return NewRetryPolicy(3, 250*time.Millisecond)
}

// NewRetryPolicy 按次数与退避单位构造策略
func NewRetryPolicy(maxAttempts int, unit time.Duration) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		Backoff:     LinearBackoff(unit),
		Retryable:   func(err error) bool { return !apperrors.IsConfiguration(err) },
	}
}

// Retry 按策略执行 fn，成功即返回；全部失败时原样返回最后一次错误。
// 最后一次尝试之后不再等待，等待期间 ctx 取消则立即返回 ctx 错误。
func Retry[T any](ctx context.Context, policy RetryPolicy, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var zero T
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if policy.Retryable != nil && !policy.Retryable(err) {
			metrics.RetryAttemptsTotal.WithLabelValues(operation, "aborted").Inc()
			return zero, err
		}
		if attempt == attempts {
			break
		}

		metrics.RetryAttemptsTotal.WithLabelValues(operation, "retry").Inc()
		if policy.Backoff != nil {
			if werr := waitForBackoff(ctx, policy.Backoff(attempt)); werr != nil {
				return zero, werr
			}
		}
	}

	metrics.RetryAttemptsTotal.WithLabelValues(operation, "exhausted").Inc()
	return zero, lastErr
}

func waitForBackoff(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
