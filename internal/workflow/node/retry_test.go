package node

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "fairybook-api/pkg/errors"
)

func fastPolicy() RetryPolicy {
	p := NewRetryPolicy(3, time.Millisecond)
	return p
}

// TestRetrySucceedsOnThirdAttempt 测试第三次成功时恰好调用 3 次
func TestRetrySucceedsOnThirdAttempt(t *testing.T) {
	calls := 0
	v, err := Retry(context.Background(), fastPolicy(), "test", func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 3, calls)
}

// TestRetrySurfacesLastError 测试全部失败时返回最后一次错误
func TestRetrySurfacesLastError(t *testing.T) {
	calls := 0
	errs := []error{errors.New("e1"), errors.New("e2"), errors.New("e3")}
	_, err := Retry(context.Background(), fastPolicy(), "test", func(context.Context) (int, error) {
		calls++
		return 0, errs[calls-1]
	})
	assert.Same(t, errs[2], err)
	assert.Equal(t, 3, calls)
}

// TestRetrySkipsConfigurationErrors 测试配置错误不重试
func TestRetrySkipsConfigurationErrors(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(), "test", func(context.Context) (int, error) {
		calls++
		return 0, apperrors.NotConfigured("missing api key")
	})
	assert.True(t, apperrors.IsConfiguration(err))
	assert.Equal(t, 1, calls)
}

// TestRetryHonoursContext 测试等待期间取消
func TestRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := RetryPolicy{
		MaxAttempts: 3,
		Backoff:     LinearBackoff(time.Hour),
	}
	calls := 0
	_, err := Retry(ctx, policy, "test", func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("transient")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

// TestLinearBackoff 测试线性退避
func TestLinearBackoff(t *testing.T) {
	b := LinearBackoff(250 * time.Millisecond)
	assert.Equal(t, 250*time.Millisecond, b(1))
	assert.Equal(t, 500*time.Millisecond, b(2))

	p := DefaultRetryPolicy()
	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, 750*time.Millisecond, p.Backoff(3))
}
