package quota

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairybook-api/internal/domain/entity"
	"fairybook-api/internal/infrastructure/persistence/memory"
	apperrors "fairybook-api/pkg/errors"
)

func newService(now time.Time, seed ...*entity.GenerationTokenStatus) *TokenService {
	svc := NewTokenService(memory.NewTokenRepository(seed...), Options{Location: LoadLocation("Asia/Seoul")})
	svc.now = func() time.Time { return now }
	return svc
}

func at(s string) *time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return &t
}

// TestSyncOnLoginInitializes 测试首次登录创建默认额度
func TestSyncOnLoginInitializes(t *testing.T) {
	now := time.Date(2025, 10, 5, 2, 0, 0, 0, time.UTC)
	svc := newService(now)

	res, err := svc.SyncOnLogin(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, res.Initialized)
	assert.Equal(t, 7, res.Status.Tokens)
	assert.Equal(t, 10, res.Status.AutoCap)
	assert.Equal(t, now, *res.Status.LastRefillAt)
}

// TestSyncOnLoginRefillsByKSTDays 测试按时区自然日补充额度
func TestSyncOnLoginRefillsByKSTDays(t *testing.T) {
	cases := []struct {
		name        string
		tokens      int
		lastRefill  string
		now         string
		wantTokens  int
		wantRefill  int
		refillMoved bool
	}{
		{name: "two days", tokens: 3, lastRefill: "2025-10-04T15:00:00Z", now: "2025-10-07T01:00:00Z", wantTokens: 5, wantRefill: 2, refillMoved: true},
		{name: "capped", tokens: 9, lastRefill: "2025-10-01T00:00:00Z", now: "2025-10-07T00:00:00Z", wantTokens: 10, wantRefill: 1, refillMoved: true},
		{name: "kst midnight", tokens: 0, lastRefill: "2025-10-04T14:59:00Z", now: "2025-10-04T15:01:00Z", wantTokens: 1, wantRefill: 1, refillMoved: true},
		{name: "same kst day", tokens: 2, lastRefill: "2025-10-04T15:01:00Z", now: "2025-10-05T14:00:00Z", wantTokens: 2, wantRefill: 0},
		{name: "already full", tokens: 12, lastRefill: "2025-10-01T00:00:00Z", now: "2025-10-07T00:00:00Z", wantTokens: 12, wantRefill: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			now := *at(tc.now)
			svc := newService(now, &entity.GenerationTokenStatus{
				UID: "u", Tokens: tc.tokens, AutoCap: 10,
				CreatedAt: at("2025-09-01T00:00:00Z"), LastRefillAt: at(tc.lastRefill),
			})
			res, err := svc.SyncOnLogin(context.Background(), "u")
			require.NoError(t, err)
			assert.False(t, res.Initialized)
			assert.Equal(t, tc.wantTokens, res.Status.Tokens)
			assert.Equal(t, tc.wantRefill, res.RefilledBy)
			assert.Equal(t, now, *res.Status.LastLoginAt)
			if tc.refillMoved {
				assert.Equal(t, now, *res.Status.LastRefillAt)
			} else {
				assert.Equal(t, *at(tc.lastRefill), *res.Status.LastRefillAt)
			}
		})
	}
}

// TestConsume 测试扣减、重复签名与余额不足
func TestConsume(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 10, 5, 2, 0, 0, 0, time.UTC)
	svc := newService(now, &entity.GenerationTokenStatus{UID: "u", Tokens: 2, AutoCap: 10})

	out, err := svc.Consume(ctx, "u", "sig-1")
	require.NoError(t, err)
	assert.True(t, out.Consumed)
	assert.Equal(t, 1, out.Status.Tokens)
	assert.Equal(t, "sig-1", *out.Status.LastConsumedSignature)
	assert.Equal(t, now, *out.Status.LastConsumedAt)

	out, err = svc.Consume(ctx, "u", "sig-1")
	require.NoError(t, err)
	assert.False(t, out.Consumed)
	assert.Equal(t, 1, out.Status.Tokens)

	out, err = svc.Consume(ctx, "u", "")
	require.NoError(t, err)
	assert.True(t, out.Consumed)
	assert.Equal(t, 0, out.Status.Tokens)
	assert.Equal(t, "sig-1", *out.Status.LastConsumedSignature)

	_, err = svc.Consume(ctx, "u", "sig-2")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInsufficientTokens))

	_, err = svc.Consume(ctx, "missing", "sig")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInsufficientTokens))

	_, err = svc.Consume(ctx, " ", "sig")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidParam))
}

// TestRefund 测试只归还最近一次签名的扣减，归还后同一签名可再次扣减
func TestRefund(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 10, 5, 2, 0, 0, 0, time.UTC)
	svc := newService(now, &entity.GenerationTokenStatus{UID: "u", Tokens: 1, AutoCap: 10})

	_, err := svc.Consume(ctx, "u", "sig-1")
	require.NoError(t, err)

	out, err := svc.Refund(ctx, "u", "sig-other")
	require.NoError(t, err)
	assert.False(t, out.Refunded)
	assert.Equal(t, 0, out.Status.Tokens)

	out, err = svc.Refund(ctx, "u", "sig-1")
	require.NoError(t, err)
	assert.True(t, out.Refunded)
	assert.Equal(t, 1, out.Status.Tokens)
	assert.Nil(t, out.Status.LastConsumedSignature)

	out, err = svc.Refund(ctx, "u", "sig-1")
	require.NoError(t, err)
	assert.False(t, out.Refunded)
	assert.Equal(t, 1, out.Status.Tokens)

	consumed, err := svc.Consume(ctx, "u", "sig-1")
	require.NoError(t, err)
	assert.True(t, consumed.Consumed)
	assert.Equal(t, 0, consumed.Status.Tokens)

	_, err = svc.Refund(ctx, "u", " ")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidParam))
}

// TestSetAndTopUp 测试设定与充值的上限处理
func TestSetAndTopUp(t *testing.T) {
	ctx := context.Background()
	svc := newService(time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC))

	st, err := svc.Set(ctx, "u", -3, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Tokens)
	assert.Equal(t, 10, st.AutoCap)

	cap5 := 5
	st, err = svc.Set(ctx, "u", 2, &cap5)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Tokens)
	assert.Equal(t, 5, st.AutoCap)

	st, err = svc.TopUp(ctx, "u", 10, false)
	require.NoError(t, err)
	assert.Equal(t, 5, st.Tokens)

	st, err = svc.TopUp(ctx, "u", 10, true)
	require.NoError(t, err)
	assert.Equal(t, 15, st.Tokens)

	st, err = svc.TopUp(ctx, "u", 0, false)
	require.NoError(t, err)
	assert.Equal(t, 15, st.Tokens)

	st, err = svc.TopUp(ctx, "fresh", 0, false)
	require.NoError(t, err)
	assert.Equal(t, 7, st.Tokens)

	st, err = svc.TopUp(ctx, "capped", 25, false)
	require.NoError(t, err)
	assert.Equal(t, 10, st.Tokens)

	st, err = svc.TopUp(ctx, "uncapped", 25, true)
	require.NoError(t, err)
	assert.Equal(t, 25, st.Tokens)
}

// TestStatusMissingIsNil 测试未初始化用户
func TestStatusMissingIsNil(t *testing.T) {
	svc := newService(time.Now())
	st, err := svc.Status(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, st)
}
