// Package quota 管理用户的生成额度
package quota

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"fairybook-api/internal/domain/entity"
	"fairybook-api/internal/domain/repository"
	apperrors "fairybook-api/pkg/errors"
	"fairybook-api/pkg/metrics"
)

const (
	DefaultInitialTokens = 7
	DefaultAutoCap       = 10
	DefaultTimezone      = "Asia/Seoul"
)

// SyncResult 登录同步结果
type SyncResult struct {
	Status      *entity.GenerationTokenStatus
	Initialized bool
	RefilledBy  int
}

// ConsumeOutcome 扣减结果；签名重复时 Consumed 为 false
type ConsumeOutcome struct {
	Consumed  bool
	Status    *entity.GenerationTokenStatus
	Signature *string
}

// RefundOutcome 归还结果
type RefundOutcome struct {
	Refunded bool
	Status   *entity.GenerationTokenStatus
}

// Options 额度规则
type Options struct {
	Initial  int
	AutoCap  int
	Location *time.Location
}

// TokenService 额度规则只在此处实现，存储层只负责原子读-改-写
type TokenService struct {
	repo repository.TokenRepository
	opts Options
	now  func() time.Time
}

func NewTokenService(repo repository.TokenRepository, opts Options) *TokenService {
	if opts.Initial <= 0 {
		opts.Initial = DefaultInitialTokens
	}
	if opts.AutoCap <= 0 {
		opts.AutoCap = DefaultAutoCap
	}
	if opts.Location == nil {
		opts.Location = LoadLocation(DefaultTimezone)
	}
	return &TokenService{repo: repo, opts: opts, now: time.Now}
}

// LoadLocation 时区无法加载时退回固定 +09:00
func LoadLocation(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultTimezone
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.FixedZone("KST", 9*60*60)
}

// Location 额度日期所用时区
func (s *TokenService) Location() *time.Location {
	return s.opts.Location
}

// Status 不存在时返回 nil
func (s *TokenService) Status(ctx context.Context, uid string) (*entity.GenerationTokenStatus, error) {
	if err := requireUID(uid); err != nil {
		return nil, err
	}
	st, err := s.repo.Get(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return st, err
}

// SyncOnLogin 首次创建默认额度；之后按时区内的自然日差补充，不超过自动上限
func (s *TokenService) SyncOnLogin(ctx context.Context, uid string) (*SyncResult, error) {
	if err := requireUID(uid); err != nil {
		return nil, err
	}
	result := &SyncResult{}
	now := s.now().UTC()

	st, err := s.repo.Update(ctx, uid, func(cur *entity.GenerationTokenStatus) (*entity.GenerationTokenStatus, error) {
		result.Initialized = false
		result.RefilledBy = 0
		if cur == nil {
			result.Initialized = true
			return s.defaultStatus(now), nil
		}

		next := cur.Clone()
		next.Tokens = max(next.Tokens, 0)
		if next.AutoCap <= 0 {
			next.AutoCap = s.opts.AutoCap
		}
		if next.CreatedAt == nil {
			next.CreatedAt = timePtr(now)
		}
		lastRefill := next.LastRefillAt
		if lastRefill == nil {
			lastRefill = next.CreatedAt
		}

		refill := min(s.daysBetween(*lastRefill, now), max(next.AutoCap-next.Tokens, 0))
		next.Tokens += refill
		next.LastLoginAt = timePtr(now)
		next.UpdatedAt = timePtr(now)
		if refill > 0 {
			next.LastRefillAt = timePtr(now)
		}
		result.RefilledBy = refill
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	result.Status = st
	return result, nil
}

// Consume 扣减一个额度；与上次签名相同则不重复扣减
func (s *TokenService) Consume(ctx context.Context, uid string, signature string) (*ConsumeOutcome, error) {
	if err := requireUID(uid); err != nil {
		return nil, err
	}
	sig := strings.TrimSpace(signature)
	now := s.now().UTC()
	outcome := &ConsumeOutcome{}

	st, err := s.repo.Update(ctx, uid, func(cur *entity.GenerationTokenStatus) (*entity.GenerationTokenStatus, error) {
		outcome.Consumed = false
		outcome.Signature = nil
		if cur == nil {
			return nil, insufficient(0)
		}
		if sig != "" && cur.LastConsumedSignature != nil && *cur.LastConsumedSignature == sig {
			outcome.Signature = cur.LastConsumedSignature
			return nil, nil
		}
		if cur.Tokens <= 0 {
			return nil, insufficient(cur.Tokens)
		}

		next := cur.Clone()
		next.Tokens--
		next.LastConsumedAt = timePtr(now)
		next.UpdatedAt = timePtr(now)
		if sig != "" {
			next.LastConsumedSignature = &sig
			outcome.Signature = &sig
		}
		outcome.Consumed = true
		return next, nil
	})
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeInsufficientTokens) {
			metrics.TokenConsumeTotal.WithLabelValues("insufficient").Inc()
		} else {
			metrics.TokenConsumeTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}
	if outcome.Consumed {
		metrics.TokenConsumeTotal.WithLabelValues("consumed").Inc()
	} else {
		metrics.TokenConsumeTotal.WithLabelValues("duplicate").Inc()
	}
	outcome.Status = st
	return outcome, nil
}

// Refund 归还签名对应的一次扣减并清除该签名，同一签名再次提交会重新扣减。
// 签名不是最近一次扣减时不做任何事，Refunded 为 false。
func (s *TokenService) Refund(ctx context.Context, uid string, signature string) (*RefundOutcome, error) {
	if err := requireUID(uid); err != nil {
		return nil, err
	}
	sig := strings.TrimSpace(signature)
	if sig == "" {
		return nil, apperrors.Validation("signature is required")
	}
	now := s.now().UTC()
	outcome := &RefundOutcome{}

	st, err := s.repo.Update(ctx, uid, func(cur *entity.GenerationTokenStatus) (*entity.GenerationTokenStatus, error) {
		outcome.Refunded = false
		if cur == nil || cur.LastConsumedSignature == nil || *cur.LastConsumedSignature != sig {
			return nil, nil
		}
		next := cur.Clone()
		next.Tokens = max(next.Tokens, 0) + 1
		next.LastConsumedSignature = nil
		next.UpdatedAt = timePtr(now)
		outcome.Refunded = true
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	if outcome.Refunded {
		metrics.TokenConsumeTotal.WithLabelValues("refunded").Inc()
	}
	outcome.Status = st
	return outcome, nil
}

// Set 直接设定余额（不小于 0），autoCap 为 nil 时保持原值
func (s *TokenService) Set(ctx context.Context, uid string, tokens int, autoCap *int) (*entity.GenerationTokenStatus, error) {
	if err := requireUID(uid); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	return s.repo.Update(ctx, uid, func(cur *entity.GenerationTokenStatus) (*entity.GenerationTokenStatus, error) {
		return s.applySet(cur, now, tokens, autoCap), nil
	})
}

// TopUp 增加余额；不允许超限时截断到自动上限
func (s *TokenService) TopUp(ctx context.Context, uid string, amount int, allowExceedCap bool) (*entity.GenerationTokenStatus, error) {
	if err := requireUID(uid); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	return s.repo.Update(ctx, uid, func(cur *entity.GenerationTokenStatus) (*entity.GenerationTokenStatus, error) {
		if amount <= 0 {
			if cur != nil {
				return nil, nil
			}
			return s.applySet(nil, now, s.opts.Initial, nil), nil
		}
		if cur == nil {
			initial := amount
			if !allowExceedCap {
				initial = min(amount, s.opts.AutoCap)
			}
			return s.applySet(nil, now, initial, nil), nil
		}
		total := cur.Tokens + amount
		if !allowExceedCap && cur.AutoCap > 0 {
			total = min(total, cur.AutoCap)
		}
		return s.applySet(cur, now, total, nil), nil
	})
}

func (s *TokenService) applySet(cur *entity.GenerationTokenStatus, now time.Time, tokens int, autoCap *int) *entity.GenerationTokenStatus {
	var next *entity.GenerationTokenStatus
	if cur == nil {
		next = s.defaultStatus(now)
		if autoCap != nil && *autoCap > 0 {
			next.AutoCap = *autoCap
		}
	} else {
		next = cur.Clone()
		if autoCap != nil {
			next.AutoCap = max(*autoCap, 0)
		}
		if next.CreatedAt == nil {
			next.CreatedAt = timePtr(now)
		}
	}
	next.Tokens = max(tokens, 0)
	next.UpdatedAt = timePtr(now)
	return next
}

func (s *TokenService) defaultStatus(now time.Time) *entity.GenerationTokenStatus {
	return &entity.GenerationTokenStatus{
		Tokens:       s.opts.Initial,
		AutoCap:      s.opts.AutoCap,
		CreatedAt:    timePtr(now),
		UpdatedAt:    timePtr(now),
		LastLoginAt:  timePtr(now),
		LastRefillAt: timePtr(now),
	}
}

// daysBetween 两个时刻在额度时区下相差的自然日数，负数按 0
func (s *TokenService) daysBetween(from, to time.Time) int {
	fy, fm, fd := from.In(s.opts.Location).Date()
	ty, tm, td := to.In(s.opts.Location).Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	days := int(b.Sub(a).Hours() / 24)
	return max(days, 0)
}

func insufficient(available int) error {
	return apperrors.New(apperrors.CodeInsufficientTokens, "no generation tokens available").
		WithDetail("tokens_available=" + strconv.Itoa(available))
}

func requireUID(uid string) error {
	if strings.TrimSpace(uid) == "" {
		return apperrors.Validation("uid is required")
	}
	return nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
