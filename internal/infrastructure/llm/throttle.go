package llm

import (
	"golang.org/x/time/rate"

	"fairybook-api/internal/config"
	workflowport "fairybook-api/internal/workflow/port"
)

var _ workflowport.Limiter = (*rate.Limiter)(nil)

// NewThrottle 文本与图像调用共用的上游限速器；未配置速率时不限速
func NewThrottle(cfg *config.Config) *rate.Limiter {
	rps := cfg.Generation.RequestsPerSecond
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := cfg.Generation.Burst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
