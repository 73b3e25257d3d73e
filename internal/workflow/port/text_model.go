// Package port 定义故事工作流对外部模型的依赖
package port

import (
	"context"

	"github.com/cloudwego/eino/components/model"
)

// ChatModelFactory 按 provider 名称取文本模型，name 为空时使用默认 provider。
// 缺少 API key 或模型名时返回 CodeNotConfigured，且不发起任何网络调用。
type ChatModelFactory interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
}

// Limiter 上游调用节流，文本与图像共用
type Limiter interface {
	Wait(ctx context.Context) error
}
