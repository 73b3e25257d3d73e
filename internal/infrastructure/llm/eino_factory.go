// Package llm 提供文本与图像模型的客户端实现
package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"fairybook-api/internal/config"
	workflowport "fairybook-api/internal/workflow/port"
	apperrors "fairybook-api/pkg/errors"
)

// EinoFactory 管理多个 Eino ChatModel 客户端实例
type EinoFactory struct {
	config *config.LLMConfig
	models map[string]model.BaseChatModel
	mu     sync.RWMutex
}

var _ workflowport.ChatModelFactory = (*EinoFactory)(nil)

// NewEinoFactory 创建 Eino LLM 工厂
func NewEinoFactory(cfg *config.Config) *EinoFactory {
	return &EinoFactory{
		config: &cfg.LLM,
		models: make(map[string]model.BaseChatModel),
	}
}

// Get 获取指定名称的 ChatModel，未指定时使用默认提供商。
// 缺少 API Key 或模型名时在任何网络调用之前返回配置错误。
func (f *EinoFactory) Get(ctx context.Context, name string) (model.BaseChatModel, error) {
	if strings.TrimSpace(name) == "" {
		name = f.config.DefaultProvider
	}

	f.mu.RLock()
	m, ok := f.models[name]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if m, ok = f.models[name]; ok {
		return m, nil
	}

	providerCfg, ok := f.config.Providers[name]
	if !ok {
		return nil, apperrors.NotConfigured(fmt.Sprintf("llm provider %q is not configured", name))
	}
	if strings.TrimSpace(providerCfg.APIKey) == "" {
		return nil, apperrors.NotConfigured(fmt.Sprintf("api key for llm provider %q is not set", name))
	}
	if strings.TrimSpace(providerCfg.Model) == "" {
		return nil, apperrors.NotConfigured(fmt.Sprintf("model for llm provider %q is not set", name))
	}

	modelCfg := &openai.ChatModelConfig{
		APIKey:  providerCfg.APIKey,
		BaseURL: providerCfg.BaseURL,
		Model:   providerCfg.Model,
		Timeout: providerCfg.Timeout,
	}
	if providerCfg.MaxTokens > 0 {
		modelCfg.MaxTokens = &providerCfg.MaxTokens
	}
	if providerCfg.Temperature > 0 {
		modelCfg.Temperature = ptrFloat32(float32(providerCfg.Temperature))
	}
	if providerCfg.TopP > 0 {
		modelCfg.TopP = ptrFloat32(float32(providerCfg.TopP))
	}

	chatModel, err := openai.NewChatModel(ctx, modelCfg)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeNotConfigured, fmt.Sprintf("failed to create chat model for %s", name))
	}

	f.models[name] = chatModel
	return chatModel, nil
}

// Default 返回默认 ChatModel
func (f *EinoFactory) Default(ctx context.Context) (model.BaseChatModel, error) {
	return f.Get(ctx, "")
}

func ptrFloat32(f float32) *float32 {
	return &f
}
