package chain

import (
	"context"
	"fmt"
	"strings"

	llmctx "fairybook-api/internal/domain/service"
	wfmodel "fairybook-api/internal/workflow/model"
	wfnode "fairybook-api/internal/workflow/node"
	workflowport "fairybook-api/internal/workflow/port"
	workflowprompt "fairybook-api/internal/workflow/prompt"
	apperrors "fairybook-api/pkg/errors"
	"fairybook-api/pkg/utils"
)

// StoryImageChain 渲染插画提示词并调用图像模型
type StoryImageChain struct {
	generator workflowport.ImageGenerator
	registry  *workflowprompt.Registry
	limiter   workflowport.Limiter
	policy    wfnode.RetryPolicy
}

func NewStoryImageChain(generator workflowport.ImageGenerator, limiter workflowport.Limiter, policy wfnode.RetryPolicy) *StoryImageChain {
	return &StoryImageChain{
		generator: generator,
		registry:  workflowprompt.NewRegistry(),
		limiter:   limiter,
		policy:    policy,
	}
}

// Prompt 渲染图像提示词
func (c *StoryImageChain) Prompt(ctx context.Context, in wfmodel.ImagePromptInput) (string, error) {
	text, err := c.registry.Render(ctx, workflowprompt.PromptImageV1, wfnode.ImageVars(in))
	if err != nil {
		return "", fmt.Errorf("format image prompt: %w", err)
	}
	return text, nil
}

// Generate 带重试的图像生成；返回空图视为生成失败
func (c *StoryImageChain) Generate(ctx context.Context, kind wfmodel.ImageKind, req workflowport.ImageRequest) (*workflowport.Image, error) {
	if c == nil || c.generator == nil {
		return nil, apperrors.NotConfigured("image generator not configured")
	}
	ctx = llmctx.WithWorkflow(ctx, workflowForImage(kind))

	return wfnode.Retry(ctx, c.policy, workflowForImage(kind), func(ctx context.Context) (*workflowport.Image, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		img, err := c.generator.Generate(ctx, req)
		if err != nil {
			return nil, err
		}
		if img == nil || len(img.Data) == 0 {
			return nil, apperrors.Generation("image response is empty", nil)
		}
		if strings.TrimSpace(img.MIMEType) == "" {
			img.MIMEType = utils.DefaultImageMIME
		}
		return img, nil
	})
}

func workflowForImage(kind wfmodel.ImageKind) string {
	switch kind {
	case wfmodel.ImageCharacter:
		return llmctx.WorkflowCharacter
	case wfmodel.ImageCover:
		return llmctx.WorkflowCover
	default:
		return llmctx.WorkflowStageImage
	}
}
