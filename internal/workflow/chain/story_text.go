package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	llmctx "fairybook-api/internal/domain/service"
	wfmodel "fairybook-api/internal/workflow/model"
	wfnode "fairybook-api/internal/workflow/node"
	workflowport "fairybook-api/internal/workflow/port"
	workflowprompt "fairybook-api/internal/workflow/prompt"
	apperrors "fairybook-api/pkg/errors"
)

// StoryTextChain 梗概、主角、标题与阶段正文的文本生成
type StoryTextChain struct {
	factory  workflowport.ChatModelFactory
	registry *workflowprompt.Registry
	limiter  workflowport.Limiter
	policy   wfnode.RetryPolicy
}

func NewStoryTextChain(factory workflowport.ChatModelFactory, limiter workflowport.Limiter, policy wfnode.RetryPolicy) *StoryTextChain {
	return &StoryTextChain{
		factory:  factory,
		registry: workflowprompt.NewRegistry(),
		limiter:  limiter,
		policy:   policy,
	}
}

// Synopsis 一段纯文本梗概
func (c *StoryTextChain) Synopsis(ctx context.Context, story wfmodel.StoryContext, opts wfmodel.TextOptions) (string, error) {
	out, err := c.generate(ctx, llmctx.WorkflowSynopsis, workflowprompt.PromptSynopsisV1, wfnode.StoryVars(story), opts)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Protagonist 一段纯文本主角设定
func (c *StoryTextChain) Protagonist(ctx context.Context, story wfmodel.StoryContext, opts wfmodel.TextOptions) (string, error) {
	out, err := c.generate(ctx, llmctx.WorkflowProtagonist, workflowprompt.PromptProtagonistV1, wfnode.StoryVars(story), opts)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Title 解析 {"title": ...}，无法解析或标题为空都视为生成失败
func (c *StoryTextChain) Title(ctx context.Context, story wfmodel.StoryContext, opts wfmodel.TextOptions) (string, error) {
	raw, err := c.generate(ctx, llmctx.WorkflowTitle, workflowprompt.PromptTitleV1, wfnode.StoryVars(story), opts)
	if err != nil {
		return "", err
	}
	parsed, err := wfnode.DecodeJSON[wfmodel.TitleOutput](raw, true)
	if err != nil {
		return "", err
	}
	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		return "", apperrors.Generation("model returned an empty title", nil)
	}
	return title, nil
}

// StageText 解析 {"title", "paragraphs"}，过滤空段落后至少保留一段
func (c *StoryTextChain) StageText(ctx context.Context, in wfmodel.StageTextInput, opts wfmodel.TextOptions) (*wfmodel.StageTextOutput, error) {
	raw, err := c.generate(ctx, llmctx.WorkflowStageText, workflowprompt.PromptStageV1, wfnode.StageVars(in), opts)
	if err != nil {
		return nil, err
	}
	parsed, err := wfnode.DecodeJSON[wfmodel.StageTextOutput](raw, true)
	if err != nil {
		return nil, err
	}
	paragraphs := wfnode.NonEmptyLines(parsed.Paragraphs)
	if len(paragraphs) == 0 {
		return nil, apperrors.Generation("model returned no stage paragraphs", nil)
	}
	return &wfmodel.StageTextOutput{
		Title:      wfnode.FirstNonEmpty(parsed.Title, in.Story.Title),
		Paragraphs: paragraphs,
	}, nil
}

// generate 只对模型调用本身重试；模板渲染失败与配置缺失直接返回
func (c *StoryTextChain) generate(ctx context.Context, workflow string, id workflowprompt.PromptID, vars map[string]any, opts wfmodel.TextOptions) (string, error) {
	if c == nil || c.factory == nil {
		return "", apperrors.NotConfigured("llm factory not configured")
	}

	provider := strings.TrimSpace(opts.Provider)
	ctx = llmctx.WithWorkflowProvider(ctx, workflow, provider)
	chatModel, err := c.factory.Get(ctx, provider)
	if err != nil {
		return "", err
	}

	msgs, err := c.registry.Format(ctx, id, vars)
	if err != nil {
		return "", fmt.Errorf("format %s prompt: %w", id, err)
	}

	return wfnode.Retry(ctx, c.policy, workflow, func(ctx context.Context) (string, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}
		return invokeText(ctx, chatModel, msgs, opts)
	})
}

func invokeText(ctx context.Context, chatModel model.BaseChatModel, msgs []*schema.Message, opts wfmodel.TextOptions) (string, error) {
	outMsg, err := chatModel.Generate(ctx, msgs, buildTextModelOptions(opts)...)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeLLMProviderError, "model call failed")
	}
	if outMsg == nil || strings.TrimSpace(outMsg.Content) == "" {
		return "", apperrors.Generation("model returned an empty response", nil)
	}
	return outMsg.Content, nil
}

func buildTextModelOptions(in wfmodel.TextOptions) []model.Option {
	opts := make([]model.Option, 0, 4)
	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(*in.Temperature))
	}
	if in.TopP != nil {
		opts = append(opts, model.WithTopP(*in.TopP))
	}
	if in.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	if strings.TrimSpace(in.Model) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(in.Model)))
	}
	return opts
}
