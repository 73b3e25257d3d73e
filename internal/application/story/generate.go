package story

import (
	"context"
	"strings"

	"fairybook-api/internal/domain/service"
	wfmodel "fairybook-api/internal/workflow/model"
	apperrors "fairybook-api/pkg/errors"
	"fairybook-api/pkg/logger"
)

// Generate 依次生成梗概、主角、标题，并随机挑选插画风格。
// 风格目录为空时在调用模型之前返回 503。
func (s *Service) Generate(ctx context.Context, in GenerateInput) (*GenerationResult, error) {
	story, err := validateGenerate(in)
	if err != nil {
		return nil, err
	}

	style, err := s.styles.PickStyle()
	if err != nil {
		return nil, err
	}

	synopsis, err := observe(ctx, service.WorkflowSynopsis, func(ctx context.Context) (string, error) {
		return s.text.Synopsis(ctx, story, s.textOpts)
	})
	if err != nil {
		return nil, stepFailed(ctx, service.WorkflowSynopsis, err)
	}
	story.Synopsis = synopsis

	protagonist, err := observe(ctx, service.WorkflowProtagonist, func(ctx context.Context) (string, error) {
		return s.text.Protagonist(ctx, story, s.textOpts)
	})
	if err != nil {
		return nil, stepFailed(ctx, service.WorkflowProtagonist, err)
	}
	story.Protagonist = protagonist

	title, err := observe(ctx, service.WorkflowTitle, func(ctx context.Context) (string, error) {
		return s.text.Title(ctx, story, s.textOpts)
	})
	if err != nil {
		return nil, stepFailed(ctx, service.WorkflowTitle, err)
	}

	logger.Info(ctx, "story generated", "title", title, "style", style.Name)
	return &GenerationResult{
		Title:       title,
		Synopsis:    synopsis,
		Protagonist: protagonist,
		Style:       style,
		GeneratedAt: s.now().UTC(),
	}, nil
}

// ValidateGenerate 只做输入校验，供调用方在扣减额度前使用
func ValidateGenerate(in GenerateInput) error {
	_, err := validateGenerate(in)
	return err
}

func validateGenerate(in GenerateInput) (wfmodel.StoryContext, error) {
	age := strings.TrimSpace(in.Age)
	if age == "" {
		return wfmodel.StoryContext{}, apperrors.Validation("age is required")
	}
	name := strings.TrimSpace(in.StoryType.Name)
	prompt := strings.TrimSpace(in.StoryType.Prompt)
	if name == "" || prompt == "" {
		return wfmodel.StoryContext{}, apperrors.Validation("storyType.name and storyType.prompt are required")
	}
	return wfmodel.StoryContext{
		Age:             age,
		Topic:           strings.TrimSpace(in.Topic),
		StoryTypeName:   name,
		StoryTypePrompt: prompt,
	}, nil
}

// stepFailed 生成失败记 warn，其余错误原样交给上层
func stepFailed(ctx context.Context, workflow string, err error) error {
	if apperrors.IsGeneration(err) {
		logger.Warn(ctx, "generation step failed", "workflow", workflow, "error", err.Error())
	}
	return err
}
