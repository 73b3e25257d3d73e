// Package story 编排故事生成流程：梗概、主角、标题、插画与分阶段正文
package story

import (
	"context"
	"time"

	"fairybook-api/internal/domain/entity"
	wfmodel "fairybook-api/internal/workflow/model"
	workflowport "fairybook-api/internal/workflow/port"
	"fairybook-api/pkg/metrics"
	"fairybook-api/pkg/tracer"
)

// TextPipeline 文本生成步骤
type TextPipeline interface {
	Synopsis(ctx context.Context, story wfmodel.StoryContext, opts wfmodel.TextOptions) (string, error)
	Protagonist(ctx context.Context, story wfmodel.StoryContext, opts wfmodel.TextOptions) (string, error)
	Title(ctx context.Context, story wfmodel.StoryContext, opts wfmodel.TextOptions) (string, error)
	StageText(ctx context.Context, in wfmodel.StageTextInput, opts wfmodel.TextOptions) (*wfmodel.StageTextOutput, error)
}

// ImagePipeline 插画提示词与图像生成
type ImagePipeline interface {
	Prompt(ctx context.Context, in wfmodel.ImagePromptInput) (string, error)
	Generate(ctx context.Context, kind wfmodel.ImageKind, req workflowport.ImageRequest) (*workflowport.Image, error)
}

// StylePicker 风格目录
type StylePicker interface {
	PickStyle() (entity.IllustrationStyle, error)
}

// Service 故事生成应用服务，本身无状态
type Service struct {
	text     TextPipeline
	images   ImagePipeline
	styles   StylePicker
	textOpts wfmodel.TextOptions
	now      func() time.Time
}

func NewService(text TextPipeline, images ImagePipeline, styles StylePicker, textOpts wfmodel.TextOptions) *Service {
	return &Service{
		text:     text,
		images:   images,
		styles:   styles,
		textOpts: textOpts,
		now:      time.Now,
	}
}

// observe 为单步生成开 span，并记录耗时与结果
func observe[T any](ctx context.Context, workflow string, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, span := tracer.Start(ctx, "story."+workflow)
	defer span.End()

	start := time.Now()
	v, err := fn(ctx)
	tracer.RecordError(span, err)
	metrics.StoryGenerationDuration.WithLabelValues(workflow).Observe(time.Since(start).Seconds())
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.StoryGenerationTotal.WithLabelValues(workflow, status).Inc()
	return v, err
}
