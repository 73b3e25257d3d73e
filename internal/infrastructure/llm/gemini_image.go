package llm

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"fairybook-api/internal/config"
	"fairybook-api/internal/domain/service"
	workflowport "fairybook-api/internal/workflow/port"
	apperrors "fairybook-api/pkg/errors"
	"fairybook-api/pkg/logger"
	"fairybook-api/pkg/metrics"
	"fairybook-api/pkg/tracer"
	"fairybook-api/pkg/utils"
)

const imageProvider = "gemini"

// GeminiImageGenerator 通过 Gemini 原生接口生成插画，返回第一段内联图像
type GeminiImageGenerator struct {
	cfg   config.ImageConfig
	usage service.LLMUsageRecorder

	mu     sync.Mutex
	client *genai.Client
}

var _ workflowport.ImageGenerator = (*GeminiImageGenerator)(nil)

func NewGeminiImageGenerator(cfg *config.Config, usage service.LLMUsageRecorder) *GeminiImageGenerator {
	return &GeminiImageGenerator{cfg: cfg.Image, usage: usage}
}

// Generate 参考图存在时作为第二段内联数据一并发送
func (g *GeminiImageGenerator) Generate(ctx context.Context, req workflowport.ImageRequest) (*workflowport.Image, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return nil, err
	}

	ctx = service.WithProvider(ctx, imageProvider)
	ctx, span := tracer.Start(ctx, "gemini.image.generate", trace.WithAttributes(
		attribute.String("eino.workflow", service.WorkflowFromContext(ctx)),
		attribute.String("llm.model", g.cfg.Model),
		attribute.Bool("image.reference", len(req.Reference) > 0),
	))
	defer span.End()

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if len(req.Reference) > 0 {
		mime := strings.TrimSpace(req.ReferenceMIME)
		if mime == "" {
			mime = utils.DefaultImageMIME
		}
		parts = append(parts, genai.NewPartFromBytes(req.Reference, mime))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, g.cfg.Model, contents, g.generateConfig())
	elapsed := time.Since(start)
	metrics.LLMCallDuration.WithLabelValues(imageProvider, g.cfg.Model).Observe(elapsed.Seconds())
	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(imageProvider, g.cfg.Model, "error").Inc()
		tracer.RecordError(span, err)
		return nil, apperrors.Wrap(err, apperrors.CodeLLMProviderError, "image model call failed")
	}
	metrics.LLMCallTotal.WithLabelValues(imageProvider, g.cfg.Model, "success").Inc()
	g.recordUsage(ctx, resp, elapsed)

	img := firstInlineImage(resp)
	if img == nil {
		return nil, apperrors.Generation("image response contained no inline image", nil)
	}
	return img, nil
}

func (g *GeminiImageGenerator) getClient(ctx context.Context) (*genai.Client, error) {
	if strings.TrimSpace(g.cfg.APIKey) == "" {
		return nil, apperrors.NotConfigured("image api key is not set")
	}
	if strings.TrimSpace(g.cfg.Model) == "" {
		return nil, apperrors.NotConfigured("image model is not set")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}

	cc := &genai.ClientConfig{
		APIKey:  g.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if g.cfg.Timeout > 0 {
		timeout := g.cfg.Timeout
		cc.HTTPOptions = genai.HTTPOptions{Timeout: &timeout}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeNotConfigured, "failed to create image client")
	}
	g.client = client
	return client, nil
}

func (g *GeminiImageGenerator) generateConfig() *genai.GenerateContentConfig {
	out := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	}
	if g.cfg.Temperature > 0 {
		out.Temperature = genai.Ptr(float32(g.cfg.Temperature))
	}
	if g.cfg.TopP > 0 {
		out.TopP = genai.Ptr(float32(g.cfg.TopP))
	}
	if g.cfg.TopK > 0 {
		out.TopK = genai.Ptr(float32(g.cfg.TopK))
	}
	if g.cfg.MaxTokens > 0 {
		out.MaxOutputTokens = int32(g.cfg.MaxTokens)
	}
	return out
}

func (g *GeminiImageGenerator) recordUsage(ctx context.Context, resp *genai.GenerateContentResponse, elapsed time.Duration) {
	if g.usage == nil || resp == nil || resp.UsageMetadata == nil {
		return
	}
	err := g.usage.Record(ctx, service.LLMUsageInput{
		Workflow:         service.WorkflowFromContext(ctx),
		Provider:         imageProvider,
		Model:            g.cfg.Model,
		Modality:         service.ModalityImage,
		PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
		CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		DurationMs:       int(elapsed.Milliseconds()),
	})
	if err != nil {
		logger.Warn(ctx, "record image usage failed", "error", err.Error())
	}
}

// firstInlineImage 取第一个候选中的第一段内联数据
func firstInlineImage(resp *genai.GenerateContentResponse) *workflowport.Image {
	if resp == nil {
		return nil
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			mime := part.InlineData.MIMEType
			if strings.TrimSpace(mime) == "" {
				mime = utils.DefaultImageMIME
			}
			return &workflowport.Image{Data: part.InlineData.Data, MIMEType: mime}
		}
	}
	return nil
}
