package eino

import (
	"context"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	cbtemplate "github.com/cloudwego/eino/utils/callbacks"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"fairybook-api/internal/domain/service"
	"fairybook-api/pkg/logger"
	"fairybook-api/pkg/metrics"
	"fairybook-api/pkg/tracer"
)

type startTimeKey struct{}

func newChatModelCallbackHandler(usageRecorder service.LLMUsageRecorder) *cbtemplate.ModelCallbackHandler {
	return &cbtemplate.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *model.CallbackInput) context.Context {
			ctx = context.WithValue(ctx, startTimeKey{}, time.Now())

			attrs := []attribute.KeyValue{
				attribute.String("eino.workflow", service.WorkflowFromContext(ctx)),
				attribute.String("llm.provider", service.ProviderFromContext(ctx)),
				attribute.String("llm.model", modelNameFromInput(input)),
			}
			if info != nil {
				attrs = append(attrs,
					attribute.String("eino.node_name", info.Name),
					attribute.String("eino.type", info.Type),
				)
			}

			ctx, _ = otel.Tracer("eino").Start(ctx, "llm.generate", trace.WithAttributes(attrs...))
			return ctx
		},

		OnEnd: func(ctx context.Context, _ *einocb.RunInfo, output *model.CallbackOutput) context.Context {
			workflow := service.WorkflowFromContext(ctx)
			provider := service.ProviderFromContext(ctx)
			modelName := modelNameFromOutput(output)
			elapsed := elapsedSeconds(ctx)

			metrics.LLMCallTotal.WithLabelValues(provider, modelName, "success").Inc()
			if elapsed > 0 {
				metrics.LLMCallDuration.WithLabelValues(provider, modelName).Observe(elapsed)
			}

			span := trace.SpanFromContext(ctx)
			if output != nil && output.TokenUsage != nil {
				promptTokens := output.TokenUsage.PromptTokens
				completionTokens := output.TokenUsage.CompletionTokens
				metrics.LLMTokensUsed.WithLabelValues(provider, modelName, "prompt").Add(float64(promptTokens))
				metrics.LLMTokensUsed.WithLabelValues(provider, modelName, "completion").Add(float64(completionTokens))
				span.SetAttributes(
					attribute.Int("llm.prompt_tokens", promptTokens),
					attribute.Int("llm.completion_tokens", completionTokens),
				)

				if usageRecorder != nil {
					err := usageRecorder.Record(ctx, service.LLMUsageInput{
						Workflow:         workflow,
						Provider:         provider,
						Model:            modelName,
						Modality:         service.ModalityText,
						PromptTokens:     promptTokens,
						CompletionTokens: completionTokens,
						DurationMs:       int(elapsed * 1000),
					})
					if err != nil {
						logger.Warn(ctx, "record llm usage failed", "error", err.Error())
					}
				}
			}
			span.End()
			return ctx
		},

		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			provider := service.ProviderFromContext(ctx)
			modelName := ""
			if info != nil {
				modelName = info.Type
			}

			metrics.LLMCallTotal.WithLabelValues(provider, modelName, "error").Inc()
			if d := elapsedSeconds(ctx); d > 0 {
				metrics.LLMCallDuration.WithLabelValues(provider, modelName).Observe(d)
			}

			span := trace.SpanFromContext(ctx)
			tracer.RecordError(span, err)
			span.End()
			return ctx
		},
	}
}

func elapsedSeconds(ctx context.Context) float64 {
	start, ok := ctx.Value(startTimeKey{}).(time.Time)
	if !ok || start.IsZero() {
		return 0
	}
	return time.Since(start).Seconds()
}

func modelNameFromInput(in *model.CallbackInput) string {
	if in == nil || in.Config == nil {
		return ""
	}
	return in.Config.Model
}

func modelNameFromOutput(out *model.CallbackOutput) string {
	if out == nil || out.Config == nil {
		return ""
	}
	return out.Config.Model
}
