package story

import (
	"context"
	"strings"

	"fairybook-api/internal/domain/entity"
	wfmodel "fairybook-api/internal/workflow/model"
	wfnode "fairybook-api/internal/workflow/node"
	workflowport "fairybook-api/internal/workflow/port"
	apperrors "fairybook-api/pkg/errors"
	"fairybook-api/pkg/logger"
	"fairybook-api/pkg/metrics"
	"fairybook-api/pkg/utils"
)

const (
	defaultImageAge      = "6-8"
	defaultStoryTypeName = "story"
	characterTitle       = "Character Sheet"
	characterCardName    = "Character Blueprint"
	characterStageName   = "Character sheet"
	coverTitle           = "Cover"
	coverCardName        = "Cover concept"
	coverStageName       = "Cover"
)

// imageAttempt 单张图的结果；生成失败只记录在 Error 中
type imageAttempt struct {
	image  *workflowport.Image
	prompt string
	err    error
}

func (a imageAttempt) view(style *string) entity.StoryImage {
	out := entity.StoryImage{MimeType: utils.DefaultImageMIME, Prompt: a.prompt, Style: style}
	if a.image != nil {
		url := utils.DataURL(a.image.MIMEType, a.image.Data)
		out.DataURL = &url
		out.MimeType = a.image.MIMEType
	}
	if a.err != nil {
		msg := apperrors.Describe(a.err)
		out.Error = &msg
	}
	return out
}

// Images 先生成角色设定图，成功后作为参考生成封面。
// 单张失败不影响另一张，两张都失败时返回第一个错误。
func (s *Service) Images(ctx context.Context, in ImagesInput) (*ImagesResult, error) {
	styleName := strings.TrimSpace(in.Style.Name)
	styleText := strings.TrimSpace(in.Style.Style)
	if styleName == "" || styleText == "" {
		return nil, apperrors.Validation("style.name and style.style are required")
	}

	title := strings.TrimSpace(in.Title)
	synopsis := strings.TrimSpace(in.Synopsis)
	protagonist := strings.TrimSpace(in.Protagonist)
	base := wfmodel.ImagePromptInput{
		Age:           wfnode.FirstNonEmpty(in.Age, defaultImageAge),
		Topic:         strings.TrimSpace(in.Topic),
		StoryTypeName: wfnode.FirstNonEmpty(in.StoryTypeName, defaultStoryTypeName),
		StyleName:     styleName,
		StyleText:     styleText,
		Protagonist:   protagonist,
	}

	character := base
	character.Kind = wfmodel.ImageCharacter
	character.Title = wfnode.FirstNonEmpty(title, characterTitle)
	character.CardName = characterCardName
	character.StageName = characterStageName
	character.Paragraphs = []string{protagonist}

	charAttempt, err := s.renderImage(ctx, character, nil)
	if err != nil {
		return nil, err
	}

	cover := base
	cover.Kind = wfmodel.ImageCover
	cover.Title = wfnode.FirstNonEmpty(title, coverTitle)
	cover.CardName = coverCardName
	cover.StageName = coverStageName
	cover.Paragraphs = nonEmpty(synopsis, protagonist)
	cover.UseReference = charAttempt.image != nil

	coverAttempt, err := s.renderImage(ctx, cover, charAttempt.image)
	if err != nil {
		return nil, err
	}

	if charAttempt.image == nil && coverAttempt.image == nil {
		first := charAttempt.err
		if first == nil {
			first = coverAttempt.err
		}
		return nil, apperrors.Generation(apperrors.Describe(first), nil)
	}

	return &ImagesResult{
		Character: charAttempt.view(nil),
		Cover:     coverAttempt.view(nil),
	}, nil
}

// renderImage 生成失败写入 attempt.err；配置错误等其他错误直接返回
func (s *Service) renderImage(ctx context.Context, in wfmodel.ImagePromptInput, reference *workflowport.Image) (imageAttempt, error) {
	prompt, err := s.images.Prompt(ctx, in)
	if err != nil {
		return imageAttempt{}, err
	}
	attempt := imageAttempt{prompt: prompt}

	req := workflowport.ImageRequest{Prompt: prompt}
	if reference != nil {
		req.Reference = reference.Data
		req.ReferenceMIME = reference.MIMEType
	}

	img, err := s.images.Generate(ctx, in.Kind, req)
	switch {
	case err == nil:
		attempt.image = img
		metrics.ImageGenerationTotal.WithLabelValues(string(in.Kind), "success").Inc()
	case apperrors.IsGeneration(err):
		attempt.err = err
		metrics.ImageGenerationTotal.WithLabelValues(string(in.Kind), "error").Inc()
		logger.Warn(ctx, "image generation failed", "kind", string(in.Kind), "error", err.Error())
	default:
		return imageAttempt{}, err
	}
	return attempt, nil
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
