package story

import (
	"context"
	"strings"

	"fairybook-api/internal/domain/entity"
	"fairybook-api/internal/domain/service"
	wfmodel "fairybook-api/internal/workflow/model"
	wfnode "fairybook-api/internal/workflow/node"
	workflowport "fairybook-api/internal/workflow/port"
	apperrors "fairybook-api/pkg/errors"
	"fairybook-api/pkg/utils"
)

const defaultCardID = "story-card"

// Stage 生成单阶段正文；请求带风格时附加插画，插画失败只记录在结果里
func (s *Service) Stage(ctx context.Context, in StageInput) (*entity.StageResult, error) {
	textIn, card, err := validateStage(in)
	if err != nil {
		return nil, err
	}

	out, err := observe(ctx, service.WorkflowStageText, func(ctx context.Context) (*wfmodel.StageTextOutput, error) {
		return s.text.StageText(ctx, textIn, s.textOpts)
	})
	if err != nil {
		return nil, stepFailed(ctx, service.WorkflowStageText, err)
	}
	paragraphs := []string(out.Paragraphs)

	result := &entity.StageResult{
		Stage: entity.StageName(textIn.StageName),
		Card:  card,
		Story: entity.StageStory{
			Title:      wfnode.FirstNonEmpty(out.Title, textIn.Story.Title),
			Paragraphs: paragraphs,
		},
		GeneratedAt: s.now().UTC(),
	}

	if in.Style != nil {
		reference, refMIME := utils.DecodeBase64Image(in.CharacterImage)
		if m := strings.TrimSpace(in.CharacterImageMIME); m != "" {
			refMIME = m
		}
		prompt := wfmodel.ImagePromptInput{
			Kind:          wfmodel.ImageStage,
			Title:         textIn.Story.Title,
			Paragraphs:    paragraphs,
			Age:           textIn.Story.Age,
			Topic:         textIn.Story.Topic,
			StoryTypeName: textIn.Story.StoryTypeName,
			CardName:      card.Name,
			StageName:     textIn.StageName,
			StyleName:     strings.TrimSpace(in.Style.Name),
			StyleText:     strings.TrimSpace(in.Style.Style),
			Protagonist:   textIn.Story.Protagonist,
			UseReference:  len(reference) > 0,
		}
		var ref *workflowport.Image
		if len(reference) > 0 {
			ref = &workflowport.Image{Data: reference, MIMEType: wfnode.FirstNonEmpty(refMIME, utils.DefaultImageMIME)}
		}
		attempt, err := s.renderImage(ctx, prompt, ref)
		if err != nil {
			return nil, err
		}
		styleName := prompt.StyleName
		img := attempt.view(&styleName)
		result.Image = &img
	}
	return result, nil
}

// validateStage 校验顺序：卡片、标题、故事类型
func validateStage(in StageInput) (wfmodel.StageTextInput, entity.StoryCard, error) {
	var zero wfmodel.StageTextInput
	if in.Card == nil || strings.TrimSpace(in.Card.Name) == "" || strings.TrimSpace(in.Card.Prompt) == "" {
		return zero, entity.StoryCard{}, apperrors.Validation("storyCard.name and storyCard.prompt are required")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return zero, entity.StoryCard{}, apperrors.Validation("title is required")
	}
	typeName := strings.TrimSpace(in.StoryType.Name)
	typePrompt := strings.TrimSpace(in.StoryType.Prompt)
	if typeName == "" || typePrompt == "" {
		return zero, entity.StoryCard{}, apperrors.Validation("storyType.name and storyType.prompt are required")
	}

	card := entity.StoryCard{
		ID:     wfnode.FirstNonEmpty(in.Card.ID, defaultCardID),
		Name:   in.Card.Name,
		Prompt: in.Card.Prompt,
		Stage:  strings.TrimSpace(in.Card.Stage),
	}

	index := 0
	if in.StageIndex != nil && *in.StageIndex > 0 {
		index = *in.StageIndex
	}
	total := entity.StageCount()
	if in.StageTotal != nil && *in.StageTotal > 0 {
		total = *in.StageTotal
	}
	total = max(total, index+1)

	previous := make([]wfmodel.PreviousStage, 0, len(in.Previous))
	for _, p := range in.Previous {
		previous = append(previous, wfmodel.PreviousStage{
			Label:      wfnode.FirstNonEmpty(p.Stage, p.StageName),
			Card:       wfnode.FirstNonEmpty(p.CardName, p.Card),
			Paragraphs: p.Paragraphs,
		})
	}

	return wfmodel.StageTextInput{
		Story: wfmodel.StoryContext{
			Age:             strings.TrimSpace(in.Age),
			Topic:           strings.TrimSpace(in.Topic),
			StoryTypeName:   typeName,
			StoryTypePrompt: typePrompt,
			Synopsis:        strings.TrimSpace(in.Synopsis),
			Protagonist:     strings.TrimSpace(in.Protagonist),
			Title:           title,
		},
		StageName:  wfnode.FirstNonEmpty(in.StageName, in.Card.Stage, string(entity.DefaultStageName)),
		StageIndex: index,
		StageTotal: total,
		CardName:   card.Name,
		CardPrompt: card.Prompt,
		Previous:   previous,
	}, card, nil
}
