package dto

import (
	"time"

	"fairybook-api/internal/application/story"
	"fairybook-api/internal/domain/entity"
)

// StoryTypeRef 请求中的故事类型
type StoryTypeRef struct {
	ID     entity.FlexibleID `json:"id,omitempty"`
	Name   string            `json:"name"`
	Prompt string            `json:"prompt"`
}

// StyleRef 请求中的插画风格
type StyleRef struct {
	Name  string `json:"name"`
	Style string `json:"style"`
}

// StageRef 当前阶段位置
type StageRef struct {
	Name  string `json:"name"`
	Index *int   `json:"index,omitempty"`
	Total *int   `json:"total,omitempty"`
}

// CardRef 请求中的故事卡片
type CardRef struct {
	ID     string  `json:"id,omitempty"`
	Name   string  `json:"name"`
	Prompt string  `json:"prompt"`
	Stage  *string `json:"stage,omitempty"`
}

// PreviousSection 已生成阶段的摘要
type PreviousSection struct {
	Stage      string              `json:"stage,omitempty"`
	StageName  string              `json:"stage_name,omitempty"`
	CardName   string              `json:"card_name,omitempty"`
	Card       string              `json:"card,omitempty"`
	Paragraphs entity.LooseStrings `json:"paragraphs,omitempty"`
}

// GenerateStoryRequest POST /api/story/generate
type GenerateStoryRequest struct {
	Age       string        `json:"age"`
	Topic     string        `json:"topic,omitempty"`
	StoryType *StoryTypeRef `json:"storyType"`
}

// GenerateStoryResponse 标题、梗概、主角与随机风格
type GenerateStoryResponse struct {
	Title       string                   `json:"title"`
	Synopsis    string                   `json:"synopsis"`
	Protagonist string                   `json:"protagonist"`
	Style       entity.IllustrationStyle `json:"style"`
	GeneratedAt time.Time                `json:"generatedAt"`
}

// GenerateImagesRequest POST /api/story/images
type GenerateImagesRequest struct {
	Title       string        `json:"title,omitempty"`
	Synopsis    string        `json:"synopsis,omitempty"`
	Protagonist string        `json:"protagonist,omitempty"`
	Age         string        `json:"age,omitempty"`
	Topic       string        `json:"topic,omitempty"`
	StoryType   *StoryTypeRef `json:"storyType,omitempty"`
	Style       *StyleRef     `json:"style"`
}

// GenerateImagesResponse 角色设定图与封面
type GenerateImagesResponse struct {
	Character entity.StoryImage `json:"character"`
	Cover     entity.StoryImage `json:"cover"`
}

// GenerateStageRequest POST /api/story/stage
type GenerateStageRequest struct {
	Age                    string            `json:"age,omitempty"`
	Topic                  string            `json:"topic,omitempty"`
	Title                  string            `json:"title"`
	StoryType              *StoryTypeRef     `json:"storyType"`
	Stage                  *StageRef         `json:"stage,omitempty"`
	StoryCard              *CardRef          `json:"storyCard"`
	PreviousSections       []PreviousSection `json:"previousSections,omitempty"`
	Synopsis               string            `json:"synopsis,omitempty"`
	Protagonist            string            `json:"protagonist,omitempty"`
	Style                  *StyleRef         `json:"style,omitempty"`
	CharacterImage         string            `json:"characterImage,omitempty"`
	CharacterImageMimeType string            `json:"characterImageMimeType,omitempty"`
}

// GenerateStageResponse 单阶段结果
type GenerateStageResponse struct {
	Stage entity.StageResult `json:"stage"`
}

// StoryTypesResponse GET /api/story/types
type StoryTypesResponse struct {
	StoryTypes []entity.StoryType `json:"storyTypes"`
}

// StoryCardsResponse GET /api/story/cards
type StoryCardsResponse struct {
	Cards []entity.StoryCard `json:"cards"`
}

func (r *StoryTypeRef) toInput() story.StoryTypeInput {
	if r == nil {
		return story.StoryTypeInput{}
	}
	return story.StoryTypeInput{Name: r.Name, Prompt: r.Prompt}
}

func (r *StyleRef) toInput() *story.StyleInput {
	if r == nil {
		return nil
	}
	return &story.StyleInput{Name: r.Name, Style: r.Style}
}

// ToInput 转为生成输入
func (r *GenerateStoryRequest) ToInput() story.GenerateInput {
	return story.GenerateInput{
		Age:       r.Age,
		Topic:     r.Topic,
		StoryType: r.StoryType.toInput(),
	}
}

// ToInput 缺少风格时 Style 为零值，由服务层校验
func (r *GenerateImagesRequest) ToInput() story.ImagesInput {
	in := story.ImagesInput{
		Title:       r.Title,
		Synopsis:    r.Synopsis,
		Protagonist: r.Protagonist,
		Age:         r.Age,
		Topic:       r.Topic,
	}
	if r.StoryType != nil {
		in.StoryTypeName = r.StoryType.Name
	}
	if s := r.Style.toInput(); s != nil {
		in.Style = *s
	}
	return in
}

// ToInput 转为单阶段生成输入
func (r *GenerateStageRequest) ToInput() story.StageInput {
	in := story.StageInput{
		Age:                r.Age,
		Topic:              r.Topic,
		Title:              r.Title,
		StoryType:          r.StoryType.toInput(),
		Synopsis:           r.Synopsis,
		Protagonist:        r.Protagonist,
		Style:              r.Style.toInput(),
		CharacterImage:     r.CharacterImage,
		CharacterImageMIME: r.CharacterImageMimeType,
	}
	if r.Stage != nil {
		in.StageName = r.Stage.Name
		in.StageIndex = r.Stage.Index
		in.StageTotal = r.Stage.Total
	}
	if r.StoryCard != nil {
		card := &story.CardInput{ID: r.StoryCard.ID, Name: r.StoryCard.Name, Prompt: r.StoryCard.Prompt}
		if r.StoryCard.Stage != nil {
			card.Stage = *r.StoryCard.Stage
		}
		in.Card = card
	}
	for _, p := range r.PreviousSections {
		in.Previous = append(in.Previous, story.PreviousSection{
			Stage:      p.Stage,
			StageName:  p.StageName,
			CardName:   p.CardName,
			Card:       p.Card,
			Paragraphs: []string(p.Paragraphs),
		})
	}
	return in
}

// NewGenerateStoryResponse 转为响应
func NewGenerateStoryResponse(r *story.GenerationResult) GenerateStoryResponse {
	return GenerateStoryResponse{
		Title:       r.Title,
		Synopsis:    r.Synopsis,
		Protagonist: r.Protagonist,
		Style:       r.Style,
		GeneratedAt: r.GeneratedAt,
	}
}
