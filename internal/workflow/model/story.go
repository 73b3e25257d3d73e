package model

import "fairybook-api/internal/domain/entity"

// StoryContext 跨步骤传递的故事设定，后续提示词依赖前序输出
type StoryContext struct {
	Age             string
	Topic           string
	StoryTypeName   string
	StoryTypePrompt string
	Synopsis        string
	Protagonist     string
	Title           string
}

// TextOptions 文本模型调用参数
type TextOptions struct {
	Provider    string
	Model       string
	Temperature *float32
	TopP        *float32
	MaxTokens   *int
}

// PreviousStage 已完成阶段的摘要来源
type PreviousStage struct {
	Label      string
	Card       string
	Paragraphs []string
}

// StageTextInput 单阶段正文生成输入
type StageTextInput struct {
	Story      StoryContext
	StageName  string
	StageIndex int
	StageTotal int
	CardName   string
	CardPrompt string
	Previous   []PreviousStage
}

// StageTextOutput 模型返回的阶段正文
type StageTextOutput struct {
	Title      string              `json:"title"`
	Paragraphs entity.LooseStrings `json:"paragraphs"`
}

// TitleOutput 模型返回的标题
type TitleOutput struct {
	Title string `json:"title"`
}

// ImageKind 图像用途
type ImageKind string

const (
	ImageCharacter ImageKind = "character"
	ImageCover     ImageKind = "cover"
	ImageStage     ImageKind = "stage"
)

// ImagePromptInput 插画提示词输入
type ImagePromptInput struct {
	Kind          ImageKind
	Title         string
	Paragraphs    []string
	Age           string
	Topic         string
	StoryTypeName string
	CardName      string
	StageName     string
	StyleName     string
	StyleText     string
	Protagonist   string
	UseReference  bool
}
