package story

import (
	"time"

	"fairybook-api/internal/domain/entity"
)

// StoryTypeInput 选定的故事类型
type StoryTypeInput struct {
	Name   string
	Prompt string
}

// StyleInput 选定的插画风格
type StyleInput struct {
	Name  string
	Style string
}

// GenerateInput 梗概、主角与标题的生成输入
type GenerateInput struct {
	Age       string
	Topic     string
	StoryType StoryTypeInput
}

// GenerationResult 标题、梗概、主角与随机风格
type GenerationResult struct {
	Title       string
	Synopsis    string
	Protagonist string
	Style       entity.IllustrationStyle
	GeneratedAt time.Time
}

// ImagesInput 角色设定图与封面的生成输入
type ImagesInput struct {
	Title         string
	Synopsis      string
	Protagonist   string
	Age           string
	Topic         string
	StoryTypeName string
	Style         StyleInput
}

// ImagesResult 两张图各自携带成功数据或错误
type ImagesResult struct {
	Character entity.StoryImage
	Cover     entity.StoryImage
}

// CardInput 当前阶段使用的故事卡片
type CardInput struct {
	ID     string
	Name   string
	Prompt string
	Stage  string
}

// PreviousSection 已生成阶段
type PreviousSection struct {
	Stage      string
	StageName  string
	CardName   string
	Card       string
	Paragraphs []string
}

// StageInput 单阶段生成输入
type StageInput struct {
	Age         string
	Topic       string
	Title       string
	StoryType   StoryTypeInput
	StageName   string
	StageIndex  *int
	StageTotal  *int
	Card        *CardInput
	Previous    []PreviousSection
	Synopsis    string
	Protagonist string
	Style       *StyleInput
	// CharacterImage base64 或 data URL，作为插画参考
	CharacterImage     string
	CharacterImageMIME string
}
