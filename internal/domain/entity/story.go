// Package entity 定义领域实体
package entity

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// StageName 叙事阶段名称
type StageName string

// 固定的五个叙事阶段
const (
	StageBeginning   StageName = "beginning"
	StageDevelopment StageName = "development"
	StageCrisis      StageName = "crisis"
	StageClimax      StageName = "climax"
	StageResolution  StageName = "resolution"
)

// DefaultStageName 请求未给出阶段名时使用
const DefaultStageName StageName = "story stage"

var stageSequence = [...]StageName{
	StageBeginning,
	StageDevelopment,
	StageCrisis,
	StageClimax,
	StageResolution,
}

// StageSequence 返回阶段顺序的副本
func StageSequence() []StageName {
	out := make([]StageName, len(stageSequence))
	copy(out, stageSequence[:])
	return out
}

// StageCount 阶段总数
func StageCount() int {
	return len(stageSequence)
}

// IsKnown 是否为五个固定阶段之一
func (s StageName) IsKnown() bool {
	return s.Index() >= 0
}

// Index 阶段序号，未知阶段返回 -1
func (s StageName) Index() int {
	for i, name := range stageSequence {
		if name == s {
			return i
		}
	}
	return -1
}

// FlexibleID 兼容数字与字符串两种 JSON 形式的 ID
type FlexibleID string

// UnmarshalJSON 数字按原样转为字符串
func (id *FlexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = FlexibleID(s)
		return nil
	}
	if string(b) == "null" {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = FlexibleID(n.String())
	return nil
}

// StoryType 故事类型
type StoryType struct {
	ID     FlexibleID `json:"id"`
	Name   string     `json:"name"`
	Prompt string     `json:"prompt"`
	Image  *string    `json:"image,omitempty"`
}

// StoryCard 故事卡片
type StoryCard struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Prompt string  `json:"prompt"`
	Stage  string  `json:"stage,omitempty"`
	Mood   string  `json:"mood,omitempty"`
	Image  *string `json:"image,omitempty"`
}

// IllustrationStyle 插画风格
type IllustrationStyle struct {
	Name          string  `json:"name"`
	Style         string  `json:"style"`
	ThumbnailPath *string `json:"thumbnailPath"`
}

// Valid 名称与描述均非空
func (s IllustrationStyle) Valid() bool {
	return strings.TrimSpace(s.Name) != "" && strings.TrimSpace(s.Style) != ""
}

// StoryImage 生成的图像，DataURL 为空时 Error 说明原因
type StoryImage struct {
	DataURL  *string `json:"dataUrl"`
	MimeType string  `json:"mimeType"`
	Prompt   string  `json:"prompt"`
	Style    *string `json:"style,omitempty"`
	Error    *string `json:"error"`
}

// StageStory 单阶段正文
type StageStory struct {
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
	Summary    *string  `json:"summary"`
}

// StageResult 单阶段生成结果
type StageResult struct {
	Stage       StageName   `json:"stage"`
	Card        StoryCard   `json:"card"`
	Story       StageStory  `json:"story"`
	Image       *StoryImage `json:"image,omitempty"`
	GeneratedAt time.Time   `json:"generatedAt"`
}
