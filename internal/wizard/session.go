// Package wizard 维护一次创作会话的状态，所有修改都通过具名操作完成。
// Session 没有内部锁，由单个 goroutine 持有。
package wizard

import (
	"fmt"
	"slices"

	"fairybook-api/internal/domain/entity"
)

// Step 向导步骤
type Step int

const (
	StepIntro Step = iota
	StepAgeTopic
	StepStoryType
	StepReview // 梗概、主角与封面确认
	StepCards
	StepGeneration
	StepRecap
)

// Mode 顶层页面
type Mode string

const (
	ModeHome     Mode = "home"
	ModeCreate   Mode = "create"
	ModeLibrary  Mode = "library"
	ModeBoard    Mode = "board"
	ModeSettings Mode = "settings"
)

// ModeForRoute 由路由推导页面模式，未知路由回到首页
func ModeForRoute(route string) Mode {
	switch route {
	case "/create", "create":
		return ModeCreate
	case "/library", "library":
		return ModeLibrary
	case "/board", "board":
		return ModeBoard
	case "/settings", "settings":
		return ModeSettings
	default:
		return ModeHome
	}
}

// ImageSlot 一张生成图的状态
type ImageSlot struct {
	DataURL *string
	Prompt  *string
	Error   *string
}

// Session 一次创作的全部状态
type Session struct {
	Step Step
	Mode Mode

	AgeInput   *string
	TopicInput string

	StoryTypeCandidates []entity.StoryType
	SelectedTypeIndex   int

	StoryCards        []entity.StoryCard
	SelectedCardIndex int

	SynopsisText    *string
	ProtagonistText *string
	StoryTitle      *string
	StyleChoiceName *string
	StyleChoice     *entity.IllustrationStyle

	CharacterImage ImageSlot
	CoverImage     ImageSlot
	CoverReady     bool

	PendingStages []entity.StageName
	Stages        []entity.StageResult

	IsGenerating bool
	Error        *string
}

// NewSession 返回初始状态
func NewSession() *Session {
	s := &Session{}
	s.Reset()
	return s
}

// Reset 恢复全部默认值并重新填充五个阶段，任意步骤都可调用
func (s *Session) Reset() {
	*s = Session{
		Step:          StepIntro,
		Mode:          ModeHome,
		PendingStages: entity.StageSequence(),
		Stages:        []entity.StageResult{},
	}
}

// AdvanceStage 弹出队首阶段，队列为空时不做任何事
func (s *Session) AdvanceStage() {
	if len(s.PendingStages) == 0 {
		return
	}
	s.PendingStages = slices.Clone(s.PendingStages[1:])
}

// CurrentStage 队首阶段，队列为空时 ok 为 false
func (s *Session) CurrentStage() (entity.StageName, bool) {
	if len(s.PendingStages) == 0 {
		return "", false
	}
	return s.PendingStages[0], true
}

// UpsertStage 移除同名阶段后追加，保证每个阶段最多一条
func (s *Session) UpsertStage(result entity.StageResult) {
	s.Stages = slices.DeleteFunc(s.Stages, func(r entity.StageResult) bool {
		return r.Stage == result.Stage
	})
	s.Stages = append(s.Stages, result)
}

// PushStage 写入一条已生成的阶段，阶段名必须属于固定序列，同名时以新结果为准
func (s *Session) PushStage(result entity.StageResult) error {
	if !result.Stage.IsKnown() {
		return fmt.Errorf("unknown stage %q", result.Stage)
	}
	s.UpsertStage(result)
	return nil
}

// StageResult 按阶段名查找
func (s *Session) StageResult(name entity.StageName) (entity.StageResult, bool) {
	for _, r := range s.Stages {
		if r.Stage == name {
			return r, true
		}
	}
	return entity.StageResult{}, false
}

// SelectedStoryType 当前选中的故事类型
func (s *Session) SelectedStoryType() (entity.StoryType, bool) {
	if s.SelectedTypeIndex < 0 || s.SelectedTypeIndex >= len(s.StoryTypeCandidates) {
		return entity.StoryType{}, false
	}
	return s.StoryTypeCandidates[s.SelectedTypeIndex], true
}

// SelectedCard 当前选中的卡片
func (s *Session) SelectedCard() (entity.StoryCard, bool) {
	if s.SelectedCardIndex < 0 || s.SelectedCardIndex >= len(s.StoryCards) {
		return entity.StoryCard{}, false
	}
	return s.StoryCards[s.SelectedCardIndex], true
}

func (s *Session) SetMode(mode Mode)         { s.Mode = mode }
func (s *Session) SetStep(step Step)         { s.Step = step }
func (s *Session) SetAgeInput(age *string)   { s.AgeInput = age }
func (s *Session) SetTopicInput(t string)    { s.TopicInput = t }
func (s *Session) SetCoverReady(ready bool)  { s.CoverReady = ready }
func (s *Session) SetGenerating(active bool) { s.IsGenerating = active }
func (s *Session) SetError(msg *string)      { s.Error = msg }
func (s *Session) SetSynopsis(v *string)     { s.SynopsisText = v }
func (s *Session) SetProtagonist(v *string)  { s.ProtagonistText = v }
func (s *Session) SetTitle(v *string)        { s.StoryTitle = v }

func (s *Session) SetStoryTypeCandidates(types []entity.StoryType) {
	s.StoryTypeCandidates = slices.Clone(types)
}

func (s *Session) SelectStoryType(index int) { s.SelectedTypeIndex = index }

func (s *Session) SetStoryCards(cards []entity.StoryCard) {
	s.StoryCards = slices.Clone(cards)
}

func (s *Session) SelectCard(index int) { s.SelectedCardIndex = index }

// SetStyleChoice 同时更新风格名称
func (s *Session) SetStyleChoice(style *entity.IllustrationStyle) {
	s.StyleChoice = style
	if style == nil {
		s.StyleChoiceName = nil
		return
	}
	name := style.Name
	s.StyleChoiceName = &name
}

func (s *Session) SetStyleChoiceName(name *string) { s.StyleChoiceName = name }

func (s *Session) SetCharacterImage(dataURL, prompt, errMsg *string) {
	s.CharacterImage = ImageSlot{DataURL: dataURL, Prompt: prompt, Error: errMsg}
}

func (s *Session) SetCoverImage(dataURL, prompt, errMsg *string) {
	s.CoverImage = ImageSlot{DataURL: dataURL, Prompt: prompt, Error: errMsg}
}

func (s *Session) SetPendingStages(stages []entity.StageName) {
	s.PendingStages = slices.Clone(stages)
}

func (s *Session) SetStages(stages []entity.StageResult) {
	s.Stages = slices.Clone(stages)
}
