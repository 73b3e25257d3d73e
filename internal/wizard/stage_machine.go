package wizard

import (
	"errors"
	"fmt"
	"strings"

	"fairybook-api/internal/domain/entity"
)

// Phase 阶段生成状态
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseCardSelection Phase = "card-selection"
	PhaseGenerating    Phase = "generating"
	PhaseStageComplete Phase = "stage-complete"
	PhaseRecap         Phase = "recap"
)

var (
	// ErrPrecondition 缺少卡片或标题，不会调用生成流程
	ErrPrecondition = errors.New("stage generation precondition not met")
	// ErrTransition 当前状态不允许该操作
	ErrTransition = errors.New("invalid stage transition")
)

// StageMachine 驱动逐阶段生成：
// idle → card-selection → generating → stage-complete → (仍有待生成 ? card-selection : recap)
type StageMachine struct {
	session *Session
	phase   Phase
	current entity.StageName
}

// NewStageMachine 绑定会话，初始为 idle
func NewStageMachine(s *Session) *StageMachine {
	return &StageMachine{session: s, phase: PhaseIdle}
}

// Phase 当前状态
func (m *StageMachine) Phase() Phase {
	return m.phase
}

// Start 离开 idle，队列为空时直接进入 recap
func (m *StageMachine) Start() (Phase, error) {
	if m.phase != PhaseIdle && m.phase != PhaseRecap {
		return m.phase, fmt.Errorf("%w: start from %s", ErrTransition, m.phase)
	}
	m.route()
	return m.phase, nil
}

// BeginGeneration 校验前置条件并进入 generating，返回本次生成的阶段名。
// 前置条件不满足时把说明写入会话错误并返回 ErrPrecondition，状态保持不变。
func (m *StageMachine) BeginGeneration() (entity.StageName, error) {
	if m.phase != PhaseCardSelection {
		return "", fmt.Errorf("%w: begin generation from %s", ErrTransition, m.phase)
	}

	stage, ok := m.session.CurrentStage()
	if !ok {
		return "", m.reject("all stages are already generated")
	}
	if _, ok := m.session.SelectedCard(); !ok {
		return "", m.reject("select a story card before generating the stage")
	}
	if m.session.StoryTitle == nil || strings.TrimSpace(*m.session.StoryTitle) == "" {
		return "", m.reject("the story title is required before generating stages")
	}

	m.current = stage
	m.phase = PhaseGenerating
	m.session.SetGenerating(true)
	m.session.SetError(nil)
	return stage, nil
}

// Complete 写入结果并推进队列，进入 stage-complete。
// 生成期间会话被重置（队首已不是本次阶段）时丢弃结果，状态机回到 idle。
func (m *StageMachine) Complete(result entity.StageResult) error {
	if m.phase != PhaseGenerating {
		return fmt.Errorf("%w: complete from %s", ErrTransition, m.phase)
	}
	if head, ok := m.session.CurrentStage(); !ok || head != m.current {
		stale := m.current
		m.current = ""
		m.phase = PhaseIdle
		m.session.SetGenerating(false)
		return fmt.Errorf("%w: stage %s is no longer pending", ErrTransition, stale)
	}
	result.Stage = m.current
	m.session.UpsertStage(result)
	m.session.AdvanceStage()
	m.session.SetGenerating(false)
	m.phase = PhaseStageComplete
	return nil
}

// Fail 记录错误并回到 card-selection，已收集的状态不变
func (m *StageMachine) Fail(err error) {
	if m.phase != PhaseGenerating {
		return
	}
	if err != nil {
		msg := err.Error()
		m.session.SetError(&msg)
	}
	m.session.SetGenerating(false)
	m.phase = PhaseCardSelection
}

// Next 仅依据队列是否为空决定回到 card-selection 或进入 recap
func (m *StageMachine) Next() (Phase, error) {
	if m.phase != PhaseStageComplete {
		return m.phase, fmt.Errorf("%w: next from %s", ErrTransition, m.phase)
	}
	m.route()
	return m.phase, nil
}

func (m *StageMachine) route() {
	if len(m.session.PendingStages) > 0 {
		m.phase = PhaseCardSelection
		m.session.SetStep(StepCards)
		return
	}
	m.phase = PhaseRecap
	m.session.SetStep(StepRecap)
}

func (m *StageMachine) reject(msg string) error {
	m.session.SetError(&msg)
	return fmt.Errorf("%w: %s", ErrPrecondition, msg)
}
