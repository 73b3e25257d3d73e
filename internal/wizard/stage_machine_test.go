package wizard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairybook-api/internal/domain/entity"
)

func readySession() *Session {
	s := NewSession()
	s.SetTitle(strPtr("Moon Boat"))
	s.SetStoryCards([]entity.StoryCard{{ID: "c1", Name: "Lost Key", Prompt: "a key goes missing"}})
	s.SelectCard(0)
	return s
}

// TestStageMachineHappyPath 测试完整五阶段流转
func TestStageMachineHappyPath(t *testing.T) {
	s := readySession()
	m := NewStageMachine(s)
	assert.Equal(t, PhaseIdle, m.Phase())

	phase, err := m.Start()
	require.NoError(t, err)
	assert.Equal(t, PhaseCardSelection, phase)

	for i, want := range entity.StageSequence() {
		stage, err := m.BeginGeneration()
		require.NoError(t, err)
		assert.Equal(t, want, stage)
		assert.True(t, s.IsGenerating)

		require.NoError(t, m.Complete(stageResult("ignored", "t")))
		assert.Equal(t, PhaseStageComplete, m.Phase())
		assert.False(t, s.IsGenerating)
		assert.Len(t, s.Stages, i+1)
		assert.Equal(t, want, s.Stages[i].Stage)

		phase, err := m.Next()
		require.NoError(t, err)
		if i < entity.StageCount()-1 {
			assert.Equal(t, PhaseCardSelection, phase)
			assert.Equal(t, StepCards, s.Step)
		} else {
			assert.Equal(t, PhaseRecap, phase)
			assert.Equal(t, StepRecap, s.Step)
		}
	}
	assert.Empty(t, s.PendingStages)
}

// TestBeginGenerationRequiresCardAndTitle 测试前置条件不满足时拒绝且不改变状态
func TestBeginGenerationRequiresCardAndTitle(t *testing.T) {
	s := NewSession()
	m := NewStageMachine(s)
	_, err := m.Start()
	require.NoError(t, err)

	_, err = m.BeginGeneration()
	assert.True(t, errors.Is(err, ErrPrecondition))
	assert.Contains(t, err.Error(), "story card")
	assert.Equal(t, PhaseCardSelection, m.Phase())
	require.NotNil(t, s.Error)

	s.SetStoryCards([]entity.StoryCard{{ID: "c1", Name: "n"}})
	_, err = m.BeginGeneration()
	assert.True(t, errors.Is(err, ErrPrecondition))
	assert.Contains(t, err.Error(), "title")

	s.SetTitle(strPtr("   "))
	_, err = m.BeginGeneration()
	assert.True(t, errors.Is(err, ErrPrecondition))
	assert.False(t, s.IsGenerating)
}

// TestFailReturnsToCardSelection 测试失败保留已有状态
func TestFailReturnsToCardSelection(t *testing.T) {
	s := readySession()
	m := NewStageMachine(s)
	_, _ = m.Start()

	_, err := m.BeginGeneration()
	require.NoError(t, err)
	m.Fail(errors.New("upstream timeout"))

	assert.Equal(t, PhaseCardSelection, m.Phase())
	assert.False(t, s.IsGenerating)
	require.NotNil(t, s.Error)
	assert.Equal(t, "upstream timeout", *s.Error)
	assert.Len(t, s.PendingStages, entity.StageCount())
	assert.Equal(t, "Moon Boat", *s.StoryTitle)
}

// TestInvalidTransitions 测试非法转移
func TestInvalidTransitions(t *testing.T) {
	s := readySession()
	m := NewStageMachine(s)

	_, err := m.BeginGeneration()
	assert.ErrorIs(t, err, ErrTransition)
	assert.ErrorIs(t, m.Complete(stageResult(entity.StageBeginning, "t")), ErrTransition)
	_, err = m.Next()
	assert.ErrorIs(t, err, ErrTransition)
}

// TestStartWithEmptyQueueGoesToRecap 测试无待生成阶段时直接进入回顾
func TestStartWithEmptyQueueGoesToRecap(t *testing.T) {
	s := readySession()
	s.SetPendingStages(nil)
	m := NewStageMachine(s)
	phase, err := m.Start()
	require.NoError(t, err)
	assert.Equal(t, PhaseRecap, phase)
}

// TestCompleteAfterResetIsRejected 测试生成期间重置会话后结果被丢弃，队列与已生成阶段仍能拼回完整序列
func TestCompleteAfterResetIsRejected(t *testing.T) {
	s := readySession()
	m := NewStageMachine(s)
	_, err := m.Start()
	require.NoError(t, err)
	for range 2 {
		_, err := m.BeginGeneration()
		require.NoError(t, err)
		require.NoError(t, m.Complete(stageResult("ignored", "t")))
		_, err = m.Next()
		require.NoError(t, err)
	}

	stage, err := m.BeginGeneration()
	require.NoError(t, err)
	assert.Equal(t, entity.StageCrisis, stage)

	s.Reset()
	err = m.Complete(stageResult("ignored", "t"))
	require.ErrorIs(t, err, ErrTransition)
	assert.Equal(t, PhaseIdle, m.Phase())
	assert.False(t, s.IsGenerating)
	assert.Equal(t, entity.StageSequence(), s.PendingStages)
	assert.Empty(t, s.Stages)

	phase, err := m.Start()
	require.NoError(t, err)
	assert.Equal(t, PhaseCardSelection, phase)
}
