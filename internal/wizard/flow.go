package wizard

import (
	"context"
	"fmt"
	"strings"

	"fairybook-api/internal/domain/entity"
	"fairybook-api/internal/interfaces/http/dto"
	"fairybook-api/pkg/utils"
)

// Pipeline 向导依赖的生成接口，由 HTTP 客户端实现
type Pipeline interface {
	StoryTypes(ctx context.Context, count int) ([]entity.StoryType, error)
	StoryCards(ctx context.Context, count int, stage entity.StageName) ([]entity.StoryCard, error)
	GenerateStory(ctx context.Context, req dto.GenerateStoryRequest) (*dto.GenerateStoryResponse, error)
	GenerateImages(ctx context.Context, req dto.GenerateImagesRequest) (*dto.GenerateImagesResponse, error)
	GenerateStage(ctx context.Context, req dto.GenerateStageRequest) (*entity.StageResult, error)
	RecordExport(ctx context.Context, req dto.RecordExportRequest) (*dto.LibraryEntry, error)
}

// Flow 按步骤把会话与生成接口串起来
type Flow struct {
	Session  *Session
	Machine  *StageMachine
	pipeline Pipeline
}

// NewFlow 创建新会话
func NewFlow(p Pipeline) *Flow {
	s := NewSession()
	return &Flow{Session: s, Machine: NewStageMachine(s), pipeline: p}
}

// Reset 丢弃当前会话
func (f *Flow) Reset() {
	f.Session.Reset()
	f.Machine = NewStageMachine(f.Session)
}

// Begin 进入创作模式
func (f *Flow) Begin() {
	f.Session.SetMode(ModeCreate)
	f.Session.SetStep(StepAgeTopic)
}

// SetAgeTopic 第 1 步：年龄段必填
func (f *Flow) SetAgeTopic(age, topic string) error {
	age = strings.TrimSpace(age)
	if age == "" {
		return f.fail(fmt.Errorf("%w: age is required", ErrPrecondition))
	}
	f.Session.SetAgeInput(&age)
	f.Session.SetTopicInput(strings.TrimSpace(topic))
	f.Session.SetError(nil)
	return nil
}

// LoadStoryTypes 第 2 步：抽取故事类型候选
func (f *Flow) LoadStoryTypes(ctx context.Context, count int) error {
	types, err := f.pipeline.StoryTypes(ctx, count)
	if err != nil {
		return f.fail(err)
	}
	f.Session.SetStoryTypeCandidates(types)
	f.Session.SelectStoryType(0)
	f.Session.SetStep(StepStoryType)
	return nil
}

// ChooseStoryType 选定类型后生成梗概、主角、标题与风格，再生成角色设定图和封面
func (f *Flow) ChooseStoryType(ctx context.Context, index int) error {
	s := f.Session
	if index < 0 || index >= len(s.StoryTypeCandidates) {
		return f.fail(fmt.Errorf("%w: story type %d is out of range", ErrPrecondition, index+1))
	}
	if s.AgeInput == nil {
		return f.fail(fmt.Errorf("%w: age is required", ErrPrecondition))
	}
	s.SelectStoryType(index)
	st := s.StoryTypeCandidates[index]
	ref := &dto.StoryTypeRef{ID: st.ID, Name: st.Name, Prompt: st.Prompt}

	s.SetGenerating(true)
	defer s.SetGenerating(false)

	gen, err := f.pipeline.GenerateStory(ctx, dto.GenerateStoryRequest{
		Age:       *s.AgeInput,
		Topic:     s.TopicInput,
		StoryType: ref,
	})
	if err != nil {
		return f.fail(err)
	}
	s.SetSynopsis(&gen.Synopsis)
	s.SetProtagonist(&gen.Protagonist)
	s.SetTitle(&gen.Title)
	style := gen.Style
	s.SetStyleChoice(&style)

	images, err := f.pipeline.GenerateImages(ctx, dto.GenerateImagesRequest{
		Title:       gen.Title,
		Synopsis:    gen.Synopsis,
		Protagonist: gen.Protagonist,
		Age:         *s.AgeInput,
		Topic:       s.TopicInput,
		StoryType:   ref,
		Style:       &dto.StyleRef{Name: style.Name, Style: style.Style},
	})
	if err != nil {
		// 图像失败不影响文字结果，用户仍可继续
		msg := err.Error()
		s.SetCharacterImage(nil, nil, &msg)
		s.SetCoverImage(nil, nil, &msg)
		s.SetCoverReady(false)
	} else {
		s.SetCharacterImage(images.Character.DataURL, &images.Character.Prompt, images.Character.Error)
		s.SetCoverImage(images.Cover.DataURL, &images.Cover.Prompt, images.Cover.Error)
		s.SetCoverReady(images.Cover.DataURL != nil)
	}

	s.SetError(nil)
	s.SetStep(StepReview)
	return nil
}

// EnterStages 进入逐阶段生成
func (f *Flow) EnterStages() (Phase, error) {
	return f.Machine.Start()
}

// LoadCards 为当前阶段抽卡
func (f *Flow) LoadCards(ctx context.Context, count int) error {
	stage, ok := f.Session.CurrentStage()
	if !ok {
		stage = entity.StageBeginning
	}
	cards, err := f.pipeline.StoryCards(ctx, count, stage)
	if err != nil {
		return f.fail(err)
	}
	f.Session.SetStoryCards(cards)
	f.Session.SelectCard(0)
	return nil
}

// GenerateStage 生成当前阶段；成功后状态机已推进到下一状态
func (f *Flow) GenerateStage(ctx context.Context) (*entity.StageResult, error) {
	stage, err := f.Machine.BeginGeneration()
	if err != nil {
		return nil, err
	}

	req, err := BuildStageRequest(f.Session, stage)
	if err != nil {
		f.Machine.Fail(err)
		return nil, err
	}

	result, err := f.pipeline.GenerateStage(ctx, req)
	if err != nil {
		f.Machine.Fail(err)
		return nil, err
	}
	if err := f.Machine.Complete(*result); err != nil {
		return nil, err
	}
	if _, err := f.Machine.Next(); err != nil {
		return nil, err
	}
	stored, _ := f.Session.StageResult(stage)
	return &stored, nil
}

// Export 在回顾步骤登记作品
func (f *Flow) Export(ctx context.Context, downloadURL *string) (*dto.LibraryEntry, error) {
	s := f.Session
	if f.Machine.Phase() != PhaseRecap {
		return nil, fmt.Errorf("%w: export before all stages are generated", ErrTransition)
	}
	names := make([]string, 0, len(s.Stages))
	for _, r := range s.Stages {
		names = append(names, string(r.Stage))
	}
	title := ""
	if s.StoryTitle != nil {
		title = *s.StoryTitle
	}
	entry, err := f.pipeline.RecordExport(ctx, dto.RecordExportRequest{
		Title:       title,
		StageCount:  len(s.Stages),
		StageNames:  names,
		DownloadURL: downloadURL,
	})
	if err != nil {
		return nil, f.fail(err)
	}
	return entry, nil
}

func (f *Flow) fail(err error) error {
	msg := err.Error()
	f.Session.SetError(&msg)
	return err
}

// BuildStageRequest 由会话拼出阶段生成请求，前序阶段作为摘要传入
func BuildStageRequest(s *Session, stage entity.StageName) (dto.GenerateStageRequest, error) {
	st, ok := s.SelectedStoryType()
	if !ok {
		return dto.GenerateStageRequest{}, fmt.Errorf("%w: story type is not selected", ErrPrecondition)
	}
	card, ok := s.SelectedCard()
	if !ok {
		return dto.GenerateStageRequest{}, fmt.Errorf("%w: story card is not selected", ErrPrecondition)
	}

	index := stage.Index()
	if index < 0 {
		index = 0
	}
	total := entity.StageCount()

	req := dto.GenerateStageRequest{
		Topic:     s.TopicInput,
		StoryType: &dto.StoryTypeRef{ID: st.ID, Name: st.Name, Prompt: st.Prompt},
		Stage:     &dto.StageRef{Name: string(stage), Index: &index, Total: &total},
		StoryCard: &dto.CardRef{ID: card.ID, Name: card.Name, Prompt: card.Prompt},
	}
	if card.Stage != "" {
		cs := card.Stage
		req.StoryCard.Stage = &cs
	}
	if s.AgeInput != nil {
		req.Age = *s.AgeInput
	}
	if s.StoryTitle != nil {
		req.Title = *s.StoryTitle
	}
	if s.SynopsisText != nil {
		req.Synopsis = *s.SynopsisText
	}
	if s.ProtagonistText != nil {
		req.Protagonist = *s.ProtagonistText
	}
	if s.StyleChoice != nil {
		req.Style = &dto.StyleRef{Name: s.StyleChoice.Name, Style: s.StyleChoice.Style}
	}
	if s.CharacterImage.DataURL != nil {
		mime, payload := utils.SplitDataURL(*s.CharacterImage.DataURL)
		req.CharacterImage = payload
		req.CharacterImageMimeType = mime
	}

	for _, r := range s.Stages {
		req.PreviousSections = append(req.PreviousSections, dto.PreviousSection{
			Stage:      string(r.Stage),
			CardName:   r.Card.Name,
			Paragraphs: entity.LooseStrings(r.Story.Paragraphs),
		})
	}
	return req, nil
}
