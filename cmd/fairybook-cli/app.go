package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"fairybook-api/internal/domain/entity"
	"fairybook-api/internal/interfaces/http/dto"
	"fairybook-api/internal/wizard"
)

const (
	storyTypeCount = 8
	storyCardCount = 4
	libraryLimit   = 20
)

var (
	errQuit      = errors.New("quit")
	errCancelled = errors.New("stage generation cancelled")
)

// API 向导与首页所需的远端接口
type API interface {
	wizard.Pipeline
	Library(ctx context.Context, limit int) ([]dto.LibraryEntry, error)
	MOTD(ctx context.Context) (*dto.MOTD, error)
	Session(ctx context.Context) (*entity.Session, error)
}

type app struct {
	api  API
	flow *wizard.Flow
	in   *bufio.Scanner
	out  io.Writer
}

func newApp(api API, in io.Reader, out io.Writer) *app {
	return &app{
		api:  api,
		flow: wizard.NewFlow(api),
		in:   bufio.NewScanner(in),
		out:  out,
	}
}

// Run 首页循环，输入结束或选择退出时返回 nil
func (a *app) Run(ctx context.Context) error {
	a.printHome(ctx)
	for {
		a.printf("\n[1] Create a story  [2] Library  [q] Quit\n")
		choice, err := a.ask("> ")
		if err != nil {
			return ignoreQuit(err)
		}
		switch choice {
		case "1":
			a.flow.Session.SetMode(wizard.ModeForRoute("create"))
			err = a.create(ctx)
		case "2":
			a.flow.Session.SetMode(wizard.ModeForRoute("library"))
			err = a.library(ctx)
		case "q", "Q":
			return nil
		default:
			a.printf("Unknown choice %q\n", choice)
			continue
		}
		if err != nil {
			if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.printf("! %v\n", err)
		}
		a.flow.Reset()
	}
}

func (a *app) printHome(ctx context.Context) {
	if sess, err := a.api.Session(ctx); err == nil {
		if sess.Authenticated && sess.User != nil {
			a.printf("Signed in as %s\n", firstNonEmpty(sess.User.DisplayName, sess.User.UID))
		} else if sess.Message != "" {
			a.printf("Guest mode: %s\n", sess.Message)
		}
	}
	if m, err := a.api.MOTD(ctx); err == nil && m != nil && m.IsActive {
		a.printf("Notice (%s): %s\n", m.UpdatedAtKst, m.Message)
	}
}

func (a *app) create(ctx context.Context) error {
	f := a.flow
	f.Begin()

	for {
		age, err := a.ask("Reader age (e.g. 6-8): ")
		if err != nil {
			return err
		}
		topic, err := a.ask("Topic (optional): ")
		if err != nil {
			return err
		}
		if err := f.SetAgeTopic(age, topic); err != nil {
			a.printf("! %v\n", err)
			continue
		}
		break
	}

	if err := f.LoadStoryTypes(ctx, storyTypeCount); err != nil {
		return err
	}
	for i, t := range f.Session.StoryTypeCandidates {
		a.printf("  %d. %s - %s\n", i+1, t.Name, t.Prompt)
	}
	index, err := a.pick("Story type", len(f.Session.StoryTypeCandidates))
	if err != nil {
		return err
	}

	a.printf("Writing the synopsis and drawing the cover...\n")
	if err := f.ChooseStoryType(ctx, index); err != nil {
		return err
	}
	a.printReview()

	if _, err := f.EnterStages(); err != nil {
		return err
	}
	for f.Machine.Phase() == wizard.PhaseCardSelection {
		if err := a.stage(ctx); err != nil {
			return err
		}
	}
	return a.recap(ctx)
}

func (a *app) printReview() {
	s := a.flow.Session
	a.printf("\n== %s ==\n", deref(s.StoryTitle))
	a.printf("Synopsis: %s\n", deref(s.SynopsisText))
	a.printf("Protagonist: %s\n", deref(s.ProtagonistText))
	if s.StyleChoice != nil {
		a.printf("Style: %s\n", s.StyleChoice.Name)
	}
	a.printf("Character sheet: %s\n", imageStatus(s.CharacterImage))
	a.printf("Cover: %s\n", imageStatus(s.CoverImage))
}

// stage 为当前阶段抽卡并生成，上游失败时可重试
func (a *app) stage(ctx context.Context) error {
	f := a.flow
	current, _ := f.Session.CurrentStage()
	a.printf("\n-- Stage %d/%d: %s --\n", current.Index()+1, entity.StageCount(), current)

	if err := f.LoadCards(ctx, storyCardCount); err != nil {
		return err
	}
	for i, c := range f.Session.StoryCards {
		a.printf("  %d. %s - %s\n", i+1, c.Name, c.Prompt)
	}
	index, err := a.pick("Story card", len(f.Session.StoryCards))
	if err != nil {
		return err
	}
	f.Session.SelectCard(index)

	for {
		a.printf("Writing %s...\n", current)
		result, err := f.GenerateStage(ctx)
		if err == nil {
			a.printStage(result)
			return nil
		}
		if errors.Is(err, wizard.ErrPrecondition) || errors.Is(err, wizard.ErrTransition) {
			return err
		}
		a.printf("! %v\n", err)
		again, err := a.ask("Retry? [Y/n] ")
		if err != nil {
			return err
		}
		if strings.EqualFold(again, "n") {
			return errCancelled
		}
	}
}

func (a *app) printStage(r *entity.StageResult) {
	a.printf("\n%s\n", r.Story.Title)
	for _, p := range r.Story.Paragraphs {
		a.printf("  %s\n", p)
	}
	if r.Image != nil {
		a.printf("Illustration: %s\n", imageStatus(wizard.ImageSlot{DataURL: r.Image.DataURL, Error: r.Image.Error}))
	}
}

func (a *app) recap(ctx context.Context) error {
	s := a.flow.Session
	a.printf("\nAll %d stages are ready for %q.\n", len(s.Stages), deref(s.StoryTitle))
	answer, err := a.ask("Add it to the library? [Y/n] ")
	if err != nil {
		return err
	}
	if strings.EqualFold(answer, "n") {
		return nil
	}
	entry, err := a.flow.Export(ctx, nil)
	if err != nil {
		return err
	}
	a.printf("Saved %s (%s)\n", entry.Title, entry.ID)
	return nil
}

func (a *app) library(ctx context.Context) error {
	entries, err := a.api.Library(ctx, libraryLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		a.printf("The library is empty.\n")
		return nil
	}
	for _, e := range entries {
		a.printf("  %s  %s (%d stages)\n", e.CreatedAt, e.Title, e.StageCount)
	}
	return nil
}

// pick 读取 1..n 的序号，返回从 0 开始的下标
func (a *app) pick(label string, n int) (int, error) {
	if n == 0 {
		return 0, fmt.Errorf("no %s candidates", strings.ToLower(label))
	}
	for {
		raw, err := a.ask(fmt.Sprintf("%s [1-%d]: ", label, n))
		if err != nil {
			return 0, err
		}
		if raw == "" {
			return 0, nil
		}
		i, err := strconv.Atoi(raw)
		if err == nil && i >= 1 && i <= n {
			return i - 1, nil
		}
		a.printf("Enter a number between 1 and %d\n", n)
	}
}

func (a *app) ask(prompt string) (string, error) {
	a.printf("%s", prompt)
	if !a.in.Scan() {
		if err := a.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	line := strings.TrimSpace(a.in.Text())
	if line == ":q" {
		return "", errQuit
	}
	return line, nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func ignoreQuit(err error) error {
	if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func imageStatus(slot wizard.ImageSlot) string {
	switch {
	case slot.DataURL != nil:
		return "ready"
	case slot.Error != nil:
		return "failed: " + *slot.Error
	default:
		return "not generated"
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
