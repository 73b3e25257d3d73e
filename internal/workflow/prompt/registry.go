// Package prompt 管理内嵌的提示词模板
package prompt

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	PromptSynopsisV1    PromptID = "synopsis_v1"
	PromptProtagonistV1 PromptID = "protagonist_v1"
	PromptTitleV1       PromptID = "title_v1"
	PromptStageV1       PromptID = "stage_v1"
	PromptImageV1       PromptID = "image_v1"
)

// 模板文件；system 为空表示只有用户消息
var promptFiles = map[PromptID]struct{ system, user string }{
	PromptSynopsisV1:    {"templates/synopsis_v1.system.txt", "templates/synopsis_v1.user.txt"},
	PromptProtagonistV1: {"templates/protagonist_v1.system.txt", "templates/protagonist_v1.user.txt"},
	PromptTitleV1:       {"templates/title_v1.system.txt", "templates/title_v1.user.txt"},
	PromptStageV1:       {"templates/stage_v1.system.txt", "templates/stage_v1.user.txt"},
	PromptImageV1:       {"", "templates/image_v1.user.txt"},
}

type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]einoprompt.ChatTemplate
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]einoprompt.ChatTemplate),
	}
}

func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	files, ok := promptFiles[id]
	if !ok {
		return nil, fmt.Errorf("unknown prompt id: %s", id)
	}

	msgs := make([]schema.MessagesTemplate, 0, 2)
	if files.system != "" {
		system, err := readEmbeddedText(files.system)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, schema.SystemMessage(system))
	}
	user, err := readEmbeddedText(files.user)
	if err != nil {
		return nil, err
	}
	msgs = append(msgs, schema.UserMessage(user))

	tpl := einoprompt.FromMessages(schema.FString, msgs...)
	r.cache[id] = tpl
	return tpl, nil
}

// Format 渲染为消息列表
func (r *Registry) Format(ctx context.Context, id PromptID, vars map[string]any) ([]*schema.Message, error) {
	tpl, err := r.ChatTemplate(id)
	if err != nil {
		return nil, err
	}
	return tpl.Format(ctx, vars)
}

// Render 渲染为单段文本，用于图像模型这类只接收纯文本的调用
func (r *Registry) Render(ctx context.Context, id PromptID, vars map[string]any) (string, error) {
	msgs, err := r.Format(ctx, id, vars)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m != nil && strings.TrimSpace(m.Content) != "" {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
