package catalog

import (
	"strings"

	"fairybook-api/internal/domain/entity"
)

type storyTypesJSON struct {
	StoryTypes []*struct {
		ID     *entity.FlexibleID `json:"id"`
		Name   *string            `json:"name"`
		Prompt *string            `json:"prompt"`
		Illust *string            `json:"illust"`
	} `json:"story_types"`
}

func (j storyTypesJSON) entries() []entity.StoryType {
	out := make([]entity.StoryType, 0, len(j.StoryTypes))
	for _, raw := range j.StoryTypes {
		if raw == nil {
			continue
		}
		id := entity.FlexibleID("unknown")
		if raw.ID != nil && *raw.ID != "" {
			id = *raw.ID
		}
		out = append(out, entity.StoryType{
			ID:     id,
			Name:   orDefault(raw.Name, defaultTypeName),
			Prompt: orDefault(raw.Prompt, ""),
			Image:  optional(raw.Illust),
		})
	}
	return out
}

type storyCardsJSON struct {
	Cards []*struct {
		ID     *entity.FlexibleID `json:"id"`
		Name   *string            `json:"name"`
		Prompt *string            `json:"prompt"`
		Stage  *string            `json:"stage"`
		Mood   *string            `json:"mood"`
		Illust *string            `json:"illust"`
	} `json:"cards"`
}

func (j storyCardsJSON) entries() []entity.StoryCard {
	out := make([]entity.StoryCard, 0, len(j.Cards))
	for _, raw := range j.Cards {
		if raw == nil {
			continue
		}
		id := "card"
		if raw.ID != nil && *raw.ID != "" {
			id = string(*raw.ID)
		}
		out = append(out, entity.StoryCard{
			ID:     id,
			Name:   orDefault(raw.Name, defaultCardName),
			Prompt: orDefault(raw.Prompt, ""),
			Stage:  orDefault(raw.Stage, ""),
			Mood:   orDefault(raw.Mood, ""),
			Image:  optional(raw.Illust),
		})
	}
	return out
}

type stylesJSON struct {
	Styles []*struct {
		Name      *string `json:"name"`
		Style     *string `json:"style"`
		Thumbnail *string `json:"thumbnail"`
	} `json:"illust_styles"`
}

// entries 去除首尾空白，丢弃名称或描述为空的风格
func (j stylesJSON) entries() []entity.IllustrationStyle {
	out := make([]entity.IllustrationStyle, 0, len(j.Styles))
	for _, raw := range j.Styles {
		if raw == nil {
			continue
		}
		style := entity.IllustrationStyle{
			Name:          strings.TrimSpace(orDefault(raw.Name, "")),
			Style:         strings.TrimSpace(orDefault(raw.Style, "")),
			ThumbnailPath: optional(raw.Thumbnail),
		}
		if style.Valid() {
			out = append(out, style)
		}
	}
	return out
}

func orDefault(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

func optional(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	s := *v
	return &s
}
