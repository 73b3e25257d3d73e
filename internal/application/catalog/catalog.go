// Package catalog 提供故事类型、故事卡片与插画风格三份静态目录
package catalog

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"strings"

	"fairybook-api/internal/domain/entity"
	apperrors "fairybook-api/pkg/errors"
)

//go:embed data/*.json
var embedded embed.FS

const (
	DefaultTypeCount = 8
	MaxTypeCount     = 8
	DefaultCardCount = 4
	MaxCardCount     = 4

	storyTypesFile = "story_types.json"
	storyCardsFile = "story_cards.json"
	stylesFile     = "illust_styles.json"

	defaultTypeName = "Story type"
	defaultCardName = "Story card"
)

// Catalog 只读目录，加载后不再修改，可并发使用
type Catalog struct {
	types  []entity.StoryType
	cards  []entity.StoryCard
	styles []entity.IllustrationStyle
	intn   func(n int) int
}

// New 直接由条目构造目录
func New(types []entity.StoryType, cards []entity.StoryCard, styles []entity.IllustrationStyle) *Catalog {
	return &Catalog{types: types, cards: cards, styles: styles, intn: rand.IntN}
}

// Load 读取目录数据；dir 为空时使用内嵌数据，dir 中缺失的文件也退回内嵌版本
func Load(dir string) (*Catalog, error) {
	sources := []fs.FS{}
	if strings.TrimSpace(dir) != "" {
		sources = append(sources, os.DirFS(dir))
	}
	data, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	sources = append(sources, data)

	var rawTypes storyTypesJSON
	if err := readFirst(sources, storyTypesFile, &rawTypes); err != nil {
		return nil, err
	}
	var rawCards storyCardsJSON
	if err := readFirst(sources, storyCardsFile, &rawCards); err != nil {
		return nil, err
	}
	var rawStyles stylesJSON
	if err := readFirst(sources, stylesFile, &rawStyles); err != nil {
		return nil, err
	}

	return New(rawTypes.entries(), rawCards.entries(), rawStyles.entries()), nil
}

func readFirst(sources []fs.FS, name string, out any) error {
	for _, src := range sources {
		b, err := fs.ReadFile(src, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read catalog %s: %w", name, err)
		}
		if err := json.Unmarshal(b, out); err != nil {
			return fmt.Errorf("parse catalog %s: %w", name, err)
		}
		return nil
	}
	return fmt.Errorf("catalog %s not found", name)
}

// StoryTypes 无放回抽取故事类型，count 非正时取默认值，且不超过上限
func (c *Catalog) StoryTypes(count int) []entity.StoryType {
	return sample(c.types, clampCount(count, DefaultTypeCount, MaxTypeCount), c.intn)
}

// StoryCards 按阶段过滤后抽取卡片；过滤结果为空时退回全部卡片
func (c *Catalog) StoryCards(count int, stage string) []entity.StoryCard {
	pool := c.cards
	if stage = strings.TrimSpace(stage); stage != "" {
		filtered := make([]entity.StoryCard, 0, len(c.cards))
		for _, card := range c.cards {
			if card.Stage == stage {
				filtered = append(filtered, card)
			}
		}
		if len(filtered) > 0 {
			pool = filtered
		}
	}
	return sample(pool, clampCount(count, DefaultCardCount, MaxCardCount), c.intn)
}

// Styles 全部可用风格
func (c *Catalog) Styles() []entity.IllustrationStyle {
	out := make([]entity.IllustrationStyle, len(c.styles))
	copy(out, c.styles)
	return out
}

// PickStyle 均匀随机选择一个风格，不记忆之前的选择
func (c *Catalog) PickStyle() (entity.IllustrationStyle, error) {
	if len(c.styles) == 0 {
		return entity.IllustrationStyle{}, apperrors.New(apperrors.CodeServiceUnavailable, "no illustration styles are available")
	}
	return c.styles[c.intn(len(c.styles))], nil
}

// Size 各目录条目数
func (c *Catalog) Size() (types, cards, styles int) {
	return len(c.types), len(c.cards), len(c.styles)
}

func clampCount(count, def, limit int) int {
	if count <= 0 {
		count = def
	}
	return min(count, limit)
}

// sample 部分 Fisher-Yates 洗牌，不修改原切片
func sample[T any](items []T, size int, intn func(int) int) []T {
	pool := make([]T, len(items))
	copy(pool, items)
	if len(pool) <= size {
		return pool
	}
	for i := 0; i < size; i++ {
		j := i + intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:size]
}
