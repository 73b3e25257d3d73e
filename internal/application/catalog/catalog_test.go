package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairybook-api/internal/domain/entity"
	apperrors "fairybook-api/pkg/errors"
)

// TestLoadEmbedded 测试内嵌目录
func TestLoadEmbedded(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	types, cards, styles := c.Size()
	assert.Greater(t, types, MaxTypeCount)
	assert.Greater(t, cards, MaxCardCount)
	assert.NotZero(t, styles)

	for _, card := range c.cards {
		assert.True(t, entity.StageName(card.Stage).IsKnown(), card.Name)
	}
}

// TestLoadOverrideDir 测试覆盖目录与字段清洗
func TestLoadOverrideDir(t *testing.T) {
	dir := t.TempDir()
	styles := `{"illust_styles":[
		{"name":"  Ink  ","style":" Bold ink lines ","thumbnail":null},
		{"name":"","style":"orphan"},
		{"name":"Blank","style":"   "},
		null
	]}`
	types := `{"story_types":[{"id":7,"prompt":"p"},{"id":"x","name":"Named"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, stylesFile), []byte(styles), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, storyTypesFile), []byte(types), 0o600))

	c, err := Load(dir)
	require.NoError(t, err)

	got := c.Styles()
	require.Len(t, got, 1)
	assert.Equal(t, "Ink", got[0].Name)
	assert.Equal(t, "Bold ink lines", got[0].Style)
	assert.Nil(t, got[0].ThumbnailPath)

	require.Len(t, c.types, 2)
	assert.Equal(t, entity.FlexibleID("7"), c.types[0].ID)
	assert.Equal(t, defaultTypeName, c.types[0].Name)
	assert.Equal(t, "Named", c.types[1].Name)

	// 卡片文件缺失时使用内嵌版本
	_, cards, _ := c.Size()
	assert.NotZero(t, cards)
}

// TestLoadMalformed 测试格式错误的覆盖文件
func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, storyCardsFile), []byte("{"), 0o600))
	_, err := Load(dir)
	assert.Error(t, err)
}

// TestStoryTypesSampling 测试数量默认值、上限与无放回
func TestStoryTypesSampling(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	cases := []struct {
		count int
		want  int
	}{
		{0, DefaultTypeCount},
		{-2, DefaultTypeCount},
		{3, 3},
		{50, MaxTypeCount},
	}
	for _, tc := range cases {
		got := c.StoryTypes(tc.count)
		assert.Len(t, got, tc.want)
		seen := map[entity.FlexibleID]bool{}
		for _, st := range got {
			assert.False(t, seen[st.ID], "duplicate %s", st.ID)
			seen[st.ID] = true
		}
	}
}

// TestStoryCardsStageFilter 测试阶段过滤与回退
func TestStoryCardsStageFilter(t *testing.T) {
	cards := []entity.StoryCard{
		{ID: "1", Stage: "beginning"},
		{ID: "2", Stage: "crisis"},
		{ID: "3", Stage: "crisis"},
		{ID: "4", Stage: "climax"},
		{ID: "5", Stage: "resolution"},
	}
	c := New(nil, cards, nil)

	got := c.StoryCards(0, "crisis")
	require.Len(t, got, 2)
	for _, card := range got {
		assert.Equal(t, "crisis", card.Stage)
	}

	got = c.StoryCards(0, "unknown-stage")
	assert.Len(t, got, DefaultCardCount)

	got = c.StoryCards(9, "")
	assert.Len(t, got, MaxCardCount)
	assert.Equal(t, "1", cards[0].ID)
}

// TestPickStyle 测试风格选择与空目录
func TestPickStyle(t *testing.T) {
	styles := []entity.IllustrationStyle{{Name: "A", Style: "a"}, {Name: "B", Style: "b"}}
	c := New(nil, nil, styles)
	c.intn = func(n int) int { return n - 1 }

	got, err := c.PickStyle()
	require.NoError(t, err)
	assert.Equal(t, "B", got.Name)

	_, err = New(nil, nil, nil).PickStyle()
	assert.True(t, apperrors.IsCode(err, apperrors.CodeServiceUnavailable))
}

// TestSampleDeterministic 测试固定随机源下的抽样结果
func TestSampleDeterministic(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	got := sample(items, 2, func(int) int { return 0 })
	assert.Equal(t, []int{1, 2}, got)

	got = sample(items, 2, func(n int) int { return n - 1 })
	assert.Equal(t, []int{5, 1}, got)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, items)
}
