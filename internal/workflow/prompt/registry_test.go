package prompt

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wfmodel "fairybook-api/internal/workflow/model"
	wfnode "fairybook-api/internal/workflow/node"
)

func TestRegistryFormatsStoryPrompts(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	story := wfmodel.StoryContext{
		Age:             "6-8",
		Topic:           "friendship",
		StoryTypeName:   "Adventure",
		StoryTypePrompt: "a brave journey",
		Synopsis:        "A rabbit sails to the moon.",
	}

	for _, id := range []PromptID{PromptSynopsisV1, PromptProtagonistV1, PromptTitleV1} {
		msgs, err := r.Format(ctx, id, wfnode.StoryVars(story))
		require.NoError(t, err, id)
		require.Len(t, msgs, 2)
		assert.Equal(t, schema.System, msgs[0].Role)
		assert.Contains(t, msgs[1].Content, "Age group: 6-8")
	}

	msgs, err := r.Format(ctx, PromptTitleV1, wfnode.StoryVars(story))
	require.NoError(t, err)
	assert.Contains(t, msgs[1].Content, "{\n  \"title\": \"Title\"\n}")
	assert.Contains(t, msgs[1].Content, "Protagonist: (protagonist not provided)")
}

func TestRegistryFormatsStagePrompt(t *testing.T) {
	r := NewRegistry()
	story := wfmodel.StoryContext{Age: "6-8", StoryTypeName: "Adventure", Title: "Moon Boat"}
	msgs, err := r.Format(context.Background(), PromptStageV1, wfnode.StageVars(wfmodel.StageTextInput{
		Story:      story,
		StageName:  "development",
		StageIndex: 1,
		StageTotal: 5,
		CardName:   "Storm",
		CardPrompt: "a sudden storm",
		Previous:   []wfmodel.PreviousStage{{Label: "beginning", Paragraphs: []string{"They set sail."}}},
	}))
	require.NoError(t, err)
	content := msgs[1].Content
	assert.Contains(t, content, `stage 2, "development"`)
	assert.Contains(t, content, `"title": "Moon Boat"`)
	assert.Contains(t, content, "- beginning: They set sail.")
	assert.Contains(t, content, "(stage 2 of 5)")
}

func TestRegistryRendersImagePrompt(t *testing.T) {
	r := NewRegistry()
	text, err := r.Render(context.Background(), PromptImageV1, wfnode.ImageVars(wfmodel.ImagePromptInput{
		Kind:      wfmodel.ImageCover,
		Title:     "Moon Boat",
		StyleName: "Ink",
		StyleText: "bold lines",
	}))
	require.NoError(t, err)
	assert.Contains(t, text, `"in the style of Ink"`)
	assert.Contains(t, text, "without text, typography, signature, or watermark")
	assert.Contains(t, text, "- bold lines")
}

func TestRegistryUnknownPrompt(t *testing.T) {
	_, err := NewRegistry().ChatTemplate("missing")
	assert.Error(t, err)
}
