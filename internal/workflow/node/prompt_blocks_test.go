package node

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	wfmodel "fairybook-api/internal/workflow/model"
)

func TestBuildPreviousBlock(t *testing.T) {
	assert.Equal(t, missingPreviousBlock, BuildPreviousBlock(nil))

	long := strings.Repeat("가", 700)
	block := BuildPreviousBlock([]wfmodel.PreviousStage{
		{Label: "beginning", Card: "Lost Key", Paragraphs: []string{" one ", "", "two"}},
		{Paragraphs: []string{long}},
		{Label: "crisis"},
	})
	lines := strings.Split(block, "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "- beginning (Lost Key): one two", lines[0])
	assert.Equal(t, "- Stage 2: "+strings.Repeat("가", 600), lines[1])
	assert.Equal(t, "- crisis: "+missingStageSummary, lines[2])
}

func TestBuildTraitsBlock(t *testing.T) {
	assert.Equal(t, "- soft\n- pastel", BuildTraitsBlock("soft, pastel"))
	assert.Equal(t, "- "+defaultTraitLine, BuildTraitsBlock("  "))
}

func TestStageVars(t *testing.T) {
	vars := StageVars(wfmodel.StageTextInput{
		Story:      wfmodel.StoryContext{Title: `Moon "Boat"`},
		StageName:  "climax",
		StageIndex: 6,
		StageTotal: 5,
		CardName:   "Storm",
	})
	assert.Equal(t, 7, vars["stage_number"])
	assert.Equal(t, 7, vars["total_count"])
	assert.Equal(t, `"Moon \"Boat\""`, vars["safe_title"])
	assert.Equal(t, StageGuidance("climax"), vars["stage_focus"])
	assert.Equal(t, blankTopic, vars["topic"])
	assert.Equal(t, missingSynopsis, vars["synopsis"])
	assert.Equal(t, missingCardPrompt, vars["card_prompt"])

	vars = StageVars(wfmodel.StageTextInput{StageIndex: 0, StageTotal: 5})
	assert.Equal(t, "Stage 1", vars["stage_label"])
	assert.Equal(t, defaultStoryTitleJSON, vars["safe_title"])
	assert.Equal(t, defaultStageFocus, vars["stage_focus"])
}

func TestImageVars(t *testing.T) {
	vars := ImageVars(wfmodel.ImagePromptInput{
		Kind:         wfmodel.ImageCharacter,
		Paragraphs:   []string{strings.Repeat("a", 2000)},
		StyleName:    "Ink",
		StyleText:    "bold lines, high contrast",
		UseReference: false,
	})
	assert.Len(t, vars["summary"], 1500)
	assert.Contains(t, vars["character_sheet_block"], "character sheet")
	assert.Empty(t, vars["reference_block"])
	assert.Empty(t, vars["protagonist_block"])
	assert.Equal(t, "- bold lines\n- high contrast", vars["traits_block"])
	assert.Equal(t, "(Untitled)", vars["title"])

	vars = ImageVars(wfmodel.ImagePromptInput{Kind: wfmodel.ImageCover, UseReference: true, Protagonist: "A rabbit"})
	assert.Empty(t, vars["character_sheet_block"])
	assert.Contains(t, vars["reference_block"], "reference image")
	assert.Equal(t, "\n- Protagonist Description: A rabbit", vars["protagonist_block"])
}
