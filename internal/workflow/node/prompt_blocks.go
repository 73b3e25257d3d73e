package node

import (
	"encoding/json"
	"fmt"
	"strings"

	wfmodel "fairybook-api/internal/workflow/model"
)

const (
	previousSummaryRunes = 600
	imageSummaryRunes    = 1500

	blankTopic            = "(blank)"
	missingSynopsis       = "(synopsis not provided)"
	missingProtagonist    = "(protagonist not provided)"
	missingCardPrompt     = "(no description)"
	missingPreviousBlock  = "- No stages have been written yet."
	missingStageSummary   = "(no short summary)"
	defaultStageFocus     = "Make the dramatic role of this stage clear while developing events and emotions."
	defaultTraitLine      = "Warm, friendly picture book aesthetic"
	defaultStoryTitleJSON = `"Fairy Tale"`
)

var stageGuidance = map[string]string{
	"beginning":   "Show the protagonist, the setting and the spark that starts the journey, planting the seed of adventure with warmth and curiosity.",
	"development": "Grow the main conflict and events, revealing the characters' choices. Alternate tension with warm moments to breathe.",
	"crisis":      "Depict the biggest crisis and emotional swell. Leave room for trust or wit to shine through danger and fear.",
	"climax":      "Show the decisive action and dramatic turn, letting emotions burst in a grand or breathtaking atmosphere.",
	"resolution":  "Wrap up the aftermath and leave a lingering afterglow. Both bright and bittersweet endings are possible, with space for further imagination.",
}

// StageGuidance 阶段写作重点，未知阶段返回通用说明
func StageGuidance(stage string) string {
	if g, ok := stageGuidance[strings.ToLower(strings.TrimSpace(stage))]; ok {
		return g
	}
	return defaultStageFocus
}

// TopicOrBlank 空主题占位
func TopicOrBlank(topic string) string {
	return FirstNonEmpty(topic, blankTopic)
}

// BuildPreviousBlock 前序阶段摘要，每段合并后截断到 600 字符
func BuildPreviousBlock(previous []wfmodel.PreviousStage) string {
	if len(previous) == 0 {
		return missingPreviousBlock
	}
	lines := make([]string, 0, len(previous))
	for i, p := range previous {
		label := FirstNonEmpty(p.Label, fmt.Sprintf("Stage %d", i+1))
		if card := strings.TrimSpace(p.Card); card != "" {
			label = fmt.Sprintf("%s (%s)", label, card)
		}
		merged := TruncateByRunes(strings.Join(NonEmptyLines(p.Paragraphs), " "), previousSummaryRunes)
		lines = append(lines, fmt.Sprintf("- %s: %s", label, FirstNonEmpty(merged, missingStageSummary)))
	}
	return strings.Join(lines, "\n")
}

// BuildTraitsBlock 风格描述按逗号拆成列表
func BuildTraitsBlock(styleText string) string {
	traits := SplitTraits(styleText, defaultTraitLine)
	lines := make([]string, 0, len(traits))
	for _, t := range traits {
		lines = append(lines, "- "+t)
	}
	return strings.Join(lines, "\n")
}

// StoryVars 梗概、主角、标题共用的模板变量
func StoryVars(s wfmodel.StoryContext) map[string]any {
	return map[string]any{
		"age":               strings.TrimSpace(s.Age),
		"topic":             TopicOrBlank(s.Topic),
		"story_type_name":   strings.TrimSpace(s.StoryTypeName),
		"story_type_prompt": strings.TrimSpace(s.StoryTypePrompt),
		"synopsis":          FirstNonEmpty(s.Synopsis, missingSynopsis),
		"protagonist":       FirstNonEmpty(s.Protagonist, missingProtagonist),
	}
}

// StageVars 阶段正文模板变量
func StageVars(in wfmodel.StageTextInput) map[string]any {
	stageNumber := in.StageIndex + 1
	total := max(in.StageTotal, stageNumber)
	label := FirstNonEmpty(in.StageName, fmt.Sprintf("Stage %d", stageNumber))

	title := strings.TrimSpace(in.Story.Title)
	safeTitle := defaultStoryTitleJSON
	if title != "" {
		b, _ := json.Marshal(title)
		safeTitle = string(b)
	}

	vars := StoryVars(in.Story)
	vars["title"] = title
	vars["safe_title"] = safeTitle
	vars["stage_number"] = stageNumber
	vars["total_count"] = total
	vars["stage_label"] = label
	vars["stage_focus"] = StageGuidance(in.StageName)
	vars["previous_block"] = BuildPreviousBlock(in.Previous)
	vars["card_name"] = strings.TrimSpace(in.CardName)
	vars["card_prompt"] = FirstNonEmpty(in.CardPrompt, missingCardPrompt)
	return vars
}

// ImageVars 插画提示词模板变量
func ImageVars(in wfmodel.ImagePromptInput) map[string]any {
	summary := TruncateByRunes(strings.Join(NonEmptyLines(in.Paragraphs), " "), imageSummaryRunes)

	protagonistBlock := ""
	if p := strings.TrimSpace(in.Protagonist); p != "" {
		protagonistBlock = "\n- Protagonist Description: " + p
	}

	characterSheet := ""
	if in.Kind == wfmodel.ImageCharacter {
		characterSheet = "\n- **This is a character sheet.** The image must feature the main character only." +
			"\n- The background must be a solid, plain, clean white background." +
			"\n- The character should be in a neutral, full-body pose." +
			"\n- Do not include any shadows, text, or other elements. Just the character."
	}

	reference := ""
	if in.UseReference {
		reference = "\n- **The provided reference image depicts the story's protagonist. Center the illustration around this exact character.**" +
			"\n- **Crucially, the protagonist described below MUST strictly match the provided character reference image.** " +
			"Depict the character as shown in the reference image, adapting their pose, wardrobe, and features faithfully while placing them in the new scene described in the summary."
	}

	return map[string]any{
		"title":                 FirstNonEmpty(in.Title, "(Untitled)"),
		"age":                   strings.TrimSpace(in.Age),
		"topic":                 TopicOrBlank(in.Topic),
		"story_type_name":       strings.TrimSpace(in.StoryTypeName),
		"card_name":             FirstNonEmpty(in.CardName, "(Not selected)"),
		"stage_name":            FirstNonEmpty(in.StageName, "(Not specified)"),
		"summary":               summary,
		"protagonist_block":     protagonistBlock,
		"style_name":            strings.TrimSpace(in.StyleName),
		"style_text":            strings.TrimSpace(in.StyleText),
		"traits_block":          BuildTraitsBlock(in.StyleText),
		"character_sheet_block": characterSheet,
		"reference_block":       reference,
	}
}
