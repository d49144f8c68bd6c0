package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/extractor.txt
	extractorRaw string

	//go:embed template/ask_goal.txt
	askGoalRaw string

	//go:embed template/ask_missing.txt
	askMissingRaw string

	//go:embed template/tool_result.txt
	toolResultRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Extractor  string
	AskGoal    string
	AskMissing string
	ToolResult string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// Safe to call concurrently; the embed is compile-time and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Extractor:  strings.TrimSpace(extractorRaw),
		AskGoal:    strings.TrimSpace(askGoalRaw),
		AskMissing: strings.TrimSpace(askMissingRaw),
		ToolResult: strings.TrimSpace(toolResultRaw),
	}
}
