package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/state"
)

// LLMExtractor asks a schema-constrained model for the per-turn fact
// delta. Goal output is validated against the closed vocabulary and
// symptoms against the canonical label set, so downstream routing stays
// deterministic no matter what the model says.
type LLMExtractor struct {
	runner compose.Runnable[map[string]any, llmDelta]
}

type llmDelta struct {
	Model    *string  `json:"model"`
	Part     *string  `json:"part"`
	Symptoms []string `json:"symptoms"`
	Goal     *string  `json:"goal"`
	Email    *string  `json:"email"`
}

func NewLLMExtractor(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*LLMExtractor, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: extractor prompt", contractx.ErrPromptMissing)
	}
	runner, err := compileExtractorGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile extractor graph: %v", contractx.ErrModelInvoke, err)
	}
	return &LLMExtractor{runner: runner}, nil
}

// Extract never fails the turn: unparseable or schema-violating model
// output degrades to an all-absent delta so the turn proceeds with no new
// facts.
func (e *LLMExtractor) Extract(ctx context.Context, utterance string, current *statex.FactRecord) (statex.FactDelta, error) {
	payload := map[string]any{
		"message": utterance,
		"known":   knownFacts(current),
	}
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return statex.FactDelta{}, fmt.Errorf("%w: marshal extractor payload: %v", contractx.ErrValidation, err)
	}

	out, err := e.runner.Invoke(ctx, map[string]any{
		"input": string(inputBytes),
	})
	if err != nil {
		log.Warn().Err(err).Msg("extractor output unusable, proceeding with empty delta")
		return statex.FactDelta{}, nil
	}

	return e.toDelta(out, current), nil
}

func (e *LLMExtractor) toDelta(out llmDelta, current *statex.FactRecord) statex.FactDelta {
	var delta statex.FactDelta

	if v := deref(out.Model); v != "" && (current == nil || current.ProductModel == "") {
		delta.Model = v
	}
	if v := deref(out.Part); v != "" && (current == nil || current.PartNumber == "") {
		delta.Part = v
	}
	if v := deref(out.Email); v != "" && (current == nil || current.EmailAddress == "") {
		delta.Email = v
	}
	if v := deref(out.Goal); v != "" && (current == nil || current.GoalType == statex.GoalNone) {
		if goal, ok := statex.ParseGoal(v); ok {
			delta.Goal = goal
		} else {
			log.Warn().Str("goal", v).Msg("extractor returned goal outside vocabulary, dropping")
		}
	}

	for _, s := range out.Symptoms {
		if label, ok := canonicalSymptom(s); ok {
			delta.Symptoms = append(delta.Symptoms, label)
		}
	}
	return delta
}

// canonicalSymptom accepts a label only when it is (or maps onto) one of
// the canonical vocabulary entries. Fabricated labels are dropped.
func canonicalSymptom(raw string) (string, bool) {
	folded := statex.FoldLabel(raw)
	for _, p := range symptomPatterns {
		if statex.FoldLabel(p.label) == folded || p.re.MatchString(folded) {
			return p.label, true
		}
	}
	return "", false
}

func knownFacts(current *statex.FactRecord) map[string]any {
	if current == nil {
		return map[string]any{}
	}
	known := map[string]any{}
	if current.ProductModel != "" {
		known["model"] = current.ProductModel
	}
	if current.PartNumber != "" {
		known["part"] = current.PartNumber
	}
	if current.GoalType != statex.GoalNone {
		known["goal"] = string(current.GoalType)
	}
	if current.EmailAddress != "" {
		known["email"] = current.EmailAddress
	}
	return known
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
