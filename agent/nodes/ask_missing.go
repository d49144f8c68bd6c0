package turnnode

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/state"
)

// AskMissing requests exactly the unmet fields, phrased against the facts
// already known so nothing provided earlier is re-requested.
func AskMissing(ctx context.Context, in *GraphState, speaker contractx.Speaker, prompt string) (*GraphState, error) {
	if in == nil || in.Facts == nil {
		return nil, fmt.Errorf("%w: graph facts are nil", contractx.ErrValidation)
	}
	if len(in.Missing) == 0 {
		return nil, fmt.Errorf("%w: ask-missing entered with nothing missing", contractx.ErrValidation)
	}

	missing := make([]string, 0, len(in.Missing))
	for _, f := range in.Missing {
		missing = append(missing, string(f))
	}

	payload := map[string]any{
		"goal":    strings.ReplaceAll(string(in.Facts.GoalType), "_", " "),
		"known":   knownFacts(in.Facts),
		"missing": missing,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal ask-missing payload: %v", contractx.ErrValidation, err)
	}

	reply, err := speaker.Generate(ctx, prompt+"\n\n"+string(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: ask-missing reply: %v", contractx.ErrModelInvoke, err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, fmt.Errorf("%w: ask-missing reply is empty", contractx.ErrValidation)
	}

	in.Reply = reply
	in.Facts.AppendMessage(statex.RoleAssistant, reply)
	return in, nil
}

func knownFacts(rec *statex.FactRecord) map[string]any {
	known := map[string]any{}
	if rec.ProductModel != "" {
		known["appliance model"] = rec.ProductModel
	}
	if rec.PartNumber != "" {
		known["part number"] = rec.PartNumber
	}
	if rec.HasSymptoms() {
		known["symptoms"] = rec.Symptoms
	}
	if rec.EmailAddress != "" {
		known["email address"] = rec.EmailAddress
	}
	return known
}
