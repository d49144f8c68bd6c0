package turnnode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/state"
)

// AskGoal produces a reply enumerating the supported goal categories.
// No tool runs on this path.
func AskGoal(ctx context.Context, in *GraphState, speaker contractx.Speaker, prompt string) (*GraphState, error) {
	if in == nil || in.Facts == nil {
		return nil, fmt.Errorf("%w: graph facts are nil", contractx.ErrValidation)
	}

	reply, err := speaker.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: ask-goal reply: %v", contractx.ErrModelInvoke, err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, fmt.Errorf("%w: ask-goal reply is empty", contractx.ErrValidation)
	}

	in.Reply = reply
	in.Facts.AppendMessage(statex.RoleAssistant, reply)
	return in, nil
}
