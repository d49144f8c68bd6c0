package turnnode

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/state"
	toolx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/tool"
)

const toolFailureReply = "Sorry - I ran into a problem completing that request. Everything you've told me so far is saved, so please try again."

// ExecuteTool dispatches the one tool mapped to the goal and records the
// outcome. On failure the facts merged earlier this turn stay intact and
// the user gets a safe summary, never the raw error. The goal is cleared
// on success and failure alike so the next turn can state a new one; this
// is the documented exception to the monotonic merge.
func ExecuteTool(ctx context.Context, in *GraphState, dispatcher *toolx.Dispatcher) (*GraphState, error) {
	if in == nil || in.Facts == nil {
		return nil, fmt.Errorf("%w: graph facts are nil", contractx.ErrValidation)
	}

	outcome, err := dispatcher.Execute(ctx, in.Facts)
	if err != nil {
		log.Error().
			Err(err).
			Str("session_id", in.SessionID).
			Str("goal", string(in.Facts.GoalType)).
			Str("model", in.Facts.ProductModel).
			Str("part", in.Facts.PartNumber).
			Msg("tool execution failed")

		in.Reply = toolFailureReply
		in.Facts.AppendMessage(statex.RoleAssistant, in.Reply)
		in.Facts.ClearGoal()
		return in, nil
	}

	rawResult, err := marshalForTranscript(outcome.Result)
	if err != nil {
		rawResult = outcome.Result.ToolName
	}
	in.Facts.AppendMessage(statex.RoleTool, rawResult)
	in.Facts.AppendMessage(statex.RoleAssistant, outcome.Reply)

	result := outcome.Result
	in.Facts.LastToolResult = &result
	in.ToolResult = &result
	in.Reply = outcome.Reply
	in.Facts.ClearGoal()
	return in, nil
}

func marshalForTranscript(result statex.ToolResult) (string, error) {
	raw, err := json.Marshal(result.Data)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
