package turnnode

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/contract"
)

const defaultReply = "I'm here to help. Tell me what appliance you need help with."

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		reply = defaultReply
	}
	return GraphOutput{
		Reply:      reply,
		ToolResult: in.ToolResult,
		Facts:      in.Facts,
	}, nil
}
