package turnnode

import (
	"fmt"

	contractx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/state"
)

const contractFailureReply = "Sorry - something went wrong on our side handling that request. Could you tell me again what you'd like to do?"

// ReportFailure is the terminal for internal contract violations. The
// reply is a fixed safe summary, never the raw error text, and the facts
// carry on unchanged.
func ReportFailure(in *GraphState) (*GraphState, error) {
	if in == nil || in.Facts == nil {
		return nil, fmt.Errorf("%w: graph facts are nil", contractx.ErrValidation)
	}

	in.Reply = contractFailureReply
	in.Facts.AppendMessage(statex.RoleAssistant, in.Reply)
	return in, nil
}
