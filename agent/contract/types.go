package contract

import (
	statex "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/state"
)

type Role string

const (
	RoleExtractor Role = "extractor"
	RoleSpeaker   Role = "speaker"
)

// TurnResult is what one request/response cycle hands back to the caller.
// ToolPayload is non-nil only when a tool ran this turn.
type TurnResult struct {
	Reply       string             `json:"reply"`
	ToolPayload *statex.ToolResult `json:"tool_payload,omitempty"`
	Facts       *statex.FactRecord `json:"facts,omitempty"`
}
