package turnnode

import (
	"errors"
	"strings"
	"time"

	routerx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/router"
	statex "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/state"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	Reply      string
	ToolResult *statex.ToolResult
	Facts      *statex.FactRecord
}

// GraphState is threaded through every node of one turn. Facts is the
// merged record that eventually persists; Missing and Violation drive the
// terminal-action branches.
type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	Facts *statex.FactRecord
	Delta statex.FactDelta

	Missing   []routerx.Field
	Violation error

	Reply      string
	ToolResult *statex.ToolResult
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Now:       nowFn().UTC(),
	}, nil
}
