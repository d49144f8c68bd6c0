package contract

import (
	"context"

	statex "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/state"
)

// Extractor turns one user utterance into a set of fact updates.
// Fields it has no evidence for in the current utterance stay absent;
// re-discovering already-known facts from history is not its job.
type Extractor interface {
	Extract(ctx context.Context, utterance string, current *statex.FactRecord) (statex.FactDelta, error)
}

// Speaker is the NL generation capability used for ask-goal, ask-missing,
// and tool-result narration.
type Speaker interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Mailer delivers the conversation summary. Transport, credentials and
// HTML formatting are its concern; content originates from the core.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
