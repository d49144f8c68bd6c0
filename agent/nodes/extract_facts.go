package turnnode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/state"
)

// ExtractFacts runs the extractor on the incoming utterance and merges the
// delta into the fact record. This is the only place field-preservation
// logic runs: the merge happens exactly once per turn, here. An extractor
// failure degrades to an empty delta so the turn still proceeds.
func ExtractFacts(ctx context.Context, in *GraphState, extractor contractx.Extractor) (*GraphState, error) {
	if in == nil || in.Facts == nil {
		return nil, fmt.Errorf("%w: graph facts are nil", contractx.ErrValidation)
	}

	delta, err := extractor.Extract(ctx, in.Text, in.Facts)
	if err != nil {
		log.Warn().
			Err(err).
			Str("session_id", in.SessionID).
			Msg("extraction failed, proceeding with empty delta")
		delta = statex.FactDelta{}
	}

	in.Delta = delta
	in.Facts.Merge(delta)
	in.Facts.AppendMessage(statex.RoleUser, in.Text)
	return in, nil
}
