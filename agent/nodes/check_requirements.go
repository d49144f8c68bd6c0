package turnnode

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/contract"
	routerx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/router"
)

// CheckRequirements consults the requirement table for the merged goal.
// A goal outside the vocabulary should be unreachable given the
// extraction boundary; if stale state carries one anyway, the turn is
// steered to the failure reply instead of crashing, and the facts stay
// untouched.
func CheckRequirements(in *GraphState) (*GraphState, error) {
	if in == nil || in.Facts == nil {
		return nil, fmt.Errorf("%w: graph facts are nil", contractx.ErrValidation)
	}

	result, err := routerx.Check(in.Facts.GoalType, in.Facts)
	if err != nil {
		if errors.Is(err, contractx.ErrUnknownGoal) {
			log.Error().
				Err(err).
				Str("session_id", in.SessionID).
				Str("goal", string(in.Facts.GoalType)).
				Msg("goal outside vocabulary reached the router")
			in.Violation = err
			return in, nil
		}
		return nil, err
	}

	in.Missing = result.Missing
	return in, nil
}
