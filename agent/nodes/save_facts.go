package turnnode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/state"
)

func SaveFacts(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil || in.Facts == nil {
		return nil, fmt.Errorf("%w: graph facts are nil", contractx.ErrValidation)
	}

	in.Facts.Touch(in.Now)
	if err := store.Save(ctx, in.Facts); err != nil {
		return nil, err
	}
	return in, nil
}
