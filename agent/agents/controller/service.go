package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/contract"
	nodex "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/nodes"
	promptx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/prompt"
	statex "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/state"
	toolx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/tool"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
)

// Controller runs one dialogue turn end to end. Turns for the same
// session are serialized with a per-session lock so concurrent requests
// cannot interleave merges; different sessions run fully in parallel.
type Controller struct {
	store      statex.Store
	extractor  contractx.Extractor
	speaker    contractx.Speaker
	dispatcher *toolx.Dispatcher
	prompts    promptx.PromptSet

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	sessionLocks sync.Map // session id -> *sync.Mutex

	now func() time.Time
}

func New(
	store statex.Store,
	extractor contractx.Extractor,
	speaker contractx.Speaker,
	dispatcher *toolx.Dispatcher,
	prompts promptx.PromptSet,
) (*Controller, error) {
	if store == nil {
		return nil, errors.New("fact store is required")
	}
	if extractor == nil {
		return nil, errors.New("extractor is required")
	}
	if speaker == nil {
		return nil, errors.New("speaker is required")
	}
	if dispatcher == nil {
		return nil, errors.New("tool dispatcher is required")
	}

	c := &Controller{
		store:      store,
		extractor:  extractor,
		speaker:    speaker,
		dispatcher: dispatcher,
		prompts:    prompts,
		now:        time.Now,
	}

	graphRunner, err := c.compileTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	c.graphRunner = graphRunner

	return c, nil
}

// HandleMessage is the turn API: one utterance in, one reply out, plus
// the tool payload when a tool ran this turn.
func (c *Controller) HandleMessage(ctx context.Context, sessionID string, text string) (contractx.TurnResult, error) {
	unlock := c.lockSession(sessionID)
	defer unlock()

	out, err := c.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		return contractx.TurnResult{}, err
	}

	return contractx.TurnResult{
		Reply:       out.Reply,
		ToolPayload: out.ToolResult,
		Facts:       out.Facts,
	}, nil
}

// lockSession serializes turns for one session. Lock entries live for
// the process lifetime; the map grows one mutex per session seen and is
// never evicted. A long-running server deployment that needs eviction
// must pair removal with a reference count so an in-flight turn never
// races a fresh mutex for the same session.
func (c *Controller) lockSession(sessionID string) func() {
	v, _ := c.sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
