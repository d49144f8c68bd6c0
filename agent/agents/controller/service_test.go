package controller

import (
	"context"
	"errors"
	"testing"

	catalogx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/catalog"
	extractx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/extract"
	promptx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/prompt"
	statex "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/state"
	toolx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/tool"
)

const testCatalogJSON = `{
  "WDT780SAEM1": {
    "parts": {
      "PS11752778": {
        "name": "Door Latch Assembly",
        "price": 45.99,
        "solves_symptoms": ["Won't start", "Door issue"],
        "repair_video_url": "https://videos.example/latch"
      },
      "PS11746240": {
        "name": "Drain Hose",
        "price": 28.50,
        "solves_symptoms": ["Leaking", "Not draining"]
      }
    }
  }
}`

type fakeSpeaker struct {
	reply string
}

func (f *fakeSpeaker) Generate(_ context.Context, _ string) (string, error) {
	return f.reply, nil
}

type fakeMailer struct {
	to string
}

func (f *fakeMailer) Send(_ context.Context, to, _, _ string) error {
	f.to = to
	return nil
}

func newTestController(t *testing.T, store statex.Store, mailer *fakeMailer) *Controller {
	t.Helper()

	cat, err := catalogx.FromJSON([]byte(testCatalogJSON))
	if err != nil {
		t.Fatalf("catalog error = %v", err)
	}

	speaker := &fakeSpeaker{reply: "canned reply"}
	prompts := promptx.LoadPromptSet()

	var dispatcher *toolx.Dispatcher
	if mailer != nil {
		dispatcher, err = toolx.NewDispatcher(cat, mailer, speaker, prompts.ToolResult)
	} else {
		dispatcher, err = toolx.NewDispatcher(cat, nil, speaker, prompts.ToolResult)
	}
	if err != nil {
		t.Fatalf("NewDispatcher() error = %v", err)
	}

	ctrl, err := New(store, extractx.NewKeywordExtractor(), speaker, dispatcher, prompts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return ctrl
}

func TestHandleMessageDiagnoseSingleTurn(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	ctrl := newTestController(t, store, nil)
	ctx := context.Background()

	res, err := ctrl.HandleMessage(ctx, "s1", "My dishwasher is leaking, help me fix it. Model is WDT780SAEM1")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	if res.ToolPayload == nil {
		t.Fatal("expected a tool to run")
	}
	if res.ToolPayload.ToolName != toolx.ToolDiagnoseRepair {
		t.Fatalf("unexpected tool: %s", res.ToolPayload.ToolName)
	}
	diag, ok := res.ToolPayload.Data.(catalogx.Diagnosis)
	if !ok {
		t.Fatalf("unexpected payload type: %T", res.ToolPayload.Data)
	}
	if len(diag.Parts) != 1 || diag.Parts[0].PartNumber != "PS11746240" {
		t.Fatalf("unexpected suggestions: %#v", diag.Parts)
	}
	if res.Reply == "" {
		t.Fatal("expected a non-empty reply")
	}

	// After a tool runs the goal is cleared but every other fact persists.
	saved, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if saved.GoalType != statex.GoalNone {
		t.Fatalf("goal not cleared after tool: %s", saved.GoalType)
	}
	if saved.ProductModel != "WDT780SAEM1" {
		t.Fatalf("model lost: %s", saved.ProductModel)
	}
	if len(saved.Symptoms) != 1 || saved.Symptoms[0] != "Leaking" {
		t.Fatalf("symptoms lost: %#v", saved.Symptoms)
	}
	if saved.LastToolResult == nil || saved.LastToolResult.ToolName != toolx.ToolDiagnoseRepair {
		t.Fatal("last tool result not recorded")
	}
}

func TestHandleMessageInstallTwoTurns(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	ctrl := newTestController(t, store, nil)
	ctx := context.Background()

	// Turn 1: goal and part, no model yet -> the agent asks, no tool runs.
	res, err := ctrl.HandleMessage(ctx, "s2", "How do I install PS11752778?")
	if err != nil {
		t.Fatalf("HandleMessage() turn 1 error = %v", err)
	}
	if res.ToolPayload != nil {
		t.Fatalf("tool ran with missing requirements: %#v", res.ToolPayload)
	}

	saved, err := store.Load(ctx, "s2")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if saved.GoalType != statex.GoalInstallInstruction {
		t.Fatalf("goal not held across turns: %s", saved.GoalType)
	}
	if saved.PartNumber != "PS11752778" {
		t.Fatalf("part not held: %s", saved.PartNumber)
	}

	// Turn 2: the model arrives, requirements complete, the tool runs.
	res, err = ctrl.HandleMessage(ctx, "s2", "The model is WDT780SAEM1")
	if err != nil {
		t.Fatalf("HandleMessage() turn 2 error = %v", err)
	}
	if res.ToolPayload == nil {
		t.Fatal("expected installation tool to run")
	}
	if res.ToolPayload.ToolName != toolx.ToolGetInstallation {
		t.Fatalf("unexpected tool: %s", res.ToolPayload.ToolName)
	}
	info, ok := res.ToolPayload.Data.(catalogx.InstallInfo)
	if !ok {
		t.Fatalf("unexpected payload type: %T", res.ToolPayload.Data)
	}
	if info.Outcome != catalogx.InstallVideo {
		t.Fatalf("unexpected install outcome: %s", info.Outcome)
	}
}

func TestHandleMessageNoGoalAsks(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	ctrl := newTestController(t, store, nil)

	res, err := ctrl.HandleMessage(context.Background(), "s3", "hello there")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if res.ToolPayload != nil {
		t.Fatal("no tool may run without a goal")
	}
	if res.Reply != "canned reply" {
		t.Fatalf("unexpected reply: %s", res.Reply)
	}
}

func TestHandleMessageEmailFlow(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	mailer := &fakeMailer{}
	ctrl := newTestController(t, store, mailer)
	ctx := context.Background()

	res, err := ctrl.HandleMessage(ctx, "s4", "Please email this conversation to bob@example.com")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if res.ToolPayload == nil || res.ToolPayload.ToolName != toolx.ToolEmailSummary {
		t.Fatalf("expected email tool, got %#v", res.ToolPayload)
	}
	if mailer.to != "bob@example.com" {
		t.Fatalf("unexpected recipient: %s", mailer.to)
	}
}

func TestHandleMessageToolFailureKeepsFacts(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	// No mailer configured, so the email tool fails at execution time.
	ctrl := newTestController(t, store, nil)
	ctx := context.Background()

	res, err := ctrl.HandleMessage(ctx, "s5", "Please email this conversation to bob@example.com")
	if err != nil {
		t.Fatalf("HandleMessage() must not surface tool failure, got %v", err)
	}
	if res.ToolPayload != nil {
		t.Fatal("failed tool must not produce a payload")
	}
	if res.Reply == "" {
		t.Fatal("expected a safe failure reply")
	}

	saved, err := store.Load(ctx, "s5")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if saved.EmailAddress != "bob@example.com" {
		t.Fatalf("facts lost on tool failure: %s", saved.EmailAddress)
	}
	if saved.GoalType != statex.GoalNone {
		t.Fatalf("goal must clear after a failed execution too: %s", saved.GoalType)
	}
}

func TestHandleMessageRejectsEmptyInput(t *testing.T) {
	t.Parallel()

	ctrl := newTestController(t, statex.NewMemoryStore(), nil)

	if _, err := ctrl.HandleMessage(context.Background(), "s6", "   "); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
	if _, err := ctrl.HandleMessage(context.Background(), "", "hi"); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}
