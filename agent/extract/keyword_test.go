package extract

import (
	"context"
	"testing"
	"time"

	statex "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/state"
)

func TestKeywordExtractDiagnoseTurn(t *testing.T) {
	t.Parallel()

	e := NewKeywordExtractor()
	delta, err := e.Extract(context.Background(), "My dishwasher is leaking, can you help me fix it? Model is WDT780SAEM1", nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if delta.Goal != statex.GoalDiagnoseRepair {
		t.Fatalf("unexpected goal: %s", delta.Goal)
	}
	if delta.Model != "WDT780SAEM1" {
		t.Fatalf("unexpected model: %s", delta.Model)
	}
	if len(delta.Symptoms) != 1 || delta.Symptoms[0] != "Leaking" {
		t.Fatalf("unexpected symptoms: %#v", delta.Symptoms)
	}
}

func TestKeywordExtractInstallWithPart(t *testing.T) {
	t.Parallel()

	e := NewKeywordExtractor()
	delta, err := e.Extract(context.Background(), "How do I install PS11752778?", nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if delta.Goal != statex.GoalInstallInstruction {
		t.Fatalf("unexpected goal: %s", delta.Goal)
	}
	if delta.Part != "PS11752778" {
		t.Fatalf("unexpected part: %s", delta.Part)
	}
	if delta.Model != "" {
		t.Fatalf("part number leaked into model: %s", delta.Model)
	}
}

func TestKeywordExtractCompatibility(t *testing.T) {
	t.Parallel()

	e := NewKeywordExtractor()
	delta, err := e.Extract(context.Background(), "Is part PS3406971 compatible with my WDT780SAEM1?", nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if delta.Goal != statex.GoalCheckCompatibility {
		t.Fatalf("unexpected goal: %s", delta.Goal)
	}
	if delta.Part != "PS3406971" || delta.Model != "WDT780SAEM1" {
		t.Fatalf("unexpected identifiers: part=%s model=%s", delta.Part, delta.Model)
	}
}

func TestKeywordExtractEmailGoalWinsOverOthers(t *testing.T) {
	t.Parallel()

	e := NewKeywordExtractor()
	delta, err := e.Extract(context.Background(), "Please email the repair summary to bob@example.com", nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if delta.Goal != statex.GoalEmailSummary {
		t.Fatalf("unexpected goal: %s", delta.Goal)
	}
	if delta.Email != "bob@example.com" {
		t.Fatalf("unexpected email: %s", delta.Email)
	}
}

func TestKeywordExtractEmailLocalPartIsNotAnIdentifier(t *testing.T) {
	t.Parallel()

	e := NewKeywordExtractor()
	delta, err := e.Extract(context.Background(), "Please email the summary to bob123@example.com", nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if delta.Model != "" {
		t.Fatalf("email local part surfaced as model: %s", delta.Model)
	}
	if delta.Part != "" {
		t.Fatalf("email local part surfaced as part: %s", delta.Part)
	}
	if delta.Email != "bob123@example.com" {
		t.Fatalf("unexpected email: %s", delta.Email)
	}
	if delta.Goal != statex.GoalEmailSummary {
		t.Fatalf("unexpected goal: %s", delta.Goal)
	}
}

func TestKeywordExtractModelAlongsideEmail(t *testing.T) {
	t.Parallel()

	e := NewKeywordExtractor()
	delta, err := e.Extract(context.Background(), "Email it to ps777@example.com, my model is WDT780SAEM1", nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if delta.Model != "WDT780SAEM1" {
		t.Fatalf("unexpected model: %s", delta.Model)
	}
	if delta.Part != "" {
		t.Fatalf("email local part surfaced as part: %s", delta.Part)
	}
	if delta.Email != "ps777@example.com" {
		t.Fatalf("unexpected email: %s", delta.Email)
	}
}

func TestKeywordExtractNoSignal(t *testing.T) {
	t.Parallel()

	e := NewKeywordExtractor()
	delta, err := e.Extract(context.Background(), "hello there", nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !delta.Empty() {
		t.Fatalf("expected empty delta, got %#v", delta)
	}
}

func TestKeywordExtractLockedFields(t *testing.T) {
	t.Parallel()

	current := statex.NewFactRecord("s1", time.Now())
	current.Merge(statex.FactDelta{
		Model: "WDT780SAEM1",
		Part:  "PS11752778",
		Goal:  statex.GoalDiagnoseRepair,
		Email: "bob@example.com",
	})

	e := NewKeywordExtractor()
	delta, err := e.Extract(context.Background(), "Actually install PS99999999 on my ABC123 and email alice@example.com, it is leaking", current)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if delta.Goal != statex.GoalNone {
		t.Fatalf("goal re-extracted while locked: %s", delta.Goal)
	}
	if delta.Model != "" || delta.Part != "" || delta.Email != "" {
		t.Fatalf("locked fields re-extracted: %#v", delta)
	}
	// Symptoms keep accumulating even when everything else is locked.
	if len(delta.Symptoms) != 1 || delta.Symptoms[0] != "Leaking" {
		t.Fatalf("unexpected symptoms: %#v", delta.Symptoms)
	}
}

func TestKeywordExtractCurlyApostrophe(t *testing.T) {
	t.Parallel()

	e := NewKeywordExtractor()
	delta, err := e.Extract(context.Background(), "It won’t start at all", nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(delta.Symptoms) != 1 || delta.Symptoms[0] != "Won't start" {
		t.Fatalf("unexpected symptoms: %#v", delta.Symptoms)
	}
}

func TestKeywordExtractMultipleSymptoms(t *testing.T) {
	t.Parallel()

	e := NewKeywordExtractor()
	delta, err := e.Extract(context.Background(), "it is loud and the water leaks everywhere", nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(delta.Symptoms) != 2 {
		t.Fatalf("unexpected symptoms: %#v", delta.Symptoms)
	}
	if delta.Symptoms[0] != "Leaking" || delta.Symptoms[1] != "Noisy" {
		t.Fatalf("unexpected symptom labels: %#v", delta.Symptoms)
	}
}
