package state

import (
	"testing"
	"time"
)

func TestMergeFillsEmptyFields(t *testing.T) {
	t.Parallel()

	rec := NewFactRecord("s1", time.Now())
	rec.Merge(FactDelta{
		Model:    "wdt780saem1",
		Part:     "ps11752778",
		Goal:     GoalDiagnoseRepair,
		Email:    " user@example.com ",
		Symptoms: []string{"Leaking"},
	})

	if rec.ProductModel != "WDT780SAEM1" {
		t.Fatalf("unexpected model: %s", rec.ProductModel)
	}
	if rec.PartNumber != "PS11752778" {
		t.Fatalf("unexpected part: %s", rec.PartNumber)
	}
	if rec.GoalType != GoalDiagnoseRepair {
		t.Fatalf("unexpected goal: %s", rec.GoalType)
	}
	if rec.EmailAddress != "user@example.com" {
		t.Fatalf("unexpected email: %s", rec.EmailAddress)
	}
	if len(rec.Symptoms) != 1 || rec.Symptoms[0] != "Leaking" {
		t.Fatalf("unexpected symptoms: %#v", rec.Symptoms)
	}
}

func TestMergeEmptyDeltaIsNoOp(t *testing.T) {
	t.Parallel()

	rec := NewFactRecord("s1", time.Now())
	rec.Merge(FactDelta{Model: "WDT780SAEM1", Goal: GoalInstallInstruction})

	rec.Merge(FactDelta{})

	if rec.ProductModel != "WDT780SAEM1" {
		t.Fatalf("model lost on empty merge: %s", rec.ProductModel)
	}
	if rec.GoalType != GoalInstallInstruction {
		t.Fatalf("goal lost on empty merge: %s", rec.GoalType)
	}
}

func TestMergeReplacesScalarsOnlyWithEvidence(t *testing.T) {
	t.Parallel()

	rec := NewFactRecord("s1", time.Now())
	rec.Merge(FactDelta{Model: "WDT780SAEM1", Part: "PS11752778"})

	// New evidence replaces.
	rec.Merge(FactDelta{Model: "WRF535SWHZ"})
	if rec.ProductModel != "WRF535SWHZ" {
		t.Fatalf("model not replaced: %s", rec.ProductModel)
	}
	// Absence of evidence keeps the old value.
	if rec.PartNumber != "PS11752778" {
		t.Fatalf("part erased without evidence: %s", rec.PartNumber)
	}
}

func TestMergeIgnoresUnknownGoal(t *testing.T) {
	t.Parallel()

	rec := NewFactRecord("s1", time.Now())
	rec.Merge(FactDelta{Goal: GoalEmailSummary})
	rec.Merge(FactDelta{Goal: GoalType("order_pizza")})

	if rec.GoalType != GoalEmailSummary {
		t.Fatalf("goal overwritten by unknown value: %s", rec.GoalType)
	}
}

func TestMergeSymptomsUnionDedupe(t *testing.T) {
	t.Parallel()

	rec := NewFactRecord("s1", time.Now())
	rec.Merge(FactDelta{Symptoms: []string{"Won't start", "Leaking"}})
	rec.Merge(FactDelta{Symptoms: []string{"won’t start", "LEAKING", "Noisy"}})

	want := []string{"Won't start", "Leaking", "Noisy"}
	if len(rec.Symptoms) != len(want) {
		t.Fatalf("unexpected symptom count: %#v", rec.Symptoms)
	}
	for i, s := range want {
		if rec.Symptoms[i] != s {
			t.Fatalf("symptom %d: got %q want %q", i, rec.Symptoms[i], s)
		}
	}
}

func TestClearGoalOnlyResetsGoal(t *testing.T) {
	t.Parallel()

	rec := NewFactRecord("s1", time.Now())
	rec.Merge(FactDelta{
		Model:    "WDT780SAEM1",
		Goal:     GoalDiagnoseRepair,
		Symptoms: []string{"Leaking"},
	})

	rec.ClearGoal()

	if rec.GoalType != GoalNone {
		t.Fatalf("goal not cleared: %s", rec.GoalType)
	}
	if rec.ProductModel != "WDT780SAEM1" || len(rec.Symptoms) != 1 {
		t.Fatal("clear goal touched other facts")
	}
}

func TestParseGoal(t *testing.T) {
	t.Parallel()

	if g, ok := ParseGoal("  Diagnose_Repair "); !ok || g != GoalDiagnoseRepair {
		t.Fatalf("parse failed: %q %v", g, ok)
	}
	if _, ok := ParseGoal("make_coffee"); ok {
		t.Fatal("accepted out-of-vocabulary goal")
	}
	if _, ok := ParseGoal(""); ok {
		t.Fatal("accepted empty goal")
	}
}

func TestFoldLabel(t *testing.T) {
	t.Parallel()

	if FoldLabel("  Won’t Start ") != "won't start" {
		t.Fatalf("unexpected fold: %q", FoldLabel("  Won’t Start "))
	}
	if FoldLabel("Won't start") != FoldLabel("won‘t START") {
		t.Fatal("apostrophe variants did not fold equal")
	}
}

func TestTranscript(t *testing.T) {
	t.Parallel()

	rec := NewFactRecord("s1", time.Now())
	rec.AppendMessage(RoleUser, "my dishwasher is leaking")
	rec.AppendMessage(RoleAssistant, "What model is it?")

	got := rec.Transcript()
	want := "You: my dishwasher is leaking\n\nAgent: What model is it?"
	if got != want {
		t.Fatalf("unexpected transcript:\n%s", got)
	}
}

func TestFactDeltaEmpty(t *testing.T) {
	t.Parallel()

	if !(FactDelta{}).Empty() {
		t.Fatal("zero delta should be empty")
	}
	if (FactDelta{Email: "a@b.c"}).Empty() {
		t.Fatal("delta with email should not be empty")
	}
}
