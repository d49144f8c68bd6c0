// Package router decides which facts are still missing for the user's
// current goal. It owns the only copy of the requirement table; no other
// component re-implements this check.
package router

import (
	"fmt"

	contractx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/state"
)

// Field names a required fact in user-facing terms.
type Field string

const (
	FieldModel    Field = "appliance model"
	FieldPart     Field = "part number"
	FieldSymptoms Field = "symptoms"
	FieldEmail    Field = "email address"
)

type requirement struct {
	model    bool
	part     bool
	symptoms bool
	email    bool
}

var requirements = map[statex.GoalType]requirement{
	statex.GoalInstallInstruction: {model: true, part: true},
	statex.GoalCheckCompatibility: {model: true, part: true},
	statex.GoalDiagnoseRepair:     {model: true, symptoms: true},
	statex.GoalEmailSummary:       {email: true},
}

type Result struct {
	Missing []Field
}

func (r Result) Satisfied() bool {
	return len(r.Missing) == 0
}

// Check is pure: given a goal and the current facts it returns exactly the
// unmet requirements, in table column order (model, part, symptoms,
// email). A goal outside the enum is a contract violation of the caller;
// goal-less turns must be routed to ask-goal before this runs.
func Check(goal statex.GoalType, facts *statex.FactRecord) (Result, error) {
	needed, ok := requirements[goal]
	if !ok {
		return Result{}, fmt.Errorf("%w: goal=%q", contractx.ErrUnknownGoal, goal)
	}

	var missing []Field
	if needed.model && facts.ProductModel == "" {
		missing = append(missing, FieldModel)
	}
	if needed.part && facts.PartNumber == "" {
		missing = append(missing, FieldPart)
	}
	if needed.symptoms && !facts.HasSymptoms() {
		missing = append(missing, FieldSymptoms)
	}
	if needed.email && facts.EmailAddress == "" {
		missing = append(missing, FieldEmail)
	}

	return Result{Missing: missing}, nil
}
