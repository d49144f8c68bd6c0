// Package tool maps a satisfied goal to exactly one catalog or email
// operation and narrates the structured result for the user.
package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	catalogx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/catalog"
	contractx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/state"
)

const (
	ToolCheckCompatibility = "check_compatibility"
	ToolDiagnoseRepair     = "diagnose_repair"
	ToolGetInstallation    = "get_installation_instructions"
	ToolEmailSummary       = "email_summary"

	emailSubject = "Your appliance parts conversation summary"
)

// Outcome is one executed tool call: the raw structured result preserved
// for UI consumers plus the rendered user-facing reply.
type Outcome struct {
	Result statex.ToolResult
	Reply  string
}

type Dispatcher struct {
	catalog    *catalogx.Catalog
	mailer     contractx.Mailer
	speaker    contractx.Speaker
	toolPrompt string
}

func NewDispatcher(catalog *catalogx.Catalog, mailer contractx.Mailer, speaker contractx.Speaker, toolPrompt string) (*Dispatcher, error) {
	if catalog == nil {
		return nil, fmt.Errorf("%w: catalog is required", contractx.ErrValidation)
	}
	if speaker == nil {
		return nil, fmt.Errorf("%w: speaker is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(toolPrompt) == "" {
		return nil, fmt.Errorf("%w: tool result prompt", contractx.ErrPromptMissing)
	}
	return &Dispatcher{
		catalog:    catalog,
		mailer:     mailer,
		speaker:    speaker,
		toolPrompt: toolPrompt,
	}, nil
}

// Execute runs the single tool mapped to the record's goal. Inputs come
// strictly from the fact record. An unmapped goal here is a programming
// contract violation (routing should have caught it) and surfaces as
// ErrUnknownGoal; capability failures surface as ErrToolExecution. The
// record itself is never mutated.
func (d *Dispatcher) Execute(ctx context.Context, rec *statex.FactRecord) (Outcome, error) {
	switch rec.GoalType {
	case statex.GoalCheckCompatibility:
		return d.checkCompatibility(ctx, rec)
	case statex.GoalDiagnoseRepair:
		return d.diagnose(ctx, rec)
	case statex.GoalInstallInstruction:
		return d.installation(ctx, rec)
	case statex.GoalEmailSummary:
		return d.emailSummary(ctx, rec)
	default:
		return Outcome{}, fmt.Errorf("%w: no tool mapped for goal=%q", contractx.ErrUnknownGoal, rec.GoalType)
	}
}

func (d *Dispatcher) checkCompatibility(ctx context.Context, rec *statex.FactRecord) (Outcome, error) {
	result := d.catalog.CheckCompatibility(rec.PartNumber, rec.ProductModel)

	seed := fmt.Sprintf("Part %s is NOT compatible with model %s. This part is for a different model.", result.PartNumber, result.Model)
	if result.Compatible {
		seed = fmt.Sprintf("Part %s IS compatible with model %s.", result.PartNumber, result.Model)
	}
	if !result.ModelKnown {
		log.Debug().Str("model", result.Model).Msg("compatibility check against unknown model")
	}

	return d.render(ctx, ToolCheckCompatibility, result, seed)
}

func (d *Dispatcher) diagnose(ctx context.Context, rec *statex.FactRecord) (Outcome, error) {
	result := d.catalog.Diagnose(rec.ProductModel, rec.Symptoms)

	var seed string
	switch result.Outcome {
	case catalogx.DiagnosisUnknownModel:
		seed = fmt.Sprintf("Model %s was not found in the catalog, so no diagnosis is possible. Ask the user to double-check the model number.", result.Model)
	case catalogx.DiagnosisNoMatch:
		seed = fmt.Sprintf("Model %s is known, but no parts match the symptoms: %s. Ask the user to describe the issue in more detail.",
			result.Model, strings.Join(result.Symptoms, ", "))
	default:
		lines := make([]string, 0, len(result.Parts))
		for _, p := range result.Parts {
			lines = append(lines, fmt.Sprintf("- %s (Part #%s) - $%.2f", p.Name, p.PartNumber, p.Price))
		}
		seed = fmt.Sprintf("Found %d part(s) that might fix: %s\n\n%s",
			len(result.Parts), strings.Join(result.Symptoms, ", "), strings.Join(lines, "\n"))
	}

	return d.render(ctx, ToolDiagnoseRepair, result, seed)
}

func (d *Dispatcher) installation(ctx context.Context, rec *statex.FactRecord) (Outcome, error) {
	result := d.catalog.InstallationInfo(rec.PartNumber, rec.ProductModel)

	var seed string
	switch result.Outcome {
	case catalogx.InstallNotFound:
		seed = fmt.Sprintf("No installation data found for %s on model %s.", result.PartNumber, result.Model)
	case catalogx.InstallVideo:
		seed = fmt.Sprintf("Installation video for %s (Part #%s, $%.2f): %s",
			result.Name, result.PartNumber, result.Price, result.VideoURL)
	default:
		seed = fmt.Sprintf("No installation video is available for %s. General steps:\n%s",
			result.Name, numberSteps(result.Steps))
	}

	return d.render(ctx, ToolGetInstallation, result, seed)
}

type emailResult struct {
	Email string `json:"email"`
	Sent  bool   `json:"sent"`
}

func (d *Dispatcher) emailSummary(ctx context.Context, rec *statex.FactRecord) (Outcome, error) {
	if d.mailer == nil {
		return Outcome{}, fmt.Errorf("%w: email delivery is not configured", contractx.ErrToolExecution)
	}

	transcript := rec.Transcript()
	body := "<pre>" + transcript + "</pre>"
	if err := d.mailer.Send(ctx, rec.EmailAddress, emailSubject, body); err != nil {
		return Outcome{}, fmt.Errorf("%w: send summary to %s: %v", contractx.ErrToolExecution, rec.EmailAddress, err)
	}

	result := emailResult{Email: rec.EmailAddress, Sent: true}
	seed := fmt.Sprintf("A summary of this conversation was emailed to %s.", rec.EmailAddress)
	return d.render(ctx, ToolEmailSummary, result, seed)
}

// render narrates the structured result without altering it; the raw data
// travels back unchanged for UI consumption.
func (d *Dispatcher) render(ctx context.Context, toolName string, data any, seed string) (Outcome, error) {
	reply, err := d.speaker.Generate(ctx, d.toolPrompt+"\n\n[Tool Result]\n"+seed)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: render %s result: %v", contractx.ErrToolExecution, toolName, err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = seed
	}

	return Outcome{
		Result: statex.ToolResult{ToolName: toolName, Data: data},
		Reply:  reply,
	}, nil
}

func numberSteps(steps []string) string {
	lines := make([]string, 0, len(steps))
	for i, s := range steps {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, s))
	}
	return strings.Join(lines, "\n")
}
