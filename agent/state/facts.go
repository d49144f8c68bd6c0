package state

import (
	"fmt"
	"strings"
	"time"
)

// GoalType is the closed vocabulary of user intents. Routing and tool
// dispatch are keyed on it; anything outside the enum is rejected at the
// extraction boundary.
type GoalType string

const (
	GoalNone               GoalType = ""
	GoalInstallInstruction GoalType = "install_instruction"
	GoalCheckCompatibility GoalType = "check_compatibility"
	GoalDiagnoseRepair     GoalType = "diagnose_repair"
	GoalEmailSummary       GoalType = "email_summary"
)

// Known reports whether g is one of the four actionable goals.
func (g GoalType) Known() bool {
	switch g {
	case GoalInstallInstruction, GoalCheckCompatibility, GoalDiagnoseRepair, GoalEmailSummary:
		return true
	}
	return false
}

// ParseGoal maps a raw string onto the goal vocabulary.
func ParseGoal(raw string) (GoalType, bool) {
	g := GoalType(strings.TrimSpace(strings.ToLower(raw)))
	if g.Known() {
		return g, true
	}
	return GoalNone, false
}

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// ToolResult is the raw outcome of the most recently executed tool,
// kept for UI rendering. Keep-last semantics: it is overwritten by the
// next tool execution and never cleared in between.
type ToolResult struct {
	ToolName string `json:"tool_name"`
	Data     any    `json:"data"`
}

// FactDelta is one turn's worth of candidate fact updates. A zero-value
// field means "no evidence this turn", never "erase".
type FactDelta struct {
	Model    string   `json:"model,omitempty"`
	Part     string   `json:"part,omitempty"`
	Symptoms []string `json:"symptoms,omitempty"`
	Goal     GoalType `json:"goal,omitempty"`
	Email    string   `json:"email,omitempty"`
}

// Empty reports whether the delta carries no updates at all.
func (d FactDelta) Empty() bool {
	return d.Model == "" && d.Part == "" && len(d.Symptoms) == 0 &&
		d.Goal == GoalNone && d.Email == ""
}

// FactRecord is the per-session memory of extracted conversation facts.
// It is mutated only by the turn controller's merge step and the tool
// dispatcher's goal clearing.
type FactRecord struct {
	SessionID      string      `json:"session_id"`
	Messages       []Message   `json:"messages,omitempty"`
	ProductModel   string      `json:"product_model,omitempty"`
	PartNumber     string      `json:"part_number,omitempty"`
	Symptoms       []string    `json:"symptoms,omitempty"`
	GoalType       GoalType    `json:"goal_type,omitempty"`
	EmailAddress   string      `json:"email_address,omitempty"`
	LastToolResult *ToolResult `json:"last_tool_result,omitempty"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func NewFactRecord(sessionID string, now time.Time) *FactRecord {
	return &FactRecord{
		SessionID: strings.TrimSpace(sessionID),
		UpdatedAt: now.UTC(),
	}
}

func (r *FactRecord) Touch(now time.Time) {
	r.UpdatedAt = now.UTC()
}

// Merge folds a delta into the record. Scalar fields change only when the
// delta carries a non-empty value; symptoms grow by set union and never
// shrink. Merge never fails and an empty delta is a no-op. No caller other
// than ClearGoal may reset a known field.
func (r *FactRecord) Merge(delta FactDelta) {
	if delta.Model != "" {
		r.ProductModel = strings.ToUpper(strings.TrimSpace(delta.Model))
	}
	if delta.Part != "" {
		r.PartNumber = strings.ToUpper(strings.TrimSpace(delta.Part))
	}
	if delta.Goal.Known() {
		r.GoalType = delta.Goal
	}
	if delta.Email != "" {
		r.EmailAddress = strings.TrimSpace(delta.Email)
	}
	for _, s := range delta.Symptoms {
		r.addSymptom(s)
	}
}

// addSymptom appends a symptom unless an equivalent label is already
// present. Equivalence folds case and apostrophe variants; the first-seen
// spelling wins so display order stays stable.
func (r *FactRecord) addSymptom(symptom string) {
	symptom = strings.TrimSpace(symptom)
	if symptom == "" {
		return
	}
	folded := FoldLabel(symptom)
	for _, known := range r.Symptoms {
		if FoldLabel(known) == folded {
			return
		}
	}
	r.Symptoms = append(r.Symptoms, symptom)
}

func (r *FactRecord) HasSymptoms() bool {
	return len(r.Symptoms) > 0
}

// ClearGoal resets the goal after a tool has executed so the next turn can
// state a new one. This is the single documented exception to the
// monotonic merge rule; nothing else may null a known fact.
func (r *FactRecord) ClearGoal() {
	r.GoalType = GoalNone
}

func (r *FactRecord) AppendMessage(role MessageRole, content string) {
	r.Messages = append(r.Messages, Message{Role: role, Content: content})
}

// Transcript renders the message log as plain text for the email summary.
func (r *FactRecord) Transcript() string {
	var b strings.Builder
	for i, m := range r.Messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		speaker := "Agent"
		if m.Role == RoleUser {
			speaker = "You"
		}
		fmt.Fprintf(&b, "%s: %s", speaker, m.Content)
	}
	return b.String()
}

var apostropheFolder = strings.NewReplacer("‘", "'", "’", "'")

// FoldLabel normalizes a symptom label for equality comparison: curly
// apostrophes become straight ones, case is folded, surrounding space is
// dropped. Comparison is whole-label equality, not substring.
func FoldLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(apostropheFolder.Replace(s)))
}
