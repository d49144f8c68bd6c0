// Package extract turns one user utterance into a candidate fact delta.
// Two implementations share the Extractor contract: a deterministic
// keyword matcher (the default) and an LLM-backed variant.
package extract

import (
	"context"
	"regexp"
	"strings"

	statex "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/state"
)

// KeywordExtractor detects goals, symptoms, model/part identifiers and
// email addresses with fixed pattern tables. Facts already known in the
// current record are locked and never re-extracted; only symptoms keep
// accumulating.
type KeywordExtractor struct{}

func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{}
}

type goalPattern struct {
	goal statex.GoalType
	re   *regexp.Regexp
}

// Checked in order; the first match wins.
var goalPatterns = []goalPattern{
	{statex.GoalEmailSummary, regexp.MustCompile(`\bemail\b|\bsend (it|me|this|the)\b|\bforward\b|\bshare\b|\bsave (it|this|the)\b`)},
	{statex.GoalDiagnoseRepair, regexp.MustCompile(`\bfix(ed|ing)?\b|\btroubleshoot|\bdiagnos|\brepair|\bbroken\b|what'?s wrong`)},
	{statex.GoalInstallInstruction, regexp.MustCompile(`\binstall|\breplac(e|ed|ing|ement)\b`)},
	{statex.GoalCheckCompatibility, regexp.MustCompile(`\bcompatib|\bfits?\b|\bwork(s)? with\b|\bwill (it|this|that) work\b`)},
}

type symptomPattern struct {
	label string
	re    *regexp.Regexp
}

// Canonical symptom vocabulary. Free-text descriptions map onto these
// labels; unmatched descriptions yield no symptom.
var symptomPatterns = []symptomPattern{
	{"Leaking", regexp.MustCompile(`\bleak|\bdrip|\bwater\b`)},
	{"Noisy", regexp.MustCompile(`\bloud\b|\bnois(e|y)\b|\bsound`)},
	{"Won't start", regexp.MustCompile(`won'?t start|not start(ing)?|won'?t turn on|doesn'?t start`)},
	{"Not cleaning", regexp.MustCompile(`not clean|\bdirty\b|\bresidue\b`)},
	{"Door issue", regexp.MustCompile(`\bstuck\b|won'?t close|won'?t open`)},
	{"Not draining", regexp.MustCompile(`won'?t drain|not drain(ing)?|\bdrain\b`)},
}

var (
	partRe  = regexp.MustCompile(`\bPS\d{5,}\b`)
	modelRe = regexp.MustCompile(`\b[A-Z]{2,}\d{2,}[A-Z0-9]*\b`)
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
)

func (e *KeywordExtractor) Extract(_ context.Context, utterance string, current *statex.FactRecord) (statex.FactDelta, error) {
	var delta statex.FactDelta

	lowered := foldQuotes(strings.ToLower(utterance))
	email := emailRe.FindString(utterance)

	// Identifier scanning runs on the utterance with email addresses
	// blanked out: a digit-bearing local part like bob123@ must never
	// surface as a model or part number.
	upper := strings.ToUpper(emailRe.ReplaceAllString(utterance, " "))

	if current == nil || current.GoalType == statex.GoalNone {
		for _, p := range goalPatterns {
			if p.re.MatchString(lowered) {
				delta.Goal = p.goal
				break
			}
		}
	}

	part := partRe.FindString(upper)
	if part != "" && (current == nil || current.PartNumber == "") {
		delta.Part = part
	}

	if current == nil || current.ProductModel == "" {
		for _, candidate := range modelRe.FindAllString(upper, -1) {
			if candidate == part {
				continue
			}
			delta.Model = candidate
			break
		}
	}

	if current == nil || current.EmailAddress == "" {
		delta.Email = email
	}

	for _, p := range symptomPatterns {
		if p.re.MatchString(lowered) {
			delta.Symptoms = append(delta.Symptoms, p.label)
		}
	}

	return delta, nil
}

var quoteFolder = strings.NewReplacer("‘", "'", "’", "'")

func foldQuotes(s string) string {
	return quoteFolder.Replace(s)
}
