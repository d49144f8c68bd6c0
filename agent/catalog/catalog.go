// Package catalog answers read-only queries over the static parts
// snapshot: compatibility, symptom-to-part matching, and installation
// info. The snapshot is loaded once at process start and never written.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	statex "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/state"
)

const maxDiagnosisParts = 3

type Part struct {
	Name           string   `json:"name"`
	Price          float64  `json:"price"`
	Description    string   `json:"description,omitempty"`
	ImageURL       string   `json:"image_url,omitempty"`
	SolvesSymptoms []string `json:"solves_symptoms,omitempty"`
	RepairVideoURL string   `json:"repair_video_url,omitempty"`
}

type applianceModel struct {
	Parts map[string]Part `json:"parts"`
}

// Catalog maps appliance model identifiers to their parts. Part iteration
// order is fixed at load time (sorted part numbers) so diagnosis output is
// deterministic.
type Catalog struct {
	models    map[string]applianceModel
	partOrder map[string][]string
}

func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return FromJSON(raw)
}

func FromJSON(raw []byte) (*Catalog, error) {
	var models map[string]applianceModel
	if err := json.Unmarshal(raw, &models); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	partOrder := make(map[string][]string, len(models))
	for model, data := range models {
		order := make([]string, 0, len(data.Parts))
		for partNumber := range data.Parts {
			order = append(order, partNumber)
		}
		sort.Strings(order)
		partOrder[model] = order
	}

	return &Catalog{models: models, partOrder: partOrder}, nil
}

func (c *Catalog) HasModel(model string) bool {
	_, ok := c.models[strings.ToUpper(strings.TrimSpace(model))]
	return ok
}

// CheckCompatibility reports whether the part is listed under the model.
// An unknown model and a known model without the part both come out false;
// Compatibility carries the distinction for logging.
func (c *Catalog) CheckCompatibility(partNumber, model string) Compatibility {
	model = strings.ToUpper(strings.TrimSpace(model))
	partNumber = strings.ToUpper(strings.TrimSpace(partNumber))

	m, ok := c.models[model]
	if !ok {
		return Compatibility{PartNumber: partNumber, Model: model, ModelKnown: false}
	}
	_, found := m.Parts[partNumber]
	return Compatibility{
		PartNumber: partNumber,
		Model:      model,
		ModelKnown: true,
		Compatible: found,
	}
}

type Compatibility struct {
	PartNumber string `json:"part_number"`
	Model      string `json:"model"`
	ModelKnown bool   `json:"model_known"`
	Compatible bool   `json:"compatible"`
}

type DiagnosisOutcome string

const (
	DiagnosisUnknownModel DiagnosisOutcome = "unknown_model"
	DiagnosisNoMatch      DiagnosisOutcome = "no_match"
	DiagnosisMatches      DiagnosisOutcome = "matches"
)

type SuggestedPart struct {
	PartNumber     string   `json:"part_number"`
	Name           string   `json:"name"`
	Price          float64  `json:"price"`
	Description    string   `json:"description,omitempty"`
	ImageURL       string   `json:"image_url,omitempty"`
	SolvesSymptoms []string `json:"solves_symptoms,omitempty"`
}

type Diagnosis struct {
	Outcome  DiagnosisOutcome `json:"outcome"`
	Model    string           `json:"model"`
	Symptoms []string         `json:"symptoms"`
	Parts    []SuggestedPart  `json:"suggested_parts,omitempty"`
}

// Diagnose returns up to three parts of the model whose solves_symptoms
// intersect the requested symptoms. Labels compare by whole-string
// equality after folding case and apostrophe variants. An unknown model is
// reported distinctly from a known model with no symptom match.
func (c *Catalog) Diagnose(model string, symptoms []string) Diagnosis {
	model = strings.ToUpper(strings.TrimSpace(model))
	out := Diagnosis{Model: model, Symptoms: symptoms}

	m, ok := c.models[model]
	if !ok {
		out.Outcome = DiagnosisUnknownModel
		return out
	}

	wanted := make(map[string]struct{}, len(symptoms))
	for _, s := range symptoms {
		wanted[statex.FoldLabel(s)] = struct{}{}
	}

	for _, partNumber := range c.partOrder[model] {
		part := m.Parts[partNumber]
		if !solvesAny(part.SolvesSymptoms, wanted) {
			continue
		}
		out.Parts = append(out.Parts, SuggestedPart{
			PartNumber:     partNumber,
			Name:           part.Name,
			Price:          part.Price,
			Description:    part.Description,
			ImageURL:       part.ImageURL,
			SolvesSymptoms: part.SolvesSymptoms,
		})
		if len(out.Parts) == maxDiagnosisParts {
			break
		}
	}

	if len(out.Parts) == 0 {
		out.Outcome = DiagnosisNoMatch
		return out
	}
	out.Outcome = DiagnosisMatches
	return out
}

func solvesAny(solves []string, wanted map[string]struct{}) bool {
	for _, s := range solves {
		if _, ok := wanted[statex.FoldLabel(s)]; ok {
			return true
		}
	}
	return false
}

type InstallOutcome string

const (
	InstallNotFound InstallOutcome = "not_found"
	InstallVideo    InstallOutcome = "video"
	InstallGeneric  InstallOutcome = "generic"
)

// GenericInstallSteps is the fallback instruction set for parts without a
// repair video.
var GenericInstallSteps = []string{
	"Unplug the appliance",
	"Remove the old part",
	"Install the new part",
	"Test the appliance",
}

type InstallInfo struct {
	Outcome    InstallOutcome `json:"outcome"`
	PartNumber string         `json:"part_number"`
	Model      string         `json:"model"`
	Name       string         `json:"name,omitempty"`
	Price      float64        `json:"price,omitempty"`
	VideoURL   string         `json:"video_url,omitempty"`
	Steps      []string       `json:"steps,omitempty"`
}

// InstallationInfo returns the repair video for the part when one exists,
// the generic step list when the part is known but has no video, and an
// explicit not-found result when the part/model pair is not in the
// catalog.
func (c *Catalog) InstallationInfo(partNumber, model string) InstallInfo {
	model = strings.ToUpper(strings.TrimSpace(model))
	partNumber = strings.ToUpper(strings.TrimSpace(partNumber))
	out := InstallInfo{PartNumber: partNumber, Model: model}

	m, ok := c.models[model]
	if !ok {
		out.Outcome = InstallNotFound
		return out
	}
	part, ok := m.Parts[partNumber]
	if !ok {
		out.Outcome = InstallNotFound
		return out
	}

	out.Name = part.Name
	out.Price = part.Price
	if part.RepairVideoURL != "" {
		out.Outcome = InstallVideo
		out.VideoURL = part.RepairVideoURL
		return out
	}
	out.Outcome = InstallGeneric
	out.Steps = GenericInstallSteps
	return out
}
