package phrase

import (
	"fmt"

	"github.com/rankinbc/leadgen/internal/models"
	"github.com/rankinbc/leadgen/internal/theory"
)

// PhraseType is the formal template a phrase follows.
type PhraseType int

const (
	// PhraseSentence is the 8-bar-leaning form: statement, restatement,
	// then a continuation that fragments toward the cadence.
	PhraseSentence PhraseType = iota
	// PhrasePeriod is the shorter antecedent/consequent form.
	PhrasePeriod
)

func (p PhraseType) String() string {
	switch p {
	case PhraseSentence:
		return "sentence"
	case PhrasePeriod:
		return "period"
	}
	return "unknown"
}

// CadenceType classifies how a phrase's harmony closes.
type CadenceType int

const (
	CadenceNone CadenceType = iota
	CadenceAuthentic
	CadenceHalf
	CadenceDeceptive
	CadencePlagal
)

func (c CadenceType) String() string {
	switch c {
	case CadenceAuthentic:
		return "authentic"
	case CadenceHalf:
		return "half"
	case CadenceDeceptive:
		return "deceptive"
	case CadencePlagal:
		return "plagal"
	}
	return "none"
}

// ContourShape is the planned pitch envelope over the phrase.
type ContourShape int

const (
	ContourArch ContourShape = iota
	ContourWave
	ContourAscending
	ContourDescending
)

func (c ContourShape) String() string {
	switch c {
	case ContourArch:
		return "arch"
	case ContourWave:
		return "wave"
	case ContourAscending:
		return "ascending"
	case ContourDescending:
		return "descending"
	}
	return "unknown"
}

// PhraseSpec is the plan for a melodic span, produced before any notes
// exist. Rendering realizes it into a Phrase.
type PhraseSpec struct {
	SectionType string              `json:"sectionType"`
	Type        PhraseType          `json:"type"`
	Cadence     CadenceType         `json:"cadence"`
	Contour     ContourShape        `json:"contour"`
	Bars        int                 `json:"bars"`
	BeatsPerBar float64             `json:"beatsPerBar"`
	Energy      float64             `json:"energy"`
	ClimaxBar   int                 `json:"climaxBar"` // 0-based bar index of the planned peak
	Register    models.RegisterBand `json:"register"`
	Key         theory.Key          `json:"key"`
	Scale       theory.ScaleType    `json:"scale"`
	Genre       string              `json:"genre"`
}

// TotalBeats returns the planned span length.
func (s PhraseSpec) TotalBeats() float64 {
	return float64(s.Bars) * s.BeatsPerBar
}

// Phrase is a realized melodic span: ordered notes plus the plan that
// produced them.
type Phrase struct {
	Spec  PhraseSpec         `json:"spec"`
	Notes []models.NoteEvent `json:"notes"`
}

// MissingHarmonyError reports that no chord events cover the requested
// span. It cannot be recovered locally; the caller must supply a
// progression.
type MissingHarmonyError struct {
	SpanStart float64
	SpanEnd   float64
}

func (e *MissingHarmonyError) Error() string {
	return fmt.Sprintf("no chord events cover beats [%.2f, %.2f)", e.SpanStart, e.SpanEnd)
}
