package phrase

import (
	"math"

	"github.com/rankinbc/leadgen/internal/models"
	"github.com/rankinbc/leadgen/internal/theory"
)

// Planner carries the per-session tonal context shared by every phrase it
// plans. One Planner serves one generation session.
type Planner struct {
	Key         theory.Key
	Scale       theory.ScaleType
	Genre       string
	Register    models.RegisterBand
	BeatsPerBar float64
}

// Plan chooses a phrase form for the span. Short spans get the tighter
// period form, longer spans the sentence form; the contour and climax
// position follow the section's energy (higher energy peaks earlier, the
// usual build/drop convention).
func (p Planner) Plan(sectionType string, bars int, energy float64, chords []models.ChordEvent) (PhraseSpec, error) {
	beatsPerBar := p.BeatsPerBar
	if beatsPerBar <= 0 {
		beatsPerBar = 4.0
	}
	spanEnd := float64(bars) * beatsPerBar
	if !chordsCoverSpan(chords, 0, spanEnd) {
		return PhraseSpec{}, &MissingHarmonyError{SpanStart: 0, SpanEnd: spanEnd}
	}

	phraseType := PhraseSentence
	if bars <= 4 {
		phraseType = PhrasePeriod
	}

	spec := PhraseSpec{
		SectionType: sectionType,
		Type:        phraseType,
		Cadence:     PlanCadence(chords, p.Key),
		Contour:     contourFor(sectionType, energy),
		Bars:        bars,
		BeatsPerBar: beatsPerBar,
		Energy:      energy,
		ClimaxBar:   climaxBar(bars, energy),
		Register:    p.Register,
		Key:         p.Key,
		Scale:       p.Scale,
		Genre:       p.Genre,
	}
	return spec, nil
}

// contourFor maps section character and energy onto a pitch envelope.
// Building sections rise, winding-down sections fall, and sustained
// high-energy sections arch over an early peak.
func contourFor(sectionType string, energy float64) ContourShape {
	switch sectionType {
	case "buildup", "riser":
		return ContourAscending
	case "breakdown", "outro":
		return ContourDescending
	}
	if energy >= 0.6 {
		return ContourArch
	}
	return ContourWave
}

// climaxBar places the peak proportionally to energy: energy 1.0 peaks
// around a third of the way in, energy 0.0 around three quarters.
func climaxBar(bars int, energy float64) int {
	if bars <= 1 {
		return 0
	}
	frac := 0.75 - 0.45*clamp01(energy)
	bar := int(math.Round(frac * float64(bars-1)))
	if bar < 0 {
		bar = 0
	}
	if bar >= bars {
		bar = bars - 1
	}
	return bar
}

// PlanCadence classifies the close of a chord-event sequence by its final
// two chords. Authentic and deceptive are told apart by whether the
// dominant lands on the literal tonic chord: the submediant shares the
// tonic's function group, so a function-level check alone would read V→vi
// as authentic. Progressions that match no cadential pattern report
// CadenceNone rather than a forced category.
func PlanCadence(chords []models.ChordEvent, key theory.Key) CadenceType {
	if len(chords) == 0 {
		return CadenceNone
	}

	last, err := theory.ParseChord(chords[len(chords)-1].ChordSymbol)
	if err != nil {
		return CadenceNone
	}
	lastFn := theory.AnalyzeFunction(last, key)
	lastIsTonicChord := last.Root == key.Tonic

	if len(chords) == 1 {
		if lastFn == theory.FunctionDominant {
			return CadenceHalf
		}
		return CadenceNone
	}

	prev, err := theory.ParseChord(chords[len(chords)-2].ChordSymbol)
	if err != nil {
		return CadenceNone
	}
	prevFn := theory.AnalyzeFunction(prev, key)

	switch {
	case prevFn == theory.FunctionDominant && lastIsTonicChord:
		return CadenceAuthentic
	case lastFn == theory.FunctionDominant:
		return CadenceHalf
	case prevFn == theory.FunctionDominant:
		return CadenceDeceptive
	case prevFn == theory.FunctionSubdominant && lastIsTonicChord:
		return CadencePlagal
	}
	return CadenceNone
}

// chordsCoverSpan reports whether the chord events, taken as contiguous
// ordered spans, cover [start, end) without a gap.
func chordsCoverSpan(chords []models.ChordEvent, start, end float64) bool {
	if len(chords) == 0 || end <= start {
		return len(chords) > 0
	}
	const gapTolerance = 1e-6
	cursor := start
	for _, c := range chords {
		if c.StartBeats > cursor+gapTolerance {
			return false
		}
		if c.EndBeats() > cursor {
			cursor = c.EndBeats()
		}
		if cursor >= end-gapTolerance {
			return true
		}
	}
	return cursor >= end-gapTolerance
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
