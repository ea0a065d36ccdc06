package phrase

import (
	"math"
	"math/rand"

	"github.com/rankinbc/leadgen/internal/models"
	"github.com/rankinbc/leadgen/internal/motif"
	"github.com/rankinbc/leadgen/internal/theory"
)

// renderCycle is the transform rotation applied when a remembered motif is
// restated in a later bar. Order matters: early restatements keep the shape
// recognizable, later ones fragment it.
var renderCycle = []motif.TransformType{
	motif.TransformSequence,
	motif.TransformTranspose,
	motif.TransformInvert,
	motif.TransformFragment,
}

// Render realizes a PhraseSpec into notes, bar by bar. Each bar selects or
// develops a motif against the sounding chord, anchors it on the contour
// envelope, snaps stray pitches into the scale and folds everything into
// the planned register band.
func Render(spec PhraseSpec, mem *motif.Memory, chords []models.ChordEvent, rng *rand.Rand) (Phrase, error) {
	if !chordsCoverSpan(chords, 0, spec.TotalBeats()) {
		return Phrase{}, &MissingHarmonyError{SpanStart: 0, SpanEnd: spec.TotalBeats()}
	}

	out := Phrase{Spec: spec}
	developments := 0

	for bar := 0; bar < spec.Bars; bar++ {
		barStart := float64(bar) * spec.BeatsPerBar
		chordEv, ok := chordAt(chords, barStart)
		if !ok {
			return Phrase{}, &MissingHarmonyError{SpanStart: barStart, SpanEnd: barStart + spec.BeatsPerBar}
		}
		chord, err := theory.ParseChord(chordEv.ChordSymbol)
		if err != nil {
			return Phrase{}, err
		}

		ctx := motif.Context{
			Chord:  chord,
			Key:    spec.Key,
			Scale:  spec.Scale,
			Energy: spec.Energy,
			Genre:  spec.Genre,
		}

		m, remembered := mem.SelectForContext(ctx)
		if !remembered {
			m = motif.GenerateSeed(spec.Genre, spec.Energy, rng)
		} else if bar > 0 {
			m = motif.Develop(m, renderCycle[developments%len(renderCycle)], rng)
			developments++
		}
		mem.Record(m)

		anchor := nearestPitchOfClass(contourTarget(spec, bar), chord.Root)
		notes := realizeBar(spec, m, chord, anchor, barStart, bar)
		out.Notes = append(out.Notes, notes...)
	}

	resolveCadence(&out, chords)
	return out, nil
}

// realizeBar tiles the motif across one bar, clipping the final statement
// at the barline, and annotates every note against the sounding chord.
func realizeBar(spec PhraseSpec, m motif.Motif, chord theory.Chord, anchor int, barStart float64, bar int) []models.NoteEvent {
	if m.Steps() == 0 {
		return nil
	}

	var notes []models.NoteEvent
	offset := 0.0
	for offset < spec.BeatsPerBar-1e-9 {
		pitches := m.Pitches(anchor)
		for i, raw := range pitches {
			if offset >= spec.BeatsPerBar-1e-9 {
				break
			}
			dur := m.Durations[i]
			if offset+dur > spec.BeatsPerBar {
				dur = spec.BeatsPerBar - offset
			}

			pitch := raw
			pc := theory.PitchClass(((pitch % 12) + 12) % 12)
			if !chord.ContainsPitch(pc) && !theory.IsInScale(pc, spec.Key, spec.Scale) {
				pitch = theory.SnapToScale(pitch, spec.Key, spec.Scale)
			}
			pitch = spec.Register.Fold(pitch)

			notes = append(notes, models.NoteEvent{
				MidiNoteNumber: pitch,
				Velocity:       velocityFor(spec, bar, i == 0),
				StartBeats:     barStart + offset,
				DurationBeats:  dur,
				Articulation:   m.Articulations[i],
			})
			offset += dur
		}
	}

	annotate(notes, chord, spec.Key, spec.Scale)
	return notes
}

// annotate fills in the harmonic metadata on rendered notes: chord-tone
// flag, scale degree and a tension level derived from the non-chord-tone
// classification.
func annotate(notes []models.NoteEvent, chord theory.Chord, key theory.Key, scale theory.ScaleType) {
	for i := range notes {
		pc := theory.PitchClass(notes[i].PitchClass())
		notes[i].IsChordTone = chord.ContainsPitch(pc)
		notes[i].ScaleDegree = theory.ScaleDegree(pc, key, scale)

		switch {
		case notes[i].IsChordTone:
			notes[i].Tension = models.TensionStable
		case !theory.IsInScale(pc, key, scale):
			notes[i].Tension = models.TensionChromatic
		case i == 0:
			// The bar opener has no approach note, so the held and
			// leapt-into shapes cannot apply to it.
			notes[i].Tension = models.TensionMild
		default:
			next := notes[i].MidiNoteNumber
			if i < len(notes)-1 {
				next = notes[i+1].MidiNoteNumber
			}
			notes[i].Tension = nctTension(notes[i-1].MidiNoteNumber, notes[i].MidiNoteNumber, next, chord)
		}
	}
}

func nctTension(prev, cur, next int, chord theory.Chord) models.TensionLevel {
	switch theory.ClassifyNonChordTone(prev, cur, next, chord) {
	case theory.NCTSuspension:
		return models.TensionModerate
	case theory.NCTAppoggiatura:
		return models.TensionHigh
	default:
		return models.TensionMild
	}
}

// contourTarget maps the planned contour shape to a target anchor pitch
// inside the register band for the given bar.
func contourTarget(spec PhraseSpec, bar int) int {
	t := 0.0
	if spec.Bars > 1 {
		t = float64(bar) / float64(spec.Bars-1)
	}

	var height float64
	switch spec.Contour {
	case ContourAscending:
		height = t
	case ContourDescending:
		height = 1 - t
	case ContourWave:
		height = 0.5 + 0.35*math.Sin(2*math.Pi*t)
	default: // arch: linear rise to the climax bar, then decay
		climax := float64(spec.ClimaxBar)
		if spec.Bars > 1 {
			climax /= float64(spec.Bars - 1)
		}
		if climax <= 0 {
			height = 1 - t
		} else if t <= climax {
			height = t / climax
		} else {
			height = 1 - 0.8*(t-climax)/(1-climax+1e-9)
		}
	}

	low := float64(spec.Register.Low)
	return int(math.Round(low + clamp01(height)*float64(spec.Register.Width())))
}

// velocityFor scales velocity with section energy, accenting the downbeat
// of the climax bar.
func velocityFor(spec PhraseSpec, bar int, downbeat bool) int {
	v := 72 + int(math.Round(spec.Energy*40))
	if bar == spec.ClimaxBar && downbeat {
		v += 12
	}
	if v > 127 {
		v = 127
	}
	if v < 1 {
		v = 1
	}
	return v
}

// resolveCadence pins the final note onto a tone of the closing chord for
// cadences that resolve (authentic, plagal). Half and deceptive cadences
// are left hanging on purpose.
func resolveCadence(p *Phrase, chords []models.ChordEvent) {
	if len(p.Notes) == 0 {
		return
	}
	if p.Spec.Cadence != CadenceAuthentic && p.Spec.Cadence != CadencePlagal {
		return
	}
	final, err := theory.ParseChord(chords[len(chords)-1].ChordSymbol)
	if err != nil {
		return
	}

	last := &p.Notes[len(p.Notes)-1]
	last.MidiNoteNumber = p.Spec.Register.Fold(nearestChordTone(last.MidiNoteNumber, final))
	last.IsChordTone = true
	last.Tension = models.TensionStable
	last.Articulation = models.ArticulationLegato
}

// chordAt finds the chord event sounding at the given beat.
func chordAt(chords []models.ChordEvent, beat float64) (models.ChordEvent, bool) {
	for _, c := range chords {
		if c.Contains(beat) {
			return c, true
		}
	}
	return models.ChordEvent{}, false
}

// nearestPitchOfClass returns the realization of pc closest to target.
func nearestPitchOfClass(target int, pc theory.PitchClass) int {
	octaves := int(math.Round(float64(target-int(pc)) / 12.0))
	return int(pc) + 12*octaves
}

// nearestChordTone returns the chord tone closest to the pitch, searching
// outward by semitone so ties resolve downward.
func nearestChordTone(pitch int, chord theory.Chord) int {
	for delta := 0; delta <= 11; delta++ {
		for _, cand := range []int{pitch - delta, pitch + delta} {
			pc := theory.PitchClass(((cand % 12) + 12) % 12)
			if chord.ContainsPitch(pc) {
				return cand
			}
		}
	}
	return pitch
}
