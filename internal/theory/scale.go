package theory

import (
	"fmt"
	"strings"
)

// KeyMode represents major or minor mode
type KeyMode int

const (
	KeyModeMajor KeyMode = iota
	KeyModeMinor
)

func (m KeyMode) String() string {
	if m == KeyModeMinor {
		return "minor"
	}
	return "major"
}

// Key is a tonal center: tonic pitch class plus mode.
type Key struct {
	Tonic PitchClass `json:"tonic"`
	Mode  KeyMode    `json:"mode"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s %s", k.Tonic, k.Mode)
}

// LeadingTone returns the pitch class a semitone below the tonic.
func (k Key) LeadingTone() PitchClass {
	return PitchClass((int(k.Tonic) + 11) % 12)
}

// ParseKey parses strings like "A minor", "F# major" or just "C" (major).
func ParseKey(s string) (Key, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return Key{}, fmt.Errorf("empty key")
	}
	tonic, leftover, err := parseNoteName(fields[0])
	if err != nil || leftover != "" {
		return Key{}, fmt.Errorf("invalid key tonic %q", fields[0])
	}
	key := Key{Tonic: tonic, Mode: KeyModeMajor}
	if len(fields) > 1 {
		switch strings.ToLower(fields[1]) {
		case "major", "maj":
			key.Mode = KeyModeMajor
		case "minor", "min", "m":
			key.Mode = KeyModeMinor
		default:
			return Key{}, fmt.Errorf("invalid key mode %q", fields[1])
		}
	}
	return key, nil
}

// ScaleType selects the scale used for in-scale queries and pitch snapping.
type ScaleType int

const (
	ScaleMajor ScaleType = iota
	ScaleNaturalMinor
	ScaleHarmonicMinor
	ScaleMelodicMinor
	ScaleDorian
	ScalePhrygian
	ScaleMixolydian
	ScaleMajorPentatonic
	ScaleMinorPentatonic
)

var scaleIntervals = map[ScaleType][]int{
	ScaleMajor:           {0, 2, 4, 5, 7, 9, 11},
	ScaleNaturalMinor:    {0, 2, 3, 5, 7, 8, 10},
	ScaleHarmonicMinor:   {0, 2, 3, 5, 7, 8, 11},
	ScaleMelodicMinor:    {0, 2, 3, 5, 7, 9, 11},
	ScaleDorian:          {0, 2, 3, 5, 7, 9, 10},
	ScalePhrygian:        {0, 1, 3, 5, 7, 8, 10},
	ScaleMixolydian:      {0, 2, 4, 5, 7, 9, 10},
	ScaleMajorPentatonic: {0, 2, 4, 7, 9},
	ScaleMinorPentatonic: {0, 3, 5, 7, 10},
}

var scaleNames = map[string]ScaleType{
	"major":            ScaleMajor,
	"minor":            ScaleNaturalMinor,
	"natural_minor":    ScaleNaturalMinor,
	"harmonic_minor":   ScaleHarmonicMinor,
	"melodic_minor":    ScaleMelodicMinor,
	"dorian":           ScaleDorian,
	"phrygian":         ScalePhrygian,
	"mixolydian":       ScaleMixolydian,
	"major_pentatonic": ScaleMajorPentatonic,
	"minor_pentatonic": ScaleMinorPentatonic,
}

func (s ScaleType) String() string {
	for name, st := range scaleNames {
		if st == s && name != "minor" {
			return name
		}
	}
	return "major"
}

// ParseScaleType resolves a scale name; empty string defaults to the mode
// of the key it accompanies, which callers handle separately.
func ParseScaleType(name string) (ScaleType, error) {
	st, ok := scaleNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return ScaleMajor, fmt.Errorf("unknown scale type %q", name)
	}
	return st, nil
}

// DefaultScale returns the natural scale for the key's mode.
func (k Key) DefaultScale() ScaleType {
	if k.Mode == KeyModeMinor {
		return ScaleNaturalMinor
	}
	return ScaleMajor
}

// IsInScale reports whether a pitch class belongs to the scale built on the
// key's tonic.
func IsInScale(pc PitchClass, key Key, scale ScaleType) bool {
	rel := ((int(pc) - int(key.Tonic)) % 12 + 12) % 12
	for _, iv := range scaleIntervals[scale] {
		if iv == rel {
			return true
		}
	}
	return false
}

// ScaleDegree returns the 1-based degree of the pitch class within the
// scale, or 0 if the pitch is off-scale.
func ScaleDegree(pc PitchClass, key Key, scale ScaleType) int {
	rel := ((int(pc) - int(key.Tonic)) % 12 + 12) % 12
	for i, iv := range scaleIntervals[scale] {
		if iv == rel {
			return i + 1
		}
	}
	return 0
}

// SnapToScale moves a MIDI note to the nearest in-scale note, preferring the
// smaller shift and, on a tie, the downward neighbor (the melodic resolution
// direction). Returns the note unchanged when already in scale.
func SnapToScale(midiNote int, key Key, scale ScaleType) int {
	if IsInScale(PitchClass(midiNote%12), key, scale) {
		return midiNote
	}
	for dist := 1; dist <= 6; dist++ {
		if down := midiNote - dist; down >= 0 && IsInScale(PitchClass(((down%12)+12)%12), key, scale) {
			return down
		}
		if up := midiNote + dist; up <= 127 && IsInScale(PitchClass(up%12), key, scale) {
			return up
		}
	}
	return midiNote
}

// StepInScale moves a MIDI note by the given number of scale steps
// (positive = up). Off-scale inputs are snapped first.
func StepInScale(midiNote, steps int, key Key, scale ScaleType) int {
	note := SnapToScale(midiNote, key, scale)
	for ; steps > 0; steps-- {
		note = nextScaleNote(note, 1, key, scale)
	}
	for ; steps < 0; steps++ {
		note = nextScaleNote(note, -1, key, scale)
	}
	return note
}

func nextScaleNote(midiNote, dir int, key Key, scale ScaleType) int {
	for n := midiNote + dir; n >= 0 && n <= 127; n += dir {
		if IsInScale(PitchClass(((n%12)+12)%12), key, scale) {
			return n
		}
	}
	return midiNote
}

// NonChordToneType classifies a melodic pitch against the active chord by
// its approach and departure pattern.
type NonChordToneType int

const (
	NCTChordTone NonChordToneType = iota
	NCTPassing
	NCTNeighbor
	NCTSuspension
	NCTAppoggiatura
)

func (n NonChordToneType) String() string {
	names := [...]string{"chord_tone", "passing", "neighbor", "suspension", "appoggiatura"}
	if int(n) < len(names) {
		return names[n]
	}
	return "unknown"
}

const maxStepSemitones = 2

// ClassifyNonChordTone classifies the middle of three consecutive melodic
// pitches (MIDI note numbers) relative to the sounding chord:
//
//   - chord tone: pitch class belongs to the chord
//   - suspension: held over from the previous note, resolving down by step
//   - appoggiatura: approached by leap, left by step
//   - neighbor: stepwise in and out, returning to the starting pitch
//   - passing: stepwise in and out, continuing in the same direction
//
// Ambiguous shapes (leap in, leap out) fall back to passing; the closed
// classification never fails.
func ClassifyNonChordTone(prev, cur, next int, chord Chord) NonChordToneType {
	pc := PitchClass(((cur % 12) + 12) % 12)
	if chord.ContainsPitch(pc) {
		return NCTChordTone
	}

	entry := cur - prev
	exit := next - cur
	stepIn := entry != 0 && abs(entry) <= maxStepSemitones
	stepOut := exit != 0 && abs(exit) <= maxStepSemitones

	if entry == 0 && exit < 0 && abs(exit) <= maxStepSemitones {
		return NCTSuspension
	}
	if !stepIn && entry != 0 && stepOut {
		return NCTAppoggiatura
	}
	if stepIn && stepOut {
		if next == prev {
			return NCTNeighbor
		}
		return NCTPassing
	}
	return NCTPassing
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
