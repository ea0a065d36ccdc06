package models

// TensionLevel describes a note's dissonance against the active chord,
// from stable chord tone up to a fully chromatic pitch.
type TensionLevel int

const (
	TensionStable TensionLevel = iota
	TensionMild
	TensionModerate
	TensionHigh
	TensionChromatic
)

func (t TensionLevel) String() string {
	names := [...]string{"stable", "mild", "moderate", "high", "chromatic"}
	if int(t) < len(names) {
		return names[t]
	}
	return "unknown"
}

// Articulation hints attached to rendered notes. Downstream consumers
// (humanizer, MIDI export) interpret these; the pipeline only tags them.
const (
	ArticulationNormal   = "normal"
	ArticulationLegato   = "legato"
	ArticulationStaccato = "staccato"
	ArticulationAccent   = "accent"
)

// NoteEvent represents a single musical note with timing and pitch information
type NoteEvent struct {
	MidiNoteNumber int     `json:"midiNoteNumber"`
	Velocity       int     `json:"velocity"`
	StartBeats     float64 `json:"startBeats"`
	DurationBeats  float64 `json:"durationBeats"`

	// Harmonic annotations set during phrase rendering
	Articulation string       `json:"articulation,omitempty"`
	IsChordTone  bool         `json:"isChordTone"`
	Tension      TensionLevel `json:"tension"`
	ScaleDegree  int          `json:"scaleDegree"`
}

// PitchClass returns the note's pitch class (0=C .. 11=B).
func (n NoteEvent) PitchClass() int {
	return ((n.MidiNoteNumber % 12) + 12) % 12
}

// EndBeats returns the exclusive end of the note's time span.
func (n NoteEvent) EndBeats() float64 {
	return n.StartBeats + n.DurationBeats
}

// Overlaps reports whether two half-open beat spans intersect.
func (n NoteEvent) Overlaps(other NoteEvent) bool {
	return n.StartBeats < other.EndBeats() && other.StartBeats < n.EndBeats()
}

// ChordEvent represents a chord with timing information. Within one
// progression events are contiguous, non-overlapping and ordered by start.
type ChordEvent struct {
	ChordSymbol   string  `json:"chordSymbol"`
	StartBeats    float64 `json:"startBeats"`
	DurationBeats float64 `json:"durationBeats"`
}

// EndBeats returns the exclusive end of the chord's time span.
func (c ChordEvent) EndBeats() float64 {
	return c.StartBeats + c.DurationBeats
}

// Contains reports whether the given beat falls inside the chord's span.
func (c ChordEvent) Contains(beat float64) bool {
	return beat >= c.StartBeats && beat < c.EndBeats()
}

// RegisterBand is an inclusive MIDI pitch range assigned to a track role or
// phrase. Bands are always at least an octave wide so any pitch class can be
// folded into range.
type RegisterBand struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// Contains reports whether the pitch lies inside the band.
func (b RegisterBand) Contains(pitch int) bool {
	return pitch >= b.Low && pitch <= b.High
}

// Fold octave-shifts the pitch into the band, preserving its pitch class.
func (b RegisterBand) Fold(pitch int) int {
	for pitch < b.Low {
		pitch += 12
	}
	for pitch > b.High {
		pitch -= 12
	}
	if pitch < b.Low {
		pitch = b.Low
	}
	return pitch
}

// Width returns the band's size in semitones.
func (b RegisterBand) Width() int {
	return b.High - b.Low
}

// TrackRole identifies the musical role of a track in the arrangement.
type TrackRole string

const (
	RoleBass TrackRole = "bass"
	RolePad  TrackRole = "pad"
	RoleArp  TrackRole = "arp"
	RoleLead TrackRole = "lead"
)

// ContextTrack is a read-only view of one sibling track's content.
type ContextTrack struct {
	Role   TrackRole    `json:"role"`
	Notes  []NoteEvent  `json:"notes"`
	Chords []ChordEvent `json:"chords,omitempty"`
}

// TrackContext carries the already-rendered sibling tracks supplied to the
// coordinator. The generation pipeline never mutates it.
type TrackContext struct {
	Tracks []ContextTrack `json:"tracks"`
}

// NotesForRole returns the notes of the first track with the given role.
func (tc TrackContext) NotesForRole(role TrackRole) []NoteEvent {
	for _, t := range tc.Tracks {
		if t.Role == role {
			return t.Notes
		}
	}
	return nil
}
