package theory

import (
	"fmt"
	"strings"
)

// PitchClass is a chromatic pitch class, 0=C .. 11=B.
type PitchClass int

// Semitone offsets from C for natural note letters.
var noteOffsets = map[string]int{
	"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11,
}

// Preferred spellings when formatting pitch classes back to note names.
var pitchClassNames = [12]string{
	"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B",
}

func (pc PitchClass) String() string {
	return pitchClassNames[((int(pc)%12)+12)%12]
}

// MIDINote returns the MIDI note number of the pitch class at the given
// octave (C4 = 60).
func (pc PitchClass) MIDINote(octave int) int {
	return (octave+1)*12 + int(pc)
}

// ChordQuality is the base triad/suspension quality of a chord.
type ChordQuality int

const (
	QualityMajor ChordQuality = iota
	QualityMinor
	QualityDiminished
	QualityAugmented
	QualitySus2
	QualitySus4
)

func (q ChordQuality) String() string {
	switch q {
	case QualityMajor:
		return "major"
	case QualityMinor:
		return "minor"
	case QualityDiminished:
		return "diminished"
	case QualityAugmented:
		return "augmented"
	case QualitySus2:
		return "sus2"
	case QualitySus4:
		return "sus4"
	}
	return "unknown"
}

// symbol returns the quality marker used in chord symbols.
func (q ChordQuality) symbol() string {
	switch q {
	case QualityMinor:
		return "m"
	case QualityDiminished:
		return "dim"
	case QualityAugmented:
		return "aug"
	case QualitySus2:
		return "sus2"
	case QualitySus4:
		return "sus4"
	}
	return ""
}

// Extension is an added or altered chord tone token (e.g. "7", "maj7", "b5").
type Extension string

// extensionOrder lists recognized extension tokens, longest first so that
// symbol parsing is greedy ("maj7" before "7", "add9" before "9").
var extensionOrder = []Extension{
	"maj7", "add9", "add11", "add13",
	"b5", "#5", "b9", "#9", "#11",
	"6", "7", "9", "11", "13",
}

// interval returns the semitone offset the extension adds above the root,
// or -1 for alterations that modify an existing tone instead.
func (e Extension) interval() int {
	switch e {
	case "6":
		return 9
	case "7":
		return 10
	case "maj7":
		return 11
	case "9", "add9":
		return 14
	case "11", "add11":
		return 17
	case "13", "add13":
		return 21
	case "b9":
		return 13
	case "#9":
		return 15
	case "#11":
		return 18
	}
	return -1
}

// Chord is a parsed chord symbol: root pitch class, base quality, ordered
// extension tokens, and an optional slash-bass inversion. The tone set is
// fully determined by (root, quality, extensions); the bass only changes
// which tone sounds lowest.
type Chord struct {
	Root       PitchClass   `json:"root"`
	Quality    ChordQuality `json:"quality"`
	Extensions []Extension  `json:"extensions,omitempty"`
	Bass       PitchClass   `json:"bass,omitempty"`
	HasBass    bool         `json:"hasBass,omitempty"`
}

// ParseError reports a malformed chord symbol. Generation for the affected
// section aborts; there is no local recovery.
type ParseError struct {
	Symbol string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid chord symbol %q: %s", e.Symbol, e.Reason)
}

// ParseChord parses a chord symbol like "Cmaj7", "F#m7b5", "Gsus4" or
// "Em7/G" into a structured Chord.
func ParseChord(symbol string) (Chord, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return Chord{}, &ParseError{Symbol: symbol, Reason: "empty symbol"}
	}

	base := symbol
	bassPart := ""
	if idx := strings.Index(symbol, "/"); idx >= 0 {
		base = strings.TrimSpace(symbol[:idx])
		bassPart = strings.TrimSpace(symbol[idx+1:])
		if base == "" || bassPart == "" {
			return Chord{}, &ParseError{Symbol: symbol, Reason: "malformed slash chord"}
		}
	}

	root, rest, err := parseNoteName(base)
	if err != nil {
		return Chord{}, &ParseError{Symbol: symbol, Reason: err.Error()}
	}

	chord := Chord{Root: root, Quality: QualityMajor}

	// Quality marker. "m" must not swallow "maj7".
	switch {
	case strings.HasPrefix(rest, "dim"):
		chord.Quality = QualityDiminished
		rest = rest[3:]
	case strings.HasPrefix(rest, "aug"):
		chord.Quality = QualityAugmented
		rest = rest[3:]
	case strings.HasPrefix(rest, "sus2"):
		chord.Quality = QualitySus2
		rest = rest[4:]
	case strings.HasPrefix(rest, "sus4"):
		chord.Quality = QualitySus4
		rest = rest[4:]
	case strings.HasPrefix(rest, "min"):
		chord.Quality = QualityMinor
		rest = rest[3:]
	case strings.HasPrefix(rest, "m") && !strings.HasPrefix(rest, "maj"):
		chord.Quality = QualityMinor
		rest = rest[1:]
	}

	// Ordered extension tokens, greedy longest-match.
	for rest != "" {
		matched := false
		for _, ext := range extensionOrder {
			if strings.HasPrefix(rest, string(ext)) {
				chord.Extensions = append(chord.Extensions, ext)
				rest = rest[len(ext):]
				matched = true
				break
			}
		}
		if !matched {
			return Chord{}, &ParseError{Symbol: symbol, Reason: fmt.Sprintf("unrecognized token %q", rest)}
		}
	}

	if bassPart != "" {
		bass, leftover, err := parseNoteName(bassPart)
		if err != nil || leftover != "" {
			return Chord{}, &ParseError{Symbol: symbol, Reason: fmt.Sprintf("invalid bass note %q", bassPart)}
		}
		chord.Bass = bass
		chord.HasBass = true
	}

	return chord, nil
}

// FormatChord renders a Chord back to its canonical symbol. It is the
// inverse of ParseChord for every chord constructed from a valid symbol.
func FormatChord(c Chord) string {
	var sb strings.Builder
	sb.WriteString(c.Root.String())
	sb.WriteString(c.Quality.symbol())
	for _, ext := range c.Extensions {
		sb.WriteString(string(ext))
	}
	if c.HasBass {
		sb.WriteString("/")
		sb.WriteString(c.Bass.String())
	}
	return sb.String()
}

// parseNoteName reads a leading note letter plus optional accidental and
// returns the pitch class and the unconsumed remainder.
func parseNoteName(s string) (PitchClass, string, error) {
	if s == "" {
		return 0, "", fmt.Errorf("missing root note")
	}
	letter := strings.ToUpper(s[:1])
	offset, ok := noteOffsets[letter]
	if !ok {
		return 0, "", fmt.Errorf("invalid note letter %q", s[:1])
	}
	rest := s[1:]
	if rest != "" {
		if rest[0] == '#' {
			offset++
			rest = rest[1:]
		} else if rest[0] == 'b' {
			offset--
			rest = rest[1:]
		}
	}
	return PitchClass(((offset % 12) + 12) % 12), rest, nil
}

// Intervals returns the semitone offsets from the root that make up the
// chord, base triad first, then extensions in symbol order. Alterations
// (b5, #5) modify the fifth in place.
func (c Chord) Intervals() []int {
	var intervals []int
	switch c.Quality {
	case QualityMajor:
		intervals = []int{0, 4, 7}
	case QualityMinor:
		intervals = []int{0, 3, 7}
	case QualityDiminished:
		intervals = []int{0, 3, 6}
	case QualityAugmented:
		intervals = []int{0, 4, 8}
	case QualitySus2:
		intervals = []int{0, 2, 7}
	case QualitySus4:
		intervals = []int{0, 5, 7}
	default:
		intervals = []int{0, 4, 7}
	}

	for _, ext := range c.Extensions {
		switch ext {
		case "b5":
			replaceInterval(intervals, 7, 6)
		case "#5":
			replaceInterval(intervals, 7, 8)
		default:
			if iv := ext.interval(); iv >= 0 {
				intervals = append(intervals, iv)
			}
		}
	}
	return intervals
}

func replaceInterval(intervals []int, from, to int) {
	for i, iv := range intervals {
		if iv == from {
			intervals[i] = to
			return
		}
	}
}

// PitchClasses returns the distinct pitch classes of the chord tones.
func (c Chord) PitchClasses() []PitchClass {
	seen := make(map[PitchClass]bool)
	var pcs []PitchClass
	for _, iv := range c.Intervals() {
		pc := PitchClass((int(c.Root) + iv) % 12)
		if !seen[pc] {
			seen[pc] = true
			pcs = append(pcs, pc)
		}
	}
	return pcs
}

// ContainsPitch reports whether the pitch class is a chord tone. The slash
// bass is not counted: inversion affects ordering, not membership.
func (c Chord) ContainsPitch(pc PitchClass) bool {
	norm := PitchClass(((int(pc) % 12) + 12) % 12)
	for _, tone := range c.PitchClasses() {
		if tone == norm {
			return true
		}
	}
	return false
}

// Voicing returns MIDI note numbers for the chord at the given octave,
// with the slash bass (if any) prepended one octave below.
func (c Chord) Voicing(octave int) []int {
	rootMIDI := c.Root.MIDINote(octave)
	notes := make([]int, 0, len(c.Intervals())+1)
	for _, iv := range c.Intervals() {
		n := rootMIDI + iv
		if n < 0 || n > 127 {
			continue
		}
		notes = append(notes, n)
	}
	if c.HasBass {
		bassMIDI := c.Bass.MIDINote(octave - 1)
		if bassMIDI >= 0 && bassMIDI <= 127 {
			notes = append([]int{bassMIDI}, notes...)
		}
	}
	return notes
}
