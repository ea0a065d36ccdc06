package motif

import (
	"github.com/google/uuid"

	"github.com/rankinbc/leadgen/internal/models"
)

// TransformType identifies a motif development operator.
type TransformType int

const (
	TransformNone TransformType = iota
	TransformTranspose
	TransformInvert
	TransformRetrograde
	TransformSequence
	TransformAugment
	TransformDiminish
	TransformFragment
)

func (t TransformType) String() string {
	names := [...]string{
		"none", "transpose", "invert", "retrograde",
		"sequence", "augment", "diminish", "fragment",
	}
	if int(t) < len(names) {
		return names[t]
	}
	return "none"
}

// Motif is a short transposition-independent melodic shape: semitone deltas
// between successive steps, a relative duration (in beats) and an
// articulation hint per step. Motifs are never edited in place; every
// transform returns a new Motif whose ParentID points at its source, so
// family membership stays an O(1) lookup.
type Motif struct {
	ID        string        `json:"id"`
	ParentID  string        `json:"parentId,omitempty"`
	Transform TransformType `json:"transform"`
	Genre     string        `json:"genre,omitempty"`

	// Intervals have one fewer entry than Durations: deltas between
	// consecutive steps. Anchor shifts the realized start pitch and is how
	// transposition is carried without touching the interval shape.
	Intervals     []int     `json:"intervals"`
	Durations     []float64 `json:"durations"`
	Articulations []string  `json:"articulations"`
	Anchor        int       `json:"anchor"`

	// Truncated is set when development had to cut the motif to fit the
	// remaining span. It is a quality flag, not an error.
	Truncated bool `json:"truncated,omitempty"`
}

// Steps returns the number of notes in the motif.
func (m Motif) Steps() int {
	return len(m.Durations)
}

// TotalBeats returns the motif's length at its current duration scale.
func (m Motif) TotalBeats() float64 {
	total := 0.0
	for _, d := range m.Durations {
		total += d
	}
	return total
}

// Pitches realizes the motif's shape as absolute MIDI note numbers starting
// from the given pitch (plus the motif's transposition anchor).
func (m Motif) Pitches(startPitch int) []int {
	pitches := make([]int, 0, m.Steps())
	cur := startPitch + m.Anchor
	pitches = append(pitches, cur)
	for _, iv := range m.Intervals {
		cur += iv
		pitches = append(pitches, cur)
	}
	return pitches
}

// child clones the motif's slices into a new Motif carrying lineage.
func (m Motif) child(transform TransformType) Motif {
	c := Motif{
		ID:            uuid.New().String(),
		ParentID:      m.ID,
		Transform:     transform,
		Genre:         m.Genre,
		Intervals:     append([]int(nil), m.Intervals...),
		Durations:     append([]float64(nil), m.Durations...),
		Articulations: append([]string(nil), m.Articulations...),
		Anchor:        m.Anchor,
	}
	return c
}

// Transpose shifts the realized pitch anchor by the given semitones. The
// interval shape is untouched.
func Transpose(m Motif, semitones int) Motif {
	c := m.child(TransformTranspose)
	c.Anchor += semitones
	return c
}

// Invert mirrors the motif's contour: every interval is negated. Applying
// Invert twice restores the original interval sequence.
func Invert(m Motif) Motif {
	c := m.child(TransformInvert)
	for i := range c.Intervals {
		c.Intervals[i] = -c.Intervals[i]
	}
	return c
}

// Retrograde plays the motif backwards: durations reversed, intervals
// reversed and negated. Applying Retrograde twice restores the original.
func Retrograde(m Motif) Motif {
	c := m.child(TransformRetrograde)
	n := len(c.Intervals)
	for i := 0; i < n/2; i++ {
		c.Intervals[i], c.Intervals[n-1-i] = c.Intervals[n-1-i], c.Intervals[i]
	}
	for i := range c.Intervals {
		c.Intervals[i] = -c.Intervals[i]
	}
	d := len(c.Durations)
	for i := 0; i < d/2; i++ {
		c.Durations[i], c.Durations[d-1-i] = c.Durations[d-1-i], c.Durations[i]
		c.Articulations[i], c.Articulations[d-1-i] = c.Articulations[d-1-i], c.Articulations[i]
	}
	return c
}

// Sequence restates the motif starting at the given interval above (or
// below) its original start, doubling its length. The connecting interval
// is chosen so the restatement begins exactly seqInterval away.
func Sequence(m Motif, seqInterval int) Motif {
	c := m.child(TransformSequence)

	shapeSum := 0
	for _, iv := range m.Intervals {
		shapeSum += iv
	}
	connecting := seqInterval - shapeSum

	c.Intervals = append(c.Intervals, connecting)
	c.Intervals = append(c.Intervals, m.Intervals...)
	c.Durations = append(c.Durations, m.Durations...)
	c.Articulations = append(c.Articulations, m.Articulations...)
	return c
}

// Augment doubles every duration (half-speed statement).
func Augment(m Motif) Motif {
	c := m.child(TransformAugment)
	for i := range c.Durations {
		c.Durations[i] *= 2
	}
	return c
}

// Diminish halves every duration (double-speed statement).
func Diminish(m Motif) Motif {
	c := m.child(TransformDiminish)
	for i := range c.Durations {
		c.Durations[i] /= 2
	}
	return c
}

// Fragment keeps only the first n steps of the motif. n is clamped to the
// motif's length; a fragment of fewer than two steps keeps two so the result
// still has a contour.
func Fragment(m Motif, n int) Motif {
	if n < 2 {
		n = 2
	}
	if n >= m.Steps() {
		n = m.Steps()
	}
	c := m.child(TransformFragment)
	c.Intervals = c.Intervals[:n-1]
	c.Durations = c.Durations[:n]
	c.Articulations = c.Articulations[:n]
	return c
}

// truncateToFit cuts steps from the end until the motif fits the given span,
// marking the result truncated. The cut is deterministic: always from the
// end, never replacing material.
func truncateToFit(m Motif, maxBeats float64) Motif {
	if m.TotalBeats() <= maxBeats {
		return m
	}
	c := m.child(TransformFragment)
	c.Truncated = true
	total := 0.0
	keep := 0
	for _, d := range c.Durations {
		if total+d > maxBeats {
			break
		}
		total += d
		keep++
	}
	if keep < 1 {
		keep = 1
		c.Durations[0] = maxBeats
	}
	c.Durations = c.Durations[:keep]
	c.Articulations = c.Articulations[:keep]
	if keep > 1 {
		c.Intervals = c.Intervals[:keep-1]
	} else {
		c.Intervals = nil
	}
	return c
}

// defaultArticulations fills a slice with the normal articulation hint.
func defaultArticulations(n int) []string {
	arts := make([]string, n)
	for i := range arts {
		arts[i] = models.ArticulationNormal
	}
	return arts
}
