package motif

import (
	"math"

	"github.com/rankinbc/leadgen/internal/theory"
)

// Context is what the selector scores candidates against: the chord sounding
// at the selection point plus the session's key, scale, energy and genre.
type Context struct {
	Chord  theory.Chord
	Key    theory.Key
	Scale  theory.ScaleType
	Energy float64
	Genre  string
}

// Memory is the session-scoped motif store. It biases future selection
// toward material already used this session (coherence) while penalizing
// immediate repetition (freshness). One Memory belongs to exactly one
// generation session; sharing across concurrent sessions requires external
// synchronization.
type Memory struct {
	entries []*entry
	byID    map[string]*entry
	clock   int
}

type entry struct {
	motif    Motif
	useCount int
	lastUsed int
}

// Selection weights.
const (
	weightFreshness = 0.35
	weightFit       = 0.50
	weightFamiliar  = 0.15
	usagePenalty    = 0.05
	freshnessTau    = 3.0

	// minFitThreshold is the harmonic-fit floor below which no stored motif
	// is selected and a new seed is generated instead.
	minFitThreshold = 0.5
)

// NewMemory creates an empty session memory.
func NewMemory() *Memory {
	return &Memory{byID: make(map[string]*entry)}
}

// Size returns the number of distinct motifs stored.
func (mem *Memory) Size() int {
	return len(mem.entries)
}

// Record stores a motif (or bumps its usage if already present) and
// advances the selection clock.
func (mem *Memory) Record(m Motif) {
	mem.clock++
	if e, ok := mem.byID[m.ID]; ok {
		e.useCount++
		e.lastUsed = mem.clock
		return
	}
	e := &entry{motif: m, useCount: 1, lastUsed: mem.clock}
	mem.entries = append(mem.entries, e)
	mem.byID[m.ID] = e
}

// SelectForContext picks the best-scoring stored motif for the context, or
// reports false when nothing clears the minimum harmonic-fit threshold (the
// caller then generates a fresh seed). Recently unused motifs score higher
// so identity is maintained without verbatim repetition fatigue.
func (mem *Memory) SelectForContext(ctx Context) (Motif, bool) {
	var best *entry
	bestScore := math.Inf(-1)

	for _, e := range mem.entries {
		fit := HarmonicFit(e.motif, ctx)
		if fit < minFitThreshold {
			continue
		}

		age := float64(mem.clock - e.lastUsed)
		freshness := 1.0 - math.Exp(-age/freshnessTau)

		genreBonus := 0.0
		if e.motif.Genre == ctx.Genre {
			genreBonus = weightFamiliar
		}

		score := weightFreshness*freshness + weightFit*fit + genreBonus -
			usagePenalty*float64(e.useCount)
		if score > bestScore {
			bestScore = score
			best = e
		}
	}

	if best == nil {
		return Motif{}, false
	}
	return best.motif, true
}

// DescendsFrom reports whether motif id has ancestor in its lineage chain,
// walking parent pointers through this session's memory.
func (mem *Memory) DescendsFrom(id, ancestor string) bool {
	for id != "" {
		if id == ancestor {
			return true
		}
		e, ok := mem.byID[id]
		if !ok {
			return false
		}
		id = e.motif.ParentID
	}
	return false
}

// HarmonicFit measures how well the motif's shape sits on the context's
// chord and scale: the fraction of realized pitches that are chord tones
// (full credit) or at least in scale (half credit), anchored on the chord
// root.
func HarmonicFit(m Motif, ctx Context) float64 {
	if m.Steps() == 0 {
		return 0
	}
	anchor := ctx.Chord.Root.MIDINote(4)
	pitches := m.Pitches(anchor)

	score := 0.0
	for _, p := range pitches {
		pc := theory.PitchClass(((p % 12) + 12) % 12)
		switch {
		case ctx.Chord.ContainsPitch(pc):
			score += 1.0
		case theory.IsInScale(pc, ctx.Key, ctx.Scale):
			score += 0.5
		}
	}
	return score / float64(len(pitches))
}
