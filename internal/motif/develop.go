package motif

import (
	"math/rand"
)

// Develop applies a single transform operator to a motif, returning the new
// variation. Sequence and Transpose draw their interval from the rng so
// repeated development stays varied but seed-deterministic.
func Develop(m Motif, transform TransformType, rng *rand.Rand) Motif {
	switch transform {
	case TransformTranspose:
		// Third up or down, diatonic snapping happens at render time.
		shifts := []int{3, 4, -3, -4, 5, -5}
		return Transpose(m, shifts[rng.Intn(len(shifts))])
	case TransformInvert:
		return Invert(m)
	case TransformRetrograde:
		return Retrograde(m)
	case TransformSequence:
		intervals := []int{2, -2, 3, -3}
		return Sequence(m, intervals[rng.Intn(len(intervals))])
	case TransformAugment:
		return Augment(m)
	case TransformDiminish:
		return Diminish(m)
	case TransformFragment:
		n := m.Steps()/2 + 1
		return Fragment(m, n)
	default:
		return m.child(TransformNone)
	}
}

// developmentCycle is the order transforms are tried while tiling. Light
// variation first (sequence, transpose), shape-altering operators later.
var developmentCycle = []TransformType{
	TransformSequence,
	TransformTranspose,
	TransformInvert,
	TransformFragment,
	TransformRetrograde,
	TransformDiminish,
}

// DevelopMelodyMotifs greedily tiles the given motifs end-to-end until
// targetBars is covered, applying a transform before every repetition beyond
// the first so the line develops instead of looping. When the remaining span
// is shorter than the next statement, the statement is truncated
// deterministically from its end and flagged, never silently replaced.
func DevelopMelodyMotifs(motifs []Motif, targetBars int, beatsPerBar float64, rng *rand.Rand) []Motif {
	if len(motifs) == 0 || targetBars <= 0 {
		return nil
	}

	targetBeats := float64(targetBars) * beatsPerBar
	var tiled []Motif
	covered := 0.0
	statement := 0

	for covered < targetBeats {
		source := motifs[statement%len(motifs)]

		next := source
		if statement > 0 {
			transform := developmentCycle[(statement-1)%len(developmentCycle)]
			next = Develop(source, transform, rng)
		}

		remaining := targetBeats - covered
		if next.TotalBeats() > remaining {
			next = truncateToFit(next, remaining)
		}
		if next.TotalBeats() <= 0 {
			break
		}

		tiled = append(tiled, next)
		covered += next.TotalBeats()
		statement++
	}

	return tiled
}
