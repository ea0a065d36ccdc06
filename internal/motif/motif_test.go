package motif

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/rankinbc/leadgen/internal/models"
)

func testMotif() Motif {
	return Motif{
		ID:            "seed-1",
		Intervals:     []int{2, 2, -4, 7},
		Durations:     []float64{0.5, 0.5, 1.0, 0.5, 1.5},
		Articulations: defaultArticulations(5),
		Genre:         "trance",
	}
}

func TestRetrogradeIsInvolution(t *testing.T) {
	m := testMotif()
	twice := Retrograde(Retrograde(m))

	if !reflect.DeepEqual(twice.Intervals, m.Intervals) {
		t.Errorf("retrograde twice changed intervals: %v -> %v", m.Intervals, twice.Intervals)
	}
	if !reflect.DeepEqual(twice.Durations, m.Durations) {
		t.Errorf("retrograde twice changed durations: %v -> %v", m.Durations, twice.Durations)
	}
}

func TestInvertIsInvolution(t *testing.T) {
	m := testMotif()
	twice := Invert(Invert(m))

	if !reflect.DeepEqual(twice.Intervals, m.Intervals) {
		t.Errorf("invert twice changed intervals: %v -> %v", m.Intervals, twice.Intervals)
	}
}

func TestTransformsPreserveSource(t *testing.T) {
	m := testMotif()
	original := append([]int(nil), m.Intervals...)

	_ = Invert(m)
	_ = Retrograde(m)
	_ = Sequence(m, 2)
	_ = Fragment(m, 3)
	_ = Augment(m)

	if !reflect.DeepEqual(m.Intervals, original) {
		t.Errorf("source motif mutated: %v -> %v", original, m.Intervals)
	}
}

func TestLineagePointers(t *testing.T) {
	m := testMotif()
	inv := Invert(m)
	seq := Sequence(inv, 2)

	if inv.ParentID != m.ID {
		t.Errorf("invert parent = %q, want %q", inv.ParentID, m.ID)
	}
	if seq.ParentID != inv.ID {
		t.Errorf("sequence parent = %q, want %q", seq.ParentID, inv.ID)
	}
	if inv.Transform != TransformInvert || seq.Transform != TransformSequence {
		t.Errorf("transform tags wrong: %s, %s", inv.Transform, seq.Transform)
	}
}

func TestSequenceRestatesAtInterval(t *testing.T) {
	m := testMotif()
	seq := Sequence(m, 2)

	if seq.Steps() != m.Steps()*2 {
		t.Fatalf("sequence steps = %d, want %d", seq.Steps(), m.Steps()*2)
	}

	pitches := seq.Pitches(60)
	// The restatement must start exactly 2 semitones above the original start.
	if pitches[m.Steps()] != 62 {
		t.Errorf("restatement starts at %d, want 62", pitches[m.Steps()])
	}
	// And preserve the shape.
	for i := 1; i < m.Steps(); i++ {
		origDelta := pitches[i] - pitches[i-1]
		restDelta := pitches[m.Steps()+i] - pitches[m.Steps()+i-1]
		if origDelta != restDelta {
			t.Errorf("step %d: restatement delta %d, want %d", i, restDelta, origDelta)
		}
	}
}

func TestTransposeShiftsRealization(t *testing.T) {
	m := testMotif()
	up := Transpose(m, 5)

	orig := m.Pitches(60)
	shifted := up.Pitches(60)
	for i := range orig {
		if shifted[i] != orig[i]+5 {
			t.Errorf("pitch %d: %d, want %d", i, shifted[i], orig[i]+5)
		}
	}
}

func TestFragment(t *testing.T) {
	m := testMotif()
	frag := Fragment(m, 3)

	if frag.Steps() != 3 {
		t.Errorf("fragment steps = %d, want 3", frag.Steps())
	}
	if len(frag.Intervals) != 2 {
		t.Errorf("fragment intervals = %d, want 2", len(frag.Intervals))
	}
	if !reflect.DeepEqual(frag.Intervals, m.Intervals[:2]) {
		t.Errorf("fragment kept wrong intervals: %v", frag.Intervals)
	}
}

func TestTruncateToFit(t *testing.T) {
	m := testMotif() // 4.0 beats total
	cut := truncateToFit(m, 2.0)

	if !cut.Truncated {
		t.Error("truncated flag not set")
	}
	if cut.TotalBeats() > 2.0 {
		t.Errorf("truncated motif still %.2f beats", cut.TotalBeats())
	}
	// 0.5 + 0.5 + 1.0 fits exactly
	if cut.Steps() != 3 {
		t.Errorf("truncated steps = %d, want 3", cut.Steps())
	}

	whole := truncateToFit(m, 10.0)
	if whole.Truncated {
		t.Error("motif that fits must not be flagged truncated")
	}
}

func TestGenerateSeedDeterministic(t *testing.T) {
	a := GenerateSeed("trance", 0.9, rand.New(rand.NewSource(42)))
	b := GenerateSeed("trance", 0.9, rand.New(rand.NewSource(42)))

	if !reflect.DeepEqual(a.Intervals, b.Intervals) {
		t.Errorf("same seed produced different intervals: %v vs %v", a.Intervals, b.Intervals)
	}
	if !reflect.DeepEqual(a.Durations, b.Durations) {
		t.Errorf("same seed produced different durations: %v vs %v", a.Durations, b.Durations)
	}
}

func TestGenerateSeedEnergyShortensNotes(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	calm := GenerateSeed("trance", 0.1, rng)

	rng = rand.New(rand.NewSource(7))
	intense := GenerateSeed("trance", 0.95, rng)

	if intense.TotalBeats() >= calm.TotalBeats() {
		t.Errorf("high energy should shorten note values: %.2f vs %.2f beats",
			intense.TotalBeats(), calm.TotalBeats())
	}
}

func TestGenerateSeedUnknownGenreFallsBack(t *testing.T) {
	m := GenerateSeed("polka", 0.5, rand.New(rand.NewSource(1)))
	if m.Genre != "trance" {
		t.Errorf("unknown genre fell back to %q, want trance", m.Genre)
	}
	if m.Steps() == 0 {
		t.Error("fallback seed is empty")
	}
}

func TestDevelopMelodyMotifsCoversTarget(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	seed := GenerateSeed("trance", 0.7, rng)

	tiled := DevelopMelodyMotifs([]Motif{seed}, 4, 4.0, rng)
	if len(tiled) == 0 {
		t.Fatal("no motifs tiled")
	}

	total := 0.0
	for _, m := range tiled {
		total += m.TotalBeats()
	}
	if total > 16.0+1e-9 {
		t.Errorf("tiled %.2f beats, budget 16", total)
	}
	if total < 16.0-1e-9 {
		t.Errorf("tiled %.2f beats, expected full coverage of 16", total)
	}

	// Every statement after the first must be a transformed variation.
	for i, m := range tiled[1:] {
		if m.Transform == TransformNone {
			t.Errorf("statement %d is an untransformed repeat", i+1)
		}
	}
}

func TestDefaultArticulations(t *testing.T) {
	arts := defaultArticulations(3)
	for _, a := range arts {
		if a != models.ArticulationNormal {
			t.Errorf("unexpected articulation %q", a)
		}
	}
}
