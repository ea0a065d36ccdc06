package motif

import (
	"testing"

	"github.com/rankinbc/leadgen/internal/theory"
)

func amContext(t *testing.T) Context {
	t.Helper()
	chord, err := theory.ParseChord("Am")
	if err != nil {
		t.Fatalf("ParseChord(Am): %v", err)
	}
	key, err := theory.ParseKey("A minor")
	if err != nil {
		t.Fatalf("ParseKey(A minor): %v", err)
	}
	return Context{
		Chord:  chord,
		Key:    key,
		Scale:  theory.ScaleNaturalMinor,
		Energy: 0.7,
		Genre:  "trance",
	}
}

// arpeggio over the chord root lands every pitch on a chord tone.
func chordToneMotif(id string) Motif {
	return Motif{
		ID:            id,
		Intervals:     []int{3, 4, 5}, // root, m3, P5, octave
		Durations:     []float64{0.5, 0.5, 0.5, 0.5},
		Articulations: defaultArticulations(4),
		Genre:         "trance",
	}
}

// chromatic cluster hanging on the flat second misses chord and scale alike.
func chromaticMotif(id string) Motif {
	return Motif{
		ID:            id,
		Intervals:     []int{1, 0, 0},
		Durations:     []float64{0.5, 0.5, 0.5, 0.5},
		Articulations: defaultArticulations(4),
		Genre:         "trance",
	}
}

func TestHarmonicFit(t *testing.T) {
	ctx := amContext(t)

	if fit := HarmonicFit(chordToneMotif("a"), ctx); fit != 1.0 {
		t.Errorf("arpeggio fit = %.2f, want 1.0", fit)
	}
	if fit := HarmonicFit(chromaticMotif("b"), ctx); fit >= minFitThreshold {
		t.Errorf("chromatic cluster fit = %.2f, want < %.2f", fit, minFitThreshold)
	}
}

func TestSelectForContextPrefersFit(t *testing.T) {
	mem := NewMemory()
	ctx := amContext(t)

	good := chordToneMotif("good")
	bad := chromaticMotif("bad")
	mem.Record(bad)
	mem.Record(good)

	picked, ok := mem.SelectForContext(ctx)
	if !ok {
		t.Fatal("expected a selection")
	}
	if picked.ID != "good" {
		t.Errorf("picked %q, want %q", picked.ID, "good")
	}
}

func TestSelectForContextThreshold(t *testing.T) {
	mem := NewMemory()
	mem.Record(chromaticMotif("only"))

	if _, ok := mem.SelectForContext(amContext(t)); ok {
		t.Error("selection should fail when nothing clears the fit threshold")
	}
}

func TestSelectForContextEmptyMemory(t *testing.T) {
	mem := NewMemory()
	if _, ok := mem.SelectForContext(amContext(t)); ok {
		t.Error("empty memory must not select")
	}
}

func TestSelectPenalizesRecentUse(t *testing.T) {
	mem := NewMemory()
	ctx := amContext(t)

	a := chordToneMotif("a")
	b := chordToneMotif("b")
	mem.Record(a)
	mem.Record(b)

	// Use a heavily so its freshness drops below b's.
	mem.Record(a)
	mem.Record(a)
	mem.Record(a)

	picked, ok := mem.SelectForContext(ctx)
	if !ok {
		t.Fatal("expected a selection")
	}
	if picked.ID != "b" {
		t.Errorf("picked %q, want the rested motif %q", picked.ID, "b")
	}
}

func TestRecordBumpsExisting(t *testing.T) {
	mem := NewMemory()
	m := chordToneMotif("m")
	mem.Record(m)
	mem.Record(m)

	if mem.Size() != 1 {
		t.Errorf("size = %d, want 1", mem.Size())
	}
}

func TestDescendsFrom(t *testing.T) {
	mem := NewMemory()
	seed := chordToneMotif("") // get a real uuid via child
	seed.ID = "seed"

	inv := Invert(seed)
	seq := Sequence(inv, 2)
	mem.Record(seed)
	mem.Record(inv)
	mem.Record(seq)

	if !mem.DescendsFrom(seq.ID, "seed") {
		t.Error("grandchild should descend from seed")
	}
	if !mem.DescendsFrom(inv.ID, "seed") {
		t.Error("child should descend from seed")
	}
	if mem.DescendsFrom("seed", seq.ID) {
		t.Error("ancestry must not run backwards")
	}
	if mem.DescendsFrom(seq.ID, "unrelated") {
		t.Error("unrelated id reported as ancestor")
	}
}
