package phrase

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/rankinbc/leadgen/internal/models"
	"github.com/rankinbc/leadgen/internal/motif"
	"github.com/rankinbc/leadgen/internal/theory"
)

func mustKey(t *testing.T, s string) theory.Key {
	t.Helper()
	k, err := theory.ParseKey(s)
	if err != nil {
		t.Fatalf("ParseKey(%q): %v", s, err)
	}
	return k
}

func progression(symbols []string, beatsEach float64) []models.ChordEvent {
	events := make([]models.ChordEvent, len(symbols))
	for i, s := range symbols {
		events[i] = models.ChordEvent{
			ChordSymbol:   s,
			StartBeats:    float64(i) * beatsEach,
			DurationBeats: beatsEach,
		}
	}
	return events
}

func TestPlanCadence(t *testing.T) {
	cMajor := mustKey(t, "C major")
	aMinor := mustKey(t, "A minor")

	tests := []struct {
		name    string
		key     theory.Key
		symbols []string
		want    CadenceType
	}{
		{"dominant to tonic is authentic", cMajor, []string{"C", "F", "G", "C"}, CadenceAuthentic},
		{"ending on dominant is half", cMajor, []string{"C", "Am", "F", "G"}, CadenceHalf},
		{"dominant to submediant is deceptive", cMajor, []string{"C", "F", "G", "Am"}, CadenceDeceptive},
		{"subdominant to tonic is plagal", cMajor, []string{"C", "Am", "F", "C"}, CadencePlagal},
		{"minor dominant to tonic is authentic", aMinor, []string{"Am", "F", "E", "Am"}, CadenceAuthentic},
		{"no pattern is none", cMajor, []string{"C", "F", "Dm"}, CadenceNone},
		{"lone dominant is half", cMajor, []string{"G"}, CadenceHalf},
		{"empty progression is none", cMajor, nil, CadenceNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlanCadence(progression(tt.symbols, 4.0), tt.key)
			if got != tt.want {
				t.Errorf("PlanCadence(%v) = %s, want %s", tt.symbols, got, tt.want)
			}
		})
	}
}

func testPlanner(t *testing.T) Planner {
	return Planner{
		Key:         mustKey(t, "A minor"),
		Scale:       theory.ScaleNaturalMinor,
		Genre:       "trance",
		Register:    models.RegisterBand{Low: 72, High: 91},
		BeatsPerBar: 4.0,
	}
}

func TestPlanFormByDuration(t *testing.T) {
	p := testPlanner(t)
	chords := progression([]string{"Am", "F", "C", "G", "Am", "F", "E", "Am"}, 4.0)

	short, err := p.Plan("drop", 4, 0.8, chords[:4])
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if short.Type != PhrasePeriod {
		t.Errorf("4-bar plan type = %s, want period", short.Type)
	}

	long, err := p.Plan("drop", 8, 0.8, chords)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if long.Type != PhraseSentence {
		t.Errorf("8-bar plan type = %s, want sentence", long.Type)
	}
}

func TestPlanClimaxEarlierWithEnergy(t *testing.T) {
	p := testPlanner(t)
	chords := progression([]string{"Am", "F", "C", "G", "Am", "F", "E", "Am"}, 4.0)

	hot, err := p.Plan("drop", 8, 0.95, chords)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	cool, err := p.Plan("drop", 8, 0.2, chords)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if hot.ClimaxBar >= cool.ClimaxBar {
		t.Errorf("high energy climax at bar %d, low energy at bar %d; want earlier peak for high energy",
			hot.ClimaxBar, cool.ClimaxBar)
	}
}

func TestPlanContourBySection(t *testing.T) {
	p := testPlanner(t)
	chords := progression([]string{"Am", "F", "C", "G"}, 4.0)

	tests := []struct {
		section string
		energy  float64
		want    ContourShape
	}{
		{"buildup", 0.5, ContourAscending},
		{"breakdown", 0.3, ContourDescending},
		{"drop", 0.9, ContourArch},
		{"verse", 0.3, ContourWave},
	}
	for _, tt := range tests {
		spec, err := p.Plan(tt.section, 4, tt.energy, chords)
		if err != nil {
			t.Fatalf("Plan(%s): %v", tt.section, err)
		}
		if spec.Contour != tt.want {
			t.Errorf("%s at energy %.1f: contour %s, want %s", tt.section, tt.energy, spec.Contour, tt.want)
		}
	}
}

func TestPlanMissingHarmony(t *testing.T) {
	p := testPlanner(t)

	_, err := p.Plan("drop", 8, 0.8, nil)
	var missing *MissingHarmonyError
	if !errors.As(err, &missing) {
		t.Fatalf("Plan with no chords: got %v, want MissingHarmonyError", err)
	}

	// Chords that stop short of the span must also fail.
	_, err = p.Plan("drop", 8, 0.8, progression([]string{"Am", "F"}, 4.0))
	if !errors.As(err, &missing) {
		t.Fatalf("Plan with partial coverage: got %v, want MissingHarmonyError", err)
	}
}

func renderTestPhrase(t *testing.T, seed int64) Phrase {
	t.Helper()
	p := testPlanner(t)
	chords := progression([]string{"Am", "F", "C", "G", "Am", "F", "E", "Am"}, 4.0)

	spec, err := p.Plan("drop", 8, 0.9, chords)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	ph, err := Render(spec, motif.NewMemory(), chords, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return ph
}

func TestRenderRegisterContainment(t *testing.T) {
	ph := renderTestPhrase(t, 42)
	if len(ph.Notes) == 0 {
		t.Fatal("rendered phrase has no notes")
	}
	for i, n := range ph.Notes {
		if !ph.Spec.Register.Contains(n.MidiNoteNumber) {
			t.Errorf("note %d pitch %d outside register [%d, %d]",
				i, n.MidiNoteNumber, ph.Spec.Register.Low, ph.Spec.Register.High)
		}
	}
}

func TestRenderNotesOrderedAndInSpan(t *testing.T) {
	ph := renderTestPhrase(t, 42)
	span := ph.Spec.TotalBeats()
	for i, n := range ph.Notes {
		if i > 0 && n.StartBeats < ph.Notes[i-1].StartBeats {
			t.Errorf("note %d starts before note %d", i, i-1)
		}
		if n.StartBeats < 0 || n.EndBeats() > span+1e-9 {
			t.Errorf("note %d span [%.2f, %.2f) escapes phrase span %.2f",
				i, n.StartBeats, n.EndBeats(), span)
		}
		if n.DurationBeats <= 0 {
			t.Errorf("note %d has non-positive duration", i)
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	a := renderTestPhrase(t, 7)
	b := renderTestPhrase(t, 7)
	if !reflect.DeepEqual(a.Notes, b.Notes) {
		t.Error("identical seeds produced different note sequences")
	}

	c := renderTestPhrase(t, 8)
	if reflect.DeepEqual(a.Notes, c.Notes) {
		t.Error("different seeds produced identical note sequences")
	}
}

func TestAnnotateBarOpenerNotASuspension(t *testing.T) {
	aMinor := mustKey(t, "A minor")
	am, err := theory.ParseChord("Am")
	if err != nil {
		t.Fatalf("ParseChord: %v", err)
	}

	// B4 opens the bar off-chord and steps down to A4. With no approach
	// note it cannot be a held-over suspension.
	notes := []models.NoteEvent{
		{MidiNoteNumber: 71, StartBeats: 0, DurationBeats: 0.5},
		{MidiNoteNumber: 69, StartBeats: 0.5, DurationBeats: 0.5},
	}
	annotate(notes, am, aMinor, theory.ScaleNaturalMinor)

	if notes[0].Tension != models.TensionMild {
		t.Errorf("opener tension = %s, want mild", notes[0].Tension)
	}
	if notes[1].Tension != models.TensionStable {
		t.Errorf("chord tone tension = %s, want stable", notes[1].Tension)
	}
}

func TestRenderAuthenticCadenceResolves(t *testing.T) {
	ph := renderTestPhrase(t, 42)
	if ph.Spec.Cadence != CadenceAuthentic {
		t.Fatalf("cadence = %s, want authentic", ph.Spec.Cadence)
	}
	last := ph.Notes[len(ph.Notes)-1]
	if !last.IsChordTone {
		t.Error("authentic cadence must end on a chord tone")
	}
	if last.Tension != models.TensionStable {
		t.Errorf("cadence note tension = %s, want stable", last.Tension)
	}
}

func TestRenderMissingHarmony(t *testing.T) {
	p := testPlanner(t)
	chords := progression([]string{"Am", "F", "C", "G"}, 4.0)
	spec, err := p.Plan("drop", 4, 0.8, chords)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	var missing *MissingHarmonyError
	if _, err := Render(spec, motif.NewMemory(), nil, rand.New(rand.NewSource(1))); !errors.As(err, &missing) {
		t.Fatalf("Render with no chords: got %v, want MissingHarmonyError", err)
	}
}
