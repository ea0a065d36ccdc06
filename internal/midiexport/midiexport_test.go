package midiexport

import (
	"bytes"
	"testing"

	"github.com/rankinbc/leadgen/internal/models"
)

func leadNotes() []models.NoteEvent {
	return []models.NoteEvent{
		{MidiNoteNumber: 81, Velocity: 100, StartBeats: 0, DurationBeats: 0.5, Articulation: models.ArticulationNormal},
		{MidiNoteNumber: 83, Velocity: 100, StartBeats: 0.5, DurationBeats: 0.5, Articulation: models.ArticulationStaccato},
		{MidiNoteNumber: 84, Velocity: 100, StartBeats: 1.0, DurationBeats: 1.0, Articulation: models.ArticulationLegato},
	}
}

func TestEncodeProducesValidSMFHeader(t *testing.T) {
	data, err := NewEncoder().Encode(leadNotes(), 138)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("MThd")) {
		t.Errorf("output does not start with an SMF header chunk")
	}
	if !bytes.Contains(data, []byte("MTrk")) {
		t.Errorf("output has no track chunk")
	}
}

func TestEncodeDeterministic(t *testing.T) {
	a, err := NewEncoder().Encode(leadNotes(), 138)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, err := NewEncoder().Encode(leadNotes(), 138)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("same notes encoded to different bytes")
	}
}

func TestEncodeEmpty(t *testing.T) {
	if _, err := NewEncoder().Encode(nil, 138); err == nil {
		t.Error("encoding no notes should fail")
	}
}

func TestEncodePitchRange(t *testing.T) {
	bad := []models.NoteEvent{{MidiNoteNumber: 200, Velocity: 100, StartBeats: 0, DurationBeats: 1}}
	if _, err := NewEncoder().Encode(bad, 138); err == nil {
		t.Error("out-of-range pitch should fail")
	}
}

func TestEncodeArticulationChangesBytes(t *testing.T) {
	normal := []models.NoteEvent{{MidiNoteNumber: 81, Velocity: 100, StartBeats: 0, DurationBeats: 1, Articulation: models.ArticulationNormal}}
	staccato := []models.NoteEvent{{MidiNoteNumber: 81, Velocity: 100, StartBeats: 0, DurationBeats: 1, Articulation: models.ArticulationStaccato}}

	a, err := NewEncoder().Encode(normal, 138)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, err := NewEncoder().Encode(staccato, 138)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Error("staccato gate should shorten the note and change the encoding")
	}
}
