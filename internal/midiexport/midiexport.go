package midiexport

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/rankinbc/leadgen/internal/models"
)

const defaultTicksPerQuarter = 480

// Encoder turns generated note sequences into a single-track Standard
// MIDI File. Articulation hints shape the gate length and velocity the
// same way a 303-style sequencer would.
type Encoder struct {
	TicksPerQuarter uint16
	Channel         uint8
}

func NewEncoder() *Encoder {
	return &Encoder{TicksPerQuarter: defaultTicksPerQuarter}
}

// gateRatio is the fraction of the written duration the note actually
// sounds. Legato runs full length so adjacent notes slur.
func gateRatio(articulation string) float64 {
	switch articulation {
	case models.ArticulationStaccato:
		return 0.55
	case models.ArticulationLegato:
		return 1.0
	default:
		return 0.85
	}
}

type timedMessage struct {
	tick uint32
	msg  smf.Message
	// offs sort before ons at the same tick so retriggered pitches
	// don't cancel themselves
	isOff bool
}

// Encode renders the notes into SMF bytes at the given tempo.
func (e *Encoder) Encode(notes []models.NoteEvent, tempoBPM float64) ([]byte, error) {
	if len(notes) == 0 {
		return nil, errors.New("no notes to encode")
	}
	if tempoBPM <= 0 {
		tempoBPM = 120.0
	}
	tpq := e.TicksPerQuarter
	if tpq == 0 {
		tpq = defaultTicksPerQuarter
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(tpq)

	var track smf.Track
	track.Add(0, smf.MetaTempo(tempoBPM))
	track.Add(0, smf.MetaMeter(4, 4))

	var events []timedMessage
	for _, n := range notes {
		if n.MidiNoteNumber < 0 || n.MidiNoteNumber > 127 {
			return nil, fmt.Errorf("pitch %d out of MIDI range", n.MidiNoteNumber)
		}
		velocity := n.Velocity
		if velocity <= 0 {
			velocity = 100
		}
		if n.Articulation == models.ArticulationAccent {
			velocity += 15
		}
		if velocity > 127 {
			velocity = 127
		}

		onTick := beatsToTicks(n.StartBeats, tpq)
		gate := n.DurationBeats * gateRatio(n.Articulation)
		offTick := beatsToTicks(n.StartBeats+gate, tpq)
		if offTick <= onTick {
			offTick = onTick + 1
		}

		key := uint8(n.MidiNoteNumber)
		events = append(events,
			timedMessage{tick: onTick, msg: smf.Message(midi.NoteOn(e.Channel, key, uint8(velocity)))},
			timedMessage{tick: offTick, msg: smf.Message(midi.NoteOff(e.Channel, key)), isOff: true},
		)
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].isOff && !events[j].isOff
	})

	var currentTick uint32
	for _, ev := range events {
		track.Add(ev.tick-currentTick, ev.msg)
		currentTick = ev.tick
	}
	track.Close(0)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

func beatsToTicks(beats float64, tpq uint16) uint32 {
	if beats < 0 {
		beats = 0
	}
	return uint32(math.Round(beats * float64(tpq)))
}
