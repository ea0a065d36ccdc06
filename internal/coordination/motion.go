package coordination

import (
	"github.com/rankinbc/leadgen/internal/models"
)

// MotionType describes how the lead moves relative to a sibling voice
// between two consecutive onsets.
type MotionType int

const (
	MotionNone MotionType = iota
	MotionContrary
	MotionParallel
	MotionOblique
)

func (m MotionType) String() string {
	switch m {
	case MotionContrary:
		return "contrary"
	case MotionParallel:
		return "parallel"
	case MotionOblique:
		return "oblique"
	}
	return "none"
}

// MotionReport tallies the voice-leading relationship between the lead and
// one sibling role across a candidate phrase.
type MotionReport struct {
	Contrary int
	Parallel int
	Oblique  int
	None     int
}

// ParallelRatio returns the share of classified intervals moving in
// parallel. Used to bias regeneration away from lead lines that shadow
// the bass.
func (r MotionReport) ParallelRatio() float64 {
	classified := r.Contrary + r.Parallel + r.Oblique
	if classified == 0 {
		return 0
	}
	return float64(r.Parallel) / float64(classified)
}

// ClassifyMotion compares each consecutive pair of candidate notes against
// the sibling note sounding at the same moments. Intervals where the
// sibling is silent at either onset count as none.
func (c *Coordinator) ClassifyMotion(candidate []models.NoteEvent, ctx models.TrackContext, role models.TrackRole) MotionReport {
	sibling := ctx.NotesForRole(role)
	var report MotionReport

	for i := 1; i < len(candidate); i++ {
		prev, cur := candidate[i-1], candidate[i]
		sPrev, okPrev := noteAt(sibling, prev.StartBeats)
		sCur, okCur := noteAt(sibling, cur.StartBeats)
		if !okPrev || !okCur {
			report.None++
			continue
		}

		leadDir := sign(cur.MidiNoteNumber - prev.MidiNoteNumber)
		sibDir := sign(sCur.MidiNoteNumber - sPrev.MidiNoteNumber)

		switch {
		case leadDir == 0 || sibDir == 0:
			report.Oblique++
		case leadDir == sibDir:
			report.Parallel++
		default:
			report.Contrary++
		}
	}
	return report
}

// noteAt finds the sibling note sounding at the given beat.
func noteAt(notes []models.NoteEvent, beat float64) (models.NoteEvent, bool) {
	for _, n := range notes {
		if beat >= n.StartBeats && beat < n.EndBeats() {
			return n, true
		}
	}
	return models.NoteEvent{}, false
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
