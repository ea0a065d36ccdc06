package coordination

import (
	"github.com/rankinbc/leadgen/internal/models"
)

// OnsetDensity counts note onsets per beat inside the rolling window
// ending at the given beat.
func (c *Coordinator) OnsetDensity(notes []models.NoteEvent, atBeat float64) float64 {
	if c.DensityWindow <= 0 {
		return 0
	}
	windowStart := atBeat - c.DensityWindow
	count := 0
	for _, n := range notes {
		if n.StartBeats >= windowStart && n.StartBeats < atBeat {
			count++
		}
	}
	return float64(count) / c.DensityWindow
}

// ShouldThinOut signals call-and-response spacing: when a sibling track is
// markedly busier than the lead inside the rolling window, the lead should
// reduce its onset density and leave the sibling room to speak.
func (c *Coordinator) ShouldThinOut(lead []models.NoteEvent, ctx models.TrackContext, atBeat float64) bool {
	leadDensity := c.OnsetDensity(lead, atBeat)
	for _, track := range ctx.Tracks {
		if track.Role == models.RoleLead {
			continue
		}
		if c.OnsetDensity(track.Notes, atBeat) > leadDensity*c.ThinOutRatio {
			return true
		}
	}
	return false
}
