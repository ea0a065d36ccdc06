package coordination

import (
	"fmt"
	"sort"

	"github.com/rankinbc/leadgen/internal/config"
	"github.com/rankinbc/leadgen/internal/models"
	"github.com/rankinbc/leadgen/internal/theory"
)

// Coordinator guards the lead against destructive interaction with sibling
// tracks: register overlap, unison collisions, excessive parallel motion
// and onset-density pileups. All thresholds are genre-tuned configuration,
// not constants.
type Coordinator struct {
	ToleranceBeats float64
	BlockSeverity  float64
	ShiftBudget    int
	DensityWindow  float64
	ThinOutRatio   float64

	bands map[models.TrackRole]models.RegisterBand
}

// New builds a Coordinator from the application configuration.
func New(cfg *config.Config) *Coordinator {
	return &Coordinator{
		ToleranceBeats: cfg.CollisionToleranceBeats,
		BlockSeverity:  cfg.CollisionBlockSeverity,
		ShiftBudget:    cfg.MaxPitchShiftSemitones,
		DensityWindow:  cfg.DensityWindowBeats,
		ThinOutRatio:   cfg.DensityThinOutRatio,
		bands: map[models.TrackRole]models.RegisterBand{
			models.RoleBass: {Low: cfg.BassRegisterLow, High: cfg.BassRegisterHigh},
			models.RolePad:  {Low: cfg.PadRegisterLow, High: cfg.PadRegisterHigh},
			models.RoleArp:  {Low: cfg.ArpRegisterLow, High: cfg.ArpRegisterHigh},
			models.RoleLead: {Low: cfg.LeadRegisterLow, High: cfg.LeadRegisterHigh},
		},
	}
}

// roleOrder is the bottom-up register stacking of the arrangement.
var roleOrder = []models.TrackRole{models.RoleBass, models.RolePad, models.RoleArp, models.RoleLead}

// AllocateRegisters assigns a register band to each requested role. The
// configured defaults may overlap at the edges; allocation trims each band
// above the one below it so the returned mapping is non-overlapping. High
// energy lifts the lead band so the hook sits on top of a busy mix.
func (c *Coordinator) AllocateRegisters(roles []models.TrackRole, energy float64) map[models.TrackRole]models.RegisterBand {
	requested := make(map[models.TrackRole]bool, len(roles))
	for _, r := range roles {
		requested[r] = true
	}

	out := make(map[models.TrackRole]models.RegisterBand, len(roles))
	floor := -1
	for _, role := range roleOrder {
		if !requested[role] {
			continue
		}
		band := c.bands[role]
		if role == models.RoleLead && energy >= 0.8 {
			band.Low += 3
			band.High += 3
		}
		if band.Low <= floor {
			band.Low = floor + 1
		}
		if band.High < band.Low+12 {
			band.High = band.Low + 12
		}
		out[role] = band
		floor = band.High
	}
	return out
}

// Collision records a candidate lead note landing on the same pitch as a
// sounding sibling note. Severity scales with the overlap length, with a
// bump for simultaneous attacks.
type Collision struct {
	Candidate int // index into the candidate note slice
	Note      models.NoteEvent
	Against   models.NoteEvent
	Role      models.TrackRole
	Severity  float64
}

// DetectCollisions flags every candidate note whose span overlaps a sibling
// note at the same pitch for longer than the tolerance window. Results are
// ordered by the candidate note's start time.
func (c *Coordinator) DetectCollisions(candidate []models.NoteEvent, ctx models.TrackContext) []Collision {
	var collisions []Collision
	for i, n := range candidate {
		for _, track := range ctx.Tracks {
			for _, other := range track.Notes {
				if sev := c.collisionSeverity(n, other); sev > 0 {
					collisions = append(collisions, Collision{
						Candidate: i,
						Note:      n,
						Against:   other,
						Role:      track.Role,
						Severity:  sev,
					})
				}
			}
		}
	}
	sort.SliceStable(collisions, func(a, b int) bool {
		return collisions[a].Note.StartBeats < collisions[b].Note.StartBeats
	})
	return collisions
}

// collisionSeverity returns 0 when the notes do not collide, otherwise a
// positive severity.
func (c *Coordinator) collisionSeverity(a, b models.NoteEvent) float64 {
	if a.MidiNoteNumber != b.MidiNoteNumber || !a.Overlaps(b) {
		return 0
	}
	overlap := minFloat(a.EndBeats(), b.EndBeats()) - maxFloat(a.StartBeats, b.StartBeats)
	if overlap <= c.ToleranceBeats {
		return 0
	}
	sev := overlap
	if absFloat(a.StartBeats-b.StartBeats) <= c.ToleranceBeats {
		sev += 0.5 // simultaneous attack doubles down on the clash
	}
	return sev
}

// TotalSeverity sums collision severities for the blocking decision.
func TotalSeverity(collisions []Collision) float64 {
	total := 0.0
	for _, col := range collisions {
		total += col.Severity
	}
	return total
}

// Blocking reports whether the aggregate collision severity crosses the
// re-render threshold.
func (c *Coordinator) Blocking(collisions []Collision) bool {
	return TotalSeverity(collisions) > c.BlockSeverity
}

// Resolution is the corrective shift proposed for a collision. A pitch
// shift is preferred; a timing offset is the fallback. Resolved is false
// when neither clears the clash within the shift budget.
type Resolution struct {
	NewPitch     int
	TimingOffset float64
	Resolved     bool
}

// Resolve proposes a fix for one collision: first a diatonic step shift
// (keeps the note on-scale), widening up to the semitone budget, then a
// small timing offset. The caller applies the resolution; unresolved
// collisions are surfaced as soft warnings, never as errors.
func (c *Coordinator) Resolve(col Collision, ctx models.TrackContext, key theory.Key, scale theory.ScaleType) Resolution {
	for steps := 1; steps <= 2; steps++ {
		for _, dir := range []int{1, -1} {
			shifted := theory.StepInScale(col.Note.MidiNoteNumber, steps*dir, key, scale)
			if abs(shifted-col.Note.MidiNoteNumber) > c.ShiftBudget {
				continue
			}
			trial := col.Note
			trial.MidiNoteNumber = shifted
			if !c.collidesWithContext(trial, ctx) {
				return Resolution{NewPitch: shifted, Resolved: true}
			}
		}
	}

	// Secondary strategy: push the attack past the sibling note.
	trial := col.Note
	offset := col.Against.EndBeats() - col.Note.StartBeats + c.ToleranceBeats
	if offset > 0 && offset < trial.DurationBeats {
		trial.StartBeats += offset
		trial.DurationBeats -= offset
		if !c.collidesWithContext(trial, ctx) {
			return Resolution{NewPitch: col.Note.MidiNoteNumber, TimingOffset: offset, Resolved: true}
		}
	}

	return Resolution{NewPitch: col.Note.MidiNoteNumber, Resolved: false}
}

func (c *Coordinator) collidesWithContext(n models.NoteEvent, ctx models.TrackContext) bool {
	for _, track := range ctx.Tracks {
		for _, other := range track.Notes {
			if c.collisionSeverity(n, other) > 0 {
				return true
			}
		}
	}
	return false
}

// ResolveAll detects and resolves collisions in place over a copy of the
// candidate notes. It returns the corrected notes plus a warning per
// collision that could not be cleared within the shift budget.
func (c *Coordinator) ResolveAll(candidate []models.NoteEvent, ctx models.TrackContext, key theory.Key, scale theory.ScaleType) ([]models.NoteEvent, []string) {
	out := make([]models.NoteEvent, len(candidate))
	copy(out, candidate)

	var warnings []string
	for _, col := range c.DetectCollisions(out, ctx) {
		// The note may already have been moved by an earlier resolution.
		if c.collisionSeverity(out[col.Candidate], col.Against) == 0 {
			continue
		}
		res := c.Resolve(col, ctx, key, scale)
		if !res.Resolved {
			warnings = append(warnings, fmt.Sprintf(
				"unresolved collision with %s at beat %.2f (pitch %d, severity %.2f)",
				col.Role, col.Note.StartBeats, col.Note.MidiNoteNumber, col.Severity))
			continue
		}
		out[col.Candidate].MidiNoteNumber = res.NewPitch
		out[col.Candidate].StartBeats += res.TimingOffset
		out[col.Candidate].DurationBeats -= res.TimingOffset
	}
	return out, warnings
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
