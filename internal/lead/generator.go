package lead

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/rankinbc/leadgen/internal/config"
	"github.com/rankinbc/leadgen/internal/coordination"
	"github.com/rankinbc/leadgen/internal/logger"
	"github.com/rankinbc/leadgen/internal/models"
	"github.com/rankinbc/leadgen/internal/motif"
	"github.com/rankinbc/leadgen/internal/phrase"
	"github.com/rankinbc/leadgen/internal/theory"
)

// Stage names the pipeline step a generation failure occurred in.
type Stage string

const (
	StagePlan       Stage = "plan"
	StageDevelop    Stage = "develop"
	StageRender     Stage = "render"
	StageCoordinate Stage = "coordinate"
)

// GenerationError wraps an unrecoverable pipeline failure with the stage
// it occurred in. Only harmony problems (malformed chords, missing
// progression) abort generation; coordination trouble degrades to
// warnings instead.
type GenerationError struct {
	Stage Stage
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed at %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Request describes one section to generate a lead for. The same request
// with the same seed always produces the same notes.
type Request struct {
	SectionType string              `json:"sectionType"`
	Bars        int                 `json:"bars"`
	Energy      float64             `json:"energy"`
	Genre       string              `json:"genre"`
	Key         string              `json:"key"`
	Scale       string              `json:"scale,omitempty"`
	Progression []models.ChordEvent `json:"progression"`
	Seed        int64               `json:"seed"`
	Context     models.TrackContext `json:"context,omitempty"`
}

// Result is a finished generation: the notes plus everything a caller
// needs to understand what was produced.
type Result struct {
	Notes    []models.NoteEvent `json:"notes"`
	Spec     phrase.PhraseSpec  `json:"spec"`
	Cadence  string             `json:"cadence"`
	Warnings []string           `json:"warnings,omitempty"`
	Retries  int                `json:"retries"`
}

// Generator orchestrates the pipeline: plan, develop, render, coordinate,
// with one bounded re-render when collisions block. A Generator is
// stateless across calls; each call owns its motif memory and random
// stream, so concurrent calls are safe.
type Generator struct {
	cfg         *config.Config
	coordinator *coordination.Coordinator
}

// New builds a Generator from the application configuration.
func New(cfg *config.Config) *Generator {
	return &Generator{cfg: cfg, coordinator: coordination.New(cfg)}
}

// GenerateForSection runs the full pipeline for one section and returns
// the ordered note sequence. It fails only on unrecoverable harmony
// errors; collisions and density pressure surface as warnings on the
// Result.
func (g *Generator) GenerateForSection(req Request) (*Result, error) {
	// PLAN: validate the tonal context and the progression up front so
	// later stages never see malformed harmony.
	key, scale, err := g.resolveTonality(req)
	if err != nil {
		return nil, &GenerationError{Stage: StagePlan, Err: err}
	}
	for _, ev := range req.Progression {
		if _, err := theory.ParseChord(ev.ChordSymbol); err != nil {
			return nil, &GenerationError{Stage: StagePlan, Err: err}
		}
	}

	genre := req.Genre
	if genre == "" {
		genre = g.cfg.DefaultGenre
	}

	roles := contextRoles(req.Context)
	register := g.coordinator.AllocateRegisters(roles, req.Energy)[models.RoleLead]

	planner := phrase.Planner{
		Key:         key,
		Scale:       scale,
		Genre:       genre,
		Register:    register,
		BeatsPerBar: 4.0,
	}
	spec, err := planner.Plan(req.SectionType, req.Bars, req.Energy, req.Progression)
	if err != nil {
		return nil, &GenerationError{Stage: StagePlan, Err: err}
	}

	logger.Info("section planned", logger.Fields{
		"section": req.SectionType,
		"bars":    req.Bars,
		"form":    spec.Type.String(),
		"contour": spec.Contour.String(),
		"cadence": spec.Cadence.String(),
	})

	// DEVELOP: seed the session memory so rendering has material with
	// lineage to select from and vary.
	rng := rand.New(rand.NewSource(req.Seed))
	mem := motif.NewMemory()
	seedMotif := motif.GenerateSeed(genre, req.Energy, rng)
	for _, m := range motif.DevelopMelodyMotifs([]motif.Motif{seedMotif}, req.Bars, spec.BeatsPerBar, rng) {
		mem.Record(m)
	}

	// RENDER → COORDINATE, with one bounded revision: when collisions
	// block, re-render on an alternate contour and keep the better take.
	best, bestSeverity, retries, err := g.renderBest(spec, mem, req, rng)
	if err != nil {
		return nil, &GenerationError{Stage: StageRender, Err: err}
	}

	resolved, warnings := g.coordinator.ResolveAll(best.Notes, req.Context, key, scale)
	warnings = append(warnings, g.adviceWarnings(resolved, req)...)

	sort.SliceStable(resolved, func(i, j int) bool {
		return resolved[i].StartBeats < resolved[j].StartBeats
	})

	logger.Info("section generated", logger.Fields{
		"notes":    len(resolved),
		"retries":  retries,
		"severity": bestSeverity,
		"warnings": len(warnings),
	})

	return &Result{
		Notes:    resolved,
		Spec:     best.Spec,
		Cadence:  best.Spec.Cadence.String(),
		Warnings: warnings,
		Retries:  retries,
	}, nil
}

// renderBest renders a candidate phrase and, when its collisions cross the
// blocking threshold, re-renders once on an alternate contour. The lower
// severity candidate wins.
func (g *Generator) renderBest(spec phrase.PhraseSpec, mem *motif.Memory, req Request, rng *rand.Rand) (phrase.Phrase, float64, int, error) {
	candidate, err := phrase.Render(spec, mem, req.Progression, rng)
	if err != nil {
		return phrase.Phrase{}, 0, 0, err
	}
	severity := coordination.TotalSeverity(g.coordinator.DetectCollisions(candidate.Notes, req.Context))

	retries := 0
	for retries < g.cfg.MaxRenderRetries && severity > g.coordinator.BlockSeverity {
		retries++
		revised := spec
		revised.Contour = alternateContour(spec.Contour)

		logger.Warn("collisions block candidate, re-rendering", logger.Fields{
			"severity": severity,
			"contour":  revised.Contour.String(),
			"attempt":  retries,
		})

		take, err := phrase.Render(revised, mem, req.Progression, rng)
		if err != nil {
			return phrase.Phrase{}, 0, 0, err
		}
		takeSeverity := coordination.TotalSeverity(g.coordinator.DetectCollisions(take.Notes, req.Context))
		if takeSeverity < severity {
			candidate, severity = take, takeSeverity
		}
	}
	return candidate, severity, retries, nil
}

// adviceWarnings adds the soft signals that do not change the notes:
// excessive parallel motion with the bass and density pressure from busier
// siblings.
func (g *Generator) adviceWarnings(notes []models.NoteEvent, req Request) []string {
	var warnings []string

	report := g.coordinator.ClassifyMotion(notes, req.Context, models.RoleBass)
	if ratio := report.ParallelRatio(); ratio > 0.5 {
		warnings = append(warnings, fmt.Sprintf("lead shadows the bass: %.0f%% parallel motion", ratio*100))
	}

	spanEnd := float64(req.Bars) * 4.0
	for beat := g.cfg.DensityWindowBeats; beat <= spanEnd; beat += g.cfg.DensityWindowBeats {
		if g.coordinator.ShouldThinOut(notes, req.Context, beat) {
			warnings = append(warnings, fmt.Sprintf("busy sibling around beat %.0f: consider thinning the lead", beat))
			break
		}
	}
	return warnings
}

// resolveTonality parses the request's key and scale declarations, falling
// back to the key's default scale when none is given.
func (g *Generator) resolveTonality(req Request) (theory.Key, theory.ScaleType, error) {
	key, err := theory.ParseKey(req.Key)
	if err != nil {
		return theory.Key{}, 0, err
	}
	if req.Scale == "" {
		return key, key.DefaultScale(), nil
	}
	scale, err := theory.ParseScaleType(req.Scale)
	if err != nil {
		return theory.Key{}, 0, err
	}
	return key, scale, nil
}

// contextRoles lists the roles present in the context plus the lead
// itself, for register allocation.
func contextRoles(ctx models.TrackContext) []models.TrackRole {
	roles := []models.TrackRole{models.RoleLead}
	for _, t := range ctx.Tracks {
		if t.Role != models.RoleLead {
			roles = append(roles, t.Role)
		}
	}
	return roles
}

// alternateContour picks the revision contour: flatten peaks into waves
// and straight lines into arches so the retry actually explores different
// registers.
func alternateContour(c phrase.ContourShape) phrase.ContourShape {
	switch c {
	case phrase.ContourArch:
		return phrase.ContourWave
	case phrase.ContourWave:
		return phrase.ContourArch
	case phrase.ContourAscending:
		return phrase.ContourArch
	default:
		return phrase.ContourWave
	}
}
