package motif

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/rankinbc/leadgen/internal/models"
)

// seedTemplate is a genre-tagged melodic shape used as raw material for
// seed motifs. Intervals are scale-agnostic semitone deltas; durations are
// in beats.
type seedTemplate struct {
	name          string
	intervals     []int
	durations     []float64
	articulations []string
}

var genreTemplates = map[string][]seedTemplate{
	"trance": {
		{
			name:      "rolling 16ths",
			intervals: []int{0, 3, 0, -3, 0, 3, 5},
			durations: []float64{0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25},
			articulations: []string{
				models.ArticulationAccent, models.ArticulationNormal, models.ArticulationNormal, models.ArticulationNormal,
				models.ArticulationAccent, models.ArticulationNormal, models.ArticulationNormal, models.ArticulationNormal,
			},
		},
		{
			name:      "anthem pulse",
			intervals: []int{7, -2, -5, 2},
			durations: []float64{0.5, 0.5, 1.0, 0.5, 1.5},
			articulations: []string{
				models.ArticulationAccent, models.ArticulationNormal, models.ArticulationLegato,
				models.ArticulationNormal, models.ArticulationLegato,
			},
		},
	},
	"house": {
		{
			name:      "offbeat stab",
			intervals: []int{0, 5, -2},
			durations: []float64{0.5, 0.5, 0.5, 0.5},
			articulations: []string{
				models.ArticulationStaccato, models.ArticulationStaccato,
				models.ArticulationAccent, models.ArticulationStaccato,
			},
		},
		{
			name:      "bounce",
			intervals: []int{3, 4, -7},
			durations: []float64{0.75, 0.25, 0.5, 0.5},
			articulations: []string{
				models.ArticulationAccent, models.ArticulationNormal,
				models.ArticulationNormal, models.ArticulationStaccato,
			},
		},
	},
	"techno": {
		{
			name:      "hypnotic cell",
			intervals: []int{0, 0, 2},
			durations: []float64{0.25, 0.25, 0.5, 1.0},
			articulations: []string{
				models.ArticulationStaccato, models.ArticulationStaccato,
				models.ArticulationAccent, models.ArticulationLegato,
			},
		},
	},
	"ambient": {
		{
			name:      "drift",
			intervals: []int{4, 3},
			durations: []float64{2.0, 1.0, 1.0},
			articulations: []string{
				models.ArticulationLegato, models.ArticulationLegato, models.ArticulationLegato,
			},
		},
	},
}

// fallbackGenre is used when an unknown genre is requested.
const fallbackGenre = "trance"

// GenerateSeed creates a fresh seed motif for the genre, perturbed by the
// requested energy: higher energy widens intervals and shortens note values.
// Given the same rng state the output is fully deterministic.
func GenerateSeed(genre string, energy float64, rng *rand.Rand) Motif {
	templates, ok := genreTemplates[genre]
	if !ok {
		genre = fallbackGenre
		templates = genreTemplates[fallbackGenre]
	}
	tmpl := templates[rng.Intn(len(templates))]

	m := Motif{
		ID:            uuid.New().String(),
		Transform:     TransformNone,
		Genre:         genre,
		Intervals:     append([]int(nil), tmpl.intervals...),
		Durations:     append([]float64(nil), tmpl.durations...),
		Articulations: append([]string(nil), tmpl.articulations...),
	}

	// Energy above the midpoint stretches intervals outward; below it the
	// shape stays as written. Perturbation is per-step so repeated seeds
	// from the same template still differ.
	if energy > 0.5 {
		widen := energy - 0.5
		for i, iv := range m.Intervals {
			if iv != 0 && rng.Float64() < widen {
				if iv > 0 {
					m.Intervals[i] = iv + 1
				} else {
					m.Intervals[i] = iv - 1
				}
			}
		}
	}

	// High energy compresses note values toward driving subdivisions;
	// low energy relaxes them.
	scale := 1.0
	switch {
	case energy >= 0.8:
		scale = 0.5
	case energy >= 0.6:
		scale = 0.75
	case energy < 0.3:
		scale = 2.0
	}
	if scale != 1.0 {
		for i := range m.Durations {
			m.Durations[i] *= scale
		}
	}

	return m
}

// KnownGenres lists the genres with seed material, for request validation.
func KnownGenres() []string {
	return []string{"trance", "house", "techno", "ambient"}
}
