package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rankinbc/leadgen/internal/config"
	"github.com/rankinbc/leadgen/internal/lead"
	"github.com/rankinbc/leadgen/internal/metrics"
	"github.com/rankinbc/leadgen/internal/midiexport"
	"github.com/rankinbc/leadgen/internal/models"
	"github.com/rankinbc/leadgen/internal/motif"
	"github.com/rankinbc/leadgen/internal/phrase"
	"github.com/rankinbc/leadgen/internal/theory"
)

const (
	defaultBeatsPerChord = 4.0
	defaultTempoBPM      = 128.0
)

// ChordSpan is one chord in the request progression. Beats defaults to a
// full bar when omitted.
type ChordSpan struct {
	Chord string  `json:"chord" binding:"required"`
	Beats float64 `json:"beats"`
}

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	SectionType string              `json:"sectionType" binding:"required"`
	Bars        int                 `json:"bars" binding:"required,min=1"`
	Energy      float64             `json:"energy" binding:"min=0,max=1"`
	Genre       string              `json:"genre"`
	Key         string              `json:"key" binding:"required"`
	Scale       string              `json:"scale"`
	Seed        int64               `json:"seed"`
	Tempo       float64             `json:"tempo"`
	Progression []ChordSpan         `json:"progression" binding:"required"`
	Context     models.TrackContext `json:"context"`
}

// GenerateResponse is the JSON shape of a finished generation.
type GenerateResponse struct {
	Notes    []models.NoteEvent `json:"notes"`
	Cadence  string             `json:"cadence"`
	Form     string             `json:"form"`
	Contour  string             `json:"contour"`
	Warnings []string           `json:"warnings,omitempty"`
	Retries  int                `json:"retries"`
}

type GenerateHandler struct {
	generator     *lead.Generator
	cfg           *config.Config
	encoder       *midiexport.Encoder
	sentryMetrics *metrics.SentryMetrics
}

func NewGenerateHandler(cfg *config.Config) *GenerateHandler {
	return &GenerateHandler{
		generator:     lead.New(cfg),
		cfg:           cfg,
		encoder:       midiexport.NewEncoder(),
		sentryMetrics: metrics.NewSentryMetrics(),
	}
}

// Generate runs the pipeline and returns the notes as JSON.
func (h *GenerateHandler) Generate(c *gin.Context) {
	result, _, ok := h.run(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, GenerateResponse{
		Notes:    result.Notes,
		Cadence:  result.Cadence,
		Form:     result.Spec.Type.String(),
		Contour:  result.Spec.Contour.String(),
		Warnings: result.Warnings,
		Retries:  result.Retries,
	})
}

// GenerateMIDI runs the pipeline and returns a Standard MIDI File.
func (h *GenerateHandler) GenerateMIDI(c *gin.Context) {
	result, req, ok := h.run(c)
	if !ok {
		return
	}

	tempo := req.Tempo
	if tempo <= 0 {
		tempo = defaultTempoBPM
	}
	data, err := h.encoder.Encode(result.Notes, tempo)
	if err != nil {
		log.Printf("❌ MIDI encoding failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="lead.mid"`)
	c.Data(http.StatusOK, "audio/midi", data)
}

// run binds the request, executes the pipeline and translates errors into
// HTTP status codes. Harmony problems are the client's fault; anything
// else is ours.
func (h *GenerateHandler) run(c *gin.Context) (*lead.Result, GenerateRequest, bool) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, req, false
	}

	log.Printf("🎹 Lead generation request: %s %d bars, energy %.2f", req.SectionType, req.Bars, req.Energy)

	start := time.Now()
	result, err := h.generator.GenerateForSection(lead.Request{
		SectionType: req.SectionType,
		Bars:        req.Bars,
		Energy:      req.Energy,
		Genre:       req.Genre,
		Key:         req.Key,
		Scale:       req.Scale,
		Progression: buildProgression(req.Progression),
		Seed:        req.Seed,
		Context:     req.Context,
	})
	if err != nil {
		log.Printf("❌ Lead generation failed: %v", err)
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return nil, req, false
	}

	h.sentryMetrics.RecordGeneration(c.Request.Context(), req.Genre, req.SectionType,
		len(result.Notes), result.Retries, len(result.Warnings), time.Since(start))
	generationsServed.Add(1)
	notesGenerated.Add(uint64(len(result.Notes)))

	return result, req, true
}

// buildProgression lays the chord spans out contiguously from beat zero.
func buildProgression(spans []ChordSpan) []models.ChordEvent {
	events := make([]models.ChordEvent, 0, len(spans))
	cursor := 0.0
	for _, s := range spans {
		beats := s.Beats
		if beats <= 0 {
			beats = defaultBeatsPerChord
		}
		events = append(events, models.ChordEvent{
			ChordSymbol:   s.Chord,
			StartBeats:    cursor,
			DurationBeats: beats,
		})
		cursor += beats
	}
	return events
}

// statusForError maps pipeline failures to HTTP codes: bad harmony is a
// 400, everything else a 500.
func statusForError(err error) int {
	var parseErr *theory.ParseError
	var missing *phrase.MissingHarmonyError
	if errors.As(err, &parseErr) || errors.As(err, &missing) {
		return http.StatusBadRequest
	}
	var genErr *lead.GenerationError
	if errors.As(err, &genErr) && genErr.Stage == lead.StagePlan {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Genres lists the genres the seed generator knows.
func Genres(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"genres": motif.KnownGenres()})
}
