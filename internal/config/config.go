package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration.
// Note: This is a stateless configuration - no database or auth secrets needed.
// The generation pipeline itself is pure computation; everything here is either
// server wiring or empirically tuned musical defaults.
type Config struct {
	// Environment
	Environment string
	Port        string

	// Observability
	SentryDSN string // Sentry DSN for error tracking

	// Generation defaults
	DefaultGenre string

	// Coordination tuning. These are genre-dependent magic numbers, kept
	// configurable rather than baked into the coordinator.
	CollisionToleranceBeats float64 // Window within which same-pitch overlaps count as collisions
	CollisionBlockSeverity  float64 // Aggregate severity above which a phrase is re-rendered
	MaxPitchShiftSemitones  int     // Shift budget for collision resolution
	DensityWindowBeats      float64 // Rolling window for onset density tracking
	DensityThinOutRatio     float64 // Lead thins out when sibling density exceeds lead by this ratio

	// Register band defaults per role (MIDI note numbers)
	BassRegisterLow  int
	BassRegisterHigh int
	PadRegisterLow   int
	PadRegisterHigh  int
	ArpRegisterLow   int
	ArpRegisterHigh  int
	LeadRegisterLow  int
	LeadRegisterHigh int

	// Lead generator
	MaxRenderRetries int // Bounded re-render attempts after a blocking collision
}

func Load() *Config {
	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),

		DefaultGenre: getEnv("DEFAULT_GENRE", "trance"),

		CollisionToleranceBeats: getEnvFloat("COLLISION_TOLERANCE_BEATS", 0.125),
		CollisionBlockSeverity:  getEnvFloat("COLLISION_BLOCK_SEVERITY", 2.0),
		MaxPitchShiftSemitones:  getEnvInt("MAX_PITCH_SHIFT_SEMITONES", 4),
		DensityWindowBeats:      getEnvFloat("DENSITY_WINDOW_BEATS", 4.0),
		DensityThinOutRatio:     getEnvFloat("DENSITY_THIN_OUT_RATIO", 1.5),

		BassRegisterLow:  getEnvInt("BASS_REGISTER_LOW", 28),  // E1
		BassRegisterHigh: getEnvInt("BASS_REGISTER_HIGH", 47), // B2
		PadRegisterLow:   getEnvInt("PAD_REGISTER_LOW", 48),   // C3
		PadRegisterHigh:  getEnvInt("PAD_REGISTER_HIGH", 66),  // F#4
		ArpRegisterLow:   getEnvInt("ARP_REGISTER_LOW", 60),   // C4
		ArpRegisterHigh:  getEnvInt("ARP_REGISTER_HIGH", 78),  // F#5
		LeadRegisterLow:  getEnvInt("LEAD_REGISTER_LOW", 72),  // C5
		LeadRegisterHigh: getEnvInt("LEAD_REGISTER_HIGH", 91), // G6

		MaxRenderRetries: getEnvInt("MAX_RENDER_RETRIES", 1),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
