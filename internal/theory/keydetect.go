package theory

import (
	"gonum.org/v1/gonum/stat"
)

// Krumhansl-Kessler key profiles: perceived stability of each chromatic
// degree relative to the tonic, from probe-tone experiments.
var (
	krumhanslMajor = []float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}
	krumhanslMinor = []float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17}
)

// KeyCandidate is one scored key hypothesis.
type KeyCandidate struct {
	Key         Key     `json:"key"`
	Correlation float64 `json:"correlation"`
}

// KeyDetectionResult holds the winning key and the full score table.
type KeyDetectionResult struct {
	Key        Key            `json:"key"`
	Confidence float64        `json:"confidence"`
	Candidates []KeyCandidate `json:"candidates"`
}

// Bonus added to the previously detected key's correlation so that near-ties
// do not flip the key between adjacent analyses.
const keyStabilityBias = 0.02

// DetectKey estimates the key of a 12-bin pitch-class histogram by
// correlating it against the major and minor profiles in all 12
// transpositions and picking the best match. A previous key, when supplied,
// wins ties for temporal stability.
func DetectKey(histogram [12]float64, previous *Key) KeyDetectionResult {
	hist := histogram[:]

	result := KeyDetectionResult{Confidence: -2}
	for tonic := 0; tonic < 12; tonic++ {
		rotated := rotateHistogram(hist, tonic)

		for _, mode := range []KeyMode{KeyModeMajor, KeyModeMinor} {
			profile := krumhanslMajor
			if mode == KeyModeMinor {
				profile = krumhanslMinor
			}

			score := stat.Correlation(rotated, profile, nil)
			candidate := Key{Tonic: PitchClass(tonic), Mode: mode}
			if previous != nil && candidate == *previous {
				score += keyStabilityBias
			}

			result.Candidates = append(result.Candidates, KeyCandidate{Key: candidate, Correlation: score})
			if score > result.Confidence {
				result.Confidence = score
				result.Key = candidate
			}
		}
	}
	return result
}

// rotateHistogram re-indexes the histogram so bin 0 is the candidate tonic.
func rotateHistogram(hist []float64, tonic int) []float64 {
	rotated := make([]float64, 12)
	for i := 0; i < 12; i++ {
		rotated[i] = hist[(i+tonic)%12]
	}
	return rotated
}
