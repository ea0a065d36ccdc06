package theory

// HarmonicFunction classifies the structural role a chord plays in a key.
type HarmonicFunction int

const (
	FunctionTonic HarmonicFunction = iota
	FunctionSubdominant
	FunctionDominant
	FunctionOther
)

func (f HarmonicFunction) String() string {
	names := [...]string{"tonic", "subdominant", "dominant", "other"}
	if int(f) < len(names) {
		return names[f]
	}
	return "other"
}

// Chord-root scale degrees (in semitones above the tonic) mapped to their
// conventional function. Mediant and submediant group with the tonic.
var majorFunctionMap = map[int]HarmonicFunction{
	0:  FunctionTonic,       // I
	2:  FunctionSubdominant, // ii
	4:  FunctionTonic,       // iii
	5:  FunctionSubdominant, // IV
	7:  FunctionDominant,    // V
	9:  FunctionTonic,       // vi
	11: FunctionDominant,    // vii
}

var minorFunctionMap = map[int]HarmonicFunction{
	0:  FunctionTonic,       // i
	2:  FunctionSubdominant, // ii
	3:  FunctionTonic,       // III
	5:  FunctionSubdominant, // iv
	7:  FunctionDominant,    // v / V
	8:  FunctionSubdominant, // VI
	11: FunctionDominant,    // vii (raised leading tone)
}

// AnalyzeFunction classifies a chord's harmonic function by the scale degree
// of its root relative to the key. When the chord contains the key's leading
// tone the dominant reading wins, regardless of the root degree.
func AnalyzeFunction(chord Chord, key Key) HarmonicFunction {
	degree := ((int(chord.Root) - int(key.Tonic)) % 12 + 12) % 12

	functionMap := majorFunctionMap
	if key.Mode == KeyModeMinor {
		functionMap = minorFunctionMap
	}

	fn, ok := functionMap[degree]
	if !ok {
		fn = FunctionOther
	}

	// Leading-tone tie break: a chord carrying the leading tone pulls toward
	// resolution, so it reads as dominant even from a non-dominant degree.
	if fn != FunctionDominant && chord.ContainsPitch(key.LeadingTone()) {
		return FunctionDominant
	}
	return fn
}

// VoiceLeadingDistance is the total semitone displacement needed to move the
// tones of one chord onto the nearest tones of the other. Common tones cost
// nothing. The larger of the two directed sums is used so the measure is
// symmetric even when the chords have different tone counts.
func VoiceLeadingDistance(a, b Chord) int {
	ab := directedVoiceDistance(a, b)
	ba := directedVoiceDistance(b, a)
	if ba > ab {
		return ba
	}
	return ab
}

func directedVoiceDistance(from, to Chord) int {
	toTones := to.PitchClasses()
	total := 0
	for _, tone := range from.PitchClasses() {
		best := 12
		for _, target := range toTones {
			if d := pitchClassDistance(tone, target); d < best {
				best = d
			}
		}
		total += best
	}
	return total
}

// pitchClassDistance is the shorter way around the chromatic circle.
func pitchClassDistance(a, b PitchClass) int {
	d := abs(int(a) - int(b))
	if d > 6 {
		d = 12 - d
	}
	return d
}
