package scoring

import "github.com/practicearena/coachcore/internal/model"

// Normalization bounds for the four CES input signals, calibrated for
// 15-60 minute novice algorithmic-exercise sessions. Grounded on
// ces_calculator.py's MIN_*/MAX_* thresholds.
const (
	minKPM, maxKPM = 5.0, 24.0
	minAD, maxAD   = 0.05, 0.50
	minIR, maxIR   = 0.0, 0.60
	minFVC, maxFVC = 0.0, 10.0

	weightKPM = 0.35
	weightAD  = 0.25
	weightFVC = 0.25
	weightIR  = 0.15
)

// Score implements SCORE's one operation. It is a pure function: raw is
// read-only, nothing is mutated, and the same input always produces the
// same output.
func Score(raw *model.RawSessionMetrics) *model.CESResult {
	insights := fuse(raw)

	k := normalize(insights.EffectiveKPM, minKPM, maxKPM)
	a := normalize(insights.EffectiveAD, minAD, maxAD)
	i := normalize(insights.EffectiveIR, minIR, maxIR)
	f := normalize(raw.FocusViolationCount, minFVC, maxFVC)

	ces := (weightKPM*k + weightAD*a) - (weightFVC*f + weightIR*i) - insights.IntegrityPenalty
	ces = clamp(ces, -1, 1)

	return &model.CESResult{
		CES:              ces,
		Classification:   model.ClassifyCES(ces),
		ProvenanceState:  insights.ProvenanceState,
		CognitiveState:   insights.CognitiveState,
		EffectiveKPM:     insights.EffectiveKPM,
		EffectiveAD:      insights.EffectiveAD,
		EffectiveIR:      insights.EffectiveIR,
		IntegrityPenalty: insights.IntegrityPenalty,
	}
}

// normalize min-max scales v against [lo, hi] and clamps the result to
// [0, 1]; it never divides by zero since every bound pair here is distinct.
func normalize(v, lo, hi float64) float64 {
	n := (v - lo) / (hi - lo)
	return clamp(n, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NeutralInstructorResult is returned by SHIM for non-student callers: a
// zero-valued CESResult labeled instructor/instructor with a "Not
// Applicable" classification, per spec §6.
func NeutralInstructorResult() *model.CESResult {
	return &model.CESResult{
		CES:             0,
		Classification:  model.ClassificationNotApplicable,
		ProvenanceState: "instructor",
		CognitiveState:  "instructor",
	}
}
