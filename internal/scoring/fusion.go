// Package scoring implements SCORE: a pure, stateless transform from raw
// per-session telemetry into fused behavioral labels and a bounded
// Cognitive Engagement Score. Nothing here performs I/O or mutates its
// input; every call is independent of every other.
package scoring

import "github.com/practicearena/coachcore/internal/model"

// fuse runs the two-pipeline data-fusion stage (Stage A: provenance and
// authenticity, Stage B: cognitive state continuity) over raw and returns
// the intermediate FusionInsights CES composes from. Grounded on
// data_fusion.py's DataFusionEngine, restructured as a pure function
// instead of an object carrying classification state across calls.
func fuse(raw *model.RawSessionMetrics) *model.FusionInsights {
	insights := &model.FusionInsights{
		ProvenanceState: model.ProvenanceAuthenticRefactoring,
	}

	rawKPM := 0.0
	if raw.DurationMinutes > 0 {
		rawKPM = raw.TotalKeystrokes / raw.DurationMinutes
	}

	pasteLabeled := stageAProvenance(raw, insights)
	stageASpam(raw, insights, rawKPM, pasteLabeled)

	adjustedIdleMinutes := stageBCognitive(raw, insights)

	if raw.DurationMinutes > 0 {
		insights.EffectiveAD = raw.TotalRunAttempts / raw.DurationMinutes
		insights.EffectiveIR = adjustedIdleMinutes / raw.DurationMinutes
	}

	return insights
}

// stageAProvenance runs the large-insertion check and the bulk-paste
// fallback. It reports whether a paste/spam provenance label was already
// assigned, so the bulk-paste fallback does not override an earlier
// decision.
func stageAProvenance(raw *model.RawSessionMetrics, insights *model.FusionInsights) bool {
	labeled := false

	if raw.LastEditSizeChars > 30 {
		ratio := 0.0
		if raw.LastEditSizeChars != 0 {
			ratio = raw.RecentBurstSizeChars / raw.LastEditSizeChars
		}
		switch {
		case ratio < 0.2 && raw.FocusViolationCount > 0 && raw.LastEditSizeChars > 50:
			insights.ProvenanceState = model.ProvenanceSuspectedPaste
			insights.IntegrityPenalty = 0.5
			labeled = true
		case ratio > 0.8:
			insights.ProvenanceState = model.ProvenanceAuthenticRefactoring
		default:
			insights.ProvenanceState = model.ProvenanceAmbiguousLargeEdit
		}
	}

	if !labeled && raw.NetCodeChange > 200 && raw.TotalKeystrokes < 0.3*raw.NetCodeChange && raw.FocusViolationCount > 1 {
		insights.ProvenanceState = model.ProvenanceSuspectedPaste
		insights.IntegrityPenalty = 0.5
		labeled = true
	}

	return labeled
}

// stageASpam runs the spam check and sets EffectiveKPM. A spam label can
// overwrite a prior provenance label, matching the source's evaluation
// order (authenticity checks, then the spam check).
func stageASpam(raw *model.RawSessionMetrics, insights *model.FusionInsights, rawKPM float64, _ bool) {
	efficiency := 1.0
	if raw.TotalKeystrokes > 50 {
		efficiency = raw.NetCodeChange / raw.TotalKeystrokes
	}

	switch {
	case raw.TotalKeystrokes > 200 && efficiency < 0.05:
		insights.ProvenanceState = model.ProvenanceSpamming
		insights.EffectiveKPM = 0
	case raw.RecentBurstSizeChars >= 50 && raw.RecentBurstSizeChars <= 100 && efficiency < 0.15:
		insights.ProvenanceState = model.ProvenanceSpamming
		insights.EffectiveKPM = rawKPM * 0.5
	default:
		insights.EffectiveKPM = rawKPM
	}
}

// stageBCognitive runs the cognitive-state-continuity pipeline and returns
// the idle-adjusted minutes effective_ir is derived from.
func stageBCognitive(raw *model.RawSessionMetrics, insights *model.FusionInsights) float64 {
	insights.CognitiveState = model.CognitiveActive
	adjustedIdleMinutes := raw.TotalIdleMinutes

	if raw.CurrentIdleDuration > 30 {
		switch {
		case !raw.IsWindowFocused:
			insights.CognitiveState = model.CognitiveDisengagement
		case raw.LastRunWasError:
			insights.CognitiveState = model.CognitiveReflectivePause
			adjustedIdleMinutes -= raw.CurrentIdleDuration / 60
			if adjustedIdleMinutes < 0 {
				adjustedIdleMinutes = 0
			}
		default:
			insights.CognitiveState = model.CognitivePassiveIdle
		}
	}

	return adjustedIdleMinutes
}
