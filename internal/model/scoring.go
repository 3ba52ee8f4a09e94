package model

// RawSessionMetrics is the per-request telemetry snapshot SCORE consumes.
// All fields are scalars collected client-side over the whole session so
// far; all counters are monotonic within a session and never negative.
type RawSessionMetrics struct {
	DurationMinutes        float64
	TotalKeystrokes        float64
	TotalRunAttempts       float64
	TotalIdleMinutes       float64
	FocusViolationCount    float64
	NetCodeChange          float64 // current code length, chars
	LastEditSizeChars      float64
	LastRunIntervalSeconds float64
	IsSemanticChange       bool
	CurrentIdleDuration    float64 // seconds
	IsWindowFocused        bool
	LastRunWasError        bool
	RecentBurstSizeChars   float64 // 5-second sliding window
}

// ProvenanceState labels authorship authenticity of the latest edit window.
type ProvenanceState string

const (
	ProvenanceAuthenticRefactoring ProvenanceState = "AuthenticRefactoring"
	ProvenanceAmbiguousLargeEdit   ProvenanceState = "AmbiguousLargeEdit"
	ProvenanceSuspectedPaste       ProvenanceState = "SuspectedExternalPaste"
	ProvenanceSpamming             ProvenanceState = "Spamming"
)

// CognitiveState labels the current temporal interaction pattern.
type CognitiveState string

const (
	CognitiveActive          CognitiveState = "Active"
	CognitiveReflectivePause CognitiveState = "ReflectivePause"
	CognitivePassiveIdle     CognitiveState = "PassiveIdle"
	CognitiveDisengagement   CognitiveState = "Disengagement"
)

// FusionInsights is the intermediate output of the two-pipeline fusion
// stage: two qualitative labels plus the metrics they were derived from.
type FusionInsights struct {
	ProvenanceState ProvenanceState
	CognitiveState  CognitiveState

	EffectiveKPM float64
	EffectiveAD  float64
	EffectiveIR  float64

	IntegrityPenalty float64
}

// Classification is the qualitative engagement band for a CES value.
type Classification string

const (
	ClassificationHighEngagement     Classification = "HighEngagement"
	ClassificationModerateEngagement Classification = "ModerateEngagement"
	ClassificationLowEngagement      Classification = "LowEngagement"
	ClassificationDisengagedAtRisk   Classification = "DisengagedAtRisk"
	// ClassificationNotApplicable is returned for non-student callers; see SHIM.
	ClassificationNotApplicable Classification = "Not Applicable"
)

// ClassifyCES maps a clamped CES value to its qualitative band.
func ClassifyCES(ces float64) Classification {
	switch {
	case ces > 0.5:
		return ClassificationHighEngagement
	case ces > 0.2:
		return ClassificationModerateEngagement
	case ces > 0.0:
		return ClassificationLowEngagement
	default:
		return ClassificationDisengagedAtRisk
	}
}

// CESResult is SCORE's output for one RawSessionMetrics snapshot.
type CESResult struct {
	CES             float64         `json:"ces"`
	Classification  Classification  `json:"classification"`
	ProvenanceState ProvenanceState `json:"provenance_state"`
	CognitiveState  CognitiveState  `json:"cognitive_state"`

	EffectiveKPM float64 `json:"effective_kpm"`
	EffectiveAD  float64 `json:"effective_ad"`
	EffectiveIR  float64 `json:"effective_ir"`

	IntegrityPenalty float64 `json:"integrity_penalty"`
}
