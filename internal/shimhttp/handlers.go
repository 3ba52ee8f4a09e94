package shimhttp

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/practicearena/coachcore/internal/errors"
	"github.com/practicearena/coachcore/internal/model"
	"github.com/practicearena/coachcore/internal/sandbox"
	"github.com/practicearena/coachcore/internal/scoring"
)

// executeRequestBody is the wire shape of POST /api/execute, per spec §6.
type executeRequestBody struct {
	Code      string               `json:"code"`
	Language  string               `json:"language"`
	Stdin     string               `json:"stdin"`
	Timeout   int                  `json:"timeout"`
	TestCases []testCaseRequestDTO `json:"test_cases"`
}

type testCaseRequestDTO struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	Description    string `json:"description,omitempty"`
}

// executeResponseBody is the wire shape of POST /api/execute's response.
type executeResponseBody struct {
	Success       bool                `json:"success"`
	Status        model.Status        `json:"status"`
	Output        string              `json:"output"`
	Error         string              `json:"error"`
	ExecutionTime float64             `json:"execution_time"`
	ExitCode      int                 `json:"exit_code"`
	TestResults   []model.TestVerdict `json:"test_results"`
	Timestamp     string              `json:"timestamp"`
}

// handleExecute implements POST /api/execute: parse-and-validate at the
// boundary, delegate to EXEC, translate the result back to wire shape.
// Every execution outcome, including student-code errors and sandbox
// infrastructure failures, answers 200 — only auth, validation, rate-limit,
// and internal failures use a non-200 status.
func (s *Service) handleExecute(w http.ResponseWriter, r *http.Request) {
	var body executeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, r, apperrors.NewInvalidInputError("malformed request body"))
		return
	}

	timeout := body.Timeout
	if timeout == 0 {
		timeout = model.DefaultTimeoutSeconds
	}

	req := &model.ExecutionRequest{
		Code:      body.Code,
		Language:  model.Language(strings.ToLower(body.Language)),
		Stdin:     body.Stdin,
		Timeout:   timeout,
		TestCases: toModelTestCases(body.TestCases),
	}

	requestID := requestIDFromContext(r.Context())
	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"language":   req.Language,
	}).Debug("executing submission")

	result, err := s.exec.Execute(r.Context(), req)
	if err != nil {
		s.recordExecutionMetric(string(req.Language), "error", 0)
		// Sandbox infrastructure failures are reported in-band: status
		// "error" with the reserved exit code and a generic message, never
		// a 5xx carrying internal detail.
		if apperrors.IsType(err, apperrors.ErrorTypeServiceUnavailable) || apperrors.IsType(err, apperrors.ErrorTypeExecutionFailed) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"language":   req.Language,
				"cause":      defaultSanitizer.Sanitize(err.Error()),
			}).Warn("sandbox infrastructure failure")
			writeJSON(w, http.StatusOK, executeResponseBody{
				Success:   false,
				Status:    model.StatusError,
				Error:     "execution environment unavailable",
				ExitCode:  model.InfrastructureExitCode,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
			return
		}
		s.writeError(w, r, err)
		return
	}

	s.recordExecutionMetric(string(req.Language), string(result.Status), result.ExecutionTime)

	writeJSON(w, http.StatusOK, executeResponseBody{
		Success:       result.Success(),
		Status:        result.Status,
		Output:        result.Stdout,
		Error:         defaultSanitizer.Sanitize(result.Stderr),
		ExecutionTime: result.ExecutionTime,
		ExitCode:      result.ExitCode,
		TestResults:   result.TestResults,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Service) recordExecutionMetric(language, status string, seconds float64) {
	if s.metrics == nil {
		return
	}
	s.metrics.ExecutionsTotal.WithLabelValues(language, status).Inc()
	if seconds > 0 {
		s.metrics.SandboxDuration.WithLabelValues(language).Observe(seconds)
	}
}

func toModelTestCases(dtos []testCaseRequestDTO) []model.TestCase {
	if len(dtos) == 0 {
		return nil
	}
	cases := make([]model.TestCase, 0, len(dtos))
	for _, d := range dtos {
		cases = append(cases, model.TestCase{
			Input:          d.Input,
			ExpectedOutput: d.ExpectedOutput,
			Description:    d.Description,
		})
	}
	return cases
}

// callerRole is who the telemetry endpoint believes sent the request.
// Distinguishing student from non-student callers is an auth/identity
// concern external to SCORE; SHIM resolves it from a header and SCORE
// never sees it.
type callerRole string

const (
	roleStudent    callerRole = "student"
	roleInstructor callerRole = "other"
)

func resolveCallerRole(r *http.Request) callerRole {
	if strings.EqualFold(r.Header.Get("X-Caller-Role"), "student") {
		return roleStudent
	}
	return roleInstructor
}

// telemetryRequestBody is the wire shape of POST /api/telemetry, per
// spec §3's RawSessionMetrics.
type telemetryRequestBody struct {
	DurationMinutes        float64 `json:"duration_minutes"`
	TotalKeystrokes        float64 `json:"total_keystrokes"`
	TotalRunAttempts       float64 `json:"total_run_attempts"`
	TotalIdleMinutes       float64 `json:"total_idle_minutes"`
	FocusViolationCount    float64 `json:"focus_violation_count"`
	NetCodeChange          float64 `json:"net_code_change"`
	LastEditSizeChars      float64 `json:"last_edit_size_chars"`
	LastRunIntervalSeconds float64 `json:"last_run_interval_seconds"`
	IsSemanticChange       bool    `json:"is_semantic_change"`
	CurrentIdleDuration    float64 `json:"current_idle_duration"`
	IsWindowFocused        bool    `json:"is_window_focused"`
	LastRunWasError        bool    `json:"last_run_was_error"`
	RecentBurstSizeChars   float64 `json:"recent_burst_size_chars"`
}

// handleTelemetry implements POST /api/telemetry. Non-student callers
// receive a neutral zero-valued CESResult per spec §6; SCORE itself has no
// notion of caller identity.
func (s *Service) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	var body telemetryRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, r, apperrors.NewInvalidInputError("malformed request body"))
		return
	}

	if resolveCallerRole(r) != roleStudent {
		writeJSON(w, http.StatusOK, scoring.NeutralInstructorResult())
		return
	}

	raw := &model.RawSessionMetrics{
		DurationMinutes:        body.DurationMinutes,
		TotalKeystrokes:        body.TotalKeystrokes,
		TotalRunAttempts:       body.TotalRunAttempts,
		TotalIdleMinutes:       body.TotalIdleMinutes,
		FocusViolationCount:    body.FocusViolationCount,
		NetCodeChange:          body.NetCodeChange,
		LastEditSizeChars:      body.LastEditSizeChars,
		LastRunIntervalSeconds: body.LastRunIntervalSeconds,
		IsSemanticChange:       body.IsSemanticChange,
		CurrentIdleDuration:    body.CurrentIdleDuration,
		IsWindowFocused:        body.IsWindowFocused,
		LastRunWasError:        body.LastRunWasError,
		RecentBurstSizeChars:   body.RecentBurstSizeChars,
	}

	result := s.score(raw)
	if s.metrics != nil {
		s.metrics.CESHistogram.Observe(result.CES)
	}
	writeJSON(w, http.StatusOK, result)
}

// healthResponseBody is the wire shape of GET /health.
type healthResponseBody struct {
	Status          string                    `json:"status"`
	DockerAvailable bool                      `json:"docker_available"`
	Languages       []sandbox.LanguageProfile `json:"languages"`
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	available := s.exec.DockerAvailable()
	status := "ok"
	if !available {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, healthResponseBody{
		Status:          status,
		DockerAvailable: available,
		Languages:       sandbox.Profiles(),
	})
}

// languagesResponseBody is the wire shape of GET /languages.
type languagesResponseBody struct {
	Languages []sandbox.LanguageProfile `json:"languages"`
}

func (s *Service) handleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, languagesResponseBody{Languages: sandbox.Profiles()})
}
