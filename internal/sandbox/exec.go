package sandbox

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/practicearena/coachcore/internal/errors"
	"github.com/practicearena/coachcore/internal/harness"
	"github.com/practicearena/coachcore/internal/model"
)

// compileDiagnosticMarkers are substrings that, when found in captured
// stderr on an otherwise zero-exit run, indicate the language toolchain
// reported a compile diagnostic rather than cleanly finishing. Some
// toolchains (single-file Java source launchers) can exit 0 on certain
// warnings; this catches the common failure text regardless.
var compileDiagnosticMarkers = []string{
	"error:",
	"Error:",
	"SyntaxError",
	"cannot find symbol",
}

// Service runs ExecutionRequests end to end: harness synthesis, sandboxed
// execution, and classification into a model.ExecutionResult.
type Service struct {
	runner *Runner
	log    *logrus.Entry
}

// NewService creates an execution Service backed by a fresh Runner.
func NewService(log *logrus.Entry) *Service {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{runner: NewRunner(log), log: log}
}

// Execute implements EXEC's one operation. It never returns an error for a
// malformed or failing student submission — those become ExecutionResult
// values with a failure status. It returns an error only when the request
// itself is invalid or the sandbox infrastructure is unavailable.
func (s *Service) Execute(ctx context.Context, req *model.ExecutionRequest) (*model.ExecutionResult, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeInvalidInput, "invalid execution request")
	}

	spec, ok := Lookup(req.Language)
	if !ok {
		supported := make([]string, 0, len(Registry))
		for _, l := range Supported() {
			supported = append(supported, string(l))
		}
		return nil, apperrors.Newf(apperrors.ErrorTypeInvalidInput, "unsupported language %q, supported: %s", req.Language, strings.Join(supported, ", "))
	}

	timeout := time.Duration(req.Timeout) * time.Second
	if timeout <= 0 || timeout > spec.MaxTimeout {
		timeout = spec.DefaultTimeout
	}

	s.log.WithFields(logrus.Fields{
		"language": req.Language,
		"tests":    len(req.TestCases),
		"timeout":  timeout.String(),
	}).Debug("execution request accepted")

	if len(req.TestCases) == 0 {
		return s.executePlain(ctx, spec, req, timeout)
	}
	return s.executeWithTests(ctx, spec, req, timeout)
}

func (s *Service) executePlain(ctx context.Context, spec *LanguageSpec, req *model.ExecutionRequest, timeout time.Duration) (*model.ExecutionResult, error) {
	wrapped, err := harness.Wrap(req.Code, req.Language, req.Stdin, harness.ModePlain, "")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeInternal, "synthesize harness")
	}

	raw, err := s.runner.Run(ctx, spec, wrapped.Source, req.Stdin, timeout)
	if err != nil {
		return nil, err
	}

	return classify(raw, timeout), nil
}

func (s *Service) executeWithTests(ctx context.Context, spec *LanguageSpec, req *model.ExecutionRequest, timeout time.Duration) (*model.ExecutionResult, error) {
	verdicts := make([]model.TestVerdict, 0, len(req.TestCases))
	var totalElapsed float64
	anyValidExecution := false
	allPassed := true

	for i, tc := range req.TestCases {
		wrapped, err := harness.Wrap(req.Code, req.Language, "", harness.ModeTest, tc.Input)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrorTypeInternal, "synthesize harness")
		}

		raw, err := s.runner.Run(ctx, spec, wrapped.Source, "", timeout)
		if err != nil {
			return nil, err
		}

		verdict := model.TestVerdict{
			TestNumber:     i + 1,
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
		}

		result := classify(raw, timeout)
		totalElapsed += result.ExecutionTime

		switch result.Status {
		case model.StatusSuccess:
			anyValidExecution = true
			actual := strings.TrimSpace(result.Stdout)
			expected := strings.TrimSpace(tc.ExpectedOutput)
			verdict.ActualOutput = actual
			verdict.Passed = actual == expected
			if !verdict.Passed {
				allPassed = false
			}
		case model.StatusTimeout:
			verdict.Passed = false
			verdict.Error = "execution timed out"
			allPassed = false
		default:
			verdict.Passed = false
			verdict.ActualOutput = strings.TrimSpace(result.Stdout)
			verdict.Error = strings.TrimSpace(result.Stderr)
			allPassed = false
		}

		verdicts = append(verdicts, verdict)
	}

	status := model.StatusFailedTests
	switch {
	case !anyValidExecution:
		status = model.StatusError
	case allPassed:
		status = model.StatusSuccess
	}

	return &model.ExecutionResult{
		Status:        status,
		ExecutionTime: round3(totalElapsed),
		ExitCode:      exitCodeForVerdicts(verdicts),
		TestResults:   verdicts,
	}, nil
}

func exitCodeForVerdicts(verdicts []model.TestVerdict) int {
	for _, v := range verdicts {
		if !v.Passed {
			return 1
		}
	}
	return 0
}

// classify maps one RawRun into a model.ExecutionResult per the timeout /
// error / success ordering: wall time at or beyond the ceiling always wins,
// then a non-zero exit or a compile diagnostic in stderr, else success.
func classify(raw *RawRun, timeout time.Duration) *model.ExecutionResult {
	elapsed := round3(raw.Duration.Seconds())

	if raw.TimedOut || raw.Duration >= timeout {
		return &model.ExecutionResult{
			Status:        model.StatusTimeout,
			Stdout:        raw.Stdout,
			Stderr:        raw.Stderr,
			ExecutionTime: elapsed,
			ExitCode:      raw.ExitCode,
		}
	}

	if raw.ExitCode != 0 || containsCompileDiagnostic(raw.Stderr) {
		return &model.ExecutionResult{
			Status:        model.StatusError,
			Stdout:        raw.Stdout,
			Stderr:        raw.Stderr,
			ExecutionTime: elapsed,
			ExitCode:      raw.ExitCode,
		}
	}

	return &model.ExecutionResult{
		Status:        model.StatusSuccess,
		Stdout:        raw.Stdout,
		Stderr:        raw.Stderr,
		ExecutionTime: elapsed,
		ExitCode:      raw.ExitCode,
	}
}

func containsCompileDiagnostic(stderr string) bool {
	for _, marker := range compileDiagnosticMarkers {
		if strings.Contains(stderr, marker) {
			return true
		}
	}
	return false
}

func round3(f float64) float64 {
	scaled := f * 1000
	rounded := float64(int64(scaled + 0.5))
	return rounded / 1000
}
