package sandbox

import (
	"context"
	"testing"
	"time"

	"github.com/practicearena/coachcore/internal/model"
)

func TestClassifyTimeout(t *testing.T) {
	raw := &RawRun{Duration: 2 * time.Second, TimedOut: true}
	result := classify(raw, time.Second)
	if result.Status != model.StatusTimeout {
		t.Errorf("status = %s, want timeout", result.Status)
	}
	if result.ExecutionTime < 1.0 {
		t.Errorf("execution_time = %v, want >= 1.0", result.ExecutionTime)
	}
}

func TestClassifyError(t *testing.T) {
	raw := &RawRun{Duration: 100 * time.Millisecond, ExitCode: 1, Stderr: "Traceback..."}
	result := classify(raw, 5*time.Second)
	if result.Status != model.StatusError {
		t.Errorf("status = %s, want error", result.Status)
	}
	if result.ExitCode != 1 {
		t.Errorf("exit_code = %d, want 1", result.ExitCode)
	}
}

func TestClassifySuccess(t *testing.T) {
	raw := &RawRun{Duration: 50 * time.Millisecond, ExitCode: 0, Stdout: "8\n"}
	result := classify(raw, 5*time.Second)
	if result.Status != model.StatusSuccess {
		t.Errorf("status = %s, want success", result.Status)
	}
}

func TestRound3(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.23456, 1.235},
		{0.0, 0.0},
		{2.0001, 2.0},
	}
	for _, tc := range tests {
		if got := round3(tc.in); got != tc.want {
			t.Errorf("round3(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestExitCodeForVerdicts(t *testing.T) {
	allPass := []model.TestVerdict{{Passed: true}, {Passed: true}}
	if code := exitCodeForVerdicts(allPass); code != 0 {
		t.Errorf("exit code for all-pass = %d, want 0", code)
	}

	oneFail := []model.TestVerdict{{Passed: true}, {Passed: false}}
	if code := exitCodeForVerdicts(oneFail); code != 1 {
		t.Errorf("exit code with a failure = %d, want 1", code)
	}
}

func TestExecuteRejectsUnsupportedLanguage(t *testing.T) {
	svc := NewService(nil)
	req := &model.ExecutionRequest{
		Code:     "print(1)",
		Language: model.Language("ruby"),
		Timeout:  5,
	}
	if _, err := svc.Execute(context.Background(), req); err == nil {
		t.Error("expected error for unsupported language")
	}
}

func TestExecuteRejectsInvalidRequest(t *testing.T) {
	svc := NewService(nil)
	req := &model.ExecutionRequest{
		Code:     "",
		Language: model.LanguagePython,
		Timeout:  5,
	}
	if _, err := svc.Execute(context.Background(), req); err == nil {
		t.Error("expected error for empty code")
	}
}
