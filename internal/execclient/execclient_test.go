package execclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/practicearena/coachcore/internal/errors"
	"github.com/practicearena/coachcore/internal/model"
)

func TestExecuteForwardsRequestAndDecodesResult(t *testing.T) {
	var gotKey string
	var gotBody executeRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode forwarded body: %v", err)
		}
		json.NewEncoder(w).Encode(executeResponse{
			Status:        model.StatusSuccess,
			Output:        "8",
			ExecutionTime: 0.123,
			TestResults: []model.TestVerdict{
				{TestNumber: 1, Passed: true, Input: "5, 3", ExpectedOutput: "8", ActualOutput: "8"},
			},
		})
	}))
	defer server.Close()

	client := New(server.URL, "secret", nil)
	result, err := client.Execute(context.Background(), &model.ExecutionRequest{
		Code:     "class Solution:\n    def add(self, a, b):\n        return a + b",
		Language: model.LanguagePython,
		Timeout:  30,
		TestCases: []model.TestCase{
			{Input: "5, 3", ExpectedOutput: "8"},
		},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if gotKey != "secret" {
		t.Errorf("forwarded API key = %q, want %q", gotKey, "secret")
	}
	if gotBody.Language != "python" || len(gotBody.TestCases) != 1 {
		t.Errorf("forwarded body = %+v", gotBody)
	}
	if result.Status != model.StatusSuccess || result.Stdout != "8" {
		t.Errorf("result = %+v, want success with stdout 8", result)
	}
	if len(result.TestResults) != 1 || !result.TestResults[0].Passed {
		t.Errorf("test results = %+v", result.TestResults)
	}
}

func TestExecuteTranslatesAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(server.URL, "wrong", nil)
	_, err := client.Execute(context.Background(), &model.ExecutionRequest{Code: "x", Language: model.LanguagePython, Timeout: 5})
	if !apperrors.IsType(err, apperrors.ErrorTypeAuthFailed) {
		t.Errorf("err = %v, want AUTH_FAILED", err)
	}
}

func TestExecuteUnreachableService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := New(server.URL, "k", nil)
	_, err := client.Execute(context.Background(), &model.ExecutionRequest{Code: "x", Language: model.LanguagePython, Timeout: 5})
	if !apperrors.IsType(err, apperrors.ErrorTypeServiceUnavailable) {
		t.Errorf("err = %v, want SERVICE_UNAVAILABLE", err)
	}
}

func TestDockerAvailableReflectsRemoteHealth(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(healthResponse{Status: "ok", DockerAvailable: true})
	}))
	defer up.Close()

	if !New(up.URL, "k", nil).DockerAvailable() {
		t.Error("expected available when remote reports docker_available=true")
	}

	degraded := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(healthResponse{Status: "degraded", DockerAvailable: false})
	}))
	defer degraded.Close()

	if New(degraded.URL, "k", nil).DockerAvailable() {
		t.Error("expected unavailable when remote reports docker_available=false")
	}

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	down.Close()

	if New(down.URL, "k", nil).DockerAvailable() {
		t.Error("expected unavailable when remote is unreachable")
	}
}
