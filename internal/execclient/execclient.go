// Package execclient reaches a separately deployed execution service over
// HTTP, implementing the same contract as the in-process sandbox service.
// The shim selects it when EXECUTION_SERVICE_URL is configured, fronting a
// remote executor instead of embedding one.
package execclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/practicearena/coachcore/internal/errors"
	"github.com/practicearena/coachcore/internal/model"
)

// probeTimeout bounds the health probe so a hung remote cannot stall the
// shim's own /health endpoint.
const probeTimeout = 5 * time.Second

// Client calls a remote executor's HTTP API.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	log     *logrus.Entry
}

// New creates a Client for the executor at baseURL, authenticating with
// apiKey. The underlying HTTP client allows the service-wide maximum
// execution timeout plus transport slack before giving up.
func New(baseURL, apiKey string, log *logrus.Entry) *Client {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: (model.MaxTimeoutSeconds + 15) * time.Second},
		log:     log,
	}
}

type executeRequest struct {
	Code      string     `json:"code"`
	Language  string     `json:"language"`
	Stdin     string     `json:"stdin"`
	Timeout   int        `json:"timeout"`
	TestCases []testCase `json:"test_cases,omitempty"`
}

type testCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	Description    string `json:"description,omitempty"`
}

type executeResponse struct {
	Status        model.Status        `json:"status"`
	Output        string              `json:"output"`
	Error         string              `json:"error"`
	ExecutionTime float64             `json:"execution_time"`
	ExitCode      int                 `json:"exit_code"`
	TestResults   []model.TestVerdict `json:"test_results"`
}

// Execute forwards the request to the remote service's execute endpoint and
// translates its response back into a model.ExecutionResult. Transport and
// remote-side infrastructure failures come back as AppErrors; execution
// outcomes, including student-code failures, come back as results.
func (c *Client) Execute(ctx context.Context, req *model.ExecutionRequest) (*model.ExecutionResult, error) {
	body := executeRequest{
		Code:     req.Code,
		Language: string(req.Language),
		Stdin:    req.Stdin,
		Timeout:  req.Timeout,
	}
	for _, tc := range req.TestCases {
		body.TestCases = append(body.TestCases, testCase{
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			Description:    tc.Description,
		})
	}

	buf, err := json.Marshal(body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeInternal, "encode execution request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/execute", bytes.NewReader(buf))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeInternal, "build execution request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeServiceUnavailable, "execution service unreachable")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, apperrors.New(apperrors.ErrorTypeAuthFailed, "execution service rejected credentials")
	case http.StatusBadRequest:
		return nil, apperrors.New(apperrors.ErrorTypeInvalidInput, "execution service rejected request")
	case http.StatusTooManyRequests:
		return nil, apperrors.New(apperrors.ErrorTypeRateLimitExceeded, "execution service rate limit exceeded")
	default:
		return nil, apperrors.Newf(apperrors.ErrorTypeExecutionFailed, "execution service returned status %d", resp.StatusCode)
	}

	var out executeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeExecutionFailed, "decode execution service response")
	}

	return &model.ExecutionResult{
		Status:        out.Status,
		Stdout:        out.Output,
		Stderr:        out.Error,
		ExecutionTime: out.ExecutionTime,
		ExitCode:      out.ExitCode,
		TestResults:   out.TestResults,
	}, nil
}

type healthResponse struct {
	Status          string `json:"status"`
	DockerAvailable bool   `json:"docker_available"`
}

// DockerAvailable probes the remote service's health endpoint and reports
// whether its sandbox runtime is reachable. Any transport or decode failure
// counts as unavailable.
func (c *Client) DockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.WithError(err).Debug("execution service health probe failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}
	var h healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return false
	}
	return h.DockerAvailable
}
