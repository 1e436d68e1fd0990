package stackspot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gomesmr/remod/internal/domain"
)

// Client drives quick-command and workflow executions over an authenticated
// transport.
type Client struct {
	transport *Transport
}

// NewClient creates a client on top of the given transport.
func NewClient(transport *Transport) *Client {
	return &Client{transport: transport}
}

// Progress is the lifecycle section of a callback payload.
type Progress struct {
	Status   domain.ExecutionState `json:"status"`
	Start    string                `json:"start"`
	End      string                `json:"end"`
	Duration float64               `json:"duration"`
}

// StepResult is the answer attached to one workflow step.
type StepResult struct {
	Answer string `json:"answer"`
}

// Step is one named phase of a workflow execution.
type Step struct {
	StepName   string     `json:"step_name"`
	StepResult StepResult `json:"step_result"`
}

// Execution is the callback payload for one remote execution. Result may be
// a bare string or an object; ResultText normalizes it.
type Execution struct {
	ExecutionID string          `json:"execution_id"`
	Slug        string          `json:"quick_command_slug"`
	Progress    Progress        `json:"progress"`
	Steps       []Step          `json:"steps"`
	Result      json.RawMessage `json:"result"`
	ErrorMsg    string          `json:"error"`
}

// Handle returns the execution's polling key.
func (e *Execution) Handle() domain.ExecutionHandle {
	return domain.ExecutionHandle(e.ExecutionID)
}

// Meta builds the snapshot metadata for this execution.
func (e *Execution) Meta() domain.ExecutionMeta {
	return domain.ExecutionMeta{
		Handle:   e.Handle(),
		Slug:     e.Slug,
		State:    e.Progress.Status,
		Start:    e.Progress.Start,
		End:      e.Progress.End,
		Duration: e.Progress.Duration,
	}
}

// StepAnswer returns the raw answer for the given step kind. The boolean is
// false when the callback carries no step with that name.
func (e *Execution) StepAnswer(kind domain.StepKind) (string, bool) {
	for _, step := range e.Steps {
		if step.StepName == kind.RemoteName() {
			return step.StepResult.Answer, true
		}
	}
	return "", false
}

// ResultText normalizes the execution result into text. Object results are
// probed for the keys the service has been observed to use; string results
// come back as-is. Empty means the execution produced no usable result.
func (e *Execution) ResultText() string {
	if len(e.Result) == 0 {
		return ""
	}

	var asString string
	if err := json.Unmarshal(e.Result, &asString); err == nil {
		return asString
	}

	var asObject map[string]any
	if err := json.Unmarshal(e.Result, &asObject); err != nil {
		return ""
	}
	for _, key := range []string{"codigo_java", "code", "content"} {
		if s, ok := asObject[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// CreateExecution submits one unit of work for the named quick command and
// returns the handle to poll. The service answers either a bare quoted id or
// an object carrying it.
func (c *Client) CreateExecution(ctx context.Context, slug, input string) (domain.ExecutionHandle, error) {
	path := "/v1/quick-commands/create-execution/" + slug
	payload := map[string]string{"input_data": input}

	body, _, err := c.transport.Do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return "", &SubmissionError{Slug: slug, Err: err}
	}

	handle, err := decodeHandle(body)
	if err != nil {
		return "", &SubmissionError{Slug: slug, Err: err}
	}
	return handle, nil
}

// GetExecution fetches the current callback payload for a handle.
func (c *Client) GetExecution(ctx context.Context, handle domain.ExecutionHandle) (*Execution, error) {
	path := "/v1/quick-commands/callback/" + handle.String()

	body, _, err := c.transport.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var execution Execution
	if err := json.Unmarshal(body, &execution); err != nil {
		return nil, &TransportError{Kind: TransportNetwork, Err: fmt.Errorf("decoding callback payload: %w", err)}
	}
	if execution.ExecutionID == "" {
		execution.ExecutionID = handle.String()
	}
	return &execution, nil
}

// decodeHandle accepts both `"abc-123"` and `{"execution_id": "abc-123"}`.
func decodeHandle(body []byte) (domain.ExecutionHandle, error) {
	trimmed := strings.TrimSpace(string(body))

	var asString string
	if err := json.Unmarshal([]byte(trimmed), &asString); err == nil && asString != "" {
		return domain.ExecutionHandle(asString), nil
	}

	var asObject struct {
		ExecutionID string `json:"execution_id"`
		ID          string `json:"id"`
	}
	if err := json.Unmarshal([]byte(trimmed), &asObject); err == nil {
		if asObject.ExecutionID != "" {
			return domain.ExecutionHandle(asObject.ExecutionID), nil
		}
		if asObject.ID != "" {
			return domain.ExecutionHandle(asObject.ID), nil
		}
	}

	return "", fmt.Errorf("no execution id in response: %q", trimmed)
}
