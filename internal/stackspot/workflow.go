package stackspot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gomesmr/remod/internal/domain"
)

// workflowExecutorName is the reusable workflow that wraps a quick command
// execution, so one dispatch drives the whole multi-step pipeline.
const workflowExecutorName = "stackspot-core/quick-command-executor@1.0.0"

type workflowInputs struct {
	QuickCommandSlug string `json:"quick_command_slug"`
	InputData        string `json:"input_data"`
	ConversationID   string `json:"conversation_id,omitempty"`
}

type workflowSpec struct {
	Name   string         `json:"name"`
	Label  string         `json:"label"`
	Type   string         `json:"type"`
	Inputs workflowInputs `json:"inputs"`
}

type workflowDispatch struct {
	Workflow workflowSpec `json:"workflow"`
}

// workflowExecution is the status payload of a dispatched workflow. Outputs
// nests job id → step id → step output; the step output of the executor step
// is the quick-command callback payload.
type workflowExecution struct {
	ExecutionID string                                `json:"execution_id"`
	Status      domain.ExecutionState                 `json:"status"`
	Outputs     map[string]map[string]json.RawMessage `json:"outputs"`
	Error       string                                `json:"error"`
}

// DispatchWorkflow starts the quick-command executor workflow for slug and
// returns the workflow execution handle. The conversation id ties the four
// steps of one run together on the service side.
func (c *Client) DispatchWorkflow(ctx context.Context, slug, input, conversationID string) (domain.ExecutionHandle, error) {
	payload := workflowDispatch{
		Workflow: workflowSpec{
			Name:  workflowExecutorName,
			Label: "Execute Quick Command",
			Type:  "reusable",
			Inputs: workflowInputs{
				QuickCommandSlug: slug,
				InputData:        input,
				ConversationID:   conversationID,
			},
		},
	}

	body, _, err := c.transport.Do(ctx, http.MethodPost, "/v3/workflows/dispatch", payload)
	if err != nil {
		return "", &SubmissionError{Slug: slug, Err: err}
	}

	handle, err := decodeHandle(body)
	if err != nil {
		return "", &SubmissionError{Slug: slug, Err: err}
	}
	return handle, nil
}

// PollWorkflowUntilTerminal polls a dispatched workflow with the same policy
// as PollUntilTerminal and, on completion, returns the quick-command
// callback payload dug out of the workflow outputs.
func (c *Client) PollWorkflowUntilTerminal(ctx context.Context, handle domain.ExecutionHandle, opts PollOptions) (*Execution, error) {
	return c.pollLoop(ctx, handle, opts, func(ctx context.Context) (*Execution, error) {
		return c.getWorkflowExecution(ctx, handle)
	})
}

func (c *Client) getWorkflowExecution(ctx context.Context, handle domain.ExecutionHandle) (*Execution, error) {
	path := "/v3/workflows/executions/" + handle.String()

	body, _, err := c.transport.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var wf workflowExecution
	if err := json.Unmarshal(body, &wf); err != nil {
		return nil, &TransportError{Kind: TransportNetwork, Err: fmt.Errorf("decoding workflow payload: %w", err)}
	}

	if wf.Status != domain.StateCompleted {
		return &Execution{
			ExecutionID: handle.String(),
			Progress:    Progress{Status: wf.Status},
			ErrorMsg:    wf.Error,
		}, nil
	}

	callback, err := extractCallback(wf.Outputs)
	if err != nil {
		return nil, err
	}
	if callback.ExecutionID == "" {
		callback.ExecutionID = handle.String()
	}
	callback.Progress.Status = domain.StateCompleted
	return callback, nil
}

// extractCallback locates the step output holding the quick-command result
// inside the workflow output tree.
func extractCallback(outputs map[string]map[string]json.RawMessage) (*Execution, error) {
	for _, job := range outputs {
		for _, stepOutput := range job {
			var callback Execution
			if err := json.Unmarshal(stepOutput, &callback); err != nil {
				continue
			}
			if len(callback.Steps) > 0 || len(callback.Result) > 0 {
				return &callback, nil
			}
		}
	}
	return nil, fmt.Errorf("no quick-command result found in workflow outputs")
}
