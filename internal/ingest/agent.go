package ingest

import (
	"context"
	"encoding/json"
	"errors"
)

var ErrInvalidAgentResponse = errors.New("agent response is not valid JSON")

// TriggerAgentRun asks the agent service to run one cycle and returns its
// answer verbatim.
func TriggerAgentRun(ctx context.Context, c HTTPClient, url string) (json.RawMessage, error) {
	b, status, err := getBytes(ctx, c, url)
	if err != nil {
		return nil, err
	}
	if !json.Valid(b) {
		return nil, &FetchError{Source: url, Status: status, Err: ErrInvalidAgentResponse}
	}
	return json.RawMessage(b), nil
}
