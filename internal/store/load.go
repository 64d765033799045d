package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/AngelCh415/campaign-dashboard/internal/models"
)

// ErrMalformed marks a results document that cannot be rendered at all.
var ErrMalformed = errors.New("malformed dataset")

// DataError describes why a results document was rejected.
type DataError struct {
	Field  string
	Reason string
	Err    error
}

func (e *DataError) Error() string {
	msg := "malformed dataset"
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataError) Is(target error) bool { return target == ErrMalformed }
func (e *DataError) Unwrap() error        { return e.Err }

func malformed(field, reason string) error {
	return &DataError{Field: field, Reason: reason}
}

// solo para validar forma antes de decodificar en modelos
type rawDataset struct {
	CampaignHistory *[]rawEntry `json:"campaign_history"`
}

type rawEntry struct {
	Week          *int             `json:"week"`
	StateSnapshot *json.RawMessage `json:"state_snapshot"`
}

type rawSnapshot struct {
	Campaigns *json.RawMessage `json:"campaigns"`
}

// Load decodes and validates a results document.
func Load(raw []byte) (*models.Dataset, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, malformed("", "empty document")
	}

	var shape rawDataset
	if err := json.Unmarshal(raw, &shape); err != nil {
		return nil, &DataError{Reason: "invalid json", Err: err}
	}
	if shape.CampaignHistory == nil {
		return nil, malformed("campaign_history", "missing")
	}
	entries := *shape.CampaignHistory
	if len(entries) == 0 {
		return nil, malformed("campaign_history", "empty")
	}
	if err := validateFirst(entries[0]); err != nil {
		return nil, err
	}
	prev := 0
	for i, e := range entries {
		field := fmt.Sprintf("campaign_history[%d]", i)
		if e.Week == nil || *e.Week < 1 {
			return nil, malformed(field+".week", "must be >= 1")
		}
		if *e.Week <= prev {
			return nil, malformed(field+".week", "weeks must be strictly ascending")
		}
		prev = *e.Week
		if e.StateSnapshot == nil || bytes.Equal(bytes.TrimSpace(*e.StateSnapshot), []byte("null")) {
			return nil, malformed(field+".state_snapshot", "missing")
		}
	}

	var ds models.Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, &DataError{Reason: "wrong shape", Err: err}
	}
	return &ds, nil
}

func validateFirst(e rawEntry) error {
	if e.StateSnapshot == nil {
		return malformed("campaign_history[0].state_snapshot", "missing")
	}
	var snap *rawSnapshot
	if err := json.Unmarshal(*e.StateSnapshot, &snap); err != nil {
		return &DataError{Field: "campaign_history[0].state_snapshot", Reason: "wrong shape", Err: err}
	}
	if snap == nil {
		return malformed("campaign_history[0].state_snapshot", "missing")
	}
	if snap.Campaigns == nil {
		return malformed("campaign_history[0].state_snapshot.campaigns", "missing")
	}
	var campaigns []json.RawMessage
	if err := json.Unmarshal(*snap.Campaigns, &campaigns); err != nil || campaigns == nil {
		return &DataError{Field: "campaign_history[0].state_snapshot.campaigns", Reason: "not an array", Err: err}
	}
	return nil
}

// Decode reads everything from r and calls Load.
func Decode(r io.Reader) (*models.Dataset, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Load(b)
}
