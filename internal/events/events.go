// Package events decodes Azure Event Grid deliveries.
package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Event types handled by the webhook
const (
	SubscriptionValidationEvent = "Microsoft.EventGrid.SubscriptionValidationEvent"
	BlobCreatedEvent            = "Microsoft.Storage.BlobCreated"
)

// Event is an Event Grid event in the Event Grid schema
type Event struct {
	ID          string          `json:"id"`
	Topic       string          `json:"topic"`
	Subject     string          `json:"subject"`
	EventType   string          `json:"eventType"`
	EventTime   string          `json:"eventTime"`
	Data        json.RawMessage `json:"data"`
	DataVersion string          `json:"dataVersion"`
}

// SubscriptionValidationData is the payload of a subscription handshake
type SubscriptionValidationData struct {
	ValidationCode string `json:"validationCode"`
	ValidationURL  string `json:"validationUrl,omitempty"`
}

// ValidationResponse answers a subscription handshake
type ValidationResponse struct {
	ValidationResponse string `json:"validationResponse"`
}

// BlobCreatedData is the payload of a BlobCreated event
type BlobCreatedData struct {
	API           string `json:"api"`
	ContentType   string `json:"contentType"`
	ContentLength int64  `json:"contentLength"`
	BlobType      string `json:"blobType"`
	URL           string `json:"url"`
}

// Parse decodes a delivery. Event Grid posts an array; a single object is
// accepted too.
func Parse(r io.Reader) ([]Event, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty event payload")
	}

	if trimmed[0] == '{' {
		var ev Event
		if err := json.Unmarshal(trimmed, &ev); err != nil {
			return nil, fmt.Errorf("failed to decode event: %w", err)
		}
		return []Event{ev}, nil
	}

	var evs []Event
	if err := json.Unmarshal(trimmed, &evs); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return evs, nil
}

// ValidationData decodes the payload of a subscription validation event
func (e Event) ValidationData() (SubscriptionValidationData, error) {
	var d SubscriptionValidationData
	if err := json.Unmarshal(e.Data, &d); err != nil {
		return d, fmt.Errorf("failed to decode validation data of event %s: %w", e.ID, err)
	}
	if d.ValidationCode == "" {
		return d, fmt.Errorf("event %s has no validation code", e.ID)
	}
	return d, nil
}

// BlobData decodes the payload of a BlobCreated event
func (e Event) BlobData() (BlobCreatedData, error) {
	var d BlobCreatedData
	if err := json.Unmarshal(e.Data, &d); err != nil {
		return d, fmt.Errorf("failed to decode blob data of event %s: %w", e.ID, err)
	}
	return d, nil
}

// BlobLocation extracts the container and blob name from a storage event
// subject of the form /blobServices/default/containers/<container>/blobs/<name>.
// Blob names may contain slashes.
func BlobLocation(subject string) (container, name string, ok bool) {
	const prefix = "/blobServices/default/containers/"
	rest, found := strings.CutPrefix(subject, prefix)
	if !found {
		return "", "", false
	}
	container, name, found = strings.Cut(rest, "/blobs/")
	if !found || container == "" || name == "" {
		return "", "", false
	}
	return container, name, true
}
