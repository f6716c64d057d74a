package operations

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/Epistemic-Technology/pdf-splitter/internal/failure"
	"github.com/Epistemic-Technology/pdf-splitter/models"
)

const (
	// MsgInvalidJSON is returned for request bodies that are not a JSON object
	MsgInvalidJSON = "Invalid JSON in request body."
	// MsgMissingSource is returned for requests that name no usable source and destination
	MsgMissingSource = "Provide either local file paths (sourceFilePath and destinationDirectoryPath) or storage details (sourceContainer, destinationContainer, and fileName)."
	// MsgCompleted is the success message of both entry points
	MsgCompleted = "PDF splitting completed successfully."
)

// DecodeRequest decodes a JSON split request. Field names match
// case-insensitively. An empty body, trailing data or mismatched types are
// InvalidInput. A JSON null decodes to the empty request.
func DecodeRequest(r io.Reader) (models.SplitRequest, error) {
	var req models.SplitRequest
	dec := json.NewDecoder(r)
	if err := dec.Decode(&req); err != nil {
		return models.SplitRequest{}, failure.Wrap(failure.InvalidInput, err, MsgInvalidJSON)
	}
	var trailing json.RawMessage
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after request object")
		}
		return models.SplitRequest{}, failure.Wrap(failure.InvalidInput, err, MsgInvalidJSON)
	}
	return req, nil
}

// Validate checks that req names a source (sourceFilePath, or sourceContainer
// and fileName) and a destination for the mode that source selects.
func Validate(req models.SplitRequest) error {
	switch {
	case req.LocalMode():
		if req.DestinationDirectoryPath == "" {
			return failure.New(failure.InvalidInput, MsgMissingSource)
		}
	case req.StorageMode():
		if req.DestinationContainer == "" {
			return failure.New(failure.InvalidInput, MsgMissingSource)
		}
	default:
		return failure.New(failure.InvalidInput, MsgMissingSource)
	}
	return nil
}
