package gateway

import (
	"bytes"
	"encoding/json"

	ierrors "github.com/jrsteele09/go-ticket-client/internal/errors"
)

// DecodeList accepts either a bare JSON array or a paginated
// {"results": [...]} envelope. An object without results is rejected.
func DecodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, ierrors.Wrapf(ierrors.ErrInvalidResponse, "decoding list: %v", err)
		}
		return items, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, ierrors.Wrapf(ierrors.ErrInvalidResponse, "decoding page: %v", err)
	}
	results, ok := envelope["results"]
	if !ok {
		return nil, ierrors.Wrapf(ierrors.ErrInvalidResponse, "page has no results")
	}
	var items []T
	if err := json.Unmarshal(results, &items); err != nil {
		return nil, ierrors.Wrapf(ierrors.ErrInvalidResponse, "decoding page results: %v", err)
	}
	if items == nil {
		return []T{}, nil
	}
	return items, nil
}
