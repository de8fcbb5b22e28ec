package dictionary

import (
	"errors"

	jsoniter "github.com/json-iterator/go"
)

// ErrInvalidSnapshotJSON is returned when an aggregated attribute payload
// cannot be decoded.
var ErrInvalidSnapshotJSON = errors.New("snapshot attribute json is not valid")

// PositionSnapshot is the materialized view of one position as of one date:
// the selected parent link, if any, plus the value of every attribute of the
// dictionary. Attributes without a period at the date resolve to nil.
type PositionSnapshot struct {
	PositionID int64
	ParentID   *int64
	ParentCode *string
	Attributes map[string]*string
}

type snapshotAttr struct {
	Name  string  `json:"name"`
	Value *string `json:"value"`
}

// DecodeSnapshotAttrs decodes the json_agg payload produced by the snapshot
// queries into an attribute map keyed by semantic attribute name.
func DecodeSnapshotAttrs(raw []byte) (map[string]*string, error) {
	var entries []snapshotAttr

	if err := jsoniter.ConfigFastest.Unmarshal(raw, &entries); err != nil {
		return nil, errors.Join(ErrInvalidSnapshotJSON, err)
	}

	attrs := make(map[string]*string, len(entries))
	for _, e := range entries {
		attrs[e.Name] = e.Value
	}

	return attrs, nil
}
