// internal/domain/models/id.go
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidID is returned when a record identifier is neither a JSON integer
// nor a string holding one.
var ErrInvalidID = errors.New("invalid identifier")

// ID is the primary/foreign key of a survey entity.
//
// The backend serializes keys as integers, but form values and older payloads
// carry them as strings. Both decode to the same ID so lookups can use plain
// equality.
type ID int64

// ParseID parses a decimal identifier, trimming surrounding whitespace.
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, ErrInvalidID
	}
	return ID(n), nil
}

// String returns the decimal form used in option values and URLs.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// UnmarshalJSON accepts 3 and "3".
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return ErrInvalidID
		}
		parsed, err := ParseID(s)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return ErrInvalidID
	}
	v, err := n.Int64()
	if err != nil {
		return ErrInvalidID
	}
	*id = ID(v)
	return nil
}
