package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
)

// ErrNotObject is returned when a request body is not a JSON object.
var ErrNotObject = errors.New(`"value" must be of type object`)

// Payload is a decoded JSON object checked field by field, so type errors
// can be reported per key instead of failing the whole decode.
type Payload map[string]json.RawMessage

// ParsePayload decodes r as a JSON object. An empty body is an empty payload.
func ParsePayload(r io.Reader) (Payload, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return Payload{}, nil
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil || p == nil {
		return nil, ErrNotObject
	}

	return p, nil
}

func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String returns the string value of key. ok is false when the key is absent.
func (p Payload) String(key string) (value string, ok bool, err error) {
	raw, ok := p[key]
	if !ok {
		return "", false, nil
	}
	if err := json.Unmarshal(raw, &value); err != nil || isNull(raw) {
		return "", true, fmt.Errorf(`"%s" must be a string`, key)
	}
	return value, true, nil
}

// Bool returns the boolean value of key. ok is false when the key is absent.
func (p Payload) Bool(key string) (value bool, ok bool, err error) {
	raw, ok := p[key]
	if !ok {
		return false, false, nil
	}
	if err := json.Unmarshal(raw, &value); err != nil || isNull(raw) {
		return false, true, fmt.Errorf(`"%s" must be a boolean`, key)
	}
	return value, true, nil
}

// OnlyKeys rejects the first key, in sorted order, that is not in allowed.
func (p Payload) OnlyKeys(allowed ...string) error {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !contains(allowed, k) {
			return fmt.Errorf(`"%s" is not allowed`, k)
		}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
