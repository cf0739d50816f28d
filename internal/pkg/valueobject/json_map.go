package valueobject

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// ErrScanValueNotBytes indicates the database value is not a byte slice.
var ErrScanValueNotBytes = errors.New("valueobject: jsonmap scan value is not []byte")

// RawKey holds payloads that are not JSON objects when wrapped by FromRaw.
const RawKey = "raw"

// JSONMap stores arbitrary JSON object data.
type JSONMap map[string]any

// FromRaw turns a raw payload into a JSONMap.
//
// A JSON object is decoded as-is; anything else (arrays, scalars, HTML error
// pages, truncated bodies) is kept verbatim under RawKey. An empty payload
// yields an empty map.
func FromRaw(raw []byte) JSONMap {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return JSONMap{}
	}

	if trimmed[0] == '{' {
		var m JSONMap
		if err := json.Unmarshal(trimmed, &m); err == nil && m != nil {
			return m
		}
	}

	return JSONMap{RawKey: string(raw)}
}

// Value implements driver.Valuer for JSONMap.
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner for JSONMap.
func (j *JSONMap) Scan(value any) error {
	if value == nil {
		*j = JSONMap{}
		return nil
	}

	var b []byte

	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	case map[string]any:
		// pgx decodes jsonb into a map when scanned through any
		*j = JSONMap(v)
		return nil
	default:
		return ErrScanValueNotBytes
	}

	var result JSONMap
	if err := json.Unmarshal(b, &result); err != nil {
		return err
	}
	if result == nil {
		result = JSONMap{}
	}

	*j = result
	return nil
}

// Set adds or updates a key-value pair.
func (j JSONMap) Set(key string, value any) {
	j[key] = value
}

// GetString returns a string value, or "" if missing or of another type.
func (j JSONMap) GetString(key string) string {
	if v, ok := j[key].(string); ok {
		return v
	}
	return ""
}

// GetBool returns a boolean, or false if missing or of another type.
func (j JSONMap) GetBool(key string) bool {
	if v, ok := j[key].(bool); ok {
		return v
	}
	return false
}

// GetMap returns a nested object, or nil.
func (j JSONMap) GetMap(key string) JSONMap {
	if v, ok := j[key].(map[string]any); ok {
		return JSONMap(v)
	}
	return nil
}
