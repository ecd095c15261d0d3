// internal/catalog/jsontext.go
//
// JSON-in-TEXT column types with decode-with-fallback semantics.
//
// The catalog stores array-valued attributes as JSON strings inside
// TEXT columns.  Scan never fails on corrupt payloads: the value
// decodes to an empty list and the row survives.  Value re-encodes on
// write so round-trips stay lossless for well-formed data.
package catalog

import (
	"database/sql/driver"
	"encoding/json"
)

// StringList is a JSON-encoded []string column (regions, pools,
// cpu_brands, aliases, tags).
type StringList []string

// Scan implements sql.Scanner.  NULL, empty, and malformed input all
// become an empty list.
func (l *StringList) Scan(src any) error {
	*l = decodeList[string](src)
	return nil
}

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Disk is one entry of an offer's disks_json column.
type Disk struct {
	Role   string `json:"role"`
	Type   string `json:"type"`
	SizeGB int    `json:"size_gb"`
}

// DiskList is a JSON-encoded []Disk column.
type DiskList []Disk

// Scan implements sql.Scanner with the same fallback-to-empty contract
// as StringList.
func (l *DiskList) Scan(src any) error {
	*l = decodeList[Disk](src)
	return nil
}

// Value implements driver.Valuer.
func (l DiskList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// decodeList turns raw column bytes into a typed slice, swallowing any
// decode failure.
func decodeList[T any](src any) []T {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return []T{}
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return []T{}
	}
	if len(raw) == 0 {
		return []T{}
	}

	var out []T
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return []T{}
	}
	return out
}
