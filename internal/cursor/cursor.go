package cursor

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Cursor is a listing position: the collection being paged and the offset
// of the first item on the next page
type Cursor struct {
	Scope  string `json:"scope"`
	Offset int    `json:"offset"`
}

// Encode serializes the cursor to an opaque base64 string
func (c *Cursor) Encode() (string, error) {
	if c.Scope == "" {
		return "", fmt.Errorf("cursor scope required")
	}
	if c.Offset < 0 {
		return "", fmt.Errorf("cursor offset must not be negative")
	}

	jsonData, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}

	return base64.URLEncoding.EncodeToString(jsonData), nil
}

// Decode deserializes a cursor from an opaque base64 string
func Decode(encoded string) (*Cursor, error) {
	if encoded == "" {
		return nil, fmt.Errorf("empty cursor string")
	}

	jsonData, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor encoding: %w", err)
	}

	var c Cursor
	if err := json.Unmarshal(jsonData, &c); err != nil {
		return nil, fmt.Errorf("invalid cursor format: %w", err)
	}

	if c.Scope == "" {
		return nil, fmt.Errorf("cursor missing scope")
	}
	if c.Offset < 0 {
		return nil, fmt.Errorf("cursor offset must not be negative")
	}

	return &c, nil
}

// Next returns the token for the page after one ending at end, or "" when
// end reaches total
func Next(scope string, end, total int) (string, error) {
	if end >= total {
		return "", nil
	}
	c := &Cursor{Scope: scope, Offset: end}
	return c.Encode()
}

// Window resolves token into the [start, end) slice bounds of a page of at
// most size items out of total. An empty token starts at zero. A token
// issued for a different scope is rejected.
func Window(scope, token string, size, total int) (start, end int, err error) {
	if token != "" {
		c, err := Decode(token)
		if err != nil {
			return 0, 0, err
		}
		if c.Scope != scope {
			return 0, 0, fmt.Errorf("cursor issued for %q, not %q", c.Scope, scope)
		}
		start = c.Offset
	}
	if start > total {
		start = total
	}
	end = total
	if size > 0 && start+size < total {
		end = start + size
	}
	return start, end, nil
}
