// Package pagination implements the opaque cursor tokens used by the diary
// entry listing.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

// ErrBadToken is returned for tokens that do not decode to a cursor.
var ErrBadToken = errors.New("invalid pagination token")

// Cursor marks the last row of a served page in a date-descending entry
// listing: the entry id plus its date in unix millis. The id breaks ties
// between same-day entries.
type Cursor struct {
	EntryID  uint64 `json:"entry_id"`
	DateUnix int64  `json:"date_unix,omitempty"`
}

// FromEntry builds the cursor pointing at the given row.
func FromEntry(entryID uint64, date time.Time) Cursor {
	return Cursor{EntryID: entryID, DateUnix: date.UnixMilli()}
}

// IsZero reports whether the cursor marks the start of the listing.
func (c Cursor) IsZero() bool {
	return c.EntryID == 0 && c.DateUnix == 0
}

// Date returns the cursor's date in UTC.
func (c Cursor) Date() time.Time {
	return time.UnixMilli(c.DateUnix).UTC()
}

// Encode converts a Cursor into an opaque Base64 token.
func Encode(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Decode parses a token into a Cursor. Empty token means first page.
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}

	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrBadToken
	}

	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return Cursor{}, ErrBadToken
	}
	return c, nil
}
