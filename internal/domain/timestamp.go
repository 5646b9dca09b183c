package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Layouts accepted for backend timestamps. Flask serialises datetimes in
// the HTTP date format.
var timestampLayouts = []string{
	time.RFC1123,
	time.RFC1123Z,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
}

// Timestamp is a backend time value. Raw keeps the original text when it
// matches none of the known layouts.
type Timestamp struct {
	Time time.Time
	Raw  string
}

// UnmarshalJSON accepts HTTP dates, RFC 3339 strings and unix seconds.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		secs, perr := strconv.ParseFloat(string(data), 64)
		if perr != nil {
			return err
		}
		t.Time = time.Unix(int64(secs), 0).UTC()
		return nil
	}

	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	t.Raw = s
	return nil
}

// MarshalJSON writes RFC 3339, or the raw text when the time was not parsed.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return json.Marshal(t.Raw)
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}
