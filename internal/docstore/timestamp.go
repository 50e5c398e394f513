package docstore

import (
	"encoding/json"
	"strings"
	"time"
)

// Timestamp is the submittedAt representation used across roster entries and
// submissions. The raw store holds this field in three shapes depending on
// which collaborator wrote it: a {"seconds":..,"nanos":..} timestamp object,
// a generic date value (RFC3339 string or epoch milliseconds), or nothing at
// all. Decoding never fails; anything unreadable collapses to the zero
// Timestamp, which compares as the earliest possible moment.
type Timestamp struct {
	t time.Time
}

// NewTimestamp wraps a time.Time. The zero time yields the zero Timestamp.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t: t.UTC()}
}

// Now returns a Timestamp for the current moment.
func Now() Timestamp {
	return Timestamp{t: time.Now().UTC()}
}

// Time returns the wrapped time. Zero for a missing or malformed value.
func (ts Timestamp) Time() time.Time { return ts.t }

// IsZero reports whether the timestamp is missing or was unreadable.
func (ts Timestamp) IsZero() bool { return ts.t.IsZero() }

// Millis returns the timestamp as Unix milliseconds, the unit used for
// latest-submission comparisons. The zero Timestamp returns a value lower
// than any real timestamp so it loses every comparison.
func (ts Timestamp) Millis() int64 {
	if ts.t.IsZero() {
		return -1 << 62
	}
	return ts.t.UnixMilli()
}

// After reports whether ts is strictly later than other.
func (ts Timestamp) After(other Timestamp) bool {
	return ts.Millis() > other.Millis()
}

// tsObject mirrors the timestamp-object encoding written by the form
// collaborator.
type tsObject struct {
	Seconds int64 `json:"seconds"`
	Nanos   int64 `json:"nanos"`
}

// UnmarshalJSON accepts all three raw encodings and never returns an error;
// malformed input is treated as absent rather than failing the whole
// document decode.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	ts.t = time.Time{}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	// Timestamp object: {"seconds":..,"nanos":..}
	if strings.HasPrefix(trimmed, "{") {
		var obj tsObject
		if err := json.Unmarshal(data, &obj); err == nil && obj.Seconds != 0 {
			ts.t = time.Unix(obj.Seconds, obj.Nanos).UTC()
		}
		return nil
	}
	// Epoch milliseconds.
	if !strings.HasPrefix(trimmed, `"`) {
		var millis int64
		if err := json.Unmarshal(data, &millis); err == nil && millis > 0 {
			ts.t = time.UnixMilli(millis).UTC()
		}
		return nil
	}
	// Date string: RFC3339 first, then the DATETIME form MySQL hands back.
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			ts.t = t.UTC()
			return nil
		}
	}
	return nil
}

// MarshalJSON writes RFC3339, or null when the timestamp is absent, so that
// records round-trip into the canonical encoding regardless of which shape
// they were read in.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.t.UTC().Format(time.RFC3339Nano))
}
