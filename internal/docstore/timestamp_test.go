package docstore

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampDecodeThreeShapes(t *testing.T) {
	want := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
	}{
		{"timestamp object", `{"seconds":1773135000,"nanos":0}`},
		{"rfc3339 string", `"2026-03-10T09:30:00Z"`},
		{"epoch millis", `1773135000000`},
		{"mysql datetime", `"2026-03-10 09:30:00"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &ts))
			assert.Equal(t, want.UnixMilli(), ts.Millis())
		})
	}
}

func TestTimestampMalformedNeverErrors(t *testing.T) {
	for _, raw := range []string{
		`null`, `"not a date"`, `""`, `-5`, `{"sec":1}`, `{"seconds":"x"}`, `[]`, `true`,
	} {
		var ts Timestamp
		assert.NoError(t, json.Unmarshal([]byte(raw), &ts), raw)
		assert.True(t, ts.IsZero(), raw)
	}
}

func TestTimestampZeroLosesEveryComparison(t *testing.T) {
	var zero Timestamp
	real := NewTimestamp(time.Date(1970, 1, 1, 0, 0, 1, 0, time.UTC))

	assert.True(t, real.After(zero))
	assert.False(t, zero.After(real))
	assert.False(t, zero.After(zero))
}

func TestTimestampRoundTrip(t *testing.T) {
	orig := NewTimestamp(time.Date(2026, 5, 2, 18, 45, 12, 345000000, time.UTC))

	raw, err := json.Marshal(orig)
	require.NoError(t, err)

	var back Timestamp
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, orig.Millis(), back.Millis())
}

func TestTimestampZeroMarshalsAsNull(t *testing.T) {
	var ts Timestamp
	raw, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))
}
