package db

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowGetters(t *testing.T) {
	row := NewRow(map[string]any{
		"ID":       int64(42),
		"small":    int32(7),
		"text_num": "123",
		"name":     "alice",
		"ratio":    "0.25",
		"dbl":      float64(1.5),
		"ts":       "2024-01-02 03:04:05",
		"day":      "2024-01-02",
		"tm":       time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600)),
		"nothing":  nil,
	})

	n, err := row.GetInt64("id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	n, err = row.GetInt("small")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	n, err = row.GetInt64("text_num")
	require.NoError(t, err)
	assert.Equal(t, int64(123), n)

	s, err := row.GetString("name")
	require.NoError(t, err)
	assert.Equal(t, "alice", s)

	s, err = row.GetString("id")
	require.NoError(t, err)
	assert.Equal(t, "42", s)

	f, err := row.GetDouble("ratio")
	require.NoError(t, err)
	assert.InDelta(t, 0.25, f, 1e-12)

	f32, err := row.GetFloat("dbl")
	require.NoError(t, err)
	assert.InDelta(t, float32(1.5), f32, 1e-6)

	ts, err := row.GetTime("ts")
	require.NoError(t, err)
	assert.True(t, ts.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))

	day, err := row.GetTime("day")
	require.NoError(t, err)
	assert.True(t, day.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))

	tm, err := row.GetTime("tm")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, tm.Location())
	assert.Equal(t, 2, tm.Hour())

	s, err = row.GetString("tm")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02 02:04:05", s)
}

func TestRowNullAndMissing(t *testing.T) {
	row := NewRow(map[string]any{"a": nil})

	assert.True(t, row.IsNull("a"))
	assert.True(t, row.IsNull("missing"))

	_, err := row.GetString("a")
	assert.True(t, errors.Is(err, ErrNullValue))

	_, err = row.GetInt64("missing")
	assert.True(t, errors.Is(err, ErrNoSuchColumn))
}

func TestRowConversionErrors(t *testing.T) {
	row := NewRow(map[string]any{"s": "abc", "b": true})

	_, err := row.GetInt64("s")
	assert.Error(t, err)
	_, err = row.GetDouble("s")
	assert.Error(t, err)
	_, err = row.GetTime("s")
	assert.Error(t, err)
	_, err = row.GetTime("b")
	assert.Error(t, err)
}

func TestRowGetInt64RejectsFractions(t *testing.T) {
	row := NewRow(map[string]any{
		"text_frac": "1.9",
		"text_big":  "9007199254740993",
		"float":     float64(2.5),
		"whole":     float64(3),
	})

	_, err := row.GetInt64("text_frac")
	assert.Error(t, err)
	_, err = row.GetInt64("float")
	assert.Error(t, err)

	n, err := row.GetInt64("text_big")
	require.NoError(t, err)
	assert.Equal(t, int64(9007199254740993), n)

	n, err = row.GetInt64("whole")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
