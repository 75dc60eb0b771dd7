package amqp

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackTableIsDeterministicAndMatchesWireFixture(t *testing.T) {
	got := packTable(Table{"key1": false, "key2": true})
	want := []byte("\x00\x00\x00\x0e\x04key1t\x00\x04key2t\x01")
	assert.Equal(t, want, got)
}

func TestTableRoundTrip(t *testing.T) {
	in := Table{
		"a-string": "hello",
		"a-bool":   true,
		"a-table":  Table{"nested": int16(7)},
		"a-null":   nil,
	}
	encoded := packTable(in)
	out, err := readTable(bytes.NewReader(encoded))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadTableRejectsHugeDeclaredLength(t *testing.T) {
	// A field table claiming 0xFFFFFFFF bytes of body but the stream ends
	// almost immediately: must fail on the shortfall, not allocate ~4GiB.
	raw := []byte("\xff\xff\xff\xff\xff")
	_, err := readTable(bytes.NewReader(raw))
	require.Error(t, err)
}

func TestReadTableRejectsTruncatedKey(t *testing.T) {
	// Declares an 8-byte body but only 3 bytes follow: a key length of 4 and
	// 2 bytes of key.
	raw := []byte("\x00\x00\x00\x08\x04ke")
	_, err := readTable(bytes.NewReader(raw))
	require.Error(t, err)
}

func TestPackBoolsUnpackBoolsRoundTrip(t *testing.T) {
	bits := packBools(true, false, true, true, false, false, false, true, true)
	assert.Len(t, bits, 2)
	assert.Equal(t, []bool{true, false, true, true, false, false, false, true}, unpackBools(bits[0], 8))
	assert.Equal(t, []bool{true}, unpackBools(bits[1], 1))
}

func TestTimestampRoundTripDropsSubSecondPrecision(t *testing.T) {
	in := time.Date(2026, 7, 30, 12, 0, 0, 123456789, time.FixedZone("X", 3600))
	var buf bytes.Buffer
	require.NoError(t, writeTimestamp(&buf, in))
	out, err := readTimestamp(&buf)
	require.NoError(t, err)
	assert.Equal(t, in.UTC().Unix(), out.Unix())
	assert.True(t, out.Location() == time.UTC)
}

func TestNarrowestIntPicksSmallestTagByMagnitude(t *testing.T) {
	assert.IsType(t, int16(0), narrowestInt(1000))
	assert.IsType(t, int32(0), narrowestInt(1<<20))
	assert.IsType(t, int64(0), narrowestInt(1<<40))
}

func TestShortStringRejectsOversizedInput(t *testing.T) {
	var buf bytes.Buffer
	err := writeShortStr(&buf, string(make([]byte, 256)))
	require.Error(t, err)
}
