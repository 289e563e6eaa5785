package packet

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMeta = BlockMeta{
	SessionID: "session-1",
	UserID:    "user-1",
	DeviceID:  "device-1",
}

// buildRecord assembles one 68-byte record with the given channel
// values and device timestamp.
func buildRecord(t *testing.T, channels [8]uint16, timestampUS uint32) []byte {
	t.Helper()
	rec := make([]byte, RecordSize)
	for i, v := range channels {
		binary.LittleEndian.PutUint16(rec[i*2:], v)
	}
	binary.LittleEndian.PutUint32(rec[timestampOffset:], timestampUS)
	return rec
}

func TestDecodeSingleRecord(t *testing.T) {
	channels := [8]uint16{100, 200, 300, 400, 500, 600, 700, 65535}
	buf := buildRecord(t, channels, 123456)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	samples, dropped := Decode(buf, testMeta, now)
	require.Len(t, samples, 8)
	assert.Equal(t, 0, dropped)

	wantNames := []string{"Fp1", "Fp2", "F7", "F8", "T7", "T8", "P7", "P8"}
	for i, s := range samples {
		assert.Equal(t, wantNames[i], s.ChannelName)
		assert.Equal(t, float64(channels[i]), s.Value)
		assert.Equal(t, uint32(123456), s.DeviceTimestampUS)
		assert.Equal(t, now, s.Time)
		assert.Equal(t, "session-1", s.SessionID)
		assert.Equal(t, "user-1", s.UserID)
		assert.Equal(t, "device-1", s.DeviceID)
	}
}

// Known-bytes scenario: first two channels 1 and 2, timestamp 10000.
func TestDecodeKnownBytes(t *testing.T) {
	buf := make([]byte, RecordSize)
	buf[0], buf[1] = 0x01, 0x00
	buf[2], buf[3] = 0x02, 0x00
	buf[64], buf[65], buf[66], buf[67] = 0x10, 0x27, 0x00, 0x00

	samples, _ := Decode(buf, testMeta, time.Now())
	require.Len(t, samples, 8)

	assert.Equal(t, "Fp1", samples[0].ChannelName)
	assert.Equal(t, float64(1), samples[0].Value)
	assert.Equal(t, uint32(10000), samples[0].DeviceTimestampUS)

	assert.Equal(t, "Fp2", samples[1].ChannelName)
	assert.Equal(t, float64(2), samples[1].Value)
	assert.Equal(t, uint32(10000), samples[1].DeviceTimestampUS)
}

func TestDecodeMultipleRecords(t *testing.T) {
	var buf []byte
	for i := 0; i < 5; i++ {
		buf = append(buf, buildRecord(t, [8]uint16{uint16(i)}, uint32(i*1000))...)
	}

	samples, dropped := Decode(buf, testMeta, time.Now())
	assert.Equal(t, 0, dropped)
	require.Len(t, samples, 40)

	for i := 0; i < 5; i++ {
		block := samples[i*8 : (i+1)*8]
		assert.Equal(t, float64(i), block[0].Value)
		for _, s := range block {
			assert.Equal(t, uint32(i*1000), s.DeviceTimestampUS)
		}
	}
}

func TestDecodeTruncation(t *testing.T) {
	tests := []struct {
		name        string
		bufLen      int
		wantSamples int
		wantDropped int
	}{
		{"empty buffer", 0, 0, 0},
		{"shorter than one record", 67, 0, 67},
		{"one byte", 1, 0, 1},
		{"exactly one record", 68, 8, 0},
		{"one record plus trailing bytes", 68 + 30, 8, 30},
		{"three records minus a byte", 3*68 - 1, 16, 67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, tt.bufLen)
			samples, dropped := Decode(buf, testMeta, time.Now())
			assert.Len(t, samples, tt.wantSamples)
			assert.Equal(t, tt.wantDropped, dropped)
		})
	}
}

func TestDecodeDeterministic(t *testing.T) {
	buf := append(buildRecord(t, [8]uint16{1, 2, 3, 4, 5, 6, 7, 8}, 42),
		buildRecord(t, [8]uint16{9, 10, 11, 12, 13, 14, 15, 16}, 43)...)
	now := time.Now()

	first, firstDropped := Decode(buf, testMeta, now)
	second, secondDropped := Decode(buf, testMeta, now)

	assert.Equal(t, first, second)
	assert.Equal(t, firstDropped, secondDropped)
}

// IMU bytes must not influence the decoded samples.
func TestDecodeIgnoresMotionBytes(t *testing.T) {
	buf := buildRecord(t, [8]uint16{7, 7, 7, 7, 7, 7, 7, 7}, 99)
	for i := 16; i < 64; i++ {
		buf[i] = 0xFF
	}

	samples, _ := Decode(buf, testMeta, time.Now())
	require.Len(t, samples, 8)
	for _, s := range samples {
		assert.Equal(t, float64(7), s.Value)
		assert.Equal(t, uint32(99), s.DeviceTimestampUS)
	}
}

func TestChannelNames(t *testing.T) {
	assert.Equal(t, []string{"Fp1", "Fp2", "F7", "F8", "T7", "T8", "P7", "P8"}, ChannelNames())
}
