package packet

import (
	"encoding/binary"
	"time"

	"github.com/cortexa-systems/cortexa-ingest/internal/models"
)

// BlockMeta carries the request identifiers stamped onto every sample
// decoded from one payload.
type BlockMeta struct {
	SessionID string
	UserID    string
	DeviceID  string
}

// Decode scans buf in fixed strides of RecordSize bytes starting at
// offset 0 and expands every complete record into one sample per EEG
// channel. All samples from the same record share the record's device
// timestamp and the given receivedAt server timestamp.
//
// A trailing partial record is never decoded; the number of bytes it
// occupied is returned as dropped so callers can observe truncation
// without it being an error. Decoding is a pure function of its inputs:
// the same buffer and receivedAt always yield the same samples.
func Decode(buf []byte, meta BlockMeta, receivedAt time.Time) (samples []models.Sample, dropped int) {
	records := len(buf) / RecordSize
	dropped = len(buf) % RecordSize
	if records == 0 {
		return nil, dropped
	}

	samples = make([]models.Sample, 0, records*ChannelCount)
	for i := 0; i < records; i++ {
		rec := buf[i*RecordSize : (i+1)*RecordSize]
		ts := binary.LittleEndian.Uint32(rec[timestampOffset:])
		for _, f := range channelLayout {
			samples = append(samples, models.Sample{
				Time:              receivedAt,
				SessionID:         meta.SessionID,
				UserID:            meta.UserID,
				DeviceID:          meta.DeviceID,
				ChannelName:       f.Name,
				Value:             float64(binary.LittleEndian.Uint16(rec[f.Offset:])),
				DeviceTimestampUS: ts,
			})
		}
	}
	return samples, dropped
}
