// Package packet decodes the fixed binary frame format emitted by the
// wearable into per-channel samples.
package packet

// The device emits fixed 68-byte records with no version tag:
//
//	bytes  0-15  8 x uint16 LE   EEG channel values
//	bytes 16-63  12 x float32    motion/IMU values (not decoded)
//	bytes 64-67  uint32 LE       device-local timestamp, microseconds
//
// The layout lives in one descriptor table so that decoding a new field
// (e.g. the IMU block) is a table entry, not new parsing code.
const (
	// RecordSize is the size in bytes of one device record.
	RecordSize = 68

	channelWidth    = 2
	timestampOffset = 64
)

// channelField names one uint16 channel slot within a record.
type channelField struct {
	Name   string
	Offset int
}

// channelLayout lists the EEG channels in wire order. Offsets are byte
// positions within a record.
var channelLayout = [...]channelField{
	{Name: "Fp1", Offset: 0},
	{Name: "Fp2", Offset: 2},
	{Name: "F7", Offset: 4},
	{Name: "F8", Offset: 6},
	{Name: "T7", Offset: 8},
	{Name: "T8", Offset: 10},
	{Name: "P7", Offset: 12},
	{Name: "P8", Offset: 14},
}

// ChannelCount is the number of EEG channels per device record. Every
// complete record expands into exactly this many samples.
const ChannelCount = len(channelLayout)

// ChannelNames returns the channel names in wire order.
func ChannelNames() []string {
	names := make([]string, ChannelCount)
	for i, f := range channelLayout {
		names[i] = f.Name
	}
	return names
}
