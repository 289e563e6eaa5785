package models

import "time"

// NotificationTypeNewBlock tags notifications announcing a freshly
// persisted block of raw samples.
const NotificationTypeNewBlock = "NEW_EEG_BLOCK"

// IngestRequest is the JSON body of an upload request as it arrives on
// the wire. PayloadZstd is base64-encoded zstd-compressed frame data.
type IngestRequest struct {
	UserID         string `json:"user_id"`
	DeviceID       string `json:"device_id"`
	SessionID      string `json:"session_id"`
	SamplingRateHz int    `json:"sampling_rate_hz"`
	PayloadZstd    string `json:"payload_zstd"`
}

// Upload is a validated upload handed from the transport layer to the
// ingestion service. Payload holds the compressed bytes with the
// base64 envelope already stripped.
type Upload struct {
	UserID         string
	DeviceID       string
	SessionID      string
	SamplingRateHz int
	Payload        []byte
}

// Sample is one channel reading derived from a device record, the unit
// of persistence. Samples are immutable once produced.
type Sample struct {
	Time              time.Time
	SessionID         string
	UserID            string
	DeviceID          string
	ChannelName       string
	Value             float64
	DeviceTimestampUS uint32
}

// BlockNotification announces a newly persisted block of samples to
// downstream consumers. Delivery is best-effort; a lost notification is
// never replayed.
type BlockNotification struct {
	Type       string    `json:"type"`
	SessionID  string    `json:"session_id"`
	UserID     string    `json:"user_id"`
	NumRecords int       `json:"num_records"`
	ReceivedAt time.Time `json:"received_at"`
}

// IngestResult reports the outcome of a successful ingestion.
type IngestResult struct {
	// InsertedSamples is the number of samples durably written. Zero
	// means the payload decoded to no complete records and nothing was
	// stored or announced.
	InsertedSamples int

	// Notified is false when the block was stored but the downstream
	// announcement could not be published.
	Notified bool
}

// IngestResponse is the JSON body returned for accepted uploads.
type IngestResponse struct {
	Status          string `json:"status"`
	Message         string `json:"message,omitempty"`
	InsertedRecords int    `json:"inserted_records,omitempty"`
}
