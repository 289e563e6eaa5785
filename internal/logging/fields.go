package logging

import "log/slog"

// Common field names for consistent logging across the service.
const (
	FieldService   = "service"
	FieldUserID    = "user_id"
	FieldDeviceID  = "device_id"
	FieldSessionID = "session_id"
	FieldSamples   = "samples"
	FieldBytes     = "bytes"
	FieldError     = "error"
	FieldStatus    = "status"
	FieldDuration  = "duration_ms"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// UserID returns a slog attribute for the user ID.
func UserID(id string) slog.Attr {
	return slog.String(FieldUserID, id)
}

// DeviceID returns a slog attribute for the device ID.
func DeviceID(id string) slog.Attr {
	return slog.String(FieldDeviceID, id)
}

// SessionID returns a slog attribute for the recording session ID.
func SessionID(id string) slog.Attr {
	return slog.String(FieldSessionID, id)
}

// Samples returns a slog attribute for a sample count.
func Samples(n int) slog.Attr {
	return slog.Int(FieldSamples, n)
}

// Bytes returns a slog attribute for a byte count.
func Bytes(n int) slog.Attr {
	return slog.Int(FieldBytes, n)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}

// Status returns a slog attribute for an HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}
