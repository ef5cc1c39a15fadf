package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpPrefsSave,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpPrefsSave,
			err:      errors.New("disk full"),
			expected: "Failed to save notification settings: disk full",
		},
		{
			name:     "permission operation",
			op:       OpPermissionRequest,
			err:      errors.New("permission denied"),
			expected: "Failed to enable push notifications: permission denied",
		},
		{
			name:     "subscribe operation",
			op:       OpPushSubscribe,
			err:      errors.New("HTTP 500"),
			expected: "Failed to register push subscription: HTTP 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpStreamRead,
			context:  "wss://example.com",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with context",
			op:       OpStreamRead,
			context:  "wss://example.com",
			err:      errors.New("connection reset"),
			expected: "Failed to read push stream 'wss://example.com': connection reset",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpSendTest,
			context:  "",
			err:      errors.New("timeout"),
			expected: "Failed to send test notification: timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}
