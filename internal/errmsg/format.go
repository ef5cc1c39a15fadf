// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Preference operations
	OpPrefsSave Op = "save notification settings"

	// Permission operations
	OpPermissionRequest Op = "enable push notifications"

	// Backend operations
	OpPushSubscribe Op = "register push subscription"
	OpSendTest      Op = "send test notification"

	// Daemon operations
	OpDaemonStart Op = "start notification daemon"
	OpStreamRead  Op = "read push stream"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
