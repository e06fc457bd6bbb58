package utils

import (
	"time"
)

const timestampLayout = "2006-01-02 15:04"

// FormatTimestamp returns the provided time formatted using the local time zone
// and a layout that includes date and minutes (locale-sensitive via system TZ).
func FormatTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.In(time.Local).Format(timestampLayout)
}

// FormatTimestampString parses an RFC 3339 timestamp produced by the service and
// formats it with FormatTimestamp. Unparseable values are returned unchanged.
func FormatTimestampString(value string) string {
	if value == "" {
		return ""
	}
	parsed, parseError := time.Parse(time.RFC3339Nano, value)
	if parseError != nil {
		return value
	}
	return FormatTimestamp(parsed)
}
