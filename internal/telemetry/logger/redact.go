package logger

import (
	"log/slog"
	"strconv"
	"strings"
)

// Sensitive key patterns that should be redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"credential",
	"auth",
	"requirepass",
}

// Keys whose values are client data and may be large.
var valueKeys = map[string]bool{
	"value":   true,
	"payload": true,
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// MaxValueLen is the longest client value written to a log unabridged.
const MaxValueLen = 64

// redactSensitive redacts credentials and truncates client values.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()

		if strVal != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
		if valueKeys[strings.ToLower(a.Key)] {
			return slog.String(a.Key, TruncateValue(strVal))
		}
	}

	// Handle nested groups recursively
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// TruncateValue shortens a value longer than MaxValueLen.
// Format: first MaxValueLen bytes + "...(<total> bytes)"
func TruncateValue(value string) string {
	if len(value) <= MaxValueLen {
		return value
	}
	return value[:MaxValueLen] + "...(" + strconv.Itoa(len(value)) + " bytes)"
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
