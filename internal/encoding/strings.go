// Package encoding provides column codecs shared by the store and the
// import pipeline.
package encoding

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// EncodeStringList encodes a string slice as a JSON array for storage in a
// TEXT column. A nil or empty slice encodes as "[]".
func EncodeStringList(values []string) (string, error) {
	if len(values) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeStringList decodes a JSON array column back into a string slice.
// NULL, empty and malformed values all decode to an empty slice; the column
// is presentation data, not something worth failing a read over.
func DecodeStringList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return []string{}
	}
	if values == nil {
		return []string{}
	}
	return values
}

// TruncatePreview shortens definition text for a search result preview,
// preferring a word boundary and appending an ellipsis.
func TruncatePreview(text string, maxLen int) string {
	if maxLen <= 0 || len(text) <= maxLen {
		return text
	}

	cut := maxLen
	// Never split a multi-byte rune
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	truncated := text[:cut]
	if idx := strings.LastIndexByte(truncated, ' '); idx > 0 {
		truncated = truncated[:idx]
	}
	return truncated + "..."
}
