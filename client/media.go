package client

import (
	"encoding/base64"
	"strings"
)

// Inline media rides inside the message content as a bracketed marker followed
// by the payload, so the wire format stays a single text column.
const (
	imagePrefix = "[IMG]"
	voicePrefix = "[VOICE]"
)

// EncodeImage wraps raw image bytes into an inline message payload.
func EncodeImage(data []byte) string {
	return imagePrefix + base64.StdEncoding.EncodeToString(data)
}

// DecodeImage extracts the image bytes from an inline payload. The second
// return is false when the content is not an image message.
func DecodeImage(content string) ([]byte, bool) {
	if !strings.HasPrefix(content, imagePrefix) {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(content, imagePrefix))
	if err != nil {
		return nil, false
	}
	return data, true
}

// EncodeVoiceLabel produces a voice-message label, e.g. "[VOICE]0:12". Only
// the label is transported; audio itself is out of scope.
func EncodeVoiceLabel(duration string) string {
	return voicePrefix + duration
}

// Preview collapses media payloads into short labels for the contact list.
func Preview(content string) string {
	switch {
	case strings.HasPrefix(content, imagePrefix):
		return "Photo"
	case strings.HasPrefix(content, voicePrefix):
		return "Voice message " + strings.TrimPrefix(content, voicePrefix)
	default:
		return content
	}
}
