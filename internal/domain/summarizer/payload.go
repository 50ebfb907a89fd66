package summarizer

import (
	"strings"
	"unicode/utf8"
)

// ClampUTF8 cuts text to at most limit bytes without splitting a multi-byte sequence. The
// second return reports whether anything was cut.
func ClampUTF8(text string, limit int) (string, bool) {
	if limit <= 0 || len(text) <= limit {
		return text, false
	}
	cut := limit
	for cut > 0 && cut > limit-utf8.UTFMax && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return strings.ToValidUTF8(text[:cut], ""), true
}

func (s *service) buildPayload(text string, length Length) (Payload, bool) {
	content, truncated := ClampUTF8(text, s.cfg.MaxPayloadBytes)
	length = Length(strings.TrimSpace(string(length)))
	if length == "" {
		length = s.cfg.DefaultLength
	}
	return Payload{Content: content, Length: length}, truncated
}
