package metrics

import "time"

// StreamStats captures what one summarization stream delivered.
type StreamStats struct {
	Chunks       int           `json:"chunks"`
	Bytes        int           `json:"bytes"`
	PayloadBytes int           `json:"payloadBytes"`
	Truncated    bool          `json:"truncated,omitempty"`
	Duration     time.Duration `json:"duration"`
}

// Observe records one decoded fragment.
func (s *StreamStats) Observe(chunk string) {
	s.Chunks++
	s.Bytes += len(chunk)
}

// IsZero reports whether nothing was streamed.
func (s StreamStats) IsZero() bool {
	return s.Chunks == 0 && s.Bytes == 0
}
