package models

import (
	"fmt"
	"time"
)

// SynthesizedQuestion is a condensed question proposed for one cluster.
type SynthesizedQuestion struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
	Approved  bool   `json:"approved"`
}

// SynthesizedID returns the stable id for position index in a session.
func SynthesizedID(sessionID string, index int) string {
	return fmt.Sprintf("%s-synth-%d", sessionID, index)
}

// SynthesisCacheEntry is the memoized synthesis for one session.
type SynthesisCacheEntry struct {
	SessionID   string                `json:"session_id"`
	ApprovedIDs []string              `json:"approved_ids"`
	Questions   []SynthesizedQuestion `json:"synthesized_questions"`
	GeneratedAt time.Time             `json:"generated_at"`
}
