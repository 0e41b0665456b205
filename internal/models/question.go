package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// QuestionStatus is the triage state of a submitted question.
type QuestionStatus string

const (
	StatusPending  QuestionStatus = "pending"
	StatusApproved QuestionStatus = "approved"
	StatusMerged   QuestionStatus = "merged"
	StatusDeleted  QuestionStatus = "deleted"
)

// MaxQuestionLength is the maximum question text length in characters.
const MaxQuestionLength = 500

// Valid reports whether s is a known status.
func (s QuestionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusMerged, StatusDeleted:
		return true
	}
	return false
}

// Question is an audience question submitted to an event.
type Question struct {
	ID            uuid.UUID      `json:"id"`
	UserID        string         `json:"user_id"`
	SessionID     string         `json:"session_id"`
	Text          string         `json:"text"`
	Status        QuestionStatus `json:"status"`
	Timestamp     time.Time      `json:"timestamp"`
	ExcludeFromAI bool           `json:"exclude_from_ai"`
	MergedInto    *uuid.UUID     `json:"merged_into,omitempty"`
}

// SynthesisInput reports whether the question feeds the clusterer.
func (q *Question) SynthesisInput() bool {
	return q.Status == StatusApproved && !q.ExcludeFromAI
}

// ValidateQuestion checks a submission and returns every problem found.
func ValidateQuestion(userID, sessionID, text string, status QuestionStatus) []string {
	var errs []string
	if strings.TrimSpace(userID) == "" {
		errs = append(errs, "user_id is required")
	}
	if strings.TrimSpace(sessionID) == "" {
		errs = append(errs, "session_id is required")
	}
	if strings.TrimSpace(text) == "" {
		errs = append(errs, "text is required")
	} else if len([]rune(text)) > MaxQuestionLength {
		errs = append(errs, fmt.Sprintf("text exceeds max length %d", MaxQuestionLength))
	}
	if !status.Valid() {
		errs = append(errs, fmt.Sprintf("invalid status: %s", status))
	}
	return errs
}
