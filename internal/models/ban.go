package models

import "time"

// BanType distinguishes permanent from time-boxed bans.
type BanType string

const (
	BanPermanent BanType = "permanent"
	BanTemporary BanType = "temporary"
)

// Ban blocks a user from submitting questions and chatting, either in one
// event or, with an empty EventID, everywhere.
type Ban struct {
	EventID  string     `json:"event_id,omitempty"`
	UserID   string     `json:"user_id"`
	Type     BanType    `json:"type"`
	Until    *time.Time `json:"ban_until,omitempty"`
	Reason   string     `json:"reason,omitempty"`
	BannedBy string     `json:"banned_by"`
	BannedAt time.Time  `json:"banned_at"`
}

// ActiveAt reports whether the ban is in force at now.
func (b *Ban) ActiveAt(now time.Time) bool {
	if b.Type == BanPermanent {
		return true
	}
	return b.Until != nil && now.Before(*b.Until)
}
