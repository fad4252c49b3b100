package entities

import "time"

// Vote is one rating from a voter to a target within a session. Identity is
// the (session, voter, target) triple; resubmission overwrites Score.
type Vote struct {
	VoteID    string
	SessionID string
	VoterID   string
	TargetID  string
	Score     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsSelfVote reports whether the voter rated themselves.
func (v Vote) IsSelfVote() bool {
	return v.VoterID == v.TargetID
}
