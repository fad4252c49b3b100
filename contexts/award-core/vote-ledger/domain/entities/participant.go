package entities

import "time"

type ParticipantStatus string

const (
	ParticipantStatusActive    ParticipantStatus = "active"
	ParticipantStatusExcluded  ParticipantStatus = "excluded"
	ParticipantStatusOnLeave   ParticipantStatus = "on_leave"
	ParticipantStatusSickLeave ParticipantStatus = "sick_leave"
)

// ValidParticipantStatus reports whether s is one of the known statuses.
func ValidParticipantStatus(s ParticipantStatus) bool {
	switch s {
	case ParticipantStatusActive, ParticipantStatusExcluded,
		ParticipantStatusOnLeave, ParticipantStatusSickLeave:
		return true
	}
	return false
}

// ParticipantMetadata replaces the legacy free-form JSON blob with an
// explicit schema.
type ParticipantMetadata struct {
	Department string `json:"department,omitempty"`
	Title      string `json:"title,omitempty"`
	Note       string `json:"note,omitempty"`
}

// Participant is a user's capability/status record scoped to one session.
type Participant struct {
	SessionID       string
	UserID          string
	CanVote         bool
	CanReceiveVotes bool
	Status          ParticipantStatus
	Metadata        ParticipantMetadata
	LastVotedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MayVote requires active status plus the voting capability.
func (p Participant) MayVote() bool {
	return p.Status == ParticipantStatusActive && p.CanVote
}

// MayReceiveVotes requires the receive capability; active and on_leave
// participants both qualify as recipients.
func (p Participant) MayReceiveVotes() bool {
	if !p.CanReceiveVotes {
		return false
	}
	return p.Status == ParticipantStatusActive || p.Status == ParticipantStatusOnLeave
}
