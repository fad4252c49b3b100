package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"peerbonus/contexts/award-core/vote-ledger/domain/entities"
	domainerrors "peerbonus/contexts/award-core/vote-ledger/domain/errors"
	"peerbonus/internal/shared/events"
	"peerbonus/internal/shared/outbox"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   outbox.Message
	published bool
}

// Store is the in-memory implementation of every ledger port, used for unit
// wiring and tests. It also satisfies Clock and IDGenerator; SetNow pins the
// clock for deterministic window checks.
type Store struct {
	mu sync.RWMutex

	sessions     map[string]entities.Session
	participants map[string]entities.Participant
	votes        map[string]entities.Vote
	outbox       []outboxRecord

	now *time.Time
}

func NewStore() *Store {
	return &Store{
		sessions:     make(map[string]entities.Session),
		participants: make(map[string]entities.Participant),
		votes:        make(map[string]entities.Vote),
	}
}

// SetNow pins the store clock; zero time restores wall clock.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.IsZero() {
		s.now = nil
		return
	}
	t := now.UTC()
	s.now = &t
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.now != nil {
		return *s.now
	}
	return time.Now().UTC()
}

func (s *Store) NewID(context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) CreateSession(_ context.Context, session entities.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.SessionID]; exists {
		return domainerrors.ErrConflict
	}
	s.sessions[session.SessionID] = session
	return nil
}

// SetSession seeds or replaces a session directly, bypassing command checks.
func (s *Store) SetSession(session entities.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.SessionID] = session
}

func (s *Store) GetSession(_ context.Context, sessionID string) (entities.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, found := s.sessions[strings.TrimSpace(sessionID)]
	if !found {
		return entities.Session{}, domainerrors.ErrSessionNotFound
	}
	return session, nil
}

func (s *Store) CloseSession(_ context.Context, sessionID string, closedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, found := s.sessions[strings.TrimSpace(sessionID)]
	if !found {
		return false, domainerrors.ErrSessionNotFound
	}
	if session.ClosedAt != nil {
		return false, nil
	}
	at := closedAt.UTC()
	session.Open = false
	session.ClosedAt = &at
	s.sessions[session.SessionID] = session
	return true, nil
}

func (s *Store) UpdatePoolParameters(_ context.Context, sessionID string, pool entities.PoolParameters) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, found := s.sessions[strings.TrimSpace(sessionID)]
	if !found {
		return domainerrors.ErrSessionNotFound
	}
	session.Pool = pool
	s.sessions[session.SessionID] = session
	return nil
}

func (s *Store) ListExpiredOpenSessions(_ context.Context, today time.Time) ([]entities.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var expired []entities.Session
	for _, session := range s.sessions {
		if session.Open && session.ClosedAt == nil && session.Expired(today) {
			expired = append(expired, session)
		}
	}
	sort.Slice(expired, func(i, j int) bool {
		return expired[i].SessionID < expired[j].SessionID
	})
	return expired, nil
}

func (s *Store) UpsertParticipant(_ context.Context, participant entities.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := participantKey(participant.SessionID, participant.UserID)
	if existing, found := s.participants[key]; found {
		participant.CreatedAt = existing.CreatedAt
		participant.LastVotedAt = existing.LastVotedAt
	}
	s.participants[key] = participant
	return nil
}

// SetParticipant seeds a participant directly.
func (s *Store) SetParticipant(participant entities.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[participantKey(participant.SessionID, participant.UserID)] = participant
}

func (s *Store) GetParticipant(_ context.Context, sessionID string, userID string) (entities.Participant, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	participant, found := s.participants[participantKey(sessionID, userID)]
	return participant, found, nil
}

func (s *Store) ListParticipants(_ context.Context, sessionID string) ([]entities.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.Participant
	for _, participant := range s.participants {
		if participant.SessionID == strings.TrimSpace(sessionID) {
			out = append(out, participant)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *Store) TouchLastVoted(_ context.Context, sessionID string, userID string, votedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := participantKey(sessionID, userID)
	participant, found := s.participants[key]
	if !found {
		return domainerrors.ErrParticipantNotFound
	}
	at := votedAt.UTC()
	participant.LastVotedAt = &at
	s.participants[key] = participant
	return nil
}

func (s *Store) UpsertVote(_ context.Context, vote entities.Vote) (entities.Vote, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := voteKey(vote.SessionID, vote.VoterID, vote.TargetID)
	if existing, found := s.votes[key]; found {
		existing.Score = vote.Score
		existing.UpdatedAt = vote.UpdatedAt
		s.votes[key] = existing
		return existing, false, nil
	}
	s.votes[key] = vote
	return vote, true, nil
}

func (s *Store) ListVotesBySession(_ context.Context, sessionID string) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.Vote
	for _, vote := range s.votes {
		if vote.SessionID == strings.TrimSpace(sessionID) {
			out = append(out, vote)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VoterID == out[j].VoterID {
			return out[i].TargetID < out[j].TargetID
		}
		return out[i].VoterID < out[j].VoterID
	})
	return out, nil
}

func (s *Store) CountDistinctVoters(_ context.Context, sessionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	voters := make(map[string]struct{})
	for _, vote := range s.votes {
		if vote.SessionID == strings.TrimSpace(sessionID) {
			voters[vote.VoterID] = struct{}{}
		}
	}
	return len(voters), nil
}

func (s *Store) AppendOutbox(_ context.Context, event events.Envelope) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox = append(s.outbox, outboxRecord{
		message: outbox.Message{
			ID:        event.EventID,
			EventType: event.EventType,
			Payload:   payload,
			Status:    outbox.StatusPending,
			CreatedAt: event.OccurredAtUTC,
		},
	})
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]outbox.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pending []outbox.Message
	for _, record := range s.outbox {
		if record.published {
			continue
		}
		pending = append(pending, record.message)
		if limit > 0 && len(pending) >= limit {
			break
		}
	}
	return pending, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.outbox {
		if s.outbox[i].message.ID == outboxID {
			at := publishedAt.UTC()
			s.outbox[i].published = true
			s.outbox[i].message.Status = outbox.StatusPublished
			s.outbox[i].message.PublishedAt = &at
			return nil
		}
	}
	return nil
}

// PendingOutboxCount reports unpublished rows, for test assertions.
func (s *Store) PendingOutboxCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, record := range s.outbox {
		if !record.published {
			count++
		}
	}
	return count
}

func participantKey(sessionID, userID string) string {
	return strings.TrimSpace(sessionID) + "|" + strings.TrimSpace(userID)
}

func voteKey(sessionID, voterID, targetID string) string {
	return strings.TrimSpace(sessionID) + "|" + strings.TrimSpace(voterID) + "|" + strings.TrimSpace(targetID)
}
