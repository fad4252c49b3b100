package memory

import (
	"context"
	"sort"
	"sync"

	"peerbonus/contexts/award-core/payout-engine/domain/entities"
	domainerrors "peerbonus/contexts/award-core/payout-engine/domain/errors"
	"peerbonus/contexts/award-core/payout-engine/domain/scoring"
	"peerbonus/contexts/award-core/payout-engine/ports"
)

// Store is the in-memory implementation of the payout-engine ports, used
// for unit wiring and tests. It doubles as a LedgerReader seeded through
// SetPool, AddVote and SetRecipients.
type Store struct {
	mu         sync.RWMutex
	pools      map[string]ports.SessionPool
	votes      map[string][]scoring.RatedVote
	recipients map[string][]string
	results    map[string][]entities.SessionResult
}

func NewStore() *Store {
	return &Store{
		pools:      make(map[string]ports.SessionPool),
		votes:      make(map[string][]scoring.RatedVote),
		recipients: make(map[string][]string),
		results:    make(map[string][]entities.SessionResult),
	}
}

// SetPool seeds the session pool parameters.
func (s *Store) SetPool(pool ports.SessionPool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools[pool.SessionID] = pool
}

// AddVote appends a ledger entry for the session.
func (s *Store) AddVote(sessionID string, vote scoring.RatedVote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes[sessionID] = append(s.votes[sessionID], vote)
}

// SetRecipients seeds the eligible recipient list.
func (s *Store) SetRecipients(sessionID string, userIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipients[sessionID] = append([]string(nil), userIDs...)
}

func (s *Store) GetSessionPool(_ context.Context, sessionID string) (ports.SessionPool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pool, ok := s.pools[sessionID]
	if !ok {
		return ports.SessionPool{}, domainerrors.ErrSessionNotFound
	}
	return pool, nil
}

func (s *Store) ListSessionVotes(_ context.Context, sessionID string) ([]scoring.RatedVote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]scoring.RatedVote(nil), s.votes[sessionID]...), nil
}

func (s *Store) ListEligibleRecipients(_ context.Context, sessionID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := append([]string(nil), s.recipients[sessionID]...)
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) ReplaceResults(_ context.Context, sessionID string, results []entities.SessionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[sessionID] = append([]entities.SessionResult(nil), results...)
	return nil
}

func (s *Store) ListResultsByRank(_ context.Context, sessionID string) ([]entities.SessionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := append([]entities.SessionResult(nil), s.results[sessionID]...)
	sort.Slice(results, func(i, j int) bool { return results[i].Rank < results[j].Rank })
	return results, nil
}

func (s *Store) HasResults(_ context.Context, sessionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results[sessionID]) > 0, nil
}
