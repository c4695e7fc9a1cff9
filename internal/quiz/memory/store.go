package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/Air-cyber/quiz-backend/internal/quiz"
)

type scoreKey struct {
	testCode string
	userID   string
}

// Store keeps test codes, scores and users in process memory. It is meant for
// local runs and tests; nothing survives a restart.
type Store struct {
	// txMu serializes RunInTx callers; mu guards the maps.
	txMu sync.Mutex
	mu   sync.RWMutex

	testCodes []quiz.TestCode
	scores    map[string]quiz.TestScore
	byPair    map[scoreKey]string
	users     map[string]quiz.UserInfo
}

func NewStore() *Store {
	return &Store{
		scores: make(map[string]quiz.TestScore),
		byPair: make(map[scoreKey]string),
		users:  make(map[string]quiz.UserInfo),
	}
}

// RunInTx runs fn while holding the store's write lock for submissions. There
// is no rollback: writes made before fn fails are kept.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, scores quiz.ScoreRepository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(ctx, s)
}

func (s *Store) FindByCode(_ context.Context, code string) (quiz.TestCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.testCodes {
		if item.TestCode == code {
			return item, nil
		}
	}
	return quiz.TestCode{}, quiz.ErrNotFound
}

func (s *Store) FindActiveByCode(_ context.Context, code string) (quiz.TestCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.testCodes {
		if item.TestCode == code && item.IsActive {
			return item, nil
		}
	}
	return quiz.TestCode{}, quiz.ErrNotFound
}

func (s *Store) Create(_ context.Context, testCode quiz.TestCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.testCodes = append(s.testCodes, testCode)
	return nil
}

func (s *Store) SetActive(_ context.Context, code string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := false
	for idx := range s.testCodes {
		if s.testCodes[idx].TestCode == code {
			s.testCodes[idx].IsActive = active
			updated = true
		}
	}
	if !updated {
		return quiz.ErrNotFound
	}
	return nil
}

func (s *Store) FindOne(_ context.Context, testCode, userID string) (quiz.TestScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byPair[scoreKey{testCode: testCode, userID: userID}]
	if !ok {
		return quiz.TestScore{}, quiz.ErrNotFound
	}
	return s.scores[id], nil
}

func (s *Store) FindAllByTestCode(_ context.Context, testCode string) ([]quiz.TestScore, error) {
	s.mu.RLock()
	out := make([]quiz.TestScore, 0)
	for _, score := range s.scores {
		if score.TestCode == testCode {
			out = append(out, score)
		}
	}
	s.mu.RUnlock()

	// Map iteration order is random; break exact ties by id so reads repeat.
	sortByID(out)
	quiz.SortScores(out)
	return out, nil
}

func (s *Store) FindAllByUser(_ context.Context, userID string) ([]quiz.TestScore, error) {
	s.mu.RLock()
	out := make([]quiz.TestScore, 0)
	for _, score := range s.scores {
		if score.UserID == userID {
			out = append(out, score)
		}
	}
	s.mu.RUnlock()

	sortByTimestampDesc(out)
	return out, nil
}

func (s *Store) Insert(_ context.Context, record *quiz.TestScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := scoreKey{testCode: record.TestCode, userID: record.UserID}
	if _, exists := s.byPair[key]; exists {
		return quiz.ErrDuplicateScore
	}
	s.scores[record.ID] = *record
	s.byPair[key] = record.ID
	return nil
}

func (s *Store) Update(_ context.Context, record quiz.TestScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.scores[record.ID]; !ok {
		return quiz.ErrNotFound
	}
	s.scores[record.ID] = record
	return nil
}

func (s *Store) UpdateRank(_ context.Context, id string, rank int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.scores[id]
	if !ok {
		return quiz.ErrNotFound
	}
	record.Rank = rank
	s.scores[id] = record
	return nil
}

// AddUser registers identity details used to decorate leaderboards.
func (s *Store) AddUser(user quiz.UserInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[user.UserID] = user
}

func (s *Store) LookupUsers(_ context.Context, userIDs []string) (map[string]quiz.UserInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]quiz.UserInfo, len(userIDs))
	for _, id := range userIDs {
		if user, ok := s.users[strings.TrimSpace(id)]; ok {
			out[id] = user
		}
	}
	return out, nil
}
