package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

const EventScoreSubmitted = "score.submitted"

type Service struct {
	testCodes TestCodeRepository
	scores    ScoreRepository
	users     UserDirectory
	events    EventPublisher
	log       *slog.Logger
	now       func() time.Time
	newID     func() string
}

type Option func(*Service)

func WithUserDirectory(users UserDirectory) Option {
	return func(s *Service) { s.users = users }
}

func WithEventPublisher(events EventPublisher) Option {
	return func(s *Service) { s.events = events }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(testCodes TestCodeRepository, scores ScoreRepository, opts ...Option) *Service {
	s := &Service{
		testCodes: testCodes,
		scores:    scores,
		log:       slog.Default(),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitScore keeps the best submission per (test code, user) and then
// recomputes and persists the rank of every record for the test code. A
// submission that does not beat the stored one is accepted without changes,
// but still triggers the full rank rewrite.
func (s *Service) SubmitScore(ctx context.Context, in SubmitScoreInput) (SubmitResult, error) {
	in.TestCode = strings.TrimSpace(in.TestCode)
	in.UserID = strings.TrimSpace(in.UserID)
	if err := validateSubmission(in); err != nil {
		return SubmitResult{}, err
	}

	if _, err := s.testCodes.FindByCode(ctx, in.TestCode); err != nil {
		return SubmitResult{}, err
	}

	var result SubmitResult
	submit := func(ctx context.Context, scores ScoreRepository) error {
		var err error
		result, err = s.submitWith(ctx, scores, in)
		return err
	}

	var err error
	if txScores, ok := s.scores.(TxScoreRepository); ok {
		err = txScores.RunInTx(ctx, submit)
	} else {
		err = submit(ctx, s.scores)
	}
	if err != nil {
		return SubmitResult{}, err
	}

	if users := s.lookupUsers(ctx, []string{in.UserID}); users != nil {
		if info, ok := users[in.UserID]; ok {
			result.User = &info
		}
	}

	s.log.Info("score submitted",
		slog.String("test_code", in.TestCode),
		slog.String("user_id", in.UserID),
		slog.Int("score", result.Record.Score),
		slog.Int("rank", result.Rank),
		slog.Bool("improved", result.Improved),
	)
	s.publish(EventScoreSubmitted, map[string]any{
		"testCode":          in.TestCode,
		"userId":            in.UserID,
		"score":             result.Record.Score,
		"totalQuestions":    result.Record.TotalQuestions,
		"timeTaken":         result.Record.TimeTaken,
		"rank":              result.Rank,
		"totalParticipants": result.TotalParticipants,
		"improved":          result.Improved,
	})

	return result, nil
}

func (s *Service) submitWith(ctx context.Context, scores ScoreRepository, in SubmitScoreInput) (SubmitResult, error) {
	created, improved, err := s.upsertBest(ctx, scores, in)
	if err != nil {
		return SubmitResult{}, err
	}

	all, err := scores.FindAllByTestCode(ctx, in.TestCode)
	if err != nil {
		return SubmitResult{}, err
	}
	RankScores(all)

	var (
		own   TestScore
		found bool
	)
	for _, record := range all {
		if err := scores.UpdateRank(ctx, record.ID, record.Rank); err != nil {
			return SubmitResult{}, fmt.Errorf("update rank of %s: %w", record.ID, err)
		}
		if record.UserID == in.UserID {
			own = record
			found = true
		}
	}
	if !found {
		return SubmitResult{}, fmt.Errorf("score for user %s vanished during ranking", in.UserID)
	}

	return SubmitResult{
		Record:            own,
		Rank:              own.Rank,
		TotalParticipants: len(all),
		Created:           created,
		Improved:          improved,
	}, nil
}

func (s *Service) upsertBest(ctx context.Context, scores ScoreRepository, in SubmitScoreInput) (created, improved bool, err error) {
	existing, err := scores.FindOne(ctx, in.TestCode, in.UserID)
	switch {
	case errors.Is(err, ErrNotFound):
		record := TestScore{
			ID:             s.newID(),
			TestCode:       in.TestCode,
			UserID:         in.UserID,
			Score:          in.Score,
			TotalQuestions: in.TotalQuestions,
			TimeTaken:      in.TimeTaken,
			Timestamp:      s.now(),
		}
		err = scores.Insert(ctx, &record)
		if err == nil {
			return true, true, nil
		}
		if !errors.Is(err, ErrDuplicateScore) {
			return false, false, err
		}
		// Another submission for the same pair won the insert; judge this one
		// against the record it created.
		existing, err = scores.FindOne(ctx, in.TestCode, in.UserID)
		if err != nil {
			return false, false, err
		}
	case err != nil:
		return false, false, err
	}

	if !improves(in, existing) {
		return false, false, nil
	}

	existing.Score = in.Score
	existing.TotalQuestions = in.TotalQuestions
	existing.TimeTaken = in.TimeTaken
	existing.Timestamp = s.now()
	if err := scores.Update(ctx, existing); err != nil {
		return false, false, err
	}
	return false, true, nil
}

// GetLeaderboard ranks every score of the test code from scratch; ranks
// stored by SubmitScore are ignored.
func (s *Service) GetLeaderboard(ctx context.Context, testCode string) (Leaderboard, error) {
	testCode = strings.TrimSpace(testCode)
	if testCode == "" {
		return Leaderboard{}, validationError("testCode is required")
	}

	registered, err := s.testCodes.FindByCode(ctx, testCode)
	if err != nil {
		return Leaderboard{}, err
	}

	scores, err := s.scores.FindAllByTestCode(ctx, registered.TestCode)
	if err != nil {
		return Leaderboard{}, err
	}
	RankScores(scores)

	userIDs := make([]string, 0, len(scores))
	for _, score := range scores {
		userIDs = append(userIDs, score.UserID)
	}
	users := s.lookupUsers(ctx, userIDs)

	entries := make([]LeaderboardEntry, 0, len(scores))
	for _, score := range scores {
		entry := LeaderboardEntry{TestScore: score}
		if info, ok := users[score.UserID]; ok {
			entry.User = &info
		}
		entries = append(entries, entry)
	}

	return Leaderboard{
		TestInfo: registered.Info(),
		Entries:  entries,
	}, nil
}

// GetUserScores lists the user's scores, newest first, with the registry
// details of each test. TestDetails is nil when the test code is gone.
func (s *Service) GetUserScores(ctx context.Context, userID string) ([]UserScore, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, validationError("userId is required")
	}

	scores, err := s.scores.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	details := make(map[string]*TestInfo)
	out := make([]UserScore, 0, len(scores))
	for _, score := range scores {
		info, seen := details[score.TestCode]
		if !seen {
			registered, err := s.testCodes.FindByCode(ctx, score.TestCode)
			switch {
			case err == nil:
				testInfo := registered.Info()
				testInfo.TestCode = ""
				info = &testInfo
			case !errors.Is(err, ErrNotFound):
				return nil, err
			}
			details[score.TestCode] = info
		}
		out = append(out, UserScore{TestScore: score, TestDetails: info})
	}
	return out, nil
}

func (s *Service) lookupUsers(ctx context.Context, userIDs []string) map[string]UserInfo {
	if s.users == nil || len(userIDs) == 0 {
		return nil
	}
	users, err := s.users.LookupUsers(ctx, userIDs)
	if err != nil {
		s.log.Warn("user lookup failed", slog.Any("error", err))
		return nil
	}
	return users
}

func (s *Service) publish(eventType string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(eventType, payload); err != nil {
		s.log.Warn("publish event failed", slog.String("event", eventType), slog.Any("error", err))
	}
}

func validateSubmission(in SubmitScoreInput) error {
	switch {
	case in.TestCode == "":
		return validationError("testCode is required")
	case in.UserID == "":
		return validationError("userId is required")
	case in.TotalQuestions <= 0:
		return validationError("totalQuestions must be positive")
	case in.Score < 0:
		return validationError("score must not be negative")
	case in.Score > in.TotalQuestions:
		return validationError("score %d exceeds totalQuestions %d", in.Score, in.TotalQuestions)
	case in.TimeTaken <= 0:
		return validationError("timeTaken must be positive")
	}
	return nil
}
