package quiz

import "context"

// TestCodeRepository is the test registry. Lookups return ErrNotFound when no
// record matches.
type TestCodeRepository interface {
	FindByCode(ctx context.Context, code string) (TestCode, error)
	FindActiveByCode(ctx context.Context, code string) (TestCode, error)
	Create(ctx context.Context, testCode TestCode) error
	SetActive(ctx context.Context, code string, active bool) error
}

// ScoreRepository persists TestScore records.
//
// FindAllByTestCode returns records ordered by score descending then time
// taken ascending. FindAllByUser orders by timestamp descending. Insert
// returns ErrDuplicateScore when the (test code, user) pair already exists.
type ScoreRepository interface {
	FindOne(ctx context.Context, testCode, userID string) (TestScore, error)
	FindAllByTestCode(ctx context.Context, testCode string) ([]TestScore, error)
	FindAllByUser(ctx context.Context, userID string) ([]TestScore, error)
	Insert(ctx context.Context, record *TestScore) error
	Update(ctx context.Context, record TestScore) error
	UpdateRank(ctx context.Context, id string, rank int) error
}

// TxScoreRepository is implemented by score stores that can run a group of
// operations atomically. fn receives a repository bound to the transaction.
type TxScoreRepository interface {
	ScoreRepository
	RunInTx(ctx context.Context, fn func(ctx context.Context, scores ScoreRepository) error) error
}

type UserDirectory interface {
	LookupUsers(ctx context.Context, userIDs []string) (map[string]UserInfo, error)
}

type EventPublisher interface {
	Publish(eventType string, payload any) error
}

// Completer is a black-box text completion call.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
