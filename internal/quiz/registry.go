package quiz

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// RegisterTestCode stores a new active test code. A code is generated from a
// random uuid when none is given; an explicit code is stored as given, and is
// rejected when already active.
func (s *Service) RegisterTestCode(ctx context.Context, testCode TestCode) (TestCode, error) {
	testCode.TestCode = strings.TrimSpace(testCode.TestCode)
	testCode.Subject = strings.TrimSpace(testCode.Subject)
	testCode.Topic = strings.TrimSpace(testCode.Topic)
	testCode.Chapter = strings.TrimSpace(testCode.Chapter)
	testCode.Difficulty = strings.TrimSpace(testCode.Difficulty)

	if testCode.Subject == "" || testCode.Topic == "" || testCode.Chapter == "" || testCode.Difficulty == "" {
		return TestCode{}, validationError("subject, topic, chapter and difficulty are required")
	}
	if testCode.TestCode == "" {
		testCode.TestCode = generateTestCode()
	} else if _, err := s.testCodes.FindActiveByCode(ctx, testCode.TestCode); err == nil {
		return TestCode{}, validationError("test code %s is already active", testCode.TestCode)
	} else if !errors.Is(err, ErrNotFound) {
		return TestCode{}, err
	}
	testCode.IsActive = true
	testCode.CreatedAt = s.now()

	if err := s.testCodes.Create(ctx, testCode); err != nil {
		return TestCode{}, err
	}
	return testCode, nil
}

func (s *Service) SetTestCodeActive(ctx context.Context, code string, active bool) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return validationError("testCode is required")
	}
	return s.testCodes.SetActive(ctx, code, active)
}

func generateTestCode() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(id[:8])
}
