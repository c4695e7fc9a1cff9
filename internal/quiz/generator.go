package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

const (
	DefaultQuestionCount = 10
	MaxQuestionCount     = 50
	optionsPerQuestion   = 4
)

var codeFence = regexp.MustCompile("```json|```")

// Generator turns quiz parameters into questions through a text completion
// upstream.
type Generator struct {
	testCodes TestCodeRepository
	completer Completer
	log       *slog.Logger
}

func NewGenerator(testCodes TestCodeRepository, completer Completer, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.Default()
	}
	return &Generator{
		testCodes: testCodes,
		completer: completer,
		log:       log,
	}
}

// GenerateQuiz resolves the parameters (a registered test code wins over
// direct values), asks the upstream for questions and validates the reply.
// TestInfo is only set on the result when a test code was used.
func (g *Generator) GenerateQuiz(ctx context.Context, params GenerateQuizParams) (QuizResult, error) {
	resolved, info, err := g.resolve(ctx, params)
	if err != nil {
		return QuizResult{}, err
	}
	if g.completer == nil {
		return QuizResult{}, &UpstreamError{Err: errors.New("no completion provider configured")}
	}

	prompt := BuildPrompt(resolved)
	g.log.Debug("requesting quiz completion",
		slog.String("subject", resolved.Subject),
		slog.String("topic", resolved.Topic),
		slog.Int("questions", resolved.NumQuestions),
	)

	text, err := g.completer.Complete(ctx, prompt)
	if err != nil {
		if !errors.Is(err, ErrUpstream) {
			err = &UpstreamError{Err: err}
		}
		g.log.Error("quiz completion failed", slog.Any("error", err))
		return QuizResult{}, err
	}
	if strings.TrimSpace(text) == "" {
		return QuizResult{}, &UpstreamError{Err: errors.New("completion returned no text")}
	}

	questions, err := ParseQuestions(text)
	if err != nil {
		g.log.Warn("unusable quiz completion", slog.Any("error", err), slog.Int("length", len(text)))
		return QuizResult{}, err
	}

	return QuizResult{TestInfo: info, Questions: questions}, nil
}

func (g *Generator) resolve(ctx context.Context, params GenerateQuizParams) (GenerateQuizParams, *TestInfo, error) {
	count := params.NumQuestions
	if count <= 0 {
		count = DefaultQuestionCount
	}
	if count > MaxQuestionCount {
		return GenerateQuizParams{}, nil, validationError("numQuestions must not exceed %d", MaxQuestionCount)
	}

	if code := strings.TrimSpace(params.TestCode); code != "" {
		registered, err := g.testCodes.FindActiveByCode(ctx, code)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return GenerateQuizParams{}, nil, fmt.Errorf("%w: invalid or inactive test code", ErrNotFound)
			}
			return GenerateQuizParams{}, nil, err
		}
		info := registered.Info()
		return GenerateQuizParams{
			TestCode:     registered.TestCode,
			Subject:      registered.Subject,
			Topic:        registered.Topic,
			Chapter:      registered.Chapter,
			Difficulty:   registered.Difficulty,
			NumQuestions: count,
		}, &info, nil
	}

	resolved := GenerateQuizParams{
		Subject:      strings.TrimSpace(params.Subject),
		Topic:        strings.TrimSpace(params.Topic),
		Chapter:      strings.TrimSpace(params.Chapter),
		Difficulty:   strings.TrimSpace(params.Difficulty),
		NumQuestions: count,
	}
	if resolved.Difficulty == "" {
		resolved.Difficulty = strings.TrimSpace(params.Level)
	}
	if resolved.Subject == "" || resolved.Topic == "" || resolved.Chapter == "" || resolved.Difficulty == "" {
		return GenerateQuizParams{}, nil, validationError("missing subject, topic, chapter or difficulty/level")
	}
	return resolved, nil, nil
}

func BuildPrompt(params GenerateQuizParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d multiple choice quiz questions on %s focusing on the topic of %s, specifically the chapter %q with %s difficulty.\n",
		params.NumQuestions, params.Subject, params.Topic, params.Chapter, params.Difficulty)
	b.WriteString("The questions should be designed for **Class 7 students**, ensuring they align with their curriculum.\n")
	b.WriteString("Each question must have exactly 4 options and correctAnswer must repeat the text of one of them.\n")
	b.WriteString("Format the response as an array of JSON objects like this:\n")
	b.WriteString(`    {
      "question": "Question text",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correctAnswer": "Option B"
    }`)
	return b.String()
}

// ParseQuestions decodes an upstream reply into questions. Markdown code
// fences are stripped first; anything other than a non-empty JSON array of
// well formed questions is an ErrParse.
func ParseQuestions(text string) ([]QuizQuestion, error) {
	cleaned := strings.TrimSpace(codeFence.ReplaceAllString(text, ""))

	var raw json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, parseError("response is not valid JSON: %v", err)
	}
	if len(raw) == 0 || raw[0] != '[' {
		return nil, parseError("response is not a JSON array")
	}

	var questions []QuizQuestion
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, parseError("unexpected question shape: %v", err)
	}
	if len(questions) == 0 {
		return nil, parseError("received empty quiz data")
	}

	for idx := range questions {
		if err := normalizeQuestion(&questions[idx]); err != nil {
			return nil, parseError("question %d: %v", idx+1, err)
		}
	}
	return questions, nil
}

func normalizeQuestion(q *QuizQuestion) error {
	q.Question = strings.TrimSpace(q.Question)
	if q.Question == "" {
		return errors.New("question text is empty")
	}
	if len(q.Options) != optionsPerQuestion {
		return fmt.Errorf("expected %d options, got %d", optionsPerQuestion, len(q.Options))
	}
	for idx := range q.Options {
		q.Options[idx] = strings.TrimSpace(q.Options[idx])
	}

	q.CorrectAnswer = strings.TrimSpace(q.CorrectAnswer)
	for _, option := range q.Options {
		if option == q.CorrectAnswer {
			return nil
		}
	}
	return fmt.Errorf("correct answer %q is not one of the options", q.CorrectAnswer)
}
