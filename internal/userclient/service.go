package userclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Air-cyber/quiz-backend/internal/quiz"
)

const (
	defaultServer            = "http://127.0.0.1:5000"
	defaultLeaderboardLimit  = 10
	defaultHTTPTimeout       = 90 * time.Second
	defaultMaxInvalidAnswers = 3
)

type Config struct {
	Token             string
	ServerURL         string
	LeaderboardLimit  int
	MaxInvalidAnswers int
	HTTPTimeout       time.Duration

	// Now is the clock used to time a play session. Defaults to time.Now.
	Now func() time.Time
}

func Run(ctx context.Context, in io.Reader, out io.Writer, cfg Config) error {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return errors.New("token is required")
	}

	serverURL := strings.TrimSpace(cfg.ServerURL)
	if serverURL == "" {
		serverURL = defaultServer
	}

	leaderboardLimit := cfg.LeaderboardLimit
	if leaderboardLimit == 0 {
		leaderboardLimit = defaultLeaderboardLimit
	}
	maxInvalidAnswers := cfg.MaxInvalidAnswers
	if maxInvalidAnswers <= 0 {
		maxInvalidAnswers = defaultMaxInvalidAnswers
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	client := NewHTTPClient(serverURL, token, &http.Client{Timeout: timeout})
	reader := bufio.NewReader(in)

	fmt.Fprintf(out, "quiz-user-service\nserver=%s\n\n", serverURL)
	printHelp(out)

	for {
		fmt.Fprint(out, "\n> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		args := strings.Fields(line)
		command := strings.ToLower(args[0])

		switch command {
		case "help":
			printHelp(out)
		case "exit":
			return nil
		case "topics":
			if len(args) < 2 {
				fmt.Fprintln(out, "usage: topics <subject>")
				continue
			}
			subject := strings.Join(args[1:], " ")
			if err := runTopics(ctx, out, client, subject, serverURL); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		case "scores":
			if err := runScores(ctx, out, client, serverURL); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		case "leaderboard":
			if len(args) < 2 {
				fmt.Fprintln(out, "usage: leaderboard <test_code> [limit]")
				continue
			}
			limit, parseErr := parseSignedLimit(args, 2, leaderboardLimit)
			if parseErr != nil {
				fmt.Fprintf(out, "invalid leaderboard limit: %v\n", parseErr)
				continue
			}
			if err := runLeaderboard(ctx, out, client, args[1], limit, serverURL); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		case "play":
			if len(args) != 2 {
				fmt.Fprintln(out, "usage: play <test_code>")
				continue
			}
			if err := runPlay(ctx, reader, out, client, args[1], maxInvalidAnswers, now, serverURL); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		default:
			fmt.Fprintln(out, "unknown command. type 'help' for usage.")
		}
	}
}

func runTopics(ctx context.Context, out io.Writer, client *HTTPClient, subject, serverURL string) error {
	topics, err := client.GetTopics(ctx, subject)
	if err != nil {
		return describeClientError(err, serverURL)
	}
	if len(topics) == 0 {
		fmt.Fprintf(out, "No topics for %s.\n", subject)
		return nil
	}

	fmt.Fprintf(out, "Topics for %s:\n", subject)
	for idx, topic := range topics {
		fmt.Fprintf(out, "%d. %s\n", idx+1, topic)
	}
	return nil
}

func runScores(ctx context.Context, out io.Writer, client *HTTPClient, serverURL string) error {
	scores, err := client.GetUserScores(ctx)
	if err != nil {
		return describeClientError(err, serverURL)
	}
	if len(scores) == 0 {
		fmt.Fprintln(out, "No scores yet.")
		return nil
	}

	fmt.Fprintln(out, "Your scores:")
	for idx, item := range scores {
		details := "unknown test"
		if item.TestDetails != nil {
			details = fmt.Sprintf("%s / %s / %s", item.TestDetails.Subject, item.TestDetails.Topic, item.TestDetails.Chapter)
		}
		fmt.Fprintf(out, "%d. %s (%s) score=%d/%d time=%s rank=%d\n",
			idx+1,
			item.TestCode,
			details,
			item.Score,
			item.TotalQuestions,
			formatSeconds(item.TimeTaken),
			item.Rank,
		)
	}
	return nil
}

// runLeaderboard prints the top limit entries; limit <= 0 prints all of them.
func runLeaderboard(ctx context.Context, out io.Writer, client *HTTPClient, testCode string, limit int, serverURL string) error {
	board, err := client.GetLeaderboard(ctx, testCode)
	if err != nil {
		return describeClientError(err, serverURL)
	}

	if len(board.Entries) == 0 {
		fmt.Fprintf(out, "No leaderboard entries for %s.\n", testCode)
		return nil
	}

	entries := board.Entries
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	fmt.Fprintf(out, "Leaderboard for %s (%s, %s):\n", testCode, board.TestInfo.Subject, board.TestInfo.Chapter)
	for _, entry := range entries {
		fmt.Fprintf(out, "%d. %s score=%d/%d time=%s\n",
			entry.Rank,
			displayName(entry),
			entry.Score,
			entry.TotalQuestions,
			formatSeconds(entry.TimeTaken),
		)
	}
	return nil
}

func runPlay(ctx context.Context, reader *bufio.Reader, out io.Writer, client *HTTPClient, testCode string, maxInvalidAnswers int, now func() time.Time, serverURL string) error {
	fmt.Fprintln(out, "Generating questions...")
	result, err := client.GenerateQuiz(ctx, testCode)
	if err != nil {
		return describeClientError(err, serverURL)
	}
	if len(result.Questions) == 0 {
		return errors.New("server returned no questions")
	}

	if info := result.TestInfo; info != nil {
		fmt.Fprintf(out, "%s: %s, chapter %q (%s)\n", info.Subject, info.Topic, info.Chapter, info.Difficulty)
	}

	started := now()
	score := 0
	for idx, question := range result.Questions {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%d. %s\n\n", idx+1, question.Question)
		for optionIdx, option := range question.Options {
			fmt.Fprintf(out, "%c. %s\n", 'A'+optionIdx, option)
		}
		fmt.Fprintln(out)

		invalidCount := 0
		for {
			answer, ok := promptAnswer(reader, out, len(question.Options))
			if !ok {
				invalidCount++
				if invalidCount >= maxInvalidAnswers {
					fmt.Fprintln(out, "Skipping question after multiple invalid responses.")
					break
				}
				fmt.Fprintf(out, "Invalid input. Attempts remaining: %d\n", maxInvalidAnswers-invalidCount)
				continue
			}

			chosen := question.Options[int(answer[0]-'A')]
			if chosen == question.CorrectAnswer {
				score++
				fmt.Fprintln(out, "Correct!")
			} else {
				fmt.Fprintf(out, "Wrong. Correct answer: %s\n", correctAnswerDisplay(question))
			}
			break
		}
	}

	elapsed := now().Sub(started).Seconds()
	if elapsed <= 0 {
		elapsed = 0.001
	}
	total := len(result.Questions)
	fmt.Fprintf(out, "\nScore: %d/%d in %s\n", score, total, formatSeconds(elapsed))

	outcome, err := client.SubmitScore(ctx, testCode, score, total, elapsed)
	if err != nil {
		return describeClientError(err, serverURL)
	}
	if !outcome.Improved {
		fmt.Fprintf(out, "Your best attempt is still %d/%d.\n", outcome.Result.Score, outcome.Result.TotalQuestions)
	}
	fmt.Fprintf(out, "Rank %d of %d\n", outcome.Rank, outcome.TotalParticipants)
	return nil
}

func displayName(entry quiz.LeaderboardEntry) string {
	if entry.User != nil && strings.TrimSpace(entry.User.Username) != "" {
		return entry.User.Username
	}
	return entry.UserID
}
