// Package cli implements the administrative commands of quiz-admin.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/Air-cyber/quiz-backend/internal/httpapi"
	"github.com/Air-cyber/quiz-backend/internal/quiz"
)

const defaultTokenTTL = 24 * time.Hour

var errUsage = errors.New("usage error")

// Deps are the collaborators the commands operate on.
type Deps struct {
	Service   *quiz.Service
	JWTSecret []byte
}

// Run executes one command. args excludes the program name.
func Run(ctx context.Context, args []string, out io.Writer, deps Deps) error {
	if len(args) == 0 {
		printUsage(out)
		return errUsage
	}

	command, rest := strings.ToLower(args[0]), args[1:]
	switch command {
	case "register":
		return runRegister(ctx, rest, out, deps.Service)
	case "activate":
		return runSetActive(ctx, rest, out, deps.Service, true)
	case "deactivate":
		return runSetActive(ctx, rest, out, deps.Service, false)
	case "leaderboard":
		return runLeaderboard(ctx, rest, out, deps.Service)
	case "token":
		return runToken(rest, out, deps.JWTSecret)
	case "help":
		printUsage(out)
		return nil
	default:
		printUsage(out)
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

// IsUsageError reports whether err came from bad arguments.
func IsUsageError(err error) bool {
	return errors.Is(err, errUsage)
}

func runRegister(ctx context.Context, args []string, out io.Writer, svc *quiz.Service) error {
	var tc quiz.TestCode

	fs := pflag.NewFlagSet("register", pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&tc.TestCode, "code", "", "test code, generated when empty")
	fs.StringVar(&tc.Subject, "subject", "", "subject (required)")
	fs.StringVar(&tc.Topic, "topic", "", "topic (required)")
	fs.StringVar(&tc.Chapter, "chapter", "", "chapter (required)")
	fs.StringVar(&tc.Difficulty, "difficulty", "", "difficulty (required)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	registered, err := svc.RegisterTestCode(ctx, tc)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Registered %s: %s / %s / %s (%s)\n",
		registered.TestCode, registered.Subject, registered.Topic, registered.Chapter, registered.Difficulty)
	return nil
}

func runSetActive(ctx context.Context, args []string, out io.Writer, svc *quiz.Service, active bool) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: expected exactly one test code", errUsage)
	}

	code := strings.TrimSpace(args[0])
	if err := svc.SetTestCodeActive(ctx, code, active); err != nil {
		return err
	}

	state := "inactive"
	if active {
		state = "active"
	}
	fmt.Fprintf(out, "%s is now %s\n", code, state)
	return nil
}

func runLeaderboard(ctx context.Context, args []string, out io.Writer, svc *quiz.Service) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: expected exactly one test code", errUsage)
	}

	board, err := svc.GetLeaderboard(ctx, args[0])
	if err != nil {
		return err
	}

	info := board.TestInfo
	fmt.Fprintf(out, "%s / %s / %s (%s)\n", info.Subject, info.Topic, info.Chapter, info.Difficulty)
	if len(board.Entries) == 0 {
		fmt.Fprintln(out, "No scores yet.")
		return nil
	}
	for _, entry := range board.Entries {
		fmt.Fprintf(out, "%3d. %-24s %d/%d  %.1fs\n",
			entry.Rank, entryName(entry), entry.Score, entry.TotalQuestions, entry.TimeTaken)
	}
	return nil
}

func runToken(args []string, out io.Writer, secret []byte) error {
	fs := pflag.NewFlagSet("token", pflag.ContinueOnError)
	fs.SetOutput(out)
	ttl := fs.Duration("ttl", defaultTokenTTL, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 || strings.TrimSpace(fs.Arg(0)) == "" {
		return fmt.Errorf("%w: expected exactly one user id", errUsage)
	}

	token, err := httpapi.SignToken(secret, strings.TrimSpace(fs.Arg(0)), *ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, token)
	return nil
}

func entryName(entry quiz.LeaderboardEntry) string {
	if entry.User != nil && entry.User.Username != "" {
		return entry.User.Username
	}
	return entry.UserID
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "Usage: quiz-admin <command> [arguments]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  register --subject S --topic T --chapter C --difficulty D [--code CODE]")
	fmt.Fprintln(out, "  activate <code>")
	fmt.Fprintln(out, "  deactivate <code>")
	fmt.Fprintln(out, "  leaderboard <code>")
	fmt.Fprintln(out, "  token <userId> [--ttl 24h]")
}
