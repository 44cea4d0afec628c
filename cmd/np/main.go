package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	cl "noticeperiod/internal/cli"
	"noticeperiod/internal/config"
	"noticeperiod/internal/syncq"
	"noticeperiod/internal/tui"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "np",
		Short:        "The Notice Period: survive 30 days of corporate life",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", apiBase, "API base URL")

	root.AddCommand(
		newInitCmd(&apiBase, cfg),
		newWhoamiCmd(),
		newLogoutCmd(),
		newStateCmd(&apiBase, cfg),
		newChooseCmd(&apiBase, cfg),
		newPlayCmd(&apiBase, cfg),
		newResetCmd(&apiBase, cfg),
		newAchievementsCmd(&apiBase, cfg),
		newLeaderboardCmd(&apiBase, cfg),
		newChallengeCmd(&apiBase, cfg),
		newShareCmd(&apiBase, cfg),
		newCertificateCmd(&apiBase, cfg),
		newSyncCmd(&apiBase, cfg),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string, cfg config.CLIConfig) (*cl.Client, error) {
	sess, err := cl.EnsureSession(cfg.PostID)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	return cl.NewClient(strings.TrimSpace(*apiBase), sess), nil
}

func newInitCmd(apiBase *string, cfg config.CLIConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a local player identity and register it with the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(apiBase, cfg)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := client.Init(ctx); err != nil {
				return err
			}
			st, err := client.State(ctx)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Ready. Player %s on post %s.", client.Session.UserID, client.Session.PostID))
			renderState(st)
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the local player identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				printWarn("No session yet. Run `np init`.")
				return nil
			}
			fmt.Printf("Post:    %s\n", sess.PostID)
			fmt.Printf("User:    %s\n", sess.UserID)
			fmt.Printf("Created: %s\n", sess.CreatedAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the local player identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cl.ClearSession(); err != nil {
				return err
			}
			printSuccess("Session cleared. The next command starts a new player.")
			return nil
		},
	}
}

func newStateCmd(apiBase *string, cfg config.CLIConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the current day and your stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(apiBase, cfg)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			st, err := client.State(ctx)
			if err != nil {
				return err
			}
			renderState(st)
			return nil
		},
	}
}

func newChooseCmd(apiBase *string, cfg config.CLIConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "choose [1-3]",
		Short: "Pick a choice for the current day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(apiBase, cfg)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			st, err := client.State(ctx)
			if err != nil {
				return err
			}
			labels := st.CurrentStep.Choices.Labels()

			var index int
			if len(args) > 0 {
				n, err := strconv.Atoi(strings.TrimSpace(args[0]))
				if err != nil || n < 1 || n > len(labels) {
					return fmt.Errorf("choice must be between 1 and %d", len(labels))
				}
				index = n - 1
			} else {
				renderStep(st.CurrentStep)
				index, err = promptIndex("Your move", len(labels))
				if err != nil {
					return err
				}
			}
			return submitChoice(ctx, client, labels[index], index)
		},
	}
}

func submitChoice(ctx context.Context, client *cl.Client, label string, index int) error {
	idem := uuid.NewString()
	resp, err := client.Choose(ctx, label, index, idem)
	if err != nil {
		return queueOnNetworkError(err, syncq.Command{
			Method:         "POST",
			Path:           "/api/game/choice",
			Body:           cl.ChoiceBody(label, index),
			IdempotencyKey: idem,
		})
	}
	renderChoice(resp)
	return nil
}

func newPlayCmd(apiBase *string, cfg config.CLIConfig) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play interactively until you quit or the run ends",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(apiBase, cfg)
			if err != nil {
				return err
			}
			if !plain && term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.Run(cmd.Context(), client)
			}
			return playLines(cmd.Context(), client)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "line-by-line mode without the full-screen UI")
	return cmd
}

// playLines is the non-TTY fallback: one prompt per day, stops on a
// terminal ending or an empty answer.
func playLines(ctx context.Context, client *cl.Client) error {
	for {
		reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		st, err := client.State(reqCtx)
		cancel()
		if err != nil {
			return err
		}
		if st.Player.Outcome.Terminal() {
			renderState(st)
			printInfo("Run finished. `np reset` to start over.")
			return nil
		}
		renderState(st)
		labels := st.CurrentStep.Choices.Labels()
		text, err := promptOptional(fmt.Sprintf("Pick 1-%d (blank to stop)", len(labels)))
		if err != nil || text == "" {
			return nil
		}
		n, convErr := strconv.Atoi(text)
		if convErr != nil || n < 1 || n > len(labels) {
			printWarn("Invalid option.")
			continue
		}
		reqCtx, cancel = context.WithTimeout(ctx, 30*time.Second)
		err = submitChoice(reqCtx, client, labels[n-1], n-1)
		cancel()
		if err != nil {
			return err
		}
	}
}

func newResetCmd(apiBase *string, cfg config.CLIConfig) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Throw away the current run and start from day 1",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				answer, err := promptChoice("Reset your run? Achievements are lost", []string{"yes", "no"}, "no")
				if err != nil {
					return err
				}
				if answer != "yes" {
					printInfo("Kept your run.")
					return nil
				}
			}
			client, err := newClient(apiBase, cfg)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := client.Reset(ctx); err != nil {
				return err
			}
			printSuccess("Run reset. Day 1 again.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newAchievementsCmd(apiBase *string, cfg config.CLIConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "List achievements and which you hold",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(apiBase, cfg)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			list, err := client.Achievements(ctx)
			if err != nil {
				return err
			}
			renderAchievements(list)
			return nil
		},
	}
}

func newLeaderboardCmd(apiBase *string, cfg config.CLIConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Show community stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(apiBase, cfg)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			lb, err := client.Leaderboard(ctx)
			if err != nil {
				return err
			}
			renderLeaderboard(lb)
			return nil
		},
	}
}

func newChallengeCmd(apiBase *string, cfg config.CLIConfig) *cobra.Command {
	week := -1
	cmd := &cobra.Command{
		Use:   "challenge",
		Short: "Show the weekly community challenge",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(apiBase, cfg)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			ch, err := client.Challenge(ctx, week)
			if err != nil {
				return err
			}
			renderChallenge(ch)
			return nil
		},
	}
	cmd.Flags().IntVar(&week, "week", week, "week number (default: current ISO week)")
	return cmd
}

func newShareCmd(apiBase *string, cfg config.CLIConfig) *cobra.Command {
	var text string
	var qr bool
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Post your run to the community channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(apiBase, cfg)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			id, err := client.Share(ctx, text)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Shared (message %s).", id))
			if qr && cfg.ShareURL != "" {
				renderShareQR(os.Stdout, cfg.ShareURL)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "custom text instead of the generated summary")
	cmd.Flags().BoolVar(&qr, "qr", true, "print a QR code for NP_SHARE_URL")
	return cmd
}

func newCertificateCmd(apiBase *string, cfg config.CLIConfig) *cobra.Command {
	var name, out string
	cmd := &cobra.Command{
		Use:   "certificate",
		Short: "Download a PDF certificate of your run",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(apiBase, cfg)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			pdf, err := client.Certificate(ctx, name)
			if err != nil {
				return err
			}
			if dir := filepath.Dir(out); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			if err := os.WriteFile(out, pdf, 0o644); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Certificate written to %s (%d bytes).", out, len(pdf)))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name printed on the certificate")
	cmd.Flags().StringVarP(&out, "out", "o", "notice-period-certificate.pdf", "output file")
	return cmd
}

func newSyncCmd(apiBase *string, cfg config.CLIConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay choices queued while offline",
		RunE: func(cmd *cobra.Command, args []string) error {
			queue, err := syncq.Load()
			if err != nil {
				return err
			}
			if len(queue) == 0 {
				printInfo("Sync queue is empty.")
				return nil
			}
			client, err := newClient(apiBase, cfg)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			res, remaining := syncq.Replay(ctx, queue, func(ctx context.Context, q syncq.Command) error {
				_, err := client.Do(ctx, q.Method, q.Path, q.Body, q.IdempotencyKey)
				return err
			}, cl.Retryable)
			for _, err := range res.Errors {
				if cl.IsConflict(err) {
					printWarn(fmt.Sprintf("Skipped: %v", err))
					continue
				}
				printError(fmt.Sprintf("Dropped: %v", err))
			}
			if err := syncq.Save(remaining); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Sync complete: replayed=%d dropped=%d remaining=%d", res.Replayed, res.Dropped, len(remaining)))
			return nil
		},
	}
}

// queueOnNetworkError parks a write that failed for transport reasons so
// `np sync` can replay it; API answers are returned as-is.
func queueOnNetworkError(err error, c syncq.Command) error {
	if err == nil {
		return nil
	}
	if !cl.Retryable(err) || isAPIError(err) {
		return err
	}
	if qerr := syncq.Push(c); qerr != nil {
		return fmt.Errorf("request failed and could not be queued: %w", err)
	}
	printWarn("API unreachable. Choice queued; run `np sync` when back online.")
	return nil
}
