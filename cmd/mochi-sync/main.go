package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alexjbarnes/mochi-sync/internal/config"
	"github.com/alexjbarnes/mochi-sync/internal/logging"
	"github.com/alexjbarnes/mochi-sync/internal/mochi"
)

var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "mochi-sync",
		Short:   "Sync Mochi flashcard decks with local markdown files",
		Version: Version,
		Long: `mochi-sync keeps a Mochi deck and a local markdown file in sync,
with the local file as the source of truth.

Workflow:
  1. mochi-sync decks                  # list decks
  2. mochi-sync pull <deck-id>         # download a deck to <name>-<id>.md
  3. edit the file (or: mochi-sync grade / rewrite)
  4. mochi-sync push <name>-<id>.md    # upload changes back`,
		SilenceUsage: true,
	}

	root.AddCommand(decksCmd(), pullCmd(), pushCmd(), gradeCmd(), rewriteCmd())
	return root
}

// app bundles the pieces every command needs. Construction happens once
// per invocation, inside the command, so config errors surface with the
// command's own exit path.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	client *mochi.Client
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewLogger(cfg.Environment)
	logger.Debug("mochi-sync starting", slog.String("version", Version))

	return &app{
		cfg:    cfg,
		logger: logger,
		client: mochi.NewClient(cfg, nil, logger),
	}, nil
}

// confirm prompts the operator on stdin. Anything but y/yes declines.
func confirm(prompt string) bool {
	fmt.Printf("\n%s [y/N]: ", prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}
