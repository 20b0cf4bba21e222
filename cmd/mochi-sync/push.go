package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexjbarnes/mochi-sync/internal/deck"
	mserrors "github.com/alexjbarnes/mochi-sync/internal/errors"
	syncpkg "github.com/alexjbarnes/mochi-sync/internal/sync"
)

func pushCmd() *cobra.Command {
	var force bool
	var showDiff bool

	cmd := &cobra.Command{
		Use:   "push <file>",
		Short: "Push a local deck file to Mochi (local wins)",
		Long: `Compare the local deck file to the remote deck and create, update,
and delete remote cards until they match. The local file is the source
of truth. New cards get their assigned ids written back into the file.

An empty local file deletes every remote card; the confirmation prompt
is the only gate, so read the summary before answering.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			path := args[0]

			deckID, err := deck.DeckIDFromFilename(path)
			if err != nil {
				return err
			}

			text, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			local := deck.Decode(string(text))

			fmt.Println("Fetching remote cards...")
			wireCards, err := a.client.ListCards(ctx, deckID)
			if err != nil {
				return err
			}
			remote := make([]deck.Card, len(wireCards))
			for i, wc := range wireCards {
				remote[i] = wc.Canonical()
			}

			plan := syncpkg.BuildPlan(local, remote, force, a.logger)

			if plan.Blocked() {
				fmt.Print(plan.DescribeDuplicates())
				fmt.Println("\nRun with --force to create anyway")
				return mserrors.ErrDuplicateDetected
			}

			if plan.Empty() {
				fmt.Println("Everything up to date")
				return nil
			}

			fmt.Print(plan.Summary())
			if showDiff {
				fmt.Print(plan.DescribeUpdates())
			}

			if !confirm("Proceed?") {
				fmt.Println("Aborted")
				return nil
			}

			executor := syncpkg.NewExecutor(a.client, a.logger)
			result, err := executor.Apply(ctx, deckID, plan, local, path)
			if result != nil {
				fmt.Printf("\nPushed changes: %s\n", result)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "skip duplicate detection for new cards")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "show per-card diffs for pending updates")
	return cmd
}
