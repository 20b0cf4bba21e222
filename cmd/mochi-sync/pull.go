package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexjbarnes/mochi-sync/internal/deck"
)

func pullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull <deck-id>",
		Short: "Download a deck to <deck-name>-<deck-id>.md",
		Long: `Download all cards from a Mochi deck into a local markdown file
named <deck-name>-<deck-id>.md. The deck may be given by id, exact
name, or a substring of the name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			d, err := a.client.ResolveDeck(ctx, args[0])
			if err != nil {
				return err
			}

			path := deck.Filename(d.Name, d.ID)
			if _, err := os.Stat(path); err == nil {
				fmt.Printf("Warning: %s already exists.\n", path)
				fmt.Println("Pulling will overwrite your local changes.")
				fmt.Println("Tip: use 'git diff' afterwards to see what changed")
				if !confirm("Proceed?") {
					fmt.Println("Aborted")
					return nil
				}
			}

			fmt.Printf("Fetching cards from deck %q...\n", d.Name)
			wireCards, err := a.client.ListCards(ctx, d.ID)
			if err != nil {
				return err
			}

			cards := make([]deck.Card, len(wireCards))
			for i, wc := range wireCards {
				cards[i] = wc.Canonical()
			}

			if err := os.WriteFile(path, []byte(deck.Encode(cards)), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}

			fmt.Printf("Downloaded %d cards to %s\n", len(cards), path)
			return nil
		},
	}
}
