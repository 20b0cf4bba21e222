package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func decksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decks",
		Short: "List all available decks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			decks, err := a.client.ListDecks(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Available decks (%d):\n%s\n", len(decks), strings.Repeat("=", 60))
			for _, deck := range decks {
				fmt.Printf("\n  %s\n", deck.Name)
				fmt.Printf("  ID: %s\n", deck.ID)
				fmt.Println(strings.Repeat("-", 60))
			}
			fmt.Println("\nTo pull a deck:")
			fmt.Println("  mochi-sync pull <deck-id>")
			return nil
		},
	}
}
