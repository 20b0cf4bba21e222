package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexjbarnes/mochi-sync/internal/deck"
	"github.com/alexjbarnes/mochi-sync/internal/grading"
)

func gradeCmd() *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "grade <file>",
		Short: "Grade cards in a deck file using an LLM",
		Long: `Score every card's answer for accuracy on a 0-10 scale and list the
cards needing review. Grading only reads the file; nothing is mutated
locally or remotely.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.cfg.RequireOpenRouter(); err != nil {
				return err
			}

			cards, err := readDeckFile(args[0])
			if err != nil {
				return err
			}
			if len(cards) == 0 {
				fmt.Println("No cards found in local file.")
				return nil
			}

			fmt.Printf("Grading %d cards...\n", len(cards))
			grader := grading.NewGrader(grading.NewClient(a.cfg, nil, a.logger), a.logger)
			report, err := grader.Grade(cmd.Context(), cards, batchSize)
			if err != nil {
				return err
			}

			grading.WriteReport(os.Stdout, report)
			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", grading.DefaultGradeBatchSize, "cards per LLM request")
	return cmd
}

func rewriteCmd() *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "rewrite <file>",
		Short: "Rewrite card answers to be more concise using an LLM",
		Long: `Ask the LLM for more concise versions of every answer and write the
accepted rewrites back into the local file. The remote deck is not
touched; push the file afterwards to sync the rewrites.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.cfg.RequireOpenRouter(); err != nil {
				return err
			}
			path := args[0]

			cards, err := readDeckFile(path)
			if err != nil {
				return err
			}
			if len(cards) == 0 {
				fmt.Println("No cards found in local file.")
				return nil
			}

			fmt.Printf("Rewriting answers for %d cards...\n", len(cards))
			grader := grading.NewGrader(grading.NewClient(a.cfg, nil, a.logger), a.logger)
			changed, err := grader.Rewrite(cmd.Context(), cards, batchSize)
			if err != nil {
				return err
			}

			if changed == 0 {
				fmt.Println("No answers changed")
				return nil
			}

			fmt.Printf("%d answer(s) rewritten.\n", changed)
			if !confirm(fmt.Sprintf("Write rewritten answers to %s?", path)) {
				fmt.Println("Aborted")
				return nil
			}

			if err := os.WriteFile(path, []byte(deck.Encode(cards)), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Printf("Updated %s\n", path)
			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", grading.DefaultRewriteBatchSize, "cards per LLM request")
	return cmd
}

func readDeckFile(path string) ([]deck.Card, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return deck.Decode(string(text)), nil
}
