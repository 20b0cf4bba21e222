package grading

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/alexjbarnes/mochi-sync/internal/deck"
	mserrors "github.com/alexjbarnes/mochi-sync/internal/errors"
)

// Default batch sizes. Rewrites use smaller batches because the model
// returns full answer text per card, not just a score.
const (
	DefaultGradeBatchSize   = 20
	DefaultRewriteBatchSize = 10
)

const gradePromptHeader = `You are grading flashcards for accuracy. For each card below, evaluate if the answer is correct and complete.

Score each card from 0-10:
- 10: Perfect answer, completely accurate
- 7-9: Mostly correct with minor issues
- 4-6: Partially correct but missing key information
- 0-3: Incorrect or severely incomplete

IMPORTANT: You must grade ALL cards below. Return a JSON array with one entry per card.

Format your response as JSON array:
[
  {"card_id": "id1", "score": 10, "justification": "explanation"},
  {"card_id": "id2", "score": 8, "justification": "explanation"}
]

Cards to grade:
`

const rewritePromptHeader = `Rewrite each flashcard answer below to be more concise while maintaining accuracy:
- Concise: Remove unnecessary words
- Clear: Use simple, direct language
- Complete: Keep all essential information

Return a JSON array with one entry per card:
[{"card_id": "id1", "new_value": "rewritten answer text"}]

Cards to rewrite:
`

// Completer abstracts the LLM call so the grader can be tested without
// a live endpoint.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Grade is one scored card.
type Grade struct {
	Card          deck.Card
	CardID        string
	Score         int
	Justification string
}

// Report is the outcome of a grading run. Ungraded cards were present
// in a successful batch but missing from the model's response; they are
// reported separately, never defaulted to a score.
type Report struct {
	Graded   []Grade
	Ungraded []deck.Card
	// SkippedBatches counts batches dropped due to request or parse
	// failures. Their cards appear in neither list.
	SkippedBatches int
}

// Imperfect returns graded cards scoring below 10, sorted ascending by
// score (worst first), stable within equal scores.
func (r *Report) Imperfect() []Grade {
	var out []Grade
	for _, g := range r.Graded {
		if g.Score < 10 {
			out = append(out, g)
		}
	}
	// Insertion sort keeps equal scores in grading order.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Score < out[j-1].Score; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// Grader runs batched LLM passes over cards.
type Grader struct {
	llm    Completer
	logger *slog.Logger
}

// NewGrader creates a grader over the given completion backend.
func NewGrader(llm Completer, logger *slog.Logger) *Grader {
	return &Grader{llm: llm, logger: logger}
}

// gradeID identifies a card to the model. Cards not yet created
// remotely get a synthetic id derived from their fingerprint.
func gradeID(card deck.Card) string {
	if card.Saved() {
		return card.ID
	}
	return "local-" + card.Fingerprint()
}

// Grade scores cards in fixed-size batches, one blocking request per
// batch, sequentially. A failed batch is skipped without aborting the
// remaining batches.
func (g *Grader) Grade(ctx context.Context, cards []deck.Card, batchSize int) (*Report, error) {
	if batchSize <= 0 {
		batchSize = DefaultGradeBatchSize
	}

	report := &Report{}
	total := (len(cards) + batchSize - 1) / batchSize

	for i := 0; i < len(cards); i += batchSize {
		batch := cards[i:min(i+batchSize, len(cards))]
		batchNum := i/batchSize + 1
		g.logger.Info("grading batch",
			slog.Int("batch", batchNum),
			slog.Int("of", total),
			slog.Int("cards", len(batch)),
		)

		entries, err := g.runBatch(ctx, gradePrompt(batch))
		if err != nil {
			report.SkippedBatches++
			g.logger.Warn("batch failed, skipping",
				slog.Int("batch", batchNum),
				slog.String("error", err.Error()),
			)
			continue
		}

		for _, card := range batch {
			id := gradeID(card)
			entry, ok := entries[id]
			if !ok {
				report.Ungraded = append(report.Ungraded, card)
				continue
			}
			report.Graded = append(report.Graded, Grade{
				Card:          card,
				CardID:        id,
				Score:         int(entry.Get("score").Int()),
				Justification: entry.Get("justification").String(),
			})
		}
	}

	if len(report.Ungraded) > 0 {
		g.logger.Warn("model did not grade all cards",
			slog.Int("ungraded", len(report.Ungraded)),
		)
	}

	return report, nil
}

// Rewrite asks the model for more concise answers and applies them to
// the cards in place. Cards absent from a response are left untouched.
// Returns the number of answers changed.
func (g *Grader) Rewrite(ctx context.Context, cards []deck.Card, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = DefaultRewriteBatchSize
	}

	changed := 0
	for i := 0; i < len(cards); i += batchSize {
		end := min(i+batchSize, len(cards))
		batch := cards[i:end]

		entries, err := g.runBatch(ctx, rewritePrompt(batch))
		if err != nil {
			g.logger.Warn("rewrite batch failed, skipping",
				slog.Int("batch", i/batchSize+1),
				slog.String("error", err.Error()),
			)
			continue
		}

		for j := i; j < end; j++ {
			entry, ok := entries[gradeID(cards[j])]
			if !ok {
				continue
			}
			newAnswer := strings.TrimSpace(entry.Get("new_value").String())
			if newAnswer == "" || newAnswer == cards[j].Answer {
				continue
			}
			cards[j].Answer = newAnswer
			changed++
		}
	}

	return changed, nil
}

// runBatch issues one completion and indexes the returned JSON array by
// card_id. Models wrap the array in an object often enough that the
// first array-valued field is accepted too.
func (g *Grader) runBatch(ctx context.Context, prompt string) (map[string]gjson.Result, error) {
	response, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	response = strings.TrimSpace(response)
	if !gjson.Valid(response) {
		return nil, &mserrors.GradingParseError{Detail: "response is not valid JSON"}
	}

	parsed := gjson.Parse(response)
	if parsed.IsObject() {
		found := false
		parsed.ForEach(func(_, value gjson.Result) bool {
			if value.IsArray() {
				parsed = value
				found = true
				return false
			}
			return true
		})
		if !found {
			return nil, &mserrors.GradingParseError{Detail: "response object contains no array"}
		}
	}
	if !parsed.IsArray() {
		return nil, &mserrors.GradingParseError{Detail: "response is neither an array nor an object wrapping one"}
	}

	entries := make(map[string]gjson.Result)
	for _, entry := range parsed.Array() {
		if id := entry.Get("card_id").String(); id != "" {
			entries[id] = entry
		}
	}
	return entries, nil
}

func gradePrompt(batch []deck.Card) string {
	var b strings.Builder
	b.WriteString(gradePromptHeader)
	for i, card := range batch {
		fmt.Fprintf(&b, "\n%d. Card ID: %s\n", i+1, gradeID(card))
		fmt.Fprintf(&b, "   Question: %s\n", card.Question)
		fmt.Fprintf(&b, "   Answer: %s\n", card.Answer)
	}
	return b.String()
}

func rewritePrompt(batch []deck.Card) string {
	var b strings.Builder
	b.WriteString(rewritePromptHeader)
	for i, card := range batch {
		fmt.Fprintf(&b, "\n%d. Card ID: %s\n", i+1, gradeID(card))
		fmt.Fprintf(&b, "   Question: %s\n", card.Question)
		fmt.Fprintf(&b, "   Answer: %s\n", card.Answer)
	}
	return b.String()
}
