package sync

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alexjbarnes/mochi-sync/internal/deck"
	mserrors "github.com/alexjbarnes/mochi-sync/internal/errors"
	"github.com/alexjbarnes/mochi-sync/internal/mochi"
)

//go:generate mockgen -source=executor.go -destination=mock_remote_test.go -package=sync

// RemoteAPI is the slice of the card API the executor mutates through.
type RemoteAPI interface {
	CreateCard(ctx context.Context, deckID, content string, fields mochi.CardFields) (*mochi.Card, error)
	UpdateCard(ctx context.Context, cardID, content string, fields mochi.CardFields) (*mochi.Card, error)
	DeleteCard(ctx context.Context, cardID string) error
}

// State tracks the executor through one run.
type State int

const (
	StatePlanned State = iota
	StateConfirmed
	StateApplying
	StateDone
	StateAborted
)

// Result is the partial-success summary of one apply. Mutations are
// independent; a failure mid-run never rolls back earlier successes
// because the remote API has no multi-card transaction primitive.
type Result struct {
	Created int
	Updated int
	Deleted int
	Failed  int
}

func (r Result) String() string {
	s := fmt.Sprintf("%d created, %d updated, %d deleted", r.Created, r.Updated, r.Deleted)
	if r.Failed > 0 {
		s += fmt.Sprintf(", %d failed", r.Failed)
	}
	return s
}

// Executor applies a plan against the remote API, one mutation at a
// time, in sequence. Creates run first so newly assigned ids can be
// written back into the local file; update and delete order is not
// semantically significant.
type Executor struct {
	api    RemoteAPI
	logger *slog.Logger
	state  State
}

// NewExecutor creates an executor over the given remote API.
func NewExecutor(api RemoteAPI, logger *slog.Logger) *Executor {
	return &Executor{api: api, logger: logger, state: StatePlanned}
}

// State returns the executor's current lifecycle state.
func (e *Executor) State() State {
	return e.state
}

// Apply executes a confirmed plan. The caller is responsible for
// prompting the operator first; Apply assumes confirmation was given.
// A plan still blocked by duplicates aborts with ErrDuplicateDetected
// before any mutation is issued.
//
// localCards is the full decoded card list backing the plan's pointers.
// After creates succeed, the file at filePath is rewritten in one
// complete write so the new ids are persisted; update/delete-only runs
// leave the file untouched since its content was already correct.
func (e *Executor) Apply(ctx context.Context, deckID string, plan *Plan, localCards []deck.Card, filePath string) (*Result, error) {
	if plan.Blocked() {
		e.state = StateAborted
		return nil, fmt.Errorf("%d unresolved duplicate(s): %w", len(plan.Duplicates), mserrors.ErrDuplicateDetected)
	}

	e.state = StateConfirmed
	e.state = StateApplying

	result := &Result{}

	for _, card := range plan.ToCreate {
		created, err := e.api.CreateCard(ctx, deckID, card.Content(), cardFields(*card))
		if err != nil {
			result.Failed++
			e.logger.Warn("create failed",
				slog.String("question", truncate(card.Question, 50)),
				slog.String("error", err.Error()),
			)
			continue
		}
		// Record the minted id so the file rewrite persists it.
		card.ID = created.ID
		result.Created++
		e.logger.Info("created card",
			slog.String("card_id", created.ID),
			slog.String("question", truncate(card.Question, 50)),
		)
	}

	for _, u := range plan.ToUpdate {
		if _, err := e.api.UpdateCard(ctx, u.Card.ID, u.Card.Content(), cardFields(*u.Card)); err != nil {
			result.Failed++
			e.logger.Warn("update failed",
				slog.String("card_id", u.Card.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		result.Updated++
		e.logger.Info("updated card", slog.String("card_id", u.Card.ID))
	}

	for _, id := range plan.DeleteIDs() {
		if err := e.api.DeleteCard(ctx, id); err != nil {
			result.Failed++
			e.logger.Warn("delete failed",
				slog.String("card_id", id),
				slog.String("error", err.Error()),
			)
			continue
		}
		result.Deleted++
		e.logger.Info("deleted card", slog.String("card_id", id))
	}

	if result.Created > 0 && filePath != "" {
		if err := os.WriteFile(filePath, []byte(deck.Encode(localCards)), 0o644); err != nil {
			e.state = StateAborted
			return result, fmt.Errorf("rewriting %s with new card ids: %w", filePath, err)
		}
		e.logger.Info("rewrote local file with new card ids",
			slog.String("path", filePath),
			slog.Int("cards", len(localCards)),
		)
	}

	e.state = StateDone
	return result, nil
}

// cardFields builds the sparse optional-field descriptor for a card:
// tags only when present, archived only when set.
func cardFields(card deck.Card) mochi.CardFields {
	fields := mochi.CardFields{}
	if len(card.Tags) > 0 {
		fields.Tags = card.Tags
	}
	if card.Archived {
		archived := true
		fields.Archived = &archived
	}
	return fields
}
