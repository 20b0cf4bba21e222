package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/alexjbarnes/mochi-sync/internal/deck"
	mserrors "github.com/alexjbarnes/mochi-sync/internal/errors"
	"github.com/alexjbarnes/mochi-sync/internal/mochi"
)

func tempDeckFile(t *testing.T, cards []deck.Card) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test-deck1.md")
	require.NoError(t, os.WriteFile(path, []byte(deck.Encode(cards)), 0o644))
	return path
}

func TestApply_BlockedPlanAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := NewMockRemoteAPI(ctrl)
	e := NewExecutor(api, quietLogger)

	card := deck.Card{Question: "Q", Answer: "A"}
	plan := &Plan{
		ToDelete:   map[string]struct{}{},
		Duplicates: []Duplicate{{Card: &card, RemoteID: "r1"}},
	}

	_, err := e.Apply(context.Background(), "deck1", plan, []deck.Card{card}, "")
	assert.ErrorIs(t, err, mserrors.ErrDuplicateDetected)
	assert.Equal(t, StateAborted, e.State())
}

func TestApply_CreateAssignsIDAndRewritesFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := NewMockRemoteAPI(ctrl)

	local := []deck.Card{{Question: "Q", Answer: "A", Tags: []string{"go"}}}
	path := tempDeckFile(t, local)

	api.EXPECT().
		CreateCard(gomock.Any(), "deck1", "Q\n---\nA", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, fields mochi.CardFields) (*mochi.Card, error) {
			assert.Equal(t, []string{"go"}, fields.Tags)
			assert.Nil(t, fields.Archived)
			return &mochi.Card{ID: "new1"}, nil
		})

	plan := BuildPlan(local, nil, false, quietLogger)
	e := NewExecutor(api, quietLogger)
	result, err := e.Apply(context.Background(), "deck1", plan, local, path)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, "new1", local[0].ID, "minted id is written back onto the in-memory card")
	assert.Equal(t, StateDone, e.State())

	// The file was rewritten with the new id persisted.
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	reloaded := deck.Decode(string(content))
	require.Len(t, reloaded, 1)
	assert.Equal(t, "new1", reloaded[0].ID)
}

func TestApply_UpdateAndDelete_NoFileRewrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := NewMockRemoteAPI(ctrl)

	local := []deck.Card{{ID: "r1", Question: "Q", Answer: "A2"}}
	remote := []deck.Card{
		{ID: "r1", Question: "Q", Answer: "A"},
		{ID: "r2", Question: "Q2", Answer: "A2"},
	}
	path := tempDeckFile(t, local)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	api.EXPECT().UpdateCard(gomock.Any(), "r1", "Q\n---\nA2", gomock.Any()).Return(&mochi.Card{ID: "r1"}, nil)
	api.EXPECT().DeleteCard(gomock.Any(), "r2").Return(nil)

	plan := BuildPlan(local, remote, false, quietLogger)
	e := NewExecutor(api, quietLogger)
	result, err := e.Apply(context.Background(), "deck1", plan, local, path)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Deleted)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "update/delete-only runs leave the file untouched")
}

func TestApply_CreatesBeforeUpdatesBeforeDeletes(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := NewMockRemoteAPI(ctrl)

	local := []deck.Card{
		{Question: "New", Answer: "Card"},
		{ID: "r1", Question: "Q", Answer: "edited"},
	}
	remote := []deck.Card{
		{ID: "r1", Question: "Q", Answer: "A"},
		{ID: "r2", Question: "Gone", Answer: "Soon"},
	}

	gomock.InOrder(
		api.EXPECT().CreateCard(gomock.Any(), "deck1", "New\n---\nCard", gomock.Any()).Return(&mochi.Card{ID: "new1"}, nil),
		api.EXPECT().UpdateCard(gomock.Any(), "r1", "Q\n---\nedited", gomock.Any()).Return(&mochi.Card{ID: "r1"}, nil),
		api.EXPECT().DeleteCard(gomock.Any(), "r2").Return(nil),
	)

	plan := BuildPlan(local, remote, false, quietLogger)
	e := NewExecutor(api, quietLogger)
	result, err := e.Apply(context.Background(), "deck1", plan, local, tempDeckFile(t, local))
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 1, Updated: 1, Deleted: 1}, *result)
}

func TestApply_PartialFailureContinues(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := NewMockRemoteAPI(ctrl)

	local := []deck.Card{
		{Question: "Q1", Answer: "A1"},
		{Question: "Q2", Answer: "A2"},
	}
	remote := []deck.Card{{ID: "r9", Question: "Old", Answer: "Card"}}

	api.EXPECT().CreateCard(gomock.Any(), "deck1", "Q1\n---\nA1", gomock.Any()).
		Return(nil, fmt.Errorf("server error"))
	api.EXPECT().CreateCard(gomock.Any(), "deck1", "Q2\n---\nA2", gomock.Any()).
		Return(&mochi.Card{ID: "new2"}, nil)
	api.EXPECT().DeleteCard(gomock.Any(), "r9").Return(nil)

	plan := BuildPlan(local, remote, false, quietLogger)
	e := NewExecutor(api, quietLogger)
	result, err := e.Apply(context.Background(), "deck1", plan, local, tempDeckFile(t, local))
	require.NoError(t, err, "individual mutation failures do not abort the run")

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Deleted)
	assert.Equal(t, 1, result.Failed)
	assert.Empty(t, local[0].ID, "failed create leaves the card unsaved")
	assert.Equal(t, "new2", local[1].ID)
}

func TestApply_ArchivedCardSendsArchivedField(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := NewMockRemoteAPI(ctrl)

	local := []deck.Card{{Question: "Q", Answer: "A", Archived: true}}

	api.EXPECT().CreateCard(gomock.Any(), "deck1", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, fields mochi.CardFields) (*mochi.Card, error) {
			require.NotNil(t, fields.Archived)
			assert.True(t, *fields.Archived)
			return &mochi.Card{ID: "new1"}, nil
		})

	plan := BuildPlan(local, nil, false, quietLogger)
	e := NewExecutor(api, quietLogger)
	_, err := e.Apply(context.Background(), "deck1", plan, local, tempDeckFile(t, local))
	require.NoError(t, err)
}

func TestResult_String(t *testing.T) {
	assert.Equal(t, "1 created, 2 updated, 3 deleted", Result{Created: 1, Updated: 2, Deleted: 3}.String())
	assert.Contains(t, Result{Failed: 1}.String(), "1 failed")
}
