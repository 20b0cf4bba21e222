package mochi

import "github.com/alexjbarnes/mochi-sync/internal/deck"

// Deck is the wire representation of a deck.
type Deck struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent-id,omitempty"`
	Sort     int    `json:"sort,omitempty"`
	Archived bool   `json:"archived?,omitempty"`
}

// Card is the wire representation of a card. Content is the question
// and answer joined by the separator token.
type Card struct {
	ID       string   `json:"id"`
	DeckID   string   `json:"deck-id"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags,omitempty"`
	Archived bool     `json:"archived?,omitempty"`
}

// CardFields is the sparse descriptor for optional create/update fields.
// Unset fields are omitted from the request and left unchanged remotely;
// there is deliberately no open-ended field map.
type CardFields struct {
	Tags       []string `json:"tags,omitempty"`
	Archived   *bool    `json:"archived,omitempty"`
	TemplateID string   `json:"template-id,omitempty"`
	Pos        string   `json:"pos,omitempty"`
}

// deckList is the envelope for deck listing responses.
type deckList struct {
	Docs []Deck `json:"docs"`
}

// cardPage is one page of a bookmark-paginated card listing.
type cardPage struct {
	Docs     []Card `json:"docs"`
	Bookmark string `json:"bookmark"`
}

// createCardRequest is the body for card creation.
type createCardRequest struct {
	Content string `json:"content"`
	DeckID  string `json:"deck-id"`
	CardFields
}

// updateCardRequest is the body for a partial card update.
type updateCardRequest struct {
	Content string `json:"content,omitempty"`
	CardFields
}

// Canonical converts a wire card into the canonical representation,
// splitting content into question and answer at this boundary.
func (c Card) Canonical() deck.Card {
	question, answer := deck.SplitContent(c.Content)
	return deck.Card{
		ID:       c.ID,
		Question: question,
		Answer:   answer,
		Tags:     c.Tags,
		Archived: c.Archived,
	}
}
