// Package mochi is a thin client for the Mochi card REST API: deck
// lookup plus the four card operations the sync engine needs (list with
// bookmark pagination, create, update, delete). It performs no retries;
// callers own that decision.
package mochi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexjbarnes/mochi-sync/internal/config"
	mserrors "github.com/alexjbarnes/mochi-sync/internal/errors"
)

// pageLimit is the page size requested from the card listing endpoint.
const pageLimit = 100

// Client talks to the Mochi REST API. The API key is presented as HTTP
// basic auth (key as username, empty password) on every request; there
// is no session or token refresh flow.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

// NewClient creates an API client from the loaded configuration.
// If httpClient is nil, a client with the configured timeout is used.
func NewClient(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		logger:     logger,
	}
}

// do sends a request with basic auth and decodes the 2xx response body
// into result. A 404 maps to ErrNotFound; any other non-2xx status
// surfaces as a RemoteError carrying the status and body.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshalling request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	u := c.baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, "")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request to %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", endpoint, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", endpoint, mserrors.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &mserrors.RemoteError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response from %s: %w", endpoint, err)
		}
	}

	return nil
}

// ListDecks returns all decks accessible to the API key.
func (c *Client) ListDecks(ctx context.Context) ([]Deck, error) {
	var resp deckList
	if err := c.do(ctx, http.MethodGet, "/decks/", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("listing decks: %w", err)
	}
	return resp.Docs, nil
}

// GetDeck fetches a single deck by id.
func (c *Client) GetDeck(ctx context.Context, deckID string) (*Deck, error) {
	var resp Deck
	if err := c.do(ctx, http.MethodGet, "/decks/"+deckID, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching deck %s: %w", deckID, err)
	}
	return &resp, nil
}

// ResolveDeck finds a deck by id, exact name, or case-insensitive
// substring of the name, in that order. The substring fallback is a
// compatibility affordance for hand-typed refs; it can mask typos, so
// a substring hit is logged.
func (c *Client) ResolveDeck(ctx context.Context, ref string) (*Deck, error) {
	d, err := c.GetDeck(ctx, ref)
	if err == nil {
		return d, nil
	}

	decks, listErr := c.ListDecks(ctx)
	if listErr != nil {
		// Surface the original lookup failure; the listing failure is
		// almost always the same root cause.
		return nil, err
	}

	for i := range decks {
		if decks[i].Name == ref {
			return &decks[i], nil
		}
	}
	for i := range decks {
		if strings.Contains(strings.ToLower(decks[i].Name), strings.ToLower(ref)) {
			c.logger.Debug("deck resolved by substring match",
				slog.String("ref", ref),
				slog.String("name", decks[i].Name),
				slog.String("id", decks[i].ID),
			)
			return &decks[i], nil
		}
	}

	return nil, fmt.Errorf("deck %q: %w", ref, mserrors.ErrNotFound)
}

// ListCards fetches every card in a deck, following bookmark pagination
// until the server returns an empty page or stops providing a bookmark.
// If a page fails after at least one page succeeded, the cards fetched
// so far are returned with a warning instead of being thrown away; a
// truncated listing still lets the caller make progress.
func (c *Client) ListCards(ctx context.Context, deckID string) ([]Card, error) {
	var cards []Card
	bookmark := ""
	start := time.Now()

	for {
		query := url.Values{}
		query.Set("deck-id", deckID)
		query.Set("limit", fmt.Sprint(pageLimit))
		if bookmark != "" {
			query.Set("bookmark", bookmark)
		}

		var page cardPage
		if err := c.do(ctx, http.MethodGet, "/cards/", query, nil, &page); err != nil {
			if len(cards) == 0 {
				return nil, fmt.Errorf("listing cards for deck %s: %w", deckID, err)
			}
			c.logger.Warn("card listing truncated mid-pagination",
				slog.String("deck_id", deckID),
				slog.Int("fetched", len(cards)),
				slog.String("error", err.Error()),
			)
			return cards, nil
		}

		if len(page.Docs) == 0 {
			break
		}
		cards = append(cards, page.Docs...)

		bookmark = page.Bookmark
		if bookmark == "" {
			break
		}
	}

	c.logger.Debug("listed cards",
		slog.String("deck_id", deckID),
		slog.Int("count", len(cards)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return cards, nil
}

// CreateCard creates a new card in the deck. The server assigns the id.
func (c *Client) CreateCard(ctx context.Context, deckID, content string, fields CardFields) (*Card, error) {
	req := createCardRequest{
		Content:    content,
		DeckID:     deckID,
		CardFields: fields,
	}

	var resp Card
	if err := c.do(ctx, http.MethodPost, "/cards/", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("creating card: %w", err)
	}
	return &resp, nil
}

// UpdateCard applies a partial update to an existing card.
func (c *Client) UpdateCard(ctx context.Context, cardID, content string, fields CardFields) (*Card, error) {
	req := updateCardRequest{
		Content:    content,
		CardFields: fields,
	}

	var resp Card
	if err := c.do(ctx, http.MethodPost, "/cards/"+cardID, nil, req, &resp); err != nil {
		return nil, fmt.Errorf("updating card %s: %w", cardID, err)
	}
	return &resp, nil
}

// DeleteCard removes a card.
func (c *Client) DeleteCard(ctx context.Context, cardID string) error {
	if err := c.do(ctx, http.MethodDelete, "/cards/"+cardID, nil, nil, nil); err != nil {
		return fmt.Errorf("deleting card %s: %w", cardID, err)
	}
	return nil
}
