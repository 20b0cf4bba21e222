package deck

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// separator is the literal token that delimits frontmatter, question,
// and answer blocks in a deck file.
const separator = "---"

// parseState tracks which block of the three-block cycle the decoder
// expects next.
type parseState int

const (
	expectFrontmatter parseState = iota
	expectQuestion
	expectAnswer
)

// Decode parses deck file text into cards. Segments are produced by
// splitting on the separator token; blank segments and segments starting
// with a heading marker are document titles, not data, and are skipped.
// A file ending mid-cycle silently drops the incomplete trailing card.
// Decode never fails: malformed frontmatter fields fall back to safe
// defaults so hand-edited files keep parsing.
func Decode(text string) []Card {
	var cards []Card

	state := expectFrontmatter
	var current Card

	for _, segment := range strings.Split(text, separator) {
		segment = strings.TrimSpace(segment)
		if segment == "" || strings.HasPrefix(segment, "#") {
			continue
		}

		switch state {
		case expectFrontmatter:
			current = parseFrontmatter(segment)
			state = expectQuestion

		case expectQuestion:
			current.Question = segment
			state = expectAnswer

		case expectAnswer:
			current.Answer = segment
			cards = append(cards, current)
			current = Card{}
			state = expectFrontmatter
		}
	}

	return cards
}

// parseFrontmatter reads "key: value" lines into a card skeleton.
// Recognized keys: card_id (null/none/empty mean no id), tags (a JSON
// array literal; anything malformed yields empty tags), and archived
// ("true" case-insensitively, anything else false).
func parseFrontmatter(segment string) Card {
	fields := make(map[string]string)
	for _, line := range strings.Split(segment, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	var card Card

	if id, ok := fields["card_id"]; ok {
		switch strings.ToLower(id) {
		case "null", "none", "":
			// No remote identity.
		default:
			card.ID = id
		}
	}

	card.Tags = parseTags(fields["tags"])
	card.Archived = strings.EqualFold(fields["archived"], "true")

	return card
}

// parseTags decodes the tags value, a JSON array literal. Malformed
// input yields empty tags rather than an error; strictness here would
// make a typo in one card break the whole file.
func parseTags(value string) []string {
	if value == "" || !gjson.Valid(value) {
		return nil
	}

	parsed := gjson.Parse(value)
	if !parsed.IsArray() {
		return nil
	}

	var tags []string
	for _, tag := range parsed.Array() {
		tags = append(tags, tag.String())
	}
	return tags
}

// Encode renders cards back into deck file text. card_id is always
// emitted (as null when unsaved) so the frontmatter block is never
// empty; tags only when present, archived only when true.
func Encode(cards []Card) string {
	var b strings.Builder

	for _, card := range cards {
		b.WriteString(separator + "\n")

		if card.Saved() {
			b.WriteString("card_id: " + card.ID + "\n")
		} else {
			b.WriteString("card_id: null\n")
		}

		if len(card.Tags) > 0 {
			// Tags are plain strings; marshalling them cannot fail.
			tags, _ := json.Marshal(card.Tags)
			b.WriteString("tags: " + string(tags) + "\n")
		}

		if card.Archived {
			b.WriteString("archived: true\n")
		}

		b.WriteString(separator + "\n")
		b.WriteString(card.Question + "\n")
		b.WriteString(separator + "\n")
		b.WriteString(card.Answer + "\n")
	}

	return b.String()
}
