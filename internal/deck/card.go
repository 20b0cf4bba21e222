// Package deck holds the canonical card model and its on-disk text
// encoding. A deck file is a repeating three-block structure per card
// (frontmatter, question, answer) delimited by the literal "---"
// separator, bound to a remote deck through its filename.
package deck

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Deck identifies a remote card collection. The binding between a local
// file and its deck lives in the filename, not inside the file.
type Deck struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Card is the canonical in-memory card shared by the codec, the
// reconciler, and the executor. An empty ID means the card has never
// been confirmed to exist remotely.
type Card struct {
	ID       string
	Question string
	Answer   string
	Tags     []string
	Archived bool
}

// Saved reports whether the card carries a remote identity.
func (c Card) Saved() bool {
	return c.ID != ""
}

// Content renders the card body in the remote API's wire form:
// question and answer joined by the separator token.
func (c Card) Content() string {
	return c.Question + "\n---\n" + c.Answer
}

// Fingerprint is a deterministic digest of the card's trimmed question
// and answer, used for change detection and duplicate detection. Two
// cards with equal fingerprints are content-identical regardless of ID.
func (c Card) Fingerprint() string {
	return Fingerprint(c.Question, c.Answer)
}

// Fingerprint computes the content digest for a question/answer pair:
// sha256 of "{question}\n---\n{answer}" truncated to 16 hex characters.
func Fingerprint(question, answer string) string {
	content := strings.TrimSpace(question) + "\n---\n" + strings.TrimSpace(answer)
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:16]
}

// SplitContent separates a wire-form card body into question and answer
// at the first separator token, trimming surrounding whitespace.
func SplitContent(content string) (question, answer string) {
	question, answer, _ = strings.Cut(content, "---")
	return strings.TrimSpace(question), strings.TrimSpace(answer)
}
