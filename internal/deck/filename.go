package deck

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"

	mserrors "github.com/alexjbarnes/mochi-sync/internal/errors"
)

// Filename builds the local file name binding a deck to its file:
// <sanitized-name>-<deck-id>.md. The deck id always forms the last
// hyphen-separated token of the stem, which is what DeckIDFromFilename
// relies on.
func Filename(deckName, deckID string) string {
	return slug.Make(deckName) + "-" + deckID + ".md"
}

// DeckIDFromFilename recovers the deck id from a local file path. The
// stem is split on the last hyphen; a stem with no hyphen does not
// encode a deck id and fails closed rather than guessing.
func DeckIDFromFilename(path string) (string, error) {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	idx := strings.LastIndex(stem, "-")
	if idx < 0 || idx == len(stem)-1 {
		return "", fmt.Errorf("%w: %s", mserrors.ErrMalformedFilename, base)
	}

	return stem[idx+1:], nil
}
