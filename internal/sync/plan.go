// Package sync contains the reconciliation engine: building a plan from
// a local and a remote card snapshot, and applying that plan against the
// remote API with local-wins semantics.
package sync

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/alexjbarnes/mochi-sync/internal/deck"
)

// Update pairs a local card that diverged from its remote counterpart
// with the remote snapshot it will overwrite.
type Update struct {
	Card   *deck.Card
	Remote deck.Card
}

// Duplicate is an id-less local card whose fingerprint matches an
// existing remote card. Creating it would duplicate content.
type Duplicate struct {
	Card     *deck.Card
	RemoteID string
}

// Plan is the set of decisions for one sync run. It is built fresh from
// two snapshots each invocation and never persisted. ToCreate, ToUpdate,
// and Duplicates follow local file order; ToDelete is an unordered set
// since removed remote cards have no local ordering.
type Plan struct {
	ToCreate   []*deck.Card
	ToUpdate   []Update
	ToDelete   map[string]struct{}
	Duplicates []Duplicate

	// Orphans are local card ids that no longer exist remotely. They
	// are skipped entirely: re-creating them would resurrect content
	// that was deliberately deleted on the other side.
	Orphans []string
}

// Empty reports whether the plan requires no remote mutations.
func (p *Plan) Empty() bool {
	return len(p.ToCreate) == 0 && len(p.ToUpdate) == 0 && len(p.ToDelete) == 0
}

// Blocked reports whether execution must refuse to proceed. Unresolved
// duplicates gate the whole plan, not just the affected creates: a
// fingerprint mismatch that slipped through (for example a whitespace
// normalization difference) could otherwise mass-duplicate a deck.
func (p *Plan) Blocked() bool {
	return len(p.Duplicates) > 0
}

// DeleteIDs returns the deletion set in sorted order for deterministic
// application and output.
func (p *Plan) DeleteIDs() []string {
	ids := make([]string, 0, len(p.ToDelete))
	for id := range p.ToDelete {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Summary renders the operator-facing change counts.
func (p *Plan) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Changes to push:\n")
	fmt.Fprintf(&b, "  Create: %d\n", len(p.ToCreate))
	fmt.Fprintf(&b, "  Update: %d\n", len(p.ToUpdate))
	fmt.Fprintf(&b, "  Delete: %d\n", len(p.ToDelete))
	if len(p.Orphans) > 0 {
		fmt.Fprintf(&b, "  Skipped (id missing remotely): %d\n", len(p.Orphans))
	}
	return b.String()
}

// DescribeDuplicates renders the duplicate warnings in local file order.
func (p *Plan) DescribeDuplicates() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d potential duplicate(s):\n", len(p.Duplicates))
	for _, d := range p.Duplicates {
		fmt.Fprintf(&b, "  - %s (matches %s)\n", truncate(d.Card.Question, 60), d.RemoteID)
	}
	return b.String()
}

// DescribeUpdates renders a per-card diff of pending updates so the
// operator can see exactly what will change before confirming.
func (p *Plan) DescribeUpdates() string {
	if len(p.ToUpdate) == 0 {
		return ""
	}

	dmp := diffmatchpatch.New()
	var b strings.Builder
	for _, u := range p.ToUpdate {
		fmt.Fprintf(&b, "--- %s: %s\n", u.Card.ID, truncate(u.Card.Question, 60))
		diffs := dmp.DiffMain(u.Remote.Content(), u.Card.Content(), false)
		diffs = dmp.DiffCleanupSemantic(diffs)
		b.WriteString(dmp.DiffPrettyText(diffs))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
