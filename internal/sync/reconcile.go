package sync

import (
	"log/slog"

	"github.com/alexjbarnes/mochi-sync/internal/deck"
)

// BuildPlan diffs the local card set against the remote card set and
// classifies every card into create, update, delete, or
// skip-as-duplicate. Local edits are authoritative; remote state only
// ever loses.
//
// force disables duplicate detection: id-less local cards whose content
// already exists remotely are created anyway instead of blocking the
// plan.
func BuildPlan(local []deck.Card, remote []deck.Card, force bool, logger *slog.Logger) *Plan {
	remoteByID := make(map[string]deck.Card, len(remote))
	// Last writer wins on fingerprint collisions; identical content
	// under two remote ids is itself a remote-side duplicate and rare.
	remoteByFingerprint := make(map[string]string, len(remote))
	for _, rc := range remote {
		remoteByID[rc.ID] = rc
		remoteByFingerprint[rc.Fingerprint()] = rc.ID
	}

	plan := &Plan{ToDelete: make(map[string]struct{})}

	localIDs := make(map[string]struct{})
	for i := range local {
		lc := &local[i]

		if lc.Saved() {
			localIDs[lc.ID] = struct{}{}

			rc, exists := remoteByID[lc.ID]
			if !exists {
				// Ids are permanent identity, not content. Re-creating
				// this card would mint a new id and silently resurrect
				// something deleted remotely on purpose.
				logger.Warn("local card id not found remotely, skipping",
					slog.String("card_id", lc.ID),
					slog.String("question", truncate(lc.Question, 60)),
				)
				plan.Orphans = append(plan.Orphans, lc.ID)
				continue
			}

			if lc.Fingerprint() != rc.Fingerprint() {
				plan.ToUpdate = append(plan.ToUpdate, Update{Card: lc, Remote: rc})
			}
			continue
		}

		// No id yet: candidate for creation, unless the same content
		// already exists remotely.
		if remoteID, dup := remoteByFingerprint[lc.Fingerprint()]; dup && !force {
			plan.Duplicates = append(plan.Duplicates, Duplicate{Card: lc, RemoteID: remoteID})
			continue
		}
		plan.ToCreate = append(plan.ToCreate, lc)
	}

	// Remote cards absent from the local id set get deleted. Id-less
	// local cards never suppress a deletion: until created they have no
	// claim on any remote card.
	for _, rc := range remote {
		if _, kept := localIDs[rc.ID]; !kept {
			plan.ToDelete[rc.ID] = struct{}{}
		}
	}

	logger.Debug("plan built",
		slog.Int("create", len(plan.ToCreate)),
		slog.Int("update", len(plan.ToUpdate)),
		slog.Int("delete", len(plan.ToDelete)),
		slog.Int("duplicates", len(plan.Duplicates)),
		slog.Int("orphans", len(plan.Orphans)),
	)

	return plan
}
