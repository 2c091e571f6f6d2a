package memory

import (
	"fmt"

	"assetledger/pkg/domain"
)

// Snapshot is the serializable form of the full ledger state. The durable
// drivers marshal each field as one JSON bucket.
type Snapshot struct {
	Owners               map[domain.AssetID]domain.AccountID     `json:"owners"`
	Descriptions         map[domain.AssetID]domain.ContentRef    `json:"descriptions"`
	Photos               map[domain.AssetID]domain.ContentRef    `json:"photos"`
	Locations            map[domain.AssetID]domain.ContentRef    `json:"locations"`
	Metadata             map[domain.AssetID]domain.ContentRef    `json:"metadata"`
	Categories           map[domain.AssetID]domain.CategoryID    `json:"categories"`
	CategoryDescriptions map[domain.CategoryID]domain.ContentRef `json:"category_descriptions"`
	Validations          map[domain.AssetID]domain.AccountID     `json:"validations"`
	Delegates            map[domain.AssetID]domain.AccountID     `json:"delegates"`
	BlanketApprovals     map[domain.ApprovalKey]bool             `json:"blanket_approvals"`
	Roles                map[domain.AccountID]domain.Role        `json:"roles"`
	OwnedCounts          map[domain.AccountID]uint32             `json:"owned_counts"`
}

// SnapshotBuckets lists the bucket names durable drivers persist, in stable
// order.
var SnapshotBuckets = []string{
	"owners",
	"descriptions",
	"photos",
	"locations",
	"metadata",
	"categories",
	"category_descriptions",
	"validations",
	"delegates",
	"blanket_approvals",
	"roles",
	"owned_counts",
}

// SnapshotTargets maps bucket names to pointers at the snapshot fields they
// serialize, for use by both the encode and decode sides of a driver.
func SnapshotTargets(snapshot *Snapshot) map[string]any {
	return map[string]any{
		"owners":                &snapshot.Owners,
		"descriptions":          &snapshot.Descriptions,
		"photos":                &snapshot.Photos,
		"locations":             &snapshot.Locations,
		"metadata":              &snapshot.Metadata,
		"categories":            &snapshot.Categories,
		"category_descriptions": &snapshot.CategoryDescriptions,
		"validations":           &snapshot.Validations,
		"delegates":             &snapshot.Delegates,
		"blanket_approvals":     &snapshot.BlanketApprovals,
		"roles":                 &snapshot.Roles,
		"owned_counts":          &snapshot.OwnedCounts,
	}
}

func snapshotFromState(state ledgerState) Snapshot {
	return Snapshot{
		Owners:               cloneMap(state.owners),
		Descriptions:         cloneMap(state.descriptions),
		Photos:               cloneMap(state.photos),
		Locations:            cloneMap(state.locations),
		Metadata:             cloneMap(state.metadata),
		Categories:           cloneMap(state.categories),
		CategoryDescriptions: cloneMap(state.categoryDescriptions),
		Validations:          cloneMap(state.validations),
		Delegates:            cloneMap(state.delegates),
		BlanketApprovals:     cloneMap(state.blanketApprovals),
		Roles:                cloneMap(state.roles),
		OwnedCounts:          cloneMap(state.ownedCounts),
	}
}

func stateFromSnapshot(snapshot Snapshot) ledgerState {
	state := newLedgerState()
	for id, owner := range snapshot.Owners {
		state.owners[id] = owner
	}
	for id, ref := range snapshot.Descriptions {
		state.descriptions[id] = ref
	}
	for id, ref := range snapshot.Photos {
		state.photos[id] = ref
	}
	for id, ref := range snapshot.Locations {
		state.locations[id] = ref
	}
	for id, ref := range snapshot.Metadata {
		state.metadata[id] = ref
	}
	for id, category := range snapshot.Categories {
		state.categories[id] = category
	}
	for id, ref := range snapshot.CategoryDescriptions {
		state.categoryDescriptions[id] = ref
	}
	for id, account := range snapshot.Validations {
		state.validations[id] = account
	}
	for id, delegate := range snapshot.Delegates {
		state.delegates[id] = delegate
	}
	for key, approved := range snapshot.BlanketApprovals {
		state.blanketApprovals[key] = approved
	}
	for account, role := range snapshot.Roles {
		state.roles[account] = role
	}
	for account, count := range snapshot.OwnedCounts {
		state.ownedCounts[account] = count
	}
	return state
}

// validateSnapshot checks the owned-asset counters against the ownership map
// before a snapshot is accepted. A mismatch means the source data is corrupt.
func validateSnapshot(snapshot Snapshot) error {
	recomputed := make(map[domain.AccountID]uint32, len(snapshot.OwnedCounts))
	for _, owner := range snapshot.Owners {
		recomputed[owner]++
	}
	for account, count := range recomputed {
		if snapshot.OwnedCounts[account] != count {
			return fmt.Errorf("owned-asset counter for %s is %d, ownership map has %d assets", account, snapshot.OwnedCounts[account], count)
		}
	}
	for account, count := range snapshot.OwnedCounts {
		if count != 0 && recomputed[account] == 0 {
			return fmt.Errorf("owned-asset counter for %s is %d but the account owns nothing", account, count)
		}
	}
	return nil
}

// ExportState returns a deep copy of the committed state as a snapshot.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromState(s.state)
}

// ImportState replaces the committed state with the provided snapshot after
// validating its internal consistency.
func (s *Store) ImportState(snapshot Snapshot) error {
	if err := validateSnapshot(snapshot); err != nil {
		return fmt.Errorf("import state: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateFromSnapshot(snapshot)
	return nil
}
