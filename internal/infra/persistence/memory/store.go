// Package memory provides the in-memory transactional ledger store used for
// tests, ephemeral deployments, and as the state engine behind the durable
// snapshot drivers.
package memory

import (
	"context"
	"fmt"
	"sync"

	"assetledger/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

// ledgerState holds the persisted key-value maps described by the data model:
// the ownership ledger, the six attribute maps, the category catalog, the
// delegation maps, roles, and the owned-asset counters.
type ledgerState struct {
	owners               map[domain.AssetID]domain.AccountID
	descriptions         map[domain.AssetID]domain.ContentRef
	photos               map[domain.AssetID]domain.ContentRef
	locations            map[domain.AssetID]domain.ContentRef
	metadata             map[domain.AssetID]domain.ContentRef
	categories           map[domain.AssetID]domain.CategoryID
	categoryDescriptions map[domain.CategoryID]domain.ContentRef
	validations          map[domain.AssetID]domain.AccountID
	delegates            map[domain.AssetID]domain.AccountID
	blanketApprovals     map[domain.ApprovalKey]bool
	roles                map[domain.AccountID]domain.Role
	ownedCounts          map[domain.AccountID]uint32
}

func newLedgerState() ledgerState {
	return ledgerState{
		owners:               make(map[domain.AssetID]domain.AccountID),
		descriptions:         make(map[domain.AssetID]domain.ContentRef),
		photos:               make(map[domain.AssetID]domain.ContentRef),
		locations:            make(map[domain.AssetID]domain.ContentRef),
		metadata:             make(map[domain.AssetID]domain.ContentRef),
		categories:           make(map[domain.AssetID]domain.CategoryID),
		categoryDescriptions: make(map[domain.CategoryID]domain.ContentRef),
		validations:          make(map[domain.AssetID]domain.AccountID),
		delegates:            make(map[domain.AssetID]domain.AccountID),
		blanketApprovals:     make(map[domain.ApprovalKey]bool),
		roles:                make(map[domain.AccountID]domain.Role),
		ownedCounts:          make(map[domain.AccountID]uint32),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s ledgerState) clone() ledgerState {
	return ledgerState{
		owners:               cloneMap(s.owners),
		descriptions:         cloneMap(s.descriptions),
		photos:               cloneMap(s.photos),
		locations:            cloneMap(s.locations),
		metadata:             cloneMap(s.metadata),
		categories:           cloneMap(s.categories),
		categoryDescriptions: cloneMap(s.categoryDescriptions),
		validations:          cloneMap(s.validations),
		delegates:            cloneMap(s.delegates),
		blanketApprovals:     cloneMap(s.blanketApprovals),
		roles:                cloneMap(s.roles),
		ownedCounts:          cloneMap(s.ownedCounts),
	}
}

// Store is an in-memory transactional ledger store. Each transaction runs
// against a cloned state; the clone replaces the committed state only when
// the transaction function returns nil, so failed calls never leave partial
// updates behind.
type Store struct {
	mu    sync.RWMutex
	state ledgerState
}

// NewStore constructs an empty in-memory ledger store.
func NewStore() *Store {
	return &Store{state: newLedgerState()}
}

// transaction is the mutable unit of work handed to RunInTransaction callbacks.
type transaction struct {
	state  ledgerState
	events []domain.Event
}

// view exposes read-only lookups over a ledger state.
type view struct {
	state *ledgerState
}

// RunInTransaction executes fn within a transactional copy of the store
// state. On success the copy is committed and the staged events returned; on
// error (or panic) the copy is discarded.
func (s *Store) RunInTransaction(_ context.Context, fn func(domain.Transaction) error) ([]domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{state: s.state.clone()}
	if err := fn(tx); err != nil {
		return nil, err
	}
	s.state = tx.state
	return tx.events, nil
}

// View executes fn against a read-only snapshot of committed state.
func (s *Store) View(_ context.Context, fn func(domain.TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(view{state: &s.state})
}

// Snapshot returns a read-only view over the in-flight transaction state.
func (tx *transaction) Snapshot() domain.TransactionView {
	return view{state: &tx.state}
}

// RecordEvent stages an event for delivery after commit.
func (tx *transaction) RecordEvent(ev domain.Event) {
	tx.events = append(tx.events, ev)
}

// MintAsset assigns a previously absent asset id to the given owner and bumps
// the owner's counter.
func (tx *transaction) MintAsset(to domain.AccountID, id domain.AssetID) error {
	if _, exists := tx.state.owners[id]; exists {
		return domain.ErrAssetExists
	}
	if to.IsZero() {
		return domain.ErrNotAllowed
	}
	tx.state.ownedCounts[to]++
	tx.state.owners[id] = to
	return nil
}

// TransferAsset moves ownership of id to the destination account, clearing
// any single-asset delegate. The counter decrement targets the supplied from
// account; a missing or exhausted counter there is an invariant breach.
func (tx *transaction) TransferAsset(from, to domain.AccountID, id domain.AssetID) error {
	if _, exists := tx.state.owners[id]; !exists {
		return domain.ErrAssetNotFound
	}
	if to.IsZero() {
		return domain.ErrNotAllowed
	}
	tx.ClearDelegate(id)
	tx.decrementOwned("transfer", from)
	tx.state.owners[id] = to
	tx.state.ownedCounts[to]++
	return nil
}

// RemoveAsset deletes the asset entry and decrements the owner's counter.
// Attribute values recorded for the id are left in place; they become
// reachable again only if the id is re-minted.
func (tx *transaction) RemoveAsset(owner domain.AccountID, id domain.AssetID) error {
	if _, exists := tx.state.owners[id]; !exists {
		return domain.ErrAssetNotFound
	}
	tx.ClearDelegate(id)
	tx.decrementOwned("remove", owner)
	delete(tx.state.owners, id)
	return nil
}

func (tx *transaction) decrementOwned(op string, account domain.AccountID) {
	count, ok := tx.state.ownedCounts[account]
	if !ok || count == 0 {
		panic(domain.InvariantViolation{
			Op:     op,
			Detail: fmt.Sprintf("owned-asset counter absent or zero for account %s", account),
			Err:    domain.ErrCannotFetchValue,
		})
	}
	tx.state.ownedCounts[account] = count - 1
}

// SetDelegate stores the single-asset delegate; at most one per asset.
func (tx *transaction) SetDelegate(id domain.AssetID, to domain.AccountID) error {
	if to.IsZero() {
		return domain.ErrNotAllowed
	}
	if _, exists := tx.state.delegates[id]; exists {
		return domain.ErrCannotInsert
	}
	tx.state.delegates[id] = to
	return nil
}

// ClearDelegate removes the single-asset delegate if any; no-op otherwise.
func (tx *transaction) ClearDelegate(id domain.AssetID) {
	delete(tx.state.delegates, id)
}

// SetBlanketApproval upserts the (owner, operator) approval flag.
func (tx *transaction) SetBlanketApproval(owner, operator domain.AccountID, approved bool) {
	tx.state.blanketApprovals[domain.ApprovalKey{Owner: owner, Operator: operator}] = approved
}

// SetRole stores a role for the account; set-once.
func (tx *transaction) SetRole(account domain.AccountID, role domain.Role) error {
	if _, exists := tx.state.roles[account]; exists {
		return domain.ErrDuplicatedData
	}
	tx.state.roles[account] = role
	return nil
}

// DeleteRole removes the stored role for the account.
func (tx *transaction) DeleteRole(account domain.AccountID) error {
	if _, exists := tx.state.roles[account]; !exists {
		return domain.ErrCannotRemove
	}
	delete(tx.state.roles, account)
	return nil
}

func setOnce[K comparable, V any](m map[K]V, key K, value V) error {
	if _, exists := m[key]; exists {
		return domain.ErrDuplicatedData
	}
	m[key] = value
	return nil
}

func removePresent[K comparable, V any](m map[K]V, key K, absent domain.Error) error {
	if _, exists := m[key]; !exists {
		return absent
	}
	delete(m, key)
	return nil
}

// SetDescription stores the asset description reference; set-once.
func (tx *transaction) SetDescription(id domain.AssetID, ref domain.ContentRef) error {
	return setOnce(tx.state.descriptions, id, ref)
}

// DeleteDescription removes the asset description reference.
func (tx *transaction) DeleteDescription(id domain.AssetID) error {
	return removePresent(tx.state.descriptions, id, domain.ErrAssetNotFound)
}

// SetPhoto stores the asset photo reference; set-once.
func (tx *transaction) SetPhoto(id domain.AssetID, ref domain.ContentRef) error {
	return setOnce(tx.state.photos, id, ref)
}

// DeletePhoto removes the asset photo reference.
func (tx *transaction) DeletePhoto(id domain.AssetID) error {
	return removePresent(tx.state.photos, id, domain.ErrAssetNotFound)
}

// SetLocation stores the asset location reference; set-once.
func (tx *transaction) SetLocation(id domain.AssetID, ref domain.ContentRef) error {
	return setOnce(tx.state.locations, id, ref)
}

// DeleteLocation removes the asset location reference.
func (tx *transaction) DeleteLocation(id domain.AssetID) error {
	return removePresent(tx.state.locations, id, domain.ErrAssetNotFound)
}

// SetMetadata stores the asset metadata reference; set-once.
func (tx *transaction) SetMetadata(id domain.AssetID, ref domain.ContentRef) error {
	return setOnce(tx.state.metadata, id, ref)
}

// DeleteMetadata removes the asset metadata reference.
func (tx *transaction) DeleteMetadata(id domain.AssetID) error {
	return removePresent(tx.state.metadata, id, domain.ErrAssetNotFound)
}

// SetCategory attaches a catalog category to the asset; the category id must
// already exist in the catalog.
func (tx *transaction) SetCategory(id domain.AssetID, category domain.CategoryID) error {
	if _, exists := tx.state.categoryDescriptions[category]; !exists {
		return domain.ErrCategoryNotFound
	}
	return setOnce(tx.state.categories, id, category)
}

// DeleteCategory removes the asset's category assignment.
func (tx *transaction) DeleteCategory(id domain.AssetID) error {
	return removePresent(tx.state.categories, id, domain.ErrAssetNotFound)
}

// SetValidation stores the validating account stamp for the asset; set-once.
func (tx *transaction) SetValidation(id domain.AssetID, account domain.AccountID) error {
	return setOnce(tx.state.validations, id, account)
}

// DeleteValidation removes the asset's validation stamp.
func (tx *transaction) DeleteValidation(id domain.AssetID) error {
	return removePresent(tx.state.validations, id, domain.ErrAssetNotFound)
}

// SetCategoryDescription creates a catalog entry; set-once, independent of
// any asset.
func (tx *transaction) SetCategoryDescription(id domain.CategoryID, ref domain.ContentRef) error {
	return setOnce(tx.state.categoryDescriptions, id, ref)
}

// DeleteCategoryDescription removes a catalog entry.
func (tx *transaction) DeleteCategoryDescription(id domain.CategoryID) error {
	return removePresent(tx.state.categoryDescriptions, id, domain.ErrCategoryNotFound)
}
