package memory

import "assetledger/pkg/domain"

// OwnerOf returns the owner of an asset id.
func (v view) OwnerOf(id domain.AssetID) (domain.AccountID, bool) {
	owner, ok := v.state.owners[id]
	return owner, ok
}

// AssetExists reports whether the asset id is present in the ledger.
func (v view) AssetExists(id domain.AssetID) bool {
	_, ok := v.state.owners[id]
	return ok
}

// OwnedCount returns the number of assets owned by the account, zero if none.
func (v view) OwnedCount(account domain.AccountID) uint32 {
	return v.state.ownedCounts[account]
}

// RoleOf returns the stored role of the account.
func (v view) RoleOf(account domain.AccountID) (domain.Role, bool) {
	role, ok := v.state.roles[account]
	return role, ok
}

// DelegateOf returns the single-asset delegate for an asset id.
func (v view) DelegateOf(id domain.AssetID) (domain.AccountID, bool) {
	delegate, ok := v.state.delegates[id]
	return delegate, ok
}

// BlanketApproved reports whether the operator may act on all of the owner's
// assets; absence yields false.
func (v view) BlanketApproved(owner, operator domain.AccountID) bool {
	return v.state.blanketApprovals[domain.ApprovalKey{Owner: owner, Operator: operator}]
}

// Description returns the stored description reference.
func (v view) Description(id domain.AssetID) (domain.ContentRef, bool) {
	ref, ok := v.state.descriptions[id]
	return ref, ok
}

// Photo returns the stored photo reference.
func (v view) Photo(id domain.AssetID) (domain.ContentRef, bool) {
	ref, ok := v.state.photos[id]
	return ref, ok
}

// Location returns the stored location reference.
func (v view) Location(id domain.AssetID) (domain.ContentRef, bool) {
	ref, ok := v.state.locations[id]
	return ref, ok
}

// Metadata returns the stored metadata reference.
func (v view) Metadata(id domain.AssetID) (domain.ContentRef, bool) {
	ref, ok := v.state.metadata[id]
	return ref, ok
}

// Category returns the category attached to the asset.
func (v view) Category(id domain.AssetID) (domain.CategoryID, bool) {
	category, ok := v.state.categories[id]
	return category, ok
}

// Validation returns the validation stamp for the asset.
func (v view) Validation(id domain.AssetID) (domain.AccountID, bool) {
	account, ok := v.state.validations[id]
	return account, ok
}

// CategoryDescription returns the catalog entry for a category id.
func (v view) CategoryDescription(id domain.CategoryID) (domain.ContentRef, bool) {
	ref, ok := v.state.categoryDescriptions[id]
	return ref, ok
}

// Committed-state read helpers. These mirror the view lookups under a read
// lock so higher layers can query without opening a transaction.

// OwnerOf returns the committed owner of an asset id.
func (s *Store) OwnerOf(id domain.AssetID) (domain.AccountID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view{state: &s.state}.OwnerOf(id)
}

// AssetExists reports whether the asset id exists in committed state.
func (s *Store) AssetExists(id domain.AssetID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view{state: &s.state}.AssetExists(id)
}

// OwnedCount returns the committed owned-asset counter for the account.
func (s *Store) OwnedCount(account domain.AccountID) uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view{state: &s.state}.OwnedCount(account)
}

// RoleOf returns the committed role of the account.
func (s *Store) RoleOf(account domain.AccountID) (domain.Role, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view{state: &s.state}.RoleOf(account)
}

// DelegateOf returns the committed single-asset delegate for an asset.
func (s *Store) DelegateOf(id domain.AssetID) (domain.AccountID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view{state: &s.state}.DelegateOf(id)
}

// BlanketApproved reports the committed blanket-approval flag.
func (s *Store) BlanketApproved(owner, operator domain.AccountID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view{state: &s.state}.BlanketApproved(owner, operator)
}

// Description returns the committed description reference.
func (s *Store) Description(id domain.AssetID) (domain.ContentRef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view{state: &s.state}.Description(id)
}

// Photo returns the committed photo reference.
func (s *Store) Photo(id domain.AssetID) (domain.ContentRef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view{state: &s.state}.Photo(id)
}

// Location returns the committed location reference.
func (s *Store) Location(id domain.AssetID) (domain.ContentRef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view{state: &s.state}.Location(id)
}

// Metadata returns the committed metadata reference.
func (s *Store) Metadata(id domain.AssetID) (domain.ContentRef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view{state: &s.state}.Metadata(id)
}

// Category returns the committed category assignment.
func (s *Store) Category(id domain.AssetID) (domain.CategoryID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view{state: &s.state}.Category(id)
}

// Validation returns the committed validation stamp.
func (s *Store) Validation(id domain.AssetID) (domain.AccountID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view{state: &s.state}.Validation(id)
}

// CategoryDescription returns the committed catalog entry.
func (s *Store) CategoryDescription(id domain.CategoryID) (domain.ContentRef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view{state: &s.state}.CategoryDescription(id)
}
