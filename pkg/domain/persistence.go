package domain

import "context"

// TransactionView provides read-only access to ledger state, either the
// committed state or the in-flight state of a transaction.
type TransactionView interface {
	OwnerOf(id AssetID) (AccountID, bool)
	AssetExists(id AssetID) bool
	OwnedCount(account AccountID) uint32
	RoleOf(account AccountID) (Role, bool)
	DelegateOf(id AssetID) (AccountID, bool)
	BlanketApproved(owner, operator AccountID) bool
	Description(id AssetID) (ContentRef, bool)
	Photo(id AssetID) (ContentRef, bool)
	Location(id AssetID) (ContentRef, bool)
	Metadata(id AssetID) (ContentRef, bool)
	Category(id AssetID) (CategoryID, bool)
	Validation(id AssetID) (AccountID, bool)
	CategoryDescription(id CategoryID) (ContentRef, bool)
}

// Transaction exposes the ledger mutations a persistence implementation must
// support within an atomic scope. Mutators enforce state invariants (single
// owner, consistent counts, set-once slots); authorization is the service's
// concern and happens before any mutator runs.
type Transaction interface {
	Snapshot() TransactionView

	MintAsset(to AccountID, id AssetID) error
	TransferAsset(from, to AccountID, id AssetID) error
	RemoveAsset(owner AccountID, id AssetID) error

	SetDelegate(id AssetID, to AccountID) error
	ClearDelegate(id AssetID)
	SetBlanketApproval(owner, operator AccountID, approved bool)

	SetRole(account AccountID, role Role) error
	DeleteRole(account AccountID) error

	SetDescription(id AssetID, ref ContentRef) error
	DeleteDescription(id AssetID) error
	SetPhoto(id AssetID, ref ContentRef) error
	DeletePhoto(id AssetID) error
	SetLocation(id AssetID, ref ContentRef) error
	DeleteLocation(id AssetID) error
	SetMetadata(id AssetID, ref ContentRef) error
	DeleteMetadata(id AssetID) error
	SetCategory(id AssetID, category CategoryID) error
	DeleteCategory(id AssetID) error
	SetValidation(id AssetID, account AccountID) error
	DeleteValidation(id AssetID) error
	SetCategoryDescription(id CategoryID, ref ContentRef) error
	DeleteCategoryDescription(id CategoryID) error

	// RecordEvent stages an event for delivery after a successful commit.
	RecordEvent(ev Event)
}

// PersistentStore is the abstraction over durable ledger backends. Committed
// state reads are available directly; mutations go through RunInTransaction,
// which applies fn atomically and returns the staged events on commit.
type PersistentStore interface {
	TransactionView
	RunInTransaction(ctx context.Context, fn func(Transaction) error) ([]Event, error)
	View(ctx context.Context, fn func(TransactionView) error) error
}
