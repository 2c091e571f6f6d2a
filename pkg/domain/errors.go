package domain

import "fmt"

// Error is a recoverable ledger error returned to callers. Every operation
// that can fail with one of these values performs no state mutation on the
// failure path.
type Error string

func (e Error) Error() string { return string(e) }

// The closed ledger error taxonomy. Each value is raised at a single
// well-defined precondition check.
const (
	// ErrNotOwner is returned when an operation requires the caller to be the
	// current owner of the asset.
	ErrNotOwner Error = "not owner"
	// ErrNotAdministrator is returned when an operation requires the
	// configured super-administrator or the administrator role.
	ErrNotAdministrator Error = "not administrator"
	// ErrNotApproved is returned when a transfer caller is neither owner,
	// delegate, blanket operator, nor administrator.
	ErrNotApproved Error = "not approved"
	// ErrAssetExists is returned when minting an id that is already owned.
	ErrAssetExists Error = "asset exists"
	// ErrAssetNotFound is returned when the referenced asset, or an attribute
	// value expected on it, is absent.
	ErrAssetNotFound Error = "asset not found"
	// ErrCannotInsert is returned for rejected inserts: an out-of-range role
	// ordinal, or a single-asset delegate that already exists.
	ErrCannotInsert Error = "cannot insert"
	// ErrCannotRemove is returned when deleting a role that is not stored.
	ErrCannotRemove Error = "cannot remove"
	// ErrCannotFetchValue signals an internal invariant breach: a counter
	// missing for an account known to own assets. It is surfaced through an
	// InvariantViolation panic, never returned directly.
	ErrCannotFetchValue Error = "cannot fetch value"
	// ErrNotAllowed is returned for structurally invalid requests: a zero
	// account as owner, destination, delegate, or self-approval.
	ErrNotAllowed Error = "not allowed"
	// ErrDuplicatedData is returned when creating a set-once value that is
	// already present (roles, attribute values).
	ErrDuplicatedData Error = "duplicated data"
	// ErrCategoryNotFound is returned when the referenced catalog entry is
	// absent.
	ErrCategoryNotFound Error = "category not found"
)

// InvariantViolation reports ledger state that the maintained invariants make
// impossible. It aborts the entire call via panic before any commit: the
// transaction clone is discarded, so no partial state is ever observable.
// Hosts recover it at the dispatch boundary and discard the call.
type InvariantViolation struct {
	Op     string
	Detail string
	Err    Error
}

func (v InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s: %s", v.Op, v.Detail, v.Err.Error())
}

// Unwrap exposes the underlying taxonomy value for errors.Is matching.
func (v InvariantViolation) Unwrap() error { return v.Err }
