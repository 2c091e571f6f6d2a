package domain

import "context"

// EventKind discriminates ledger event payloads.
type EventKind string

// Event kinds emitted by the ledger, one per successful mutating call.
const (
	EventTransfer        EventKind = "transfer"
	EventAssetUpdated    EventKind = "asset_updated"
	EventRoleUpdated     EventKind = "role_updated"
	EventDelegateUpdated EventKind = "delegate_updated"
	EventApprovalForAll  EventKind = "approval_for_all"
)

// Event is an observable side effect of a successful mutating call. Events
// are delivered after commit; failed calls emit nothing.
type Event interface {
	Kind() EventKind
}

// TransferEvent records an ownership change. From is nil on mint, To is nil
// on deletion.
type TransferEvent struct {
	From  *AccountID `json:"from,omitempty"`
	To    *AccountID `json:"to,omitempty"`
	Asset AssetID    `json:"asset"`
}

// Kind implements Event.
func (TransferEvent) Kind() EventKind { return EventTransfer }

// AssetUpdatedEvent records an attribute, category, or validation change on
// an asset, attributed to the acting account.
type AssetUpdatedEvent struct {
	Actor AccountID `json:"actor"`
	Asset AssetID   `json:"asset"`
}

// Kind implements Event.
func (AssetUpdatedEvent) Kind() EventKind { return EventAssetUpdated }

// RoleUpdatedEvent records a role assignment or removal.
type RoleUpdatedEvent struct {
	Actor   AccountID `json:"actor"`
	Account AccountID `json:"account"`
}

// Kind implements Event.
func (RoleUpdatedEvent) Kind() EventKind { return EventRoleUpdated }

// DelegateUpdatedEvent records a single-asset delegation.
type DelegateUpdatedEvent struct {
	Actor    AccountID `json:"actor"`
	Delegate AccountID `json:"delegate"`
	Asset    AssetID   `json:"asset"`
}

// Kind implements Event.
func (DelegateUpdatedEvent) Kind() EventKind { return EventDelegateUpdated }

// ApprovalForAllEvent records a blanket-approval toggle. It is emitted on
// every call, including ones that leave the stored value unchanged.
type ApprovalForAllEvent struct {
	Owner    AccountID `json:"owner"`
	Operator AccountID `json:"operator"`
	Approved bool      `json:"approved"`
}

// Kind implements Event.
func (ApprovalForAllEvent) Kind() EventKind { return EventApprovalForAll }

// EventSink receives committed ledger events.
type EventSink interface {
	Record(ctx context.Context, ev Event)
}
