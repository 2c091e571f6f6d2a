// Package domain defines the identifiers, roles, errors, events, and
// persistence contracts shared by the assetledger core and its storage and
// transport adapters.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// AssetID is the caller-chosen identifier of a tracked asset. IDs are not
// generated by the ledger.
type AssetID uint32

// CategoryID identifies an entry in the category catalog.
type CategoryID uint32

// AccountID is an opaque 32-byte ledger account identifier.
type AccountID [32]byte

// ZeroAccount is the distinguished "no account" value. It is never a valid
// owner, delegate, or operator.
var ZeroAccount AccountID

// IsZero reports whether the account is the distinguished zero value.
func (a AccountID) IsZero() bool { return a == ZeroAccount }

// String renders the account as lowercase hex.
func (a AccountID) String() string { return hex.EncodeToString(a[:]) }

// MarshalText implements encoding.TextMarshaler so accounts can key JSON maps.
func (a AccountID) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *AccountID) UnmarshalText(text []byte) error {
	parsed, err := ParseAccountID(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAccountID decodes a 64-character hex string into an AccountID.
func ParseAccountID(s string) (AccountID, error) {
	var a AccountID
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return a, fmt.Errorf("parse account id: %w", err)
	}
	if len(raw) != len(a) {
		return a, fmt.Errorf("parse account id: expected %d bytes, got %d", len(a), len(raw))
	}
	copy(a[:], raw)
	return a, nil
}

// ContentRef is a 32-byte content reference identifying an attribute payload
// held outside the ledger (typically a sha256 digest of the payload bytes).
type ContentRef [32]byte

// ZeroContentRef is the zero reference; never produced by ContentRefOf.
var ZeroContentRef ContentRef

// ContentRefOf derives the canonical reference for a payload.
func ContentRefOf(payload []byte) ContentRef {
	return sha256.Sum256(payload)
}

// String renders the reference as lowercase hex.
func (r ContentRef) String() string { return hex.EncodeToString(r[:]) }

// MarshalText implements encoding.TextMarshaler.
func (r ContentRef) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *ContentRef) UnmarshalText(text []byte) error {
	parsed, err := ParseContentRef(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseContentRef decodes a 64-character hex string into a ContentRef.
func ParseContentRef(s string) (ContentRef, error) {
	var r ContentRef
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return r, fmt.Errorf("parse content ref: %w", err)
	}
	if len(raw) != len(r) {
		return r, fmt.Errorf("parse content ref: expected %d bytes, got %d", len(r), len(raw))
	}
	copy(r[:], raw)
	return r, nil
}

// ApprovalKey identifies one (owner, operator) blanket-approval entry.
type ApprovalKey struct {
	Owner    AccountID
	Operator AccountID
}

// MarshalText encodes the pair as "<owner>:<operator>" so approval maps can be
// serialized as JSON objects.
func (k ApprovalKey) MarshalText() ([]byte, error) {
	return []byte(k.Owner.String() + ":" + k.Operator.String()), nil
}

// UnmarshalText decodes the "<owner>:<operator>" form.
func (k *ApprovalKey) UnmarshalText(text []byte) error {
	parts := strings.Split(string(text), ":")
	if len(parts) != 2 {
		return fmt.Errorf("parse approval key: expected owner:operator, got %q", string(text))
	}
	owner, err := ParseAccountID(parts[0])
	if err != nil {
		return err
	}
	operator, err := ParseAccountID(parts[1])
	if err != nil {
		return err
	}
	k.Owner = owner
	k.Operator = operator
	return nil
}
