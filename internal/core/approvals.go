package core

import (
	"context"

	"assetledger/pkg/domain"
)

// DelegateSingleAsset authorizes one account to transfer one specific asset
// on the owner's behalf. The caller must be the owner or a blanket-approved
// operator; the slot is set-once until transfer or deletion clears it.
func (s *Service) DelegateSingleAsset(ctx context.Context, to domain.AccountID, id domain.AssetID) error {
	caller := domain.CallerFrom(ctx)
	return s.run(ctx, "delegate_asset", func(tx Transaction) error {
		v := tx.Snapshot()
		owner, ok := v.OwnerOf(id)
		if !ok {
			return domain.ErrAssetNotFound
		}
		if caller != owner && !v.BlanketApproved(owner, caller) {
			return domain.ErrNotAllowed
		}
		if err := tx.SetDelegate(id, to); err != nil {
			return err
		}
		tx.RecordEvent(domain.DelegateUpdatedEvent{Actor: caller, Delegate: to, Asset: id})
		return nil
	})
}

// SetBlanketApproval grants or revokes the operator's authority over every
// asset the caller owns. The event fires on every successful call, even when
// the stored value does not change.
func (s *Service) SetBlanketApproval(ctx context.Context, operator domain.AccountID, approved bool) error {
	caller := domain.CallerFrom(ctx)
	return s.run(ctx, "set_blanket_approval", func(tx Transaction) error {
		if operator == caller {
			return domain.ErrNotAllowed
		}
		tx.SetBlanketApproval(caller, operator, approved)
		tx.RecordEvent(domain.ApprovalForAllEvent{Owner: caller, Operator: operator, Approved: approved})
		return nil
	})
}

// SingleDelegate returns the delegate account for the asset, if any.
func (s *Service) SingleDelegate(ctx context.Context, id domain.AssetID) (domain.AccountID, bool, error) {
	var delegate domain.AccountID
	var ok bool
	err := s.store.View(ctx, func(v TransactionView) error {
		delegate, ok = v.DelegateOf(id)
		return nil
	})
	return delegate, ok, err
}

// BlanketApproved reports whether the operator may act on all of the owner's
// assets.
func (s *Service) BlanketApproved(ctx context.Context, owner, operator domain.AccountID) (bool, error) {
	var approved bool
	err := s.store.View(ctx, func(v TransactionView) error {
		approved = v.BlanketApproved(owner, operator)
		return nil
	})
	return approved, err
}
