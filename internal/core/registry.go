package core

import (
	"context"

	"assetledger/pkg/domain"
)

// Mint creates the asset id and assigns it to the caller.
func (s *Service) Mint(ctx context.Context, id domain.AssetID) error {
	caller := domain.CallerFrom(ctx)
	return s.run(ctx, "mint_asset", func(tx Transaction) error {
		if err := tx.MintAsset(caller, id); err != nil {
			return err
		}
		tx.RecordEvent(domain.TransferEvent{To: &caller, Asset: id})
		return nil
	})
}

// Transfer moves an asset from the caller to the destination account.
func (s *Service) Transfer(ctx context.Context, to domain.AccountID, id domain.AssetID) error {
	caller := domain.CallerFrom(ctx)
	return s.transferFrom(ctx, "transfer_asset", caller, to, id)
}

// TransferFrom moves an asset between two accounts on behalf of the caller,
// who must be authorized for the asset.
func (s *Service) TransferFrom(ctx context.Context, from, to domain.AccountID, id domain.AssetID) error {
	return s.transferFrom(ctx, "transfer_asset_from", from, to, id)
}

// transferFrom is the shared transfer path. Authorization accepts the owner,
// the single-asset delegate, a blanket-approved operator, or an
// Administrator-role holder; everyone else gets NotApproved. The configured
// super-administrator account has no transfer override.
func (s *Service) transferFrom(ctx context.Context, operation string, from, to domain.AccountID, id domain.AssetID) error {
	caller := domain.CallerFrom(ctx)
	return s.run(ctx, operation, func(tx Transaction) error {
		v := tx.Snapshot()
		owner, ok := v.OwnerOf(id)
		if !ok {
			return domain.ErrAssetNotFound
		}
		if !approvedOrOwner(v, caller, owner, id) && !hasRole(v, caller, domain.RoleAdministrator) {
			return domain.ErrNotApproved
		}
		if from != owner {
			return domain.ErrNotOwner
		}
		if err := tx.TransferAsset(from, to, id); err != nil {
			return err
		}
		tx.RecordEvent(domain.TransferEvent{From: &from, To: &to, Asset: id})
		return nil
	})
}

// DeleteAsset removes an asset from the ledger. Only the exact owner may do
// this; no role or administrator override applies.
func (s *Service) DeleteAsset(ctx context.Context, id domain.AssetID) error {
	caller := domain.CallerFrom(ctx)
	return s.run(ctx, "delete_asset", func(tx Transaction) error {
		owner, ok := tx.Snapshot().OwnerOf(id)
		if !ok {
			return domain.ErrAssetNotFound
		}
		if owner != caller {
			return domain.ErrNotOwner
		}
		if err := tx.RemoveAsset(owner, id); err != nil {
			return err
		}
		tx.RecordEvent(domain.TransferEvent{From: &owner, Asset: id})
		return nil
	})
}

// OwnerOf returns the current owner of the asset id.
func (s *Service) OwnerOf(ctx context.Context, id domain.AssetID) (domain.AccountID, bool, error) {
	var owner domain.AccountID
	var ok bool
	err := s.store.View(ctx, func(v TransactionView) error {
		owner, ok = v.OwnerOf(id)
		return nil
	})
	return owner, ok, err
}

// Exists reports whether the asset id is present in the ledger.
func (s *Service) Exists(ctx context.Context, id domain.AssetID) (bool, error) {
	var ok bool
	err := s.store.View(ctx, func(v TransactionView) error {
		ok = v.AssetExists(id)
		return nil
	})
	return ok, err
}

// OwnedCount returns the number of assets the account currently owns.
func (s *Service) OwnedCount(ctx context.Context, account domain.AccountID) (uint32, error) {
	var count uint32
	err := s.store.View(ctx, func(v TransactionView) error {
		count = v.OwnedCount(account)
		return nil
	})
	return count, err
}
