package core

import (
	"context"

	"assetledger/pkg/domain"
)

// SetRole assigns a role to an account. Only an administrator may call this;
// roles are set-once and must be deleted before reassignment.
func (s *Service) SetRole(ctx context.Context, account domain.AccountID, role domain.Role) error {
	caller := domain.CallerFrom(ctx)
	return s.run(ctx, "set_role", func(tx Transaction) error {
		if !s.isAdministrator(tx.Snapshot(), caller) {
			return domain.ErrNotAdministrator
		}
		if !role.Valid() {
			return domain.ErrCannotInsert
		}
		if err := tx.SetRole(account, role); err != nil {
			return err
		}
		tx.RecordEvent(domain.RoleUpdatedEvent{Actor: caller, Account: account})
		return nil
	})
}

// DeleteRole removes an account's role. Administrator gate as in SetRole.
func (s *Service) DeleteRole(ctx context.Context, account domain.AccountID) error {
	caller := domain.CallerFrom(ctx)
	return s.run(ctx, "delete_role", func(tx Transaction) error {
		if !s.isAdministrator(tx.Snapshot(), caller) {
			return domain.ErrNotAdministrator
		}
		if err := tx.DeleteRole(account); err != nil {
			return err
		}
		tx.RecordEvent(domain.RoleUpdatedEvent{Actor: caller, Account: account})
		return nil
	})
}

// RoleOf returns the stored role of the account, if any.
func (s *Service) RoleOf(ctx context.Context, account domain.AccountID) (domain.Role, bool, error) {
	var role domain.Role
	var ok bool
	err := s.store.View(ctx, func(v TransactionView) error {
		role, ok = v.RoleOf(account)
		return nil
	})
	return role, ok, err
}

// HasRole reports whether the account has any role stored.
func (s *Service) HasRole(ctx context.Context, account domain.AccountID) (bool, error) {
	_, ok, err := s.RoleOf(ctx, account)
	return ok, err
}
