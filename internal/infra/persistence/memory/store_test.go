package memory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"assetledger/pkg/domain"
)

func account(b byte) domain.AccountID {
	var a domain.AccountID
	a[0] = b
	return a
}

func mustMint(t *testing.T, store *Store, owner domain.AccountID, id domain.AssetID) {
	t.Helper()
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.MintAsset(owner, id)
	}); err != nil {
		t.Fatalf("mint asset %d: %v", id, err)
	}
}

func TestMintAssignsOwnerAndCount(t *testing.T) {
	store := NewStore()
	alice := account(1)
	mustMint(t, store, alice, 7)

	owner, ok := store.OwnerOf(7)
	if !ok || owner != alice {
		t.Fatalf("expected alice to own asset 7, got %v ok=%v", owner, ok)
	}
	if got := store.OwnedCount(alice); got != 1 {
		t.Fatalf("expected owned count 1, got %d", got)
	}
}

func TestMintDuplicateFails(t *testing.T) {
	store := NewStore()
	alice := account(1)
	mustMint(t, store, alice, 7)

	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.MintAsset(account(2), 7)
	})
	if !errors.Is(err, domain.ErrAssetExists) {
		t.Fatalf("expected ErrAssetExists, got %v", err)
	}
	if owner, _ := store.OwnerOf(7); owner != alice {
		t.Fatalf("failed mint must not change ownership, got %v", owner)
	}
}

func TestMintZeroOwnerFails(t *testing.T) {
	store := NewStore()
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.MintAsset(domain.ZeroAccount, 1)
	})
	if !errors.Is(err, domain.ErrNotAllowed) {
		t.Fatalf("expected ErrNotAllowed, got %v", err)
	}
}

func TestTransferMovesOwnershipAndClearsDelegate(t *testing.T) {
	store := NewStore()
	alice, bob, carol := account(1), account(2), account(3)
	mustMint(t, store, alice, 7)

	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.SetDelegate(7, carol)
	}); err != nil {
		t.Fatalf("set delegate: %v", err)
	}

	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.TransferAsset(alice, bob, 7)
	}); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if owner, _ := store.OwnerOf(7); owner != bob {
		t.Fatalf("expected bob to own asset 7, got %v", owner)
	}
	if got := store.OwnedCount(alice); got != 0 {
		t.Fatalf("expected alice count 0, got %d", got)
	}
	if got := store.OwnedCount(bob); got != 1 {
		t.Fatalf("expected bob count 1, got %d", got)
	}
	if _, ok := store.DelegateOf(7); ok {
		t.Fatal("transfer must clear the single-asset delegate")
	}
}

func TestTransferMissingAsset(t *testing.T) {
	store := NewStore()
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.TransferAsset(account(1), account(2), 99)
	})
	if !errors.Is(err, domain.ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound, got %v", err)
	}
}

func TestTransferZeroDestination(t *testing.T) {
	store := NewStore()
	alice := account(1)
	mustMint(t, store, alice, 7)
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.TransferAsset(alice, domain.ZeroAccount, 7)
	})
	if !errors.Is(err, domain.ErrNotAllowed) {
		t.Fatalf("expected ErrNotAllowed, got %v", err)
	}
	if owner, _ := store.OwnerOf(7); owner != alice {
		t.Fatalf("rejected transfer must not change ownership, got %v", owner)
	}
}

func TestRemoveAssetDeletesEntryAndKeepsAttributes(t *testing.T) {
	store := NewStore()
	alice := account(1)
	ref := domain.ContentRefOf([]byte("photo"))
	mustMint(t, store, alice, 7)
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.SetPhoto(7, ref)
	}); err != nil {
		t.Fatalf("set photo: %v", err)
	}

	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.RemoveAsset(alice, 7)
	}); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if store.AssetExists(7) {
		t.Fatal("asset 7 should be gone")
	}
	if got := store.OwnedCount(alice); got != 0 {
		t.Fatalf("expected alice count 0, got %d", got)
	}
	if got, ok := store.Photo(7); !ok || got != ref {
		t.Fatal("attribute values survive asset removal")
	}
}

func TestFailedTransactionRollsBackEverything(t *testing.T) {
	store := NewStore()
	alice := account(1)
	mustMint(t, store, alice, 1)

	boom := errors.New("boom")
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if err := tx.MintAsset(alice, 2); err != nil {
			return err
		}
		if err := tx.SetRole(account(2), domain.RoleShipper); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if store.AssetExists(2) {
		t.Fatal("asset 2 must not survive a failed transaction")
	}
	if _, ok := store.RoleOf(account(2)); ok {
		t.Fatal("role must not survive a failed transaction")
	}
	if got := store.OwnedCount(alice); got != 1 {
		t.Fatalf("expected alice count 1 after rollback, got %d", got)
	}
}

func TestEventsReturnedOnlyOnCommit(t *testing.T) {
	store := NewStore()
	alice := account(1)

	events, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if err := tx.MintAsset(alice, 1); err != nil {
			return err
		}
		tx.RecordEvent(domain.TransferEvent{To: &alice, Asset: 1})
		return nil
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if len(events) != 1 || events[0].Kind() != domain.EventTransfer {
		t.Fatalf("expected one transfer event, got %v", events)
	}

	events, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		tx.RecordEvent(domain.TransferEvent{To: &alice, Asset: 2})
		return domain.ErrNotAllowed
	})
	if err == nil || len(events) != 0 {
		t.Fatalf("failed transaction must return no events, got %v err=%v", events, err)
	}
}

func TestSetDelegateSemantics(t *testing.T) {
	store := NewStore()
	mustMint(t, store, account(1), 7)

	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.SetDelegate(7, account(3))
	}); err != nil {
		t.Fatalf("set delegate: %v", err)
	}
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.SetDelegate(7, account(4))
	})
	if !errors.Is(err, domain.ErrCannotInsert) {
		t.Fatalf("expected ErrCannotInsert for occupied slot, got %v", err)
	}
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.SetDelegate(8, domain.ZeroAccount)
	})
	if !errors.Is(err, domain.ErrNotAllowed) {
		t.Fatalf("expected ErrNotAllowed for zero delegate, got %v", err)
	}
}

func TestRoleLifecycle(t *testing.T) {
	store := NewStore()
	bob := account(2)

	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.SetRole(bob, domain.RoleShipper)
	}); err != nil {
		t.Fatalf("set role: %v", err)
	}
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.SetRole(bob, domain.RoleProducer)
	})
	if !errors.Is(err, domain.ErrDuplicatedData) {
		t.Fatalf("expected ErrDuplicatedData, got %v", err)
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.DeleteRole(bob)
	}); err != nil {
		t.Fatalf("delete role: %v", err)
	}
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.DeleteRole(bob)
	})
	if !errors.Is(err, domain.ErrCannotRemove) {
		t.Fatalf("expected ErrCannotRemove, got %v", err)
	}
}

func TestAttributeSetOnce(t *testing.T) {
	store := NewStore()
	mustMint(t, store, account(1), 7)
	ref := domain.ContentRefOf([]byte("desc"))

	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.SetDescription(7, ref)
	}); err != nil {
		t.Fatalf("set description: %v", err)
	}
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.SetDescription(7, domain.ContentRefOf([]byte("other")))
	})
	if !errors.Is(err, domain.ErrDuplicatedData) {
		t.Fatalf("expected ErrDuplicatedData, got %v", err)
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.DeleteDescription(7)
	}); err != nil {
		t.Fatalf("delete description: %v", err)
	}
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.DeleteDescription(7)
	})
	if !errors.Is(err, domain.ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound on empty slot, got %v", err)
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.SetDescription(7, ref)
	}); err != nil {
		t.Fatalf("slot must be reusable after delete: %v", err)
	}
}

func TestCategoryRequiresCatalogEntry(t *testing.T) {
	store := NewStore()
	mustMint(t, store, account(1), 7)

	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.SetCategory(7, 3)
	})
	if !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}

	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if err := tx.SetCategoryDescription(3, domain.ContentRefOf([]byte("grain"))); err != nil {
			return err
		}
		return tx.SetCategory(7, 3)
	}); err != nil {
		t.Fatalf("set category: %v", err)
	}
	if category, ok := store.Category(7); !ok || category != 3 {
		t.Fatalf("expected category 3, got %v ok=%v", category, ok)
	}

	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.DeleteCategoryDescription(4)
	})
	if !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound for absent catalog entry, got %v", err)
	}
}

func TestDecrementOwnedPanicsOnMissingCounter(t *testing.T) {
	store := NewStore()
	mustMint(t, store, account(1), 7)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected invariant panic")
		}
		violation, ok := r.(domain.InvariantViolation)
		if !ok {
			t.Fatalf("expected InvariantViolation, got %T", r)
		}
		if !errors.Is(violation, domain.ErrCannotFetchValue) {
			t.Fatalf("expected ErrCannotFetchValue cause, got %v", violation)
		}
	}()
	_, _ = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		// account(2) never owned anything, so its counter is absent.
		return tx.TransferAsset(account(2), account(3), 7)
	})
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := NewStore()
	alice, bob := account(1), account(2)
	mustMint(t, store, alice, 1)
	mustMint(t, store, alice, 2)
	mustMint(t, store, bob, 3)
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if err := tx.SetCategoryDescription(9, domain.ContentRefOf([]byte("cat"))); err != nil {
			return err
		}
		if err := tx.SetCategory(1, 9); err != nil {
			return err
		}
		if err := tx.SetRole(bob, domain.RoleShipper); err != nil {
			return err
		}
		tx.SetBlanketApproval(alice, bob, true)
		return tx.SetDelegate(2, bob)
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	data, err := json.Marshal(store.ExportState())
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}

	restored := NewStore()
	if err := restored.ImportState(snapshot); err != nil {
		t.Fatalf("import: %v", err)
	}
	if owner, _ := restored.OwnerOf(3); owner != bob {
		t.Fatalf("expected bob to own asset 3 after restore, got %v", owner)
	}
	if got := restored.OwnedCount(alice); got != 2 {
		t.Fatalf("expected alice count 2 after restore, got %d", got)
	}
	if !restored.BlanketApproved(alice, bob) {
		t.Fatal("blanket approval lost in round trip")
	}
	if delegate, ok := restored.DelegateOf(2); !ok || delegate != bob {
		t.Fatal("delegate lost in round trip")
	}
	if role, ok := restored.RoleOf(bob); !ok || role != domain.RoleShipper {
		t.Fatal("role lost in round trip")
	}
}

func TestImportStateRejectsInconsistentCounts(t *testing.T) {
	store := NewStore()
	mustMint(t, store, account(1), 1)
	snapshot := store.ExportState()
	snapshot.OwnedCounts[account(1)] = 5

	if err := NewStore().ImportState(snapshot); err == nil {
		t.Fatal("expected import to reject mismatched owned counts")
	}
}
