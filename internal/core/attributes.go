package core

import (
	"context"

	"assetledger/pkg/domain"
)

// attrDef describes one keyed attribute store: its operation names, the
// authorization sequence guarding writes and deletes, the transaction
// mutators, and the event it emits. The seven stores are instances of this
// one pattern; the per-kind differences live entirely in the definition.
type attrDef[K comparable, V any] struct {
	setOp     string
	deleteOp  string
	authorize func(s *Service, v TransactionView, caller domain.AccountID, key K) error
	set       func(tx Transaction, key K, value V) error
	del       func(tx Transaction, key K) error
	event     func(caller domain.AccountID, key K) domain.Event
}

// createAttribute runs the set-once write path for a definition.
func createAttribute[K comparable, V any](ctx context.Context, s *Service, def attrDef[K, V], key K, value V) error {
	caller := domain.CallerFrom(ctx)
	return s.run(ctx, def.setOp, func(tx Transaction) error {
		if err := def.authorize(s, tx.Snapshot(), caller, key); err != nil {
			return err
		}
		if err := def.set(tx, key, value); err != nil {
			return err
		}
		if def.event != nil {
			tx.RecordEvent(def.event(caller, key))
		}
		return nil
	})
}

// deleteAttribute runs the delete path for a definition.
func deleteAttribute[K comparable, V any](ctx context.Context, s *Service, def attrDef[K, V], key K) error {
	caller := domain.CallerFrom(ctx)
	return s.run(ctx, def.deleteOp, func(tx Transaction) error {
		if err := def.authorize(s, tx.Snapshot(), caller, key); err != nil {
			return err
		}
		if err := def.del(tx, key); err != nil {
			return err
		}
		if def.event != nil {
			tx.RecordEvent(def.event(caller, key))
		}
		return nil
	})
}

// readAttribute resolves a lookup against committed state.
func readAttribute[K comparable, V any](ctx context.Context, s *Service, key K, get func(TransactionView, K) (V, bool)) (V, bool, error) {
	var value V
	var ok bool
	err := s.store.View(ctx, func(v TransactionView) error {
		value, ok = get(v, key)
		return nil
	})
	return value, ok, err
}

// authOwnerOrRole gates asset-bound attributes: the asset must exist, and the
// caller must be the owner or hold the overriding role.
func authOwnerOrRole(role domain.Role) func(*Service, TransactionView, domain.AccountID, domain.AssetID) error {
	return func(_ *Service, v TransactionView, caller domain.AccountID, id domain.AssetID) error {
		owner, ok := v.OwnerOf(id)
		if !ok {
			return domain.ErrAssetNotFound
		}
		if caller != owner && !hasRole(v, caller, role) {
			return domain.ErrNotOwner
		}
		return nil
	}
}

// authAdminThenAsset gates validation stamps: the administrator check comes
// before the asset existence check.
func authAdminThenAsset(s *Service, v TransactionView, caller domain.AccountID, id domain.AssetID) error {
	if !s.isAdministrator(v, caller) {
		return domain.ErrNotAdministrator
	}
	if !v.AssetExists(id) {
		return domain.ErrAssetNotFound
	}
	return nil
}

// authAdmin gates the category catalog, which has no asset prerequisite.
func authAdmin(s *Service, v TransactionView, caller domain.AccountID, _ domain.CategoryID) error {
	if !s.isAdministrator(v, caller) {
		return domain.ErrNotAdministrator
	}
	return nil
}

func assetUpdated(caller domain.AccountID, id domain.AssetID) domain.Event {
	return domain.AssetUpdatedEvent{Actor: caller, Asset: id}
}

var (
	descriptionDef = attrDef[domain.AssetID, domain.ContentRef]{
		setOp:     "set_description",
		deleteOp:  "delete_description",
		authorize: authOwnerOrRole(domain.RoleAdministrator),
		set:       func(tx Transaction, id domain.AssetID, ref domain.ContentRef) error { return tx.SetDescription(id, ref) },
		del:       func(tx Transaction, id domain.AssetID) error { return tx.DeleteDescription(id) },
		event:     assetUpdated,
	}

	photoDef = attrDef[domain.AssetID, domain.ContentRef]{
		setOp:     "set_photo",
		deleteOp:  "delete_photo",
		authorize: authOwnerOrRole(domain.RoleAdministrator),
		set:       func(tx Transaction, id domain.AssetID, ref domain.ContentRef) error { return tx.SetPhoto(id, ref) },
		del:       func(tx Transaction, id domain.AssetID) error { return tx.DeletePhoto(id) },
		event:     assetUpdated,
	}

	// Location edits accept the shipper role instead of administrator. This
	// asymmetry is deliberate per-field policy.
	locationDef = attrDef[domain.AssetID, domain.ContentRef]{
		setOp:     "set_location",
		deleteOp:  "delete_location",
		authorize: authOwnerOrRole(domain.RoleShipper),
		set:       func(tx Transaction, id domain.AssetID, ref domain.ContentRef) error { return tx.SetLocation(id, ref) },
		del:       func(tx Transaction, id domain.AssetID) error { return tx.DeleteLocation(id) },
		event:     assetUpdated,
	}

	metadataDef = attrDef[domain.AssetID, domain.ContentRef]{
		setOp:     "set_metadata",
		deleteOp:  "delete_metadata",
		authorize: authOwnerOrRole(domain.RoleAdministrator),
		set:       func(tx Transaction, id domain.AssetID, ref domain.ContentRef) error { return tx.SetMetadata(id, ref) },
		del:       func(tx Transaction, id domain.AssetID) error { return tx.DeleteMetadata(id) },
		event:     assetUpdated,
	}

	categoryDef = attrDef[domain.AssetID, domain.CategoryID]{
		setOp:     "set_category",
		deleteOp:  "delete_category",
		authorize: authOwnerOrRole(domain.RoleAdministrator),
		set: func(tx Transaction, id domain.AssetID, category domain.CategoryID) error {
			return tx.SetCategory(id, category)
		},
		del:   func(tx Transaction, id domain.AssetID) error { return tx.DeleteCategory(id) },
		event: assetUpdated,
	}

	validationDef = attrDef[domain.AssetID, domain.AccountID]{
		setOp:     "set_validation",
		deleteOp:  "delete_validation",
		authorize: authAdminThenAsset,
		set: func(tx Transaction, id domain.AssetID, account domain.AccountID) error {
			return tx.SetValidation(id, account)
		},
		del:   func(tx Transaction, id domain.AssetID) error { return tx.DeleteValidation(id) },
		event: assetUpdated,
	}

	// Catalog entries emit no event.
	categoryDescriptionDef = attrDef[domain.CategoryID, domain.ContentRef]{
		setOp:     "set_category_description",
		deleteOp:  "delete_category_description",
		authorize: authAdmin,
		set: func(tx Transaction, id domain.CategoryID, ref domain.ContentRef) error {
			return tx.SetCategoryDescription(id, ref)
		},
		del: func(tx Transaction, id domain.CategoryID) error { return tx.DeleteCategoryDescription(id) },
	}
)

// SetDescription stores the asset's description reference; set-once.
func (s *Service) SetDescription(ctx context.Context, id domain.AssetID, ref domain.ContentRef) error {
	return createAttribute(ctx, s, descriptionDef, id, ref)
}

// Description returns the asset's description reference.
func (s *Service) Description(ctx context.Context, id domain.AssetID) (domain.ContentRef, bool, error) {
	return readAttribute(ctx, s, id, TransactionView.Description)
}

// HasDescription reports whether a description is stored for the asset.
func (s *Service) HasDescription(ctx context.Context, id domain.AssetID) (bool, error) {
	_, ok, err := s.Description(ctx, id)
	return ok, err
}

// DeleteDescription removes the asset's description reference.
func (s *Service) DeleteDescription(ctx context.Context, id domain.AssetID) error {
	return deleteAttribute(ctx, s, descriptionDef, id)
}

// SetPhoto stores the asset's photo reference; set-once.
func (s *Service) SetPhoto(ctx context.Context, id domain.AssetID, ref domain.ContentRef) error {
	return createAttribute(ctx, s, photoDef, id, ref)
}

// Photo returns the asset's photo reference.
func (s *Service) Photo(ctx context.Context, id domain.AssetID) (domain.ContentRef, bool, error) {
	return readAttribute(ctx, s, id, TransactionView.Photo)
}

// HasPhoto reports whether a photo reference is stored for the asset.
func (s *Service) HasPhoto(ctx context.Context, id domain.AssetID) (bool, error) {
	_, ok, err := s.Photo(ctx, id)
	return ok, err
}

// DeletePhoto removes the asset's photo reference.
func (s *Service) DeletePhoto(ctx context.Context, id domain.AssetID) error {
	return deleteAttribute(ctx, s, photoDef, id)
}

// SetLocation stores the asset's location reference; set-once. Owner or
// shipper only.
func (s *Service) SetLocation(ctx context.Context, id domain.AssetID, ref domain.ContentRef) error {
	return createAttribute(ctx, s, locationDef, id, ref)
}

// Location returns the asset's location reference.
func (s *Service) Location(ctx context.Context, id domain.AssetID) (domain.ContentRef, bool, error) {
	return readAttribute(ctx, s, id, TransactionView.Location)
}

// HasLocation reports whether a location is stored for the asset.
func (s *Service) HasLocation(ctx context.Context, id domain.AssetID) (bool, error) {
	_, ok, err := s.Location(ctx, id)
	return ok, err
}

// DeleteLocation removes the asset's location reference.
func (s *Service) DeleteLocation(ctx context.Context, id domain.AssetID) error {
	return deleteAttribute(ctx, s, locationDef, id)
}

// SetMetadata stores the asset's metadata reference; set-once.
func (s *Service) SetMetadata(ctx context.Context, id domain.AssetID, ref domain.ContentRef) error {
	return createAttribute(ctx, s, metadataDef, id, ref)
}

// Metadata returns the asset's metadata reference.
func (s *Service) Metadata(ctx context.Context, id domain.AssetID) (domain.ContentRef, bool, error) {
	return readAttribute(ctx, s, id, TransactionView.Metadata)
}

// HasMetadata reports whether metadata is stored for the asset.
func (s *Service) HasMetadata(ctx context.Context, id domain.AssetID) (bool, error) {
	_, ok, err := s.Metadata(ctx, id)
	return ok, err
}

// DeleteMetadata removes the asset's metadata reference.
func (s *Service) DeleteMetadata(ctx context.Context, id domain.AssetID) error {
	return deleteAttribute(ctx, s, metadataDef, id)
}

// SetCategory attaches a catalog category to the asset; the category id must
// already exist in the catalog.
func (s *Service) SetCategory(ctx context.Context, id domain.AssetID, category domain.CategoryID) error {
	return createAttribute(ctx, s, categoryDef, id, category)
}

// Category returns the asset's category id.
func (s *Service) Category(ctx context.Context, id domain.AssetID) (domain.CategoryID, bool, error) {
	return readAttribute(ctx, s, id, TransactionView.Category)
}

// HasCategory reports whether a category is attached to the asset.
func (s *Service) HasCategory(ctx context.Context, id domain.AssetID) (bool, error) {
	_, ok, err := s.Category(ctx, id)
	return ok, err
}

// DeleteCategory removes the asset's category assignment.
func (s *Service) DeleteCategory(ctx context.Context, id domain.AssetID) error {
	return deleteAttribute(ctx, s, categoryDef, id)
}

// SetValidation stamps the asset with a validating account. Administrators
// only.
func (s *Service) SetValidation(ctx context.Context, id domain.AssetID, account domain.AccountID) error {
	return createAttribute(ctx, s, validationDef, id, account)
}

// Validation returns the asset's validation stamp.
func (s *Service) Validation(ctx context.Context, id domain.AssetID) (domain.AccountID, bool, error) {
	return readAttribute(ctx, s, id, TransactionView.Validation)
}

// HasValidation reports whether a validation stamp exists for the asset.
func (s *Service) HasValidation(ctx context.Context, id domain.AssetID) (bool, error) {
	_, ok, err := s.Validation(ctx, id)
	return ok, err
}

// DeleteValidation removes the asset's validation stamp.
func (s *Service) DeleteValidation(ctx context.Context, id domain.AssetID) error {
	return deleteAttribute(ctx, s, validationDef, id)
}

// CreateCategoryDescription adds a catalog entry. Administrators only; no
// asset needs to reference the category.
func (s *Service) CreateCategoryDescription(ctx context.Context, id domain.CategoryID, ref domain.ContentRef) error {
	return createAttribute(ctx, s, categoryDescriptionDef, id, ref)
}

// CategoryDescription returns the catalog entry for the category id.
func (s *Service) CategoryDescription(ctx context.Context, id domain.CategoryID) (domain.ContentRef, bool, error) {
	return readAttribute(ctx, s, id, TransactionView.CategoryDescription)
}

// HasCategoryDescription reports whether the catalog holds the category id.
func (s *Service) HasCategoryDescription(ctx context.Context, id domain.CategoryID) (bool, error) {
	_, ok, err := s.CategoryDescription(ctx, id)
	return ok, err
}

// DeleteCategoryDescription removes a catalog entry.
func (s *Service) DeleteCategoryDescription(ctx context.Context, id domain.CategoryID) error {
	return deleteAttribute(ctx, s, categoryDescriptionDef, id)
}
