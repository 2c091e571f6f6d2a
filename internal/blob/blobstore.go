// Package blob provides the payload store backing asset attribute
// references. Attributes in the ledger hold 32-byte content references;
// the bytes those references name live here, keyed by their hex digest.
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"assetledger/pkg/domain"
)

// Driver identifies a blob store backend implementation.
type Driver string

const (
	DriverFS     Driver = "fs"
	DriverS3     Driver = "s3"
	DriverMemory Driver = "memory"
)

// ErrUnsupported is returned for operations a backend cannot provide
// (e.g. non-GET presigned URLs).
var ErrUnsupported = errors.New("blob: operation unsupported by driver")

// ErrExists is returned by Put when the key is already occupied.
var ErrExists = errors.New("blob: key already exists")

// PutOptions carries optional metadata supplied at write time.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// SignedURLOptions configures PresignURL. Method defaults to GET.
type SignedURLOptions struct {
	Method string
	Expiry time.Duration
}

// Info describes a stored blob.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size"`
	ContentType  string            `json:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
	URL          string            `json:"url,omitempty"`
}

// Store is the backend-neutral blob interface. Put is create-only: writing
// to an occupied key fails with ErrExists.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Head(ctx context.Context, key string) (Info, error)
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	PresignURL(ctx context.Context, key string, opts SignedURLOptions) (string, error)
	Driver() Driver
}

// KeyFor maps a content reference to its storage key.
func KeyFor(ref domain.ContentRef) string { return ref.String() }

// StorePayload writes payload under its content-derived key and returns the
// reference. A payload that is already present is not rewritten; the stored
// bytes are the same by construction.
func StorePayload(ctx context.Context, store Store, payload []byte, opts PutOptions) (domain.ContentRef, Info, error) {
	ref := domain.ContentRefOf(payload)
	key := KeyFor(ref)
	info, err := store.Put(ctx, key, bytes.NewReader(payload), opts)
	if err != nil {
		if errors.Is(err, ErrExists) {
			existing, headErr := store.Head(ctx, key)
			if headErr != nil {
				return domain.ContentRef{}, Info{}, headErr
			}
			return ref, existing, nil
		}
		return domain.ContentRef{}, Info{}, err
	}
	return ref, info, nil
}

// LoadPayload fetches the bytes for a content reference and verifies the
// digest of what came back.
func LoadPayload(ctx context.Context, store Store, ref domain.ContentRef) ([]byte, error) {
	_, rc, err := store.Get(ctx, KeyFor(ref))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	payload, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	if domain.ContentRefOf(payload) != ref {
		return nil, fmt.Errorf("blob %s: stored payload digest mismatch", KeyFor(ref))
	}
	return payload, nil
}
