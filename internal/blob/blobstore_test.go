package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"assetledger/pkg/domain"
)

func openTestStores(t *testing.T) map[string]Store {
	t.Helper()
	fsStore, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("fs store: %v", err)
	}
	return map[string]Store{
		"memory": NewMemoryStore(),
		"fs":     fsStore,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			payload := []byte("asset photo bytes")
			info, err := store.Put(ctx, "photos/asset-1", bytes.NewReader(payload), PutOptions{
				ContentType: "image/png",
				Metadata:    map[string]string{"asset": "1"},
			})
			if err != nil {
				t.Fatalf("put: %v", err)
			}
			if info.Size != int64(len(payload)) {
				t.Fatalf("expected size %d, got %d", len(payload), info.Size)
			}
			if info.ETag == "" {
				t.Fatal("expected etag")
			}

			got, rc, err := store.Get(ctx, "photos/asset-1")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			data, err := io.ReadAll(rc)
			_ = rc.Close()
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if !bytes.Equal(data, payload) {
				t.Fatalf("payload mismatch: %q", data)
			}
			if got.ContentType != "image/png" || got.Metadata["asset"] != "1" {
				t.Fatalf("metadata mismatch: %+v", got)
			}

			head, err := store.Head(ctx, "photos/asset-1")
			if err != nil {
				t.Fatalf("head: %v", err)
			}
			if head.ETag != info.ETag {
				t.Fatalf("etag mismatch: %s vs %s", head.ETag, info.ETag)
			}
		})
	}
}

func TestStorePutIsCreateOnly(t *testing.T) {
	ctx := context.Background()
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Put(ctx, "k", strings.NewReader("first"), PutOptions{}); err != nil {
				t.Fatalf("put: %v", err)
			}
			_, err := store.Put(ctx, "k", strings.NewReader("second"), PutOptions{})
			if !errors.Is(err, ErrExists) {
				t.Fatalf("expected ErrExists, got %v", err)
			}
		})
	}
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Put(ctx, "k", strings.NewReader("v"), PutOptions{}); err != nil {
				t.Fatalf("put: %v", err)
			}
			removed, err := store.Delete(ctx, "k")
			if err != nil || !removed {
				t.Fatalf("delete: removed=%v err=%v", removed, err)
			}
			removed, err = store.Delete(ctx, "k")
			if err != nil || removed {
				t.Fatalf("second delete: removed=%v err=%v", removed, err)
			}
			if _, err := store.Head(ctx, "k"); err == nil {
				t.Fatal("expected head of deleted key to fail")
			}
		})
	}
}

func TestStoreListPrefix(t *testing.T) {
	ctx := context.Background()
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"photos/b", "photos/a", "docs/readme"} {
				if _, err := store.Put(ctx, key, strings.NewReader(key), PutOptions{}); err != nil {
					t.Fatalf("put %s: %v", key, err)
				}
			}
			infos, err := store.List(ctx, "photos/")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(infos) != 2 || infos[0].Key != "photos/a" || infos[1].Key != "photos/b" {
				t.Fatalf("unexpected listing: %+v", infos)
			}
		})
	}
}

func TestFSStoreRejectsTraversal(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("fs store: %v", err)
	}
	for _, key := range []string{"../escape", "/abs", ""} {
		if _, err := store.Put(context.Background(), key, strings.NewReader("x"), PutOptions{}); err == nil {
			t.Fatalf("expected put %q to fail", key)
		}
	}
}

func TestPresignURLSupport(t *testing.T) {
	ctx := context.Background()
	fsStore, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("fs store: %v", err)
	}
	if _, err := fsStore.PresignURL(ctx, "k", SignedURLOptions{Method: "PUT"}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported for non-GET, got %v", err)
	}
	url, err := fsStore.PresignURL(ctx, "k", SignedURLOptions{})
	if err != nil || !strings.Contains(url, "/k") {
		t.Fatalf("presign: url=%q err=%v", url, err)
	}
	if _, err := NewMemoryStore().PresignURL(ctx, "k", SignedURLOptions{}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected memory presign to be unsupported, got %v", err)
	}
}

func TestStorePayloadDeduplicates(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	payload := []byte("shared description body")

	ref, info, err := StorePayload(ctx, store, payload, PutOptions{ContentType: "text/plain"})
	if err != nil {
		t.Fatalf("store payload: %v", err)
	}
	if info.Key != KeyFor(ref) {
		t.Fatalf("expected content-derived key, got %s", info.Key)
	}
	if ref != domain.ContentRefOf(payload) {
		t.Fatalf("unexpected ref %s", ref)
	}

	// Storing the same bytes again lands on the existing object.
	ref2, info2, err := StorePayload(ctx, store, payload, PutOptions{})
	if err != nil {
		t.Fatalf("repeat store: %v", err)
	}
	if ref2 != ref || info2.ETag != info.ETag {
		t.Fatalf("expected dedup onto existing blob: %+v vs %+v", info2, info)
	}

	got, err := LoadPayload(ctx, store, ref)
	if err != nil {
		t.Fatalf("load payload: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch: %q", got)
	}
}

func TestLoadPayloadVerifiesDigest(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	ref := domain.ContentRefOf([]byte("expected"))
	if _, err := store.Put(ctx, KeyFor(ref), strings.NewReader("tampered"), PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := LoadPayload(ctx, store, ref); err == nil {
		t.Fatal("expected digest mismatch error")
	}
}

func TestOpenFactory(t *testing.T) {
	ctx := context.Background()

	t.Setenv(envDriver, "memory")
	store, err := Open(ctx)
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("expected memory driver, got %s", store.Driver())
	}

	t.Setenv(envDriver, "fs")
	t.Setenv(envFSRoot, t.TempDir())
	store, err = Open(ctx)
	if err != nil {
		t.Fatalf("open fs: %v", err)
	}
	if store.Driver() != DriverFS {
		t.Fatalf("expected fs driver, got %s", store.Driver())
	}

	t.Setenv(envDriver, "s3")
	t.Setenv("ASSETLEDGER_BLOB_S3_BUCKET", "")
	if _, err := Open(ctx); err == nil {
		t.Fatal("expected s3 driver without bucket to fail")
	}

	t.Setenv(envDriver, "tape")
	if _, err := Open(ctx); err == nil {
		t.Fatal("expected unknown driver error")
	}
}
