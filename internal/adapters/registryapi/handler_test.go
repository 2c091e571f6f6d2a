package registryapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"assetledger/internal/blob"
	"assetledger/internal/core"
	"assetledger/internal/infra/persistence/memory"
	"assetledger/pkg/domain"
)

func account(b byte) domain.AccountID {
	var id domain.AccountID
	id[0] = b
	return id
}

var (
	admin = account(0xAD)
	alice = account(0xA1)
	bob   = account(0xB0)
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	recorder := core.NewEventRecorder(0)
	svc := core.NewService(memory.NewStore(), admin, core.WithEventSink(recorder))
	return &Handler{Service: svc, Blobs: blob.NewMemoryStore(), Events: recorder}
}

func doRequest(t *testing.T, h *Handler, method, path string, caller *domain.AccountID, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if caller != nil {
		req.Header.Set(CallerHeader, caller.String())
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return payload
}

func mintAsset(t *testing.T, h *Handler, owner domain.AccountID, id int) {
	t.Helper()
	rec := doRequest(t, h, http.MethodPost, "/api/v1/assets", &owner, map[string]any{"asset_id": id})
	if rec.Code != http.StatusCreated {
		t.Fatalf("mint status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMintAndGetAsset(t *testing.T) {
	h := newTestHandler(t)
	mintAsset(t, h, alice, 1)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/assets/1", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status %d: %s", rec.Code, rec.Body.String())
	}
	payload := decodeBody(t, rec)
	asset := payload["asset"].(map[string]any)
	if asset["owner"] != alice.String() {
		t.Fatalf("unexpected owner: %v", asset["owner"])
	}
}

func TestMintRequiresCallerHeader(t *testing.T) {
	h := newTestHandler(t)
	rec := doRequest(t, h, http.MethodPost, "/api/v1/assets", nil, map[string]any{"asset_id": 1})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assets", strings.NewReader("{}"))
	req.Header.Set(CallerHeader, "not-hex")
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad header, got %d", rec2.Code)
	}
}

func TestDuplicateMintConflicts(t *testing.T) {
	h := newTestHandler(t)
	mintAsset(t, h, alice, 1)
	rec := doRequest(t, h, http.MethodPost, "/api/v1/assets", &alice, map[string]any{"asset_id": 1})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTransferEndpoint(t *testing.T) {
	h := newTestHandler(t)
	mintAsset(t, h, alice, 1)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/assets/1/transfer", &alice, map[string]any{"to": bob.String()})
	if rec.Code != http.StatusOK {
		t.Fatalf("transfer status %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, h, http.MethodGet, "/api/v1/assets/1", nil, nil)
	asset := decodeBody(t, rec)["asset"].(map[string]any)
	if asset["owner"] != bob.String() {
		t.Fatalf("expected owner %s, got %v", bob, asset["owner"])
	}
}

func TestTransferByStrangerForbidden(t *testing.T) {
	h := newTestHandler(t)
	mintAsset(t, h, alice, 1)
	eve := account(0xE0)
	rec := doRequest(t, h, http.MethodPost, "/api/v1/assets/1/transfer", &eve, map[string]any{"to": eve.String()})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTransferMissingAssetNotFound(t *testing.T) {
	h := newTestHandler(t)
	rec := doRequest(t, h, http.MethodPost, "/api/v1/assets/9/transfer", &alice, map[string]any{"to": bob.String()})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTransferFromWithExplicitSource(t *testing.T) {
	h := newTestHandler(t)
	mintAsset(t, h, alice, 1)
	if rec := doRequest(t, h, http.MethodPost, "/api/v1/approvals", &alice, map[string]any{
		"operator": bob.String(), "approved": true,
	}); rec.Code != http.StatusOK {
		t.Fatalf("approval status %d: %s", rec.Code, rec.Body.String())
	}

	carol := account(0xC0)
	rec := doRequest(t, h, http.MethodPost, "/api/v1/assets/1/transfer", &bob, map[string]any{
		"from": alice.String(), "to": carol.String(),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("transfer-from status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDeleteAssetEndpoint(t *testing.T) {
	h := newTestHandler(t)
	mintAsset(t, h, alice, 1)

	if rec := doRequest(t, h, http.MethodDelete, "/api/v1/assets/1", &bob, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner delete, got %d", rec.Code)
	}
	if rec := doRequest(t, h, http.MethodDelete, "/api/v1/assets/1", &alice, nil); rec.Code != http.StatusOK {
		t.Fatalf("owner delete status %d", rec.Code)
	}
	if rec := doRequest(t, h, http.MethodGet, "/api/v1/assets/1", nil, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestDelegateEndpoint(t *testing.T) {
	h := newTestHandler(t)
	mintAsset(t, h, alice, 1)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/assets/1/delegate", &alice, map[string]any{"delegate": bob.String()})
	if rec.Code != http.StatusOK {
		t.Fatalf("delegate status %d: %s", rec.Code, rec.Body.String())
	}
	rec = doRequest(t, h, http.MethodGet, "/api/v1/assets/1/delegate", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delegate get status %d", rec.Code)
	}
	if decodeBody(t, rec)["delegate"] != bob.String() {
		t.Fatalf("unexpected delegate payload: %s", rec.Body.String())
	}
}

func TestAttributeLifecycleOverHTTP(t *testing.T) {
	h := newTestHandler(t)
	mintAsset(t, h, alice, 1)
	ref := domain.ContentRefOf([]byte("asset description"))

	rec := doRequest(t, h, http.MethodPost, "/api/v1/assets/1/attributes/description", &alice, map[string]any{"ref": ref.String()})
	if rec.Code != http.StatusCreated {
		t.Fatalf("set status %d: %s", rec.Code, rec.Body.String())
	}

	// Attributes are create-once.
	rec = doRequest(t, h, http.MethodPost, "/api/v1/assets/1/attributes/description", &alice, map[string]any{"ref": ref.String()})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on re-create, got %d", rec.Code)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/v1/assets/1/attributes/description", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status %d", rec.Code)
	}
	if decodeBody(t, rec)["value"] != ref.String() {
		t.Fatalf("unexpected value: %s", rec.Body.String())
	}

	rec = doRequest(t, h, http.MethodDelete, "/api/v1/assets/1/attributes/description", &alice, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status %d: %s", rec.Code, rec.Body.String())
	}
	rec = doRequest(t, h, http.MethodGet, "/api/v1/assets/1/attributes/description", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestAttributeForbiddenForStranger(t *testing.T) {
	h := newTestHandler(t)
	mintAsset(t, h, alice, 1)
	ref := domain.ContentRefOf([]byte("x"))
	rec := doRequest(t, h, http.MethodPost, "/api/v1/assets/1/attributes/description", &bob, map[string]any{"ref": ref.String()})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUnknownAttributeKind(t *testing.T) {
	h := newTestHandler(t)
	mintAsset(t, h, alice, 1)
	rec := doRequest(t, h, http.MethodGet, "/api/v1/assets/1/attributes/color", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCategoryFlowOverHTTP(t *testing.T) {
	h := newTestHandler(t)
	mintAsset(t, h, alice, 1)
	ref := domain.ContentRefOf([]byte("spare parts"))

	// Catalog entries are administrator-only.
	rec := doRequest(t, h, http.MethodPost, "/api/v1/categories/7/description", &alice, map[string]any{"ref": ref.String()})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}
	rec = doRequest(t, h, http.MethodPost, "/api/v1/categories/7/description", &admin, map[string]any{"ref": ref.String()})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category status %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, h, http.MethodPost, "/api/v1/assets/1/attributes/category", &alice, map[string]any{"category": 7})
	if rec.Code != http.StatusCreated {
		t.Fatalf("set category status %d: %s", rec.Code, rec.Body.String())
	}

	// Assigning an uncatalogued category fails.
	mintAsset(t, h, alice, 2)
	rec = doRequest(t, h, http.MethodPost, "/api/v1/assets/2/attributes/category", &alice, map[string]any{"category": 99})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown category, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRoleEndpoints(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, fmt.Sprintf("/api/v1/roles/%s", alice), &admin, map[string]any{"role": 2})
	if rec.Code != http.StatusCreated {
		t.Fatalf("set role status %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, h, http.MethodGet, fmt.Sprintf("/api/v1/roles/%s", alice), nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get role status %d", rec.Code)
	}

	// Non-admins cannot grant.
	rec = doRequest(t, h, http.MethodPost, fmt.Sprintf("/api/v1/roles/%s", bob), &alice, map[string]any{"role": 1})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	// Out-of-range ordinals conflict.
	rec = doRequest(t, h, http.MethodPost, fmt.Sprintf("/api/v1/roles/%s", bob), &admin, map[string]any{"role": 9})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for invalid role, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, h, http.MethodDelete, fmt.Sprintf("/api/v1/roles/%s", alice), &admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete role status %d", rec.Code)
	}
	rec = doRequest(t, h, http.MethodDelete, fmt.Sprintf("/api/v1/roles/%s", alice), &admin, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 deleting absent role, got %d", rec.Code)
	}
}

func TestApprovalQueryEndpoint(t *testing.T) {
	h := newTestHandler(t)
	if rec := doRequest(t, h, http.MethodPost, "/api/v1/approvals", &alice, map[string]any{
		"operator": bob.String(), "approved": true,
	}); rec.Code != http.StatusOK {
		t.Fatalf("approval status %d", rec.Code)
	}
	rec := doRequest(t, h, http.MethodGet, fmt.Sprintf("/api/v1/approvals/%s/%s", alice, bob), nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("approval get status %d", rec.Code)
	}
	if decodeBody(t, rec)["approved"] != true {
		t.Fatalf("expected approved=true: %s", rec.Body.String())
	}

	// Self-approval is rejected.
	rec = doRequest(t, h, http.MethodPost, "/api/v1/approvals", &alice, map[string]any{
		"operator": alice.String(), "approved": true,
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for self approval, got %d", rec.Code)
	}
}

func TestAccountSummaryEndpoint(t *testing.T) {
	h := newTestHandler(t)
	mintAsset(t, h, alice, 1)
	mintAsset(t, h, alice, 2)

	rec := doRequest(t, h, http.MethodGet, fmt.Sprintf("/api/v1/accounts/%s", alice), nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("account status %d", rec.Code)
	}
	summary := decodeBody(t, rec)["account"].(map[string]any)
	if summary["owned_count"] != float64(2) {
		t.Fatalf("expected owned_count 2: %s", rec.Body.String())
	}
}

func TestEventsEndpoint(t *testing.T) {
	h := newTestHandler(t)
	mintAsset(t, h, alice, 1)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/events", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("events status %d", rec.Code)
	}
	events := decodeBody(t, rec)["events"].([]any)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
}

func TestBlobEndpoints(t *testing.T) {
	h := newTestHandler(t)
	payload := []byte("photo bytes")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/blobs", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "image/png")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("blob post status %d: %s", rec.Code, rec.Body.String())
	}
	ref := decodeBody(t, rec)["ref"].(string)
	if ref != domain.ContentRefOf(payload).String() {
		t.Fatalf("unexpected ref %s", ref)
	}

	getRec := doRequest(t, h, http.MethodGet, "/api/v1/blobs/"+ref, nil, nil)
	if getRec.Code != http.StatusOK {
		t.Fatalf("blob get status %d", getRec.Code)
	}
	if !bytes.Equal(getRec.Body.Bytes(), payload) {
		t.Fatalf("payload mismatch: %q", getRec.Body.Bytes())
	}
	if ct := getRec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected stored content type, got %q", ct)
	}
}

func TestUnknownRouteNotFound(t *testing.T) {
	h := newTestHandler(t)
	rec := doRequest(t, h, http.MethodGet, "/api/v1/widgets", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	rec = doRequest(t, h, http.MethodGet, "/other", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 outside prefix, got %d", rec.Code)
	}
}
