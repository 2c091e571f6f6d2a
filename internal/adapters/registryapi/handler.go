// Package registryapi exposes the asset ledger over a JSON HTTP surface.
// Caller identity travels in the X-Ledger-Account header as 32 hex-encoded
// bytes; domain errors map onto HTTP status codes.
package registryapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"assetledger/internal/blob"
	"assetledger/internal/core"
	"assetledger/pkg/domain"
)

// CallerHeader names the request header carrying the acting account.
const CallerHeader = "X-Ledger-Account"

const apiPrefix = "/api/v1/"

// Handler provides HTTP access to ledger operations, attribute payload
// storage and recent committed events.
type Handler struct {
	Service *core.Service
	Blobs   blob.Store
	Events  *core.EventRecorder
}

// NewHandler constructs a ledger HTTP handler. Blobs and Events are
// optional; their endpoints 404 when absent.
func NewHandler(svc *core.Service) *Handler {
	return &Handler{Service: svc}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeError(w, http.StatusInternalServerError, "ledger service not configured")
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("invariant violation: %v", rec))
		}
	}()

	path := strings.TrimSuffix(r.URL.Path, "/")
	if !strings.HasPrefix(path, apiPrefix) {
		http.NotFound(w, r)
		return
	}
	remainder := strings.TrimPrefix(path, apiPrefix)
	segments := strings.Split(remainder, "/")

	switch segments[0] {
	case "assets":
		h.handleAssets(w, r, segments[1:])
	case "categories":
		h.handleCategories(w, r, segments[1:])
	case "accounts":
		h.handleAccounts(w, r, segments[1:])
	case "roles":
		h.handleRoles(w, r, segments[1:])
	case "approvals":
		h.handleApprovals(w, r, segments[1:])
	case "events":
		h.handleEvents(w, r, segments[1:])
	case "blobs":
		h.handleBlobs(w, r, segments[1:])
	default:
		http.NotFound(w, r)
	}
}

// --- assets ---

type mintRequest struct {
	AssetID domain.AssetID `json:"asset_id"`
}

type transferRequest struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
}

type delegateRequest struct {
	Delegate string `json:"delegate"`
}

func (h *Handler) handleAssets(w http.ResponseWriter, r *http.Request, segments []string) {
	if len(segments) == 0 || segments[0] == "" {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleMint(w, r)
		return
	}

	id, ok := parseAssetID(w, segments[0])
	if !ok {
		return
	}

	if len(segments) == 1 {
		switch r.Method {
		case http.MethodGet:
			h.handleAssetGet(w, r, id)
		case http.MethodDelete:
			h.handleAssetDelete(w, r, id)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	switch segments[1] {
	case "transfer":
		if len(segments) != 2 || r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleTransfer(w, r, id)
	case "delegate":
		if len(segments) != 2 {
			http.NotFound(w, r)
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.handleDelegateGet(w, r, id)
		case http.MethodPost:
			h.handleDelegateSet(w, r, id)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	case "attributes":
		if len(segments) != 3 {
			http.NotFound(w, r)
			return
		}
		h.handleAttribute(w, r, id, segments[2])
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleMint(w http.ResponseWriter, r *http.Request) {
	ctx, ok := h.callerContext(w, r)
	if !ok {
		return
	}
	var req mintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.Service.Mint(ctx, req.AssetID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"asset_id": req.AssetID})
}

func (h *Handler) handleAssetGet(w http.ResponseWriter, r *http.Request, id domain.AssetID) {
	ctx := r.Context()
	owner, ok, err := h.Service.OwnerOf(ctx, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}
	payload := map[string]any{"asset_id": id, "owner": owner}
	if delegate, ok, err := h.Service.SingleDelegate(ctx, id); err == nil && ok {
		payload["delegate"] = delegate
	}
	if ref, ok, err := h.Service.Description(ctx, id); err == nil && ok {
		payload["description"] = ref
	}
	if ref, ok, err := h.Service.Photo(ctx, id); err == nil && ok {
		payload["photo"] = ref
	}
	if ref, ok, err := h.Service.Location(ctx, id); err == nil && ok {
		payload["location"] = ref
	}
	if ref, ok, err := h.Service.Metadata(ctx, id); err == nil && ok {
		payload["metadata"] = ref
	}
	if category, ok, err := h.Service.Category(ctx, id); err == nil && ok {
		payload["category"] = category
	}
	if account, ok, err := h.Service.Validation(ctx, id); err == nil && ok {
		payload["validation"] = account
	}
	writeJSON(w, http.StatusOK, map[string]any{"asset": payload})
}

func (h *Handler) handleAssetDelete(w http.ResponseWriter, r *http.Request, id domain.AssetID) {
	ctx, ok := h.callerContext(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteAsset(ctx, id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"asset_id": id, "deleted": true})
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request, id domain.AssetID) {
	ctx, ok := h.callerContext(w, r)
	if !ok {
		return
	}
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	to, err := domain.ParseAccountID(req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid destination account")
		return
	}
	if req.From != "" {
		from, err := domain.ParseAccountID(req.From)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid source account")
			return
		}
		if err := h.Service.TransferFrom(ctx, from, to, id); err != nil {
			writeDomainError(w, err)
			return
		}
	} else if err := h.Service.Transfer(ctx, to, id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"asset_id": id, "owner": to})
}

func (h *Handler) handleDelegateGet(w http.ResponseWriter, r *http.Request, id domain.AssetID) {
	delegate, ok, err := h.Service.SingleDelegate(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no delegate set")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"asset_id": id, "delegate": delegate})
}

func (h *Handler) handleDelegateSet(w http.ResponseWriter, r *http.Request, id domain.AssetID) {
	ctx, ok := h.callerContext(w, r)
	if !ok {
		return
	}
	var req delegateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	delegate, err := domain.ParseAccountID(req.Delegate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid delegate account")
		return
	}
	if err := h.Service.DelegateSingleAsset(ctx, delegate, id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"asset_id": id, "delegate": delegate})
}

// --- attributes ---

type attributeRequest struct {
	Ref      string            `json:"ref,omitempty"`
	Account  string            `json:"account,omitempty"`
	Category *domain.CategoryID `json:"category,omitempty"`
}

func (h *Handler) handleAttribute(w http.ResponseWriter, r *http.Request, id domain.AssetID, kind string) {
	switch r.Method {
	case http.MethodGet:
		h.handleAttributeGet(w, r, id, kind)
	case http.MethodPost:
		h.handleAttributeSet(w, r, id, kind)
	case http.MethodDelete:
		h.handleAttributeDelete(w, r, id, kind)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleAttributeGet(w http.ResponseWriter, r *http.Request, id domain.AssetID, kind string) {
	ctx := r.Context()
	var (
		value any
		ok    bool
		err   error
	)
	switch kind {
	case "description":
		value, ok, err = h.Service.Description(ctx, id)
	case "photo":
		value, ok, err = h.Service.Photo(ctx, id)
	case "location":
		value, ok, err = h.Service.Location(ctx, id)
	case "metadata":
		value, ok, err = h.Service.Metadata(ctx, id)
	case "category":
		value, ok, err = h.Service.Category(ctx, id)
	case "validation":
		value, ok, err = h.Service.Validation(ctx, id)
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "attribute not set")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"asset_id": id, "kind": kind, "value": value})
}

func (h *Handler) handleAttributeSet(w http.ResponseWriter, r *http.Request, id domain.AssetID, kind string) {
	ctx, ok := h.callerContext(w, r)
	if !ok {
		return
	}
	var req attributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var err error
	switch kind {
	case "description", "photo", "location", "metadata":
		ref, parseErr := domain.ParseContentRef(req.Ref)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "invalid content reference")
			return
		}
		switch kind {
		case "description":
			err = h.Service.SetDescription(ctx, id, ref)
		case "photo":
			err = h.Service.SetPhoto(ctx, id, ref)
		case "location":
			err = h.Service.SetLocation(ctx, id, ref)
		case "metadata":
			err = h.Service.SetMetadata(ctx, id, ref)
		}
	case "category":
		if req.Category == nil {
			writeError(w, http.StatusBadRequest, "category required")
			return
		}
		err = h.Service.SetCategory(ctx, id, *req.Category)
	case "validation":
		account, parseErr := domain.ParseAccountID(req.Account)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "invalid validation account")
			return
		}
		err = h.Service.SetValidation(ctx, id, account)
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"asset_id": id, "kind": kind})
}

func (h *Handler) handleAttributeDelete(w http.ResponseWriter, r *http.Request, id domain.AssetID, kind string) {
	ctx, ok := h.callerContext(w, r)
	if !ok {
		return
	}
	var err error
	switch kind {
	case "description":
		err = h.Service.DeleteDescription(ctx, id)
	case "photo":
		err = h.Service.DeletePhoto(ctx, id)
	case "location":
		err = h.Service.DeleteLocation(ctx, id)
	case "metadata":
		err = h.Service.DeleteMetadata(ctx, id)
	case "category":
		err = h.Service.DeleteCategory(ctx, id)
	case "validation":
		err = h.Service.DeleteValidation(ctx, id)
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"asset_id": id, "kind": kind, "deleted": true})
}

// --- categories ---

type categoryDescriptionRequest struct {
	Ref string `json:"ref"`
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request, segments []string) {
	if len(segments) != 2 || segments[1] != "description" {
		http.NotFound(w, r)
		return
	}
	raw, err := strconv.ParseUint(segments[0], 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	id := domain.CategoryID(raw)

	switch r.Method {
	case http.MethodGet:
		ref, ok, err := h.Service.CategoryDescription(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"category": id, "description": ref})
	case http.MethodPost:
		ctx, ok := h.callerContext(w, r)
		if !ok {
			return
		}
		var req categoryDescriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		ref, err := domain.ParseContentRef(req.Ref)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid content reference")
			return
		}
		if err := h.Service.CreateCategoryDescription(ctx, id, ref); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"category": id, "description": ref})
	case http.MethodDelete:
		ctx, ok := h.callerContext(w, r)
		if !ok {
			return
		}
		if err := h.Service.DeleteCategoryDescription(ctx, id); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"category": id, "deleted": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// --- accounts ---

func (h *Handler) handleAccounts(w http.ResponseWriter, r *http.Request, segments []string) {
	if len(segments) != 1 || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	account, err := domain.ParseAccountID(segments[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account")
		return
	}
	ctx := r.Context()
	count, err := h.Service.OwnedCount(ctx, account)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	payload := map[string]any{"account": account, "owned_count": count}
	if role, ok, err := h.Service.RoleOf(ctx, account); err == nil && ok {
		payload["role"] = role.String()
		payload["role_ordinal"] = uint8(role)
	}
	writeJSON(w, http.StatusOK, map[string]any{"account": payload})
}

// --- roles ---

type roleRequest struct {
	Role uint32 `json:"role"`
}

func (h *Handler) handleRoles(w http.ResponseWriter, r *http.Request, segments []string) {
	if len(segments) != 1 {
		http.NotFound(w, r)
		return
	}
	account, err := domain.ParseAccountID(segments[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account")
		return
	}

	switch r.Method {
	case http.MethodGet:
		role, ok, err := h.Service.RoleOf(r.Context(), account)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "no role assigned")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"account": account, "role": role.String(), "role_ordinal": uint8(role)})
	case http.MethodPost:
		ctx, ok := h.callerContext(w, r)
		if !ok {
			return
		}
		var req roleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		role, ok := domain.RoleFromOrdinal(req.Role)
		if !ok {
			// The service rejects out-of-range roles with its own error so
			// the response matches direct API usage.
			role = domain.Role(req.Role)
		}
		if err := h.Service.SetRole(ctx, account, role); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"account": account, "role": role.String()})
	case http.MethodDelete:
		ctx, ok := h.callerContext(w, r)
		if !ok {
			return
		}
		if err := h.Service.DeleteRole(ctx, account); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"account": account, "deleted": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// --- approvals ---

type approvalRequest struct {
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

func (h *Handler) handleApprovals(w http.ResponseWriter, r *http.Request, segments []string) {
	switch {
	case len(segments) == 0 || segments[0] == "":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		ctx, ok := h.callerContext(w, r)
		if !ok {
			return
		}
		var req approvalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		operator, err := domain.ParseAccountID(req.Operator)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid operator account")
			return
		}
		if err := h.Service.SetBlanketApproval(ctx, operator, req.Approved); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"operator": operator, "approved": req.Approved})
	case len(segments) == 2:
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		owner, err := domain.ParseAccountID(segments[0])
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid owner account")
			return
		}
		operator, err := domain.ParseAccountID(segments[1])
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid operator account")
			return
		}
		approved, err := h.Service.BlanketApproved(r.Context(), owner, operator)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"owner": owner, "operator": operator, "approved": approved})
	default:
		http.NotFound(w, r)
	}
}

// --- events ---

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request, segments []string) {
	if h.Events == nil || len(segments) != 0 && segments[0] != "" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": h.Events.Events()})
}

// --- blobs ---

func (h *Handler) handleBlobs(w http.ResponseWriter, r *http.Request, segments []string) {
	if h.Blobs == nil {
		http.NotFound(w, r)
		return
	}
	switch {
	case len(segments) == 0 || segments[0] == "":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		payload, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable request body")
			return
		}
		if len(payload) == 0 {
			writeError(w, http.StatusBadRequest, "empty payload")
			return
		}
		ref, info, err := blob.StorePayload(r.Context(), h.Blobs, payload, blob.PutOptions{
			ContentType: r.Header.Get("Content-Type"),
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"ref": ref, "blob": info})
	case len(segments) == 1:
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		ref, err := domain.ParseContentRef(segments[0])
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid content reference")
			return
		}
		info, rc, err := h.Blobs.Get(r.Context(), blob.KeyFor(ref))
		if err != nil {
			writeError(w, http.StatusNotFound, "blob not found")
			return
		}
		defer func() { _ = rc.Close() }()
		if info.ContentType != "" {
			w.Header().Set("Content-Type", info.ContentType)
		} else {
			w.Header().Set("Content-Type", "application/octet-stream")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = io.Copy(w, rc)
	default:
		http.NotFound(w, r)
	}
}

// --- shared helpers ---

func (h *Handler) callerContext(w http.ResponseWriter, r *http.Request) (context.Context, bool) {
	header := r.Header.Get(CallerHeader)
	if header == "" {
		writeError(w, http.StatusUnauthorized, CallerHeader+" header required")
		return nil, false
	}
	caller, err := domain.ParseAccountID(header)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid "+CallerHeader+" header")
		return nil, false
	}
	if caller.IsZero() {
		writeError(w, http.StatusUnauthorized, "zero account cannot act")
		return nil, false
	}
	return domain.WithCaller(r.Context(), caller), true
}

func parseAssetID(w http.ResponseWriter, raw string) (domain.AssetID, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid asset id")
		return 0, false
	}
	return domain.AssetID(id), true
}

func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotOwner),
		errors.Is(err, domain.ErrNotAdministrator),
		errors.Is(err, domain.ErrNotApproved),
		errors.Is(err, domain.ErrNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAssetNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrCannotRemove):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAssetExists),
		errors.Is(err, domain.ErrDuplicatedData),
		errors.Is(err, domain.ErrCannotInsert),
		errors.Is(err, domain.ErrCannotFetchValue):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
