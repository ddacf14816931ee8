package team

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/storefront-platform/internal/tenancy"
	"github.com/wolfman30/storefront-platform/pkg/logging"
)

func request(method, target, body, merchantID, storeID string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if merchantID != "" {
		req.Header.Set(tenancy.HeaderUserID, merchantID)
	}
	if storeID != "" {
		req.Header.Set(tenancy.HeaderStoreID, storeID)
	}
	return req
}

func TestHandlerInviteAcceptListRemove(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.svc, logging.New("error"))
	r := chi.NewRouter()
	r.Post("/api/store/team/invites", h.Invite)
	r.Post("/api/team/invites/accept", h.Accept)
	r.Get("/api/store/team", h.List)
	r.Delete("/api/store/team/{memberID}", h.Remove)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, request(http.MethodPost, "/api/store/team/invites", `{"email":"staff@example.com","role":"staff"}`, f.owner.ID, f.store.ID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var inv Invitation
	if err := json.NewDecoder(rec.Body).Decode(&inv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if inv.Token == "" || strings.Contains(rec.Body.String(), hashToken(inv.Token)) {
		t.Fatalf("expected plaintext token only, got %s", rec.Body.String())
	}

	staff := f.merchant(t, "staff@example.com")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, request(http.MethodPost, "/api/team/invites/accept", `{"token":"`+inv.Token+`"}`, staff.ID, ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 accepting, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, request(http.MethodGet, "/api/store/team", "", f.owner.ID, f.store.ID))
	var list ListMembersResponse
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Count != 1 || list.Members[0].Status != StatusAccepted {
		t.Fatalf("unexpected members %+v", list)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, request(http.MethodDelete, "/api/store/team/"+list.Members[0].ID, "", staff.ID, f.store.ID))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected staff removal to be forbidden, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, request(http.MethodDelete, "/api/store/team/"+list.Members[0].ID, "", f.owner.ID, f.store.ID))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandlerAcceptUnknownToken(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.svc, logging.New("error"))
	rec := httptest.NewRecorder()
	h.Accept(rec, request(http.MethodPost, "/api/team/invites/accept", `{"token":"nope"}`, f.owner.ID, ""))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
