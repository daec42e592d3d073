package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eastway/batchlaunch/internal/account"
	"github.com/eastway/batchlaunch/internal/scanner"
	"github.com/eastway/batchlaunch/internal/store"
	"github.com/eastway/batchlaunch/internal/supervisor"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubStore struct {
	accts map[account.ID]account.Account
}

func newStubStore(accts ...account.Account) *stubStore {
	m := make(map[account.ID]account.Account, len(accts))
	for _, a := range accts {
		m[a.ID] = a
	}
	return &stubStore{accts: m}
}

func (s *stubStore) EnsureSchema(context.Context) error { return nil }

func (s *stubStore) Save(_ context.Context, a account.Account) error {
	s.accts[a.ID] = a
	return nil
}

func (s *stubStore) Get(_ context.Context, id account.ID) (account.Account, error) {
	a, ok := s.accts[id]
	if !ok {
		return account.Account{}, store.ErrNotFound
	}
	return a, nil
}

func (s *stubStore) Delete(_ context.Context, id account.ID) error {
	delete(s.accts, id)
	return nil
}

func (s *stubStore) List(context.Context) ([]account.Account, error) {
	out := make([]account.Account, 0, len(s.accts))
	for _, a := range s.accts {
		out = append(out, a)
	}
	return out, nil
}

func (s *stubStore) Close() error { return nil }

func testHandler(t *testing.T, st store.Store, root string) http.Handler {
	t.Helper()
	sup := supervisor.New(nil, supervisor.Options{})
	r := NewRouter(sup, st, scanner.New(0, 0), root, 15*time.Second, "/api")
	return r.Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestStatusEmpty(t *testing.T) {
	h := testHandler(t, newStubStore(), "")
	w := doJSON(t, h, http.MethodGet, "/api/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var entries []statusEntry
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries %+v", entries)
	}
}

func TestLaunchUnknownAccount(t *testing.T) {
	h := testHandler(t, newStubStore(), t.TempDir())
	w := doJSON(t, h, http.MethodPost, "/api/launch", map[string]any{"ids": []string{"nope"}})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404: %s", w.Code, w.Body.String())
	}
}

func TestLaunchAccepted(t *testing.T) {
	st := newStubStore(account.Account{ID: "a1", Login: "alice", Secret: "pw", Server: account.ServerMain})
	h := testHandler(t, st, t.TempDir())
	w := doJSON(t, h, http.MethodPost, "/api/launch", map[string]any{"ids": []string{"a1"}})
	if w.Code != http.StatusAccepted {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
}

func TestLaunchNoIDs(t *testing.T) {
	h := testHandler(t, newStubStore(), t.TempDir())
	w := doJSON(t, h, http.MethodPost, "/api/launch", map[string]any{"ids": []string{}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d", w.Code)
	}
}

func TestLaunchNoRoot(t *testing.T) {
	st := newStubStore(account.Account{ID: "a1", Login: "alice", Secret: "pw"})
	h := testHandler(t, st, "")
	w := doJSON(t, h, http.MethodPost, "/api/launch", map[string]any{"ids": []string{"a1"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
}

func TestLaunchInvalidJSON(t *testing.T) {
	h := testHandler(t, newStubStore(), t.TempDir())
	req := httptest.NewRequest(http.MethodPost, "/api/launch", bytes.NewBufferString("{broken"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d", w.Code)
	}
}

func TestCloseOK(t *testing.T) {
	h := testHandler(t, newStubStore(), "")
	w := doJSON(t, h, http.MethodPost, "/api/close", map[string]any{"ids": []string{"whatever"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	body := "start \"\" \"ElementClient.exe\" startbypatcher game:cpw user:alice pwd:pw role:\r\n"
	if err := os.WriteFile(filepath.Join(dir, "alice.bat"), []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	h := testHandler(t, newStubStore(), "")
	w := doJSON(t, h, http.MethodPost, "/api/scan", map[string]any{"root": dir})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var cands []account.Candidate
	if err := json.Unmarshal(w.Body.Bytes(), &cands); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cands) != 1 || cands[0].Login != "alice" {
		t.Fatalf("candidates %+v", cands)
	}
}

func TestScanMissingRootParam(t *testing.T) {
	h := testHandler(t, newStubStore(), "")
	w := doJSON(t, h, http.MethodPost, "/api/scan", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d", w.Code)
	}
}

func TestLocateNotFound(t *testing.T) {
	h := testHandler(t, newStubStore(), "")
	w := doJSON(t, h, http.MethodGet, "/api/locate?root="+t.TempDir(), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d", w.Code)
	}
}

func TestLocateFound(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "elementclient.exe"), []byte("x"), 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}
	h := testHandler(t, newStubStore(), dir)
	w := doJSON(t, h, http.MethodGet, "/api/locate", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["path"] == "" {
		t.Fatal("empty path in response")
	}
}

func TestAccountsBlanksSecrets(t *testing.T) {
	st := newStubStore(account.Account{ID: "a1", Login: "alice", Secret: "topsecret", Server: account.ServerMain})
	h := testHandler(t, st, "")
	w := doJSON(t, h, http.MethodGet, "/api/accounts", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("topsecret")) {
		t.Fatal("secret leaked in accounts listing")
	}
	var accts []account.Account
	if err := json.Unmarshal(w.Body.Bytes(), &accts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(accts) != 1 || accts[0].Login != "alice" {
		t.Fatalf("accounts %+v", accts)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := testHandler(t, newStubStore(), "")
	w := doJSON(t, h, http.MethodGet, "/api/metrics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
}

func TestSanitizeBase(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"/", ""},
		{"api", "/api"},
		{"/api", "/api"},
		{"/api/", "/api"},
		{"  /api  ", "/api"},
	}
	for _, c := range cases {
		if got := sanitizeBase(c.in); got != c.want {
			t.Fatalf("sanitizeBase(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
