package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestAPIClientDefaults(t *testing.T) {
	c := NewAPIClient("", 0)
	if c.baseURL != "http://127.0.0.1:7817/api" {
		t.Fatalf("base url %q", c.baseURL)
	}
	if c.client.Timeout != 10*time.Second {
		t.Fatalf("timeout %v", c.client.Timeout)
	}
}

func TestAPIClientLaunch(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/launch" {
			t.Errorf("path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL+"/api", time.Second)
	if err := c.Launch([]string{"a1", "a2"}, "/games/pw", 20); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if got["root"] != "/games/pw" {
		t.Fatalf("root %v", got["root"])
	}
	if got["delay_seconds"] != float64(20) {
		t.Fatalf("delay %v", got["delay_seconds"])
	}
}

func TestAPIClientErrorSurface(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"unknown account id: nope"}`))
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL+"/api", time.Second)
	err := c.Launch([]string{"nope"}, "", 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "unknown account id") {
		t.Fatalf("error should carry the server message: %v", err)
	}
}

func TestAPIClientStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"account_id":"a1","login":"alice","pid":42}]`))
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL+"/api", time.Second)
	rows, err := c.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(rows) != 1 || rows[0]["login"] != "alice" {
		t.Fatalf("rows %+v", rows)
	}
}

func TestAPIClientUnreachable(t *testing.T) {
	c := NewAPIClient("http://127.0.0.1:1/api", 200*time.Millisecond)
	if c.IsReachable() {
		t.Fatal("closed port must not be reachable")
	}
}

func TestAPIClientReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()
	c := NewAPIClient(srv.URL+"/api", time.Second)
	if !c.IsReachable() {
		t.Fatal("test server must be reachable")
	}
}
