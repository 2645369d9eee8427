package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestVerifyAuthCodeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/ext_auth/verify_auth_code" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req struct {
			Code string `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Code != "magic-code" {
			t.Errorf("code = %q", req.Code)
		}
		_ = json.NewEncoder(w).Encode(Identity{UserID: 42, Username: "alice"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	id, err := c.VerifyAuthCode(context.Background(), "magic-code")
	if err != nil {
		t.Fatalf("VerifyAuthCode: %v", err)
	}
	if id.UserID != 42 || id.Username != "alice" {
		t.Fatalf("identity = %+v", id)
	}
}

func TestVerifyAuthCodeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "expired code"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.VerifyAuthCode(context.Background(), "stale")
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("got %v, want ErrRejected", err)
	}
}

func TestVerifyAuthCodeRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(Identity{UserID: 7, Username: "bob"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetry(3), WithTimeout(2*time.Second))
	id, err := c.VerifyAuthCode(context.Background(), "code")
	if err != nil {
		t.Fatalf("VerifyAuthCode: %v", err)
	}
	if id.UserID != 7 {
		t.Fatalf("identity = %+v", id)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestVerifyAuthCodeGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetry(2), WithTimeout(time.Second))
	if _, err := c.VerifyAuthCode(context.Background(), "code"); err == nil {
		t.Fatal("expected error after exhausted retries")
	}
}
