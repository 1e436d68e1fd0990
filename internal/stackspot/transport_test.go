package stackspot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// newTokenServer returns an IDM stub that counts exchanges and hands out
// sequential tokens: token-1, token-2, ...
func newTokenServer(t *testing.T, exchanges *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing token form: %v", err)
		}
		if got := r.FormValue("grant_type"); got != "client_credentials" {
			t.Errorf("grant_type = %q, want client_credentials", got)
		}
		n := exchanges.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if n == 1 {
			w.Write([]byte(`{"access_token": "token-1"}`))
		} else {
			w.Write([]byte(`{"access_token": "token-2"}`))
		}
	}))
}

func testCredentials() Credentials {
	return Credentials{ClientID: "client", ClientSecret: "secret", Realm: "zup"}
}

func TestTransport_AcquiresTokenLazily(t *testing.T) {
	var exchanges atomic.Int32
	idm := newTokenServer(t, &exchanges)
	defer idm.Close()

	var sawBearer string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawBearer = r.Header.Get("Authorization")
		w.Write([]byte(`{"ok": true}`))
	}))
	defer api.Close()

	transport := NewTransport(testCredentials(), WithAPIBaseURL(api.URL), WithIDMBaseURL(idm.URL))

	if exchanges.Load() != 0 {
		t.Error("token acquired before first request")
	}

	body, status, err := transport.Do(context.Background(), http.MethodGet, "/v1/thing", nil)
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if string(body) != `{"ok": true}` {
		t.Errorf("body = %q", body)
	}
	if sawBearer != "Bearer token-1" {
		t.Errorf("Authorization = %q, want Bearer token-1", sawBearer)
	}
	if exchanges.Load() != 1 {
		t.Errorf("token exchanges = %d, want 1", exchanges.Load())
	}
}

func TestTransport_MissingIdentity(t *testing.T) {
	transport := NewTransport(Credentials{})

	_, _, err := transport.Do(context.Background(), http.MethodGet, "/v1/thing", nil)

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError, got %v", err)
	}
}

func TestTransport_ReacquiresTokenOnceOn401(t *testing.T) {
	var exchanges atomic.Int32
	idm := newTokenServer(t, &exchanges)
	defer idm.Close()

	var calls atomic.Int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-2" {
			t.Errorf("retry Authorization = %q, want Bearer token-2", got)
		}
		w.Write([]byte(`{}`))
	}))
	defer api.Close()

	transport := NewTransport(testCredentials(), WithAPIBaseURL(api.URL), WithIDMBaseURL(idm.URL))

	_, status, err := transport.Do(context.Background(), http.MethodGet, "/v1/thing", nil)
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if exchanges.Load() != 2 {
		t.Errorf("token exchanges = %d, want 2 (initial + one refresh)", exchanges.Load())
	}
	if calls.Load() != 2 {
		t.Errorf("api calls = %d, want 2", calls.Load())
	}
}

func TestTransport_SecondAuthFailureSurfacesAuthError(t *testing.T) {
	var exchanges atomic.Int32
	idm := newTokenServer(t, &exchanges)
	defer idm.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer api.Close()

	transport := NewTransport(testCredentials(), WithAPIBaseURL(api.URL), WithIDMBaseURL(idm.URL))

	_, _, err := transport.Do(context.Background(), http.MethodGet, "/v1/thing", nil)

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError after second 401, got %v", err)
	}
	// Initial acquisition plus exactly one reactive refresh, no loop.
	if exchanges.Load() != 2 {
		t.Errorf("token exchanges = %d, want 2", exchanges.Load())
	}
}

func TestTransport_HTTPStatusError(t *testing.T) {
	var exchanges atomic.Int32
	idm := newTokenServer(t, &exchanges)
	defer idm.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer api.Close()

	transport := NewTransport(testCredentials(), WithAPIBaseURL(api.URL), WithIDMBaseURL(idm.URL))

	_, status, err := transport.Do(context.Background(), http.MethodGet, "/v1/thing", nil)
	if status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", status)
	}

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
	if te.Kind != TransportHTTPStatus {
		t.Errorf("kind = %v, want TransportHTTPStatus", te.Kind)
	}
	if !te.Transient() {
		t.Error("5xx should be transient")
	}
}

func TestTransport_UnreachableIDM(t *testing.T) {
	transport := NewTransport(testCredentials(),
		WithIDMBaseURL("http://127.0.0.1:1"), WithAPIBaseURL("http://127.0.0.1:1"))

	err := transport.AcquireToken(context.Background())

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError for unreachable exchange, got %v", err)
	}
}

func TestTransportError_Transient(t *testing.T) {
	tests := []struct {
		name string
		err  TransportError
		want bool
	}{
		{"timeout", TransportError{Kind: TransportTimeout}, true},
		{"network", TransportError{Kind: TransportNetwork}, true},
		{"404 not indexed yet", TransportError{Kind: TransportHTTPStatus, Status: 404}, true},
		{"503", TransportError{Kind: TransportHTTPStatus, Status: 503}, true},
		{"400", TransportError{Kind: TransportHTTPStatus, Status: 400}, false},
		{"409", TransportError{Kind: TransportHTTPStatus, Status: 409}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Transient(); got != tt.want {
				t.Errorf("Transient() = %v, want %v", got, tt.want)
			}
		})
	}
}
