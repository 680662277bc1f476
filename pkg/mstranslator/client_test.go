package mstranslator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newService serves both the token endpoint and the Ajax Translate endpoint.
func newService(t *testing.T, translateBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing token form: %v", err)
		}
		if r.PostForm.Get("client_id") != "id" || r.PostForm.Get("client_secret") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		if r.PostForm.Get("scope") != DefaultScope {
			t.Errorf("scope = %q", r.PostForm.Get("scope"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-1","token_type":"bearer","expires_in":600}`))
	})
	mux.HandleFunc("GET /Translate", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("appId") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if q.Get("text") != "hello world" || q.Get("to") != "de" || q.Get("from") != "en" {
			t.Errorf("translate params = %v", q)
		}
		w.Write([]byte(translateBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server, secret string) *Client {
	return NewClient(Config{
		ClientID:     "id",
		ClientSecret: secret,
		TokenURL:     srv.URL + "/token",
		BaseURL:      srv.URL,
	})
}

func TestTokenAndTranslate(t *testing.T) {
	srv := newService(t, "\xef\xbb\xbf\"Hallo Welt\"")
	c := newTestClient(srv, "secret")

	tok, err := c.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error: %v", err)
	}
	if tok != "tok-1" {
		t.Errorf("Token() = %q, want tok-1", tok)
	}

	text, err := c.Translate(context.Background(), tok, Query{Text: "hello world", From: "en", To: "de"})
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if text != "Hallo Welt" {
		t.Errorf("Translate() = %q, want Hallo Welt", text)
	}
}

func TestToken_BadCredentials(t *testing.T) {
	srv := newService(t, `""`)

	_, err := newTestClient(srv, "wrong").Token(context.Background())
	if !errors.Is(err, ErrToken) {
		t.Errorf("Token() error = %v, want ErrToken", err)
	}
}

func TestTranslate_Rejected(t *testing.T) {
	srv := newService(t, `""`)

	_, err := newTestClient(srv, "secret").Translate(context.Background(), "stale", Query{Text: "hello world", From: "en", To: "de"})
	if !errors.Is(err, ErrTranslate) {
		t.Errorf("Translate() error = %v, want ErrTranslate", err)
	}
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"plain string", `"Bonjour"`, "Bonjour", false},
		{"bom prefixed", "\xef\xbb\xbf\"Hola\"", "Hola", false},
		{"escaped", `"café"`, "café", false},
		{"not a string", `{"a":1}`, "", true},
		{"service fault", `"ArgumentException: Invalid appId"`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeText([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeText() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("decodeText() = %q, want %q", got, tt.want)
			}
		})
	}
}
