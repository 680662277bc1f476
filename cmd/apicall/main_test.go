package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rhuss/apiclient/pkg/apicall"
)

// writeConfig writes a config file pointing the anagram call at host.
func writeConfig(t *testing.T, host string) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "apicall.yaml")
	content := "calls:\n  timeout: 2s\n  anagram:\n    host: " + host + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_Anagram(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("source_text"); got != "astronomer" {
			t.Errorf("source_text = %q", got)
		}
		w.Write([]byte(`<span class="black-18">'moon starer'</span>`))
	}))
	defer srv.Close()
	u, _ := url.Parse(srv.URL)

	var out bytes.Buffer
	err := run(context.Background(), []string{"--config", writeConfig(t, u.Host), "anagram", "astronomer"}, &out)
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if !strings.Contains(out.String(), `"anagram": "moon starer"`) {
		t.Errorf("output = %s", out.String())
	}
}

func TestRun_List(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"--config", writeConfig(t, "localhost"), "--list"}, &out); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	for _, name := range []string{"anagram", "weather", "wolfram", "youtubelookup"} {
		if !strings.Contains(out.String(), name) {
			t.Errorf("--list output missing %s:\n%s", name, out.String())
		}
	}
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer
	cfg := writeConfig(t, "localhost")

	if err := run(context.Background(), []string{"--config", cfg}, &out); err == nil {
		t.Error("missing call name should fail")
	}
	if err := run(context.Background(), []string{"--config", cfg, "horoscope", "leo"}, &out); !errors.Is(err, apicall.ErrUnknownCall) {
		t.Errorf("unknown call error = %v, want ErrUnknownCall", err)
	}
}
