package wolfram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const okBody = `{
  "queryresult": {
    "success": true,
    "error": false,
    "pods": [
      {"title": "Input", "id": "Input", "subpods": [{"title": "", "plaintext": "6 * 7"}]},
      {"title": "Result", "id": "Result", "primary": true, "subpods": [{"title": "", "plaintext": "42"}]},
      {"title": "Number name", "id": "NumberName", "subpods": []}
    ]
  }
}`

func TestQuery(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"appid":  q.Get("appid"),
			"input":  q.Get("input"),
			"output": q.Get("output"),
		}
		w.Write([]byte(okBody))
	}))
	defer srv.Close()

	pods, err := NewClient("APPID", srv.URL, 0).Query(context.Background(), "6*7")
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}

	if gotQuery["appid"] != "APPID" || gotQuery["input"] != "6*7" || gotQuery["output"] != "json" {
		t.Errorf("query params = %v", gotQuery)
	}
	if len(pods) != 3 {
		t.Fatalf("got %d pods, want 3", len(pods))
	}
	if !pods[1].Primary || pods[1].Text() != "42" {
		t.Errorf("pods[1] = %+v", pods[1])
	}
	if pods[0].Primary {
		t.Error("pods[0] must not be primary")
	}
	if pods[2].Text() != "" {
		t.Errorf("pod without subpods Text() = %q", pods[2].Text())
	}
}

func TestParsePods_Failures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"queryresult":`},
		{"missing queryresult", `{"other": {}}`},
		{"error object", `{"queryresult": {"success": false, "error": {"code": "1", "msg": "Invalid appid"}}}`},
		{"error flag", `{"queryresult": {"success": true, "error": true}}`},
		{"no success", `{"queryresult": {"success": false, "error": false}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parsePods([]byte(tt.body))
			if !errors.Is(err, ErrQueryFailed) {
				t.Errorf("parsePods() error = %v, want ErrQueryFailed", err)
			}
		})
	}
}

func TestQuery_HTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewClient("x", srv.URL, 0).Query(context.Background(), "pi")
	if !errors.Is(err, ErrQueryFailed) {
		t.Errorf("Query() error = %v, want ErrQueryFailed", err)
	}
}
