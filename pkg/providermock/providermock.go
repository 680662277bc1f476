// Package providermock serves deterministic stand-ins for every provider
// the built-in adapters talk to. It backs the mock-providers command and
// the integration tests.
//
// Behavior is driven by the request content:
//   - anagram: the answer is the source text reversed
//   - weather/forecast: api key "badkey" yields a keynotfound error document
//   - youtube: video id "missing" yields zero results, no key yields 400
//   - wolfram: input "fail" yields success=false
//   - translate: any non-empty client credentials get token "mock-token"
package providermock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Token is the access token issued by the mock token endpoint.
const Token = "mock-token"

// SocketURL is the IO_URL advertised by /sioconfig.
const SocketURL = "http://localhost:8880"

// Handler returns a mux serving all provider endpoints.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /server.php", handleAnagram)
	mux.HandleFunc("GET /api/{key}/conditions/q/{location...}", handleWeather(false))
	mux.HandleFunc("GET /api/{key}/conditions/forecast/q/{location...}", handleWeather(true))
	mux.HandleFunc("GET /sioconfig", handleSocketConfig)
	mux.HandleFunc("GET /youtube/v3/videos", handleVideos)
	mux.HandleFunc("GET /v2/query", handleWolfram)
	mux.HandleFunc("POST /token", handleToken)
	mux.HandleFunc("GET /Translate", handleTranslate)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	return mux
}

func handleAnagram(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("source_text")
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, "<html><body>\n<span class=\"black-18\">'%s'</span>\n</body></html>", reverse(text))
}

func handleWeather(forecast bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loc := strings.TrimSuffix(r.PathValue("location"), ".json")
		if r.PathValue("key") == "badkey" {
			writeJSON(w, http.StatusOK, map[string]any{
				"response": map[string]any{
					"error": map[string]string{"type": "keynotfound", "description": "this key does not exist"},
				},
			})
			return
		}

		doc := map[string]any{
			"current_observation": map[string]any{
				"display_location": map[string]string{"full": loc},
				"weather":          "Clear",
				"temp_c":           21,
			},
		}
		if forecast {
			doc["forecast"] = map[string]any{
				"txt_forecast": map[string]any{"forecastday": []map[string]string{
					{"title": "Tonight", "fcttext_metric": "Clear. Low 12C."},
				}},
			}
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func handleSocketConfig(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	fmt.Fprintf(w, "var DEFAULT_SOCKET=0;var IO_URL='%s';", SocketURL)
}

func handleVideos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("key") == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{"code": 400, "message": "The request is missing a valid API key."},
		})
		return
	}

	id := q.Get("id")
	if id == "missing" || id == "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"pageInfo": map[string]int{"totalResults": 0, "resultsPerPage": 0},
			"items":    []any{},
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pageInfo": map[string]int{"totalResults": 1, "resultsPerPage": 1},
		"items": []map[string]any{{
			"id":             id,
			"snippet":        map[string]string{"title": "Mock video " + id},
			"contentDetails": map[string]string{"duration": "PT3M33S"},
			"status":         map[string]any{"embeddable": true, "privacyStatus": "public"},
		}},
	})
}

func handleWolfram(w http.ResponseWriter, r *http.Request) {
	input := r.URL.Query().Get("input")
	if input == "fail" {
		writeJSON(w, http.StatusOK, map[string]any{
			"queryresult": map[string]any{"success": false, "error": false, "numpods": 0},
		})
		return
	}

	pod := func(id string, primary bool, text string) map[string]any {
		return map[string]any{
			"id":      id,
			"title":   id,
			"primary": primary,
			"subpods": []map[string]string{{"title": "", "plaintext": text}},
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"queryresult": map[string]any{
			"success": true,
			"error":   false,
			"pods": []any{
				pod("Input", false, input),
				pod("Result", true, "mock answer for "+input),
			},
		},
	})
}

func handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("client_id") == "" || r.PostForm.Get("client_secret") == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_client"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": Token,
		"token_type":   "bearer",
		"expires_in":   600,
	})
}

func handleTranslate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var text string
	if q.Get("appId") != "Bearer "+Token {
		text = "ArgumentException: The incoming token has expired."
	} else {
		text = "[" + q.Get("to") + "] " + q.Get("text")
	}

	body, _ := json.Marshal(text)
	w.Header().Set("Content-Type", "application/x-javascript; charset=utf-8")
	w.Write(append([]byte("\xef\xbb\xbf"), body...))
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
