// Package wolfram is a minimal client for the WolframAlpha v2 query API.
//
// Queries are issued with output=json and decoded with gjson so that the
// pod list can be walked without mirroring the full result schema.
package wolfram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the production query endpoint.
const DefaultBaseURL = "http://api.wolframalpha.com/v2/query"

// ErrQueryFailed is returned when the engine reports success=false or error.
var ErrQueryFailed = errors.New("wolfram query failed")

// Pod is one answer section of a query result.
type Pod struct {
	ID      string
	Title   string
	Primary bool
	Subpods []Subpod
}

// Subpod carries the plaintext rendering of part of a pod.
type Subpod struct {
	Title     string
	Plaintext string
}

// Text returns the plaintext of the first subpod, or "".
func (p Pod) Text() string {
	if len(p.Subpods) == 0 {
		return ""
	}
	return p.Subpods[0].Plaintext
}

// Client queries WolframAlpha with a fixed app id.
type Client struct {
	httpClient *http.Client
	baseURL    string
	appID      string
}

// NewClient creates a Client. An empty baseURL selects DefaultBaseURL.
func NewClient(appID, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		appID:      appID,
	}
}

// WithHTTPClient replaces the underlying HTTP client and returns c.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// Query runs input and returns the pods in result order.
func (c *Client) Query(ctx context.Context, input string) ([]Pod, error) {
	params := url.Values{
		"appid":  {c.appID},
		"input":  {input},
		"format": {"plaintext"},
		"output": {"json"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating query request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying wolfram: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading wolfram response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrQueryFailed, resp.StatusCode)
	}

	return parsePods(body)
}

// parsePods decodes the queryresult document.
func parsePods(body []byte) ([]Pod, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: response is not valid JSON", ErrQueryFailed)
	}

	qr := gjson.GetBytes(body, "queryresult")
	if !qr.Exists() {
		return nil, fmt.Errorf("%w: missing queryresult", ErrQueryFailed)
	}

	// error is either a boolean or an object with code and msg.
	if e := qr.Get("error"); e.IsObject() {
		return nil, fmt.Errorf("%w: %s", ErrQueryFailed, e.Get("msg").String())
	} else if e.Bool() {
		return nil, fmt.Errorf("%w: engine reported an error", ErrQueryFailed)
	}
	if !qr.Get("success").Bool() {
		return nil, fmt.Errorf("%w: no interpretation", ErrQueryFailed)
	}

	var pods []Pod
	qr.Get("pods").ForEach(func(_, p gjson.Result) bool {
		pod := Pod{
			ID:      p.Get("id").String(),
			Title:   p.Get("title").String(),
			Primary: p.Get("primary").Bool(),
		}
		p.Get("subpods").ForEach(func(_, s gjson.Result) bool {
			pod.Subpods = append(pod.Subpods, Subpod{
				Title:     s.Get("title").String(),
				Plaintext: s.Get("plaintext").String(),
			})
			return true
		})
		pods = append(pods, pod)
		return true
	})
	return pods, nil
}
