// Package mstranslator is a minimal client for the Microsoft Translator
// Ajax API.
//
// A translation is a two-step exchange: Token acquires a short-lived access
// token with the OAuth2 client credentials grant, and Translate sends the
// text with that token.
package mstranslator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	// DefaultTokenURL issues access tokens for the translator scope.
	DefaultTokenURL = "https://datamarket.accesscontrol.windows.net/v2/OAuth2-13"

	// DefaultBaseURL is the Ajax service root.
	DefaultBaseURL = "https://api.microsofttranslator.com/V2/Ajax.svc"

	// DefaultScope is requested with every token.
	DefaultScope = "http://api.microsofttranslator.com"
)

var (
	// ErrToken is returned when no access token could be acquired.
	ErrToken = errors.New("acquiring translator token")

	// ErrTranslate is returned when the service rejects a translation.
	ErrTranslate = errors.New("translation failed")
)

// Config holds the client credentials and endpoints.
type Config struct {
	ClientID     string
	ClientSecret string

	// TokenURL, BaseURL and Scope default to the production values.
	TokenURL string
	BaseURL  string
	Scope    string

	Timeout time.Duration
}

// Query is one translation request. An empty From lets the service detect
// the source language.
type Query struct {
	Text string
	From string
	To   string
}

// Client talks to the translator service.
type Client struct {
	httpClient *http.Client
	token      clientcredentials.Config
	baseURL    string
}

// NewClient creates a Client from cfg.
func NewClient(cfg Config) *Client {
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Scope == "" {
		cfg.Scope = DefaultScope
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		token: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       []string{cfg.Scope},
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// WithHTTPClient replaces the HTTP client used for both steps and returns c.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// Token acquires a fresh access token. Tokens are not cached.
func (c *Client) Token(ctx context.Context) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.token.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrToken, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrToken)
	}
	return tok.AccessToken, nil
}

// Translate translates q using token and returns the translated text.
func (c *Client) Translate(ctx context.Context, token string, q Query) (string, error) {
	params := url.Values{
		"appId":       {"Bearer " + token},
		"text":        {q.Text},
		"to":          {q.To},
		"contentType": {"text/plain"},
	}
	if q.From != "" {
		params.Set("from", q.From)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/Translate?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating translate request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling translator: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading translator response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrTranslate, resp.StatusCode)
	}

	return decodeText(body)
}

// decodeText unwraps the JSON string payload. The service prefixes it with
// a UTF-8 byte order mark.
func decodeText(body []byte) (string, error) {
	body = bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))
	res := gjson.ParseBytes(bytes.TrimSpace(body))
	if res.Type != gjson.String {
		return "", fmt.Errorf("%w: unexpected payload %q", ErrTranslate, string(body))
	}

	text := res.String()
	// Service faults come back as plain strings.
	for _, prefix := range []string{"ArgumentException:", "ArgumentOutOfRangeException:", "TranslateApiException:"} {
		if strings.HasPrefix(text, prefix) {
			return "", fmt.Errorf("%w: %s", ErrTranslate, text)
		}
	}
	return text, nil
}
