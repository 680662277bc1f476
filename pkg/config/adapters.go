package config

import (
	"fmt"

	"github.com/rhuss/apiclient/pkg/adapters"
	"github.com/rhuss/apiclient/pkg/apicall"
	"github.com/rhuss/apiclient/pkg/mstranslator"
	"github.com/rhuss/apiclient/pkg/retrieve"
	"github.com/rhuss/apiclient/pkg/wolfram"
)

// AdapterOptions builds the adapter options described by the calls section.
// The retrieval transports and the wolfram and translate clients all go
// through the same proxy and send the same user agent.
func (c *Config) AdapterOptions() (adapters.Options, error) {
	calls := c.Calls

	var topts []retrieve.Option
	if calls.ProxyURL != "" {
		topts = append(topts, retrieve.WithProxy(calls.ProxyURL))
	}
	if calls.UserAgent != "" {
		topts = append(topts, retrieve.WithUserAgent(calls.UserAgent))
	}

	plain, err := retrieve.Plain(topts...)
	if err != nil {
		// Provider endpoints are https; the TLS transport's client is shared.
	sdk := *tls.Client()
	sdk.Timeout = calls.Timeout

	return adapters.Options{}, fmt.Errorf("building plain transport: %w", err)
	}
	tls, err := retrieve.TLS(topts...)
	if err != nil {
		return adapters.Options{}, fmt.Errorf("building TLS transport: %w", err)
	}

	return adapters.Options{
		Plain:          plain,
		TLS:            tls,
		AnagramHost:    calls.Anagram.Host,
		WeatherHost:    calls.Weather.Host,
		YouTubeHost:    calls.YouTube.Host,
		SocketHosts:    calls.SocketLookup.AllowedHosts,
		Timeout:        calls.Timeout,
		YouTubeTimeout: calls.YouTubeTimeout,
		NewWolfram: func(appID string) adapters.WolframClient {
			return wolfram.NewClient(appID, calls.Wolfram.BaseURL, calls.Timeout).WithHTTPClient(&sdk)
		},
		NewTranslator: func(creds apicall.Credentials) adapters.Translator {
			return mstranslator.NewClient(mstranslator.Config{
				ClientID:     creds.ClientID,
				ClientSecret: creds.ClientSecret,
				TokenURL:     calls.Translate.TokenURL,
				BaseURL:      calls.Translate.BaseURL,
				Scope:        calls.Translate.Scope,
				Timeout:      calls.Timeout,
			}).WithHTTPClient(&sdk)
		},
	}, nil
}
