package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rhuss/apiclient/pkg/apicall"
	"github.com/rhuss/apiclient/pkg/mstranslator"
)

// defaultTarget is used when the input names no target language.
const defaultTarget = "en"

// translate acquires a token and then translates with it. A failure at
// either step is logged and reported through the callback.
func (o Options) translate(ctx context.Context, input string, creds apicall.Credentials, cb apicall.Callback) {
	q, err := ParseTranslation(input)
	if err != nil {
		cb(nil, err)
		return
	}

	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	client := o.NewTranslator(creds)
	token, err := client.Token(ctx)
	if err != nil {
		slog.Error("translator token request failed", "error", err)
		cb(nil, err)
		return
	}

	text, err := client.Translate(ctx, token, q)
	if err != nil {
		slog.Error("translation failed", "from", q.From, "to", q.To, "error", err)
		cb(nil, err)
		return
	}
	cb(Translation{Text: text, From: q.From, To: q.To}, nil)
}

// ParseTranslation reads "[from>to] text", "[to] text" or plain "text".
// Plain text targets English with the source language detected.
func ParseTranslation(input string) (mstranslator.Query, error) {
	s := strings.TrimSpace(input)
	q := mstranslator.Query{To: defaultTarget}

	if strings.HasPrefix(s, "[") {
		end := strings.Index(s, "]")
		if end < 0 {
			return q, fmt.Errorf("%w: unterminated language tag in %q", ErrInvalidInput, input)
		}
		tag := strings.TrimSpace(s[1:end])
		s = strings.TrimSpace(s[end+1:])

		from, to, hasFrom := strings.Cut(tag, ">")
		if !hasFrom {
			to, from = from, ""
		}
		from, to = strings.TrimSpace(from), strings.TrimSpace(to)
		if to == "" {
			return q, fmt.Errorf("%w: missing target language in %q", ErrInvalidInput, input)
		}
		q.From, q.To = from, to
	}

	if s == "" {
		return q, fmt.Errorf("%w: nothing to translate", ErrInvalidInput)
	}
	q.Text = s
	return q, nil
}
