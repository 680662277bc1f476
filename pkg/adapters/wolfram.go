package adapters

import (
	"context"
	"log/slog"

	"github.com/rhuss/apiclient/pkg/apicall"
	"github.com/rhuss/apiclient/pkg/wolfram"
)

// wolframQuery queries the knowledge engine with the app id in creds.APIKey.
// A failed query is an answer with Failed set, not an error.
func (o Options) wolframQuery(ctx context.Context, input string, creds apicall.Credentials, cb apicall.Callback) {
	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	pods, err := o.NewWolfram(creds.APIKey).Query(ctx, input)
	if err != nil {
		slog.Warn("wolfram query failed", "input", input, "error", err)
		cb(WolframAnswer{Text: WolframFailed, Failed: true}, nil)
		return
	}
	cb(SelectAnswer(pods), nil)
}

// SelectAnswer returns the first primary pod's text, even when empty.
// Without a primary pod it takes the first pod after the input echo that
// has text.
func SelectAnswer(pods []wolfram.Pod) WolframAnswer {
	for _, p := range pods {
		if p.Primary {
			return WolframAnswer{Text: p.Text()}
		}
	}
	for i := 1; i < len(pods); i++ {
		if text := pods[i].Text(); text != "" {
			return WolframAnswer{Text: text}
		}
	}
	return WolframAnswer{Text: WolframFailed, Failed: true}
}
