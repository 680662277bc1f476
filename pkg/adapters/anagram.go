package adapters

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/rhuss/apiclient/pkg/apicall"
	"github.com/rhuss/apiclient/pkg/debug"
	"github.com/rhuss/apiclient/pkg/retrieve"
)

var anagramPattern = regexp.MustCompile(`.*<span class="black-18">'(.*)'</span>`)

// anagram asks anagramgenius.com for an anagram of input. The status code
// is not inspected; a body without the result span is ErrNoMatch.
func (o Options) anagram(ctx context.Context, input string, _ apicall.Credentials, cb apicall.Callback) {
	host, port := endpoint(o.AnagramHost)
	d := retrieve.Descriptor{
		Host:    host,
		Port:    port,
		Path:    "/server.php?source_text=" + escapeText(input) + "&vulgar=1",
		Timeout: o.Timeout,
	}

	retrieve.Retrieve(ctx, o.Plain, d, func(status int, body string, err error) {
		if err != nil {
			cb(nil, err)
			return
		}
		m := anagramPattern.FindStringSubmatch(body)
		if m == nil {
			debug.Log(debug.Adapters, "anagram pattern not found", "status", status, "bytes", len(body))
			cb(nil, fmt.Errorf("anagram: %w", ErrNoMatch))
			return
		}
		cb(AnagramResult{Anagram: m[1], Match: m}, nil)
	})
}

// escapeText escapes free text for a query value, using %20 for spaces.
func escapeText(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
