package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/rhuss/apiclient/pkg/apicall"
	"github.com/rhuss/apiclient/pkg/debug"
	"github.com/rhuss/apiclient/pkg/retrieve"
)

// youtubeParts are the videos.list parts requested for a lookup.
const youtubeParts = "id,snippet,contentDetails,status"

// youtubeLookup validates a video id against the YouTube Data API.
func (o Options) youtubeLookup(ctx context.Context, input string, creds apicall.Credentials, cb apicall.Callback) {
	host, port := endpoint(o.YouTubeHost)
	if port == 0 {
		port = 443
	}
	d := retrieve.Descriptor{
		Host:    host,
		Port:    port,
		Path:    "/youtube/v3/videos?part=" + youtubeParts + "&id=" + url.QueryEscape(input) + "&key=" + url.QueryEscape(creds.APIKey),
		Method:  http.MethodGet,
		Timeout: o.YouTubeTimeout,
	}

	retrieve.Retrieve(ctx, o.TLS, d, func(status int, body string, err error) {
		if err != nil {
			cb(nil, err)
			return
		}
		if status != http.StatusOK {
			cb(VideoLookup{StatusCode: status}, nil)
			return
		}

		res, err := parseVideos(body)
		if err != nil {
			cb(nil, err)
			return
		}
		cb(res, nil)
	})
}

// parseVideos requires the document to declare exactly one result.
func parseVideos(body string) (VideoLookup, error) {
	if !gjson.Valid(body) {
		return VideoLookup{}, fmt.Errorf("youtubelookup: response is not valid JSON")
	}

	total := gjson.Get(body, "pageInfo.totalResults")
	item := gjson.Get(body, "items.0")
	if total.Int() != 1 || !item.Exists() {
		debug.Log(debug.Adapters, "video not found", "total_results", total.Int())
		return VideoLookup{Failure: VideoNotFound}, nil
	}

	return VideoLookup{
		Found: true,
		Video: &Video{
			ID:             item.Get("id").String(),
			ContentDetails: rawJSON(item.Get("contentDetails")),
			Status:         rawJSON(item.Get("status")),
		},
	}, nil
}

func rawJSON(r gjson.Result) json.RawMessage {
	if !r.Exists() {
		return nil
	}
	return json.RawMessage(r.Raw)
}
