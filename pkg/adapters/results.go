package adapters

import "encoding/json"

// AnagramResult holds the pattern match from the anagram page. Match is the
// full submatch slice; Anagram is its captured group.
type AnagramResult struct {
	Anagram string   `json:"anagram"`
	Match   []string `json:"match"`
}

// Call implements apicall.Result.
func (AnagramResult) Call() string { return Anagram }

// WeatherReport passes the provider body through unparsed.
type WeatherReport struct {
	Kind       string `json:"kind"`
	StatusCode int    `json:"status_code"`
	Body       string `json:"body"`
}

// Call implements apicall.Result.
func (r WeatherReport) Call() string { return r.Kind }

// SocketConfig is the socket URL advertised by a server.
type SocketConfig struct {
	URL string `json:"url"`
}

// Call implements apicall.Result.
func (SocketConfig) Call() string { return SocketLookup }

// Video is the subset of a videos.list item reported to callers.
type Video struct {
	ID             string          `json:"id"`
	ContentDetails json.RawMessage `json:"contentDetails,omitempty"`
	Status         json.RawMessage `json:"status,omitempty"`
}

// VideoNotFound is the failure reported when the lookup does not resolve to
// exactly one video.
const VideoNotFound = "Video not found"

// VideoLookup is the outcome of a video lookup. Exactly one of the cases
// applies: Found with Video, a non-200 StatusCode, or a Failure message.
type VideoLookup struct {
	Found      bool   `json:"found"`
	StatusCode int    `json:"status_code,omitempty"`
	Failure    string `json:"failure,omitempty"`
	Video      *Video `json:"video,omitempty"`
}

// Call implements apicall.Result.
func (VideoLookup) Call() string { return YouTubeLookup }

// WolframFailed is the text reported when no pod qualifies.
const WolframFailed = "WolframAlpha query failed"

// WolframAnswer is the chosen answer text, or WolframFailed.
type WolframAnswer struct {
	Text   string `json:"text"`
	Failed bool   `json:"failed,omitempty"`
}

// Call implements apicall.Result.
func (WolframAnswer) Call() string { return Wolfram }

// Translation is a translated text with the languages that were requested.
type Translation struct {
	Text string `json:"text"`
	From string `json:"from,omitempty"`
	To   string `json:"to"`
}

// Call implements apicall.Result.
func (Translation) Call() string { return Translate }
