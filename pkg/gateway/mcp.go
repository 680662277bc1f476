package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rhuss/apiclient/pkg/apicall"
	"github.com/rhuss/apiclient/pkg/debug"
)

// ToolInput is the argument object of every call tool.
type ToolInput struct {
	Input string `json:"input" jsonschema:"the call input, for example a location, a video id or a query"`
}

// toolDescriptions documents the built-in calls. Unknown names get a
// generic description.
var toolDescriptions = map[string]string{
	"anagram":       "Find an anagram of the input text",
	"weather":       "Current conditions for a location such as \"New York US\" or \"10001\"",
	"forecast":      "Current conditions and forecast for a location",
	"translate":     "Translate text; prefix with [to] or [from>to] to pick languages",
	"youtubelookup": "Validate a YouTube video id and return its details",
	"socketlookup":  "Look up the socket URL advertised by a server",
	"wolfram":       "Ask WolframAlpha a question",
}

// NewMCPServer registers one tool per dispatcher call name. Call failures
// are returned as tool errors rather than protocol errors.
func NewMCPServer(d *apicall.Dispatcher, cfg Config, version string) *mcp.Server {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	server := mcp.NewServer(&mcp.Implementation{Name: "apiclient", Version: version}, nil)

	for _, name := range d.Names() {
		desc, ok := toolDescriptions[name]
		if !ok {
			desc = fmt.Sprintf("Run the %s call", name)
		}

		mcp.AddTool(server, &mcp.Tool{Name: name, Description: desc},
			func(ctx context.Context, _ *mcp.CallToolRequest, in ToolInput) (*mcp.CallToolResult, any, error) {
				ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
				defer cancel()

				debug.Log(debug.MCP, "tool call", "call", name)
				res, err := d.Call(ctx, name, in.Input, cfg.Credentials[name])
				if err != nil {
					return toolError(err.Error()), nil, nil
				}

				data, err := json.Marshal(res)
				if err != nil {
					return toolError(fmt.Sprintf("encoding result: %v", err)), nil, nil
				}
				return &mcp.CallToolResult{
					Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
				}, nil, nil
			})
	}
	return server
}

// MCPHandler serves server over streamable HTTP.
func MCPHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}

func toolError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}
