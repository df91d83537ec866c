package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/unowned-ai/moalif/pkg/books"
)

func stringArg(request mcp.CallToolRequest, name string) (string, bool) {
	s, ok := request.Params.Arguments[name].(string)
	return s, ok
}

// requiredString returns the argument or a ready-made error result.
func requiredString(request mcp.CallToolRequest, name string) (string, *mcp.CallToolResult) {
	s, ok := stringArg(request, name)
	if !ok || s == "" {
		return "", mcp.NewToolResultError(fmt.Sprintf("'%s' parameter is required and must be a non-empty string.", name))
	}
	return s, nil
}

// optionalString returns nil when the argument was not supplied.
func optionalString(request mcp.CallToolRequest, name string) *string {
	if s, ok := stringArg(request, name); ok {
		return &s
	}
	return nil
}

// intArg accepts JSON numbers, which arrive as float64.
func intArg(request mcp.CallToolRequest, name string) (int, bool) {
	switch v := request.Params.Arguments[name].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func boolArg(request mcp.CallToolRequest, name string, def bool) bool {
	if b, ok := request.Params.Arguments[name].(bool); ok {
		return b
	}
	return def
}

func jsonResult(v any, what string) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize %s to JSON: %v", what, err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// bookError turns a repository error into a tool error result.
func bookError(action string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, books.ErrBookNotFound),
		errors.Is(err, books.ErrChapterNotFound),
		errors.Is(err, books.ErrPageNotFound),
		errors.Is(err, books.ErrEmptyTitle),
		errors.Is(err, books.ErrInvalidStyle):
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", action, err))
}
