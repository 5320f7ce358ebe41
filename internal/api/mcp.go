package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/talentscout/internal/sessions"
	"github.com/kalambet/talentscout/internal/storage"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Sessions *sessions.Manager
	Version  string
}

// NewMCPServer creates an MCP server exposing screening sessions as tools.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	s := server.NewMCPServer(
		"talentscout",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("TalentScout runs scripted candidate screenings: start one, relay the candidate's messages, then export the result."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("start_screening",
			mcp.WithDescription("Start a new candidate screening. Returns the session id and the greeting to show the candidate."),
		),
		mcpStartScreening(deps),
	)

	s.AddTool(
		mcp.NewTool("send_message",
			mcp.WithDescription("Relay one candidate message to a screening and return the assistant's reply with the updated state."),
			mcp.WithString("session_id", mcp.Description("Screening session id"), mcp.Required()),
			mcp.WithString("message", mcp.Description("The candidate's message"), mcp.Required()),
		),
		mcpSendMessage(deps),
	)

	s.AddTool(
		mcp.NewTool("get_screening",
			mcp.WithDescription("Return the current state of a screening: step, pending field, collected data and answers."),
			mcp.WithString("session_id", mcp.Description("Screening session id"), mcp.Required()),
		),
		mcpGetScreening(deps),
	)

	s.AddTool(
		mcp.NewTool("reset_screening",
			mcp.WithDescription("Restart a screening from the greeting, discarding everything collected."),
			mcp.WithString("session_id", mcp.Description("Screening session id"), mcp.Required()),
		),
		mcpResetScreening(deps),
	)

	s.AddTool(
		mcp.NewTool("export_screening",
			mcp.WithDescription("Export a screening as the JSON document handed to the recruitment team."),
			mcp.WithString("session_id", mcp.Description("Screening session id"), mcp.Required()),
		),
		mcpExportScreening(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"screening://sessions",
			"Screening Sessions",
			mcp.WithResourceDescription("The 20 most recently active screenings"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceSessions(deps),
	)

	return s
}

func mcpStartScreening(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		started, err := deps.Sessions.Start(ctx)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to start screening: %v", err)), nil
		}
		return mcpJSON(started), nil
	}
}

func mcpSendMessage(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("session_id")
		if err != nil {
			return mcpError("session_id is required"), nil
		}
		msg, err := req.RequireString("message")
		if err != nil {
			return mcpError("message is required"), nil
		}
		if len([]rune(msg)) > 4000 {
			return mcpError("message must be at most 4000 characters"), nil
		}

		reply, err := deps.Sessions.Send(ctx, id, msg)
		if err != nil {
			return mcpSessionError(id, err), nil
		}
		return mcpJSON(reply), nil
	}
}

func mcpGetScreening(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("session_id")
		if err != nil {
			return mcpError("session_id is required"), nil
		}
		snap, err := deps.Sessions.Get(ctx, id)
		if err != nil {
			return mcpSessionError(id, err), nil
		}
		return mcpJSON(snap), nil
	}
}

func mcpResetScreening(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("session_id")
		if err != nil {
			return mcpError("session_id is required"), nil
		}
		started, err := deps.Sessions.Reset(ctx, id)
		if err != nil {
			return mcpSessionError(id, err), nil
		}
		return mcpJSON(started), nil
	}
}

func mcpExportScreening(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("session_id")
		if err != nil {
			return mcpError("session_id is required"), nil
		}
		doc, err := deps.Sessions.Export(ctx, id)
		if err != nil {
			return mcpSessionError(id, err), nil
		}
		return mcpJSON(doc), nil
	}
}

func mcpResourceSessions(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		list, err := deps.Sessions.List(ctx, 20)
		if err != nil {
			return nil, fmt.Errorf("failed to list sessions: %w", err)
		}
		b, err := json.Marshal(list)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal sessions: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpSessionError(id string, err error) *mcp.CallToolResult {
	if errors.Is(err, storage.ErrNotFound) {
		return mcpError(fmt.Sprintf("screening %s not found", id))
	}
	return mcpError(fmt.Sprintf("screening %s: %v", id, err))
}

func mcpJSON(v any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err))
	}
	return mcpText(string(b))
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
