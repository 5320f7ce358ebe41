package api

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/talentscout/internal/screening"
	"github.com/kalambet/talentscout/internal/sessions"
)

func callTool(t *testing.T, h server.ToolHandlerFunc, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestNewMCPServer_RegistersTools(t *testing.T) {
	s := NewMCPServer(MCPDeps{Sessions: newTestManager(t)})
	ctx := context.Background()
	s.HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`))

	resp := s.HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))
	out, err := json.Marshal(resp)
	require.NoError(t, err)
	for _, name := range []string{"start_screening", "send_message", "get_screening", "reset_screening", "export_screening"} {
		assert.Contains(t, string(out), `"name":"`+name+`"`)
	}
}

func TestMCPScreeningFlow(t *testing.T) {
	deps := MCPDeps{Sessions: newTestManager(t)}

	res := callTool(t, mcpStartScreening(deps), "start_screening", nil)
	require.False(t, res.IsError)
	var started sessions.Started
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &started))
	require.NotEmpty(t, started.ID)
	assert.NotEmpty(t, started.Greeting)

	send := mcpSendMessage(deps)
	var reply screening.Reply
	for _, in := range []string{"hi", "Jane Roe"} {
		res = callTool(t, send, "send_message", map[string]any{"session_id": started.ID, "message": in})
		require.False(t, res.IsError, resultText(t, res))
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &reply))
	}
	assert.Equal(t, screening.OutcomeAccepted, reply.Outcome)
	assert.Equal(t, screening.Email, reply.Snapshot.PendingField)

	res = callTool(t, send, "send_message", map[string]any{"session_id": started.ID, "message": "jane-at-example"})
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &reply))
	assert.Equal(t, screening.OutcomeRejected, reply.Outcome)
	require.NotNil(t, reply.Rejection)
	assert.Equal(t, screening.Email, reply.Rejection.Field)

	res = callTool(t, mcpGetScreening(deps), "get_screening", map[string]any{"session_id": started.ID})
	require.False(t, res.IsError)
	var snap screening.Snapshot
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &snap))
	assert.Equal(t, "Jane Roe", snap.CollectedData[screening.FullName])

	res = callTool(t, mcpExportScreening(deps), "export_screening", map[string]any{"session_id": started.ID})
	require.False(t, res.IsError)
	var doc screening.Document
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &doc))
	assert.Equal(t, screening.StatusIncomplete, doc.Metadata.CompletionStatus)
	assert.Equal(t, "Jane Roe", doc.CandidateData.PersonalInfo[screening.FullName])

	res = callTool(t, mcpResetScreening(deps), "reset_screening", map[string]any{"session_id": started.ID})
	require.False(t, res.IsError)
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &started))
	assert.Equal(t, screening.StepGreeting, started.Snapshot.Step)
	assert.Empty(t, started.Snapshot.CollectedData)
}

func TestMCPSendMessage_Errors(t *testing.T) {
	deps := MCPDeps{Sessions: newTestManager(t)}
	send := mcpSendMessage(deps)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing session", map[string]any{"message": "hi"}, "session_id is required"},
		{"missing message", map[string]any{"session_id": "x"}, "message is required"},
		{"unknown session", map[string]any{"session_id": "nope", "message": "hi"}, "screening nope not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, send, "send_message", tt.args)
			assert.True(t, res.IsError)
			assert.Equal(t, tt.want, resultText(t, res))
		})
	}
}

func TestMCPResourceSessions(t *testing.T) {
	deps := MCPDeps{Sessions: newTestManager(t)}
	callTool(t, mcpStartScreening(deps), "start_screening", nil)
	callTool(t, mcpStartScreening(deps), "start_screening", nil)

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "screening://sessions"
	contents, err := mcpResourceSessions(deps)(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "application/json", text.MIMEType)

	var list []sessions.Summary
	require.NoError(t, json.Unmarshal([]byte(text.Text), &list))
	assert.Len(t, list, 2)
}
