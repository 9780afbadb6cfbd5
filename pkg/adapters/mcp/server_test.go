package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/ticketflow"
	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	eng, err := ticketflow.New()
	require.NoError(t, err)
	return NewServer(eng)
}

// call sends a raw JSON-RPC message and returns the encoded response.
func call(t *testing.T, s *Server, msg string) string {
	t.Helper()
	resp := s.MCPServer().HandleMessage(context.Background(), json.RawMessage(msg))
	require.NotNil(t, resp)
	out, err := json.Marshal(resp)
	require.NoError(t, err)
	return string(out)
}

func TestHandlers_Session(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	step, err := s.handleStep(ctx, mcp.CallToolRequest{}, StepArgs{Symbol: "auth"})
	require.NoError(t, err)
	assert.Equal(t, domain.State("logged_in"), step.Current)

	// Default and explicit sessions are independent.
	other, err := s.handleStep(ctx, mcp.CallToolRequest{}, StepArgs{SessionArgs: SessionArgs{SessionID: "agent-2"}, Symbol: "search"})
	require.NoError(t, err)
	assert.Equal(t, []domain.State{"start", "start"}, other.Trace)

	run, err := s.handleRun(ctx, mcp.CallToolRequest{}, RunArgs{Sequence: "auth select avail_ok choose details pay_fail pay_ok"})
	require.NoError(t, err)
	assert.True(t, run.Accepted)
	assert.Len(t, run.Trace, 8)

	reset, err := s.handleReset(ctx, mcp.CallToolRequest{}, SessionArgs{})
	require.NoError(t, err)
	assert.Equal(t, []domain.State{"start"}, reset.Trace)
}

func TestHandlers_NoSymbol(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleStep(context.Background(), mcp.CallToolRequest{}, StepArgs{Symbol: " "})
	assert.ErrorIs(t, err, domain.ErrNoSymbol)
}

func TestHandlers_Static(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	trail, err := s.handleRandomTrail(ctx, mcp.CallToolRequest{}, struct{}{})
	require.NoError(t, err)
	assert.NotEmpty(t, trail.Seq)

	d, err := s.handleDescribe(ctx, mcp.CallToolRequest{}, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, domain.State("error"), d.Error)

	_, err = s.handleStep(ctx, mcp.CallToolRequest{}, StepArgs{Symbol: "auth"})
	require.NoError(t, err)
	g, err := s.handleGraph(ctx, mcp.CallToolRequest{}, GraphArgs{ErrorEdges: true})
	require.NoError(t, err)
	assert.Contains(t, g.Mermaid, "class logged_in current;")
	assert.Contains(t, g.Mermaid, "-.->")
}

func TestProtocol_ListTools(t *testing.T) {
	out := call(t, newTestServer(t), `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)

	for _, name := range []string{"step", "run", "reset", "random_trail", "describe", "graph"} {
		assert.Contains(t, out, `"name":"`+name+`"`)
	}
}

func TestProtocol_CallTool(t *testing.T) {
	s := newTestServer(t)

	out := call(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"step","arguments":{"session_id":"a","symbol":"auth"}}}`)
	assert.Contains(t, out, `"current":"logged_in"`)
	assert.NotContains(t, out, `"isError":true`)

	out = call(t, s, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"step","arguments":{"session_id":"a","symbol":""}}}`)
	assert.Contains(t, out, `"isError":true`)
	assert.Contains(t, out, "no symbol provided")
}

func TestProtocol_ReadResource(t *testing.T) {
	out := call(t, newTestServer(t), `{"jsonrpc":"2.0","id":4,"method":"resources/read","params":{"uri":"ticketflow://automaton"}}`)

	assert.Contains(t, out, `"uri":"ticketflow://automaton"`)
	assert.Contains(t, out, "ticket_issued")
}
