package capability

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// MCPInvoker exposes the tools of an MCP server as assistant capabilities:
// each capability name maps to a tool of the same name.
type MCPInvoker struct {
	endpoint string

	mu     sync.Mutex
	client *client.Client
}

// NewMCPInvoker creates an MCPInvoker for a streamable-HTTP MCP endpoint.
// The connection is established lazily on first invocation.
func NewMCPInvoker(endpoint string) *MCPInvoker {
	return &MCPInvoker{endpoint: endpoint}
}

// connect initializes the MCP session once.
func (m *MCPInvoker) connect(ctx context.Context) (*client.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		return m.client, nil
	}

	c, err := client.NewStreamableHttpClient(m.endpoint)
	if err != nil {
		return nil, fmt.Errorf("create MCP client: %w", err)
	}
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("start MCP client: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "assistant-engine",
		Version: "0.1.0",
	}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		return nil, fmt.Errorf("initialize MCP session: %w", err)
	}

	m.client = c
	return c, nil
}

// Invoke implements Invoker.
func (m *MCPInvoker) Invoke(ctx context.Context, capability string, args map[string]any) (*Result, error) {
	c, err := m.connect(ctx)
	if err != nil {
		return Failure(fmt.Sprintf("network error reaching MCP server: %v", err)), nil
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = capability
	req.Params.Arguments = args

	res, err := c.CallTool(ctx, req)
	if err != nil {
		return Failure(fmt.Sprintf("MCP tool call failed: %v", err)), nil
	}

	text := flattenContent(res.Content)
	if res.IsError {
		return Failure(text), nil
	}
	return Successful(text), nil
}

// flattenContent joins the textual parts of a tool result.
func flattenContent(content []mcp.Content) string {
	var parts []string
	for _, c := range content {
		if tc, ok := mcp.AsTextContent(c); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
