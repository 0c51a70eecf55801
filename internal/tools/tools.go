package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rxtech-lab/graffiti-deployer/internal/server"
)

// DeployerFactory connects to a network with the signer at account.
type DeployerFactory func(ctx context.Context, network string, account int) (*server.Deployer, error)

func jsonResult(title string, value any) (*mcp.CallToolResult, error) {
	body, err := json.Marshal(value)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error encoding result: %v", err)), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(title),
			mcp.NewTextContent(string(body)),
		},
	}, nil
}
