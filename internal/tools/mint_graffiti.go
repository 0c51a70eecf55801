package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func NewMintGraffitiTool(factory DeployerFactory) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("mint_graffiti",
		mcp.WithDescription("Mint a random Graffiti NFT by paying the contract's mint fee. On development networks the randomness request is fulfilled immediately and the minted token is returned; on public networks the request id is returned and the oracle mints later."),
		mcp.WithString("network",
			mcp.Required(),
			mcp.Description("Network name or chain id"),
		),
		mcp.WithString("contract_address",
			mcp.Description("Graffiti contract to mint from. Defaults to the latest confirmed deployment on the network"),
		),
		mcp.WithNumber("account",
			mcp.Description("Index of the minting account among the configured private keys (default: 0)"),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		networkID, err := request.RequireString("network")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		deployer, err := factory(ctx, networkID, request.GetInt("account", 0))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error connecting to %s: %v", networkID, err)), nil
		}
		defer deployer.Close()

		outcome, err := deployer.MintGraffiti(ctx, request.GetString("contract_address", ""))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Mint failed: %v", err)), nil
		}
		if outcome.Pending {
			return jsonResult("Mint requested, waiting for the VRF oracle: ", outcome)
		}
		return jsonResult("Graffiti minted: ", outcome)
	}

	return tool, handler
}
