package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/graffiti-deployer/internal/config"
	"github.com/rxtech-lab/graffiti-deployer/internal/models"
	"github.com/rxtech-lab/graffiti-deployer/internal/utils"
)

func NewListNetworksTool(networks *config.NetworkTable) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("list_networks",
		mcp.WithDescription("List the networks the Graffiti NFT can be deployed to, with their VRF oracle parameters and mint fee."),
		mcp.WithString("network",
			mcp.Description("Network name or chain id to show. Leave empty to list all networks"),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		list := networks.List()
		if identifier := request.GetString("network", ""); identifier != "" {
			network, err := networks.Lookup(identifier)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
			}
			list = []models.NetworkConfig{network}
		}

		var result []map[string]any
		for _, network := range list {
			result = append(result, map[string]any{
				"name":               network.Name,
				"chain_id":           network.ChainID,
				"development":        config.IsDevelopment(network),
				"rpc_configured":     network.RPCURL != "",
				"vrf_coordinator":    network.VRFCoordinator,
				"subscription_id":    network.SubscriptionID,
				"gas_lane":           network.GasLane,
				"callback_gas_limit": network.CallbackGasLimit,
				"mint_fee":           utils.FormatEther(network.MintFee),
				"confirmations":      network.Confirmations(),
			})
		}

		return jsonResult("Networks: ", map[string]any{
			"networks": result,
			"total":    len(result),
		})
	}

	return tool, handler
}
