package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/graffiti-deployer/internal/config"
	"github.com/rxtech-lab/graffiti-deployer/internal/services"
	"github.com/rxtech-lab/graffiti-deployer/internal/tools"
)

type MCPServer struct {
	server *server.MCPServer
}

func NewMCPServer(cfg *config.Config, deployments services.DeploymentService, factory tools.DeployerFactory, version string) *MCPServer {
	mcpServer := &MCPServer{}
	mcpServer.InitializeTools(cfg, deployments, factory, version)
	return mcpServer
}

func (s *MCPServer) InitializeTools(cfg *config.Config, deployments services.DeploymentService, factory tools.DeployerFactory, version string) {
	srv := server.NewMCPServer(
		"Graffiti Deployer",
		version,
		server.WithToolCapabilities(true),
	)

	srv.AddPrompt(mcp.NewPrompt("graffiti-deployer-usage",
		mcp.WithPromptDescription("Instructions for deploying and minting the Graffiti NFT"),
		mcp.WithArgument("tool_category",
			mcp.ArgumentDescription("Category of tools to get instructions for (network, deployment, mint, or all)"),
			mcp.RequiredArgument(),
		),
	), func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		category := request.Params.Arguments["tool_category"]
		if category == "" {
			return nil, fmt.Errorf("tool_category is required")
		}

		return mcp.NewGetPromptResult(
			fmt.Sprintf("Graffiti Deployer Tools - %s", category),
			[]mcp.PromptMessage{
				mcp.NewPromptMessage(
					mcp.RoleUser,
					mcp.NewTextContent(getToolInstructions(category)),
				),
			},
		), nil
	})

	// Network Tools
	listNetworksTool, listNetworksHandler := tools.NewListNetworksTool(cfg.Networks)
	srv.AddTool(listNetworksTool, listNetworksHandler)

	// Deployment Tools
	listDeploymentsTool, listDeploymentsHandler := tools.NewListDeploymentsTool(deployments)
	srv.AddTool(listDeploymentsTool, listDeploymentsHandler)

	deployTool, deployHandler := tools.NewDeployGraffitiTool(cfg, factory)
	srv.AddTool(deployTool, deployHandler)

	// Mint Tools
	mintTool, mintHandler := tools.NewMintGraffitiTool(factory)
	srv.AddTool(mintTool, mintHandler)

	s.server = srv
}

func getToolInstructions(category string) string {
	switch category {
	case "network":
		return `Network Tools:

1. list_networks - List configured networks
   Usage: Check which networks are development networks (local VRF mock) and which use a real
   VRF subscription, and whether an RPC endpoint is configured`

	case "deployment":
		return `Deployment Tools:

1. deploy_graffiti - Deploy the Graffiti NFT contract
   Usage: Pass the network. Token URIs come from a Pinata upload, the token_uris argument, or
   the last uploaded batch, in that order

2. list_deployments - List recorded deployments
   Usage: Filter by status, contract_name or run_id`

	case "mint":
		return `Mint Tools:

1. mint_graffiti - Mint a random Graffiti NFT
   Usage: Pass the network and optionally the contract address. Development networks return
   the minted token; public networks return the pending request id`

	case "all":
		return `Graffiti Deployer MCP Tools Overview:

NETWORK (1 tool):
- list_networks: Show network parameters

DEPLOYMENT (2 tools):
- deploy_graffiti: Deploy the Graffiti contract
- list_deployments: View recorded deployments

MINT (1 tool):
- mint_graffiti: Mint a random Graffiti NFT

Transactions are signed with the configured PRIVATE_KEY, or with the well-known development
accounts on local networks.`

	default:
		return `Invalid category. Available categories: network, deployment, mint, all`
	}
}

func (s *MCPServer) Start() error {
	return server.ServeStdio(s.server)
}

// Server returns the underlying MCP server.
func (s *MCPServer) Server() *server.MCPServer {
	return s.server
}
