package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/graffiti-deployer/internal/config"
	"github.com/rxtech-lab/graffiti-deployer/internal/models"
	"github.com/rxtech-lab/graffiti-deployer/internal/server"
)

func NewDeployGraffitiTool(cfg *config.Config, factory DeployerFactory) (mcp.Tool, mcpserver.ToolHandlerFunc) {
	tool := mcp.NewTool("deploy_graffiti",
		mcp.WithDescription("Deploy the Graffiti NFT contract. On development networks a VRF coordinator mock and a funded subscription are provisioned and the contract is registered as consumer; on public networks the source is verified when an explorer API key is configured."),
		mcp.WithString("network",
			mcp.Required(),
			mcp.Description("Network name or chain id, e.g. hardhat or sepolia"),
		),
		mcp.WithNumber("account",
			mcp.Description("Index of the signing account among the configured private keys (default: 0)"),
		),
		mcp.WithBoolean("upload_to_pinata",
			mcp.Description("Upload the images and metadata before deploying. Defaults to UPLOAD_TO_PINATA"),
		),
		mcp.WithString("token_uris",
			mcp.Description("Comma separated token URIs for the three breeds, used when not uploading"),
		),
		mcp.WithString("upload_failure_policy",
			mcp.Description("What to do when an upload fails: abort, skip or placeholder"),
			mcp.Enum(string(models.UploadFailureAbort), string(models.UploadFailureSkip), string(models.UploadFailurePlaceholder)),
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

		deployRequest := server.DeployRequest(cfg, deployer.Network)
		deployRequest.UploadToPinata = request.GetBool("upload_to_pinata", cfg.UploadToPinata)
		if raw := request.GetString("token_uris", ""); raw != "" {
			deployRequest.TokenURIs = nil
			for _, uri := range strings.Split(raw, ",") {
				deployRequest.TokenURIs = append(deployRequest.TokenURIs, strings.TrimSpace(uri))
			}
			// explicit URIs win over the configured upload unless the caller asks for both
			if _, ok := request.GetArguments()["upload_to_pinata"]; !ok {
				deployRequest.UploadToPinata = false
			}
		}
		if raw := request.GetString("upload_failure_policy", ""); raw != "" {
			policy, err := models.ParseUploadFailurePolicy(raw)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			deployRequest.Policy = policy
		}

		report, err := deployer.Deploy.Deploy(ctx, deployRequest)
		if err != nil {
			if report != nil {
				result, _ := jsonResult("Deployment failed after the contract was deployed: ", report)
				result.IsError = true
				result.Content = append(result.Content, mcp.NewTextContent(err.Error()))
				return result, nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("Deployment failed: %v", err)), nil
		}
		return jsonResult("Graffiti deployed: ", report)
	}

	return tool, handler
}
