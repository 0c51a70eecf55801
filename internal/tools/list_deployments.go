package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/graffiti-deployer/internal/models"
	"github.com/rxtech-lab/graffiti-deployer/internal/services"
)

func NewListDeploymentsTool(deployments services.DeploymentService) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("list_deployments",
		mcp.WithDescription("List recorded contract deployments, newest first, with pagination and filtering by status, contract or run."),
		mcp.WithString("status",
			mcp.Description("Filter by deployment status (pending, confirmed, failed). Leave empty to get all deployments"),
		),
		mcp.WithString("contract_name",
			mcp.Description("Filter by contract name (Graffiti, VRFCoordinatorV2Mock)"),
		),
		mcp.WithString("run_id",
			mcp.Description("Only deployments made by this deployment run"),
		),
		mcp.WithNumber("page",
			mcp.Description("Page number for pagination (default: 1)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Number of deployments per page (default: 10, max: 100)"),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		status := request.GetString("status", "")
		contractName := request.GetString("contract_name", "")
		runID := request.GetString("run_id", "")

		page := request.GetInt("page", 1)
		if page < 1 {
			page = 1
		}
		limit := request.GetInt("limit", 10)
		if limit < 1 {
			limit = 10
		}
		if limit > 100 {
			limit = 100
		}

		var (
			records []models.Deployment
			err     error
		)
		if runID != "" {
			records, err = deployments.ListDeploymentsByRun(runID)
		} else {
			records, err = deployments.ListDeployments()
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error retrieving deployments: %v", err)), nil
		}

		filtered := []models.Deployment{}
		for _, record := range records {
			if status != "" && string(record.Status) != status {
				continue
			}
			if contractName != "" && record.ContractName != contractName {
				continue
			}
			filtered = append(filtered, record)
		}

		// Calculate pagination
		totalCount := len(filtered)
		totalPages := (totalCount + limit - 1) / limit
		start := min((page-1)*limit, totalCount)
		end := min(start+limit, totalCount)

		return jsonResult("Deployments list: ", map[string]any{
			"deployments": filtered[start:end],
			"pagination": map[string]any{
				"current_page": page,
				"total_pages":  totalPages,
				"page_size":    limit,
				"total_count":  totalCount,
				"has_next":     page < totalPages,
				"has_previous": page > 1,
			},
		})
	}

	return tool, handler
}
