package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rxtech-lab/graffiti-deployer/internal/api"
	"github.com/rxtech-lab/graffiti-deployer/internal/mcp"
	"github.com/rxtech-lab/graffiti-deployer/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// graffiti serve
func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only deployment API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(true); err != nil {
				return err
			}
			defer a.close()

			apiServer := api.NewAPIServer(a.cfg.Networks, a.stores.Deployments, a.stores.Assets, a.cfg.IPFSGateway, a.logger)
			port, err := apiServer.Start(addr)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "API server listening on port %d\n", port)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			a.logger.Info("Shutting down API server")
			return apiServer.Shutdown()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address, empty for a random port")
	return cmd
}

// graffiti mcp
func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio",
		Long: `The mcp command exposes list_networks, list_deployments, deploy_graffiti and
mint_graffiti to an MCP client over stdin and stdout. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.load(true); err != nil {
				return err
			}
			defer a.close()

			factory := func(ctx context.Context, network string, account int) (*server.Deployer, error) {
				return a.deployer(ctx, network, account)
			}
			mcpServer := mcp.NewMCPServer(a.cfg, a.stores.Deployments, factory, Version)
			a.logger.Info("MCP server ready", zap.String("version", Version))
			return mcpServer.Start()
		},
	}
}

// graffiti version
func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.out, "Graffiti Deployer\nVersion: %s\nCommit: %s\nBuilt: %s\n", Version, CommitHash, BuildTime)
		},
	}
}
