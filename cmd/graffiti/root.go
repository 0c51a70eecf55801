package main

import (
	"context"
	"io"
	"os"

	"github.com/rxtech-lab/graffiti-deployer/internal/config"
	"github.com/rxtech-lab/graffiti-deployer/internal/logging"
	"github.com/rxtech-lab/graffiti-deployer/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	configFlag  = "config"
	networkFlag = "network"
	accountFlag = "account"
)

type deployerFunc func(ctx context.Context, cfg *config.Config, stores *server.Stores, network string, account int, logger *zap.Logger) (*server.Deployer, error)

// app carries the flags and the services a command loaded.
type app struct {
	configFile string
	network    string
	account    int

	out         io.Writer
	errOut      io.Writer
	newDeployer deployerFunc

	cfg    *config.Config
	logger *zap.Logger
	stores *server.Stores
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{
		out:         os.Stdout,
		errOut:      os.Stderr,
		newDeployer: server.NewDeployer,
	})
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graffiti",
		Short: "Deploy and mint the Graffiti NFT collection",
		Long: `graffiti uploads the collection artwork to IPFS, deploys the Graffiti VRF consumer
contract and wires it to the randomness oracle of the selected network. Local
networks get a VRF coordinator mock and a funded subscription on every run.`,
		SilenceUsage: true,
	}
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)

	cmd.PersistentFlags().StringVar(&a.configFile, configFlag, "", "optional YAML or JSON config file")
	cmd.PersistentFlags().StringVarP(&a.network, networkFlag, "n", "hardhat", "network name or chain id")
	cmd.PersistentFlags().IntVarP(&a.account, accountFlag, "a", 0, "index of the signing account")

	cmd.AddCommand(
		newDeployCmd(a),
		newUploadCmd(a),
		newMintCmd(a),
		newNetworksCmd(a),
		newDeploymentsCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
		newVersionCmd(a),
	)
	return cmd
}

// load reads the configuration and builds the logger. withStores also opens the database.
func (a *app) load(withStores bool) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger

	if withStores {
		stores, err := server.InitializeStores(cfg)
		if err != nil {
			return err
		}
		a.stores = stores
	}
	return nil
}

func (a *app) close() {
	if a.stores != nil {
		if err := a.stores.Close(); err != nil {
			a.logger.Warn("Failed to close database", zap.Error(err))
		}
		a.stores = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func (a *app) deployer(ctx context.Context, network string, account int) (*server.Deployer, error) {
	return a.newDeployer(ctx, a.cfg, a.stores, network, account, a.logger)
}
