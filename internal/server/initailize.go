package server

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rxtech-lab/graffiti-deployer/internal/config"
	"github.com/rxtech-lab/graffiti-deployer/internal/constants"
	"github.com/rxtech-lab/graffiti-deployer/internal/deployerr"
	"github.com/rxtech-lab/graffiti-deployer/internal/etherscan"
	"github.com/rxtech-lab/graffiti-deployer/internal/hooks"
	"github.com/rxtech-lab/graffiti-deployer/internal/models"
	"github.com/rxtech-lab/graffiti-deployer/internal/pinata"
	"github.com/rxtech-lab/graffiti-deployer/internal/services"
	"github.com/rxtech-lab/graffiti-deployer/internal/utils"
	"go.uber.org/zap"
)

// Stores are the services that only need the database.
type Stores struct {
	DB          services.DBService
	Deployments services.DeploymentService
	Assets      services.AssetService
}

func InitializeStores(cfg *config.Config) (*Stores, error) {
	db, err := services.NewDBService(cfg.DatabaseURL, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	return &Stores{
		DB:          db,
		Deployments: services.NewDeploymentService(db.GetDB()),
		Assets:      services.NewAssetService(db.GetDB()),
	}, nil
}

func (s *Stores) Close() error {
	return s.DB.Close()
}

// InitializeMetadataService returns nil when no Pinata credentials are configured.
func InitializeMetadataService(cfg *config.Config, assets services.AssetService, logger *zap.Logger) (services.MetadataService, error) {
	if !cfg.HasPinataCredentials() {
		return nil, nil
	}
	client, err := pinata.NewClient(pinata.Config{
		APIKey:    cfg.PinataAPIKey,
		APISecret: cfg.PinataAPISecret,
		BaseURL:   cfg.PinataBaseURL,
	})
	if err != nil {
		return nil, deployerr.New(deployerr.ConfigMissing, "pinata client", err)
	}
	return services.NewMetadataService(pinata.NewUploader(client, logger), assets, logger), nil
}

// Deployer bundles the chain bound services for one network and signer.
type Deployer struct {
	Network models.NetworkConfig
	Evm     services.EvmService
	Deploy  services.DeployService
	Mint    services.MintService

	deployments  services.DeploymentService
	ipfsGateway  string
	closeBackend func()
}

func (d *Deployer) Close() {
	if d.closeBackend != nil {
		d.closeBackend()
	}
}

// NewDeployer dials the network's RPC endpoint and wires the deployment services for it.
// account selects the signer among the configured private keys.
func NewDeployer(ctx context.Context, cfg *config.Config, stores *Stores, networkID string, account int, logger *zap.Logger) (*Deployer, error) {
	network, err := cfg.Networks.Lookup(networkID)
	if err != nil {
		return nil, err
	}
	if network.RPCURL == "" {
		return nil, deployerr.Newf(deployerr.ConfigMissing, "network %s has no rpc url; set %s_RPC_URL", network.Name, network.Name)
	}

	key, err := SignerKey(cfg, network, account)
	if err != nil {
		return nil, err
	}

	client, err := ethclient.DialContext(ctx, network.RPCURL)
	if err != nil {
		return nil, deployerr.New(deployerr.DeployFailed, "connect to "+network.Name, err)
	}

	deployer, err := NewDeployerWithBackend(cfg, stores, network, client, key, logger)
	if err != nil {
		client.Close()
		return nil, err
	}
	deployer.closeBackend = client.Close
	return deployer, nil
}

// NewDeployerWithBackend wires the deployment services on an existing chain connection.
func NewDeployerWithBackend(cfg *config.Config, stores *Stores, network models.NetworkConfig, backend services.Backend, key *ecdsa.PrivateKey, logger *zap.Logger) (*Deployer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("network", network.Name))

	evm, err := services.NewEvmService(backend, key, new(big.Int).SetUint64(network.ChainID), logger)
	if err != nil {
		return nil, err
	}

	metadata, err := InitializeMetadataService(cfg, stores.Assets, logger)
	if err != nil {
		return nil, err
	}

	hookService, err := InitializeHooks(cfg, evm, stores.Deployments, logger)
	if err != nil {
		return nil, err
	}

	return &Deployer{
		Network: network,
		Evm:     evm,
		Deploy: services.NewDeployService(
			evm,
			services.NewNetworkService(network, evm, stores.Deployments, logger),
			metadata,
			stores.Assets,
			stores.Deployments,
			hookService,
			logger,
		),
		Mint:        services.NewMintService(evm, logger),
		deployments: stores.Deployments,
		ipfsGateway: cfg.IPFSGateway,
	}, nil
}

// InitializeHooks registers the post-deploy hooks in the order they must run.
func InitializeHooks(cfg *config.Config, evm services.EvmService, deployments services.DeploymentService, logger *zap.Logger) (services.HookService, error) {
	hookService := services.NewHookService(logger)

	registered := []services.Hook{hooks.NewConsumerRegistrationHook(evm, logger)}
	if cfg.EtherscanAPIKey != "" {
		client, err := etherscan.NewClient(etherscan.Config{APIKey: cfg.EtherscanAPIKey, BaseURL: cfg.EtherscanBaseURL})
		if err != nil {
			return nil, deployerr.New(deployerr.ConfigMissing, "etherscan client", err)
		}
		registered = append(registered, hooks.NewVerificationHook(client, etherscan.WaitOptions{}, logger))
	} else {
		logger.Debug("ETHERSCAN_API_KEY not set, source verification disabled")
	}
	registered = append(registered, hooks.NewDeploymentRecordHook(deployments))

	for _, hook := range registered {
		if err := hookService.AddHook(hook); err != nil {
			return nil, fmt.Errorf("failed to register %s hook: %w", hook.Name(), err)
		}
	}
	return hookService, nil
}

// SignerKey picks the signing key for account. Development networks fall back to the
// well-known local accounts when no PRIVATE_KEY is configured.
func SignerKey(cfg *config.Config, network models.NetworkConfig, account int) (*ecdsa.PrivateKey, error) {
	keys := cfg.PrivateKeys
	if len(keys) == 0 && config.IsDevelopment(network) {
		keys = constants.DevPrivateKeys
	}
	if len(keys) == 0 {
		return nil, deployerr.Newf(deployerr.ConfigMissing, "PRIVATE_KEY is required on %s", network.Name)
	}
	if account < 0 || account >= len(keys) {
		return nil, deployerr.Newf(deployerr.ConfigMissing, "account %d out of range, %d keys configured", account, len(keys))
	}

	key, err := utils.PrivateKeyFromHex(keys[account])
	if err != nil {
		return nil, deployerr.New(deployerr.ConfigMissing, fmt.Sprintf("private key %d", account), err)
	}
	return key, nil
}

// DeployRequest builds the deployment request the configuration describes for network.
func DeployRequest(cfg *config.Config, network models.NetworkConfig) services.DeployRequest {
	return services.DeployRequest{
		Network:        network,
		UploadToPinata: cfg.UploadToPinata,
		ImagesPath:     cfg.ImagesPath,
		Policy:         cfg.UploadFailurePolicy,
		PlaceholderURI: cfg.PlaceholderTokenURI,
		TokenURIs:      cfg.TokenURIs,
	}
}
