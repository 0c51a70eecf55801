package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rxtech-lab/graffiti-deployer/internal/contracts"
	"github.com/rxtech-lab/graffiti-deployer/internal/deployerr"
	"github.com/rxtech-lab/graffiti-deployer/internal/models"
	"github.com/rxtech-lab/graffiti-deployer/internal/utils"
	"go.uber.org/zap"
)

type DeployRequest struct {
	Network        models.NetworkConfig
	UploadToPinata bool
	ImagesPath     string
	Policy         models.UploadFailurePolicy
	PlaceholderURI string
	// TokenURIs is used when uploading is disabled. When empty the last uploaded batch is used.
	TokenURIs  []string
	OnProgress func(done, total int, file string)
}

type DeployReport struct {
	RunID              string   `json:"run_id"`
	Network            string   `json:"network"`
	ChainID            uint64   `json:"chain_id"`
	TokenURIs          []string `json:"token_uris"`
	VRFCoordinator     string   `json:"vrf_coordinator"`
	SubscriptionID     uint64   `json:"subscription_id"`
	ContractAddress    string   `json:"contract_address"`
	TransactionHash    string   `json:"transaction_hash"`
	DeploymentID       uint     `json:"deployment_id"`
	ConsumerRegistered bool     `json:"consumer_registered"`
	Verified           bool     `json:"verified"`
	Warnings           []string `json:"warnings,omitempty"`
}

// DeployService runs one deployment: token URIs, network resolution, contract deployment and
// post-deploy hooks, each once and in that order.
type DeployService interface {
	Deploy(ctx context.Context, request DeployRequest) (*DeployReport, error)
}

type deployService struct {
	evm         EvmService
	networks    NetworkService
	metadata    MetadataService
	assets      AssetService
	deployments DeploymentService
	hooks       HookService
	logger      *zap.Logger
}

// NewDeployService wires the orchestrator. metadata may be nil when uploading is not configured.
func NewDeployService(
	evm EvmService,
	networks NetworkService,
	metadata MetadataService,
	assets AssetService,
	deployments DeploymentService,
	hooks HookService,
	logger *zap.Logger,
) DeployService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &deployService{
		evm:         evm,
		networks:    networks,
		metadata:    metadata,
		assets:      assets,
		deployments: deployments,
		hooks:       hooks,
		logger:      logger,
	}
}

func (s *deployService) Deploy(ctx context.Context, request DeployRequest) (*DeployReport, error) {
	report := &DeployReport{
		RunID:   uuid.NewString(),
		Network: request.Network.Name,
		ChainID: request.Network.ChainID,
	}
	logger := s.logger.With(zap.String("run", report.RunID), zap.String("network", request.Network.Name))

	if err := s.checkChainID(ctx, request.Network); err != nil {
		return nil, err
	}

	tokenURIs, warnings, err := s.tokenURIs(ctx, request)
	if err != nil {
		return nil, err
	}
	report.TokenURIs = tokenURIs
	for _, warning := range warnings {
		report.Warnings = append(report.Warnings, warning.Error())
	}

	resolved, err := s.networks.Resolve(ctx, report.RunID, request.Network)
	if err != nil {
		return nil, err
	}
	report.VRFCoordinator = resolved.VRFCoordinator.Hex()
	report.SubscriptionID = resolved.SubscriptionID

	args := models.NewDeploymentArgs(resolved, tokenURIs)
	if err := args.Validate(); err != nil {
		return nil, deployerr.New(deployerr.ConfigMissing, "deployment arguments", err)
	}
	if len(tokenURIs) != contracts.GraffitiTokenURICount {
		return nil, deployerr.Newf(deployerr.ConfigMissing, "%s needs exactly %d token URIs, got %d",
			contracts.GraffitiContractName, contracts.GraffitiTokenURICount, len(tokenURIs))
	}

	record, err := s.recordPending(report.RunID, request.Network, args)
	if err != nil {
		return nil, err
	}
	report.DeploymentID = record.ID

	logger.Info("Deploying Graffiti",
		zap.String("coordinator", report.VRFCoordinator),
		zap.Uint64("subscriptionId", resolved.SubscriptionID),
	)
	result, err := s.evm.DeployContract(ctx, DeployContractArgs{
		ContractName:    contracts.GraffitiContractName,
		ConstructorArgs: args.Values(),
		Confirmations:   request.Network.Confirmations(),
	})
	if err != nil {
		_ = s.deployments.MarkDeploymentFailed(record.ID, err.Error())
		return nil, deployerr.New(deployerr.DeployFailed, "deploy "+contracts.GraffitiContractName, err)
	}
	report.ContractAddress = result.Address.Hex()
	report.TransactionHash = result.TransactionHash.Hex()

	if err := s.deployments.UpdateDeploymentStatus(record.ID, models.TransactionStatusConfirmed, report.ContractAddress, report.TransactionHash); err != nil {
		return nil, fmt.Errorf("failed to update deployment record: %w", err)
	}

	event := &DeploymentEvent{
		RunID:        report.RunID,
		DeploymentID: record.ID,
		Network:      request.Network,
		Resolved:     resolved,
		Contract:     result,
	}
	hookWarnings, err := s.hooks.OnContractDeployed(ctx, event)
	report.ConsumerRegistered = event.ConsumerRegistered
	report.Verified = event.Verified
	for _, warning := range hookWarnings {
		report.Warnings = append(report.Warnings, warning.Error())
	}
	if err != nil {
		_ = s.deployments.MarkDeploymentFailed(record.ID, err.Error())
		return report, err
	}

	logger.Info("Deployment finished",
		zap.String("address", report.ContractAddress),
		zap.Bool("consumerRegistered", report.ConsumerRegistered),
		zap.Bool("verified", report.Verified),
		zap.Int("warnings", len(report.Warnings)),
	)
	return report, nil
}

func (s *deployService) checkChainID(ctx context.Context, network models.NetworkConfig) error {
	chainID, err := s.evm.ChainID(ctx)
	if err != nil {
		return deployerr.New(deployerr.DeployFailed, "read chain id", err)
	}
	if !chainID.IsUint64() || chainID.Uint64() != network.ChainID {
		return deployerr.Newf(deployerr.ConfigMissing, "rpc endpoint serves chain %s, network %s expects %d", chainID, network.Name, network.ChainID)
	}
	return nil
}

// tokenURIs uploads the assets when enabled, otherwise falls back to the configured list and
// then to the last uploaded batch.
func (s *deployService) tokenURIs(ctx context.Context, request DeployRequest) ([]string, []error, error) {
	if request.UploadToPinata {
		if s.metadata == nil {
			return nil, nil, deployerr.Newf(deployerr.ConfigMissing, "uploading is enabled but pinata is not configured")
		}
		result, err := s.metadata.PrepareMetadata(ctx, PrepareMetadataArgs{
			ImagesPath:     request.ImagesPath,
			Policy:         request.Policy,
			PlaceholderURI: request.PlaceholderURI,
			OnProgress:     request.OnProgress,
		})
		if err != nil {
			return nil, nil, err
		}
		return result.TokenURIs, result.Failures, nil
	}

	if len(request.TokenURIs) > 0 {
		return request.TokenURIs, nil, nil
	}

	if s.assets != nil {
		batch, err := s.assets.LatestBatch()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load last upload batch: %w", err)
		}
		if uris := BatchTokenURIs(batch); len(uris) > 0 {
			s.logger.Info("Using token URIs from the last upload", zap.String("batch", batch[0].BatchID))
			return uris, nil, nil
		}
	}
	return nil, nil, deployerr.Newf(deployerr.ConfigMissing, "no token URIs: enable UPLOAD_TO_PINATA or set TOKEN_URIS")
}

func (s *deployService) recordPending(runID string, network models.NetworkConfig, args models.DeploymentArgs) (*models.Deployment, error) {
	artifact, err := contracts.GetArtifact(contracts.GraffitiContractName)
	if err != nil {
		return nil, deployerr.New(deployerr.DeployFailed, "compile "+contracts.GraffitiContractName, err)
	}
	constructorArgs, err := utils.EncodeFunctionArgsToStringMap("constructor", args.Values(), artifact.ABI)
	if err != nil {
		return nil, err
	}

	record := &models.Deployment{
		RunID:           runID,
		ContractName:    contracts.GraffitiContractName,
		NetworkName:     network.Name,
		ChainID:         network.ChainID,
		DeployerAddress: s.evm.From().Hex(),
		VRFCoordinator:  args.VRFCoordinator.Hex(),
		SubscriptionID:  args.SubscriptionID,
		TokenURIs:       models.StringList(args.TokenURIs),
		ConstructorArgs: models.JSON(constructorArgs),
		Status:          models.TransactionStatusPending,
	}
	if err := s.deployments.CreateDeployment(record); err != nil {
		return nil, fmt.Errorf("failed to record deployment: %w", err)
	}
	return record, nil
}
