package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rxtech-lab/graffiti-deployer/internal/config"
	"github.com/rxtech-lab/graffiti-deployer/internal/constants"
	"github.com/rxtech-lab/graffiti-deployer/internal/contracts"
	"github.com/rxtech-lab/graffiti-deployer/internal/deployerr"
	"github.com/rxtech-lab/graffiti-deployer/internal/models"
	"github.com/rxtech-lab/graffiti-deployer/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NetworkService resolves the oracle parameters a deployment needs on a network.
type NetworkService interface {
	Resolve(ctx context.Context, runID string, network models.NetworkConfig) (models.ResolvedNetwork, error)
}

// NewNetworkService picks the provisioning strategy for the network once: development networks
// get a local VRF mock and a fresh funded subscription, all others use the static table.
func NewNetworkService(network models.NetworkConfig, evm EvmService, deployments DeploymentService, logger *zap.Logger) NetworkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.IsDevelopment(network) {
		return &ephemeralNetworkService{evm: evm, deployments: deployments, logger: logger}
	}
	return &persistentNetworkService{}
}

type persistentNetworkService struct{}

func (s *persistentNetworkService) Resolve(_ context.Context, _ string, network models.NetworkConfig) (models.ResolvedNetwork, error) {
	resolved := models.ResolvedNetwork{
		Network:          network,
		SubscriptionID:   network.SubscriptionID,
		CallbackGasLimit: network.CallbackGasLimit,
		MintFee:          network.MintFee,
	}
	if utils.IsValidEthereumAddress(network.VRFCoordinator) {
		resolved.VRFCoordinator = common.HexToAddress(network.VRFCoordinator)
	}
	if utils.IsValidHash32(network.GasLane) {
		resolved.GasLane = common.HexToHash(network.GasLane)
	}

	if missing := resolved.Missing(); len(missing) > 0 {
		return models.ResolvedNetwork{}, deployerr.Newf(deployerr.ConfigMissing, "network %s is missing %v", network.Name, missing)
	}
	return resolved, nil
}

type ephemeralNetworkService struct {
	evm         EvmService
	deployments DeploymentService
	logger      *zap.Logger
}

func (s *ephemeralNetworkService) Resolve(ctx context.Context, runID string, network models.NetworkConfig) (models.ResolvedNetwork, error) {
	if !utils.IsValidHash32(network.GasLane) || network.CallbackGasLimit == 0 || network.MintFee == nil {
		return models.ResolvedNetwork{}, deployerr.Newf(deployerr.ConfigMissing, "network %s needs gas_lane, callback_gas_limit and mint_fee", network.Name)
	}

	coordinator, err := s.coordinator(ctx, runID, network)
	if err != nil {
		return models.ResolvedNetwork{}, err
	}

	subscriptionID, err := s.createSubscription(ctx, coordinator)
	if err != nil {
		return models.ResolvedNetwork{}, err
	}

	return models.ResolvedNetwork{
		Network:          network,
		VRFCoordinator:   coordinator,
		SubscriptionID:   subscriptionID,
		GasLane:          common.HexToHash(network.GasLane),
		CallbackGasLimit: network.CallbackGasLimit,
		MintFee:          network.MintFee,
	}, nil
}

// coordinator reuses the last recorded mock on this chain when it still answers like one,
// otherwise deploys a new mock.
func (s *ephemeralNetworkService) coordinator(ctx context.Context, runID string, network models.NetworkConfig) (common.Address, error) {
	if address, ok := s.recordedMock(ctx, network); ok {
		s.logger.Info("Reusing VRF coordinator mock", zap.String("address", address.Hex()))
		return address, nil
	}

	record := &models.Deployment{
		RunID:           runID,
		ContractName:    contracts.VRFCoordinatorMockContractName,
		NetworkName:     network.Name,
		ChainID:         network.ChainID,
		DeployerAddress: s.evm.From().Hex(),
		Status:          models.TransactionStatusPending,
	}
	if s.deployments != nil {
		if err := s.deployments.CreateDeployment(record); err != nil {
			return common.Address{}, fmt.Errorf("failed to record mock deployment: %w", err)
		}
	}

	s.logger.Info("Local network detected, deploying VRF coordinator mock")
	result, err := s.evm.DeployContract(ctx, DeployContractArgs{
		ContractName:    contracts.VRFCoordinatorMockContractName,
		ConstructorArgs: []any{constants.MockBaseFee, constants.MockGasPriceLink},
		Confirmations:   network.Confirmations(),
	})
	if err != nil {
		if s.deployments != nil && record.ID != 0 {
			_ = s.deployments.MarkDeploymentFailed(record.ID, err.Error())
		}
		return common.Address{}, deployerr.New(deployerr.DeployFailed, "deploy VRF coordinator mock", err)
	}

	if s.deployments != nil && record.ID != 0 {
		if err := s.deployments.UpdateDeploymentStatus(record.ID, models.TransactionStatusConfirmed, result.Address.Hex(), result.TransactionHash.Hex()); err != nil {
			return common.Address{}, fmt.Errorf("failed to update mock deployment: %w", err)
		}
	}
	return result.Address, nil
}

func (s *ephemeralNetworkService) recordedMock(ctx context.Context, network models.NetworkConfig) (common.Address, bool) {
	if s.deployments == nil {
		return common.Address{}, false
	}
	record, err := s.deployments.GetLatestConfirmed(contracts.VRFCoordinatorMockContractName, network.ChainID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("Failed to look up recorded VRF mock", zap.Error(err))
		}
		return common.Address{}, false
	}
	if !utils.IsValidEthereumAddress(record.ContractAddress) {
		return common.Address{}, false
	}

	address := common.HexToAddress(record.ContractAddress)
	hasCode, err := s.evm.HasCode(ctx, address)
	if err != nil || !hasCode {
		return common.Address{}, false
	}

	// a restarted local node may hold a different contract at the recorded address
	out, err := s.evm.Call(ctx, CallArgs{Address: address, ABI: contracts.CoordinatorABI, Method: "BASE_FEE"})
	if err != nil || len(out) != 1 {
		return common.Address{}, false
	}
	baseFee, ok := out[0].(*big.Int)
	if !ok || baseFee.Cmp(constants.MockBaseFee) != 0 {
		return common.Address{}, false
	}
	return address, true
}

func (s *ephemeralNetworkService) createSubscription(ctx context.Context, coordinator common.Address) (uint64, error) {
	receipt, err := s.evm.Transact(ctx, TransactArgs{
		Address: coordinator,
		ABI:     contracts.CoordinatorABI,
		Method:  contracts.MethodCreateSubscription,
	})
	if err != nil {
		return 0, deployerr.New(deployerr.DeployFailed, "create VRF subscription", err)
	}

	event, err := utils.DecodeEvent(contracts.CoordinatorABI, receipt, contracts.EventSubscriptionCreated)
	if err != nil {
		return 0, deployerr.New(deployerr.DeployFailed, "create VRF subscription", err)
	}
	subscriptionID, ok := event["subId"].(uint64)
	if !ok || subscriptionID == 0 {
		return 0, deployerr.Newf(deployerr.DeployFailed, "SubscriptionCreated carried no subscription id")
	}

	if _, err := s.evm.Transact(ctx, TransactArgs{
		Address: coordinator,
		ABI:     contracts.CoordinatorABI,
		Method:  contracts.MethodFundSubscription,
		Args:    []any{subscriptionID, constants.SubscriptionFundAmount},
	}); err != nil {
		return 0, deployerr.New(deployerr.DeployFailed, "fund VRF subscription", err)
	}

	s.logger.Info("VRF subscription created and funded",
		zap.Uint64("subscriptionId", subscriptionID),
		zap.String("amount", constants.SubscriptionFundAmount.String()),
	)
	return subscriptionID, nil
}
