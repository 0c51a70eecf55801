package hooks

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rxtech-lab/graffiti-deployer/internal/config"
	"github.com/rxtech-lab/graffiti-deployer/internal/contracts"
	"github.com/rxtech-lab/graffiti-deployer/internal/deployerr"
	"github.com/rxtech-lab/graffiti-deployer/internal/services"
	"github.com/rxtech-lab/graffiti-deployer/internal/utils"
	"go.uber.org/zap"
)

// ConsumerRegistrationHook adds a freshly deployed Graffiti contract to the local mock's
// subscription so it may request randomness. Public networks manage consumers out of band.
type ConsumerRegistrationHook struct {
	evm    services.EvmService
	logger *zap.Logger
}

func NewConsumerRegistrationHook(evm services.EvmService, logger *zap.Logger) services.Hook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsumerRegistrationHook{evm: evm, logger: logger}
}

func (h *ConsumerRegistrationHook) Name() string {
	return "consumer-registration"
}

// CanHandle implements Hook.
func (h *ConsumerRegistrationHook) CanHandle(event *services.DeploymentEvent) bool {
	return isGraffiti(event) && config.IsDevelopment(event.Network)
}

// OnContractDeployed implements Hook.
func (h *ConsumerRegistrationHook) OnContractDeployed(ctx context.Context, event *services.DeploymentEvent) error {
	coordinator := event.Resolved.VRFCoordinator
	consumer := event.Contract.Address

	receipt, err := h.evm.Transact(ctx, services.TransactArgs{
		Address: coordinator,
		ABI:     contracts.CoordinatorABI,
		Method:  contracts.MethodAddConsumer,
		Args:    []any{event.Resolved.SubscriptionID, consumer},
	})
	if err != nil {
		return deployerr.New(deployerr.RegistrationFailed, "add consumer", err)
	}

	added, err := utils.DecodeEvent(contracts.CoordinatorABI, receipt, contracts.EventConsumerAdded)
	if err != nil {
		return deployerr.New(deployerr.RegistrationFailed, "add consumer", err)
	}
	if registered, _ := added["consumer"].(common.Address); registered != consumer {
		return deployerr.New(deployerr.RegistrationFailed, "add consumer",
			fmt.Errorf("coordinator registered %s, expected %s", registered.Hex(), consumer.Hex()))
	}

	event.ConsumerRegistered = true
	h.logger.Info("Consumer registered",
		zap.String("consumer", consumer.Hex()),
		zap.Uint64("subscriptionId", event.Resolved.SubscriptionID),
	)
	return nil
}

func isGraffiti(event *services.DeploymentEvent) bool {
	return event != nil && event.Contract != nil && event.Contract.ContractName == contracts.GraffitiContractName
}
