package hooks

import (
	"context"
	"errors"

	"github.com/rxtech-lab/graffiti-deployer/internal/config"
	"github.com/rxtech-lab/graffiti-deployer/internal/contracts"
	"github.com/rxtech-lab/graffiti-deployer/internal/deployerr"
	"github.com/rxtech-lab/graffiti-deployer/internal/etherscan"
	"github.com/rxtech-lab/graffiti-deployer/internal/services"
	"go.uber.org/zap"
)

// Verifier publishes contract sources. *etherscan.Client implements it.
type Verifier interface {
	Verify(ctx context.Context, request etherscan.VerifyRequest) (string, error)
	WaitForVerification(ctx context.Context, chainID uint64, guid string, options etherscan.WaitOptions) error
}

// VerificationHook publishes the Graffiti source on public networks. Failures are reported as
// VerificationFailed, which does not abort the run.
type VerificationHook struct {
	verifier Verifier
	wait     etherscan.WaitOptions
	logger   *zap.Logger
}

func NewVerificationHook(verifier Verifier, wait etherscan.WaitOptions, logger *zap.Logger) services.Hook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VerificationHook{verifier: verifier, wait: wait, logger: logger}
}

func (h *VerificationHook) Name() string {
	return "source-verification"
}

// CanHandle implements Hook.
func (h *VerificationHook) CanHandle(event *services.DeploymentEvent) bool {
	return h.verifier != nil && isGraffiti(event) && !config.IsDevelopment(event.Network)
}

// OnContractDeployed implements Hook.
func (h *VerificationHook) OnContractDeployed(ctx context.Context, event *services.DeploymentEvent) error {
	name := event.Contract.ContractName
	source, err := contracts.StandardJSONInput(name)
	if err != nil {
		return deployerr.New(deployerr.VerificationFailed, "prepare verification input", err)
	}

	address := event.Contract.Address.Hex()
	h.logger.Info("Verifying contract", zap.String("address", address), zap.Uint64("chainId", event.Network.ChainID))

	guid, err := h.verifier.Verify(ctx, etherscan.VerifyRequest{
		ChainID:              event.Network.ChainID,
		ContractAddress:      address,
		SourceCode:           source,
		ContractName:         contracts.QualifiedName(name),
		CompilerVersion:      contracts.CompilerLongVersion,
		ConstructorArguments: event.Contract.EncodedConstructorArgs,
	})
	if errors.Is(err, etherscan.ErrAlreadyVerified) {
		h.logger.Info("Contract already verified", zap.String("address", address))
		event.Verified = true
		return nil
	}
	if err != nil {
		return deployerr.New(deployerr.VerificationFailed, "submit verification", err)
	}

	if err := h.verifier.WaitForVerification(ctx, event.Network.ChainID, guid, h.wait); err != nil {
		return deployerr.New(deployerr.VerificationFailed, "verification status", err)
	}

	event.Verified = true
	h.logger.Info("Contract verified", zap.String("address", address), zap.String("guid", guid))
	return nil
}
