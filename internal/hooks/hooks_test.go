package hooks

import (
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rxtech-lab/graffiti-deployer/internal/chaintest"
	"github.com/rxtech-lab/graffiti-deployer/internal/config"
	"github.com/rxtech-lab/graffiti-deployer/internal/contracts"
	"github.com/rxtech-lab/graffiti-deployer/internal/deployerr"
	"github.com/rxtech-lab/graffiti-deployer/internal/etherscan"
	"github.com/rxtech-lab/graffiti-deployer/internal/models"
	"github.com/rxtech-lab/graffiti-deployer/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func sepolia(t *testing.T) models.NetworkConfig {
	network, err := config.NewNetworkTable(config.DefaultNetworks()).Lookup("sepolia")
	require.NoError(t, err)
	return network
}

func localNetwork() models.NetworkConfig {
	return models.NetworkConfig{
		Name:             "hardhat",
		ChainID:          chaintest.ChainID.Uint64(),
		GasLane:          "0xd89b2bf150e3b9e13446986e571fb9cab24b13cea0a43ea20a6049a85cc807cc",
		CallbackGasLimit: 500_000,
		MintFee:          big.NewInt(1),
		Ephemeral:        true,
	}
}

func graffitiEvent(network models.NetworkConfig) *services.DeploymentEvent {
	return &services.DeploymentEvent{
		RunID:        "run",
		DeploymentID: 1,
		Network:      network,
		Contract: &services.DeployContractResult{
			ContractName:           contracts.GraffitiContractName,
			Address:                common.HexToAddress("0x00000000000000000000000000000000000000aa"),
			EncodedConstructorArgs: "00ff",
		},
	}
}

func TestCanHandle(t *testing.T) {
	registration := NewConsumerRegistrationHook(nil, nil)
	verification := NewVerificationHook(&fakeVerifier{}, etherscan.WaitOptions{}, nil)
	unconfigured := NewVerificationHook(nil, etherscan.WaitOptions{}, nil)
	record := NewDeploymentRecordHook(nil)

	local := graffitiEvent(localNetwork())
	public := graffitiEvent(sepolia(t))
	mock := graffitiEvent(localNetwork())
	mock.Contract.ContractName = contracts.VRFCoordinatorMockContractName
	unrecorded := graffitiEvent(sepolia(t))
	unrecorded.DeploymentID = 0

	assert.True(t, registration.CanHandle(local))
	assert.False(t, registration.CanHandle(public))
	assert.False(t, registration.CanHandle(mock))

	assert.True(t, verification.CanHandle(public))
	assert.False(t, verification.CanHandle(local))
	assert.False(t, unconfigured.CanHandle(public))

	assert.True(t, record.CanHandle(local))
	assert.False(t, record.CanHandle(unrecorded))
}

func TestConsumerRegistrationHook(t *testing.T) {
	chain := chaintest.New(t)
	evm, err := services.NewEvmService(chain.Client, chain.Keys[0], chaintest.ChainID, zaptest.NewLogger(t))
	require.NoError(t, err)
	ctx := context.Background()

	network := localNetwork()
	resolved, err := services.NewNetworkService(network, evm, nil, nil).Resolve(ctx, "run", network)
	require.NoError(t, err)

	event := graffitiEvent(network)
	event.Resolved = resolved
	hook := NewConsumerRegistrationHook(evm, zaptest.NewLogger(t))

	require.NoError(t, hook.OnContractDeployed(ctx, event))
	assert.True(t, event.ConsumerRegistered)

	out, err := evm.Call(ctx, services.CallArgs{
		Address: resolved.VRFCoordinator,
		ABI:     contracts.CoordinatorABI,
		Method:  contracts.MethodConsumerIsAdded,
		Args:    []any{resolved.SubscriptionID, event.Contract.Address},
	})
	require.NoError(t, err)
	assert.Equal(t, true, out[0])

	t.Run("unknown subscription", func(t *testing.T) {
		event := graffitiEvent(network)
		event.Resolved = resolved
		event.Resolved.SubscriptionID = 99

		err := hook.OnContractDeployed(ctx, event)
		assert.ErrorIs(t, err, deployerr.ErrRegistrationFailed)
		assert.True(t, deployerr.IsFatal(err))
		assert.False(t, event.ConsumerRegistered)
	})

	t.Run("second registration emits no ConsumerAdded", func(t *testing.T) {
		err := hook.OnContractDeployed(ctx, event)
		assert.ErrorIs(t, err, deployerr.ErrRegistrationFailed)
	})
}

type fakeVerifier struct {
	requests  []etherscan.VerifyRequest
	verifyErr error
	waitErr   error
	waited    []string
}

func (f *fakeVerifier) Verify(_ context.Context, request etherscan.VerifyRequest) (string, error) {
	f.requests = append(f.requests, request)
	if f.verifyErr != nil {
		return "", f.verifyErr
	}
	return "guid-1", nil
}

func (f *fakeVerifier) WaitForVerification(_ context.Context, _ uint64, guid string, _ etherscan.WaitOptions) error {
	f.waited = append(f.waited, guid)
	return f.waitErr
}

func TestVerificationHook(t *testing.T) {
	tests := []struct {
		name      string
		verifier  *fakeVerifier
		verified  bool
		failed    bool
		waitCalls int
	}{
		{name: "verified", verifier: &fakeVerifier{}, verified: true, waitCalls: 1},
		{name: "already verified", verifier: &fakeVerifier{verifyErr: etherscan.ErrAlreadyVerified}, verified: true},
		{name: "submission rejected", verifier: &fakeVerifier{verifyErr: errors.New("invalid api key")}, failed: true},
		{name: "verification failed", verifier: &fakeVerifier{waitErr: errors.New("Fail - Unable to verify")}, failed: true, waitCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := graffitiEvent(sepolia(t))
			hook := NewVerificationHook(tt.verifier, etherscan.WaitOptions{MaxAttempts: 1, Interval: time.Millisecond}, zaptest.NewLogger(t))

			err := hook.OnContractDeployed(context.Background(), event)
			if tt.failed {
				require.ErrorIs(t, err, deployerr.ErrVerificationFailed)
				assert.False(t, deployerr.IsFatal(err))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.verified, event.Verified)
			assert.Len(t, tt.verifier.waited, tt.waitCalls)

			require.Len(t, tt.verifier.requests, 1)
			request := tt.verifier.requests[0]
			assert.Equal(t, uint64(config.SepoliaChainID), request.ChainID)
			assert.Equal(t, event.Contract.Address.Hex(), request.ContractAddress)
			assert.Equal(t, "contract.sol:Graffiti", request.ContractName)
			assert.Equal(t, contracts.CompilerLongVersion, request.CompilerVersion)
			assert.Equal(t, "00ff", request.ConstructorArguments)
			assert.Contains(t, request.SourceCode, "VRFConsumerBaseV2.sol")
		})
	}
}

func TestDeploymentRecordHook(t *testing.T) {
	db, err := services.NewSqliteDBService(filepath.Join(t.TempDir(), "hooks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	deployments := services.NewDeploymentService(db.GetDB())
	record := &models.Deployment{RunID: "run", ContractName: contracts.GraffitiContractName, NetworkName: "sepolia", ChainID: config.SepoliaChainID}
	require.NoError(t, deployments.CreateDeployment(record))

	event := graffitiEvent(sepolia(t))
	event.DeploymentID = record.ID
	event.Verified = true

	require.NoError(t, NewDeploymentRecordHook(deployments).OnContractDeployed(context.Background(), event))

	stored, err := deployments.GetDeploymentByID(record.ID)
	require.NoError(t, err)
	assert.True(t, stored.Verified)
	assert.False(t, stored.ConsumerRegistered)
}

// Hooks run in registration order, so the record hook sees the registration outcome.
func TestHookChainOnLocalNetwork(t *testing.T) {
	chain := chaintest.New(t)
	evm, err := services.NewEvmService(chain.Client, chain.Keys[0], chaintest.ChainID, nil)
	require.NoError(t, err)
	db, err := services.NewSqliteDBService(filepath.Join(t.TempDir(), "chain.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	deployments := services.NewDeploymentService(db.GetDB())
	ctx := context.Background()

	network := localNetwork()
	resolved, err := services.NewNetworkService(network, evm, deployments, nil).Resolve(ctx, "run", network)
	require.NoError(t, err)
	result, err := evm.DeployContract(ctx, services.DeployContractArgs{
		ContractName:    contracts.GraffitiContractName,
		ConstructorArgs: models.NewDeploymentArgs(resolved, []string{"ipfs://a", "ipfs://b", "ipfs://c"}).Values(),
	})
	require.NoError(t, err)

	record := &models.Deployment{RunID: "run", ContractName: contracts.GraffitiContractName, NetworkName: network.Name, ChainID: network.ChainID}
	require.NoError(t, deployments.CreateDeployment(record))

	hookService := services.NewHookService(nil)
	require.NoError(t, hookService.AddHook(NewConsumerRegistrationHook(evm, nil)))
	require.NoError(t, hookService.AddHook(NewVerificationHook(&fakeVerifier{}, etherscan.WaitOptions{}, nil)))
	require.NoError(t, hookService.AddHook(NewDeploymentRecordHook(deployments)))

	event := &services.DeploymentEvent{RunID: "run", DeploymentID: record.ID, Network: network, Resolved: resolved, Contract: result}
	warnings, err := hookService.OnContractDeployed(ctx, event)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.True(t, event.ConsumerRegistered)
	assert.False(t, event.Verified)

	stored, err := deployments.GetDeploymentByID(record.ID)
	require.NoError(t, err)
	assert.True(t, stored.ConsumerRegistered)
}
