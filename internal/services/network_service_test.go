package services

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rxtech-lab/graffiti-deployer/internal/chaintest"
	"github.com/rxtech-lab/graffiti-deployer/internal/config"
	"github.com/rxtech-lab/graffiti-deployer/internal/contracts"
	"github.com/rxtech-lab/graffiti-deployer/internal/deployerr"
	"github.com/rxtech-lab/graffiti-deployer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestPersistentNetworkService(t *testing.T) {
	networks := config.NewNetworkTable(config.DefaultNetworks())
	sepolia, err := networks.Lookup("sepolia")
	require.NoError(t, err)

	service := NewNetworkService(sepolia, nil, nil, zaptest.NewLogger(t))

	t.Run("complete entry", func(t *testing.T) {
		resolved, err := service.Resolve(context.Background(), "run", sepolia)
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress("0x8103B0A8A00be2DDC778e6e7eaa21791Cd364625"), resolved.VRFCoordinator)
		assert.Equal(t, uint64(3126), resolved.SubscriptionID)
		assert.Equal(t, common.HexToHash(sepolia.GasLane), resolved.GasLane)
		assert.Equal(t, sepolia.CallbackGasLimit, resolved.CallbackGasLimit)
		assert.Equal(t, 0, sepolia.MintFee.Cmp(resolved.MintFee))
		assert.Equal(t, "sepolia", resolved.Network.Name)
	})

	t.Run("missing subscription", func(t *testing.T) {
		incomplete := sepolia
		incomplete.SubscriptionID = 0
		incomplete.VRFCoordinator = ""

		_, err := service.Resolve(context.Background(), "run", incomplete)
		require.ErrorIs(t, err, deployerr.ErrConfigMissing)
		assert.ErrorContains(t, err, "subscription_id")
		assert.ErrorContains(t, err, "vrf_coordinator")
	})
}

func TestEphemeralNetworkService(t *testing.T) {
	chain := chaintest.New(t)
	evm := newTestEvm(t, chain, 0)
	deployments := NewDeploymentService(newTestDB(t))
	network := testNetwork()
	ctx := context.Background()

	service := NewNetworkService(network, evm, deployments, zaptest.NewLogger(t))

	first, err := service.Resolve(ctx, "run-1", network)
	require.NoError(t, err)
	assert.NotEqual(t, common.Address{}, first.VRFCoordinator)
	assert.Equal(t, uint64(1), first.SubscriptionID)
	assert.Equal(t, common.HexToHash(testGasLane), first.GasLane)
	assert.Equal(t, uint32(500_000), first.CallbackGasLimit)
	assert.Empty(t, first.Missing())

	t.Run("mock deployment is recorded", func(t *testing.T) {
		records, err := deployments.ListDeploymentsByRun("run-1")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, contracts.VRFCoordinatorMockContractName, records[0].ContractName)
		assert.Equal(t, models.TransactionStatusConfirmed, records[0].Status)
		assert.Equal(t, first.VRFCoordinator.Hex(), records[0].ContractAddress)
	})

	t.Run("subscription is funded", func(t *testing.T) {
		out, err := evm.Call(ctx, CallArgs{
			Address: first.VRFCoordinator,
			ABI:     contracts.CoordinatorABI,
			Method:  contracts.MethodGetSubscription,
			Args:    []any{first.SubscriptionID},
		})
		require.NoError(t, err)
		require.Len(t, out, 3)
		assert.Equal(t, "1000000000000000000000", out[0].(*big.Int).String())
		assert.Equal(t, chain.Accounts[0], out[1])
	})

	t.Run("recorded mock is reused with a fresh subscription", func(t *testing.T) {
		second, err := service.Resolve(ctx, "run-2", network)
		require.NoError(t, err)
		assert.Equal(t, first.VRFCoordinator, second.VRFCoordinator)
		assert.Equal(t, uint64(2), second.SubscriptionID)

		records, err := deployments.ListDeploymentsByRun("run-2")
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("recorded address without a mock is replaced", func(t *testing.T) {
		require.NoError(t, deployments.CreateDeployment(&models.Deployment{
			RunID:           "stale",
			ContractName:    contracts.VRFCoordinatorMockContractName,
			NetworkName:     network.Name,
			ChainID:         network.ChainID,
			ContractAddress: chain.Accounts[2].Hex(),
			Status:          models.TransactionStatusConfirmed,
		}))

		third, err := service.Resolve(ctx, "run-3", network)
		require.NoError(t, err)
		assert.NotEqual(t, first.VRFCoordinator, third.VRFCoordinator)
		assert.NotEqual(t, chain.Accounts[2], third.VRFCoordinator)
		assert.Equal(t, uint64(1), third.SubscriptionID)
	})

	t.Run("missing gas lane", func(t *testing.T) {
		incomplete := network
		incomplete.GasLane = ""
		_, err := service.Resolve(ctx, "run-4", incomplete)
		assert.ErrorIs(t, err, deployerr.ErrConfigMissing)
	})
}

func TestEphemeralNetworkServiceWithoutStore(t *testing.T) {
	chain := chaintest.New(t)
	network := testNetwork()
	service := NewNetworkService(network, newTestEvm(t, chain, 0), nil, nil)

	first, err := service.Resolve(context.Background(), "run-1", network)
	require.NoError(t, err)
	second, err := service.Resolve(context.Background(), "run-2", network)
	require.NoError(t, err)

	// nothing remembers the first mock
	assert.NotEqual(t, first.VRFCoordinator, second.VRFCoordinator)
}
