package services

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
	"github.com/rxtech-lab/graffiti-deployer/internal/chaintest"
	"github.com/rxtech-lab/graffiti-deployer/internal/contracts"
	"github.com/rxtech-lab/graffiti-deployer/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testGasLane = "0xd89b2bf150e3b9e13446986e571fb9cab24b13cea0a43ea20a6049a85cc807cc"

var testMintFee = new(big.Int).Div(big.NewInt(params.Ether), big.NewInt(100))

var testTokenURIs = []string{"ipfs://stencil", "ipfs://throwie", "ipfs://mural"}

func newTestEvm(t *testing.T, chain *chaintest.Chain, account int) EvmService {
	t.Helper()
	evm, err := NewEvmService(chain.Client, chain.Keys[account], chaintest.ChainID, zaptest.NewLogger(t), WithPollInterval(10*time.Millisecond))
	require.NoError(t, err)
	return evm
}

func testNetwork() models.NetworkConfig {
	return models.NetworkConfig{
		Name:               "hardhat",
		ChainID:            chaintest.ChainID.Uint64(),
		GasLane:            testGasLane,
		CallbackGasLimit:   500_000,
		MintFee:            new(big.Int).Set(testMintFee),
		BlockConfirmations: 1,
		Ephemeral:          true,
	}
}

// addConsumer registers consumer on the coordinator's subscription, as the registration hook does.
func addConsumer(t *testing.T, evm EvmService, coordinator common.Address, subscriptionID uint64, consumer common.Address) {
	t.Helper()
	_, err := evm.Transact(context.Background(), TransactArgs{
		Address: coordinator,
		ABI:     contracts.CoordinatorABI,
		Method:  contracts.MethodAddConsumer,
		Args:    []any{subscriptionID, consumer},
	})
	require.NoError(t, err)
}

func mustAddress(hex string) common.Address {
	if !common.IsHexAddress(hex) {
		panic("invalid address " + hex)
	}
	return common.HexToAddress(hex)
}
