// Package chaintest runs an in-process EVM chain for tests.
package chaintest

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ethereum/go-ethereum/params"
	"github.com/rxtech-lab/graffiti-deployer/internal/constants"
	"github.com/rxtech-lab/graffiti-deployer/internal/utils"
	"github.com/stretchr/testify/require"
)

// ChainID is the chain id of the simulated backend.
var ChainID = big.NewInt(1337)

// Client mines a block after every accepted transaction, like anvil's automine.
type Client struct {
	simulated.Client
	backend *simulated.Backend
}

func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := c.Client.SendTransaction(ctx, tx); err != nil {
		return err
	}
	c.backend.Commit()
	return nil
}

// Commit mines an empty block.
func (c *Client) Commit() {
	c.backend.Commit()
}

type Chain struct {
	Client   *Client
	Keys     []*ecdsa.PrivateKey
	Accounts []common.Address
}

// New starts a chain with the development accounts funded with 10000 ether each.
func New(t testing.TB) *Chain {
	t.Helper()

	chain := &Chain{}
	alloc := types.GenesisAlloc{}
	balance := new(big.Int).Mul(big.NewInt(10_000), big.NewInt(params.Ether))
	for _, hexKey := range constants.DevPrivateKeys {
		key, err := utils.PrivateKeyFromHex(hexKey)
		require.NoError(t, err)
		address := utils.AddressFromKey(key)
		chain.Keys = append(chain.Keys, key)
		chain.Accounts = append(chain.Accounts, address)
		alloc[address] = types.Account{Balance: balance}
	}

	backend := simulated.NewBackend(alloc, simulated.WithBlockGasLimit(60_000_000))
	t.Cleanup(func() {
		_ = backend.Close()
	})
	chain.Client = &Client{Client: backend.Client(), backend: backend}
	return chain
}
