package constants

import "math/big"

// DevPrivateKeys are the well-known anvil/hardhat development accounts. They hold funds only
// on local development chains.
var DevPrivateKeys = []string{
	"0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80",
	"0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d",
	"0x5de4111afa1a4b94908f83103eb1f1706367c2e68ca870fc3fb9a804cdab365a",
}

var (
	// MockBaseFee is the flat LINK premium charged by the VRF mock, 0.25 LINK.
	MockBaseFee = big.NewInt(250_000_000_000_000_000)
	// MockGasPriceLink is the LINK per gas charged by the VRF mock.
	MockGasPriceLink = big.NewInt(1_000_000_000)
	// SubscriptionFundAmount is the LINK balance given to a fresh mock subscription, 1000 LINK.
	SubscriptionFundAmount = new(big.Int).Mul(big.NewInt(1000), big.NewInt(1_000_000_000_000_000_000))
)

// FulfillGasLimit is the gas limit for mock fulfillments. Estimation is not used because the
// consumer callback runs with whatever gas remains and may fail silently.
const FulfillGasLimit = 2_500_000
