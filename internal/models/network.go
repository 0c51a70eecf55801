package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// NetworkConfig is one row of the static per-network parameter table.
type NetworkConfig struct {
	Name               string   `json:"name" validate:"required"`
	ChainID            uint64   `json:"chain_id" validate:"required"`
	RPCURL             string   `json:"rpc_url,omitempty" validate:"omitempty,url"`
	VRFCoordinator     string   `json:"vrf_coordinator,omitempty" validate:"omitempty,eth_addr"`
	SubscriptionID     uint64   `json:"subscription_id,omitempty"`
	GasLane            string   `json:"gas_lane,omitempty" validate:"omitempty,len=66,hexadecimal"`
	CallbackGasLimit   uint32   `json:"callback_gas_limit"`
	MintFee            *big.Int `json:"mint_fee"`
	BlockConfirmations uint64   `json:"block_confirmations"`
	// Ephemeral networks get a freshly provisioned VRF mock and subscription on every run.
	Ephemeral bool `json:"ephemeral"`
}

// Confirmations is the number of blocks to wait for after a deployment, at least 1.
func (n NetworkConfig) Confirmations() uint64 {
	if n.BlockConfirmations == 0 {
		return 1
	}
	return n.BlockConfirmations
}

// ResolvedNetwork is the oracle tuple a deployment needs, plus the network it came from.
type ResolvedNetwork struct {
	Network          NetworkConfig
	VRFCoordinator   common.Address
	SubscriptionID   uint64
	GasLane          common.Hash
	CallbackGasLimit uint32
	MintFee          *big.Int
}

// Missing lists the oracle tuple fields that are unset.
func (r ResolvedNetwork) Missing() []string {
	var missing []string
	if r.VRFCoordinator == (common.Address{}) {
		missing = append(missing, "vrf_coordinator")
	}
	if r.SubscriptionID == 0 {
		missing = append(missing, "subscription_id")
	}
	if r.GasLane == (common.Hash{}) {
		missing = append(missing, "gas_lane")
	}
	if r.CallbackGasLimit == 0 {
		missing = append(missing, "callback_gas_limit")
	}
	if r.MintFee == nil {
		missing = append(missing, "mint_fee")
	}
	return missing
}
