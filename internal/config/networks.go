package config

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/rxtech-lab/graffiti-deployer/internal/deployerr"
	"github.com/rxtech-lab/graffiti-deployer/internal/models"
)

const (
	SepoliaChainID = 11155111
	HardhatChainID = 31337

	defaultCallbackGasLimit = 50000000
	localRPCURL             = "http://127.0.0.1:8545"
	localGasLane            = "0xd89b2bf150e3b9e13446986e571fb9cab24b13cea0a43ea20a6049a85cc807cc"
)

// DevelopmentChains are always provisioned with a local VRF mock.
var DevelopmentChains = []string{"hardhat", "localhost"}

// 0.026 ether
var defaultMintFee = big.NewInt(26_000_000_000_000_000)

// DefaultNetworks returns a fresh copy of the built in network table.
func DefaultNetworks() []models.NetworkConfig {
	return []models.NetworkConfig{
		{
			Name:               "sepolia",
			ChainID:            SepoliaChainID,
			VRFCoordinator:     "0x8103B0A8A00be2DDC778e6e7eaa21791Cd364625",
			SubscriptionID:     3126,
			GasLane:            "0x474e34a077df58807dbe9c96d3c009b23b3c6d0cce433e59bbf5b34f823bc56c",
			CallbackGasLimit:   defaultCallbackGasLimit,
			MintFee:            new(big.Int).Set(defaultMintFee),
			BlockConfirmations: 6,
		},
		{
			Name:               "hardhat",
			ChainID:            HardhatChainID,
			RPCURL:             localRPCURL,
			GasLane:            localGasLane,
			CallbackGasLimit:   defaultCallbackGasLimit,
			MintFee:            new(big.Int).Set(defaultMintFee),
			BlockConfirmations: 1,
			Ephemeral:          true,
		},
		{
			Name:               "localhost",
			ChainID:            HardhatChainID,
			RPCURL:             localRPCURL,
			GasLane:            localGasLane,
			CallbackGasLimit:   defaultCallbackGasLimit,
			MintFee:            new(big.Int).Set(defaultMintFee),
			BlockConfirmations: 1,
			Ephemeral:          true,
		},
	}
}

// NetworkTable is the read-only set of known networks.
type NetworkTable struct {
	networks []models.NetworkConfig
}

func NewNetworkTable(networks []models.NetworkConfig) *NetworkTable {
	copied := make([]models.NetworkConfig, len(networks))
	copy(copied, networks)
	return &NetworkTable{networks: copied}
}

// Lookup finds a network by name (case-insensitive) or by decimal chain id. When several
// entries share a chain id the first one wins.
func (t *NetworkTable) Lookup(identifier string) (models.NetworkConfig, error) {
	identifier = strings.TrimSpace(identifier)
	for _, network := range t.networks {
		if strings.EqualFold(network.Name, identifier) {
			return network, nil
		}
	}

	if chainID, err := strconv.ParseUint(identifier, 10, 64); err == nil {
		for _, network := range t.networks {
			if network.ChainID == chainID {
				return network, nil
			}
		}
	}

	return models.NetworkConfig{}, deployerr.Newf(deployerr.ConfigMissing, "no network configuration for %q", identifier)
}

func (t *NetworkTable) List() []models.NetworkConfig {
	copied := make([]models.NetworkConfig, len(t.networks))
	copy(copied, t.networks)
	return copied
}

// IsDevelopment reports whether the network gets a local VRF mock.
func IsDevelopment(network models.NetworkConfig) bool {
	if network.Ephemeral {
		return true
	}
	for _, name := range DevelopmentChains {
		if strings.EqualFold(network.Name, name) {
			return true
		}
	}
	return false
}

// merge overlays entries on top of base, matching by name. An entry only replaces the
// fields it sets; entries with an unknown name are appended.
func merge(base []models.NetworkConfig, entries []networkEntry) ([]models.NetworkConfig, error) {
	result := make([]models.NetworkConfig, len(base))
	copy(result, base)
	for _, entry := range entries {
		index := -1
		for i := range result {
			if strings.EqualFold(result[i].Name, entry.Name) {
				index = i
				break
			}
		}

		var network models.NetworkConfig
		if index >= 0 {
			network = result[index]
		}
		network, err := entry.overlay(network)
		if err != nil {
			return nil, err
		}
		if index >= 0 {
			result[index] = network
		} else {
			result = append(result, network)
		}
	}
	return result, nil
}
