package models

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// DeploymentArgs are the Graffiti constructor arguments. Values always yields them in
// constructor order.
type DeploymentArgs struct {
	VRFCoordinator   common.Address
	SubscriptionID   uint64
	GasLane          common.Hash
	CallbackGasLimit uint32
	TokenURIs        []string
	MintFee          *big.Int
}

func NewDeploymentArgs(network ResolvedNetwork, tokenURIs []string) DeploymentArgs {
	return DeploymentArgs{
		VRFCoordinator:   network.VRFCoordinator,
		SubscriptionID:   network.SubscriptionID,
		GasLane:          network.GasLane,
		CallbackGasLimit: network.CallbackGasLimit,
		TokenURIs:        tokenURIs,
		MintFee:          network.MintFee,
	}
}

func (a DeploymentArgs) Values() []any {
	return []any{
		a.VRFCoordinator,
		a.SubscriptionID,
		a.GasLane,
		a.CallbackGasLimit,
		a.TokenURIs,
		a.MintFee,
	}
}

// Validate checks every argument is present. An empty token URI counts as missing.
func (a DeploymentArgs) Validate() error {
	var problems []string
	if a.VRFCoordinator == (common.Address{}) {
		problems = append(problems, "vrf coordinator address is missing")
	}
	if a.SubscriptionID == 0 {
		problems = append(problems, "subscription id is missing")
	}
	if a.GasLane == (common.Hash{}) {
		problems = append(problems, "gas lane is missing")
	}
	if a.CallbackGasLimit == 0 {
		problems = append(problems, "callback gas limit is missing")
	}
	if len(a.TokenURIs) == 0 {
		problems = append(problems, "token uris are missing")
	}
	for i, uri := range a.TokenURIs {
		if strings.TrimSpace(uri) == "" {
			problems = append(problems, fmt.Sprintf("token uri %d is empty", i))
		}
	}
	if a.MintFee == nil {
		problems = append(problems, "mint fee is missing")
	} else if a.MintFee.Sign() < 0 {
		problems = append(problems, "mint fee is negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid deployment arguments: %s", strings.Join(problems, "; "))
	}
	return nil
}
