package server

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rxtech-lab/graffiti-deployer/internal/config"
	"github.com/rxtech-lab/graffiti-deployer/internal/contracts"
	"github.com/rxtech-lab/graffiti-deployer/internal/deployerr"
	"github.com/rxtech-lab/graffiti-deployer/internal/models"
	"github.com/rxtech-lab/graffiti-deployer/internal/services"
	"github.com/rxtech-lab/graffiti-deployer/internal/utils"
	"gorm.io/gorm"
)

type MintOutcome struct {
	Contract  string                `json:"contract"`
	RequestID string                `json:"request_id"`
	Fee       string                `json:"fee"`
	Token     *services.MintedToken `json:"token,omitempty"`
	// TokenGatewayURL is the token URI on the configured HTTP gateway.
	TokenGatewayURL string `json:"token_gateway_url,omitempty"`
	// Pending is set on public networks, where the oracle fulfills the request later.
	Pending bool `json:"pending"`
}

// MintGraffiti pays the contract's mint fee for one token. contractAddress defaults to the
// latest confirmed Graffiti deployment on this network. On development networks the request is
// fulfilled through the mock right away.
func (d *Deployer) MintGraffiti(ctx context.Context, contractAddress string) (*MintOutcome, error) {
	record, err := d.graffitiRecord(contractAddress)
	if err != nil {
		return nil, err
	}
	contract := common.HexToAddress(record.ContractAddress)

	fee, err := d.Mint.MintFee(ctx, contract)
	if err != nil {
		return nil, err
	}
	outcome := &MintOutcome{Contract: contract.Hex(), Fee: utils.FormatEther(fee)}

	if !config.IsDevelopment(d.Network) {
		request, err := d.Mint.RequestNFT(ctx, contract, fee)
		if err != nil {
			return nil, err
		}
		outcome.RequestID = request.RequestID.String()
		outcome.Pending = true
		return outcome, nil
	}

	coordinator := common.HexToAddress(record.VRFCoordinator)
	if !utils.IsValidEthereumAddress(record.VRFCoordinator) {
		if coordinator, err = d.Mint.VRFCoordinator(ctx, contract); err != nil {
			return nil, err
		}
	}
	token, err := d.Mint.Mint(ctx, contract, coordinator, fee)
	if err != nil {
		return nil, err
	}
	outcome.RequestID = token.RequestID.String()
	outcome.Token = token
	if gatewayURL, err := utils.IPFSGatewayURL(d.ipfsGateway, token.TokenURI); err == nil {
		outcome.TokenGatewayURL = gatewayURL
	}
	return outcome, nil
}

func (d *Deployer) graffitiRecord(contractAddress string) (*models.Deployment, error) {
	if contractAddress != "" {
		if !utils.IsValidEthereumAddress(contractAddress) {
			return nil, deployerr.Newf(deployerr.ConfigMissing, "invalid contract address %q", contractAddress)
		}
		address := common.HexToAddress(contractAddress).Hex()
		record, err := d.deployments.GetDeployment(contracts.GraffitiContractName, d.Network.ChainID, address)
		if err == nil {
			return record, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// not deployed by this tool; the coordinator is read from the contract
		return &models.Deployment{ContractAddress: address}, nil
	}

	record, err := d.deployments.GetLatestConfirmed(contracts.GraffitiContractName, d.Network.ChainID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, deployerr.Newf(deployerr.ConfigMissing, "no %s deployment on %s", contracts.GraffitiContractName, d.Network.Name)
	}
	return record, err
}
