package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// graffiti mint [contract]
func newMintCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mint [contract]",
		Short: "Mint a random Graffiti NFT",
		Long: `The mint command pays the contract's mint fee and requests a random NFT. On local
networks the request is fulfilled through the VRF mock right away and the minted
token is printed. On public networks the oracle fulfills it later and only the
request id is printed.

The contract defaults to the latest confirmed Graffiti deployment on the network.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(true); err != nil {
				return err
			}
			defer a.close()

			deployer, err := a.deployer(cmd.Context(), a.network, a.account)
			if err != nil {
				return err
			}
			defer deployer.Close()

			contract := ""
			if len(args) == 1 {
				contract = args[0]
			}
			outcome, err := deployer.MintGraffiti(cmd.Context(), contract)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Contract: %s\nFee: %s ETH\nRequest: %s\n", outcome.Contract, outcome.Fee, outcome.RequestID)
			if outcome.Pending {
				fmt.Fprintln(a.out, "Waiting for the VRF coordinator to fulfill the request")
				return nil
			}
			token := outcome.Token
			fmt.Fprintf(a.out, "Token: %s\nBreed: %s\nOwner: %s\nURI: %s\n", token.TokenID, token.BreedName, token.Minter.Hex(), token.TokenURI)
			if outcome.TokenGatewayURL != "" && outcome.TokenGatewayURL != token.TokenURI {
				fmt.Fprintf(a.out, "Gateway: %s\n", outcome.TokenGatewayURL)
			}
			return nil
		},
	}
}
