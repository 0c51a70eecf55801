package main

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/rxtech-lab/graffiti-deployer/internal/config"
	"github.com/rxtech-lab/graffiti-deployer/internal/models"
	"github.com/rxtech-lab/graffiti-deployer/internal/utils"
	"github.com/spf13/cobra"
)

// graffiti networks
func newNetworksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "List the known networks and their VRF parameters",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.load(false); err != nil {
				return err
			}
			defer a.close()

			table := tablewriter.NewWriter(a.out)
			table.SetHeader([]string{"Name", "Chain ID", "Local", "VRF Coordinator", "Subscription", "Mint Fee (ETH)", "RPC"})
			table.SetAutoWrapText(false)
			for _, network := range a.cfg.Networks.List() {
				coordinator := network.VRFCoordinator
				subscription := strconv.FormatUint(network.SubscriptionID, 10)
				if config.IsDevelopment(network) {
					coordinator = "mock"
					subscription = "per run"
				}
				fee := ""
				if network.MintFee != nil {
					fee = utils.FormatEther(network.MintFee)
				}
				table.Append([]string{
					network.Name,
					strconv.FormatUint(network.ChainID, 10),
					strconv.FormatBool(config.IsDevelopment(network)),
					coordinator,
					subscription,
					fee,
					network.RPCURL,
				})
			}
			table.Render()
			return nil
		},
	}
}

// graffiti deployments
func newDeploymentsCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "deployments",
		Short: "List recorded deployments on the selected network",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.load(true); err != nil {
				return err
			}
			defer a.close()

			var (
				records []models.Deployment
				err     error
			)
			if all {
				records, err = a.stores.Deployments.ListDeployments()
			} else {
				network, lookupErr := a.cfg.Networks.Lookup(a.network)
				if lookupErr != nil {
					return lookupErr
				}
				records, err = a.stores.Deployments.ListDeploymentsByChain(network.ChainID)
			}
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(a.out)
			table.SetHeader([]string{"ID", "Contract", "Network", "Address", "Status", "Consumer", "Verified", "Created"})
			table.SetAutoWrapText(false)
			for _, record := range records {
				table.Append([]string{
					strconv.FormatUint(uint64(record.ID), 10),
					record.ContractName,
					record.NetworkName,
					record.ContractAddress,
					string(record.Status),
					strconv.FormatBool(record.ConsumerRegistered),
					strconv.FormatBool(record.Verified),
					record.CreatedAt.Format("2006-01-02 15:04:05"),
				})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all-networks", false, "list deployments on every network")
	return cmd
}
