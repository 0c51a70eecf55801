package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/rxtech-lab/graffiti-deployer/internal/server"
	"github.com/rxtech-lab/graffiti-deployer/internal/services"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// graffiti deploy
func newDeployCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the Graffiti contract to the selected network",
		Long: `The deploy command runs one deployment: token URIs are uploaded to Pinata when
UPLOAD_TO_PINATA is set, otherwise taken from TOKEN_URIS or the last uploaded
batch. The contract is then deployed with the network's VRF parameters and the
post-deploy steps run: consumer registration on local networks and source
verification on public ones.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(true); err != nil {
				return err
			}
			defer a.close()

			deployer, err := a.deployer(cmd.Context(), a.network, a.account)
			if err != nil {
				return err
			}
			defer deployer.Close()

			request := server.DeployRequest(a.cfg, deployer.Network)
			request.OnProgress = a.progress("Uploading")

			report, err := deployer.Deploy.Deploy(cmd.Context(), request)
			if report != nil {
				a.printReport(report)
			}
			return err
		},
	}
}

func (a *app) printReport(report *services.DeployReport) {
	table := tablewriter.NewWriter(a.out)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	rows := [][]string{
		{"Run", report.RunID},
		{"Network", fmt.Sprintf("%s (%d)", report.Network, report.ChainID)},
		{"VRF Coordinator", report.VRFCoordinator},
		{"Subscription", strconv.FormatUint(report.SubscriptionID, 10)},
		{"Token URIs", strings.Join(report.TokenURIs, "\n")},
		{"Contract", report.ContractAddress},
		{"Transaction", report.TransactionHash},
		{"Consumer Registered", strconv.FormatBool(report.ConsumerRegistered)},
		{"Verified", strconv.FormatBool(report.Verified)},
	}
	table.AppendBulk(rows)
	table.Render()

	for _, warning := range report.Warnings {
		fmt.Fprintf(a.errOut, "warning: %s\n", warning)
	}
}

// progress returns an upload progress callback drawing a bar on the error stream.
func (a *app) progress(description string) func(done, total int, file string) {
	var bar *progressbar.ProgressBar
	return func(done, total int, file string) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(a.errOut),
				progressbar.OptionSetDescription(description),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		bar.Describe(fmt.Sprintf("%s %s", description, file))
		_ = bar.Set(done)
		if done == total {
			_ = bar.Finish()
		}
	}
}
