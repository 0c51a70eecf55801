package main

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/rxtech-lab/graffiti-deployer/internal/deployerr"
	"github.com/rxtech-lab/graffiti-deployer/internal/models"
	"github.com/rxtech-lab/graffiti-deployer/internal/server"
	"github.com/rxtech-lab/graffiti-deployer/internal/services"
	"github.com/spf13/cobra"
)

// graffiti upload
func newUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload",
		Short: "Upload the collection images and metadata to Pinata",
		Long: `The upload command pins every image in IMAGES_PATH followed by its metadata
document and records the batch. A later deploy without UPLOAD_TO_PINATA or
TOKEN_URIS uses the URIs of the latest batch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(true); err != nil {
				return err
			}
			defer a.close()

			metadata, err := server.InitializeMetadataService(a.cfg, a.stores.Assets, a.logger)
			if err != nil {
				return err
			}
			if metadata == nil {
				return deployerr.Newf(deployerr.ConfigMissing, "PINATA_API_KEY and PINATA_API_SECRET are required to upload")
			}

			result, err := metadata.PrepareMetadata(cmd.Context(), services.PrepareMetadataArgs{
				ImagesPath:     a.cfg.ImagesPath,
				Policy:         a.cfg.UploadFailurePolicy,
				PlaceholderURI: a.cfg.PlaceholderTokenURI,
				OnProgress:     a.progress("Uploading"),
			})
			if err != nil {
				return err
			}

			printAssets(a, result.Assets)
			for _, failure := range result.Failures {
				fmt.Fprintf(a.errOut, "warning: %s\n", failure)
			}
			fmt.Fprintf(a.out, "Batch %s: %d token URIs\n", result.BatchID, len(result.TokenURIs))
			return nil
		},
	}
}

func printAssets(a *app, assets []models.UploadedAsset) {
	table := tablewriter.NewWriter(a.out)
	table.SetHeader([]string{"#", "File", "Status", "Token URI"})
	table.SetAutoWrapText(false)
	for _, asset := range assets {
		table.Append([]string{
			strconv.Itoa(asset.Position),
			asset.FileName,
			string(asset.Status),
			asset.TokenURI,
		})
	}
	table.Render()
}
