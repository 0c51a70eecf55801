package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rxtech-lab/graffiti-deployer/internal/deployerr"
	"github.com/rxtech-lab/graffiti-deployer/internal/models"
	"github.com/rxtech-lab/graffiti-deployer/internal/pinata"
	"github.com/rxtech-lab/graffiti-deployer/internal/utils"
	"go.uber.org/zap"
)

// Uploader is the pinning collaborator used to store images and token metadata.
type Uploader interface {
	StoreImage(ctx context.Context, path string) (*pinata.PinResponse, error)
	StoreMetadata(ctx context.Context, metadata models.TokenMetadata) (*pinata.PinResponse, error)
}

// credentialChecker is implemented by uploaders that can verify their credentials up front.
type credentialChecker interface {
	Check(ctx context.Context) error
}

type PrepareMetadataArgs struct {
	ImagesPath     string                     `validate:"required"`
	Policy         models.UploadFailurePolicy `validate:"oneof=abort skip placeholder"`
	PlaceholderURI string                     `validate:"required_if=Policy placeholder"`
	// OnProgress is called after each file has been processed.
	OnProgress func(done, total int, file string)
}

type PrepareMetadataResult struct {
	BatchID   string
	TokenURIs []string
	Assets    []models.UploadedAsset
	// Failures holds one UploadFailed error per file that could not be uploaded.
	Failures []error
}

type MetadataService interface {
	// PrepareMetadata uploads every image in a directory followed by its metadata document and
	// returns the metadata URIs in directory order.
	PrepareMetadata(ctx context.Context, args PrepareMetadataArgs) (*PrepareMetadataResult, error)
}

type metadataService struct {
	uploader  Uploader
	assets    AssetService
	validator *validator.Validate
	logger    *zap.Logger
}

func NewMetadataService(uploader Uploader, assets AssetService, logger *zap.Logger) MetadataService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &metadataService{
		uploader:  uploader,
		assets:    assets,
		validator: validator.New(),
		logger:    logger,
	}
}

// TokenDescription is the description stored in the metadata of the named token.
func TokenDescription(name string) string {
	return fmt.Sprintf("%s is a dev's illustration of art", name)
}

func (s *metadataService) PrepareMetadata(ctx context.Context, args PrepareMetadataArgs) (*PrepareMetadataResult, error) {
	if args.Policy == "" {
		args.Policy = models.UploadFailureAbort
	}
	if err := s.validator.Struct(args); err != nil {
		return nil, deployerr.New(deployerr.ConfigMissing, "upload settings", err)
	}

	if checker, ok := s.uploader.(credentialChecker); ok {
		if err := checker.Check(ctx); err != nil {
			return nil, deployerr.New(deployerr.ConfigMissing, "pinata credentials", err)
		}
	}

	files, err := pinata.ListImages(args.ImagesPath)
	if err != nil {
		return nil, deployerr.New(deployerr.ConfigMissing, "images directory", err)
	}

	result := &PrepareMetadataResult{BatchID: uuid.NewString()}
	s.logger.Info("Uploading token metadata",
		zap.String("batch", result.BatchID),
		zap.String("path", args.ImagesPath),
		zap.Int("files", len(files)),
	)

	for i, file := range files {
		asset := models.UploadedAsset{
			BatchID:  result.BatchID,
			Position: i,
			FileName: file,
			Status:   models.UploadStatusUploaded,
		}

		tokenURI, imageCID, metadataCID, err := s.uploadOne(ctx, args.ImagesPath, file)
		if err != nil {
			failure := deployerr.New(deployerr.UploadFailed, file, err)
			s.logger.Warn("Upload failed", zap.String("file", file), zap.Error(err))
			result.Failures = append(result.Failures, failure)

			if args.Policy == models.UploadFailureAbort {
				return nil, failure
			}

			asset.Error = err.Error()
			asset.ImageCID = imageCID
			if args.Policy == models.UploadFailurePlaceholder {
				asset.Status = models.UploadStatusPlaceholder
				asset.TokenURI = args.PlaceholderURI
				result.TokenURIs = append(result.TokenURIs, args.PlaceholderURI)
			} else {
				asset.Status = models.UploadStatusFailed
			}
		} else {
			asset.ImageCID = imageCID
			asset.MetadataCID = metadataCID
			asset.TokenURI = tokenURI
			result.TokenURIs = append(result.TokenURIs, tokenURI)
		}
		result.Assets = append(result.Assets, asset)

		if args.OnProgress != nil {
			args.OnProgress(i+1, len(files), file)
		}
	}

	if s.assets != nil {
		if err := s.assets.SaveBatch(result.Assets); err != nil {
			return nil, fmt.Errorf("failed to save upload batch: %w", err)
		}
	}

	s.logger.Info("Token metadata uploaded",
		zap.Strings("tokenURIs", result.TokenURIs),
		zap.Int("failures", len(result.Failures)),
	)
	return result, nil
}

// uploadOne stores the image and then its metadata document. The image CID is returned even
// when only the metadata upload failed.
func (s *metadataService) uploadOne(ctx context.Context, dir, file string) (tokenURI, imageCID, metadataCID string, err error) {
	imageResponse, err := s.uploader.StoreImage(ctx, filepath.Join(dir, file))
	if err != nil {
		return "", "", "", fmt.Errorf("image upload: %w", err)
	}
	if imageResponse == nil || imageResponse.IpfsHash == "" {
		return "", "", "", fmt.Errorf("image upload returned no content id")
	}
	imageCID = imageResponse.IpfsHash

	name := strings.TrimSuffix(file, filepath.Ext(file))
	metadata := models.TokenMetadata{
		Name:        name,
		Description: TokenDescription(name),
		Image:       utils.ToIPFSURI(imageCID),
		Attributes:  []models.Attribute{{Value: 100}},
	}
	metadataResponse, err := s.uploader.StoreMetadata(ctx, metadata)
	if err != nil {
		return "", imageCID, "", fmt.Errorf("metadata upload: %w", err)
	}
	if metadataResponse == nil || metadataResponse.IpfsHash == "" {
		return "", imageCID, "", fmt.Errorf("metadata upload returned no content id")
	}

	return utils.ToIPFSURI(metadataResponse.IpfsHash), imageCID, metadataResponse.IpfsHash, nil
}
