package services

import (
	"errors"

	"github.com/rxtech-lab/graffiti-deployer/internal/models"
	"gorm.io/gorm"
)

// AssetService persists upload batches so later runs can reuse their token URIs.
type AssetService interface {
	SaveBatch(assets []models.UploadedAsset) error
	ListBatch(batchID string) ([]models.UploadedAsset, error)
	// LatestBatch returns the most recently saved batch, or nil when nothing was uploaded yet.
	LatestBatch() ([]models.UploadedAsset, error)
}

type assetService struct {
	db *gorm.DB
}

func NewAssetService(db *gorm.DB) AssetService {
	return &assetService{db: db}
}

func (s *assetService) SaveBatch(assets []models.UploadedAsset) error {
	if len(assets) == 0 {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&assets).Error
	})
}

func (s *assetService) ListBatch(batchID string) ([]models.UploadedAsset, error) {
	var assets []models.UploadedAsset
	err := s.db.Where("batch_id = ?", batchID).Order("position asc").Find(&assets).Error
	return assets, err
}

func (s *assetService) LatestBatch() ([]models.UploadedAsset, error) {
	var latest models.UploadedAsset
	err := s.db.Order("id desc").First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.ListBatch(latest.BatchID)
}

// BatchTokenURIs returns the usable token URIs of a batch in position order.
func BatchTokenURIs(assets []models.UploadedAsset) []string {
	var uris []string
	for _, asset := range assets {
		if asset.TokenURI != "" {
			uris = append(uris, asset.TokenURI)
		}
	}
	return uris
}
