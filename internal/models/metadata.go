package models

import (
	"fmt"
	"time"
)

// TokenMetadata is the ERC-721 metadata document pinned for every asset.
type TokenMetadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Attributes  []Attribute `json:"attributes"`
}

type Attribute struct {
	TraitType string `json:"trait_type,omitempty"`
	Value     any    `json:"value"`
}

// UploadFailurePolicy decides what a failed asset upload does to the URI list.
type UploadFailurePolicy string

const (
	// UploadFailureAbort fails the run on the first failed asset.
	UploadFailureAbort UploadFailurePolicy = "abort"
	// UploadFailureSkip drops failed assets, shortening the list.
	UploadFailureSkip UploadFailurePolicy = "skip"
	// UploadFailurePlaceholder keeps index alignment by substituting a placeholder URI.
	UploadFailurePlaceholder UploadFailurePolicy = "placeholder"
)

func ParseUploadFailurePolicy(s string) (UploadFailurePolicy, error) {
	switch policy := UploadFailurePolicy(s); policy {
	case UploadFailureAbort, UploadFailureSkip, UploadFailurePlaceholder:
		return policy, nil
	case "":
		return UploadFailureAbort, nil
	default:
		return "", fmt.Errorf("unknown upload failure policy %q", s)
	}
}

type UploadStatus string

const (
	UploadStatusUploaded    UploadStatus = "uploaded"
	UploadStatusFailed      UploadStatus = "failed"
	UploadStatusPlaceholder UploadStatus = "placeholder"
)

// UploadedAsset is one entry of an upload batch, kept in directory order by Position.
type UploadedAsset struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	BatchID     string       `gorm:"index;not null" json:"batch_id"`
	Position    int          `gorm:"not null" json:"position"`
	FileName    string       `gorm:"not null" json:"file_name"`
	ImageCID    string       `json:"image_cid,omitempty"`
	MetadataCID string       `json:"metadata_cid,omitempty"`
	TokenURI    string       `json:"token_uri,omitempty"`
	Status      UploadStatus `gorm:"default:uploaded" json:"status"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}
