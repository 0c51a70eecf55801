package pinata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rxtech-lab/graffiti-deployer/internal/models"
	"go.uber.org/zap"
)

// StoreImagesResult pairs every listed file with its pin response. A nil response marks a
// failed upload at that index.
type StoreImagesResult struct {
	Responses []*PinResponse
	Files     []string
}

// Uploader stores images and token metadata through a Client.
type Uploader struct {
	client *Client
	logger *zap.Logger
}

func NewUploader(client *Client, logger *zap.Logger) *Uploader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Uploader{client: client, logger: logger}
}

// ListImages returns the regular, non-hidden files of dir in lexical order.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		files = append(files, entry.Name())
	}
	return files, nil
}

// StoreImage pins one file, named after its base name.
func (u *Uploader) StoreImage(ctx context.Context, path string) (*PinResponse, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	return u.client.PinFileToIPFS(ctx, filepath.Base(path), file)
}

// StoreImages pins every image in dir. Failures are logged and leave a nil response.
func (u *Uploader) StoreImages(ctx context.Context, dir string) (*StoreImagesResult, error) {
	files, err := ListImages(dir)
	if err != nil {
		return nil, err
	}

	result := &StoreImagesResult{
		Responses: make([]*PinResponse, len(files)),
		Files:     files,
	}
	for i, name := range files {
		u.logger.Info("Uploading image", zap.Int("index", i), zap.String("file", name))
		response, err := u.StoreImage(ctx, filepath.Join(dir, name))
		if err != nil {
			u.logger.Warn("Image upload failed", zap.String("file", name), zap.Error(err))
			continue
		}
		result.Responses[i] = response
	}
	return result, nil
}

// StoreMetadata pins a token metadata document named after the token.
func (u *Uploader) StoreMetadata(ctx context.Context, metadata models.TokenMetadata) (*PinResponse, error) {
	return u.client.PinJSONToIPFS(ctx, metadata, metadata.Name)
}

// Check verifies the credentials before any upload starts.
func (u *Uploader) Check(ctx context.Context) error {
	return u.client.TestAuthentication(ctx)
}
