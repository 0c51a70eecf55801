package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rxtech-lab/graffiti-deployer/internal/deployerr"
	"github.com/rxtech-lab/graffiti-deployer/internal/models"
	"github.com/rxtech-lab/graffiti-deployer/internal/pinata"
	"github.com/rxtech-lab/graffiti-deployer/internal/pinata/pinatatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeUploader struct {
	calls        []string
	failImage    map[string]bool
	failMetadata map[string]bool
	checkErr     error
}

func (f *fakeUploader) StoreImage(_ context.Context, path string) (*pinata.PinResponse, error) {
	name := filepath.Base(path)
	f.calls = append(f.calls, "image:"+name)
	if f.failImage[name] {
		return nil, errors.New("image rejected")
	}
	return &pinata.PinResponse{IpfsHash: "img-" + name}, nil
}

func (f *fakeUploader) StoreMetadata(_ context.Context, metadata models.TokenMetadata) (*pinata.PinResponse, error) {
	f.calls = append(f.calls, "metadata:"+metadata.Name)
	if f.failMetadata[metadata.Name] {
		return nil, errors.New("metadata rejected")
	}
	return &pinata.PinResponse{IpfsHash: "meta-" + metadata.Name}, nil
}

func (f *fakeUploader) Check(context.Context) error {
	return f.checkErr
}

func writeImages(t *testing.T, names ...string) string {
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("image "+name), 0o600))
	}
	return dir
}

func TestPrepareMetadataAllSucceed(t *testing.T) {
	dir := writeImages(t, "throwie.png", "mural.png", "stencil.png")
	uploader := &fakeUploader{}
	assets := NewAssetService(newTestDB(t))
	service := NewMetadataService(uploader, assets, zaptest.NewLogger(t))

	var progress []int
	result, err := service.PrepareMetadata(context.Background(), PrepareMetadataArgs{
		ImagesPath: dir,
		OnProgress: func(done, total int, _ string) {
			assert.Equal(t, 3, total)
			progress = append(progress, done)
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"ipfs://meta-mural", "ipfs://meta-stencil", "ipfs://meta-throwie"}, result.TokenURIs)
	assert.Empty(t, result.Failures)
	assert.Equal(t, []int{1, 2, 3}, progress)
	// image upload completes before the matching metadata upload starts
	assert.Equal(t, []string{
		"image:mural.png", "metadata:mural",
		"image:stencil.png", "metadata:stencil",
		"image:throwie.png", "metadata:throwie",
	}, uploader.calls)

	saved, err := assets.LatestBatch()
	require.NoError(t, err)
	assert.Equal(t, result.TokenURIs, BatchTokenURIs(saved))
	assert.Equal(t, "img-mural.png", saved[0].ImageCID)
}

func TestPrepareMetadataFailurePolicies(t *testing.T) {
	tests := []struct {
		name     string
		policy   models.UploadFailurePolicy
		expected []string
		fails    bool
	}{
		{name: "abort", policy: models.UploadFailureAbort, fails: true},
		{name: "default is abort", policy: "", fails: true},
		{name: "skip", policy: models.UploadFailureSkip, expected: []string{"ipfs://meta-a", "ipfs://meta-c"}},
		{name: "placeholder", policy: models.UploadFailurePlaceholder, expected: []string{"ipfs://meta-a", "ipfs://placeholder", "ipfs://meta-c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeImages(t, "a.png", "b.png", "c.png")
			uploader := &fakeUploader{failImage: map[string]bool{"b.png": true}}
			service := NewMetadataService(uploader, nil, zaptest.NewLogger(t))

			result, err := service.PrepareMetadata(context.Background(), PrepareMetadataArgs{
				ImagesPath:     dir,
				Policy:         tt.policy,
				PlaceholderURI: "ipfs://placeholder",
			})
			if tt.fails {
				require.Error(t, err)
				assert.True(t, errors.Is(err, deployerr.ErrUploadFailed))
				assert.Contains(t, err.Error(), "b.png")
				assert.NotContains(t, uploader.calls, "image:c.png")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.TokenURIs)
			require.Len(t, result.Failures, 1)
			assert.True(t, errors.Is(result.Failures[0], deployerr.ErrUploadFailed))
			assert.Len(t, result.Assets, 3)
		})
	}
}

func TestPrepareMetadataMetadataFailureKeepsImageCID(t *testing.T) {
	dir := writeImages(t, "a.png")
	uploader := &fakeUploader{failMetadata: map[string]bool{"a": true}}
	service := NewMetadataService(uploader, nil, nil)

	result, err := service.PrepareMetadata(context.Background(), PrepareMetadataArgs{ImagesPath: dir, Policy: models.UploadFailureSkip})
	require.NoError(t, err)
	assert.Empty(t, result.TokenURIs)
	require.Len(t, result.Assets, 1)
	assert.Equal(t, "img-a.png", result.Assets[0].ImageCID)
	assert.Equal(t, models.UploadStatusFailed, result.Assets[0].Status)
}

func TestPrepareMetadataConfigErrors(t *testing.T) {
	service := NewMetadataService(&fakeUploader{}, nil, nil)

	_, err := service.PrepareMetadata(context.Background(), PrepareMetadataArgs{ImagesPath: filepath.Join(t.TempDir(), "missing")})
	assert.True(t, errors.Is(err, deployerr.ErrConfigMissing))

	_, err = service.PrepareMetadata(context.Background(), PrepareMetadataArgs{ImagesPath: t.TempDir(), Policy: models.UploadFailurePlaceholder})
	assert.True(t, errors.Is(err, deployerr.ErrConfigMissing))

	bad := NewMetadataService(&fakeUploader{checkErr: errors.New("401")}, nil, nil)
	_, err = bad.PrepareMetadata(context.Background(), PrepareMetadataArgs{ImagesPath: t.TempDir()})
	assert.True(t, errors.Is(err, deployerr.ErrConfigMissing))
}

func TestPrepareMetadataWithPinata(t *testing.T) {
	server := pinatatest.NewServer()
	defer server.Close()
	client, err := pinata.NewClient(pinata.Config{
		APIKey:    pinatatest.APIKey,
		APISecret: pinatatest.APISecret,
		BaseURL:   server.URL,
	})
	require.NoError(t, err)

	dir := writeImages(t, "stencil.png")
	service := NewMetadataService(pinata.NewUploader(client, zaptest.NewLogger(t)), nil, zaptest.NewLogger(t))
	result, err := service.PrepareMetadata(context.Background(), PrepareMetadataArgs{ImagesPath: dir})
	require.NoError(t, err)

	pins := server.Pins()
	require.Len(t, pins, 2)
	assert.Equal(t, "file", pins[0].Kind)
	assert.Equal(t, "json", pins[1].Kind)
	assert.Equal(t, []string{"ipfs://" + pins[1].CID}, result.TokenURIs)

	var metadata models.TokenMetadata
	require.NoError(t, json.Unmarshal(pins[1].Content, &metadata))
	assert.Equal(t, "stencil", metadata.Name)
	assert.Equal(t, "stencil is a dev's illustration of art", metadata.Description)
	assert.Equal(t, "ipfs://"+pins[0].CID, metadata.Image)
	require.Len(t, metadata.Attributes, 1)
	assert.Equal(t, float64(100), metadata.Attributes[0].Value)
}
