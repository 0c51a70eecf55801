package services

import (
	"testing"

	"github.com/rxtech-lab/graffiti-deployer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetService(t *testing.T) {
	service := NewAssetService(newTestDB(t))

	latest, err := service.LatestBatch()
	require.NoError(t, err)
	assert.Nil(t, latest)

	require.NoError(t, service.SaveBatch([]models.UploadedAsset{
		{BatchID: "old", Position: 0, FileName: "a.png", TokenURI: "ipfs://old"},
	}))
	require.NoError(t, service.SaveBatch([]models.UploadedAsset{
		{BatchID: "new", Position: 1, FileName: "b.png", Status: models.UploadStatusFailed, Error: "boom"},
		{BatchID: "new", Position: 0, FileName: "a.png", TokenURI: "ipfs://a"},
		{BatchID: "new", Position: 2, FileName: "c.png", TokenURI: "ipfs://c"},
	}))
	require.NoError(t, service.SaveBatch(nil))

	latest, err = service.LatestBatch()
	require.NoError(t, err)
	require.Len(t, latest, 3)
	assert.Equal(t, []string{"a.png", "b.png", "c.png"}, []string{latest[0].FileName, latest[1].FileName, latest[2].FileName})
	assert.Equal(t, []string{"ipfs://a", "ipfs://c"}, BatchTokenURIs(latest))

	old, err := service.ListBatch("old")
	require.NoError(t, err)
	assert.Equal(t, []string{"ipfs://old"}, BatchTokenURIs(old))
}
