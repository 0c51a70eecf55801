package pinata

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rxtech-lab/graffiti-deployer/internal/models"
	"github.com/rxtech-lab/graffiti-deployer/internal/pinata/pinatatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, server *pinatatest.Server) *Client {
	client, err := NewClient(Config{
		APIKey:     pinatatest.APIKey,
		APISecret:  pinatatest.APISecret,
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{APIKey: "key"})
	assert.Error(t, err)

	client, err := NewClient(Config{APIKey: "key", APISecret: "secret"})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, client.baseURL)
}

func TestPinFileToIPFS(t *testing.T) {
	server := pinatatest.NewServer()
	defer server.Close()
	client := newTestClient(t, server)

	response, err := client.PinFileToIPFS(context.Background(), "stencil.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, pinatatest.CIDFor([]byte("png-bytes")), response.IpfsHash)
	assert.Equal(t, int64(len("png-bytes")), response.PinSize)

	pins := server.Pins()
	require.Len(t, pins, 1)
	assert.Equal(t, "file", pins[0].Kind)
	assert.Equal(t, "stencil.png", pins[0].Name)
}

func TestPinJSONToIPFS(t *testing.T) {
	server := pinatatest.NewServer()
	defer server.Close()
	client := newTestClient(t, server)

	metadata := models.TokenMetadata{
		Name:        "stencil",
		Description: "stencil is a dev's illustration of art",
		Image:       "ipfs://QmImage",
		Attributes:  []models.Attribute{{Value: 100}},
	}
	response, err := client.PinJSONToIPFS(context.Background(), metadata, metadata.Name)
	require.NoError(t, err)
	assert.NotEmpty(t, response.IpfsHash)

	pins := server.Pins()
	require.Len(t, pins, 1)
	assert.Equal(t, "json", pins[0].Kind)
	assert.Equal(t, "stencil", pins[0].Name)

	var pinned map[string]any
	require.NoError(t, json.Unmarshal(pins[0].Content, &pinned))
	assert.Equal(t, "ipfs://QmImage", pinned["image"])
	assert.Equal(t, []any{map[string]any{"value": float64(100)}}, pinned["attributes"])
}

func TestTestAuthentication(t *testing.T) {
	server := pinatatest.NewServer()
	defer server.Close()

	require.NoError(t, newTestClient(t, server).TestAuthentication(context.Background()))

	bad, err := NewClient(Config{APIKey: "wrong", APISecret: "wrong", BaseURL: server.URL})
	require.NoError(t, err)
	err = bad.TestAuthentication(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestPinFailureStatus(t *testing.T) {
	server := pinatatest.NewServer()
	defer server.Close()
	server.FailOn("broken.png")

	_, err := newTestClient(t, server).PinFileToIPFS(context.Background(), "broken.png", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestStoreImages(t *testing.T) {
	server := pinatatest.NewServer()
	defer server.Close()
	server.FailOn("b.png")

	dir := t.TempDir()
	for _, name := range []string{"c.png", "a.png", "b.png", ".DS_Store"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("image "+name), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o700))

	uploader := NewUploader(newTestClient(t, server), zaptest.NewLogger(t))
	result, err := uploader.StoreImages(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.png", "b.png", "c.png"}, result.Files)
	require.Len(t, result.Responses, 3)
	assert.Equal(t, pinatatest.CIDFor([]byte("image a.png")), result.Responses[0].IpfsHash)
	assert.Nil(t, result.Responses[1])
	assert.Equal(t, pinatatest.CIDFor([]byte("image c.png")), result.Responses[2].IpfsHash)
}

func TestStoreImagesMissingDir(t *testing.T) {
	server := pinatatest.NewServer()
	defer server.Close()

	uploader := NewUploader(newTestClient(t, server), nil)
	_, err := uploader.StoreImages(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestUploaderCheck(t *testing.T) {
	server := pinatatest.NewServer()
	defer server.Close()

	uploader := NewUploader(newTestClient(t, server), nil)
	assert.NoError(t, uploader.Check(context.Background()))
}
