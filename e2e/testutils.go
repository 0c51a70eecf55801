package e2e

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rxtech-lab/graffiti-deployer/internal/api"
	"github.com/rxtech-lab/graffiti-deployer/internal/chaintest"
	"github.com/rxtech-lab/graffiti-deployer/internal/config"
	"github.com/rxtech-lab/graffiti-deployer/internal/models"
	"github.com/rxtech-lab/graffiti-deployer/internal/pinata/pinatatest"
	"github.com/rxtech-lab/graffiti-deployer/internal/server"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// Artwork for the three breeds, in directory order.
var testImages = []string{"mural.png", "stencil.png", "throwie.png"}

// TestSetup holds all test infrastructure
type TestSetup struct {
	Config    *config.Config
	Stores    *server.Stores
	Chain     *chaintest.Chain
	Pinata    *pinatatest.Server
	APIServer *api.APIServer
	Network   models.NetworkConfig
	ImagesDir string
	t         *testing.T
}

// NewTestSetup starts an in-process chain, a fake pinning service and the API server, and
// loads the configuration from the environment the way the binary does.
func NewTestSetup(t *testing.T) *TestSetup {
	setup := &TestSetup{t: t}

	setup.Pinata = pinatatest.NewServer()
	t.Cleanup(setup.Pinata.Close)

	setup.ImagesDir = t.TempDir()
	for _, name := range testImages {
		require.NoError(t, os.WriteFile(filepath.Join(setup.ImagesDir, name), []byte("artwork "+name), 0o600))
	}

	t.Setenv("UPLOAD_TO_PINATA", "true")
	t.Setenv("PINATA_API_KEY", pinatatest.APIKey)
	t.Setenv("PINATA_API_SECRET", pinatatest.APISecret)
	t.Setenv("PINATA_BASE_URL", setup.Pinata.URL)
	t.Setenv("IMAGES_PATH", setup.ImagesDir)
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "deployments.db"))
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ETHERSCAN_API_KEY", "")
	t.Setenv("PRIVATE_KEY", "")
	t.Setenv("TOKEN_URIS", "")
	t.Setenv("UPLOAD_FAILURE_POLICY", "")

	cfg, err := config.Load("")
	require.NoError(t, err)
	setup.Config = cfg

	stores, err := server.InitializeStores(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })
	setup.Stores = stores

	network, err := cfg.Networks.Lookup("hardhat")
	require.NoError(t, err)
	network.ChainID = chaintest.ChainID.Uint64()
	setup.Network = network

	setup.Chain = chaintest.New(t)
	setup.APIServer = api.NewAPIServer(cfg.Networks, stores.Deployments, stores.Assets, cfg.IPFSGateway, zaptest.NewLogger(t))
	return setup
}

// Deployer signs with the development account at index account.
func (s *TestSetup) Deployer(account int) *server.Deployer {
	deployer, err := server.NewDeployerWithBackend(s.Config, s.Stores, s.Network, s.Chain.Client, s.Chain.Keys[account], zaptest.NewLogger(s.t))
	require.NoError(s.t, err)
	return deployer
}
