package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/graffiti-deployer/internal/config"
	"github.com/rxtech-lab/graffiti-deployer/internal/models"
	"github.com/rxtech-lab/graffiti-deployer/internal/services"
	"github.com/rxtech-lab/graffiti-deployer/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type networkResponse struct {
	models.NetworkConfig
	MintFeeEther string `json:"mint_fee_ether,omitempty"`
	Development  bool   `json:"development"`
}

type uploadResponse struct {
	BatchID     string                 `json:"batch_id"`
	TokenURIs   []string               `json:"token_uris"`
	GatewayURLs []string               `json:"gateway_urls"`
	Assets      []models.UploadedAsset `json:"assets"`
}

func toNetworkResponse(network models.NetworkConfig) networkResponse {
	response := networkResponse{NetworkConfig: network, Development: config.IsDevelopment(network)}
	if network.MintFee != nil {
		response.MintFeeEther = utils.FormatEther(network.MintFee)
	}
	return response
}

func (s *APIServer) handleListNetworks(c *fiber.Ctx) error {
	networks := s.networks.List()
	response := make([]networkResponse, 0, len(networks))
	for _, network := range networks {
		response = append(response, toNetworkResponse(network))
	}
	return c.JSON(response)
}

// handleGetNetwork accepts a network name or a chain id.
func (s *APIServer) handleGetNetwork(c *fiber.Ctx) error {
	network, err := s.networks.Lookup(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(map[string]string{"error": err.Error()})
	}
	return c.JSON(toNetworkResponse(network))
}

// handleListDeployments lists deployment records, optionally filtered by run_id or chain_id.
func (s *APIServer) handleListDeployments(c *fiber.Ctx) error {
	var (
		deployments []models.Deployment
		err         error
	)
	switch {
	case c.Query("run_id") != "":
		deployments, err = s.deployments.ListDeploymentsByRun(c.Query("run_id"))
	case c.Query("chain_id") != "":
		chainID, parseErr := strconv.ParseUint(c.Query("chain_id"), 10, 64)
		if parseErr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(map[string]string{"error": "Invalid chain_id"})
		}
		deployments, err = s.deployments.ListDeploymentsByChain(chainID)
	default:
		deployments, err = s.deployments.ListDeployments()
	}
	if err != nil {
		s.log.Error("Failed to list deployments", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(map[string]string{"error": "Failed to list deployments"})
	}

	if status := c.Query("status"); status != "" {
		filtered := deployments[:0]
		for _, deployment := range deployments {
			if string(deployment.Status) == status {
				filtered = append(filtered, deployment)
			}
		}
		deployments = filtered
	}
	if deployments == nil {
		deployments = []models.Deployment{}
	}
	return c.JSON(deployments)
}

func (s *APIServer) handleGetDeployment(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(map[string]string{"error": "Invalid deployment id"})
	}

	deployment, err := s.deployments.GetDeploymentByID(uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(map[string]string{"error": "Deployment not found"})
	}
	if err != nil {
		s.log.Error("Failed to load deployment", zap.Uint64("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(map[string]string{"error": "Failed to load deployment"})
	}
	return c.JSON(deployment)
}

func (s *APIServer) handleLatestUpload(c *fiber.Ctx) error {
	batch, err := s.assets.LatestBatch()
	if err != nil {
		s.log.Error("Failed to load upload batch", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(map[string]string{"error": "Failed to load upload batch"})
	}
	if len(batch) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(map[string]string{"error": "No uploads yet"})
	}
	tokenURIs := services.BatchTokenURIs(batch)
	gatewayURLs := make([]string, 0, len(tokenURIs))
	for _, uri := range tokenURIs {
		gatewayURL, err := utils.IPFSGatewayURL(s.ipfsGateway, uri)
		if err != nil {
			s.log.Error("Failed to build gateway url", zap.String("uri", uri), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(map[string]string{"error": "Invalid IPFS gateway"})
		}
		gatewayURLs = append(gatewayURLs, gatewayURL)
	}
	return c.JSON(uploadResponse{
		BatchID:     batch[0].BatchID,
		TokenURIs:   tokenURIs,
		GatewayURLs: gatewayURLs,
		Assets:      batch,
	})
}
