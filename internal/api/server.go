package api

import (
	"fmt"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/rxtech-lab/graffiti-deployer/internal/config"
	"github.com/rxtech-lab/graffiti-deployer/internal/services"
	"go.uber.org/zap"
)

// APIServer exposes the network table and the deployment history read-only over HTTP.
type APIServer struct {
	app         *fiber.App
	networks    *config.NetworkTable
	deployments services.DeploymentService
	assets      services.AssetService
	ipfsGateway string
	log         *zap.Logger
	port        int
}

// NewAPIServer serves token URIs rewritten onto ipfsGateway next to the ipfs:// ones.
func NewAPIServer(networks *config.NetworkTable, deployments services.DeploymentService, assets services.AssetService, ipfsGateway string, log *zap.Logger) *APIServer {
	if log == nil {
		log = zap.NewNop()
	}
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// Add middleware
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
		Output:     zap.NewStdLog(log.Named("http")).Writer(),
	}))

	server := &APIServer{
		app:         app,
		networks:    networks,
		deployments: deployments,
		assets:      assets,
		ipfsGateway: ipfsGateway,
		log:         log,
	}
	server.setupRoutes()
	return server
}

func (s *APIServer) setupRoutes() {
	s.app.Get("/api/networks", s.handleListNetworks)
	s.app.Get("/api/networks/:id", s.handleGetNetwork)

	s.app.Get("/api/deployments", s.handleListDeployments)
	s.app.Get("/api/deployments/:id", s.handleGetDeployment)

	s.app.Get("/api/uploads/latest", s.handleLatestUpload)

	// Health check
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})
}

// Start starts the server on addr, or on a random available port when addr is empty.
func (s *APIServer) Start(addr string) (int, error) {
	if addr == "" {
		addr = ":0"
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return 0, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.port = listener.Addr().(*net.TCPAddr).Port

	go func() {
		if err := s.app.Listener(listener); err != nil {
			s.log.Error("API server stopped", zap.Error(err))
		}
	}()

	s.log.Info("API server listening", zap.Int("port", s.port))
	return s.port, nil
}

func (s *APIServer) Shutdown() error {
	return s.app.Shutdown()
}

func (s *APIServer) GetPort() int {
	return s.port
}

// App is the underlying fiber app, used by tests.
func (s *APIServer) App() *fiber.App {
	return s.app
}
