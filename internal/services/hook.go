package services

import (
	"context"

	"github.com/rxtech-lab/graffiti-deployer/internal/models"
)

// DeploymentEvent describes a confirmed contract deployment. Hooks run in registration order
// and may record their outcome on the event for later hooks.
type DeploymentEvent struct {
	RunID        string
	DeploymentID uint
	Network      models.NetworkConfig
	Resolved     models.ResolvedNetwork
	Contract     *DeployContractResult

	ConsumerRegistered bool
	Verified           bool
}

// Hook is used to perform actions after a contract deployment is confirmed
type Hook interface {
	Name() string
	// CanHandle is used to check if the hook applies to the deployment
	CanHandle(event *DeploymentEvent) bool
	// OnContractDeployed is called once per handled deployment
	OnContractDeployed(ctx context.Context, event *DeploymentEvent) error
}
