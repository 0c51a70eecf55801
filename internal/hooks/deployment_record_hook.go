package hooks

import (
	"context"
	"fmt"

	"github.com/rxtech-lab/graffiti-deployer/internal/services"
)

// DeploymentRecordHook stores the outcome of the earlier hooks on the deployment record, so it
// must be registered last.
type DeploymentRecordHook struct {
	deployments services.DeploymentService
}

func NewDeploymentRecordHook(deployments services.DeploymentService) services.Hook {
	return &DeploymentRecordHook{deployments: deployments}
}

func (h *DeploymentRecordHook) Name() string {
	return "deployment-record"
}

// CanHandle implements Hook.
func (h *DeploymentRecordHook) CanHandle(event *services.DeploymentEvent) bool {
	return event != nil && event.DeploymentID != 0
}

// OnContractDeployed implements Hook.
func (h *DeploymentRecordHook) OnContractDeployed(_ context.Context, event *services.DeploymentEvent) error {
	if err := h.deployments.UpdateDeploymentFlags(event.DeploymentID, event.ConsumerRegistered, event.Verified); err != nil {
		return fmt.Errorf("failed to record hook results for deployment %d: %w", event.DeploymentID, err)
	}
	return nil
}
