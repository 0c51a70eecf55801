package services

import (
	"context"
	"fmt"

	"github.com/rxtech-lab/graffiti-deployer/internal/deployerr"
	"go.uber.org/zap"
)

type HookService interface {
	AddHook(hook Hook) error
	// OnContractDeployed runs every applicable hook. Recoverable hook failures are returned as
	// warnings; the first fatal failure stops processing.
	OnContractDeployed(ctx context.Context, event *DeploymentEvent) ([]error, error)
}

type hookService struct {
	hooks  []Hook
	logger *zap.Logger
}

func NewHookService(logger *zap.Logger) HookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &hookService{
		hooks:  []Hook{},
		logger: logger,
	}
}

func (h *hookService) AddHook(hook Hook) error {
	if hook == nil {
		return fmt.Errorf("hook is nil")
	}
	h.hooks = append(h.hooks, hook)
	return nil
}

func (h *hookService) OnContractDeployed(ctx context.Context, event *DeploymentEvent) ([]error, error) {
	var warnings []error
	for _, hook := range h.hooks {
		if !hook.CanHandle(event) {
			continue
		}
		if err := hook.OnContractDeployed(ctx, event); err != nil {
			if deployerr.IsFatal(err) {
				return warnings, err
			}
			h.logger.Warn("Post-deploy hook failed", zap.String("hook", hook.Name()), zap.Error(err))
			warnings = append(warnings, err)
		}
	}
	return warnings, nil
}
