package services

import (
	"github.com/rxtech-lab/graffiti-deployer/internal/models"
	"gorm.io/gorm"
)

type DeploymentService interface {
	CreateDeployment(deployment *models.Deployment) error
	GetDeploymentByID(id uint) (*models.Deployment, error)
	ListDeployments() ([]models.Deployment, error)
	ListDeploymentsByRun(runID string) ([]models.Deployment, error)
	ListDeploymentsByChain(chainID uint64) ([]models.Deployment, error)
	UpdateDeploymentStatus(id uint, status models.TransactionStatus, contractAddress, txHash string) error
	MarkDeploymentFailed(id uint, reason string) error
	UpdateDeploymentFlags(id uint, consumerRegistered, verified bool) error
	// GetDeployment returns the newest record of contractName at contractAddress on chainID.
	GetDeployment(contractName string, chainID uint64, contractAddress string) (*models.Deployment, error)
	// GetLatestConfirmed returns the newest confirmed deployment of contractName on chainID.
	GetLatestConfirmed(contractName string, chainID uint64) (*models.Deployment, error)
	DeleteDeployment(id uint) error
}

// deploymentService handles deployment-related operations
type deploymentService struct {
	db *gorm.DB
}

// NewDeploymentService creates a new DeploymentService
func NewDeploymentService(db *gorm.DB) DeploymentService {
	return &deploymentService{db: db}
}

// CreateDeployment creates a new deployment
func (s *deploymentService) CreateDeployment(deployment *models.Deployment) error {
	return s.db.Create(deployment).Error
}

// GetDeploymentByID returns a deployment by its ID
func (s *deploymentService) GetDeploymentByID(id uint) (*models.Deployment, error) {
	var deployment models.Deployment
	err := s.db.First(&deployment, id).Error
	if err != nil {
		return nil, err
	}
	return &deployment, nil
}

// ListDeployments returns all deployments, newest first
func (s *deploymentService) ListDeployments() ([]models.Deployment, error) {
	var deployments []models.Deployment
	err := s.db.Order("id desc").Find(&deployments).Error
	return deployments, err
}

// ListDeploymentsByRun returns the deployments made by one deployment run, in order
func (s *deploymentService) ListDeploymentsByRun(runID string) ([]models.Deployment, error) {
	var deployments []models.Deployment
	err := s.db.Where("run_id = ?", runID).Order("id asc").Find(&deployments).Error
	return deployments, err
}

// ListDeploymentsByChain returns all deployments for a specific chain
func (s *deploymentService) ListDeploymentsByChain(chainID uint64) ([]models.Deployment, error) {
	var deployments []models.Deployment
	err := s.db.Where("chain_id = ?", chainID).Order("id desc").Find(&deployments).Error
	return deployments, err
}

// UpdateDeploymentStatus updates the status of a deployment
func (s *deploymentService) UpdateDeploymentStatus(id uint, status models.TransactionStatus, contractAddress, txHash string) error {
	updates := map[string]interface{}{
		"status": status,
	}
	if contractAddress != "" {
		updates["contract_address"] = contractAddress
	}
	if txHash != "" {
		updates["transaction_hash"] = txHash
	}

	return s.db.Model(&models.Deployment{}).Where("id = ?", id).Updates(updates).Error
}

func (s *deploymentService) MarkDeploymentFailed(id uint, reason string) error {
	return s.db.Model(&models.Deployment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status": models.TransactionStatusFailed,
		"error":  reason,
	}).Error
}

func (s *deploymentService) UpdateDeploymentFlags(id uint, consumerRegistered, verified bool) error {
	return s.db.Model(&models.Deployment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"consumer_registered": consumerRegistered,
		"verified":            verified,
	}).Error
}

func (s *deploymentService) GetDeployment(contractName string, chainID uint64, contractAddress string) (*models.Deployment, error) {
	var deployment models.Deployment
	err := s.db.
		Where("contract_name = ? AND chain_id = ? AND contract_address = ?", contractName, chainID, contractAddress).
		Order("id desc").
		First(&deployment).Error
	if err != nil {
		return nil, err
	}
	return &deployment, nil
}

func (s *deploymentService) GetLatestConfirmed(contractName string, chainID uint64) (*models.Deployment, error) {
	var deployment models.Deployment
	err := s.db.
		Where("contract_name = ? AND chain_id = ? AND status = ?", contractName, chainID, models.TransactionStatusConfirmed).
		Order("id desc").
		First(&deployment).Error
	if err != nil {
		return nil, err
	}
	return &deployment, nil
}

// DeleteDeployment deletes a deployment by its ID
func (s *deploymentService) DeleteDeployment(id uint) error {
	return s.db.Delete(&models.Deployment{}, id).Error
}
