package models

import "time"

// TransactionStatus tracks a deployment transaction from submission to its final receipt.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusConfirmed TransactionStatus = "confirmed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Deployment records one contract deployment, including the VRF mocks provisioned on
// ephemeral networks.
type Deployment struct {
	ID                 uint              `gorm:"primaryKey" json:"id"`
	RunID              string            `gorm:"index" json:"run_id"`
	ContractName       string            `gorm:"not null;index" json:"contract_name"`
	NetworkName        string            `gorm:"not null" json:"network_name"`
	ChainID            uint64            `gorm:"not null;index" json:"chain_id"`
	ContractAddress    string            `gorm:"index" json:"contract_address"`
	DeployerAddress    string            `json:"deployer_address"`
	TransactionHash    string            `gorm:"index" json:"transaction_hash"`
	VRFCoordinator     string            `json:"vrf_coordinator,omitempty"`
	SubscriptionID     uint64            `json:"subscription_id,omitempty"`
	TokenURIs          StringList        `gorm:"type:text" json:"token_uris,omitempty"`
	ConstructorArgs    JSON              `gorm:"type:text" json:"constructor_args,omitempty"`
	Status             TransactionStatus `gorm:"default:pending" json:"status"` // pending, confirmed, failed
	ConsumerRegistered bool              `json:"consumer_registered"`
	Verified           bool              `json:"verified"`
	Error              string            `json:"error,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}
