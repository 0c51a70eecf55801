package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/graffiti-deployer/internal/deployerr"
	"github.com/rxtech-lab/graffiti-deployer/internal/models"
	"github.com/rxtech-lab/graffiti-deployer/internal/utils"
	"github.com/spf13/viper"
)

const (
	KeyUploadToPinata      = "upload_to_pinata"
	KeyPinataAPIKey        = "pinata_api_key"
	KeyPinataAPISecret     = "pinata_api_secret"
	KeyPinataBaseURL       = "pinata_base_url"
	KeyIPFSGateway         = "ipfs_gateway"
	KeyEtherscanAPIKey     = "etherscan_api_key"
	KeyEtherscanBaseURL    = "etherscan_base_url"
	KeyPrivateKey          = "private_key"
	KeyImagesPath          = "images_path"
	KeyTokenURIs           = "token_uris"
	KeyUploadFailurePolicy = "upload_failure_policy"
	KeyPlaceholderTokenURI = "placeholder_token_uri"
	KeyDatabaseURL         = "database_url"
	KeyDatabasePath        = "database_path"
	KeyLogLevel            = "log_level"
	KeyNetworks            = "networks"

	DefaultImagesPath   = "./images"
	DefaultPinataURL    = "https://api.pinata.cloud"
	DefaultEtherscanURL = "https://api.etherscan.io/v2/api"
)

// Config is the runtime configuration of a deployer process.
type Config struct {
	UploadToPinata      bool                       `mapstructure:"upload_to_pinata"`
	PinataAPIKey        string                     `mapstructure:"pinata_api_key" validate:"required_if=UploadToPinata true"`
	PinataAPISecret     string                     `mapstructure:"pinata_api_secret" validate:"required_if=UploadToPinata true"`
	PinataBaseURL       string                     `mapstructure:"pinata_base_url" validate:"required,url"`
	IPFSGateway         string                     `mapstructure:"ipfs_gateway" validate:"required,url"`
	EtherscanAPIKey     string                     `mapstructure:"etherscan_api_key"`
	EtherscanBaseURL    string                     `mapstructure:"etherscan_base_url" validate:"required,url"`
	PrivateKeys         []string                   `mapstructure:"-"`
	ImagesPath          string                     `mapstructure:"images_path" validate:"required"`
	TokenURIs           []string                   `mapstructure:"-"`
	UploadFailurePolicy models.UploadFailurePolicy `mapstructure:"upload_failure_policy" validate:"oneof=abort skip placeholder"`
	PlaceholderTokenURI string                     `mapstructure:"placeholder_token_uri" validate:"required_if=UploadFailurePolicy placeholder"`
	DatabaseURL         string                     `mapstructure:"database_url"`
	DatabasePath        string                     `mapstructure:"database_path"`
	LogLevel            string                     `mapstructure:"log_level" validate:"oneof=debug info warn error"`

	Networks *NetworkTable `mapstructure:"-"`
}

// networkEntry is the config file form of a network; mint_fee is given in ether.
// Zero or absent fields keep the value of the built-in network with the same name.
type networkEntry struct {
	Name               string  `mapstructure:"name"`
	ChainID            uint64  `mapstructure:"chain_id"`
	RPCURL             string  `mapstructure:"rpc_url"`
	VRFCoordinator     string  `mapstructure:"vrf_coordinator"`
	SubscriptionID     uint64  `mapstructure:"subscription_id"`
	GasLane            string  `mapstructure:"gas_lane"`
	CallbackGasLimit   uint32  `mapstructure:"callback_gas_limit"`
	MintFee            string  `mapstructure:"mint_fee"`
	BlockConfirmations *uint64 `mapstructure:"block_confirmations"`
	Ephemeral          *bool   `mapstructure:"ephemeral"`
}

var validate = validator.New()

// Load reads configuration from the environment and, when configFile is set, from that
// YAML or JSON file. Environment variables take precedence over the file.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, deployerr.New(deployerr.ConfigMissing, "read config file", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.PrivateKeys = splitList(v.GetString(KeyPrivateKey))
	cfg.TokenURIs = splitList(v.GetString(KeyTokenURIs))
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.UploadFailurePolicy == "" {
		cfg.UploadFailurePolicy = models.UploadFailureAbort
	}
	if cfg.DatabasePath == "" && cfg.DatabaseURL == "" {
		cfg.DatabasePath = defaultDatabasePath()
	}

	var entries []networkEntry
	if err := v.UnmarshalKey(KeyNetworks, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode networks: %w", err)
	}
	networks, err := merge(DefaultNetworks(), entries)
	if err != nil {
		return nil, err
	}
	for i := range networks {
		if rpcURL := v.GetString(strings.ToLower(networks[i].Name) + "_rpc_url"); rpcURL != "" {
			networks[i].RPCURL = rpcURL
		}
	}
	cfg.Networks = NewNetworkTable(networks)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyUploadToPinata, false)
	v.SetDefault(KeyPinataAPIKey, "")
	v.SetDefault(KeyPinataAPISecret, "")
	v.SetDefault(KeyPinataBaseURL, DefaultPinataURL)
	v.SetDefault(KeyIPFSGateway, utils.DefaultIPFSGateway)
	v.SetDefault(KeyEtherscanAPIKey, "")
	v.SetDefault(KeyEtherscanBaseURL, DefaultEtherscanURL)
	v.SetDefault(KeyPrivateKey, "")
	v.SetDefault(KeyImagesPath, DefaultImagesPath)
	v.SetDefault(KeyTokenURIs, "")
	v.SetDefault(KeyUploadFailurePolicy, string(models.UploadFailureAbort))
	v.SetDefault(KeyPlaceholderTokenURI, "")
	v.SetDefault(KeyDatabaseURL, "")
	v.SetDefault(KeyDatabasePath, "")
	v.SetDefault(KeyLogLevel, "info")
}

// Validate checks struct tags and every network entry.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]string, 0, len(validationErrors))
			for _, fieldErr := range validationErrors {
				fields = append(fields, fmt.Sprintf("%s (%s)", fieldErr.Field(), fieldErr.Tag()))
			}
			return deployerr.Newf(deployerr.ConfigMissing, "invalid configuration: %s", strings.Join(fields, ", "))
		}
		return deployerr.New(deployerr.ConfigMissing, "invalid configuration", err)
	}
	if c.Networks == nil {
		return nil
	}
	for _, network := range c.Networks.List() {
		if err := validate.Struct(network); err != nil {
			return deployerr.New(deployerr.ConfigMissing, fmt.Sprintf("invalid network %q", network.Name), err)
		}
	}
	return nil
}

// HasPinataCredentials reports whether both Pinata credentials are configured.
func (c *Config) HasPinataCredentials() bool {
	return c.PinataAPIKey != "" && c.PinataAPISecret != ""
}

// overlay applies the fields set in the entry on top of network.
func (e networkEntry) overlay(network models.NetworkConfig) (models.NetworkConfig, error) {
	if network.Name == "" {
		network.Name = e.Name
	}
	if e.ChainID != 0 {
		network.ChainID = e.ChainID
	}
	if e.RPCURL != "" {
		network.RPCURL = e.RPCURL
	}
	if e.VRFCoordinator != "" {
		network.VRFCoordinator = e.VRFCoordinator
	}
	if e.SubscriptionID != 0 {
		network.SubscriptionID = e.SubscriptionID
	}
	if e.GasLane != "" {
		network.GasLane = e.GasLane
	}
	if e.CallbackGasLimit != 0 {
		network.CallbackGasLimit = e.CallbackGasLimit
	}
	if e.MintFee != "" {
		fee, err := utils.ParseEther(e.MintFee)
		if err != nil {
			return network, deployerr.New(deployerr.ConfigMissing, fmt.Sprintf("network %q mint_fee", e.Name), err)
		}
		network.MintFee = fee
	}
	if e.BlockConfirmations != nil {
		network.BlockConfirmations = *e.BlockConfirmations
	}
	if e.Ephemeral != nil {
		network.Ephemeral = *e.Ephemeral
	}
	return network, nil
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".graffiti", "deployments.db")
	}
	return filepath.Join(home, ".graffiti", "deployments.db")
}
