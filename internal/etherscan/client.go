package etherscan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.etherscan.io/v2/api"

var (
	// ErrAlreadyVerified is returned by Verify when the contract source is already public.
	ErrAlreadyVerified = errors.New("contract source code already verified")
	// ErrVerificationPending is returned by CheckStatus while the job is queued.
	ErrVerificationPending = errors.New("verification pending")
)

type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Client submits contracts to the Etherscan v2 multichain verification API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type VerifyRequest struct {
	ChainID         uint64
	ContractAddress string
	// SourceCode is the solc standard JSON input.
	SourceCode string
	// ContractName is the fully qualified "file.sol:Name".
	ContractName    string
	CompilerVersion string
	// ConstructorArguments is the ABI encoded constructor input, hex without 0x.
	ConstructorArguments string
}

type WaitOptions struct {
	MaxAttempts int
	Interval    time.Duration
}

type apiResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

func NewClient(config Config) (*Client, error) {
	apiKey := strings.TrimSpace(config.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("etherscan API key is required")
	}

	baseURL := strings.TrimSpace(config.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{apiKey: apiKey, baseURL: baseURL, httpClient: httpClient}, nil
}

// Verify submits the source for verification and returns the job guid.
func (c *Client) Verify(ctx context.Context, request VerifyRequest) (string, error) {
	if request.ContractAddress == "" || request.SourceCode == "" || request.ContractName == "" {
		return "", fmt.Errorf("contract address, source code and contract name are required")
	}

	form := url.Values{}
	form.Set("apikey", c.apiKey)
	form.Set("module", "contract")
	form.Set("action", "verifysourcecode")
	form.Set("contractaddress", request.ContractAddress)
	form.Set("sourceCode", request.SourceCode)
	form.Set("codeformat", "solidity-standard-json-input")
	form.Set("contractname", request.ContractName)
	form.Set("compilerversion", request.CompilerVersion)
	// the misspelling is part of the Etherscan API
	form.Set("constructorArguements", strings.TrimPrefix(request.ConstructorArguments, "0x"))

	response, err := c.post(ctx, request.ChainID, form)
	if err != nil {
		return "", err
	}
	if response.Status != "1" {
		if strings.Contains(strings.ToLower(response.Result), "already verified") {
			return "", ErrAlreadyVerified
		}
		return "", fmt.Errorf("etherscan rejected verification: %s: %s", response.Message, response.Result)
	}
	return response.Result, nil
}

// CheckStatus returns nil once the job has passed, ErrVerificationPending while it is queued.
func (c *Client) CheckStatus(ctx context.Context, chainID uint64, guid string) error {
	query := url.Values{}
	query.Set("apikey", c.apiKey)
	query.Set("module", "contract")
	query.Set("action", "checkverifystatus")
	query.Set("guid", guid)

	response, err := c.get(ctx, chainID, query)
	if err != nil {
		return err
	}

	result := strings.ToLower(response.Result)
	switch {
	case strings.Contains(result, "pending"):
		return ErrVerificationPending
	case strings.Contains(result, "already verified"):
		return nil
	case response.Status == "1" || strings.HasPrefix(result, "pass"):
		return nil
	default:
		return fmt.Errorf("verification failed: %s", response.Result)
	}
}

// WaitForVerification polls CheckStatus until the job leaves the queue.
func (c *Client) WaitForVerification(ctx context.Context, chainID uint64, guid string, options WaitOptions) error {
	maxAttempts := options.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 20
	}
	interval := options.Interval
	if interval <= 0 {
		interval = 3 * time.Second
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := c.CheckStatus(ctx, chainID, guid)
		if !errors.Is(err, ErrVerificationPending) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return fmt.Errorf("verification %s did not complete within %d attempts", guid, maxAttempts)
}

func (c *Client) endpoint(chainID uint64, query url.Values) (string, error) {
	parsed, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid etherscan base url: %w", err)
	}
	if query == nil {
		query = url.Values{}
	}
	query.Set("chainid", strconv.FormatUint(chainID, 10))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (c *Client) post(ctx context.Context, chainID uint64, form url.Values) (*apiResponse, error) {
	endpoint, err := c.endpoint(chainID, nil)
	if err != nil {
		return nil, err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(request)
}

func (c *Client) get(ctx context.Context, chainID uint64, query url.Values) (*apiResponse, error) {
	endpoint, err := c.endpoint(chainID, query)
	if err != nil {
		return nil, err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return c.do(request)
}

func (c *Client) do(request *http.Request) (*apiResponse, error) {
	request.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("etherscan request failed: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("etherscan request failed with status %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded apiResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode etherscan response: %w", err)
	}
	return &decoded, nil
}
