package pinata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.pinata.cloud"

type Config struct {
	APIKey     string
	APISecret  string
	BaseURL    string
	HTTPClient *http.Client
}

// Client talks to the Pinata pinning API with key/secret authentication.
type Client struct {
	apiKey     string
	apiSecret  string
	baseURL    string
	httpClient *http.Client
}

// PinResponse is returned by both pin endpoints.
type PinResponse struct {
	IpfsHash    string `json:"IpfsHash"`
	PinSize     int64  `json:"PinSize"`
	Timestamp   string `json:"Timestamp"`
	IsDuplicate bool   `json:"isDuplicate,omitempty"`
}

type pinataMetadata struct {
	Name string `json:"name"`
}

type pinJSONRequest struct {
	PinataContent  any            `json:"pinataContent"`
	PinataMetadata pinataMetadata `json:"pinataMetadata"`
}

func NewClient(config Config) (*Client, error) {
	apiKey := strings.TrimSpace(config.APIKey)
	apiSecret := strings.TrimSpace(config.APISecret)
	if apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("pinata API key and secret are required")
	}

	baseURL := strings.TrimSpace(config.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	return &Client{
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// PinFileToIPFS uploads content as a single file named name.
func (c *Client) PinFileToIPFS(ctx context.Context, name string, content io.Reader) (*PinResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	metadata, err := json.Marshal(pinataMetadata{Name: name})
	if err != nil {
		return nil, err
	}
	if err := writer.WriteField("pinataMetadata", string(metadata)); err != nil {
		return nil, fmt.Errorf("failed to write pinata metadata: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	var response PinResponse
	if err := c.do(ctx, http.MethodPost, "/pinning/pinFileToIPFS", writer.FormDataContentType(), &body, &response); err != nil {
		return nil, err
	}
	if response.IpfsHash == "" {
		return nil, fmt.Errorf("pinata returned no IpfsHash for %s", name)
	}
	return &response, nil
}

// PinJSONToIPFS pins content serialized as JSON under the given name.
func (c *Client) PinJSONToIPFS(ctx context.Context, content any, name string) (*PinResponse, error) {
	payload, err := json.Marshal(pinJSONRequest{
		PinataContent:  content,
		PinataMetadata: pinataMetadata{Name: name},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON content: %w", err)
	}

	var response PinResponse
	if err := c.do(ctx, http.MethodPost, "/pinning/pinJSONToIPFS", "application/json", bytes.NewReader(payload), &response); err != nil {
		return nil, err
	}
	if response.IpfsHash == "" {
		return nil, fmt.Errorf("pinata returned no IpfsHash for %s", name)
	}
	return &response, nil
}

// TestAuthentication checks the configured credentials.
func (c *Client) TestAuthentication(ctx context.Context) error {
	var response struct {
		Message string `json:"message"`
	}
	return c.do(ctx, http.MethodGet, "/data/testAuthentication", "", nil, &response)
}

func (c *Client) do(ctx context.Context, method, endpoint, contentType string, body io.Reader, target any) error {
	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return err
	}
	request.Header.Set("pinata_api_key", c.apiKey)
	request.Header.Set("pinata_secret_api_key", c.apiSecret)
	request.Header.Set("Accept", "application/json")
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("pinata %s %s failed: %w", method, endpoint, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf(
			"pinata %s %s failed with status %d: %s",
			method,
			endpoint,
			response.StatusCode,
			strings.TrimSpace(string(responseBody)),
		)
	}

	if err := json.Unmarshal(responseBody, target); err != nil {
		return fmt.Errorf("failed to decode pinata response: %w", err)
	}
	return nil
}
