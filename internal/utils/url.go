package utils

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	IPFSScheme         = "ipfs://"
	DefaultIPFSGateway = "https://gateway.pinata.cloud"
)

// ToIPFSURI turns a content id into an ipfs:// URI.
func ToIPFSURI(cid string) string {
	return IPFSScheme + cid
}

// IPFSGatewayURL rewrites an ipfs:// URI to a URL on the given HTTP gateway, or on the
// Pinata gateway when gateway is empty. Non ipfs URIs are returned unchanged.
func IPFSGatewayURL(gateway, uri string) (string, error) {
	cid, ok := strings.CutPrefix(uri, IPFSScheme)
	if !ok {
		return uri, nil
	}

	if gateway == "" {
		gateway = DefaultIPFSGateway
	}
	parsedUrl, err := url.Parse(gateway)
	if err != nil {
		return "", fmt.Errorf("invalid ipfs gateway: %w", err)
	}
	parsedUrl.Path = fmt.Sprintf("/ipfs/%s", cid)
	return parsedUrl.String(), nil
}
