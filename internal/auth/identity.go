package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// IdentityClient verifies bearer ID tokens against the identity provider's
// accounts:lookup endpoint.
type IdentityClient struct {
	APIKey     string
	APIURL     string
	HTTPClient *http.Client
}

// AccountInfo is the subset of the lookup response the service cares about.
type AccountInfo struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
}

type lookupRequest struct {
	IDToken string `json:"idToken"`
}

type lookupResponse struct {
	Users []AccountInfo `json:"users"`
	Error *apiError     `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewIdentityClient(apiKey, apiURL string) *IdentityClient {
	return &IdentityClient{
		APIKey: apiKey,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// VerifyIDToken resolves the token to an account. Any provider-side
// rejection (expired, revoked, malformed) comes back as an error.
func (ic *IdentityClient) VerifyIDToken(token string) (*AccountInfo, error) {
	if token == "" {
		return nil, fmt.Errorf("empty token")
	}

	jsonData, err := json.Marshal(lookupRequest{IDToken: token})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %v", err)
	}

	req, err := http.NewRequest("POST", ic.APIURL+"?key="+ic.APIKey, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ic.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	var lookup lookupResponse
	if err := json.Unmarshal(body, &lookup); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %v", err)
	}

	if lookup.Error != nil {
		return nil, fmt.Errorf("identity API error: %s (code: %d)", lookup.Error.Message, lookup.Error.Code)
	}

	if len(lookup.Users) == 0 {
		return nil, fmt.Errorf("token did not resolve to an account")
	}

	return &lookup.Users[0], nil
}

// ExtractBearerToken pulls the token out of an Authorization header value.
// Returns "" when the header is absent or not a Bearer scheme.
func ExtractBearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
