// contest-hub-service/services/identity_client.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// IdentityClient talks to the external identity provider's verification
// endpoint. Tokens are opaque to this service; the provider owns issuance,
// expiry and revocation.
type IdentityClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

type verifyResponse struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

func NewIdentityClient(baseURL, token string) *IdentityClient {
	return &IdentityClient{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// VerifyToken calls /tokens/verify on the identity provider and returns the
// verified subject id and email.
func (c *IdentityClient) VerifyToken(idToken string) (string, string, error) {
	url := fmt.Sprintf("%s/tokens/verify", c.BaseURL)

	reqBody := map[string]interface{}{
		"id_token": idToken,
	}
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token) // service → identity provider token

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("IdentityProvider /tokens/verify returned %d: %s", resp.StatusCode, string(body))
		return "", "", fmt.Errorf("token verification failed: %d", resp.StatusCode)
	}

	var out verifyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", "", err
	}

	return out.UID, out.Email, nil
}
