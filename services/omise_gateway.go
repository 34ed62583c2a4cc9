// contest-hub-service/services/omise_gateway.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"

	"contest-hub-service/models"
)

// OmiseGateway implements CheckoutProvider over Omise's hosted payment flow:
// create a redirect-type source with a return URI, charge it, and hand the
// charge's authorize URI back to the client as the checkout URL.
type OmiseGateway struct {
	Client        *omise.Client
	SecretKey     string // for the sources REST call (Basic Auth)
	Currency      string
	SourceType    string // a redirect channel, e.g. internet_banking_bbl
	ClientBaseURL string
	HTTPClient    *http.Client
}

func NewOmiseGateway(client *omise.Client, secretKey, currency, sourceType, clientBaseURL string) *OmiseGateway {
	return &OmiseGateway{
		Client:        client,
		SecretKey:     secretKey,
		Currency:      currency,
		SourceType:    sourceType,
		ClientBaseURL: clientBaseURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateCheckout builds a hosted checkout for the contest's entry fee and
// returns the gateway's redirect URL.
func (g *OmiseGateway) CreateCheckout(contest *models.Contest, uid, email string) (string, error) {
	amount := int64(math.Round(contest.Price * 100)) // price is major units
	returnURI := fmt.Sprintf("%s/payment/success/%s", g.ClientBaseURL, contest.ID)

	src, err := g.createSource(context.Background(), amount, returnURI)
	if err != nil {
		return "", fmt.Errorf("failed to create payment source: %w", err)
	}

	charge := &omise.Charge{}
	err = g.Client.Do(charge, &operations.CreateCharge{
		Amount:    amount,
		Currency:  g.Currency,
		Source:    src.ID,
		ReturnURI: returnURI,
		Metadata: map[string]interface{}{
			"contest_id": contest.ID,
			"uid":        uid,
			"email":      email,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create charge: %w", err)
	}

	if charge.AuthorizeURI == "" {
		return "", fmt.Errorf("charge %s has no authorize uri (status %s)", charge.ID, charge.Status)
	}
	return charge.AuthorizeURI, nil
}

// createSource goes through the REST endpoint directly — redirect channels
// need a return_uri, which the SDK's CreateSource operation doesn't carry.
func (g *OmiseGateway) createSource(ctx context.Context, amount int64, returnURI string) (*omise.Source, error) {
	form := url.Values{}
	form.Set("type", g.SourceType)
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", g.Currency)
	form.Set("return_uri", returnURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.omise.co/sources", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(g.SecretKey, "")

	res, err := g.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("omise create source failed: %s (%d)", string(body), res.StatusCode)
	}

	var src omise.Source
	if err := json.Unmarshal(body, &src); err != nil {
		return nil, fmt.Errorf("parse source json failed: %w", err)
	}
	return &src, nil
}
