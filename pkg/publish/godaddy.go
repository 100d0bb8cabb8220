package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GoDaddy checks domain availability against the GoDaddy domains API.
type GoDaddy struct {
	BaseURL string
	Key     string
	Secret  string
	Client  *http.Client
}

var _ DomainChecker = &GoDaddy{}

func NewGoDaddy(key, secret, baseURL string) *GoDaddy {
	return &GoDaddy{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Key:     key,
		Secret:  secret,
		Client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type goDaddyAvailability struct {
	Available bool   `json:"available"`
	Domain    string `json:"domain"`
	Price     int64  `json:"price"`
	Currency  string `json:"currency"`
}

func (g *GoDaddy) Check(ctx context.Context, domain string) (*Availability, error) {
	cleaned, err := NormalizeDomain(domain)
	if err != nil {
		return nil, err
	}

	endpoint := g.BaseURL + "/v1/domains/available?domain=" + url.QueryEscape(cleaned)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("sso-key %s:%s", g.Key, g.Secret))
	req.Header.Set("Accept", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("godaddy request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("godaddy error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var raw goDaddyAvailability
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	a := &Availability{
		Domain:    cleaned,
		Available: raw.Available,
		Currency:  raw.Currency,
	}
	if raw.Available {
		// Prices come in micro-units.
		a.Price = float64(raw.Price) / 1_000_000
		a.BuyURL = BuyLink(cleaned)
	}
	return a, nil
}
