package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/frogstop/payments/internal/domain"
	"github.com/frogstop/payments/internal/domain/interfaces"
	"github.com/frogstop/payments/pkg/config"
)

type muralClient struct {
	baseURL        string
	apiKey         string
	accountID      string
	transferAPIKey string
	httpClient     *http.Client
	maxRetries     int
	retryDelay     time.Duration
	logger         zerolog.Logger
}

// NewMuralClient builds the live Mural Pay API client. Callers should switch
// to NewSandboxClient when no API key is configured.
func NewMuralClient(cfg config.MuralConfig, logger zerolog.Logger) interfaces.ProviderClient {
	return &muralClient{
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		accountID:      cfg.AccountID,
		transferAPIKey: cfg.TransferAPIKey,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		maxRetries: cfg.MaxRetries,
		retryDelay: time.Duration(cfg.RetryBackoffBase) * time.Millisecond,
		logger:     logger.With().Str("component", "mural_client").Logger(),
	}
}

type accountResponse struct {
	AccountDetails struct {
		WalletDetails struct {
			Blockchain    string `json:"blockchain"`
			WalletAddress string `json:"walletAddress"`
		} `json:"walletDetails"`
	} `json:"accountDetails"`
}

func (c *muralClient) GetAccount(ctx context.Context) (*domain.ProviderAccount, error) {
	endpoint := fmt.Sprintf("/api/accounts/%s", c.accountID)

	var resp accountResponse
	if err := c.makeRequest(ctx, http.MethodGet, endpoint, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", c.accountID, err)
	}

	wallet := resp.AccountDetails.WalletDetails
	if wallet.WalletAddress == "" || wallet.Blockchain != "POLYGON" {
		return nil, fmt.Errorf("no Polygon wallet found in account details for %s", c.accountID)
	}

	return &domain.ProviderAccount{
		AccountID:      c.accountID,
		DepositAddress: wallet.WalletAddress,
		Blockchain:     wallet.Blockchain,
	}, nil
}

type payoutRequestBody struct {
	SourceAccountID string       `json:"sourceAccountId"`
	PayoutMethod    payoutMethod `json:"payoutMethod"`
	Amount          string       `json:"amount"`
	TokenSymbol     string       `json:"tokenSymbol"`
	Blockchain      string       `json:"blockchain"`
	Description     string       `json:"description"`
}

type payoutMethod struct {
	Type    string                   `json:"type"`
	Details domain.PayoutDestination `json:"details"`
}

func (c *muralClient) RequestPayout(ctx context.Context, req *domain.PayoutRequest) (*domain.ProviderPayout, error) {
	body := payoutRequestBody{
		SourceAccountID: c.accountID,
		PayoutMethod: payoutMethod{
			Type:    "BANK_ACCOUNT",
			Details: req.Destination,
		},
		Amount:      req.Amount,
		TokenSymbol: req.TokenSymbol,
		Blockchain:  req.Blockchain,
		Description: req.Description,
	}

	headers := map[string]string{}
	if c.transferAPIKey != "" {
		headers["X-Transfer-Key"] = c.transferAPIKey
	}

	var payout domain.ProviderPayout
	if err := c.makeRequest(ctx, http.MethodPost, "/api/payout-requests", headers, body, &payout); err != nil {
		return nil, fmt.Errorf("failed to request payout: %w", err)
	}

	return &payout, nil
}

// makeRequest makes an HTTP request with retries. Server errors and transport
// failures retry with exponential backoff; client errors do not.
func (c *muralClient) makeRequest(ctx context.Context, method, endpoint string, headers map[string]string, body interface{}, response interface{}) error {
	fullURL := c.baseURL + endpoint

	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(1<<(attempt-1))):
			}
		}

		var reqBody []byte
		var err error

		if body != nil {
			reqBody, err = json.Marshal(body)
			if err != nil {
				return fmt.Errorf("failed to marshal request body: %w", err)
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, fullURL, bytes.NewReader(reqBody))
		if err != nil {
			lastErr = fmt.Errorf("failed to create request: %w", err)
			continue
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			c.logger.Warn().Err(err).Int("attempt", attempt+1).Str("url", fullURL).Msg("Mural request failed, retrying")
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", readErr)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if response != nil {
				if err := json.Unmarshal(respBody, response); err != nil {
					lastErr = fmt.Errorf("failed to unmarshal response: %w", err)
					continue
				}
			}
			return nil
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error (status %d): %s", resp.StatusCode, string(respBody))
			c.logger.Warn().Int("status", resp.StatusCode).Int("attempt", attempt+1).Str("url", fullURL).Msg("Mural server error, retrying")
			continue
		}

		// Client errors (4xx) - don't retry
		return fmt.Errorf("client error (status %d): %s", resp.StatusCode, string(respBody))
	}

	c.logger.Error().Err(lastErr).Str("url", fullURL).Int("max_retries", c.maxRetries).Msg("Mural request failed after all retries")
	return fmt.Errorf("request failed after %d retries: %w", c.maxRetries, lastErr)
}
