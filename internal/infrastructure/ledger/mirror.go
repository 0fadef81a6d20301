package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MirrorClient reads account state from the ledger mirror node REST API
type MirrorClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewMirrorClient creates a new mirror node client
func NewMirrorClient(baseURL string, timeout time.Duration) *MirrorClient {
	return &MirrorClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetTokenBalance returns an account's balance of the given token
func (c *MirrorClient) GetTokenBalance(ctx context.Context, accountID, tokenID string) (int64, error) {
	url := fmt.Sprintf("%s/api/v1/accounts/%s/tokens?token.id=%s", c.baseURL, accountID, tokenID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build mirror request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("mirror call: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("read mirror response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("mirror call: status %d", resp.StatusCode)
	}

	var body struct {
		Tokens []struct {
			TokenID string `json:"token_id"`
			Balance int64  `json:"balance"`
		} `json:"tokens"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return 0, fmt.Errorf("decode mirror response: %w", err)
	}

	for _, tok := range body.Tokens {
		if tok.TokenID == tokenID {
			return tok.Balance, nil
		}
	}
	// account not associated yet
	return 0, nil
}
