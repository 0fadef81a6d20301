package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"astraldraw.backend/pkg/logger"
	"astraldraw.backend/pkg/metrics"
)

// Gateway is the ledger operations surface the use cases depend on.
// Every call is bounded by the client timeout; a timeout is a failure,
// never an optimistic success.
type Gateway interface {
	CreateAccount(ctx context.Context, publicKey string) (*AccountResult, error)
	AssociateToken(ctx context.Context, accountID, encPrivateKey, tokenID string) (*TxResult, error)
	TransferTokens(ctx context.Context, in TransferInput) (*TxResult, error)
	CreateNFTCollection(ctx context.Context, name, symbol string) (*TokenResult, error)
	MintNFT(ctx context.Context, tokenID string, metadata []byte) (*MintResult, error)
	TransferNFT(ctx context.Context, in NFTTransferInput) (*TxResult, error)
	SubmitMessage(ctx context.Context, topicID string, message []byte) (*MessageResult, error)
}

// AccountResult is returned by account provisioning
type AccountResult struct {
	AccountID string `json:"accountId"`
	TxID      string `json:"txId"`
}

// TxResult is returned by transfers and associations
type TxResult struct {
	TxID   string `json:"txId"`
	Status string `json:"status"`
}

// TokenResult is returned by collection creation
type TokenResult struct {
	TokenID string `json:"tokenId"`
	TxID    string `json:"txId"`
}

// MintResult is returned by NFT minting
type MintResult struct {
	Serial int64  `json:"serial"`
	TxID   string `json:"txId"`
}

// MessageResult is returned by consensus message submission
type MessageResult struct {
	SequenceNumber int64  `json:"sequenceNumber"`
	TxID           string `json:"txId"`
}

// TransferInput describes a fungible token transfer
type TransferInput struct {
	TokenID       string `json:"tokenId"`
	FromAccountID string `json:"fromAccountId"`
	FromKeyEnc    string `json:"fromKeyEnc"`
	ToAccountID   string `json:"toAccountId"`
	Amount        int64  `json:"amount"`
	Memo          string `json:"memo,omitempty"`
}

// NFTTransferInput describes an NFT transfer
type NFTTransferInput struct {
	TokenID       string `json:"tokenId"`
	Serial        int64  `json:"serial"`
	FromAccountID string `json:"fromAccountId"`
	ToAccountID   string `json:"toAccountId"`
}

// BridgeClient talks to the ledger bridge over JSON REST
type BridgeClient struct {
	baseURL    string
	operatorID string
	httpClient *http.Client
}

// NewBridgeClient creates a new bridge client
func NewBridgeClient(baseURL, operatorID string, timeout time.Duration) *BridgeClient {
	return &BridgeClient{
		baseURL:    baseURL,
		operatorID: operatorID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreateAccount provisions a ledger account for the given public key
func (c *BridgeClient) CreateAccount(ctx context.Context, publicKey string) (*AccountResult, error) {
	var out AccountResult
	err := c.post(ctx, "/v1/accounts", map[string]interface{}{
		"publicKey":  publicKey,
		"operatorId": c.operatorID,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AssociateToken associates a token with an account
func (c *BridgeClient) AssociateToken(ctx context.Context, accountID, encPrivateKey, tokenID string) (*TxResult, error) {
	var out TxResult
	err := c.post(ctx, "/v1/tokens/associate", map[string]interface{}{
		"accountId": accountID,
		"keyEnc":    encPrivateKey,
		"tokenId":   tokenID,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// TransferTokens moves fungible tokens between accounts
func (c *BridgeClient) TransferTokens(ctx context.Context, in TransferInput) (*TxResult, error) {
	var out TxResult
	if err := c.post(ctx, "/v1/tokens/transfer", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateNFTCollection creates an NFT collection token
func (c *BridgeClient) CreateNFTCollection(ctx context.Context, name, symbol string) (*TokenResult, error) {
	var out TokenResult
	err := c.post(ctx, "/v1/nfts/collections", map[string]interface{}{
		"name":       name,
		"symbol":     symbol,
		"operatorId": c.operatorID,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MintNFT mints one NFT in a collection and returns its serial
func (c *BridgeClient) MintNFT(ctx context.Context, tokenID string, metadata []byte) (*MintResult, error) {
	var out MintResult
	err := c.post(ctx, "/v1/nfts/mint", map[string]interface{}{
		"tokenId":  tokenID,
		"metadata": string(metadata),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// TransferNFT moves an NFT between accounts
func (c *BridgeClient) TransferNFT(ctx context.Context, in NFTTransferInput) (*TxResult, error) {
	var out TxResult
	if err := c.post(ctx, "/v1/nfts/transfer", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitMessage appends a message to a consensus topic
func (c *BridgeClient) SubmitMessage(ctx context.Context, topicID string, message []byte) (*MessageResult, error) {
	var out MessageResult
	err := c.post(ctx, "/v1/topics/"+topicID+"/messages", map[string]interface{}{
		"message": string(message),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *BridgeClient) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal bridge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build bridge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveLedgerCall(path, false)
		logger.Error(ctx, "ledger bridge call failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("bridge call %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read bridge response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.ObserveLedgerCall(path, false)
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &apiErr)
		if apiErr.Error == "" {
			apiErr.Error = string(raw)
		}
		return fmt.Errorf("bridge call %s: status %d: %s", path, resp.StatusCode, apiErr.Error)
	}
	metrics.ObserveLedgerCall(path, true)

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode bridge response: %w", err)
		}
	}
	return nil
}
