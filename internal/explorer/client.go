// Package explorer reads account data from an Etherscan-compatible API.
package explorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"walletScope/internal/model"
)

const (
	DefaultBaseURL      = "https://api.etherscan.io/api"
	defaultTimeout      = 15 * time.Second
	defaultRetryBackoff = 500 * time.Millisecond

	// DefaultPageSize is the largest window the explorer serves per query.
	DefaultPageSize = 10000

	statusOK              = "1"
	noTransactionsMessage = "No transactions found"
	maxErrorBody          = 512

	fieldBlockNumber = "blockNumber"
)

var identityFields = []string{
	"hash", "logIndex", model.FieldContractAddress, model.FieldFrom, model.FieldTo, model.FieldValue,
}

// Config controls the explorer client.
type Config struct {
	BaseURL string
	APIKey  string
	// ChainID is sent as the chainid parameter when non-zero.
	ChainID      uint64
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	// PageSize is the number of transfers requested per query, at most DefaultPageSize.
	PageSize int
}

// Client implements the native balance and transfer history sources on top
// of the explorer account module.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// APIError is a well-formed explorer response that reports a failure.
type APIError struct {
	Status  string
	Message string
	Result  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("explorer error: status=%s message=%q result=%q", e.Status, e.Message, e.Result)
}

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d, body: %s", e.Code, e.Body)
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// NewClient builds a Client. httpClient may be nil.
func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = defaultRetryBackoff
	}
	if cfg.PageSize <= 0 || cfg.PageSize > DefaultPageSize {
		cfg.PageSize = DefaultPageSize
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg:    cfg,
		http:   httpClient,
		logger: logger.Named("explorer"),
	}
}

// FetchNativeBalance returns the latest native balance in wei.
func (c *Client) FetchNativeBalance(ctx context.Context, address string) (*big.Int, error) {
	env, err := c.call(ctx, url.Values{
		"module":  {"account"},
		"action":  {"balance"},
		"address": {address},
		"tag":     {"latest"},
	})
	if err != nil {
		return nil, err
	}

	var text string
	if err := json.Unmarshal(env.Result, &text); err != nil {
		return nil, fmt.Errorf("decode balance: %w", err)
	}
	wei, ok := new(big.Int).SetString(strings.TrimSpace(text), 10)
	if !ok {
		return nil, fmt.Errorf("decode balance: invalid integer %q", text)
	}
	return wei, nil
}

// FetchTransferHistory returns every ERC-20 transfer touching address, oldest
// first, as untyped records.
//
// The explorer caps a query at PageSize records, so the history is read in
// windows that start at the last block of the previous full page. Records of
// that boundary block are returned again by the next window and skipped.
func (c *Client) FetchTransferHistory(ctx context.Context, address string) ([]model.RawTransfer, error) {
	all := make([]model.RawTransfer, 0)
	var (
		startBlock uint64
		boundary   map[string]int
	)

	for {
		page, err := c.transferPage(ctx, address, startBlock)
		if err != nil {
			return nil, err
		}

		for _, record := range page {
			block, key, err := transferIdentity(record)
			if err != nil {
				return nil, err
			}
			if block == startBlock && boundary[key] > 0 {
				boundary[key]--
				continue
			}
			all = append(all, record)
		}

		if len(page) < c.cfg.PageSize {
			return all, nil
		}

		lastBlock, err := lastBlockOf(page)
		if err != nil {
			return nil, err
		}
		if lastBlock == startBlock {
			return nil, fmt.Errorf("fetch transfers: block %d holds more than %d transfers", startBlock, c.cfg.PageSize)
		}

		boundary = make(map[string]int)
		for _, record := range page {
			block, key, _ := transferIdentity(record)
			if block == lastBlock {
				boundary[key]++
			}
		}
		c.logger.Debug("transfer history page",
			zap.Int("records", len(page)),
			zap.Uint64("from_block", startBlock),
			zap.Uint64("next_block", lastBlock))
		startBlock = lastBlock
	}
}

func (c *Client) transferPage(ctx context.Context, address string, startBlock uint64) ([]model.RawTransfer, error) {
	env, err := c.call(ctx, url.Values{
		"module":     {"account"},
		"action":     {"tokentx"},
		"address":    {address},
		"startblock": {strconv.FormatUint(startBlock, 10)},
		"endblock":   {"99999999"},
		"page":       {"1"},
		"offset":     {strconv.Itoa(c.cfg.PageSize)},
		"sort":       {"asc"},
	})
	if err != nil {
		return nil, err
	}
	if env.Status != statusOK {
		return nil, nil
	}

	var records []model.RawTransfer
	dec := json.NewDecoder(bytes.NewReader(env.Result))
	dec.UseNumber()
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode transfers: %w", err)
	}
	return records, nil
}

// transferIdentity returns the block of a record and a key that identifies it
// within that block.
func transferIdentity(record model.RawTransfer) (uint64, string, error) {
	rawBlock, err := cast.ToStringE(record[fieldBlockNumber])
	if err != nil {
		return 0, "", fmt.Errorf("decode transfers: %s: %w", fieldBlockNumber, err)
	}
	block, err := strconv.ParseUint(rawBlock, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("decode transfers: %s=%q: %w", fieldBlockNumber, rawBlock, err)
	}

	parts := make([]string, 0, len(identityFields))
	for _, field := range identityFields {
		parts = append(parts, cast.ToString(record[field]))
	}
	return block, strings.Join(parts, "|"), nil
}

func lastBlockOf(page []model.RawTransfer) (uint64, error) {
	block, _, err := transferIdentity(page[len(page)-1])
	return block, err
}

// call performs one logical request with retries. An empty-history response
// is returned as a non-OK envelope without error.
func (c *Client) call(ctx context.Context, params url.Values) (envelope, error) {
	if c.cfg.APIKey != "" {
		params.Set("apikey", c.cfg.APIKey)
	}
	if c.cfg.ChainID != 0 {
		params.Set("chainid", strconv.FormatUint(c.cfg.ChainID, 10))
	}
	action := params.Get("action")

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.cfg.RetryBackoff

	return backoff.Retry(ctx, func() (envelope, error) {
		return c.do(ctx, params)
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(c.cfg.MaxRetries+1)),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Warn("explorer request retry",
				zap.String("action", action),
				zap.Duration("backoff", next),
				zap.Error(err))
		}),
	)
}

func (c *Client) do(ctx context.Context, params url.Values) (envelope, error) {
	endpoint := c.cfg.BaseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return envelope{}, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return envelope{}, backoff.Permanent(ctx.Err())
		}
		return envelope{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("explorer request completed",
		zap.String("action", params.Get("action")),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{Code: resp.StatusCode, Body: string(body)}
		if retryableStatus(resp.StatusCode) {
			return envelope{}, statusErr
		}
		return envelope{}, backoff.Permanent(statusErr)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return envelope{}, backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	if env.Status == statusOK {
		return env, nil
	}
	if strings.EqualFold(strings.TrimSpace(env.Message), noTransactionsMessage) {
		return env, nil
	}

	apiErr := &APIError{Status: env.Status, Message: env.Message, Result: resultText(env.Result)}
	if isRateLimited(apiErr.Result) {
		return envelope{}, apiErr
	}
	return envelope{}, backoff.Permanent(apiErr)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func isRateLimited(result string) bool {
	return strings.Contains(strings.ToLower(result), "rate limit")
}

func resultText(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return string(raw)
}
