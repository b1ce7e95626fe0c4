package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/unxversal/pointgate/internal/config"
	"github.com/unxversal/pointgate/internal/pkg/logger"
)

// FaucetClient calls the external faucet service that performs the actual
// testnet mint. The engine decides whether a claim passes the gates; this
// client only delivers the instruction.
type FaucetClient struct {
	baseURL string
	client  *http.Client
}

func NewFaucetClient(cfg *config.Config) *FaucetClient {
	timeout := time.Duration(cfg.Faucet.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &FaucetClient{
		baseURL: cfg.Faucet.BaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type mintRequest struct {
	RequestID string `json:"request_id"`
	User      string `json:"user"`
	Amount    int64  `json:"amount"`
}

// Mint 请求水龙头给用户铸币。失败必须返回错误：引擎只有在 Mint 成功后
// 才会记账，这里不能吞错。
func (f *FaucetClient) Mint(ctx context.Context, user common.Address, amount int64) error {
	if f.baseURL == "" {
		// 未配置外部水龙头（本地联调模式）：直接视为成功
		logger.Warn("faucet base_url not configured, treating mint as no-op",
			"user", user.Hex(), "amount", amount)
		return nil
	}

	body, err := json.Marshal(mintRequest{
		RequestID: uuid.NewString(),
		User:      user.Hex(),
		Amount:    amount,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/mint", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("faucet request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("faucet returned %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}
