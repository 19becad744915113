package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/f9-energy/market-engine/internal/market"
)

const chainRPCBase = "https://eth-mainnet.g.alchemy.com/v2/"

// balanceOf(address) selector.
const balanceOfSelector = "0x70a08231"

// The platform contracts hold an 18-decimal KRW-pegged settlement token, so
// a raw balance divided by 1e18 is directly a KRW figure.
var weiPerToken = new(big.Float).SetFloat64(1e18)

// ChainContracts are the on-chain addresses the TVL reading is built from.
type ChainContracts struct {
	Treasury  string
	Vault     string
	Staking   string
	Liquidity string
}

// Chain reads the vault, staking, and liquidity pool balances over Ethereum
// JSON-RPC. All calls are read-only eth_call balance lookups.
type Chain struct {
	client    *http.Client
	rpcURL    string
	apiKey    string
	contracts ChainContracts
}

func NewChain(apiKey string, contracts ChainContracts) *Chain {
	return &Chain{
		client:    &http.Client{Timeout: 15 * time.Second},
		rpcURL:    chainRPCBase + apiKey,
		apiKey:    apiKey,
		contracts: contracts,
	}
}

func (c *Chain) Kind() market.Kind { return market.KindOnChainTVL }
func (c *Chain) Name() string      { return "chain" }

func (c *Chain) Configured() bool {
	return c.apiKey != "" && c.contracts.Vault != "" &&
		c.contracts.Staking != "" && c.contracts.Liquidity != ""
}

func (c *Chain) Fetch(ctx context.Context) (*market.Reading, error) {
	vault, err := c.balanceKRW(ctx, c.contracts.Vault)
	if err != nil {
		return nil, fmt.Errorf("vault balance: %w", err)
	}
	staking, err := c.balanceKRW(ctx, c.contracts.Staking)
	if err != nil {
		return nil, fmt.Errorf("staking balance: %w", err)
	}
	liquidity, err := c.balanceKRW(ctx, c.contracts.Liquidity)
	if err != nil {
		return nil, fmt.Errorf("liquidity balance: %w", err)
	}

	return &market.Reading{
		Kind:      market.KindOnChainTVL,
		Source:    c.Name(),
		IsLive:    true,
		FetchedAt: time.Now(),
		TVL: &market.ChainTVL{
			VaultKRW:     vault,
			StakingKRW:   staking,
			LiquidityKRW: liquidity,
			TotalKRW:     vault + staking + liquidity,
		},
	}, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

type rpcResponse struct {
	Result string `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Chain) balanceKRW(ctx context.Context, contract string) (float64, error) {
	data := balanceOfSelector + pad32(c.contracts.Treasury)
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "eth_call",
		Params: []any{
			map[string]string{"to": contract, "data": data},
			"latest",
		},
		ID: 1,
	})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(reqBody))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("chain RPC: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("chain RPC status: %d", resp.StatusCode)
	}

	var body rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode RPC response: %w", err)
	}
	if body.Error != nil {
		return 0, fmt.Errorf("RPC error %d: %s", body.Error.Code, body.Error.Message)
	}

	return parseBalance(body.Result)
}

func parseBalance(hexResult string) (float64, error) {
	s := strings.TrimPrefix(hexResult, "0x")
	if s == "" {
		return 0, fmt.Errorf("empty eth_call result")
	}
	wei, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return 0, fmt.Errorf("malformed balance: %q", hexResult)
	}
	krw, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), weiPerToken).Float64()
	return krw, nil
}

// pad32 left-pads an address to a 32-byte call argument.
func pad32(addr string) string {
	a := strings.ToLower(strings.TrimPrefix(addr, "0x"))
	if len(a) >= 64 {
		return a
	}
	return strings.Repeat("0", 64-len(a)) + a
}

// fallbackTVL is the modeled treasury split served when the RPC is
// unreachable, KRW.
var fallbackTVL = market.ChainTVL{
	VaultKRW:     850_000_000,
	StakingKRW:   420_000_000,
	LiquidityKRW: 230_000_000,
	TotalKRW:     1_500_000_000,
}

func (c *Chain) Fallback(now time.Time) *market.Reading {
	tvl := fallbackTVL
	return &market.Reading{
		Kind:      market.KindOnChainTVL,
		Source:    market.SourceFallback,
		IsLive:    false,
		FetchedAt: now,
		TVL:       &tvl,
	}
}
