package rpc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"beacon-core/internal/model"
	"beacon-core/pkg/config"
	"beacon-core/pkg/errno"
)

const (
	KindBitcoin = "bitcoin"
	KindEth     = "eth"
)

// Client 实现 beacon.NodeClient
// bitcoin 类节点调用 getblockchaininfo，eth 节点取 latest header
type Client struct {
	name    model.NodeID
	kind    string
	timeout time.Duration
	rpc     *gethrpc.Client
	eth     *ethclient.Client
}

// blockchainInfo getblockchaininfo 里我们关心的字段
// 用指针区分 "缺失" 与 "零值"
type blockchainInfo struct {
	Blocks        *uint64 `json:"blocks"`
	BestBlockHash *string `json:"bestblockhash"`
}

// Dial 根据节点配置创建客户端 (HTTP 传输不会立即建立连接)
func Dial(ctx context.Context, cfg config.NodeConfig) (*Client, error) {
	opts := []gethrpc.ClientOption{
		gethrpc.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.User != "" || cfg.Pass != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(cfg.User + ":" + cfg.Pass))
		opts = append(opts, gethrpc.WithHeader("Authorization", "Basic "+auth))
	}

	endpoint := cfg.Endpoint()
	rc, err := gethrpc.DialOptions(ctx, endpoint, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", endpoint, err)
	}

	c := &Client{
		name:    model.NodeID(cfg.Name),
		kind:    cfg.Kind,
		timeout: cfg.Timeout,
		rpc:     rc,
	}
	if c.kind == "" {
		c.kind = KindBitcoin
	}
	if c.kind == KindEth {
		c.eth = ethclient.NewClient(rc)
	}
	return c, nil
}

func (c *Client) Node() model.NodeID {
	return c.name
}

// Query 获取节点当前高度与最佳区块哈希
func (c *Client) Query(ctx context.Context) (model.ChainSnapshot, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if c.kind == KindEth {
		return c.queryEth(ctx)
	}
	return c.queryBitcoin(ctx)
}

func (c *Client) queryBitcoin(ctx context.Context) (model.ChainSnapshot, error) {
	var info blockchainInfo
	if err := c.rpc.CallContext(ctx, &info, "getblockchaininfo"); err != nil {
		return model.ChainSnapshot{}, c.classify(err)
	}
	if info.Blocks == nil || info.BestBlockHash == nil || *info.BestBlockHash == "" {
		return model.ChainSnapshot{}, fmt.Errorf("%w: node %s: getblockchaininfo lacks blocks/bestblockhash", errno.ErrMalformedSnapshot, c.name)
	}
	return model.ChainSnapshot{Height: *info.Blocks, BestBlockHash: *info.BestBlockHash}, nil
}

func (c *Client) queryEth(ctx context.Context) (model.ChainSnapshot, error) {
	header, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return model.ChainSnapshot{}, c.classify(err)
	}
	if header.Number == nil {
		return model.ChainSnapshot{}, fmt.Errorf("%w: node %s: header without number", errno.ErrMalformedSnapshot, c.name)
	}
	return model.ChainSnapshot{Height: header.Number.Uint64(), BestBlockHash: header.Hash().Hex()}, nil
}

// classify 区分字段类型错误 (快照畸形) 与其他查询失败
func (c *Client) classify(err error) error {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	if errors.As(err, &typeErr) || errors.As(err, &syntaxErr) {
		return fmt.Errorf("%w: node %s: %w", errno.ErrMalformedSnapshot, c.name, err)
	}

	var httpErr gethrpc.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Errorf("%w: node %s: http %d %s", errno.ErrNodeQuery, c.name, httpErr.StatusCode, httpErr.Status)
	}
	return fmt.Errorf("%w: node %s: %w", errno.ErrNodeQuery, c.name, err)
}

func (c *Client) Close() {
	c.rpc.Close()
}
