package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beacon-core/internal/model"
	"beacon-core/pkg/config"
	"beacon-core/pkg/errno"
)

type rpcRequest struct {
	Version string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// newNode 启动一个假 JSON-RPC 节点，result 原样放进响应
func newNode(t *testing.T, status int, result string, seen *rpcRequest, auth *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req rpcRequest
		_ = json.Unmarshal(body, &req)
		if seen != nil {
			*seen = req
		}
		if auth != nil {
			*auth = r.Header.Get("Authorization")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(http.StatusText(status)))
			return
		}
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"result":` + result + `}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, cfg config.NodeConfig) *Client {
	t.Helper()
	c, err := Dial(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestQuery_Bitcoin(t *testing.T) {
	var req rpcRequest
	var auth string
	srv := newNode(t, http.StatusOK, `{"chain":"main","blocks":510015,"headers":510015,"bestblockhash":"0000abc"}`, &req, &auth)

	c := dial(t, config.NodeConfig{Name: "bcoin-v1.0.2", URL: srv.URL, User: "user", Pass: "pass", Timeout: time.Second})
	snap, err := c.Query(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.NodeID("bcoin-v1.0.2"), c.Node())
	assert.Equal(t, model.ChainSnapshot{Height: 510015, BestBlockHash: "0000abc"}, snap)
	assert.Equal(t, "getblockchaininfo", req.Method)
	assert.Equal(t, "Basic dXNlcjpwYXNz", auth)
}

func TestQuery_BitcoinMalformed(t *testing.T) {
	tests := []struct {
		name   string
		result string
	}{
		{"missing hash", `{"blocks":1}`},
		{"missing blocks", `{"bestblockhash":"00ff"}`},
		{"empty hash", `{"blocks":1,"bestblockhash":""}`},
		{"wrong type", `{"blocks":"one","bestblockhash":"00ff"}`},
		{"not an object", `"pong"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newNode(t, http.StatusOK, tt.result, nil, nil)
			c := dial(t, config.NodeConfig{Name: "n", URL: srv.URL})
			_, err := c.Query(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, errno.ErrMalformedSnapshot), err.Error())
		})
	}
}

func TestQuery_HTTPStatusFailures(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusInternalServerError} {
		srv := newNode(t, status, "", nil, nil)
		c := dial(t, config.NodeConfig{Name: "n", URL: srv.URL})
		_, err := c.Query(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, errno.ErrNodeQuery))
		assert.Contains(t, err.Error(), http.StatusText(status))
	}
}

func TestQuery_Unreachable(t *testing.T) {
	srv := newNode(t, http.StatusOK, `{}`, nil, nil)
	url := srv.URL
	srv.Close()

	c := dial(t, config.NodeConfig{Name: "n", URL: url, Timeout: time.Second})
	_, err := c.Query(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errno.ErrNodeQuery))
}

func TestQuery_Eth(t *testing.T) {
	header := `{
		"parentHash": "0x` + strings.Repeat("11", 32) + `",
		"sha3Uncles": "0x` + strings.Repeat("22", 32) + `",
		"miner": "0x` + strings.Repeat("33", 20) + `",
		"stateRoot": "0x` + strings.Repeat("44", 32) + `",
		"transactionsRoot": "0x` + strings.Repeat("55", 32) + `",
		"receiptsRoot": "0x` + strings.Repeat("66", 32) + `",
		"logsBloom": "0x` + strings.Repeat("00", 256) + `",
		"difficulty": "0x0",
		"number": "0x64",
		"gasLimit": "0x1c9c380",
		"gasUsed": "0x0",
		"timestamp": "0x6553f100",
		"extraData": "0x"
	}`

	var req rpcRequest
	srv := newNode(t, http.StatusOK, header, &req, nil)
	c := dial(t, config.NodeConfig{Name: "geth", Kind: KindEth, URL: srv.URL})

	snap, err := c.Query(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "eth_getBlockByNumber", req.Method)
	assert.Equal(t, uint64(100), snap.Height)
	assert.True(t, strings.HasPrefix(snap.BestBlockHash, "0x"))
	assert.Len(t, snap.BestBlockHash, 66)

	// 哈希由 header 内容决定，重复查询结果一致
	again, err := c.Query(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snap, again)
}

func TestDial_BadScheme(t *testing.T) {
	_, err := Dial(context.Background(), config.NodeConfig{Name: "n", URL: "ftp://example.com"})
	assert.Error(t, err)
}
