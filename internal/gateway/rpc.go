package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"

	"slabtrader/internal/schema"
	"slabtrader/pkg/exception"
)

const _defaultRequestTimeout = 15 * time.Second

// RPCClient talks JSON-RPC to a ledger node over HTTP.
type RPCClient struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
	nextID   atomic.Uint64
}

// NewRPCClient builds a client for the given endpoint. A nil http
// client falls back to http.DefaultClient.
func NewRPCClient(endpoint string, client *http.Client) *RPCClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &RPCClient{
		endpoint: endpoint,
		client:   client,
		timeout:  _defaultRequestTimeout,
	}
}

type rpcRequest struct {
	Jsonrpc string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type accountInfoResponse struct {
	Result struct {
		Value *struct {
			Data []string `json:"data"`
		} `json:"value"`
	} `json:"result"`
	Error *rpcError `json:"error"`
}

type sendTransactionResponse struct {
	Result string    `json:"result"`
	Error  *rpcError `json:"error"`
}

func (c *RPCClient) post(ctx context.Context, method string, params []any, out any) error {
	payload, err := sonic.ConfigFastest.Marshal(rpcRequest{
		Jsonrpc: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	r.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(r)
	if err != nil {
		return errors.Wrap(err, "post rpc request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Wrap(exception.ErrGatewayStatus, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read rpc response")
	}
	return sonic.ConfigFastest.Unmarshal(body, out)
}

// ReadAccount fetches the raw bytes of one account.
func (c *RPCClient) ReadAccount(ctx context.Context, address schema.Pubkey) ([]byte, error) {
	var out accountInfoResponse
	params := []any{address.String(), map[string]string{"encoding": "base64"}}
	if err := c.post(ctx, "getAccountInfo", params, &out); err != nil {
		return nil, err
	}
	if out.Error != nil {
		return nil, errors.Wrap(exception.ErrGatewayStatus, out.Error.Message)
	}
	if out.Result.Value == nil {
		return nil, exception.ErrAccountNotFound
	}
	if len(out.Result.Value.Data) == 0 || out.Result.Value.Data[0] == "" {
		return nil, exception.ErrEmptyAccountData
	}

	data, err := base64.StdEncoding.DecodeString(out.Result.Value.Data[0])
	if err != nil {
		return nil, errors.Wrap(err, "decode account data")
	}
	return data, nil
}

// SubmitTransaction forwards a signed transaction and returns the
// node-assigned signature.
func (c *RPCClient) SubmitTransaction(ctx context.Context, signed []byte) (string, error) {
	var out sendTransactionResponse
	params := []any{base64.StdEncoding.EncodeToString(signed), map[string]string{"encoding": "base64"}}
	if err := c.post(ctx, "sendTransaction", params, &out); err != nil {
		return "", err
	}
	if out.Error != nil {
		return "", errors.Wrap(exception.ErrGatewayStatus, out.Error.Message)
	}
	return out.Result, nil
}
