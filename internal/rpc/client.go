package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	clierr "github.com/afuentes/suicoin/internal/errors"
	"github.com/afuentes/suicoin/internal/httpx"
)

const defaultCallTimeout = 10 * time.Second

// Client issues JSON-RPC 2.0 calls against one fullnode endpoint.
type Client struct {
	http        *httpx.Client
	endpoint    string
	callTimeout time.Duration
	log         zerolog.Logger
	nextID      atomic.Uint64
}

func New(httpClient *httpx.Client, endpoint string, log zerolog.Logger) *Client {
	return &Client{
		http:        httpClient,
		endpoint:    endpoint,
		callTimeout: defaultCallTimeout,
		log:         log,
	}
}

func (c *Client) Endpoint() string { return c.endpoint }

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcErrorBody   `json:"error"`
}

type rpcErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Call performs one JSON-RPC POST with a per-call timeout and decodes the
// result member into out.
func (c *Client) Call(ctx context.Context, method string, params []any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return clierr.Wrap(clierr.CodeInternal, "encode rpc request", err)
	}

	start := time.Now()
	var resp rpcResponse
	if _, err := httpx.DoBodyJSON(ctx, c.http, http.MethodPost, c.endpoint, body, nil, &resp); err != nil {
		return err
	}
	c.log.Debug().Str("method", method).Dur("took", time.Since(start)).Msg("rpc call")

	if resp.Error != nil {
		return clierr.New(clierr.CodeRPC, fmt.Sprintf("rpc %s failed: %s", method, resp.Error.Message))
	}
	if out == nil {
		return nil
	}
	if len(resp.Result) == 0 {
		return clierr.New(clierr.CodeRPC, fmt.Sprintf("rpc %s returned no result", method))
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return clierr.Wrap(clierr.CodeRPC, fmt.Sprintf("decode rpc %s result", method), err)
	}
	return nil
}

// page is the cursor envelope shared by the paginated suix_ methods.
type page struct {
	Data        []json.RawMessage `json:"data"`
	NextCursor  *string           `json:"nextCursor"`
	HasNextPage bool              `json:"hasNextPage"`
}

// CollectPages walks a cursor-paginated method from a null cursor until the
// endpoint reports no further pages. The cursor chain is sequential; there
// is no parallelism within one stream. baseParams are the params that come
// before the cursor and page-size slots.
func (c *Client) CollectPages(ctx context.Context, method string, baseParams []any, pageSize int, each func(json.RawMessage) error) error {
	if pageSize <= 0 {
		pageSize = 50
	}
	var cursor *string
	pages := 0
	for {
		params := make([]any, 0, len(baseParams)+2)
		params = append(params, baseParams...)
		if cursor != nil {
			params = append(params, *cursor)
		} else {
			params = append(params, nil)
		}
		params = append(params, pageSize)

		var p page
		if err := c.Call(ctx, method, params, &p); err != nil {
			return err
		}
		pages++
		for _, item := range p.Data {
			if err := each(item); err != nil {
				return err
			}
		}
		if !p.HasNextPage {
			break
		}
		if p.NextCursor == nil {
			return clierr.New(clierr.CodeRPC, fmt.Sprintf("rpc %s reported another page without a cursor", method))
		}
		cursor = p.NextCursor
	}
	c.log.Debug().Str("method", method).Int("pages", pages).Msg("pagination complete")
	return nil
}
