package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	clierr "github.com/afuentes/suicoin/internal/errors"
	"github.com/afuentes/suicoin/internal/httpx"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(httpx.New(2*time.Second, 0), srv.URL, zerolog.Nop())
}

func TestCallDecodesResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.JSONRPC != "2.0" || req.Method != "suix_getCoinMetadata" {
			t.Errorf("unexpected request: %+v", req)
		}
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"decimals":6,"name":"Tick","symbol":"TCK","description":"","iconUrl":null}}`))
	})

	meta, err := c.GetCoinMetadata(context.Background(), "0xabc::tick::TCK")
	if err != nil {
		t.Fatalf("GetCoinMetadata failed: %v", err)
	}
	if meta.Symbol != "TCK" || meta.Decimals != 6 || meta.CoinType != "0xabc::tick::TCK" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
}

func TestCallSurfacesRPCError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"Invalid params"}}`))
	})

	err := c.Call(context.Background(), "suix_getAllCoins", []any{"0x1"}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	cErr, ok := clierr.As(err)
	if !ok || cErr.Code != clierr.CodeRPC {
		t.Fatalf("expected CodeRPC, got %v", err)
	}
}

func TestCallNullMetadataIsTypedError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":null}`))
	})

	_, err := c.GetCoinMetadata(context.Background(), "0xabc::x::X")
	if err == nil {
		t.Fatal("expected error for null metadata")
	}
	if cErr, ok := clierr.As(err); !ok || cErr.Code != clierr.CodeRPC {
		t.Fatalf("expected CodeRPC, got %v", err)
	}
}

func TestGetAllCoinsFollowsCursorChain(t *testing.T) {
	var cursorsSeen []any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Params) != 3 {
			t.Errorf("expected [address, cursor, limit], got %v", req.Params)
		}
		cursorsSeen = append(cursorsSeen, req.Params[1])
		switch req.Params[1] {
		case nil:
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{
				"data":[{"coinType":"0x2::sui::SUI","coinObjectId":"0xc1","version":"5","digest":"d1","balance":"100"}],
				"nextCursor":"cur-1","hasNextPage":true}}`))
		case "cur-1":
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":2,"result":{
				"data":[{"coinType":"0x2::sui::SUI","coinObjectId":"0xc2","version":"6","digest":"d2","balance":"200"}],
				"nextCursor":null,"hasNextPage":false}}`))
		default:
			t.Errorf("unexpected cursor %v", req.Params[1])
		}
	})

	var ids []string
	err := c.GetAllCoins(context.Background(), "0xaddr", 1, func(coin CoinObject) error {
		ids = append(ids, coin.CoinObjectID)
		return nil
	})
	if err != nil {
		t.Fatalf("GetAllCoins failed: %v", err)
	}
	if fmt.Sprint(ids) != "[0xc1 0xc2]" {
		t.Fatalf("unexpected coins: %v", ids)
	}
	if len(cursorsSeen) != 2 || cursorsSeen[0] != nil || cursorsSeen[1] != "cur-1" {
		t.Fatalf("unexpected cursor sequence: %v", cursorsSeen)
	}
}

func TestCollectPagesMissingCursorFails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"data":[],"nextCursor":null,"hasNextPage":true}}`))
	})

	err := c.CollectPages(context.Background(), "suix_getAllCoins", []any{"0xaddr"}, 10, func(json.RawMessage) error { return nil })
	if err == nil {
		t.Fatal("expected error for page without cursor")
	}
}

func TestCallHTTPErrorMapsToTypedError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	err := c.Call(context.Background(), "suix_getAllCoins", nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := clierr.As(err); !ok {
		t.Fatalf("expected typed error, got %T", err)
	}
}
