package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	clierr "github.com/afuentes/suicoin/internal/errors"
	"github.com/afuentes/suicoin/internal/model"
)

// CoinObject mirrors one entry of a suix_getAllCoins / suix_getCoins page.
type CoinObject struct {
	CoinType            string `json:"coinType"`
	CoinObjectID        string `json:"coinObjectId"`
	Version             string `json:"version"`
	Digest              string `json:"digest"`
	Balance             string `json:"balance"`
	PreviousTransaction string `json:"previousTransaction"`
}

type coinMetadataResult struct {
	Decimals    int     `json:"decimals"`
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	Description string  `json:"description"`
	IconURL     *string `json:"iconUrl"`
}

// GetAllCoins streams every coin object owned by address across all coin
// types, following the cursor chain page by page.
func (c *Client) GetAllCoins(ctx context.Context, address string, pageSize int, each func(CoinObject) error) error {
	return c.CollectPages(ctx, "suix_getAllCoins", []any{address}, pageSize, func(raw json.RawMessage) error {
		var coin CoinObject
		if err := json.Unmarshal(raw, &coin); err != nil {
			return clierr.Wrap(clierr.CodeRPC, "decode coin object", err)
		}
		return each(coin)
	})
}

// GetCoins streams the coin objects of one coin type owned by address.
func (c *Client) GetCoins(ctx context.Context, address, coinType string, pageSize int, each func(CoinObject) error) error {
	return c.CollectPages(ctx, "suix_getCoins", []any{address, coinType}, pageSize, func(raw json.RawMessage) error {
		var coin CoinObject
		if err := json.Unmarshal(raw, &coin); err != nil {
			return clierr.Wrap(clierr.CodeRPC, "decode coin object", err)
		}
		return each(coin)
	})
}

// GetCoinMetadata fetches display metadata for one coin type. The fullnode
// returns null for unpublished metadata, which surfaces as a typed error.
func (c *Client) GetCoinMetadata(ctx context.Context, coinType string) (model.TokenMetadata, error) {
	var result *coinMetadataResult
	if err := c.Call(ctx, "suix_getCoinMetadata", []any{coinType}, &result); err != nil {
		return model.TokenMetadata{}, err
	}
	if result == nil {
		return model.TokenMetadata{}, clierr.New(clierr.CodeRPC, fmt.Sprintf("no metadata published for %s", coinType))
	}
	meta := model.TokenMetadata{
		CoinType:    coinType,
		Name:        result.Name,
		Symbol:      result.Symbol,
		Decimals:    result.Decimals,
		Description: result.Description,
	}
	if result.IconURL != nil {
		meta.IconURL = *result.IconURL
	}
	return meta, nil
}
