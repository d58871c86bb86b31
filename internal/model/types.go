package model

import "time"

const EnvelopeVersion = "v1"

type Envelope struct {
	Version  string       `json:"version"`
	Success  bool         `json:"success"`
	Data     any          `json:"data,omitempty"`
	Error    *ErrorBody   `json:"error"`
	Warnings []string     `json:"warnings,omitempty"`
	Meta     EnvelopeMeta `json:"meta"`
}

type ErrorBody struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

type EnvelopeMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Command   string    `json:"command"`
	Network   string    `json:"network,omitempty"`
}

// CoinRecord is an immutable snapshot of one on-chain coin object.
// Balance stays a base-unit decimal string; arithmetic happens on big.Int.
type CoinRecord struct {
	ObjectID string `json:"object_id"`
	CoinType string `json:"coin_type"`
	Balance  string `json:"balance"`
	Version  string `json:"version"`
	Digest   string `json:"digest"`
}

type TokenMetadata struct {
	CoinType    string `json:"coin_type"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    int    `json:"decimals"`
	Description string `json:"description,omitempty"`
	IconURL     string `json:"icon_url,omitempty"`
}

type CoinGroup struct {
	CoinType         string       `json:"coin_type"`
	Symbol           string       `json:"symbol"`
	Name             string       `json:"name"`
	Decimals         int          `json:"decimals"`
	TotalBalance     string       `json:"total_balance"`
	FormattedBalance string       `json:"formatted_balance"`
	Coins            []CoinRecord `json:"coins"`
	CoinCount        int          `json:"coin_count"`
	PackageID        string       `json:"package_id"`
	ModuleName       string       `json:"module_name"`
	Verified         bool         `json:"verified"`
	Description      string       `json:"description,omitempty"`
}

type GroupedCoins struct {
	Groups      []CoinGroup `json:"groups"`
	TotalGroups int         `json:"total_groups"`
	TotalCoins  int         `json:"total_coins"`
}

// OperationResult is the uniform outcome of split/merge/transfer calls,
// regardless of which transaction path produced it.
type OperationResult struct {
	Success    bool     `json:"success"`
	Digest     string   `json:"digest,omitempty"`
	GasUsed    string   `json:"gas_used,omitempty"`
	Error      string   `json:"error,omitempty"`
	NewCoinIDs []string `json:"new_coin_ids,omitempty"`
}
