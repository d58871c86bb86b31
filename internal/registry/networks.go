package registry

import (
	"fmt"
	"strings"

	clierr "github.com/afuentes/suicoin/internal/errors"
)

const (
	// NativeCoinType is the chain's gas coin. The fullnode reports it in
	// short form; some tools emit the zero-padded long form.
	NativeCoinType     = "0x2::sui::SUI"
	nativeCoinTypeLong = "0x0000000000000000000000000000000000000000000000000000000000000002::sui::SUI"

	// NativeDecimals is the MIST scale: 1 SUI = 10^9 MIST.
	NativeDecimals = 9
)

var fullnodeByNetwork = map[string]string{
	"mainnet":  "https://fullnode.mainnet.sui.io:443",
	"testnet":  "https://fullnode.testnet.sui.io:443",
	"devnet":   "https://fullnode.devnet.sui.io:443",
	"localnet": "http://127.0.0.1:9000",
}

func DefaultFullnodeURL(network string) (string, bool) {
	v, ok := fullnodeByNetwork[normalizeNetwork(network)]
	return v, ok
}

// ResolveFullnodeURL picks the RPC endpoint for a request: an explicit
// override wins, otherwise the network's default fullnode.
func ResolveFullnodeURL(override, network string) (string, error) {
	if strings.TrimSpace(override) != "" {
		return strings.TrimSpace(override), nil
	}
	if v, ok := DefaultFullnodeURL(network); ok {
		return v, nil
	}
	return "", clierr.New(clierr.CodeNoEndpoint, fmt.Sprintf("no rpc endpoint configured for network %q; provide --rpc-url", network))
}

func KnownNetworks() []string {
	return []string{"mainnet", "testnet", "devnet", "localnet"}
}

// IsNativeCoin reports whether coinType denotes the gas coin, accepting
// both the short and the zero-padded long form.
func IsNativeCoin(coinType string) bool {
	t := strings.TrimSpace(coinType)
	return t == NativeCoinType || t == nativeCoinTypeLong
}

func normalizeNetwork(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
